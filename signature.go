package ethtx

import (
	"crypto"
	"crypto/rand"
	"fmt"

	"github.com/ModChain/secp256k1"
	"github.com/holiman/uint256"
)

// Signature is the wire-agnostic (r, s, y) triple from spec.md §3. y is the
// two-valued recovery parity, never the envelope-specific v encoding —
// callers translate to/from v with EncodeV/DecodeV.
type Signature struct {
	R, S *uint256.Int
	Y    uint8 // recovery parity, 0 or 1
}

// secp256k1GroupOrder is N, the order of the secp256k1 base point, used for
// the r,s range check (spec.md §3, §4.3) and for low-s normalization
// (spec.md §4.3, §9).
var secp256k1GroupOrder = func() *uint256.Int {
	n, _ := uint256.FromHex("0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141")
	return n
}()

var secp256k1HalfOrder = new(uint256.Int).Rsh(secp256k1GroupOrder, 1)

// IsValidSignature reports whether r and s both fall in [1, n-1], per
// spec.md §4.3. It does not require low-s; use NormalizeSignature or check
// s <= n/2 separately when a caller wants to reject malleable signatures
// outright rather than normalize them (spec.md §4.3 "the choice is
// documented at the caller").
func IsValidSignature(sig Signature) bool {
	if sig.R == nil || sig.S == nil {
		return false
	}
	if sig.R.IsZero() || sig.S.IsZero() {
		return false
	}
	return sig.R.Lt(secp256k1GroupOrder) && sig.S.Lt(secp256k1GroupOrder)
}

// NormalizeSignature returns the low-s form of sig: if s > n/2, it is
// replaced with n-s and the recovery parity is flipped, per EIP-2 and
// spec.md §4.3/§9. The recovered address is unchanged by this operation
// (spec.md §8 property 5). Idempotent: normalizing twice is a no-op the
// second time.
func NormalizeSignature(sig Signature) Signature {
	if sig.S == nil || sig.S.Cmp(secp256k1HalfOrder) <= 0 {
		return sig
	}
	return Signature{
		R: sig.R,
		S: new(uint256.Int).Sub(secp256k1GroupOrder, sig.S),
		Y: sig.Y ^ 1,
	}
}

// Sign produces a deterministic ECDSA signature over digest using priv,
// returning the wire v value appropriate for chainID: 27+y when chainID is
// nil (pre-EIP-155), chainID*2+35+y when it is set (EIP-155). Typed-envelope
// callers should ignore the returned v and use sig.Y directly as y_parity,
// per spec.md §4.3.
//
// priv signs via the standard crypto.Signer contract (DER output, RFC 6979
// nonce), then the recovery code is found by brute force against priv's own
// public key — the same two-step sign-then-recover sequence the teacher's
// EvmTx.Sign uses, generalized here to not require the caller to hold a
// *EvmTx.
func Sign(digest [32]byte, priv *secp256k1.PrivateKey, chainID *uint256.Int) (v *uint256.Int, sig Signature, err error) {
	if priv == nil {
		return nil, Signature{}, ErrInvalidPrivateKey
	}
	der, err := priv.Sign(rand.Reader, digest[:], crypto.Hash(0))
	if err != nil {
		return nil, Signature{}, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	sigO, err := secp256k1.ParseDERSignature(der)
	if err != nil {
		return nil, Signature{}, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	pub, ok := priv.Public().(*secp256k1.PublicKey)
	if !ok {
		return nil, Signature{}, ErrInvalidPrivateKey
	}
	sigO.BruteforceRecoveryCode(digest[:], pub)
	r, s, y := sigO.Export()
	sig = Signature{R: new(uint256.Int).SetBytes(r.Bytes()), S: new(uint256.Int).SetBytes(s.Bytes()), Y: y}
	return EncodeV(sig.Y, chainID), sig, nil
}

// EncodeV computes the wire v value for a recovery parity y: 27+y with no
// chain ID, chainID*2+35+y with one. This is the single total-case
// encoding side of the three-valued v problem from spec.md §9.
func EncodeV(y uint8, chainID *uint256.Int) *uint256.Int {
	if chainID == nil || chainID.IsZero() {
		return uint256.NewInt(uint64(27 + y))
	}
	v := new(uint256.Int).Mul(chainID, uint256.NewInt(2))
	v.Add(v, uint256.NewInt(uint64(35+y)))
	return v
}

// DecodeV derives the recovery parity y from a wire v value, per spec.md
// §4.3:
//   - v in {0,1}: typed envelopes / direct parity, y = v.
//   - v in {27,28}: pre-EIP-155 legacy, y = v-27.
//   - v >= 35: EIP-155 legacy, y = (v-35) mod 2, implied chain ID (v-35-y)/2.
//
// For v >= 35, chainID is optional: when it is nil or zero, the chain ID
// implied by v is accepted as-is; when it is set, a different implied chain
// ID fails. An implied chain ID of 0 (v=35 or v=36) always fails. Any other
// v (2..26, 29..34) fails with ErrInvalidRecoveryId. It also returns the
// chain ID implied by an EIP-155 v, or nil otherwise.
func DecodeV(v *uint256.Int, chainID *uint256.Int) (y uint8, impliedChainID *uint256.Int, err error) {
	if v == nil {
		return 0, nil, ErrInvalidRecoveryId
	}
	switch {
	case v.Cmp(uint256.NewInt(1)) <= 0:
		return uint8(v.Uint64()), nil, nil
	case v.Eq(uint256.NewInt(27)):
		return 0, nil, nil
	case v.Eq(uint256.NewInt(28)):
		return 1, nil, nil
	case v.Cmp(uint256.NewInt(35)) >= 0:
		// v = chainID*2 + 35 + y
		rest := new(uint256.Int).Sub(v, uint256.NewInt(35))
		yy := new(uint256.Int).Mod(rest, uint256.NewInt(2))
		cid := new(uint256.Int).Rsh(new(uint256.Int).Sub(rest, yy), 1)
		if cid.IsZero() {
			// v=35 or v=36 implies chain id 0, which no real EIP-155 chain
			// uses; treat as ambiguous rather than silently accepting it.
			return 0, nil, fmt.Errorf("%w: v=%s implies chain id 0", ErrInvalidRecoveryId, v)
		}
		if chainID != nil && !chainID.IsZero() && !cid.Eq(chainID) {
			return 0, nil, fmt.Errorf("%w: v implies chain id %s, expected %s", ErrInvalidRecoveryId, cid, chainID)
		}
		return uint8(yy.Uint64()), cid, nil
	default:
		return 0, nil, ErrInvalidRecoveryId
	}
}

// RecoverPublicKey recovers the 64-byte uncompressed (X‖Y, no 0x04 prefix)
// public key consistent with (digest, sig). It takes no chain ID — callers
// that decoded sig.Y from a legacy v via DecodeV have already resolved any
// chain-ID ambiguity.
func RecoverPublicKey(digest [32]byte, sig Signature) ([]byte, error) {
	if !IsValidSignature(sig) {
		return nil, ErrMalformedSignature
	}
	r := new(secp256k1.ModNScalar)
	if overflow := r.SetByteSlice(sig.R.Bytes()); overflow {
		return nil, ErrMalformedSignature
	}
	s := new(secp256k1.ModNScalar)
	if overflow := s.SetByteSlice(sig.S.Bytes()); overflow {
		return nil, ErrMalformedSignature
	}
	ssig := secp256k1.NewSignatureWithRecoveryCode(r, s, sig.Y)
	pub, err := ssig.RecoverPublicKey(digest[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecoveryFailed, err)
	}
	uncompressed := pub.SerializeUncompressed()
	return uncompressed[1:], nil // drop the 0x04 sentinel
}

// RecoverAddress recovers the 20-byte sender address for (digest, sig).
func RecoverAddress(digest [32]byte, sig Signature) ([20]byte, error) {
	var addr [20]byte
	pub, err := RecoverPublicKey(digest, sig)
	if err != nil {
		return addr, err
	}
	return AddressFromPublicKey(pub)
}
