package ethtx_test

import (
	"encoding/hex"
	"testing"

	"github.com/ModChain/ethtx"
	"github.com/ModChain/secp256k1"
	"github.com/holiman/uint256"
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func TestSignRecoverRoundTrip(t *testing.T) {
	priv := secp256k1.PrivKeyFromBytes(mustHex("eb696a065ef48a2192da5b28b694f87544b30fae8327c4510137a922f32c6dcf"))
	pub, ok := priv.Public().(*secp256k1.PublicKey)
	if !ok {
		t.Fatalf("private key does not expose a *secp256k1.PublicKey")
	}
	wantAddr, err := ethtx.AddressFromPublicKey(pub.SerializeUncompressed()[1:])
	if err != nil {
		t.Fatalf("AddressFromPublicKey: %s", err)
	}

	digest := ethtx.Keccak256([]byte("ethtx sign/recover round trip"))

	chainIDs := []*uint256.Int{nil, uint256.NewInt(1), uint256.NewInt(5), uint256.NewInt(17000), uint256.NewInt(11155111)}
	for _, cid := range chainIDs {
		v, sig, err := ethtx.Sign(digest, priv, cid)
		if err != nil {
			t.Fatalf("chain id %v: Sign: %s", cid, err)
		}
		y, implied, err := ethtx.DecodeV(v, cid)
		if err != nil {
			t.Fatalf("chain id %v: DecodeV: %s", cid, err)
		}
		if y != sig.Y {
			t.Errorf("chain id %v: DecodeV gave y=%d, Sign gave y=%d", cid, y, sig.Y)
		}
		if cid != nil && !cid.IsZero() && (implied == nil || !implied.Eq(cid)) {
			t.Errorf("chain id %v: implied chain id mismatch: %v", cid, implied)
		}

		gotAddr, err := ethtx.RecoverAddress(digest, sig)
		if err != nil {
			t.Fatalf("chain id %v: RecoverAddress: %s", cid, err)
		}
		if gotAddr != wantAddr {
			t.Errorf("chain id %v: recovered %x, want %x", cid, gotAddr, wantAddr)
		}
	}
}

func TestNormalizeSignatureIdempotentAndAddressPreserving(t *testing.T) {
	priv := secp256k1.PrivKeyFromBytes(mustHex("eb696a065ef48a2192da5b28b694f87544b30fae8327c4510137a922f32c6dcf"))
	digest := ethtx.Keccak256([]byte("normalize me"))
	_, sig, err := ethtx.Sign(digest, priv, nil)
	if err != nil {
		t.Fatalf("Sign: %s", err)
	}
	before, err := ethtx.RecoverAddress(digest, sig)
	if err != nil {
		t.Fatalf("RecoverAddress: %s", err)
	}

	// Flip to the high-s form manually to exercise normalize's other branch.
	n, _ := uint256.FromHex("0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141")
	highS := ethtx.Signature{R: sig.R, S: new(uint256.Int).Sub(n, sig.S), Y: sig.Y ^ 1}

	once := ethtx.NormalizeSignature(highS)
	twice := ethtx.NormalizeSignature(once)
	if once != twice {
		t.Errorf("normalize is not idempotent: once=%+v twice=%+v", once, twice)
	}
	if !once.S.Eq(sig.S) || once.Y != sig.Y {
		t.Errorf("normalize did not recover the original low-s form")
	}

	after, err := ethtx.RecoverAddress(digest, once)
	if err != nil {
		t.Fatalf("RecoverAddress after normalize: %s", err)
	}
	if before != after {
		t.Errorf("normalize changed the recovered address: before=%x after=%x", before, after)
	}
}

func TestIsValidSignatureRejectsOutOfRange(t *testing.T) {
	zero := uint256.NewInt(0)
	one := uint256.NewInt(1)
	if ethtx.IsValidSignature(ethtx.Signature{R: zero, S: one}) {
		t.Errorf("expected r=0 to be invalid")
	}
	if ethtx.IsValidSignature(ethtx.Signature{R: one, S: zero}) {
		t.Errorf("expected s=0 to be invalid")
	}
}

func TestDecodeVRejectsUnmatchedCombinations(t *testing.T) {
	if _, _, err := ethtx.DecodeV(uint256.NewInt(35), nil); err == nil {
		t.Errorf("expected v=35 with no chain id to fail")
	}
	if _, _, err := ethtx.DecodeV(uint256.NewInt(26), nil); err == nil {
		t.Errorf("expected v=26 to fail")
	}
}
