package ethtx

import "github.com/holiman/uint256"

// TxType discriminates the five transaction envelopes of spec.md §4.4. A
// Transaction is modeled as one tagged union rather than five separate Go
// types (spec.md §9 "Sum types over inheritance") — idiomatic Go has no sum
// types, so, as in the teacher's single EvmTx/EvmTxType pair, one struct
// carries every variant's fields and Type says which of them are live.
type TxType int

const (
	// TxLegacy is the original untyped envelope: the whole input is an RLP
	// list, recognized by a leading byte >= 0xC0 (an RLP list header).
	TxLegacy TxType = iota
	// TxAccessList is EIP-2930, leading byte 0x01.
	TxAccessList
	// TxDynamicFee is EIP-1559, leading byte 0x02.
	TxDynamicFee
	// TxBlob is EIP-4844, leading byte 0x03.
	TxBlob
	// TxSetCode is EIP-7702, leading byte 0x04.
	TxSetCode
)

func (t TxType) String() string {
	switch t {
	case TxLegacy:
		return "legacy"
	case TxAccessList:
		return "access-list"
	case TxDynamicFee:
		return "dynamic-fee"
	case TxBlob:
		return "blob"
	case TxSetCode:
		return "set-code"
	default:
		return "unknown"
	}
}

// envelopeByte returns the leading type byte for typed (non-legacy)
// envelopes; TxLegacy has no leading type byte of its own.
func (t TxType) envelopeByte() byte {
	switch t {
	case TxAccessList:
		return 0x01
	case TxDynamicFee:
		return 0x02
	case TxBlob:
		return 0x03
	case TxSetCode:
		return 0x04
	default:
		return 0
	}
}

// Address is a 20-byte account identifier. A nil *Address in the To
// position denotes contract creation (spec.md §3) — this is kept as a
// pointer rather than a zero-valued array specifically so the all-zero
// address and "no address" are never conflated (spec.md §9).
type Address [20]byte

// StorageKey is a 32-byte access-list storage slot.
type StorageKey [32]byte

// AccessTuple is one entry of an access list: an address plus the storage
// keys the transaction pre-declares touching under it (spec.md §3).
type AccessTuple struct {
	Address     Address
	StorageKeys []StorageKey
}

// AccessList is an ordered list of access tuples. Order is part of the
// transaction's signed content and MUST be preserved across decode/encode
// (spec.md §8 end-to-end scenario 2).
type AccessList []AccessTuple

// Authorization is an EIP-7702 authorization tuple (spec.md §3): six
// fields, where Nonce is a pointer because the wire encodes "absent" as an
// empty RLP list rather than the integer zero — nil here means absent, a
// non-nil value (including *0) means present.
type Authorization struct {
	ChainID *uint256.Int
	Address Address
	Nonce   *uint64
	YParity uint8
	R, S    *uint256.Int
}

// AuthorizationList is an ordered list of authorization tuples.
type AuthorizationList []Authorization

// Transaction is the tagged union covering all five envelopes. Only the
// fields relevant to Type are meaningful; see EncodeTransaction and
// typedUnsignedFields in transaction_codec.go for the exact per-variant
// field layout.
//
// Integer fields that are bounded to 256 bits on the wire (spec.md §3, §9
// "do not silently truncate to 64 bits") are *uint256.Int, the 256-bit
// fixed-width integer type used throughout the go-ethereum-derived tooling
// in the reference pack. Nonce and Gas stay uint64: every envelope bounds
// them to machine-word range in practice, and spec.md's gas_limit >= 21000
// invariant is phrased in machine-integer terms.
type Transaction struct {
	Type TxType

	ChainID   *uint256.Int // absent (nil) only for TxLegacy pre-EIP-155
	Nonce     uint64
	GasPrice  *uint256.Int // legacy / access-list "gas price"
	GasTipCap *uint256.Int // a.k.a. max_priority_fee_per_gas (EIP-1559+)
	GasFeeCap *uint256.Int // a.k.a. max_fee_per_gas (EIP-1559+)
	Gas       uint64       // gas_limit
	To        *Address     // nil denotes contract creation
	Value     *uint256.Int
	Data      []byte

	AccessList AccessList // EIP-2930+

	MaxFeePerBlobGas     *uint256.Int // EIP-4844
	BlobVersionedHashes  []StorageKey // EIP-4844, each a 32-byte hash

	AuthorizationList AuthorizationList // EIP-7702

	// Signature. Signed reports whether V/R/S (or Y/R/S for typed
	// envelopes) are populated. For TxLegacy, V already carries the full
	// EIP-155-or-not encoding (spec.md §3); for typed envelopes, YParity is
	// the direct 0/1 parity and V is unused.
	Signed  bool
	V       *uint256.Int // TxLegacy only
	YParity uint8        // typed envelopes only
	R, S    *uint256.Int
}

// Signature returns the transaction's signature as the wire-agnostic
// (r, s, y) triple, resolving TxLegacy's V into a recovery parity via
// DecodeV. This is a pure read: it does not mutate tx, so callers may
// invoke it (or RecoverSender, which calls it) concurrently on the same
// *Transaction. tx.ChainID is expected to already carry any chain id
// implied by V — DecodeTransaction back-fills it for decoded legacy
// transactions, and ApplySignature back-fills it for freshly signed ones.
func (tx *Transaction) Signature() (Signature, error) {
	if !tx.Signed {
		return Signature{}, ErrMalformedSignature
	}
	if tx.Type == TxLegacy {
		y, _, err := DecodeV(tx.V, tx.ChainID)
		if err != nil {
			return Signature{}, err
		}
		return Signature{R: tx.R, S: tx.S, Y: y}, nil
	}
	return Signature{R: tx.R, S: tx.S, Y: tx.YParity}, nil
}
