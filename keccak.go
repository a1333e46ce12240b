package ethtx

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/KarpelesLab/cryptutil"
	"golang.org/x/crypto/sha3"
)

// Keccak256 returns the Keccak-256 digest of data. This is the Ethereum
// hash function, distinct from NIST SHA-3-256 by its padding byte; it is
// golang.org/x/crypto/sha3's "legacy" Keccak, matching the teacher's
// etherhash.go / evmtx.go usage of sha3.NewLegacyKeccak256 chained through
// cryptutil.Hash.
func Keccak256(data []byte) [32]byte {
	var out [32]byte
	copy(out[:], cryptutil.Hash(data, sha3.NewLegacyKeccak256))
	return out
}

// AddressFromPublicKey derives the 20-byte Ethereum address from an
// uncompressed secp256k1 public key. Both the bare 64-byte X‖Y form and the
// 65-byte 0x04-prefixed form are accepted, per spec.md §4.2.
func AddressFromPublicKey(pub []byte) ([20]byte, error) {
	var addr [20]byte
	switch len(pub) {
	case 64:
		// bare X‖Y
	case 65:
		if pub[0] != 0x04 {
			return addr, fmt.Errorf("ethtx: 65-byte public key must start with 0x04")
		}
		pub = pub[1:]
	default:
		return addr, fmt.Errorf("ethtx: public key must be 64 or 65 bytes, got %d", len(pub))
	}
	h := Keccak256(pub)
	copy(addr[:], h[12:])
	return addr, nil
}

// ChecksumEncode applies the EIP-55 mixed-case checksum to a 40-character
// lowercase hex address (with or without a 0x prefix) and returns the
// "0x"-prefixed mixed-case form.
func ChecksumEncode(addrHex string) (string, error) {
	addrHex = strings.TrimPrefix(addrHex, "0x")
	addrHex = strings.TrimPrefix(addrHex, "0X")
	if len(addrHex) != 40 {
		return "", fmt.Errorf("ethtx: address must be 40 hex characters, got %d", len(addrHex))
	}
	lower := strings.ToLower(addrHex)
	if _, err := hex.DecodeString(lower); err != nil {
		return "", fmt.Errorf("ethtx: invalid hex address: %w", err)
	}
	return checksumFromLower(lower), nil
}

// ChecksumVerify reports whether addrHex is a valid EIP-55 address: either
// entirely lowercase, entirely uppercase (hex digits only), or matching the
// exact checksum casing. Any other mixed case is rejected.
func ChecksumVerify(addrHex string) bool {
	raw := addrHex
	trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	if len(trimmed) != 40 {
		return false
	}
	lower := strings.ToLower(trimmed)
	if _, err := hex.DecodeString(lower); err != nil {
		return false
	}
	if trimmed == lower || trimmed == strings.ToUpper(trimmed) {
		return true
	}
	return trimmed == checksumFromLower(lower)
}

// checksumFromLower implements the EIP-55 procedure: hash the lowercase hex
// string's UTF-8 bytes, then uppercase hex character i of the address iff
// the i-th nibble of the digest is >= 8. Adapted from the teacher's private
// eip55() in eip55.go, generalized to operate on a hex string rather than
// raw address bytes and exported as two independent encode/verify
// operations.
func checksumFromLower(lower string) string {
	hash := Keccak256([]byte(lower))
	out := []byte(lower)
	for i := range out {
		hashByte := hash[i/2]
		if i%2 == 0 {
			hashByte >>= 4
		} else {
			hashByte &= 0xf
		}
		if out[i] > '9' && hashByte >= 8 {
			out[i] -= 32
		}
	}
	return "0x" + string(out)
}
