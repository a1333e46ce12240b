package ethtx

import "errors"

// Decode-time errors. All are recoverable by the caller: drop the frame,
// score the peer, or treat the envelope as unknown — see SPEC_FULL.md §7.
var (
	// ErrTruncated means the input ended before a declared length was satisfied.
	ErrTruncated = errors.New("ethtx: truncated input")

	// ErrNonCanonicalRlp means the input decodes under a relaxed grammar but
	// is not the unique canonical encoding (e.g. a length prefix longer than
	// the minimal form, or a single byte < 0x80 wrapped in a string header).
	ErrNonCanonicalRlp = errors.New("ethtx: non-canonical RLP encoding")

	// ErrNonCanonicalInteger means a byte string used as an integer carries
	// a leading zero byte.
	ErrNonCanonicalInteger = errors.New("ethtx: non-canonical integer encoding")

	// ErrUnknownEnvelope means the leading type byte doesn't match any of the
	// five known transaction envelopes.
	ErrUnknownEnvelope = errors.New("ethtx: unknown transaction envelope")

	// ErrWrongFieldCount means a decoded RLP list has a field count that
	// matches no known (unsigned or signed) shape for its envelope.
	ErrWrongFieldCount = errors.New("ethtx: wrong field count for envelope")

	// ErrInvalidAccessList means an access-list entry doesn't have the
	// (address, [storage-key]) shape, or a key isn't 32 bytes.
	ErrInvalidAccessList = errors.New("ethtx: invalid access list")

	// ErrInvalidAuthorization means an EIP-7702 authorization tuple doesn't
	// have the six-field shape, or its nonce sub-list has more than one item.
	ErrInvalidAuthorization = errors.New("ethtx: invalid authorization tuple")

	// ErrMalformedSignature means signature fields are missing, have the
	// wrong shape, or fail the r,s range check.
	ErrMalformedSignature = errors.New("ethtx: malformed signature")

	// ErrInvalidRecoveryId means v does not resolve to a valid {0,1}
	// recovery parity under any of the three v-encoding cases.
	ErrInvalidRecoveryId = errors.New("ethtx: invalid recovery id")

	// ErrRecoveryFailed means the signature math ran but no public key
	// consistent with it could be recovered (e.g. the signature is forged
	// or the curve point doesn't exist).
	ErrRecoveryFailed = errors.New("ethtx: public key recovery failed")

	// ErrInvalidPrivateKey and ErrInvalidDigestLength are programmer-error
	// contract violations in Sign: a malformed key or a digest that isn't
	// exactly 32 bytes.
	ErrInvalidPrivateKey   = errors.New("ethtx: invalid private key")
	ErrInvalidDigestLength = errors.New("ethtx: digest must be 32 bytes")
)
