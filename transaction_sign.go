package ethtx

import "github.com/holiman/uint256"

// SigningHash computes the digest a signer must sign (or a recovery
// operation must recover against) for tx, per spec.md §4.4's "Signing
// preimage" rules. For TxLegacy, the preimage depends on whether tx carries
// a chain ID: pre-EIP-155 hashes the six unsigned fields alone; EIP-155
// appends (chain_id, 0, 0). For a typed envelope, the preimage is the type
// byte followed by the RLP encoding of its unsigned field list — the same
// list EncodeTransaction uses before appending the signature.
func SigningHash(tx *Transaction) ([32]byte, error) {
	if tx.Type == TxLegacy {
		fields := []Item{
			{String: bytesFromUint64(tx.Nonce)},
			{String: uint256ToBytes(tx.GasPrice)},
			{String: bytesFromUint64(tx.Gas)},
			addressToItem(tx.To),
			{String: uint256ToBytes(tx.Value)},
			{String: tx.Data},
		}
		if tx.ChainID != nil && !tx.ChainID.IsZero() {
			fields = append(fields,
				Item{String: uint256ToBytes(tx.ChainID)},
				Item{String: nil},
				Item{String: nil},
			)
		}
		return Keccak256(EncodeRLP(Item{List: fields})), nil
	}

	fields, err := typedUnsignedFields(tx)
	if err != nil {
		return [32]byte{}, err
	}
	body := EncodeRLP(Item{List: fields})
	preimage := make([]byte, 0, 1+len(body))
	preimage = append(preimage, tx.Type.envelopeByte())
	preimage = append(preimage, body...)
	return Keccak256(preimage), nil
}

// TransactionHash computes the canonical transaction hash: Keccak-256 over
// the fully signed wire encoding, exactly as EncodeTransaction would
// produce it (spec.md §4.4 "Transaction hash").
func TransactionHash(tx *Transaction) ([32]byte, error) {
	b, err := EncodeTransaction(tx)
	if err != nil {
		return [32]byte{}, err
	}
	return Keccak256(b), nil
}

// RecoverSender recovers the 20-byte address that signed tx, resolving the
// legacy v / typed y_parity distinction via Transaction.Signature and
// feeding the result through SigningHash and RecoverAddress.
func RecoverSender(tx *Transaction) ([20]byte, error) {
	var zero [20]byte
	sig, err := tx.Signature()
	if err != nil {
		return zero, err
	}
	h, err := SigningHash(tx)
	if err != nil {
		return zero, err
	}
	return RecoverAddress(h, sig)
}

// ApplySignature stores (v-or-y_parity, r, s) on tx for its envelope type,
// marking it signed. chainID is only consulted for TxLegacy, to compute the
// EIP-155 v from the recovery parity; typed envelopes store y directly.
func ApplySignature(tx *Transaction, sig Signature, chainID *uint256.Int) {
	tx.Signed = true
	tx.R, tx.S = sig.R, sig.S
	if tx.Type == TxLegacy {
		tx.V = EncodeV(sig.Y, chainID)
		if chainID != nil && !chainID.IsZero() {
			tx.ChainID = chainID
		}
		return
	}
	tx.YParity = sig.Y
}
