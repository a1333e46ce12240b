package ethtx

import (
	"fmt"

	"github.com/holiman/uint256"
)

// DecodeTransaction parses the envelope-dispatch byte and RLP structure of b
// into a Transaction, per spec.md §4.4. The leading byte selects the
// variant: an RLP list header (>= 0xC0) is Legacy; 0x01/0x02/0x03/0x04 are
// the typed envelopes AccessList/DynamicFee/Blob/SetCode; anything else is
// ErrUnknownEnvelope.
func DecodeTransaction(b []byte) (*Transaction, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty transaction", ErrTruncated)
	}
	b0 := b[0]
	switch {
	case b0 >= 0xC0:
		item, err := DecodeRLP(b)
		if err != nil {
			return nil, err
		}
		if !item.IsList() {
			return nil, fmt.Errorf("%w: legacy envelope must be a list", ErrWrongFieldCount)
		}
		return decodeLegacy(item.List)
	case b0 == 0x01:
		items, err := decodeTypedList(b[1:])
		if err != nil {
			return nil, err
		}
		return decodeAccessList(items)
	case b0 == 0x02:
		items, err := decodeTypedList(b[1:])
		if err != nil {
			return nil, err
		}
		return decodeDynamicFee(items)
	case b0 == 0x03:
		items, err := decodeTypedList(b[1:])
		if err != nil {
			return nil, err
		}
		return decodeBlob(items)
	case b0 == 0x04:
		items, err := decodeTypedList(b[1:])
		if err != nil {
			return nil, err
		}
		return decodeSetCode(items)
	default:
		return nil, fmt.Errorf("%w: leading byte 0x%02x", ErrUnknownEnvelope, b0)
	}
}

// decodeTypedList decodes the RLP list that follows a typed envelope's
// leading type byte.
func decodeTypedList(b []byte) ([]Item, error) {
	item, err := DecodeRLP(b)
	if err != nil {
		return nil, err
	}
	if !item.IsList() {
		return nil, fmt.Errorf("%w: typed envelope body must be a list", ErrWrongFieldCount)
	}
	return item.List, nil
}

func decodeLegacy(items []Item) (*Transaction, error) {
	n := len(items)
	if n != 6 && n != 9 {
		return nil, fmt.Errorf("%w: legacy envelope has %d fields", ErrWrongFieldCount, n)
	}
	tx := &Transaction{Type: TxLegacy}
	var err error
	if tx.Nonce, err = fieldUint64(items[0]); err != nil {
		return nil, err
	}
	if tx.GasPrice, err = fieldUint256(items[1]); err != nil {
		return nil, err
	}
	if tx.Gas, err = fieldUint64(items[2]); err != nil {
		return nil, err
	}
	if tx.To, err = fieldAddress(items[3]); err != nil {
		return nil, err
	}
	if tx.Value, err = fieldUint256(items[4]); err != nil {
		return nil, err
	}
	if tx.Data, err = fieldBytes(items[5]); err != nil {
		return nil, err
	}
	if n == 9 {
		tx.Signed = true
		if tx.V, err = fieldUint256(items[6]); err != nil {
			return nil, err
		}
		if tx.R, err = fieldUint256(items[7]); err != nil {
			return nil, err
		}
		if tx.S, err = fieldUint256(items[8]); err != nil {
			return nil, err
		}
		// EIP-155 folds the chain id into v; decode it now so tx.ChainID is
		// complete as soon as decode returns, rather than as a side effect of
		// later calling tx.Signature().
		_, impliedChainID, err := DecodeV(tx.V, nil)
		if err != nil {
			return nil, err
		}
		if impliedChainID != nil {
			tx.ChainID = impliedChainID
		}
	}
	return tx, nil
}

func decodeAccessList(items []Item) (*Transaction, error) {
	n := len(items)
	if n != 8 && n != 11 {
		return nil, fmt.Errorf("%w: access-list envelope has %d fields", ErrWrongFieldCount, n)
	}
	tx := &Transaction{Type: TxAccessList}
	var err error
	if tx.ChainID, err = fieldUint256(items[0]); err != nil {
		return nil, err
	}
	if tx.Nonce, err = fieldUint64(items[1]); err != nil {
		return nil, err
	}
	if tx.GasPrice, err = fieldUint256(items[2]); err != nil {
		return nil, err
	}
	if tx.Gas, err = fieldUint64(items[3]); err != nil {
		return nil, err
	}
	if tx.To, err = fieldAddress(items[4]); err != nil {
		return nil, err
	}
	if tx.Value, err = fieldUint256(items[5]); err != nil {
		return nil, err
	}
	if tx.Data, err = fieldBytes(items[6]); err != nil {
		return nil, err
	}
	if tx.AccessList, err = itemToAccessList(items[7]); err != nil {
		return nil, err
	}
	if n == 11 {
		tx.Signed = true
		if tx.YParity, err = fieldYParity(items[8]); err != nil {
			return nil, err
		}
		if tx.R, err = fieldUint256(items[9]); err != nil {
			return nil, err
		}
		if tx.S, err = fieldUint256(items[10]); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

func decodeDynamicFee(items []Item) (*Transaction, error) {
	n := len(items)
	if n != 9 && n != 12 {
		return nil, fmt.Errorf("%w: dynamic-fee envelope has %d fields", ErrWrongFieldCount, n)
	}
	tx := &Transaction{Type: TxDynamicFee}
	var err error
	if tx.ChainID, err = fieldUint256(items[0]); err != nil {
		return nil, err
	}
	if tx.Nonce, err = fieldUint64(items[1]); err != nil {
		return nil, err
	}
	if tx.GasTipCap, err = fieldUint256(items[2]); err != nil {
		return nil, err
	}
	if tx.GasFeeCap, err = fieldUint256(items[3]); err != nil {
		return nil, err
	}
	if tx.Gas, err = fieldUint64(items[4]); err != nil {
		return nil, err
	}
	if tx.To, err = fieldAddress(items[5]); err != nil {
		return nil, err
	}
	if tx.Value, err = fieldUint256(items[6]); err != nil {
		return nil, err
	}
	if tx.Data, err = fieldBytes(items[7]); err != nil {
		return nil, err
	}
	if tx.AccessList, err = itemToAccessList(items[8]); err != nil {
		return nil, err
	}
	if n == 12 {
		tx.Signed = true
		if tx.YParity, err = fieldYParity(items[9]); err != nil {
			return nil, err
		}
		if tx.R, err = fieldUint256(items[10]); err != nil {
			return nil, err
		}
		if tx.S, err = fieldUint256(items[11]); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

func decodeBlob(items []Item) (*Transaction, error) {
	n := len(items)
	if n != 11 && n != 14 {
		return nil, fmt.Errorf("%w: blob envelope has %d fields", ErrWrongFieldCount, n)
	}
	tx := &Transaction{Type: TxBlob}
	var err error
	if tx.ChainID, err = fieldUint256(items[0]); err != nil {
		return nil, err
	}
	if tx.Nonce, err = fieldUint64(items[1]); err != nil {
		return nil, err
	}
	if tx.GasTipCap, err = fieldUint256(items[2]); err != nil {
		return nil, err
	}
	if tx.GasFeeCap, err = fieldUint256(items[3]); err != nil {
		return nil, err
	}
	if tx.Gas, err = fieldUint64(items[4]); err != nil {
		return nil, err
	}
	if tx.To, err = fieldAddress(items[5]); err != nil {
		return nil, err
	}
	if tx.Value, err = fieldUint256(items[6]); err != nil {
		return nil, err
	}
	if tx.Data, err = fieldBytes(items[7]); err != nil {
		return nil, err
	}
	if tx.AccessList, err = itemToAccessList(items[8]); err != nil {
		return nil, err
	}
	if tx.MaxFeePerBlobGas, err = fieldUint256(items[9]); err != nil {
		return nil, err
	}
	if tx.BlobVersionedHashes, err = itemToHashList(items[10]); err != nil {
		return nil, err
	}
	if n == 14 {
		tx.Signed = true
		if tx.YParity, err = fieldYParity(items[11]); err != nil {
			return nil, err
		}
		if tx.R, err = fieldUint256(items[12]); err != nil {
			return nil, err
		}
		if tx.S, err = fieldUint256(items[13]); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

func decodeSetCode(items []Item) (*Transaction, error) {
	n := len(items)
	if n != 10 && n != 13 {
		return nil, fmt.Errorf("%w: set-code envelope has %d fields", ErrWrongFieldCount, n)
	}
	tx := &Transaction{Type: TxSetCode}
	var err error
	if tx.ChainID, err = fieldUint256(items[0]); err != nil {
		return nil, err
	}
	if tx.Nonce, err = fieldUint64(items[1]); err != nil {
		return nil, err
	}
	if tx.GasTipCap, err = fieldUint256(items[2]); err != nil {
		return nil, err
	}
	if tx.GasFeeCap, err = fieldUint256(items[3]); err != nil {
		return nil, err
	}
	if tx.Gas, err = fieldUint64(items[4]); err != nil {
		return nil, err
	}
	if tx.To, err = fieldAddress(items[5]); err != nil {
		return nil, err
	}
	if tx.Value, err = fieldUint256(items[6]); err != nil {
		return nil, err
	}
	if tx.Data, err = fieldBytes(items[7]); err != nil {
		return nil, err
	}
	if tx.AccessList, err = itemToAccessList(items[8]); err != nil {
		return nil, err
	}
	if tx.AuthorizationList, err = itemToAuthorizationList(items[9]); err != nil {
		return nil, err
	}
	if n == 13 {
		tx.Signed = true
		if tx.YParity, err = fieldYParity(items[10]); err != nil {
			return nil, err
		}
		if tx.R, err = fieldUint256(items[11]); err != nil {
			return nil, err
		}
		if tx.S, err = fieldUint256(items[12]); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// EncodeTransaction produces the canonical wire bytes for tx: the bare RLP
// list for TxLegacy, or the type byte followed by the RLP list for typed
// envelopes. Round-tripping DecodeTransaction(EncodeTransaction(tx)) is
// byte-identical for every value DecodeTransaction can produce.
func EncodeTransaction(tx *Transaction) ([]byte, error) {
	if tx.Type == TxLegacy {
		fields := []Item{
			{String: bytesFromUint64(tx.Nonce)},
			{String: uint256ToBytes(tx.GasPrice)},
			{String: bytesFromUint64(tx.Gas)},
			addressToItem(tx.To),
			{String: uint256ToBytes(tx.Value)},
			{String: tx.Data},
		}
		if tx.Signed {
			fields = append(fields,
				Item{String: uint256ToBytes(tx.V)},
				Item{String: uint256ToBytes(tx.R)},
				Item{String: uint256ToBytes(tx.S)},
			)
		}
		return EncodeRLP(Item{List: fields}), nil
	}

	fields, err := typedUnsignedFields(tx)
	if err != nil {
		return nil, err
	}
	if tx.Signed {
		fields = append(fields,
			Item{String: bytesFromUint64(uint64(tx.YParity))},
			Item{String: uint256ToBytes(tx.R)},
			Item{String: uint256ToBytes(tx.S)},
		)
	}
	body := EncodeRLP(Item{List: fields})
	out := make([]byte, 0, 1+len(body))
	out = append(out, tx.Type.envelopeByte())
	return append(out, body...), nil
}

// typedUnsignedFields builds the unsigned field-list Items for one of the
// four typed envelopes, exactly per spec.md §4.4's table. Shared between
// EncodeTransaction (which appends the signature fields) and SigningHash
// (which Keccaks the type byte prepended to this same list).
func typedUnsignedFields(tx *Transaction) ([]Item, error) {
	base := []Item{
		{String: uint256ToBytes(tx.ChainID)},
		{String: bytesFromUint64(tx.Nonce)},
	}
	switch tx.Type {
	case TxAccessList:
		return append(base,
			Item{String: uint256ToBytes(tx.GasPrice)},
			Item{String: bytesFromUint64(tx.Gas)},
			addressToItem(tx.To),
			Item{String: uint256ToBytes(tx.Value)},
			Item{String: tx.Data},
			accessListToItem(tx.AccessList),
		), nil
	case TxDynamicFee:
		return append(base,
			Item{String: uint256ToBytes(tx.GasTipCap)},
			Item{String: uint256ToBytes(tx.GasFeeCap)},
			Item{String: bytesFromUint64(tx.Gas)},
			addressToItem(tx.To),
			Item{String: uint256ToBytes(tx.Value)},
			Item{String: tx.Data},
			accessListToItem(tx.AccessList),
		), nil
	case TxBlob:
		return append(base,
			Item{String: uint256ToBytes(tx.GasTipCap)},
			Item{String: uint256ToBytes(tx.GasFeeCap)},
			Item{String: bytesFromUint64(tx.Gas)},
			addressToItem(tx.To),
			Item{String: uint256ToBytes(tx.Value)},
			Item{String: tx.Data},
			accessListToItem(tx.AccessList),
			Item{String: uint256ToBytes(tx.MaxFeePerBlobGas)},
			hashListToItem(tx.BlobVersionedHashes),
		), nil
	case TxSetCode:
		return append(base,
			Item{String: uint256ToBytes(tx.GasTipCap)},
			Item{String: uint256ToBytes(tx.GasFeeCap)},
			Item{String: bytesFromUint64(tx.Gas)},
			addressToItem(tx.To),
			Item{String: uint256ToBytes(tx.Value)},
			Item{String: tx.Data},
			accessListToItem(tx.AccessList),
			authorizationListToItem(tx.AuthorizationList),
		), nil
	default:
		return nil, fmt.Errorf("%w: type %v", ErrUnknownEnvelope, tx.Type)
	}
}

// ---- scalar field helpers ----

func fieldUint64(it Item) (uint64, error) {
	if it.IsList() {
		return 0, fmt.Errorf("%w: expected integer, got list", ErrWrongFieldCount)
	}
	return uint64FromBytes(it.String)
}

func fieldUint256(it Item) (*uint256.Int, error) {
	if it.IsList() {
		return nil, fmt.Errorf("%w: expected integer, got list", ErrWrongFieldCount)
	}
	return bytesToUint256(it.String)
}

func fieldBytes(it Item) ([]byte, error) {
	if it.IsList() {
		return nil, fmt.Errorf("%w: expected byte string, got list", ErrWrongFieldCount)
	}
	return it.String, nil
}

func fieldAddress(it Item) (*Address, error) {
	if it.IsList() {
		return nil, fmt.Errorf("%w: expected address, got list", ErrWrongFieldCount)
	}
	if len(it.String) == 0 {
		return nil, nil
	}
	if len(it.String) != 20 {
		return nil, fmt.Errorf("%w: address must be 20 bytes, got %d", ErrWrongFieldCount, len(it.String))
	}
	var addr Address
	copy(addr[:], it.String)
	return &addr, nil
}

func fieldYParity(it Item) (uint8, error) {
	if it.IsList() {
		return 0, fmt.Errorf("%w: y_parity must be an integer", ErrMalformedSignature)
	}
	n, err := uint64FromBytes(it.String)
	if err != nil || n > 1 {
		return 0, fmt.Errorf("%w: y_parity out of range", ErrMalformedSignature)
	}
	return uint8(n), nil
}

func addressToItem(a *Address) Item {
	if a == nil {
		return Item{String: nil}
	}
	return Item{String: a[:]}
}

// ---- 256-bit integer <-> byte-string helpers ----

func bytesToUint256(b []byte) (*uint256.Int, error) {
	if len(b) > 0 && b[0] == 0 {
		return nil, fmt.Errorf("%w: leading zero byte", ErrNonCanonicalInteger)
	}
	if len(b) > 32 {
		return nil, fmt.Errorf("%w: integer overflows 256 bits", ErrNonCanonicalInteger)
	}
	return new(uint256.Int).SetBytes(b), nil
}

func uint256ToBytes(n *uint256.Int) []byte {
	if n == nil {
		return nil
	}
	return n.Bytes()
}

// ---- access list ----

func itemToAccessList(it Item) (AccessList, error) {
	if !it.IsList() {
		return nil, fmt.Errorf("%w: access list must be a list", ErrInvalidAccessList)
	}
	al := make(AccessList, 0, len(it.List))
	for _, entry := range it.List {
		if !entry.IsList() || len(entry.List) != 2 {
			return nil, fmt.Errorf("%w: access-list entry must be (address, keys)", ErrInvalidAccessList)
		}
		addrItem := entry.List[0]
		if addrItem.IsList() || len(addrItem.String) != 20 {
			return nil, fmt.Errorf("%w: access-list address must be 20 bytes", ErrInvalidAccessList)
		}
		var addr Address
		copy(addr[:], addrItem.String)

		keysItem := entry.List[1]
		if !keysItem.IsList() {
			return nil, fmt.Errorf("%w: access-list storage keys must be a list", ErrInvalidAccessList)
		}
		keys := make([]StorageKey, 0, len(keysItem.List))
		for _, k := range keysItem.List {
			if k.IsList() || len(k.String) != 32 {
				return nil, fmt.Errorf("%w: storage key must be 32 bytes", ErrInvalidAccessList)
			}
			var sk StorageKey
			copy(sk[:], k.String)
			keys = append(keys, sk)
		}
		al = append(al, AccessTuple{Address: addr, StorageKeys: keys})
	}
	return al, nil
}

func accessListToItem(al AccessList) Item {
	items := make([]Item, 0, len(al))
	for _, t := range al {
		keys := make([]Item, 0, len(t.StorageKeys))
		for _, k := range t.StorageKeys {
			keys = append(keys, Item{String: k[:]})
		}
		items = append(items, Item{List: []Item{
			{String: t.Address[:]},
			{List: keys},
		}})
	}
	return Item{List: items}
}

// ---- blob versioned hashes ----

func itemToHashList(it Item) ([]StorageKey, error) {
	if !it.IsList() {
		return nil, fmt.Errorf("%w: blob_versioned_hashes must be a list", ErrWrongFieldCount)
	}
	out := make([]StorageKey, 0, len(it.List))
	for _, h := range it.List {
		if h.IsList() || len(h.String) != 32 {
			return nil, fmt.Errorf("%w: blob versioned hash must be 32 bytes", ErrWrongFieldCount)
		}
		var sk StorageKey
		copy(sk[:], h.String)
		out = append(out, sk)
	}
	return out, nil
}

func hashListToItem(hs []StorageKey) Item {
	items := make([]Item, 0, len(hs))
	for _, h := range hs {
		items = append(items, Item{String: h[:]})
	}
	return Item{List: items}
}

// ---- EIP-7702 authorization list ----

func itemToAuthorizationList(it Item) (AuthorizationList, error) {
	if !it.IsList() {
		return nil, fmt.Errorf("%w: authorization list must be a list", ErrInvalidAuthorization)
	}
	out := make(AuthorizationList, 0, len(it.List))
	for _, entry := range it.List {
		if !entry.IsList() || len(entry.List) != 6 {
			return nil, fmt.Errorf("%w: authorization tuple must have 6 fields", ErrInvalidAuthorization)
		}
		chainIDItem := entry.List[0]
		if chainIDItem.IsList() {
			return nil, fmt.Errorf("%w: chain id must be an integer", ErrInvalidAuthorization)
		}
		chainID, err := bytesToUint256(chainIDItem.String)
		if err != nil {
			return nil, fmt.Errorf("%w: chain id: %v", ErrInvalidAuthorization, err)
		}

		addrItem := entry.List[1]
		if addrItem.IsList() || len(addrItem.String) != 20 {
			return nil, fmt.Errorf("%w: address must be 20 bytes", ErrInvalidAuthorization)
		}
		var addr Address
		copy(addr[:], addrItem.String)

		// nonce is an RLP list of length 0 (absent) or 1 (present) — never
		// the integer itself. This is the one place in the wire grammar
		// where the empty-list/empty-string distinction is load-bearing.
		nonceItem := entry.List[2]
		if !nonceItem.IsList() || len(nonceItem.List) > 1 {
			return nil, fmt.Errorf("%w: nonce must be a 0- or 1-element list", ErrInvalidAuthorization)
		}
		var noncePtr *uint64
		if len(nonceItem.List) == 1 {
			if nonceItem.List[0].IsList() {
				return nil, fmt.Errorf("%w: nonce value must be an integer", ErrInvalidAuthorization)
			}
			n, err := uint64FromBytes(nonceItem.List[0].String)
			if err != nil {
				return nil, fmt.Errorf("%w: nonce: %v", ErrInvalidAuthorization, err)
			}
			noncePtr = &n
		}

		yParityItem := entry.List[3]
		yParity, err := fieldYParity(yParityItem)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAuthorization, err)
		}

		rItem := entry.List[4]
		if rItem.IsList() {
			return nil, fmt.Errorf("%w: r must be an integer", ErrInvalidAuthorization)
		}
		r, err := bytesToUint256(rItem.String)
		if err != nil {
			return nil, fmt.Errorf("%w: r: %v", ErrInvalidAuthorization, err)
		}

		sItem := entry.List[5]
		if sItem.IsList() {
			return nil, fmt.Errorf("%w: s must be an integer", ErrInvalidAuthorization)
		}
		s, err := bytesToUint256(sItem.String)
		if err != nil {
			return nil, fmt.Errorf("%w: s: %v", ErrInvalidAuthorization, err)
		}

		out = append(out, Authorization{
			ChainID: chainID,
			Address: addr,
			Nonce:   noncePtr,
			YParity: yParity,
			R:       r,
			S:       s,
		})
	}
	return out, nil
}

func authorizationListToItem(al AuthorizationList) Item {
	items := make([]Item, 0, len(al))
	for _, a := range al {
		var nonceList []Item
		if a.Nonce != nil {
			nonceList = []Item{{String: bytesFromUint64(*a.Nonce)}}
		} else {
			nonceList = []Item{}
		}
		items = append(items, Item{List: []Item{
			{String: uint256ToBytes(a.ChainID)},
			{String: a.Address[:]},
			{List: nonceList},
			{String: bytesFromUint64(uint64(a.YParity))},
			{String: uint256ToBytes(a.R)},
			{String: uint256ToBytes(a.S)},
		}})
	}
	return Item{List: items}
}
