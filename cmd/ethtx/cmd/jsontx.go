package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ModChain/ethtx"
	"github.com/holiman/uint256"
)

// jsonTx is the CLI's on-the-wire JSON shape for a Transaction: every
// integer and byte field is a 0x-prefixed hex string, following the
// field-naming convention of Ethereum JSON-RPC transaction objects (the same
// convention the teacher's own evmTxJson used for its narrower legacy-only
// shape, here generalized to all five envelopes).
type jsonTx struct {
	Type                string         `json:"type"`
	ChainID             string         `json:"chainId,omitempty"`
	Nonce               string         `json:"nonce"`
	GasPrice            string         `json:"gasPrice,omitempty"`
	GasTipCap           string         `json:"maxPriorityFeePerGas,omitempty"`
	GasFeeCap           string         `json:"maxFeePerGas,omitempty"`
	Gas                 string         `json:"gas"`
	To                  string         `json:"to,omitempty"`
	Value               string         `json:"value"`
	Data                string         `json:"input"`
	AccessList          []jsonAccess   `json:"accessList,omitempty"`
	MaxFeePerBlobGas     string         `json:"maxFeePerBlobGas,omitempty"`
	BlobVersionedHashes []string       `json:"blobVersionedHashes,omitempty"`
	AuthorizationList   []jsonAuth     `json:"authorizationList,omitempty"`
	V                   string         `json:"v,omitempty"`
	YParity             string         `json:"yParity,omitempty"`
	R                   string         `json:"r,omitempty"`
	S                   string         `json:"s,omitempty"`
}

type jsonAccess struct {
	Address     string   `json:"address"`
	StorageKeys []string `json:"storageKeys"`
}

type jsonAuth struct {
	ChainID string `json:"chainId"`
	Address string `json:"address"`
	Nonce   string `json:"nonce,omitempty"`
	YParity string `json:"yParity"`
	R       string `json:"r"`
	S       string `json:"s"`
}

func toJSONTx(tx *ethtx.Transaction) jsonTx {
	out := jsonTx{
		Type:  tx.Type.String(),
		Nonce: hexUint64(tx.Nonce),
		Gas:   hexUint64(tx.Gas),
		Value: hexUint256(tx.Value),
		Data:  "0x" + hex.EncodeToString(tx.Data),
	}
	if tx.ChainID != nil {
		out.ChainID = hexUint256(tx.ChainID)
	}
	if tx.GasPrice != nil {
		out.GasPrice = hexUint256(tx.GasPrice)
	}
	if tx.GasTipCap != nil {
		out.GasTipCap = hexUint256(tx.GasTipCap)
	}
	if tx.GasFeeCap != nil {
		out.GasFeeCap = hexUint256(tx.GasFeeCap)
	}
	if tx.To != nil {
		out.To = "0x" + hex.EncodeToString(tx.To[:])
	}
	for _, a := range tx.AccessList {
		ja := jsonAccess{Address: "0x" + hex.EncodeToString(a.Address[:])}
		for _, k := range a.StorageKeys {
			ja.StorageKeys = append(ja.StorageKeys, "0x"+hex.EncodeToString(k[:]))
		}
		out.AccessList = append(out.AccessList, ja)
	}
	if tx.MaxFeePerBlobGas != nil {
		out.MaxFeePerBlobGas = hexUint256(tx.MaxFeePerBlobGas)
	}
	for _, h := range tx.BlobVersionedHashes {
		out.BlobVersionedHashes = append(out.BlobVersionedHashes, "0x"+hex.EncodeToString(h[:]))
	}
	for _, a := range tx.AuthorizationList {
		ja := jsonAuth{
			ChainID: hexUint256(a.ChainID),
			Address: "0x" + hex.EncodeToString(a.Address[:]),
			YParity: fmt.Sprintf("0x%x", a.YParity),
			R:       hexUint256(a.R),
			S:       hexUint256(a.S),
		}
		if a.Nonce != nil {
			ja.Nonce = hexUint64(*a.Nonce)
		}
		out.AuthorizationList = append(out.AuthorizationList, ja)
	}
	if tx.Signed {
		if tx.Type == ethtx.TxLegacy {
			out.V = hexUint256(tx.V)
		} else {
			out.YParity = fmt.Sprintf("0x%x", tx.YParity)
		}
		out.R = hexUint256(tx.R)
		out.S = hexUint256(tx.S)
	}
	return out
}

func hexUint64(v uint64) string { return fmt.Sprintf("0x%x", v) }

func hexUint256(v *uint256.Int) string {
	if v == nil {
		return ""
	}
	return "0x" + v.Hex()[2:]
}

func parseUint256(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := uint256.FromHex(normalizeHex(s))
	if err != nil {
		return nil, fmt.Errorf("parse uint256 %q: %w", s, err)
	}
	return n, nil
}

func parseBytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

func normalizeHex(s string) string {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return "0x" + s
	}
	return s
}

func parseUint64(s string) (uint64, error) {
	n, err := parseUint256(s)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, nil
	}
	return n.Uint64(), nil
}

func txTypeFromString(s string) (ethtx.TxType, error) {
	switch s {
	case "legacy":
		return ethtx.TxLegacy, nil
	case "access-list":
		return ethtx.TxAccessList, nil
	case "dynamic-fee":
		return ethtx.TxDynamicFee, nil
	case "blob":
		return ethtx.TxBlob, nil
	case "set-code":
		return ethtx.TxSetCode, nil
	default:
		return 0, fmt.Errorf("unknown transaction type %q", s)
	}
}

// fromJSONTx converts the CLI's JSON shape back into a Transaction, the
// inverse of toJSONTx. Signature fields are carried through as-is; callers
// that want a fresh signature use SigningHash/Sign/ApplySignature instead.
func fromJSONTx(j jsonTx) (*ethtx.Transaction, error) {
	typ, err := txTypeFromString(j.Type)
	if err != nil {
		return nil, err
	}
	tx := &ethtx.Transaction{Type: typ}

	if tx.Nonce, err = parseUint64(j.Nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	if tx.Gas, err = parseUint64(j.Gas); err != nil {
		return nil, fmt.Errorf("gas: %w", err)
	}
	if tx.ChainID, err = parseUint256(j.ChainID); err != nil {
		return nil, fmt.Errorf("chainId: %w", err)
	}
	if tx.GasPrice, err = parseUint256(j.GasPrice); err != nil {
		return nil, fmt.Errorf("gasPrice: %w", err)
	}
	if tx.GasTipCap, err = parseUint256(j.GasTipCap); err != nil {
		return nil, fmt.Errorf("maxPriorityFeePerGas: %w", err)
	}
	if tx.GasFeeCap, err = parseUint256(j.GasFeeCap); err != nil {
		return nil, fmt.Errorf("maxFeePerGas: %w", err)
	}
	if tx.Value, err = parseUint256(j.Value); err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	if tx.Data, err = parseBytes(j.Data); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if j.To != "" {
		b, err := parseBytes(j.To)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		if len(b) != 20 {
			return nil, fmt.Errorf("to: expected 20 bytes, got %d", len(b))
		}
		var addr ethtx.Address
		copy(addr[:], b)
		tx.To = &addr
	}

	for _, ja := range j.AccessList {
		b, err := parseBytes(ja.Address)
		if err != nil || len(b) != 20 {
			return nil, fmt.Errorf("accessList address: invalid")
		}
		var at ethtx.AccessTuple
		copy(at.Address[:], b)
		for _, ks := range ja.StorageKeys {
			kb, err := parseBytes(ks)
			if err != nil || len(kb) != 32 {
				return nil, fmt.Errorf("accessList storageKey: invalid")
			}
			var k ethtx.StorageKey
			copy(k[:], kb)
			at.StorageKeys = append(at.StorageKeys, k)
		}
		tx.AccessList = append(tx.AccessList, at)
	}
	if j.Type == "access-list" || j.Type == "dynamic-fee" || j.Type == "blob" || j.Type == "set-code" {
		if tx.AccessList == nil {
			tx.AccessList = ethtx.AccessList{}
		}
	}

	if tx.MaxFeePerBlobGas, err = parseUint256(j.MaxFeePerBlobGas); err != nil {
		return nil, fmt.Errorf("maxFeePerBlobGas: %w", err)
	}
	for _, hs := range j.BlobVersionedHashes {
		b, err := parseBytes(hs)
		if err != nil || len(b) != 32 {
			return nil, fmt.Errorf("blobVersionedHashes: invalid hash")
		}
		var h ethtx.StorageKey
		copy(h[:], b)
		tx.BlobVersionedHashes = append(tx.BlobVersionedHashes, h)
	}

	for _, ja := range j.AuthorizationList {
		cid, err := parseUint256(ja.ChainID)
		if err != nil {
			return nil, fmt.Errorf("authorizationList chainId: %w", err)
		}
		addrB, err := parseBytes(ja.Address)
		if err != nil || len(addrB) != 20 {
			return nil, fmt.Errorf("authorizationList address: invalid")
		}
		r, err := parseUint256(ja.R)
		if err != nil {
			return nil, fmt.Errorf("authorizationList r: %w", err)
		}
		s, err := parseUint256(ja.S)
		if err != nil {
			return nil, fmt.Errorf("authorizationList s: %w", err)
		}
		yp, err := parseUint64(ja.YParity)
		if err != nil {
			return nil, fmt.Errorf("authorizationList yParity: %w", err)
		}
		auth := ethtx.Authorization{ChainID: cid, YParity: uint8(yp), R: r, S: s}
		copy(auth.Address[:], addrB)
		if ja.Nonce != "" {
			n, err := parseUint64(ja.Nonce)
			if err != nil {
				return nil, fmt.Errorf("authorizationList nonce: %w", err)
			}
			auth.Nonce = &n
		}
		tx.AuthorizationList = append(tx.AuthorizationList, auth)
	}

	if j.R != "" && j.S != "" {
		tx.Signed = true
		if tx.R, err = parseUint256(j.R); err != nil {
			return nil, fmt.Errorf("r: %w", err)
		}
		if tx.S, err = parseUint256(j.S); err != nil {
			return nil, fmt.Errorf("s: %w", err)
		}
		if typ == ethtx.TxLegacy {
			if tx.V, err = parseUint256(j.V); err != nil {
				return nil, fmt.Errorf("v: %w", err)
			}
		} else {
			yp, err := parseUint64(j.YParity)
			if err != nil {
				return nil, fmt.Errorf("yParity: %w", err)
			}
			tx.YParity = uint8(yp)
		}
	}

	return tx, nil
}
