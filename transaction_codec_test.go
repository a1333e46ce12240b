package ethtx_test

import (
	"bytes"
	"testing"

	"github.com/ModChain/ethtx"
	"github.com/ModChain/secp256k1"
	"github.com/holiman/uint256"
)

func mustPrivKey(seed []byte) *secp256k1.PrivateKey {
	return secp256k1.PrivKeyFromBytes(seed)
}

// listItem and strItem are tiny helpers for constructing RLP items by hand in tests,
// mirroring the shape rlp.go itself works against.
func listItem(items ...ethtx.Item) ethtx.Item { return ethtx.Item{List: items} }
func strItem(b []byte) ethtx.Item             { return ethtx.Item{String: b} }

func TestEnvelopeDispatchKnownVectors(t *testing.T) {
	addr := bytes.Repeat([]byte{0x11}, 20)
	nine := listItem(
		strItem(nil), strItem(nil), strItem(nil), strItem(nil), strItem(nil),
		strItem(addr), strItem(nil), strItem(nil), listItem(),
	)
	eight := listItem(
		strItem(nil), strItem(nil), strItem(nil), strItem(nil),
		strItem(addr), strItem(nil), strItem(nil), listItem(),
	)
	eleven := listItem(
		strItem(nil), strItem(nil), strItem(nil), strItem(nil), strItem(nil),
		strItem(addr), strItem(nil), strItem(nil), listItem(), strItem(nil), listItem(),
	)
	ten := listItem(
		strItem(nil), strItem(nil), strItem(nil), strItem(nil), strItem(nil),
		strItem(addr), strItem(nil), strItem(nil), listItem(), listItem(),
	)

	cases := []struct {
		name    string
		prefix  byte
		body    ethtx.Item
		wantTyp ethtx.TxType
	}{
		{"EIP-1559 nine-item list", 0x02, nine, ethtx.TxDynamicFee},
		{"EIP-2930 eight-item list", 0x01, eight, ethtx.TxAccessList},
		{"EIP-4844 eleven-item list", 0x03, eleven, ethtx.TxBlob},
		{"EIP-7702 ten-item list", 0x04, ten, ethtx.TxSetCode},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := append([]byte{c.prefix}, ethtx.EncodeRLP(c.body)...)
			tx, err := ethtx.DecodeTransaction(buf)
			if err != nil {
				t.Fatalf("decode: %s", err)
			}
			if tx.Type != c.wantTyp {
				t.Errorf("got type %v, want %v", tx.Type, c.wantTyp)
			}
		})
	}

	t.Run("legacy six-item list", func(t *testing.T) {
		six := listItem(strItem(nil), strItem(nil), strItem(nil), strItem(addr), strItem(nil), strItem(nil))
		buf := ethtx.EncodeRLP(six)
		tx, err := ethtx.DecodeTransaction(buf)
		if err != nil {
			t.Fatalf("decode: %s", err)
		}
		if tx.Type != ethtx.TxLegacy {
			t.Errorf("got type %v, want legacy", tx.Type)
		}
	})

	t.Run("legacy nine-item list", func(t *testing.T) {
		signedLegacy := listItem(
			strItem(nil), strItem(nil), strItem(nil), strItem(addr), strItem(nil), strItem(nil),
			strItem([]byte{27}), strItem([]byte{1}), strItem([]byte{1}),
		)
		buf := ethtx.EncodeRLP(signedLegacy)
		tx, err := ethtx.DecodeTransaction(buf)
		if err != nil {
			t.Fatalf("decode: %s", err)
		}
		if tx.Type != ethtx.TxLegacy {
			t.Errorf("got type %v, want legacy", tx.Type)
		}
	})

	t.Run("unknown envelope byte", func(t *testing.T) {
		if _, err := ethtx.DecodeTransaction([]byte{0x7f}); err == nil {
			t.Errorf("expected ErrUnknownEnvelope for a bare small-int byte")
		}
	})
}

func TestTransactionRoundTripAllEnvelopes(t *testing.T) {
	addr := ethtx.Address{0xaa}
	key := []byte("deterministic test key deterministic test key!")[:32]
	priv := mustPrivKey(key)

	txs := map[string]*ethtx.Transaction{
		"legacy": {
			Type: ethtx.TxLegacy, Nonce: 9, GasPrice: uint256.NewInt(20_000_000_000),
			Gas: 21000, To: &addr, Value: uint256.NewInt(1_000_000_000_000_000_000), Data: nil,
		},
		"access-list": {
			Type: ethtx.TxAccessList, ChainID: uint256.NewInt(1), Nonce: 3, GasPrice: uint256.NewInt(30_000_000_000),
			Gas: 60000, To: &addr, Value: uint256.NewInt(0), Data: []byte{0x01, 0x02},
			AccessList: ethtx.AccessList{{Address: addr, StorageKeys: []ethtx.StorageKey{{0x01}, {0x02}}}},
		},
		"dynamic-fee": {
			Type: ethtx.TxDynamicFee, ChainID: uint256.NewInt(1), Nonce: 4,
			GasTipCap: uint256.NewInt(2_000_000_000), GasFeeCap: uint256.NewInt(40_000_000_000),
			Gas: 70000, To: &addr, Value: uint256.NewInt(5), Data: []byte("hi"),
			AccessList: ethtx.AccessList{},
		},
		"blob": {
			Type: ethtx.TxBlob, ChainID: uint256.NewInt(1), Nonce: 5,
			GasTipCap: uint256.NewInt(1), GasFeeCap: uint256.NewInt(2),
			Gas: 80000, To: &addr, Value: uint256.NewInt(0), Data: nil,
			AccessList:          ethtx.AccessList{},
			MaxFeePerBlobGas:    uint256.NewInt(3),
			BlobVersionedHashes: []ethtx.StorageKey{{0x01, 0xAB}},
		},
		"set-code": {
			Type: ethtx.TxSetCode, ChainID: uint256.NewInt(1), Nonce: 6,
			GasTipCap: uint256.NewInt(1), GasFeeCap: uint256.NewInt(2),
			Gas: 90000, To: &addr, Value: uint256.NewInt(0), Data: nil,
			AccessList: ethtx.AccessList{},
			AuthorizationList: ethtx.AuthorizationList{
				{ChainID: uint256.NewInt(1), Address: addr, Nonce: nil, YParity: 0, R: uint256.NewInt(1), S: uint256.NewInt(2)},
			},
		},
	}

	for name, tx := range txs {
		t.Run(name, func(t *testing.T) {
			h, err := ethtx.SigningHash(tx)
			if err != nil {
				t.Fatalf("SigningHash: %s", err)
			}
			_, sig, err := ethtx.Sign(h, priv, tx.ChainID)
			if err != nil {
				t.Fatalf("Sign: %s", err)
			}
			ethtx.ApplySignature(tx, sig, tx.ChainID)

			enc, err := ethtx.EncodeTransaction(tx)
			if err != nil {
				t.Fatalf("EncodeTransaction: %s", err)
			}
			dec, err := ethtx.DecodeTransaction(enc)
			if err != nil {
				t.Fatalf("DecodeTransaction: %s", err)
			}
			reenc, err := ethtx.EncodeTransaction(dec)
			if err != nil {
				t.Fatalf("re-encode: %s", err)
			}
			if !bytes.Equal(enc, reenc) {
				t.Errorf("round trip not byte-identical:\n  first:  % x\n  second: % x", enc, reenc)
			}

			sender, err := ethtx.RecoverSender(dec)
			if err != nil {
				t.Fatalf("RecoverSender: %s", err)
			}
			wantSender, err := ethtx.RecoverSender(tx)
			if err != nil {
				t.Fatalf("RecoverSender(original): %s", err)
			}
			if sender != wantSender {
				t.Errorf("recovered sender changed across round trip")
			}
		})
	}
}

func TestContractCreationRoundTrip(t *testing.T) {
	tx := &ethtx.Transaction{
		Type: ethtx.TxLegacy, Nonce: 0, GasPrice: uint256.NewInt(1), Gas: 53000,
		To: nil, Value: uint256.NewInt(0), Data: []byte{0x60, 0x80, 0x60, 0x40},
	}
	enc, err := ethtx.EncodeTransaction(tx)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	dec, err := ethtx.DecodeTransaction(enc)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if dec.To != nil {
		t.Fatalf("expected nil To for contract creation, got %x", *dec.To)
	}
	reenc, err := ethtx.EncodeTransaction(dec)
	if err != nil {
		t.Fatalf("re-encode: %s", err)
	}
	if !bytes.Equal(enc, reenc) {
		t.Errorf("contract-creation round trip not byte-identical")
	}
}

func TestDecodeTransactionRejectsWrongFieldCount(t *testing.T) {
	buf := append([]byte{0x02}, ethtx.EncodeRLP(listItem(strItem(nil), strItem(nil)))...)
	if _, err := ethtx.DecodeTransaction(buf); err == nil {
		t.Errorf("expected ErrWrongFieldCount for a truncated field list")
	}
}
