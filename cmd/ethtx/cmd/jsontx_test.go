package cmd

import (
	"testing"

	"github.com/ModChain/ethtx"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestJSONTxRoundTripDynamicFee(t *testing.T) {
	addr := ethtx.Address{0xaa, 0xbb}
	tx := &ethtx.Transaction{
		Type: ethtx.TxDynamicFee, ChainID: uint256.NewInt(1), Nonce: 7,
		GasTipCap: uint256.NewInt(2_000_000_000), GasFeeCap: uint256.NewInt(40_000_000_000),
		Gas: 21000, To: &addr, Value: uint256.NewInt(5), Data: []byte{0xde, 0xad},
		AccessList: ethtx.AccessList{
			{Address: addr, StorageKeys: []ethtx.StorageKey{{0x01}}},
		},
	}

	j := toJSONTx(tx)
	require.Equal(t, "dynamic-fee", j.Type)
	require.Equal(t, "0x1", j.ChainID)
	require.Equal(t, "0x7", j.Nonce)
	require.Len(t, j.AccessList, 1)

	back, err := fromJSONTx(j)
	require.NoError(t, err)
	require.Equal(t, tx.Type, back.Type)
	require.Equal(t, tx.Nonce, back.Nonce)
	require.Equal(t, tx.Gas, back.Gas)
	require.True(t, tx.ChainID.Eq(back.ChainID))
	require.True(t, tx.GasTipCap.Eq(back.GasTipCap))
	require.True(t, tx.GasFeeCap.Eq(back.GasFeeCap))
	require.True(t, tx.Value.Eq(back.Value))
	require.Equal(t, tx.Data, back.Data)
	require.Equal(t, *tx.To, *back.To)
	require.Len(t, back.AccessList, 1)
	require.Equal(t, tx.AccessList[0].Address, back.AccessList[0].Address)
	require.Equal(t, tx.AccessList[0].StorageKeys, back.AccessList[0].StorageKeys)
}

func TestJSONTxRoundTripContractCreation(t *testing.T) {
	tx := &ethtx.Transaction{
		Type: ethtx.TxLegacy, Nonce: 0, GasPrice: uint256.NewInt(1), Gas: 53000,
		To: nil, Value: uint256.NewInt(0), Data: []byte{0x60, 0x80},
	}
	j := toJSONTx(tx)
	require.Empty(t, j.To)

	back, err := fromJSONTx(j)
	require.NoError(t, err)
	require.Nil(t, back.To)
}

func TestJSONTxRoundTripSignedLegacy(t *testing.T) {
	tx := &ethtx.Transaction{
		Type: ethtx.TxLegacy, Nonce: 1, GasPrice: uint256.NewInt(1), Gas: 21000,
		Value: uint256.NewInt(0), Data: nil,
		Signed: true, V: uint256.NewInt(27), R: uint256.NewInt(111), S: uint256.NewInt(222),
	}
	j := toJSONTx(tx)
	require.Equal(t, "0x1b", j.V)

	back, err := fromJSONTx(j)
	require.NoError(t, err)
	require.True(t, back.Signed)
	require.True(t, back.V.Eq(tx.V))
	require.True(t, back.R.Eq(tx.R))
	require.True(t, back.S.Eq(tx.S))
}

func TestParseBytesHandlesOddLengthAndPrefix(t *testing.T) {
	b, err := parseBytes("0xf")
	require.NoError(t, err)
	require.Equal(t, []byte{0x0f}, b)

	b2, err := parseBytes("dead")
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad}, b2)
}
