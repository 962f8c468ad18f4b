// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTx() *MsgTx {
	tx := NewMsgTx(1)
	tx.TxIn = []*TxIn{
		{
			PreviousOutPoint: OutPoint{Index: 1},
			Sequence:         0xffffffff,
			Witness:          [][]byte{{0x01, 0x02}, {0x03}},
		},
	}
	tx.TxOut = []*TxOut{
		{
			Value:   5000,
			Address: Address{Version: 0, Hash: bytes.Repeat([]byte{0xAB}, 20)},
			Covenant: Covenant{
				Type:  CovenantOpen,
				Items: [][]byte{{0x01, 0x02, 0x03, 0x04}, []byte("example")},
			},
		},
	}
	return tx
}

func TestMsgTxRoundTrip(t *testing.T) {
	tx := sampleTx()

	var buf bytes.Buffer
	require.NoError(t, tx.SerializeWitness(&buf))

	var decoded MsgTx
	require.NoError(t, decoded.Decode(&buf))

	require.Equal(t, tx.Version, decoded.Version)
	require.Equal(t, tx.LockTime, decoded.LockTime)
	require.Equal(t, len(tx.TxIn), len(decoded.TxIn))
	require.Equal(t, tx.TxIn[0].Witness, decoded.TxIn[0].Witness)
	require.Equal(t, tx.TxOut[0].Covenant.Type, decoded.TxOut[0].Covenant.Type)
	require.Equal(t, tx.TxOut[0].Covenant.Items, decoded.TxOut[0].Covenant.Items)
}

func TestTxHashExcludesWitness(t *testing.T) {
	tx := sampleTx()
	idHash := tx.TxHash()

	tx.TxIn[0].Witness = [][]byte{{0xff, 0xff, 0xff}}
	idHash2 := tx.TxHash()
	require.Equal(t, idHash, idHash2, "id hash must not depend on witness data")

	wHash1 := tx.WitnessHash()
	tx.TxIn[0].Witness = [][]byte{{0x01}}
	wHash2 := tx.WitnessHash()
	require.NotEqual(t, wHash1, wHash2, "witness hash must depend on witness data")
}

func TestOutPointLess(t *testing.T) {
	a := OutPoint{Index: 0}
	b := OutPoint{Index: 1}
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
}

func TestCovenantRoundTrip(t *testing.T) {
	c := Covenant{Type: CovenantRegister, Items: [][]byte{{1, 2, 3}, {}, {9}}}
	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))

	var decoded Covenant
	require.NoError(t, decoded.Decode(&buf))
	require.Equal(t, c.Type, decoded.Type)
	require.Equal(t, c.Items, decoded.Items)
}
