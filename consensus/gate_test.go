// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/domainchain/dmcd/chaincfg"
	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/names"
	"github.com/domainchain/dmcd/urkel"
	"github.com/domainchain/dmcd/urkel/store"
	"github.com/domainchain/dmcd/wire"
)

func openTestTree(t *testing.T) *urkel.Tree {
	t.Helper()
	dir, err := os.MkdirTemp("", "consensus-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := store.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tree, err := urkel.NewTree(s)
	require.NoError(t, err)
	return tree
}

type fixedFetcher struct {
	m map[wire.OutPoint]*wire.TxOut
}

func (f *fixedFetcher) FetchPrevOutput(op wire.OutPoint) (*wire.TxOut, bool) {
	out, ok := f.m[op]
	return out, ok
}

func u32le(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func TestGateConnectBlockAppliesOpenAndEmitsOutcome(t *testing.T) {
	tree := openTestTree(t)
	params := &chaincfg.RegressionNetParams
	outcomes := make(chan Outcome, 4)
	gate := NewGate(tree, params, outcomes)

	name := []byte("consensus-test")
	nameHash := names.Hash(name)

	openTx := wire.NewMsgTx(1)
	openTx.TxOut = []*wire.TxOut{{Covenant: wire.Covenant{
		Type:  wire.CovenantOpen,
		Items: [][]byte{nameHash[:], u32le(0), name},
	}}}

	var blockHash chainhash.Hash
	blockHash[0] = 1
	err := gate.ConnectBlock(blockHash, 1, []*wire.MsgTx{openTx}, &fixedFetcher{m: map[wire.OutPoint]*wire.TxOut{}})
	require.NoError(t, err)

	select {
	case outcome := <-outcomes:
		require.Equal(t, uint32(1), outcome.Height)
		require.Contains(t, outcome.NamesTouched, nameHash)
	default:
		t.Fatal("expected an Outcome to be emitted")
	}

	require.NotEqual(t, chainhash.Hash{}, gate.Root())
}

func TestGateConnectBlockRollsBackOnFailure(t *testing.T) {
	tree := openTestTree(t)
	params := &chaincfg.RegressionNetParams
	gate := NewGate(tree, params, nil)
	rootBefore := gate.Root()

	name := []byte("rollback-test")
	nameHash := names.Hash(name)

	// A RENEW with no prior owner state must fail, and must not leave
	// the trie's committed root changed.
	badTx := wire.NewMsgTx(1)
	var renewalHash chainhash.Hash
	badTx.TxOut = []*wire.TxOut{{Covenant: wire.Covenant{
		Type:  wire.CovenantRenew,
		Items: [][]byte{nameHash[:], u32le(0), renewalHash[:]},
	}}}

	var blockHash chainhash.Hash
	blockHash[0] = 2
	err := gate.ConnectBlock(blockHash, 1, []*wire.MsgTx{badTx}, &fixedFetcher{m: map[wire.OutPoint]*wire.TxOut{}})
	require.Error(t, err)
	require.Equal(t, rootBefore, gate.Root())
}
