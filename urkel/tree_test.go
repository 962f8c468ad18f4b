// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package urkel

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/urkel/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "urkel-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := store.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func keyFor(s string) chainhash.Hash {
	return chainhash.HashH([]byte(s))
}

func TestTransactionInsertAndGet(t *testing.T) {
	s := openTestStore(t)
	tree, err := NewTree(s)
	require.NoError(t, err)

	tx := tree.Begin()
	require.NoError(t, tx.Insert(keyFor("alpha"), []byte("alpha-value")))
	require.NoError(t, tx.Insert(keyFor("beta"), []byte("beta-value")))

	v, ok, err := tx.Get(keyFor("alpha"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alpha-value", string(v))

	_, ok, err = tx.Get(keyFor("gamma"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTransactionCommitPersists(t *testing.T) {
	s := openTestStore(t)
	tree, err := NewTree(s)
	require.NoError(t, err)

	tx := tree.Begin()
	require.NoError(t, tx.Insert(keyFor("persisted"), []byte("value-1")))
	newTree, err := tx.Commit()
	require.NoError(t, err)
	require.NotEqual(t, chainhash.Hash{}, newTree.Root())

	v, ok, err := newTree.Get(keyFor("persisted"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value-1", string(v))

	// Reopening against the same store recovers the committed root.
	reopened, err := NewTree(s)
	require.NoError(t, err)
	require.Equal(t, newTree.Root(), reopened.Root())
	v, ok, err = reopened.Get(keyFor("persisted"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value-1", string(v))
}

func TestTransactionRemove(t *testing.T) {
	s := openTestStore(t)
	tree, err := NewTree(s)
	require.NoError(t, err)

	tx := tree.Begin()
	require.NoError(t, tx.Insert(keyFor("doomed"), []byte("x")))
	require.NoError(t, tx.Remove(keyFor("doomed")))

	_, ok, err := tx.Get(keyFor("doomed"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestProveAndVerifyExistsAndAbsent(t *testing.T) {
	s := openTestStore(t)
	tree, err := NewTree(s)
	require.NoError(t, err)

	tx := tree.Begin()
	require.NoError(t, tx.Insert(keyFor("one"), []byte("1")))
	require.NoError(t, tx.Insert(keyFor("two"), []byte("2")))
	require.NoError(t, tx.Insert(keyFor("three"), []byte("3")))

	root := tx.Root()

	proof, err := Prove(tx, root, keyFor("two"))
	require.NoError(t, err)
	require.Equal(t, ProofExists, proof.Type)
	ok, value := VerifyProof(root, keyFor("two"), proof)
	require.True(t, ok)
	require.Equal(t, "2", string(value))

	missingProof, err := Prove(tx, root, keyFor("absent-key"))
	require.NoError(t, err)
	require.NotEqual(t, ProofExists, missingProof.Type)
	ok, _ = VerifyProof(root, keyFor("absent-key"), missingProof)
	require.True(t, ok)
}
