// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package urkel

import (
	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/urkel/store"
)

// nodeSource is satisfied by both a committed Tree (which reads through to
// its Store) and a Transaction (which checks its pending writes first).
type nodeSource interface {
	loadNode(hash chainhash.Hash) (*node, error)
	loadValue(valueHash chainhash.Hash) ([]byte, error)
}

// Tree is a committed, root-addressed urkel trie. It is flushed to its
// Store once per tree-interval (spec.md C7); between flushes, callers
// accumulate writes in a Transaction opened against it.
type Tree struct {
	store *store.Store
	root  chainhash.Hash
}

// NewTree opens a Tree over s, positioned at the last committed root (the
// zero hash if the store has never been committed to).
func NewTree(s *store.Store) (*Tree, error) {
	root, err := s.Root()
	if err == store.ErrNotFound {
		return &Tree{store: s}, nil
	}
	if err != nil {
		return nil, err
	}
	t := &Tree{store: s}
	copy(t.root[:], root)
	return t, nil
}

// Root returns the tree's current committed root hash.
func (t *Tree) Root() chainhash.Hash {
	return t.root
}

func (t *Tree) loadNode(hash chainhash.Hash) (*node, error) {
	if hash == emptyHash {
		return nil, nil
	}
	b, err := t.store.GetNode(hash[:])
	if err == store.ErrNotFound {
		return nil, ErrNodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeNode(b)
}

func (t *Tree) loadValue(valueHash chainhash.Hash) ([]byte, error) {
	b, err := t.store.GetValue(valueHash[:])
	if err == store.ErrNotFound {
		return nil, ErrNodeNotFound
	}
	return b, err
}

// Get returns the value committed under key in the tree's current
// committed state, without needing an open Transaction.
func (t *Tree) Get(key chainhash.Hash) ([]byte, bool, error) {
	return get(t, t.root, key)
}

// Transaction is an in-memory overlay of pending writes against a base
// Tree. Both the consensus gate and the mempool admission adapter stage
// their covenant-driven NameState mutations through one of these before
// (if ever) committing them to the store (spec.md §4.7-§4.8).
type Transaction struct {
	base *Tree
	root chainhash.Hash

	pendingNodes  map[chainhash.Hash]*node
	pendingValues map[chainhash.Hash][]byte
}

// Begin opens a Transaction against t's current committed root.
func (t *Tree) Begin() *Transaction {
	return &Transaction{
		base:          t,
		root:          t.root,
		pendingNodes:  make(map[chainhash.Hash]*node),
		pendingValues: make(map[chainhash.Hash][]byte),
	}
}

// Root returns the transaction's current working root, reflecting every
// write staged so far.
func (tx *Transaction) Root() chainhash.Hash {
	return tx.root
}

func (tx *Transaction) loadNode(hash chainhash.Hash) (*node, error) {
	if hash == emptyHash {
		return nil, nil
	}
	if n, ok := tx.pendingNodes[hash]; ok {
		return n, nil
	}
	return tx.base.loadNode(hash)
}

func (tx *Transaction) loadValue(valueHash chainhash.Hash) ([]byte, error) {
	if v, ok := tx.pendingValues[valueHash]; ok {
		return v, nil
	}
	return tx.base.loadValue(valueHash)
}

func (tx *Transaction) stage(n *node) chainhash.Hash {
	h := n.hash()
	tx.pendingNodes[h] = n
	return h
}

// Get returns the value committed under key, checking pending writes
// before falling through to the base tree.
func (tx *Transaction) Get(key chainhash.Hash) ([]byte, bool, error) {
	return get(tx, tx.root, key)
}

// Insert stages a write of value under key, replacing any prior value.
func (tx *Transaction) Insert(key chainhash.Hash, value []byte) error {
	valueHash := chainhash.HashH(value)
	tx.pendingValues[valueHash] = value
	newRoot, err := tx.insertAt(tx.root, 0, key, valueHash)
	if err != nil {
		return err
	}
	tx.root = newRoot
	return nil
}

// Remove stages the deletion of key, a no-op if key is not present.
func (tx *Transaction) Remove(key chainhash.Hash) error {
	newRoot, _, err := tx.removeAt(tx.root, 0, key)
	if err != nil {
		return err
	}
	tx.root = newRoot
	return nil
}

// Commit flushes every pending node and value write to the underlying
// store and returns a fresh Tree positioned at the transaction's root.
// The consensus gate calls it once for every connected block.
func (tx *Transaction) Commit() (*Tree, error) {
	batch := tx.base.store.NewBatch()
	for hash, n := range tx.pendingNodes {
		batch.PutNode(hash[:], n.encode())
	}
	for hash, v := range tx.pendingValues {
		batch.PutValue(hash[:], v)
	}
	batch.SetRoot(tx.root[:])
	if err := tx.base.store.Commit(batch); err != nil {
		return nil, err
	}
	return &Tree{store: tx.base.store, root: tx.root}, nil
}

// --- shared recursive walk ---

func get(src nodeSource, root chainhash.Hash, key chainhash.Hash) ([]byte, bool, error) {
	cur := root
	for depth := 0; depth < 256; depth++ {
		if cur == emptyHash {
			return nil, false, nil
		}
		n, err := src.loadNode(cur)
		if err != nil {
			return nil, false, err
		}
		if n.kind == nodeKindLeaf {
			if n.key != key {
				return nil, false, nil
			}
			v, err := src.loadValue(n.valueHash)
			if err != nil {
				return nil, false, err
			}
			return v, true, nil
		}
		if getBit(key, depth) == 0 {
			cur = n.left
		} else {
			cur = n.right
		}
	}
	return nil, false, nil
}

func (tx *Transaction) insertAt(cur chainhash.Hash, depth int, key, valueHash chainhash.Hash) (chainhash.Hash, error) {
	if cur == emptyHash {
		return tx.stage(newLeafNode(key, valueHash)), nil
	}
	n, err := tx.loadNode(cur)
	if err != nil {
		return emptyHash, err
	}
	if n.kind == nodeKindLeaf {
		if n.key == key {
			return tx.stage(newLeafNode(key, valueHash)), nil
		}
		return tx.splitLeaf(n, depth, key, valueHash)
	}
	if getBit(key, depth) == 0 {
		newLeft, err := tx.insertAt(n.left, depth+1, key, valueHash)
		if err != nil {
			return emptyHash, err
		}
		return tx.stage(newInternalNode(newLeft, n.right)), nil
	}
	newRight, err := tx.insertAt(n.right, depth+1, key, valueHash)
	if err != nil {
		return emptyHash, err
	}
	return tx.stage(newInternalNode(n.left, newRight)), nil
}

func (tx *Transaction) splitLeaf(old *node, depth int, key, valueHash chainhash.Hash) (chainhash.Hash, error) {
	bitOld := getBit(old.key, depth)
	bitNew := getBit(key, depth)
	if bitOld != bitNew {
		newLeaf := tx.stage(newLeafNode(key, valueHash))
		oldLeaf := tx.stage(newLeafNode(old.key, old.valueHash))
		if bitNew == 0 {
			return tx.stage(newInternalNode(newLeaf, oldLeaf)), nil
		}
		return tx.stage(newInternalNode(oldLeaf, newLeaf)), nil
	}
	child, err := tx.splitLeaf(old, depth+1, key, valueHash)
	if err != nil {
		return emptyHash, err
	}
	if bitNew == 0 {
		return tx.stage(newInternalNode(child, emptyHash)), nil
	}
	return tx.stage(newInternalNode(emptyHash, child)), nil
}

// removeAt returns the updated subtree root and whether key was found.
func (tx *Transaction) removeAt(cur chainhash.Hash, depth int, key chainhash.Hash) (chainhash.Hash, bool, error) {
	if cur == emptyHash {
		return emptyHash, false, nil
	}
	n, err := tx.loadNode(cur)
	if err != nil {
		return emptyHash, false, err
	}
	if n.kind == nodeKindLeaf {
		if n.key != key {
			return cur, false, nil
		}
		return emptyHash, true, nil
	}
	if getBit(key, depth) == 0 {
		newLeft, found, err := tx.removeAt(n.left, depth+1, key)
		if err != nil || !found {
			return cur, found, err
		}
		return tx.collapse(newLeft, n.right), true, nil
	}
	newRight, found, err := tx.removeAt(n.right, depth+1, key)
	if err != nil || !found {
		return cur, found, err
	}
	return tx.collapse(n.left, newRight), true, nil
}

// collapse drops an internal node that now has only one non-empty child
// when that child is a leaf, replacing the node with the leaf directly, so
// deletions don't leave single-branch chains above a lone leaf. An
// internal child is kept at its depth, since every trie level branches on
// the key bit at that depth.
func (tx *Transaction) collapse(left, right chainhash.Hash) chainhash.Hash {
	if left == emptyHash && right == emptyHash {
		return emptyHash
	}
	if left == emptyHash || right == emptyHash {
		only := left
		if only == emptyHash {
			only = right
		}
		if n, err := tx.loadNode(only); err == nil && n.kind == nodeKindLeaf {
			return only
		}
	}
	return tx.stage(newInternalNode(left, right))
}
