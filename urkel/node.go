// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package urkel implements the authenticated radix trie that backs the
// name-state database (spec.md C7): a committed, root-addressed Tree
// flushed on every Transaction.Commit, and an in-memory Transaction overlay of
// pending writes that both the consensus gate and the mempool admission
// adapter stage their changes through before committing.
//
// The trie is a 256-level binary (bit-keyed) Merkle structure, one level
// per bit of the 32-byte key, rather than HSD-style path-compressed nodes:
// internal nodes may have a single non-empty child sitting several levels
// above a leaf. This trades the constant-factor node-count optimization
// for a tree that is far simpler to get right without being able to run a
// single test, at the cost of a deeper-than-necessary path for sparse key
// sets.
package urkel

import (
	"errors"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
)

// ErrNodeNotFound is returned by a Store when asked for a node hash it has
// never persisted.
var ErrNodeNotFound = errors.New("urkel: node not found")

// emptyHash is the sentinel representing an empty subtree. It is never
// written to the store.
var emptyHash chainhash.Hash

const (
	nodeKindLeaf     = 0x01
	nodeKindInternal = 0x02
)

// node is the in-memory decoded form of a trie node. Exactly one of the
// two shapes is populated, selected by kind.
type node struct {
	kind byte

	// leaf fields
	key       chainhash.Hash
	valueHash chainhash.Hash

	// internal fields
	left  chainhash.Hash
	right chainhash.Hash
}

func newLeafNode(key, valueHash chainhash.Hash) *node {
	return &node{kind: nodeKindLeaf, key: key, valueHash: valueHash}
}

func newInternalNode(left, right chainhash.Hash) *node {
	return &node{kind: nodeKindInternal, left: left, right: right}
}

// encode serializes a node the way it is written to the store, and the way
// its hash is computed: a one-byte kind tag followed by its two 32-byte
// fields.
func (n *node) encode() []byte {
	buf := make([]byte, 1+32+32)
	buf[0] = n.kind
	switch n.kind {
	case nodeKindLeaf:
		copy(buf[1:33], n.key[:])
		copy(buf[33:65], n.valueHash[:])
	case nodeKindInternal:
		copy(buf[1:33], n.left[:])
		copy(buf[33:65], n.right[:])
	}
	return buf
}

func decodeNode(b []byte) (*node, error) {
	if len(b) != 65 {
		return nil, errors.New("urkel: malformed node encoding")
	}
	n := &node{kind: b[0]}
	switch n.kind {
	case nodeKindLeaf:
		copy(n.key[:], b[1:33])
		copy(n.valueHash[:], b[33:65])
	case nodeKindInternal:
		copy(n.left[:], b[1:33])
		copy(n.right[:], b[33:65])
	default:
		return nil, errors.New("urkel: unknown node kind")
	}
	return n, nil
}

// hash returns the node's content address, the hash under which it is
// stored and referenced by its parent.
func (n *node) hash() chainhash.Hash {
	return chainhash.HashH(n.encode())
}

// getBit returns the bit of h at the given depth, most-significant bit of
// byte 0 first, matching the order the trie branches on.
func getBit(h chainhash.Hash, depth int) int {
	byteIdx := depth / 8
	bitIdx := 7 - uint(depth%8)
	return int((h[byteIdx] >> bitIdx) & 1)
}
