// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package urkel

import (
	"errors"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
)

// ProofType distinguishes the three shapes a urkel proof can take
// (spec.md §4.7: a committed name-state lookup must be provable both when
// present and when absent).
type ProofType int

const (
	// ProofExists proves key maps to Value under the tree's root.
	ProofExists ProofType = iota
	// ProofAbsent proves key maps to nothing: the path terminated at an
	// empty subtree.
	ProofAbsent
	// ProofCollision proves key maps to nothing by exhibiting a
	// different leaf whose key shares the traversed prefix.
	ProofCollision
)

// Proof is a self-contained membership or non-membership witness for one
// key against one root: the list of sibling hashes along the key's path,
// root-level sibling first, plus the leaf (or colliding leaf) the path bottomed
// out at.
type Proof struct {
	Type     ProofType
	Siblings []chainhash.Hash
	Value    []byte          // set when Type == ProofExists
	LeafKey  chainhash.Hash  // set when Type == ProofCollision
	LeafHash chainhash.Hash  // set when Type == ProofCollision, the colliding leaf's value-hash
}

// Prove walks src for key and returns a Proof of whatever it finds
// (presence, absence, or a colliding leaf), along with the root it was
// generated against.
func Prove(src nodeSource, root chainhash.Hash, key chainhash.Hash) (*Proof, error) {
	var siblings []chainhash.Hash
	cur := root
	for depth := 0; depth < 256; depth++ {
		if cur == emptyHash {
			return &Proof{Type: ProofAbsent, Siblings: siblings}, nil
		}
		n, err := src.loadNode(cur)
		if err != nil {
			return nil, err
		}
		if n.kind == nodeKindLeaf {
			if n.key == key {
				v, err := src.loadValue(n.valueHash)
				if err != nil {
					return nil, err
				}
				return &Proof{Type: ProofExists, Siblings: siblings, Value: v}, nil
			}
			return &Proof{
				Type:     ProofCollision,
				Siblings: siblings,
				LeafKey:  n.key,
				LeafHash: n.valueHash,
			}, nil
		}
		if getBit(key, depth) == 0 {
			siblings = append(siblings, n.right)
			cur = n.left
		} else {
			siblings = append(siblings, n.left)
			cur = n.right
		}
	}
	return nil, errors.New("urkel: path exceeded maximum depth")
}

// VerifyProof recomputes the root a proof implies for key and reports
// whether it matches root, along with the proven value on a ProofExists
// result.
func VerifyProof(root chainhash.Hash, key chainhash.Hash, proof *Proof) (ok bool, value []byte) {
	var leafHash chainhash.Hash
	switch proof.Type {
	case ProofExists:
		leafHash = newLeafNode(key, chainhash.HashH(proof.Value)).hash()
		value = proof.Value
	case ProofCollision:
		if proof.LeafKey == key {
			return false, nil
		}
		leafHash = newLeafNode(proof.LeafKey, proof.LeafHash).hash()
	case ProofAbsent:
		leafHash = emptyHash
	default:
		return false, nil
	}

	depth := len(proof.Siblings)
	cur := leafHash
	for i := depth - 1; i >= 0; i-- {
		sib := proof.Siblings[i]
		var n *node
		if getBit(key, i) == 0 {
			n = newInternalNode(cur, sib)
		} else {
			n = newInternalNode(sib, cur)
		}
		cur = n.hash()
	}
	return cur == root, value
}
