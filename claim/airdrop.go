// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package claim implements the two pure validators that gate ingestion of
// pre-chain value into the name-auction economy (spec.md C10): airdrop
// snapshot proofs, and the reserved-name claim table. Neither type mutates
// any shared state; both only produce a CLAIM-covenant output a caller
// still has to get mined like any other transaction.
package claim

import (
	"encoding/binary"
	"errors"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/names"
	"github.com/domainchain/dmcd/wire"
)

// AirdropProof is a membership witness against the hard-coded airdrop
// snapshot commitment: a dense, index-ordered Merkle tree over
// (index, value, address) leaves fixed at genesis.
type AirdropProof struct {
	Index    uint32
	Value    uint64
	Address  wire.Address
	Siblings []chainhash.Hash
}

func airdropLeafHash(index uint32, value uint64, addr wire.Address) chainhash.Hash {
	buf := make([]byte, 0, 4+8+1+len(addr.Hash))
	var idxB [4]byte
	binary.LittleEndian.PutUint32(idxB[:], index)
	buf = append(buf, idxB[:]...)
	var valB [8]byte
	binary.LittleEndian.PutUint64(valB[:], value)
	buf = append(buf, valB[:]...)
	buf = append(buf, addr.Version)
	buf = append(buf, addr.Hash...)
	return chainhash.HashH(buf)
}

// VerifyAirdropProof recomputes the snapshot root implied by proof and
// reports whether it matches root.
func VerifyAirdropProof(root chainhash.Hash, proof AirdropProof) bool {
	cur := airdropLeafHash(proof.Index, proof.Value, proof.Address)
	idx := proof.Index
	for _, sib := range proof.Siblings {
		var combined [64]byte
		if idx%2 == 0 {
			copy(combined[:32], cur[:])
			copy(combined[32:], sib[:])
		} else {
			copy(combined[:32], sib[:])
			copy(combined[32:], cur[:])
		}
		cur = chainhash.HashH(combined[:])
		idx /= 2
	}
	return cur == root
}

// ErrNotEligible is returned when an airdrop proof does not verify
// against the snapshot root it claims to be drawn from.
var ErrNotEligible = errors.New("claim: airdrop proof does not verify against the snapshot root")

// BuildAirdropClaim constructs the CLAIM output an airdrop recipient may
// broadcast once VerifyAirdropProof has confirmed their entry against the
// snapshot root, claiming name for the address their proof commits to
// (spec.md §4.9).
func BuildAirdropClaim(root chainhash.Hash, proof AirdropProof, name []byte, height uint32) (*wire.TxOut, error) {
	if !VerifyAirdropProof(root, proof) {
		return nil, ErrNotEligible
	}
	if err := names.IsValidName(name); err != nil {
		return nil, err
	}
	nameHash := names.Hash(name)

	var openHeight, commitHeight [4]byte
	binary.LittleEndian.PutUint32(commitHeight[:], height)

	return &wire.TxOut{
		Value:   proof.Value,
		Address: proof.Address,
		Covenant: wire.Covenant{
			Type: wire.CovenantClaim,
			Items: [][]byte{
				nameHash[:],
				openHeight[:],
				append([]byte(nil), name...),
				{0},
				root[:],
				commitHeight[:],
			},
		},
	}, nil
}
