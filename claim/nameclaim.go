// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package claim

import (
	"encoding/binary"
	"errors"

	"github.com/domainchain/dmcd/names"
	"github.com/domainchain/dmcd/wire"
)

var (
	// ErrNotReserved is returned when a name has no entry in the
	// reserved-name table and so cannot be claimed outside a normal
	// OPEN/BID/REVEAL auction.
	ErrNotReserved = errors.New("claim: name is not in the reserved table")
	// ErrRolledOut is returned once a strongly-reserved name's rollout
	// week has opened it to auction, closing off the claim path.
	ErrRolledOut = errors.New("claim: name has already rolled out to auction")
)

// VerifyNameClaim checks that name is still claim-eligible at height: it
// must carry a reserved-table entry, and a strong (non-weak) reservation
// must not yet have reached its rollout height (spec.md §4.9's rollout
// schedule). Weak reservations remain claimable after rollout since an
// auction win can still override them.
func VerifyNameClaim(name []byte, height uint32) (*names.ReservedName, error) {
	nameHash := names.Hash(name)
	rn, ok := names.LookupReserved(nameHash)
	if !ok {
		return nil, ErrNotReserved
	}
	if !rn.Weak && height >= names.RolloutHeight(nameHash) {
		return nil, ErrRolledOut
	}
	return rn, nil
}

// BuildNameClaim constructs the CLAIM output crediting a reserved name's
// table value to addr, once VerifyNameClaim has confirmed eligibility.
func BuildNameClaim(name []byte, height uint32, addr wire.Address) (*wire.TxOut, error) {
	rn, err := VerifyNameClaim(name, height)
	if err != nil {
		return nil, err
	}
	nameHash := names.Hash(name)

	var openHeight, commitHeight [4]byte
	binary.LittleEndian.PutUint32(commitHeight[:], height)
	flags := byte(0)
	if rn.Weak {
		flags = 1
	}
	var commitHash [32]byte

	return &wire.TxOut{
		Value:   rn.Value,
		Address: addr,
		Covenant: wire.Covenant{
			Type: wire.CovenantClaim,
			Items: [][]byte{
				nameHash[:],
				openHeight[:],
				append([]byte(nil), name...),
				{flags},
				commitHash[:],
				commitHeight[:],
			},
		},
	}, nil
}
