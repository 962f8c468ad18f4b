// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package claim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/names"
	"github.com/domainchain/dmcd/wire"
)

func buildAirdropTree(leaves []chainhash.Hash) chainhash.Hash {
	level := leaves
	for len(level) > 1 {
		var next []chainhash.Hash
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			var combined [64]byte
			copy(combined[:32], level[i][:])
			copy(combined[32:], level[i+1][:])
			next = append(next, chainhash.HashH(combined[:]))
		}
		level = next
	}
	return level[0]
}

func TestVerifyAirdropProof(t *testing.T) {
	addr := wire.Address{Version: 0, Hash: make([]byte, 20)}
	leaf0 := airdropLeafHash(0, 1000, addr)
	leaf1 := airdropLeafHash(1, 2000, addr)
	root := buildAirdropTree([]chainhash.Hash{leaf0, leaf1})

	proof := AirdropProof{Index: 0, Value: 1000, Address: addr, Siblings: []chainhash.Hash{leaf1}}
	require.True(t, VerifyAirdropProof(root, proof))

	badProof := AirdropProof{Index: 0, Value: 9999, Address: addr, Siblings: []chainhash.Hash{leaf1}}
	require.False(t, VerifyAirdropProof(root, badProof))
}

func TestBuildAirdropClaim(t *testing.T) {
	addr := wire.Address{Version: 0, Hash: make([]byte, 20)}
	leaf0 := airdropLeafHash(0, 1000, addr)
	leaf1 := airdropLeafHash(1, 2000, addr)
	root := buildAirdropTree([]chainhash.Hash{leaf0, leaf1})

	proof := AirdropProof{Index: 0, Value: 1000, Address: addr, Siblings: []chainhash.Hash{leaf1}}
	out, err := BuildAirdropClaim(root, proof, []byte("airdrop-name"), 5)
	require.NoError(t, err)
	require.Equal(t, wire.CovenantClaim, out.Covenant.Type)
	require.Equal(t, uint64(1000), out.Value)

	_, err = BuildAirdropClaim(root, AirdropProof{Index: 0, Value: 1, Address: addr}, []byte("airdrop-name"), 5)
	require.ErrorIs(t, err, ErrNotEligible)
}

func TestVerifyNameClaimReserved(t *testing.T) {
	rn, err := VerifyNameClaim([]byte("icann"), 0)
	require.NoError(t, err)
	require.Equal(t, "icann", rn.Name)

	_, err = VerifyNameClaim([]byte("not-reserved-anywhere"), 0)
	require.ErrorIs(t, err, ErrNotReserved)
}

func TestVerifyNameClaimRolloutCutoff(t *testing.T) {
	// icann is a strong (non-weak) reservation, so it stops being
	// claimable once its rollout height passes.
	nameHash := names.Hash([]byte("icann"))
	rolloutHeight := names.RolloutHeight(nameHash)

	_, err := VerifyNameClaim([]byte("icann"), rolloutHeight+1)
	require.ErrorIs(t, err, ErrRolledOut)
}

func TestBuildNameClaim(t *testing.T) {
	addr := wire.Address{Version: 0, Hash: make([]byte, 20)}
	out, err := BuildNameClaim([]byte("test"), 0, addr)
	require.NoError(t, err)
	require.Equal(t, wire.CovenantClaim, out.Covenant.Type)
	require.Equal(t, byte(1), out.Covenant.Item(3)[0], "test is a weak reservation")
}
