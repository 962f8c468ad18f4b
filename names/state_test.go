// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package names

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/domainchain/dmcd/chaincfg"
	"github.com/domainchain/dmcd/wire"
)

func sampleNameState() *NameState {
	return &NameState{
		Name:     []byte("example"),
		NameHash: Hash([]byte("example")),
		Height:   10,
		Renewal:  10,
		Owner:    wire.OutPoint{Index: 1},
		Value:    5000,
		Highest:  7000,
		Data:     []byte("resource record bytes"),
	}
}

func TestNameStateRoundTrip(t *testing.T) {
	ns := sampleNameState()
	b := ns.EncodeBytes()

	decoded, err := DecodeNameState(b)
	require.NoError(t, err)
	require.Equal(t, ns.Name, decoded.Name)
	require.Equal(t, ns.NameHash, decoded.NameHash)
	require.Equal(t, ns.Height, decoded.Height)
	require.Equal(t, ns.Owner, decoded.Owner)
	require.Equal(t, ns.Value, decoded.Value)
	require.Equal(t, ns.Highest, decoded.Highest)
	require.Equal(t, ns.Data, decoded.Data)
}

func TestNameStatePhaseLifecycle(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	ns := &NameState{Height: 0, Renewal: 0}

	require.Equal(t, PhaseOpening, ns.Phase(0, params))
	require.Equal(t, PhaseBidding, ns.Phase(params.TreeInterval+1, params))

	biddingEnd := params.TreeInterval + params.BiddingPeriod
	require.Equal(t, PhaseReveal, ns.Phase(biddingEnd+1, params))

	revealEnd := biddingEnd + params.RevealPeriod
	require.Equal(t, PhaseClosed, ns.Phase(revealEnd+1, params))
}

func TestNameStateExpiryAndRevocation(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	ns := &NameState{Height: 0, Renewal: 100}

	require.Equal(t, PhaseExpired, ns.Phase(100+params.RenewalWindow, params))
	require.True(t, ns.IsOpenable(100+params.RenewalWindow, params))

	revoked := &NameState{Height: 0, Renewal: 100, Revoked: 200}
	require.Equal(t, PhaseRevoked, revoked.Phase(200+1, params))
	require.False(t, revoked.IsOpenable(200+1, params))
	require.True(t, revoked.IsOpenable(200+params.RevocationDelay+1, params))
}

func TestNameStateCloneIsIndependent(t *testing.T) {
	ns := sampleNameState()
	clone := ns.Clone()
	clone.Data[0] = 'X'
	require.NotEqual(t, ns.Data[0], clone.Data[0])
}
