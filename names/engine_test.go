// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package names

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/domainchain/dmcd/chaincfg"
	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/wire"
)

// memView is a trivial in-memory View used only by tests; the consensus
// and mempool packages provide the real trie/overlay-backed adapters.
type memView struct {
	m map[chainhash.Hash]*NameState
}

func newMemView() *memView {
	return &memView{m: make(map[chainhash.Hash]*NameState)}
}

func (v *memView) GetName(h chainhash.Hash) (*NameState, bool) {
	ns, ok := v.m[h]
	return ns, ok
}

func (v *memView) PutName(h chainhash.Hash, ns *NameState) {
	v.m[h] = ns
}

// memFetcher resolves previous outputs from a fixed table, standing in
// for a UTXO view.
type memFetcher struct {
	m map[wire.OutPoint]*wire.TxOut
}

func newMemFetcher() *memFetcher {
	return &memFetcher{m: make(map[wire.OutPoint]*wire.TxOut)}
}

func (f *memFetcher) FetchPrevOutput(op wire.OutPoint) (*wire.TxOut, bool) {
	out, ok := f.m[op]
	return out, ok
}

func u32le(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func makeTx(outs ...*wire.TxOut) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.TxOut = outs
	return tx
}

func TestApplyOpenThenBidThenReveal(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	view := newMemView()
	fetcher := newMemFetcher()

	name := []byte("example-auction")
	nameHash := Hash(name)

	openTx := makeTx(&wire.TxOut{Covenant: wire.Covenant{
		Type:  wire.CovenantOpen,
		Items: [][]byte{nameHash[:], u32le(0), name},
	}})
	require.NoError(t, ApplyCovenant(view, fetcher, openTx, 0, 0, params))

	ns, ok := view.GetName(nameHash)
	require.True(t, ok)
	require.Equal(t, uint32(0), ns.Height)

	biddingHeight := params.TreeInterval + 1

	var nonce [NonceSize]byte
	nonce[0] = 1
	blindHash := Blind(1000, nonce)

	bidTx := makeTx(&wire.TxOut{Value: 1000, Covenant: wire.Covenant{
		Type:  wire.CovenantBid,
		Items: [][]byte{nameHash[:], u32le(0), name, blindHash[:]},
	}})
	require.NoError(t, ApplyCovenant(view, fetcher, bidTx, 0, biddingHeight, params))

	bidOutpoint := wire.OutPoint{Hash: bidTx.TxHash(), Index: 0}
	fetcher.m[bidOutpoint] = bidTx.TxOut[0]

	revealHeight := biddingHeight + params.BiddingPeriod + 1
	revealTx := wire.NewMsgTx(1)
	revealTx.TxIn = []*wire.TxIn{{PreviousOutPoint: bidOutpoint}}
	revealTx.TxOut = []*wire.TxOut{{Value: 1000, Covenant: wire.Covenant{
		Type:  wire.CovenantReveal,
		Items: [][]byte{nameHash[:], u32le(0), nonce[:]},
	}}}
	require.NoError(t, ApplyCovenant(view, fetcher, revealTx, 0, revealHeight, params))

	ns, ok = view.GetName(nameHash)
	require.True(t, ok)
	require.Equal(t, uint64(1000), ns.Highest)
	require.Equal(t, uint64(1000), ns.Value)
}

func TestApplyBidRejectsOutsideBiddingWindow(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	view := newMemView()
	fetcher := newMemFetcher()

	name := []byte("too-late")
	nameHash := Hash(name)
	view.PutName(nameHash, &NameState{Name: name, NameHash: nameHash, Height: 0, Renewal: 0})

	var nonce [NonceSize]byte
	blindHash := Blind(500, nonce)
	lateHeight := params.TreeInterval + params.BiddingPeriod + params.RevealPeriod + 10

	bidTx := makeTx(&wire.TxOut{Value: 500, Covenant: wire.Covenant{
		Type:  wire.CovenantBid,
		Items: [][]byte{nameHash[:], u32le(0), name, blindHash[:]},
	}})
	err := ApplyCovenant(view, fetcher, bidTx, 0, lateHeight, params)
	require.Error(t, err)
	require.True(t, IsReason(err, ReasonBadCovenantPhase))
}

func TestApplyRevealRejectsBadBlind(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	view := newMemView()
	fetcher := newMemFetcher()

	name := []byte("blind-mismatch")
	nameHash := Hash(name)
	view.PutName(nameHash, &NameState{Name: name, NameHash: nameHash, Height: 0, Renewal: 0})

	var nonce [NonceSize]byte
	nonce[0] = 9
	blindHash := Blind(1000, nonce)

	bidTx := makeTx(&wire.TxOut{Value: 1000, Covenant: wire.Covenant{
		Type:  wire.CovenantBid,
		Items: [][]byte{nameHash[:], u32le(0), name, blindHash[:]},
	}})
	bidOutpoint := wire.OutPoint{Hash: bidTx.TxHash(), Index: 0}
	fetcher.m[bidOutpoint] = bidTx.TxOut[0]

	revealHeight := params.TreeInterval + params.BiddingPeriod + 1
	revealTx := wire.NewMsgTx(1)
	revealTx.TxIn = []*wire.TxIn{{PreviousOutPoint: bidOutpoint}}
	var wrongNonce [NonceSize]byte
	wrongNonce[0] = 0xff
	revealTx.TxOut = []*wire.TxOut{{Covenant: wire.Covenant{
		Type:  wire.CovenantReveal,
		Items: [][]byte{nameHash[:], u32le(0), wrongNonce[:]},
	}}}

	err := ApplyCovenant(view, fetcher, revealTx, 0, revealHeight, params)
	require.Error(t, err)
	require.True(t, IsReason(err, ReasonBadBlind))
}

func TestApplyRegisterThenUpdateThenRenew(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	view := newMemView()
	fetcher := newMemFetcher()

	name := []byte("lifecycle-name")
	nameHash := Hash(name)
	closedHeight := params.TreeInterval + params.BiddingPeriod + params.RevealPeriod + 1

	revealOutpoint := wire.OutPoint{Index: 7}
	fetcher.m[revealOutpoint] = &wire.TxOut{Covenant: wire.Covenant{Type: wire.CovenantReveal, Items: [][]byte{nameHash[:]}}}
	view.PutName(nameHash, &NameState{Name: name, NameHash: nameHash, Height: 0, Renewal: 0, Value: 2500})

	var renewalHash chainhash.Hash
	registerTx := wire.NewMsgTx(1)
	registerTx.TxIn = []*wire.TxIn{{PreviousOutPoint: revealOutpoint}}
	registerTx.TxOut = []*wire.TxOut{{Value: 2500, Covenant: wire.Covenant{
		Type:  wire.CovenantRegister,
		Items: [][]byte{nameHash[:], u32le(0), []byte("A 1.2.3.4"), renewalHash[:]},
	}}}
	require.NoError(t, ApplyCovenant(view, fetcher, registerTx, 0, closedHeight, params))

	ns, ok := view.GetName(nameHash)
	require.True(t, ok)
	require.Equal(t, []byte("A 1.2.3.4"), ns.Data)
	ownerAfterRegister := ns.Owner
	require.Equal(t, registerTx.TxHash(), ownerAfterRegister.Hash)

	updateHeight := closedHeight + 10
	updateTx := wire.NewMsgTx(1)
	updateTx.TxIn = []*wire.TxIn{{PreviousOutPoint: ownerAfterRegister}}
	updateTx.TxOut = []*wire.TxOut{{Value: 2500, Covenant: wire.Covenant{
		Type:  wire.CovenantUpdate,
		Items: [][]byte{nameHash[:], u32le(0), []byte("A 5.6.7.8")},
	}}}
	require.NoError(t, ApplyCovenant(view, fetcher, updateTx, 0, updateHeight, params))

	ns, ok = view.GetName(nameHash)
	require.True(t, ok)
	require.Equal(t, []byte("A 5.6.7.8"), ns.Data)
	ownerAfterUpdate := ns.Owner

	renewHeight := updateHeight + params.TreeInterval + 2
	renewTx := wire.NewMsgTx(1)
	renewTx.TxIn = []*wire.TxIn{{PreviousOutPoint: ownerAfterUpdate}}
	renewTx.TxOut = []*wire.TxOut{{Covenant: wire.Covenant{
		Type:  wire.CovenantRenew,
		Items: [][]byte{nameHash[:], u32le(0), renewalHash[:]},
	}}}
	require.NoError(t, ApplyCovenant(view, fetcher, renewTx, 0, renewHeight, params))

	ns, ok = view.GetName(nameHash)
	require.True(t, ok)
	require.Equal(t, renewHeight, ns.Renewal)
	require.Equal(t, uint32(1), ns.Renewals)
}

func TestApplyRenewRejectsBeforeWindow(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	view := newMemView()
	fetcher := newMemFetcher()

	name := []byte("too-soon")
	nameHash := Hash(name)
	owner := wire.OutPoint{Index: 3}
	view.PutName(nameHash, &NameState{Name: name, NameHash: nameHash, Height: 0, Renewal: 100, Owner: owner})

	renewTx := wire.NewMsgTx(1)
	renewTx.TxIn = []*wire.TxIn{{PreviousOutPoint: owner}}
	var renewalHash chainhash.Hash
	renewTx.TxOut = []*wire.TxOut{{Covenant: wire.Covenant{
		Type:  wire.CovenantRenew,
		Items: [][]byte{nameHash[:], u32le(0), renewalHash[:]},
	}}}

	err := ApplyCovenant(view, fetcher, renewTx, 0, 101, params)
	require.Error(t, err)
	require.True(t, IsReason(err, ReasonPrematureRenewal))
}

func TestApplyTransferRequiresOwnerSpend(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	view := newMemView()
	fetcher := newMemFetcher()

	name := []byte("transfer-me")
	nameHash := Hash(name)
	owner := wire.OutPoint{Index: 4}
	view.PutName(nameHash, &NameState{Name: name, NameHash: nameHash, Height: 0, Renewal: 0, Owner: owner})

	transferTx := wire.NewMsgTx(1)
	// Does not spend owner outpoint.
	transferTx.TxIn = []*wire.TxIn{{PreviousOutPoint: wire.OutPoint{Index: 99}}}
	transferTx.TxOut = []*wire.TxOut{{Covenant: wire.Covenant{
		Type:  wire.CovenantTransfer,
		Items: [][]byte{nameHash[:], u32le(0), {0}, make([]byte, 20)},
	}}}

	err := ApplyCovenant(view, fetcher, transferTx, 0, 10, params)
	require.Error(t, err)
	require.True(t, IsReason(err, ReasonBadCovenantOrder))

	transferTx.TxIn = []*wire.TxIn{{PreviousOutPoint: owner}}
	require.NoError(t, ApplyCovenant(view, fetcher, transferTx, 0, 10, params))

	ns, ok := view.GetName(nameHash)
	require.True(t, ok)
	require.Equal(t, uint32(10), ns.Transfer)
}

// TestAuctionEndToEnd walks the full OPEN -> BID -> REVEAL -> REGISTER ->
// TRANSFER -> FINALIZE lifecycle against the exact regtest windows and
// heights given in spec.md §8's "Auction end-to-end scenario", including
// the "rejected if attempted one block early" check at each phase
// boundary.
func TestAuctionEndToEnd(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	require.Equal(t, uint32(5), params.TreeInterval)
	require.Equal(t, uint32(5), params.BiddingPeriod)
	require.Equal(t, uint32(10), params.RevealPeriod)
	require.Equal(t, uint32(10), params.TransferLockup)

	view := newMemView()
	fetcher := newMemFetcher()

	name := []byte("abcde")
	nameHash := Hash(name)
	const h0 = uint32(100)

	// 1. OPEN at h0.
	openTx := wire.NewMsgTx(1)
	openTx.TxOut = []*wire.TxOut{{Covenant: wire.Covenant{
		Type:  wire.CovenantOpen,
		Items: [][]byte{nameHash[:], u32le(0), name},
	}}}
	require.NoError(t, ApplyCovenant(view, fetcher, openTx, 0, h0, params))
	ns, ok := view.GetName(nameHash)
	require.True(t, ok)
	require.Equal(t, h0, ns.Height)
	require.Equal(t, uint64(0), ns.Value)

	// 2. BID at h0 + treeInterval + 1, one block into the BIDDING window.
	bidHeight := h0 + params.TreeInterval + 1
	var nonce [NonceSize]byte
	nonce[0] = 0x42
	const bidValue = uint64(100000)
	const lockup = uint64(200000)
	blindHash := Blind(bidValue, nonce)

	bidTx := wire.NewMsgTx(1)
	bidTx.TxOut = []*wire.TxOut{{Value: lockup, Covenant: wire.Covenant{
		Type:  wire.CovenantBid,
		Items: [][]byte{nameHash[:], u32le(h0), name, blindHash[:]},
	}}}
	bidOutpoint := wire.OutPoint{Hash: bidTx.TxHash(), Index: 0}

	// One block early: still OPENING, BID must be rejected.
	err := ApplyCovenant(view, fetcher, bidTx, 0, bidHeight-1, params)
	require.Error(t, err)
	require.True(t, IsReason(err, ReasonBadCovenantPhase))

	require.NoError(t, ApplyCovenant(view, fetcher, bidTx, 0, bidHeight, params))
	fetcher.m[bidOutpoint] = bidTx.TxOut[0]

	// 3. REVEAL at the start of the REVEAL window.
	revealHeight := h0 + params.TreeInterval + params.BiddingPeriod + 1
	revealTx := wire.NewMsgTx(1)
	revealTx.TxIn = []*wire.TxIn{{PreviousOutPoint: bidOutpoint}}
	revealTx.TxOut = []*wire.TxOut{{Value: bidValue, Covenant: wire.Covenant{
		Type:  wire.CovenantReveal,
		Items: [][]byte{nameHash[:], u32le(h0), nonce[:]},
	}}}
	revealOutpoint := wire.OutPoint{Hash: revealTx.TxHash(), Index: 0}

	// One block early: still BIDDING, REVEAL must be rejected.
	err = ApplyCovenant(view, fetcher, revealTx, 0, revealHeight-1, params)
	require.Error(t, err)
	require.True(t, IsReason(err, ReasonBadCovenantPhase))

	require.NoError(t, ApplyCovenant(view, fetcher, revealTx, 0, revealHeight, params))
	fetcher.m[revealOutpoint] = revealTx.TxOut[0]

	ns, ok = view.GetName(nameHash)
	require.True(t, ok)
	require.Equal(t, bidValue, ns.Value)
	require.Equal(t, bidValue, ns.Highest)

	// 4. REGISTER once CLOSED, carrying the winning Vickrey price.
	closedHeight := h0 + params.TreeInterval + params.BiddingPeriod + params.RevealPeriod + 1
	var renewalBlockHash chainhash.Hash
	registerTx := wire.NewMsgTx(1)
	registerTx.TxIn = []*wire.TxIn{{PreviousOutPoint: revealOutpoint}}
	registerTx.TxOut = []*wire.TxOut{{Value: bidValue, Covenant: wire.Covenant{
		Type:  wire.CovenantRegister,
		Items: [][]byte{nameHash[:], u32le(h0), []byte("TXT x"), renewalBlockHash[:]},
	}}}

	// One block early: still in REVEAL, REGISTER must be rejected.
	err = ApplyCovenant(view, fetcher, registerTx, 0, closedHeight-1, params)
	require.Error(t, err)
	require.True(t, IsReason(err, ReasonBadCovenantPhase))

	require.NoError(t, ApplyCovenant(view, fetcher, registerTx, 0, closedHeight, params))
	registerOutpoint := wire.OutPoint{Hash: registerTx.TxHash(), Index: 0}

	ns, ok = view.GetName(nameHash)
	require.True(t, ok)
	require.Equal(t, []byte("TXT x"), ns.Data)
	require.Equal(t, registerOutpoint, ns.Owner)

	// 5. TRANSFER to a new address.
	transferHeight := closedHeight + 1
	newAddrHash := make([]byte, 20)
	newAddrHash[0] = 0xaa
	transferTx := wire.NewMsgTx(1)
	transferTx.TxIn = []*wire.TxIn{{PreviousOutPoint: registerOutpoint}}
	transferTx.TxOut = []*wire.TxOut{{Value: bidValue, Covenant: wire.Covenant{
		Type:  wire.CovenantTransfer,
		Items: [][]byte{nameHash[:], u32le(h0), {0}, newAddrHash},
	}}}
	require.NoError(t, ApplyCovenant(view, fetcher, transferTx, 0, transferHeight, params))
	transferOutpoint := wire.OutPoint{Hash: transferTx.TxHash(), Index: 0}

	ns, ok = view.GetName(nameHash)
	require.True(t, ok)
	require.Equal(t, transferHeight, ns.Transfer)
	require.Equal(t, transferOutpoint, ns.Owner)

	// 6. FINALIZE once transferLockup blocks have elapsed.
	finalizeHeight := transferHeight + params.TransferLockup
	finalizeTx := wire.NewMsgTx(1)
	finalizeTx.TxIn = []*wire.TxIn{{PreviousOutPoint: transferOutpoint}}
	finalizeTx.TxOut = []*wire.TxOut{{Value: bidValue, Covenant: wire.Covenant{
		Type: wire.CovenantFinalize,
		Items: [][]byte{
			nameHash[:], u32le(h0), name, {0}, u32le(ns.Claimed), u32le(ns.Renewals), renewalBlockHash[:],
		},
	}}}

	// One block early: the transfer lockup has not yet elapsed.
	err = ApplyCovenant(view, fetcher, finalizeTx, 0, finalizeHeight-1, params)
	require.Error(t, err)
	require.True(t, IsReason(err, ReasonBadTransferLockup))

	require.NoError(t, ApplyCovenant(view, fetcher, finalizeTx, 0, finalizeHeight, params))
	finalizeOutpoint := wire.OutPoint{Hash: finalizeTx.TxHash(), Index: 0}

	ns, ok = view.GetName(nameHash)
	require.True(t, ok)
	require.Equal(t, uint32(0), ns.Transfer)
	require.Equal(t, finalizeOutpoint, ns.Owner)
	require.Equal(t, []byte("TXT x"), ns.Data)
}
