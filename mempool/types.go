// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/domainchain/dmcd/chaincfg"
	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/names"
	"github.com/domainchain/dmcd/txscript"
	"github.com/domainchain/dmcd/urkel"
	"github.com/domainchain/dmcd/wire"
)

// Config holds the collaborators and policy knobs a TxPool is built over.
// Nothing here is owned by the pool: Chain and FetchUtxo are read-only views
// into state this package never persists, per spec.md's "the core does
// not persist data itself" non-goal.
type Config struct {
	// Params is the network parameter set the auction-window arithmetic
	// (names.NameState.Phase) and RENEW/TRANSFER timing checks use.
	Params *chaincfg.Params

	// Chain is the last block-connected name trie. The pool opens a
	// fresh, never-committed urkel.Transaction against it for every
	// covenant check, so nothing a mempool transaction does is ever
	// visible to a peer reading the committed trie.
	Chain *urkel.Tree

	// BestHeight returns the current tip height. Mempool validation treats
	// a candidate as landing in the next block, at BestHeight()+1,
	// matching how the consensus gate's ConnectBlock is always called with
	// the height of the block actually being connected.
	BestHeight func() uint32

	// FetchUtxo resolves the output consumed by an outpoint that no
	// currently-pooled transaction created; a nil result is reported as a
	// missing parent rather than a hard rejection, triggering the orphan
	// path.
	FetchUtxo names.PrevOutputFetcher

	// MinRelayTxFee is the fee rate, in base units per 1000 serialized
	// bytes, a transaction must clear to avoid the policy-level
	// (non-ban-scoring) insufficient-fee rejection.
	MinRelayTxFee uint64

	// FreeTxRelayLimit is a rate for relaying below-minimum-fee
	// transactions, in units of 1000 bytes/minute. TxPool does not read
	// it: every transaction below the minimum relay fee is rejected.
	FreeTxRelayLimit float64

	// MaxOrphanTxs bounds the orphan pool's size; 0 selects
	// MaxOrphanTransactions.
	MaxOrphanTxs int

	// SigCache, if set, is shared with the consensus gate so a
	// signature verified once at mempool admission is not re-verified
	// when the same transaction's block is connected.
	SigCache *txscript.SigCache
}

// nameView adapts a non-committing urkel.Transaction plus the pool's own
// in-memory name-state overlay to names.View, so names.ApplyCovenant can
// validate a pooled transaction's covenants against "the committed trie,
// plus every covenant every other pooled transaction has applied so far"
// without ever touching the urkel store (spec.md §4.8's mempool overlay).
//
// Writes a candidate transaction makes land in local, not pending
// directly: a transaction may carry several covenant-bearing outputs, and
// a later one failing must not leave an earlier one's write visible to
// the next transaction admitted. Call commit once every covenant the
// candidate carries has validated to fold local into the shared overlay.
type nameView struct {
	tx      *urkel.Transaction
	pending map[chainhash.Hash]*names.NameState
	local   map[chainhash.Hash]*names.NameState
}

func newNameView(tree *urkel.Tree, pending map[chainhash.Hash]*names.NameState) *nameView {
	return &nameView{tx: tree.Begin(), pending: pending, local: make(map[chainhash.Hash]*names.NameState)}
}

func (v *nameView) GetName(nameHash chainhash.Hash) (*names.NameState, bool) {
	if ns, ok := v.local[nameHash]; ok {
		if ns == nil {
			return nil, false
		}
		return ns, true
	}
	if ns, ok := v.pending[nameHash]; ok {
		if ns == nil {
			return nil, false
		}
		return ns, true
	}
	b, ok, err := v.tx.Get(nameHash)
	if err != nil || !ok {
		return nil, false
	}
	ns, err := names.DecodeNameState(b)
	if err != nil {
		return nil, false
	}
	return ns, true
}

func (v *nameView) PutName(nameHash chainhash.Hash, ns *names.NameState) {
	v.local[nameHash] = ns
}

// commit folds every name-state write the candidate transaction staged
// into the pool's shared overlay, making them visible to the next
// transaction validated against this nameView's pending map.
func (v *nameView) commit() {
	for nameHash, ns := range v.local {
		v.pending[nameHash] = ns
	}
}

// prevOutputFetcher chains the pool's own unconfirmed outputs in front of
// the Config-supplied confirmed-UTXO fetcher, so a transaction spending
// another pooled transaction's output resolves without touching the UTXO
// set at all.
type prevOutputFetcher struct {
	pool     map[wire.OutPoint]*wire.TxOut
	fallback names.PrevOutputFetcher
}

func (f *prevOutputFetcher) FetchPrevOutput(op wire.OutPoint) (*wire.TxOut, bool) {
	if out, ok := f.pool[op]; ok {
		return out, true
	}
	if f.fallback == nil {
		return nil, false
	}
	return f.fallback.FetchPrevOutput(op)
}
