// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package consensus implements the block-connect covenant gate (spec.md
// C8): applying every covenant-bearing output of a block's transactions
// against the name trie as a single atomic batch, and reporting the
// result on an injected event channel.
package consensus

import (
	"runtime"

	"github.com/domainchain/dmcd/chaincfg"
	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/names"
	"github.com/domainchain/dmcd/txscript"
	"github.com/domainchain/dmcd/urkel"
	"github.com/domainchain/dmcd/wire"
)

// Outcome is emitted once per successfully connected block so a
// subscriber (indexers, RPC notification fanout) can react without
// re-walking the block's transactions itself.
type Outcome struct {
	BlockHash    chainhash.Hash
	Height       uint32
	Root         chainhash.Hash
	NamesTouched []chainhash.Hash
}

// Gate applies the covenant effects of a block's transactions against an
// urkel-backed name trie, atomically: either every covenant in the block
// applies cleanly or none of its writes are kept (spec.md §4.6's closing
// atomicity rule).
//
// The store is flushed at the end of every block; writes are not batched
// to tree-interval boundaries.
type Gate struct {
	tree   *urkel.Tree
	params *chaincfg.Params

	// outcome receives one Outcome per successful ConnectBlock. A nil
	// channel disables event emission entirely.
	outcome chan<- Outcome

	// sigCache, if set, is shared with the mempool admission adapter so
	// a signature verified once there is not re-verified at connect
	// time (spec.md §5).
	sigCache *txscript.SigCache

	// scriptWorkers bounds the worker pool ConnectBlock fans witness
	// verification out across (spec.md §5). Defaults to one worker per
	// logical CPU.
	scriptWorkers int
}

// NewGate constructs a Gate over tree, using params for the auction-window
// arithmetic names.ApplyCovenant needs, emitting Outcomes on outcome (which
// may be nil).
func NewGate(tree *urkel.Tree, params *chaincfg.Params, outcome chan<- Outcome) *Gate {
	return &Gate{
		tree:          tree,
		params:        params,
		outcome:       outcome,
		scriptWorkers: runtime.NumCPU(),
	}
}

// SetSigCache attaches a signature-verification cache the script worker
// pool consults (and populates) during ConnectBlock.
func (g *Gate) SetSigCache(cache *txscript.SigCache) {
	g.sigCache = cache
}

// SetScriptWorkers overrides the worker-pool size ConnectBlock fans
// witness verification out across; n < 1 is treated as 1.
func (g *Gate) SetScriptWorkers(n int) {
	if n < 1 {
		n = 1
	}
	g.scriptWorkers = n
}

// Root returns the name trie's current committed root.
func (g *Gate) Root() chainhash.Hash {
	return g.tree.Root()
}

// trieView adapts an urkel.Transaction to names.View, translating between
// NameState's canonical trie-value encoding and the trie's raw bytes.
type trieView struct {
	tx *urkel.Transaction
}

func (v *trieView) GetName(nameHash chainhash.Hash) (*names.NameState, bool) {
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

func (v *trieView) PutName(nameHash chainhash.Hash, ns *names.NameState) {
	_ = v.tx.Insert(nameHash, ns.EncodeBytes())
}

// ConnectBlock applies every covenant-bearing output of every transaction
// in txs, in order, against the name trie. fetcher resolves the previous
// output of any input so far spent in this or an earlier block, which
// REVEAL/REDEEM/REGISTER need to inspect the BID coin they consume.
//
// On any covenant failure, the whole block's trie writes are discarded and
// the error is returned; the Gate's committed state is left exactly as it
// was before the call.
func (g *Gate) ConnectBlock(blockHash chainhash.Hash, height uint32, txs []*wire.MsgTx, fetcher names.PrevOutputFetcher) error {
	if err := verifyBlockScripts(txs, fetcher, txscript.MandatoryVerifyFlags, g.sigCache, g.scriptWorkers); err != nil {
		return ruleError(ErrScript, err)
	}

	trans := g.tree.Begin()
	view := &trieView{tx: trans}

	var touched []chainhash.Hash
	for _, tx := range txs {
		for outIdx := range tx.TxOut {
			if tx.TxOut[outIdx].Covenant.Type == wire.CovenantNone {
				continue
			}
			if err := names.ApplyCovenant(view, fetcher, tx, outIdx, height, g.params); err != nil {
				return ruleError(ErrCovenant, err)
			}
			if nameHash, ok := covenantNameHash(&tx.TxOut[outIdx].Covenant); ok {
				touched = append(touched, nameHash)
			}
		}
	}

	newTree, err := trans.Commit()
	if err != nil {
		return ruleError(ErrUnknown, err)
	}
	g.tree = newTree
	log.Debugf("connected block %s height %d, name root %s, %d name(s) touched",
		blockHash, height, newTree.Root(), len(touched))

	if g.outcome != nil {
		g.outcome <- Outcome{
			BlockHash:    blockHash,
			Height:       height,
			Root:         newTree.Root(),
			NamesTouched: touched,
		}
	}
	return nil
}

func covenantNameHash(cov *wire.Covenant) (chainhash.Hash, bool) {
	if len(cov.Items) == 0 {
		return chainhash.Hash{}, false
	}
	item := cov.Item(0)
	if len(item) != chainhash.HashSize {
		return chainhash.Hash{}, false
	}
	var h chainhash.Hash
	copy(h[:], item)
	return h, true
}
