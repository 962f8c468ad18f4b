// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/decred/dcrd/lru"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/names"
	"github.com/domainchain/dmcd/txscript"
	"github.com/domainchain/dmcd/wire"
)

// maxRecentRejects bounds the recently-rejected-transaction set: large
// enough to absorb a relay storm of the same invalid transaction without
// re-running covenant/script validation on every copy, small enough that
// it cannot be used to exhaust memory.
const maxRecentRejects = 10000

// TxPool is the non-committing overlay admission adapter (spec.md C9). It
// validates a candidate transaction's standardness, fee, covenant effects
// and script against the last committed name trie plus every covenant
// every other pooled transaction has already staked out, without ever
// writing through to the trie's backing store.
type TxPool struct {
	cfg Config

	mtx sync.RWMutex

	pool      map[chainhash.Hash]*TxDesc
	outpoints map[wire.OutPoint]*wire.MsgTx
	pending   map[chainhash.Hash]*names.NameState

	orphans map[chainhash.Hash]*wire.MsgTx

	recentRejects *lru.Cache[chainhash.Hash]
	fees          *FeeEstimator
}

// New returns an empty TxPool configured over cfg.
func New(cfg *Config) *TxPool {
	return &TxPool{
		cfg:           *cfg,
		pool:          make(map[chainhash.Hash]*TxDesc),
		outpoints:     make(map[wire.OutPoint]*wire.MsgTx),
		pending:       make(map[chainhash.Hash]*names.NameState),
		orphans:       make(map[chainhash.Hash]*wire.MsgTx),
		recentRejects: lru.NewCache[chainhash.Hash](maxRecentRejects),
		fees:          NewFeeEstimator(),
	}
}

// Count returns the number of transactions currently admitted to the pool.
func (mp *TxPool) Count() int {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	return len(mp.pool)
}

// HaveTransaction reports whether txHash is already pooled, orphaned, or
// recently rejected, the three reasons a relayed INV for it should not be
// re-requested.
func (mp *TxPool) HaveTransaction(txHash chainhash.Hash) bool {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	if _, ok := mp.pool[txHash]; ok {
		return true
	}
	if _, ok := mp.orphans[txHash]; ok {
		return true
	}
	return mp.recentRejects.Contains(txHash)
}

func isCoinbaseLike(tx *wire.MsgTx) bool {
	return len(tx.TxIn) == 1 && tx.TxIn[0].PreviousOutPoint.Index == ^uint32(0) &&
		tx.TxIn[0].PreviousOutPoint.Hash == (chainhash.Hash{})
}

func sumOutputValue(tx *wire.MsgTx) uint64 {
	var total uint64
	for _, out := range tx.TxOut {
		total += out.Value
	}
	return total
}

// poolOutputs builds the outpoint->output map of every output the pool's
// own transactions currently offer, the "unconfirmed parent" half of
// prevOutputFetcher.
func (mp *TxPool) poolOutputs() map[wire.OutPoint]*wire.TxOut {
	out := make(map[wire.OutPoint]*wire.TxOut)
	for _, desc := range mp.pool {
		for i, o := range desc.Tx.TxOut {
			out[wire.OutPoint{Hash: desc.Hash, Index: uint32(i)}] = o
		}
	}
	return out
}

// ProcessTransaction validates tx for mempool admission: standardness,
// fee policy, every covenant-bearing output against the trie-plus-overlay
// view (spec.md §4.8), and every spending input's witness program
// (spec.md C2/C3), then — if everything passes — admits it to the pool.
//
// A RuleError with code ErrOrphan and MissingParents populated means tx is
// consensus-plausible but spends an input this node cannot yet resolve;
// callers retry once the missing parent arrives, the same orphan-handling
// contract btcd/dcrd-family pools expose.
func (mp *TxPool) ProcessTransaction(tx *wire.MsgTx) (*MempoolAcceptResult, error) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	txHash := tx.TxHash()

	if _, ok := mp.pool[txHash]; ok {
		return nil, ruleError(ErrAlreadyInPool, fmt.Errorf("transaction %s is already in the pool", txHash))
	}
	if mp.recentRejects.Contains(txHash) {
		return nil, ruleError(ErrDuplicateTx, fmt.Errorf("transaction %s was recently rejected", txHash))
	}
	if isCoinbaseLike(tx) {
		return nil, ruleError(ErrCoinbaseTx, fmt.Errorf("coinbase transaction %s cannot enter the mempool", txHash))
	}
	for _, in := range tx.TxIn {
		if owner, ok := mp.outpoints[in.PreviousOutPoint]; ok && owner.TxHash() != txHash {
			return nil, ruleError(ErrMempoolDoubleSpend, fmt.Errorf("output %s already spent by a pooled transaction", in.PreviousOutPoint))
		}
	}

	var buf bytes.Buffer
	if err := tx.SerializeWitness(&buf); err != nil {
		return nil, ruleError(ErrUnknown, err)
	}
	size := int64(buf.Len())

	if err := checkTransactionStandard(tx, int(size)); err != nil {
		mp.recentRejects.Add(txHash)
		return nil, err
	}

	fetcher := &prevOutputFetcher{pool: mp.poolOutputs(), fallback: mp.cfg.FetchUtxo}

	var inputValue uint64
	var missing []chainhash.Hash
	for _, in := range tx.TxIn {
		prevOut, ok := fetcher.FetchPrevOutput(in.PreviousOutPoint)
		if !ok {
			missing = append(missing, in.PreviousOutPoint.Hash)
			continue
		}
		inputValue += prevOut.Value
	}
	if len(missing) > 0 {
		maxOrphans := mp.cfg.MaxOrphanTxs
		if maxOrphans == 0 {
			maxOrphans = MaxOrphanTransactions
		}
		if size <= MaxOrphanTxSize && len(mp.orphans) < maxOrphans {
			mp.orphans[txHash] = tx
		}
		return &MempoolAcceptResult{Tx: tx, TxSize: size, MissingParents: missing},
			ruleError(ErrOrphan, fmt.Errorf("transaction %s spends %d unresolved output(s)", txHash, len(missing)))
	}

	outputValue := sumOutputValue(tx)
	if outputValue > inputValue {
		mp.recentRejects.Add(txHash)
		return nil, ruleError(ErrInsufficientFee, fmt.Errorf("transaction %s spends more than its inputs carry", txHash))
	}
	fee := inputValue - outputValue
	var feePerKB uint64
	if size > 0 {
		feePerKB = fee * 1000 / uint64(size)
	}
	minRequired := calcMinRequiredTxRelayFee(size, mp.cfg.MinRelayTxFee)
	if fee < minRequired {
		mp.recentRejects.Add(txHash)
		return nil, ruleError(ErrInsufficientFee, fmt.Errorf("transaction %s pays %d, below the %d required for %d bytes", txHash, fee, minRequired, size))
	}

	height := mp.cfg.BestHeight() + 1

	view := newNameView(mp.cfg.Chain, mp.pending)
	for outIdx, out := range tx.TxOut {
		if out.Covenant.Type == wire.CovenantNone {
			continue
		}
		if err := names.ApplyCovenant(view, fetcher, tx, outIdx, height, mp.cfg.Params); err != nil {
			mp.recentRejects.Add(txHash)
			return nil, ruleError(ErrCovenantRejected, err)
		}
	}

	flags := StandardScriptVerifyFlags
	for i, in := range tx.TxIn {
		prevOut, _ := fetcher.FetchPrevOutput(in.PreviousOutPoint)
		err := txscript.VerifyWitnessProgramCached(prevOut.Address, in.Witness, tx, i, prevOut.Value, flags, fetcher, mp.cfg.SigCache)
		if err != nil {
			mp.recentRejects.Add(txHash)
			return nil, ruleError(ErrScriptValidation, err)
		}
	}

	view.commit()

	delete(mp.orphans, txHash)
	mp.pool[txHash] = &TxDesc{
		Tx:       tx,
		Hash:     txHash,
		Added:    time.Now(),
		Height:   height,
		Fee:      fee,
		FeePerKB: feePerKB,
		Size:     size,
	}
	for _, in := range tx.TxIn {
		mp.outpoints[in.PreviousOutPoint] = tx
	}
	mp.fees.ObserveTransaction(txHash, float64(feePerKB), height)

	log.Debugf("accepted transaction %s (%d bytes, fee %d, %d covenant(s))", txHash, size, fee, len(view.local))

	return &MempoolAcceptResult{Tx: tx, TxFee: fee, TxSize: size}, nil
}

// RemoveTransaction evicts txHash from the pool (e.g. because it was
// mined, conflicted, or replaced), dropping its outpoint claims and fee
// estimator observation. It does not roll back any NameState it staged
// into the pending overlay: those entries stay visible to later
// admissions.
func (mp *TxPool) RemoveTransaction(txHash chainhash.Hash) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	desc, ok := mp.pool[txHash]
	if !ok {
		return
	}
	delete(mp.pool, txHash)
	for _, in := range desc.Tx.TxIn {
		delete(mp.outpoints, in.PreviousOutPoint)
	}
	mp.fees.RemoveTransaction(txHash)
}

// MiningDescs returns every transaction currently admitted to the pool,
// the input a mining-template builder walks to assemble a block body.
func (mp *TxPool) MiningDescs() []*TxDesc {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	descs := make([]*TxDesc, 0, len(mp.pool))
	for _, d := range mp.pool {
		descs = append(descs, d)
	}
	return descs
}
