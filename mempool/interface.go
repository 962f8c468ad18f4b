// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool implements the non-committing overlay admission adapter
// (spec.md C9) that gates which candidate transactions a node relays and
// offers to its mining template builder. It reuses the same covenant
// engine (names.ApplyCovenant) and script interpreter (txscript) the
// block-connect consensus gate (C8) runs, applied against a name-trie
// overlay that is discarded rather than committed, plus a layer of relay
// policy (spec.md §7) no block-connect rule enforces.
package mempool

import (
	"time"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/wire"
)

// TxDesc describes a transaction admitted to the pool, alongside the
// bookkeeping the relay and mining-template layers need without
// re-deriving it from the raw transaction every time.
type TxDesc struct {
	Tx       *wire.MsgTx
	Hash     chainhash.Hash
	Added    time.Time
	Height   uint32 // chain height the tx was validated against
	Fee      uint64
	FeePerKB uint64
	Size     int64
}

// MempoolAcceptResult reports the outcome of test-accepting a single
// transaction without admitting it to the pool, the shape an RPC layer's
// testmempoolaccept-style call returns per transaction.
type MempoolAcceptResult struct {
	Tx             *wire.MsgTx
	TxFee          uint64
	TxSize         int64
	MissingParents []chainhash.Hash
	RejectReason   string
}
