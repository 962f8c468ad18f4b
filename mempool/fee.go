// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"math"
	"sync"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
)

const (
	// feeEstimatorNumBuckets is the number of log2-spaced fee-rate
	// buckets the estimator tracks. A transaction's bucket is
	// floor(log2(feeRate)), so bucket b covers the fee-rate range
	// [2^b, 2^(b+1)).
	feeEstimatorNumBuckets = 32

	// feeEstimatorDecay is the per-block multiplicative decay applied to
	// every bucket's accumulated weight, so old observations gradually
	// stop influencing the estimate rather than dropping out of a fixed
	// window all at once.
	feeEstimatorDecay = 0.998

	// feeEstimatorMinBucketFeeRate is the fee rate (base units per 1000
	// bytes) below which every observation is folded into bucket 0.
	feeEstimatorMinBucketFeeRate = 1.0
)

// observedTx records a pooled transaction's fee rate and the height it was
// admitted at, so a later RegisterBlock call can credit the bucket it
// landed in with the actual number of blocks it took to confirm.
type observedTx struct {
	feeRate float64
	height  uint32
}

// FeeEstimator tracks how quickly transactions at a given fee rate have
// historically confirmed, as an exponentially-decayed histogram over
// (fee-rate bucket, confirmation delay) rather than a fixed observation
// window. This shape (decay-weighted buckets, not a sliding sample deque)
// follows btcd's mempool fee estimator, simplified: there is no fee-rate
// interpolation, and every target uses the same confidence level.
type FeeEstimator struct {
	mtx sync.Mutex

	bestHeight uint32
	observed   map[chainhash.Hash]*observedTx

	// bucketWeight[i] is the decayed count of transactions that
	// confirmed while classified in bucket i; bucketBlocks[i] is the
	// decayed sum of the confirmation delays those transactions
	// experienced. Their ratio is bucket i's average confirmation delay.
	bucketWeight [feeEstimatorNumBuckets]float64
	bucketBlocks [feeEstimatorNumBuckets]float64
}

// NewFeeEstimator returns an empty FeeEstimator with no accumulated
// history.
func NewFeeEstimator() *FeeEstimator {
	return &FeeEstimator{observed: make(map[chainhash.Hash]*observedTx)}
}

func feeRateBucket(feeRate float64) int {
	if feeRate < feeEstimatorMinBucketFeeRate {
		return 0
	}
	b := int(math.Log2(feeRate))
	if b < 0 {
		b = 0
	}
	if b >= feeEstimatorNumBuckets {
		b = feeEstimatorNumBuckets - 1
	}
	return b
}

// ObserveTransaction records a transaction's fee rate (base units per 1000
// serialized bytes) as of its admission to the pool at height.
func (fe *FeeEstimator) ObserveTransaction(txHash chainhash.Hash, feeRate float64, height uint32) {
	fe.mtx.Lock()
	defer fe.mtx.Unlock()
	fe.observed[txHash] = &observedTx{feeRate: feeRate, height: height}
}

// RemoveTransaction drops a transaction that left the pool without being
// mined (conflict, expiry, replacement, manual eviction), so it never
// contributes a confirmation-delay sample it didn't actually experience.
func (fe *FeeEstimator) RemoveTransaction(txHash chainhash.Hash) {
	fe.mtx.Lock()
	defer fe.mtx.Unlock()
	delete(fe.observed, txHash)
}

// RegisterBlock decays every bucket's accumulated weight by one block and
// credits any still-observed transaction among minedHashes with the
// confirmation delay it actually experienced.
func (fe *FeeEstimator) RegisterBlock(height uint32, minedHashes []chainhash.Hash) {
	fe.mtx.Lock()
	defer fe.mtx.Unlock()

	for i := range fe.bucketWeight {
		fe.bucketWeight[i] *= feeEstimatorDecay
		fe.bucketBlocks[i] *= feeEstimatorDecay
	}

	for _, h := range minedHashes {
		obs, ok := fe.observed[h]
		if !ok {
			continue
		}
		delete(fe.observed, h)
		delay := float64(height-obs.height) + 1
		b := feeRateBucket(obs.feeRate)
		fe.bucketWeight[b]++
		fe.bucketBlocks[b] += delay
	}
	fe.bestHeight = height
}

// EstimateFee returns the fee rate (base units per 1000 bytes) this
// estimator believes is sufficient for a transaction to confirm within
// targetBlocks, and whether enough history has accumulated to answer at
// all. It walks buckets from the highest fee rate down, returning the
// lowest-fee bucket whose historical average confirmation delay still
// meets the target.
func (fe *FeeEstimator) EstimateFee(targetBlocks uint32) (rate float64, ok bool) {
	fe.mtx.Lock()
	defer fe.mtx.Unlock()

	best := -1
	for b := feeEstimatorNumBuckets - 1; b >= 0; b-- {
		if fe.bucketWeight[b] < 1 {
			continue
		}
		avgDelay := fe.bucketBlocks[b] / fe.bucketWeight[b]
		if avgDelay <= float64(targetBlocks) {
			best = b
			continue
		}
		break
	}
	if best < 0 {
		return 0, false
	}
	return math.Exp2(float64(best)), true
}
