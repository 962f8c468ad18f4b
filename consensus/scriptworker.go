// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"context"
	"fmt"
	"sync"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/txscript"
	"github.com/domainchain/dmcd/wire"
)

// inputJob is one input's witness-program verification task, dispatched to
// the script-verification worker pool (spec.md §5: "for each input, a
// verifier task receives (hash, sig, key) and returns a boolean; ordering
// of sig-checks does not matter, but the final accept/reject of the block
// is serialized on the completion of all outstanding verifier tasks").
type inputJob struct {
	tx    *wire.MsgTx
	txIdx int
	prog  wire.Address
	value uint64
}

// isCoinbaseInput reports whether op is the null outpoint a coinbase
// input spends, which carries no witness program to verify.
func isCoinbaseInput(op wire.OutPoint) bool {
	return op.Hash == (chainhash.Hash{}) && op.Index == ^uint32(0)
}

// verifyBlockScripts checks every non-coinbase input's witness program
// across txs concurrently. Work is fanned out across a fixed-size worker
// pool; as soon as one job fails, the feeder goroutine is cancelled and
// the remaining, not-yet-dispatched jobs are discarded (spec.md §5's
// cancellation rule) rather than run to completion.
//
// Script interpretation itself stays single-threaded per input (spec.md
// §5: "the stack is not shareable"); only the fan-out across inputs is
// concurrent.
func verifyBlockScripts(txs []*wire.MsgTx, fetcher txscript.PrevOutputFetcher, flags txscript.ScriptFlags, cache *txscript.SigCache, workers int) error {
	var jobs []inputJob
	for _, tx := range txs {
		for i, in := range tx.TxIn {
			if isCoinbaseInput(in.PreviousOutPoint) {
				continue
			}
			prevOut, ok := fetcher.FetchPrevOutput(in.PreviousOutPoint)
			if !ok {
				return fmt.Errorf("missing previous output for input %d of tx %s", i, tx.TxHash())
			}
			jobs = append(jobs, inputJob{tx: tx, txIdx: i, prog: prevOut.Address, value: prevOut.Value})
		}
	}
	if len(jobs) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobCh := make(chan inputJob)
	errCh := make(chan error, 1)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for job := range jobCh {
				witness := job.tx.TxIn[job.txIdx].Witness
				err := txscript.VerifyWitnessProgramCached(job.prog, witness, job.tx, job.txIdx, job.value, flags, fetcher, cache)
				if err != nil {
					select {
					case errCh <- err:
						cancel()
					default:
					}
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case jobCh <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
