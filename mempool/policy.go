// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"

	"github.com/domainchain/dmcd/txscript"
	"github.com/domainchain/dmcd/wire"
)

// Policy-layer constants gate transactions that are consensus-valid but
// discouraged for relay/mining, mirroring the distinction spec.md §7 draws
// between mandatory (ban-scoring) rule violations and mempool-only policy
// (non-scoring) rejections.
const (
	// DefaultMinRelayTxFee is the minimum fee rate, in base units per
	// 1000 bytes of serialized transaction, a transaction must pay to
	// be relayed or mined by a default-policy node.
	DefaultMinRelayTxFee = 1000

	// MaxStandardTxSize bounds the serialized size of a transaction this
	// node will relay or mine, independent of the consensus-level
	// MaxTxInPerTx/MaxTxOutPerTx bounds.
	MaxStandardTxSize = 100_000

	// MaxStandardCovenantItems bounds the item count a standard (as
	// opposed to merely consensus-legal) covenant may carry; consensus
	// allows up to wire.MaxCovenantItems, but no defined covenant type
	// uses more than seven, so anything wider is almost certainly junk.
	MaxStandardCovenantItems = 7

	// MinRelayOutputValue is the dust threshold: an output below this
	// value costs more in eventual spend fees than it is worth, so a
	// default-policy node refuses to relay it.
	MinRelayOutputValue = 1000

	// MaxOrphanTransactions is the maximum number of orphan transactions
	// held in the orphan pool at once.
	MaxOrphanTransactions = 100

	// MaxOrphanTxSize is the maximum size, in bytes, of an orphan
	// transaction this node will hold pending its parents' arrival.
	MaxOrphanTxSize = 100_000

	// orphanExpireScanInterval is an orphan-sweep interval, in seconds.
	// No code in this package reads it: TxPool does not expire orphans.
	orphanExpireScanInterval = 5 * 60

	// DefaultFreeTxRelayLimit is a default rate, in thousands of bytes per
	// minute, for relaying transactions with no or below-minimum fees.
	// TxPool applies no such rate limit: a transaction below the minimum
	// relay fee is always rejected.
	DefaultFreeTxRelayLimit = 15.0
)

// StandardScriptVerifyFlags is the flag set a mempool's script checks run
// with: the mandatory rules every block-connect enforces, plus every
// discretionary tightening spec.md §6.5 lists for default relay policy.
const StandardScriptVerifyFlags = txscript.StandardVerifyFlags

// checkTransactionStandard reports a policy violation if tx is
// consensus-valid but not standard enough for this node's default relay
// policy: oversized, carrying dust, or attaching an unrecognizably wide
// covenant. Consensus validity (names.ApplyCovenant, script execution) is
// checked separately; this only narrows what consensus already allows.
func checkTransactionStandard(tx *wire.MsgTx, serializedSize int) error {
	if serializedSize > MaxStandardTxSize {
		return ruleError(ErrNonStandard, fmt.Errorf("serialized size %d exceeds max standard size %d", serializedSize, MaxStandardTxSize))
	}
	for i, in := range tx.TxIn {
		if len(in.Witness) == 0 {
			return ruleError(ErrNonStandard, fmt.Errorf("input %d carries no witness", i))
		}
	}
	for i, out := range tx.TxOut {
		if out.Covenant.Type == wire.CovenantNone && out.Value < MinRelayOutputValue {
			return ruleError(ErrDust, fmt.Errorf("output %d value %d below dust threshold %d", i, out.Value, MinRelayOutputValue))
		}
		if len(out.Covenant.Items) > MaxStandardCovenantItems {
			return ruleError(ErrNonStandard, fmt.Errorf("output %d covenant carries %d items, more than any standard covenant uses", i, len(out.Covenant.Items)))
		}
	}
	return nil
}

// calcMinRequiredTxRelayFee returns the minimum fee, in base units, a
// serializedSize-byte transaction must pay to clear minRelayTxFee (itself
// expressed per 1000 bytes), rounding up so a transaction can never
// underpay by a fractional-byte rounding error.
func calcMinRequiredTxRelayFee(serializedSize int64, minRelayTxFee uint64) uint64 {
	fee := (minRelayTxFee*uint64(serializedSize) + 999) / 1000
	if fee == 0 && minRelayTxFee > 0 {
		fee = minRelayTxFee
	}
	return fee
}

// signalsReplacement reports whether tx opts in to BIP125-style
// replace-by-fee: at least one input's sequence number is below
// math.MaxUint32-1.
func signalsReplacement(tx *wire.MsgTx) bool {
	for _, in := range tx.TxIn {
		if in.Sequence < 0xfffffffe {
			return true
		}
	}
	return false
}
