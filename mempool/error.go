// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import "fmt"

// ErrorCode enumerates the ways a candidate transaction can be refused
// mempool admission, distinct from names.VerifyError/consensus.RuleError
// so callers branching on "why was my tx rejected" never need to import
// either package just to check a failure shape.
type ErrorCode int

const (
	ErrUnknown ErrorCode = iota
	ErrDuplicateTx
	ErrAlreadyInPool
	ErrOrphan
	ErrOrphanPolicyViolation
	ErrMempoolDoubleSpend
	ErrAlreadyKnownOrphan
	ErrCoinbaseTx
	ErrNonStandard
	ErrDust
	ErrInsufficientFee
	ErrTooManySigOps
	ErrCovenantRejected
	ErrScriptValidation
	ErrImmatureSpend
	ErrReplacementNotAllowed
)

func (c ErrorCode) String() string {
	switch c {
	case ErrDuplicateTx:
		return "duplicate-tx"
	case ErrAlreadyInPool:
		return "already-in-mempool"
	case ErrOrphan:
		return "orphan-tx"
	case ErrOrphanPolicyViolation:
		return "orphan-policy-violation"
	case ErrMempoolDoubleSpend:
		return "double-spend"
	case ErrAlreadyKnownOrphan:
		return "already-known-orphan"
	case ErrCoinbaseTx:
		return "coinbase-tx"
	case ErrNonStandard:
		return "non-standard"
	case ErrDust:
		return "dust"
	case ErrInsufficientFee:
		return "insufficient-fee"
	case ErrTooManySigOps:
		return "too-many-sigops"
	case ErrCovenantRejected:
		return "covenant-rejected"
	case ErrScriptValidation:
		return "script-validation-failed"
	case ErrImmatureSpend:
		return "immature-spend"
	case ErrReplacementNotAllowed:
		return "replacement-not-allowed"
	default:
		return "unknown"
	}
}

// RuleError reports a mempool admission failure, following the same
// tagged-error-domain convention consensus.RuleError establishes for the
// block-connect path.
type RuleError struct {
	Code ErrorCode
	Err  error
}

func (e *RuleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code.String()
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

func ruleError(code ErrorCode, err error) *RuleError {
	return &RuleError{Code: code, Err: err}
}

// IsErrorCode reports whether err is a *RuleError carrying the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	re, ok := err.(*RuleError)
	return ok && re.Code == code
}
