// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// ErrorCode identifies a kind of script error, per spec.md §7's
// ScriptError domain.
type ErrorCode int

// Script error codes.
const (
	ErrScriptSize ErrorCode = iota
	ErrBadOpcode
	ErrDisabledOpcode
	ErrPushSize
	ErrOpCount
	ErrStackSize
	ErrMinimalData
	ErrMinimalIf
	ErrNullFail
	ErrUnbalancedConditional
	ErrInvalidStackOperation
	ErrInvalidAltStackOperation
	ErrVerify
	ErrEqualVerify
	ErrNumEqualVerify
	ErrCheckSigVerify
	ErrCheckMultisigVerify
	ErrPubKeyCount
	ErrSigCount
	ErrSigEncoding
	ErrPubKeyEncoding
	ErrNegativeLockTime
	ErrUnsatisfiedLockTime
	ErrOpReturn
	ErrEvalFalse
	ErrWitnessProgramMismatch
	ErrWitnessProgramWitnessEmpty
	ErrWitnessProgramWrongLength
	ErrDiscourageUpgradableWitnessProgram
	ErrDiscourageUpgradableNOPs
	ErrSigNullDummy
	ErrNumberTooBig
	ErrCodeSeparator
	ErrMalformedPush
)

var errorCodeStrings = map[ErrorCode]string{
	ErrScriptSize:                         "ErrScriptSize",
	ErrBadOpcode:                          "ErrBadOpcode",
	ErrDisabledOpcode:                     "ErrDisabledOpcode",
	ErrPushSize:                           "ErrPushSize",
	ErrOpCount:                            "ErrOpCount",
	ErrStackSize:                          "ErrStackSize",
	ErrMinimalData:                        "ErrMinimalData",
	ErrMinimalIf:                          "ErrMinimalIf",
	ErrNullFail:                           "ErrNullFail",
	ErrUnbalancedConditional:              "ErrUnbalancedConditional",
	ErrInvalidStackOperation:              "ErrInvalidStackOperation",
	ErrInvalidAltStackOperation:           "ErrInvalidAltStackOperation",
	ErrVerify:                             "ErrVerify",
	ErrEqualVerify:                        "ErrEqualVerify",
	ErrNumEqualVerify:                     "ErrNumEqualVerify",
	ErrCheckSigVerify:                     "ErrCheckSigVerify",
	ErrCheckMultisigVerify:                "ErrCheckMultisigVerify",
	ErrPubKeyCount:                        "ErrPubKeyCount",
	ErrSigCount:                           "ErrSigCount",
	ErrSigEncoding:                        "ErrSigEncoding",
	ErrPubKeyEncoding:                     "ErrPubKeyEncoding",
	ErrNegativeLockTime:                   "ErrNegativeLockTime",
	ErrUnsatisfiedLockTime:                "ErrUnsatisfiedLockTime",
	ErrOpReturn:                           "ErrOpReturn",
	ErrEvalFalse:                          "ErrEvalFalse",
	ErrWitnessProgramMismatch:             "ErrWitnessProgramMismatch",
	ErrWitnessProgramWitnessEmpty:         "ErrWitnessProgramWitnessEmpty",
	ErrWitnessProgramWrongLength:          "ErrWitnessProgramWrongLength",
	ErrDiscourageUpgradableWitnessProgram: "ErrDiscourageUpgradableWitnessProgram",
	ErrDiscourageUpgradableNOPs:           "ErrDiscourageUpgradableNOPs",
	ErrSigNullDummy:                       "ErrSigNullDummy",
	ErrNumberTooBig:                       "ErrNumberTooBig",
	ErrCodeSeparator:                      "ErrCodeSeparator",
	ErrMalformedPush:                      "ErrMalformedPush",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(e))
}

// Error identifies an error relating to script execution, carrying the
// opcode offset at which it occurred when one is available.
type Error struct {
	ErrorCode  ErrorCode
	Offset     int
	Description string
}

func (e Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.ErrorCode, e.Offset, e.Description)
	}
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Description)
}

func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Offset: -1, Description: desc}
}

func scriptErrorAt(c ErrorCode, offset int, desc string) Error {
	return Error{ErrorCode: c, Offset: offset, Description: desc}
}

// IsErrorCode reports whether err is a txscript Error carrying the given
// code.
func IsErrorCode(err error, c ErrorCode) bool {
	serr, ok := err.(Error)
	return ok && serr.ErrorCode == c
}
