// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/domainchain/dmcd/wire"
)

// Execution limits, per spec.md §4.2's "Execution limits" table.
const (
	MaxScriptSize        = 10000
	MaxScriptElementSize = 520
	MaxOpsPerScript      = 201
	MaxStackSize         = 1000
	MaxScriptDepth       = 4 // redeem-script nesting depth; Engine does not read it
)

// ScriptFlags is a bitmask of script-verification policy/consensus toggles.
type ScriptFlags uint32

const (
	// ScriptVerifyMinimalData names the minimal-encoding rule. The
	// interpreter does not read this flag: numeric operands are always
	// decoded with the minimal-encoding check, and data pushes are not
	// checked for using the smallest push opcode.
	ScriptVerifyMinimalData ScriptFlags = 1 << iota

	// ScriptVerifyCleanStack requires that the stack contain exactly one
	// item, a true value, when a redeem script finishes executing.
	ScriptVerifyCleanStack

	// ScriptVerifyCheckLockTimeVerify enables OP_CHECKLOCKTIMEVERIFY.
	ScriptVerifyCheckLockTimeVerify

	// ScriptVerifyCheckSequenceVerify enables OP_CHECKSEQUENCEVERIFY.
	ScriptVerifyCheckSequenceVerify

	// ScriptVerifyNullFail requires signatures to be empty on a failed
	// CHECKSIG/CHECKMULTISIG rather than garbage.
	ScriptVerifyNullFail

	// ScriptVerifyLowS names the low-S signature rule. No check in this
	// package reads the flag: signatures are not tested for an S value in
	// the lower half of the curve order.
	ScriptVerifyLowS

	// ScriptVerifyMinimalIf requires the argument to OP_IF/OP_NOTIF to be
	// either an empty byte array or exactly [0x01] (spec.md §6.5's
	// MINIMALIF bit).
	ScriptVerifyMinimalIf

	// ScriptVerifyDiscourageUpgradableNOPs rejects scripts using any of
	// the reserved OP_NOP1-OP_NOP10 opcodes not otherwise assigned a
	// meaning, so future soft-forks can safely repurpose them.
	ScriptVerifyDiscourageUpgradableNOPs

	// ScriptVerifyDiscourageUpgradableWitnessProgram rejects a spend of a
	// witness program whose version the interpreter does not recognize,
	// rather than treating it as an automatic pass.
	ScriptVerifyDiscourageUpgradableWitnessProgram
)

// StandardVerifyFlags is the flag set applied to scripts considered for
// mempool admission; it is a superset of MandatoryVerifyFlags adding the
// two "discourage upgradable" bits per spec.md §6.5.
const MandatoryVerifyFlags = ScriptVerifyMinimalData | ScriptVerifyMinimalIf | ScriptVerifyNullFail

const StandardVerifyFlags = MandatoryVerifyFlags | ScriptVerifyCleanStack |
	ScriptVerifyCheckLockTimeVerify | ScriptVerifyCheckSequenceVerify |
	ScriptVerifyLowS | ScriptVerifyDiscourageUpgradableNOPs |
	ScriptVerifyDiscourageUpgradableWitnessProgram

// PrevOutputFetcher supplies the output being spent by a given outpoint, so
// CHECKSIG's sighash and the introspection opcodes can see the value and
// covenant of the coin an input consumes.
type PrevOutputFetcher interface {
	FetchPrevOutput(op wire.OutPoint) (*wire.TxOut, bool)
}

// Engine executes a single redeem script in the context of one input of one
// transaction, with access to the outputs consumed by every input (needed
// for sighash commitments and the OP_CHECKOUTPUT/OP_TYPE introspection
// opcodes) and to the outputs the transaction itself creates.
type Engine struct {
	tx       *wire.MsgTx
	txIdx    int
	flags    ScriptFlags
	fetcher  PrevOutputFetcher
	script   []*parsedOpcode
	scriptPC int // index of the first opcode after the most recent OP_CODESEPARATOR

	dstack    stack
	astack    stack
	condStack []int

	numOps int

	// sigCache, if set, lets verifySig skip recomputing a signature
	// check already performed once (typically on mempool admission) when
	// the same transaction's scripts are re-verified at block-connect
	// time. A nil cache disables the optimization entirely.
	sigCache *SigCache
}

// SetSigCache attaches a signature verification cache to the engine.
func (vm *Engine) SetSigCache(cache *SigCache) {
	vm.sigCache = cache
}

const (
	condFalse = iota
	condTrue
	condSkip
)

// NewEngine parses script and returns an Engine ready to execute it as the
// redeem script for input txIdx of tx.
func NewEngine(script []byte, tx *wire.MsgTx, txIdx int, flags ScriptFlags, fetcher PrevOutputFetcher) (*Engine, error) {
	if len(script) > MaxScriptSize {
		return nil, scriptError(ErrScriptSize, "script exceeds max allowed size")
	}
	pops, err := parseScript(script)
	if err != nil {
		return nil, err
	}
	return &Engine{
		tx:      tx,
		txIdx:   txIdx,
		flags:   flags,
		fetcher: fetcher,
		script:  pops,
	}, nil
}

// SetInitialStack seeds the data stack prior to execution; witness.go uses
// this to place the non-script witness items below the redeem script.
func (vm *Engine) SetInitialStack(items [][]byte) {
	vm.dstack.stk = append([][]byte(nil), items...)
}

func (vm *Engine) hasFlag(f ScriptFlags) bool { return vm.flags&f != 0 }

// Execute runs the parsed script to completion and reports whether it left
// a consensus-true result on the stack.
func (vm *Engine) Execute() error {
	for i, pop := range vm.script {
		if pop.alwaysIllegal() {
			return scriptError(ErrBadOpcode, "opcode is always illegal")
		}

		executing := vm.shouldExec(pop)

		if executing && pop.opcode.length > 0 && len(pop.data) > MaxScriptElementSize {
			return scriptError(ErrPushSize, "element size exceeds max allowed size")
		}

		if pop.opcode.value > OP_16 || pop.isConditional() {
			vm.numOps++
			if vm.numOps > MaxOpsPerScript {
				return scriptError(ErrOpCount, "exceeded max operation limit")
			}
		}

		if !executing && !pop.isConditional() {
			continue
		}

		if pop.opcode.value == OP_CODESEPARATOR {
			vm.scriptPC = i + 1
		}

		if err := pop.opcode.exec(pop, vm); err != nil {
			return err
		}

		if vm.dstack.Depth()+vm.astack.Depth() > MaxStackSize {
			return scriptError(ErrStackSize, "combined stack size exceeds limit")
		}
	}

	if len(vm.condStack) != 0 {
		return scriptError(ErrUnbalancedConditional, "end of script reached in conditional execution")
	}

	if vm.dstack.Depth() < 1 {
		return scriptError(ErrEvalFalse, "script evaluated without error but left nothing on the stack")
	}
	v, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !v {
		return scriptError(ErrEvalFalse, "script evaluated to a false value")
	}
	if vm.hasFlag(ScriptVerifyCleanStack) && vm.dstack.Depth() != 0 {
		return scriptError(ErrEvalFalse, "stack contains additional unexpected items")
	}
	return nil
}

func (vm *Engine) shouldExec(pop *parsedOpcode) bool {
	if len(vm.condStack) == 0 {
		return true
	}
	if vm.condStack[len(vm.condStack)-1] == condTrue {
		return true
	}
	return pop.isConditional()
}

// checkMinimalIfTop enforces spec.md §6.5's MINIMALIF flag: the argument to
// OP_IF/OP_NOTIF must be the empty byte string or exactly [0x01].
func (vm *Engine) checkMinimalIfTop() error {
	if !vm.hasFlag(ScriptVerifyMinimalIf) {
		return nil
	}
	top, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	if len(top) > 1 || (len(top) == 1 && top[0] != 1) {
		return scriptError(ErrMinimalIf, "conditional argument is not minimally encoded")
	}
	return nil
}

func opcodeIf(pop *parsedOpcode, vm *Engine) error {
	condVal := condFalse
	if vm.shouldExecParent() {
		if err := vm.checkMinimalIfTop(); err != nil {
			return err
		}
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if ok {
			condVal = condTrue
		}
	} else {
		condVal = condSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

func opcodeNotIf(pop *parsedOpcode, vm *Engine) error {
	condVal := condFalse
	if vm.shouldExecParent() {
		if err := vm.checkMinimalIfTop(); err != nil {
			return err
		}
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if !ok {
			condVal = condTrue
		}
	} else {
		condVal = condSkip
	}
	vm.condStack = append(vm.condStack, condVal)
	return nil
}

// shouldExecParent reports whether the conditional branch about to be
// pushed is itself inside an executing branch.
func (vm *Engine) shouldExecParent() bool {
	if len(vm.condStack) == 0 {
		return true
	}
	return vm.condStack[len(vm.condStack)-1] == condTrue
}

func opcodeElse(pop *parsedOpcode, vm *Engine) error {
	if len(vm.condStack) == 0 {
		return scriptError(ErrUnbalancedConditional, "else without matching if")
	}
	top := len(vm.condStack) - 1
	switch vm.condStack[top] {
	case condTrue:
		vm.condStack[top] = condFalse
	case condFalse:
		vm.condStack[top] = condTrue
	case condSkip:
		// remains condSkip
	}
	return nil
}

func opcodeEndif(pop *parsedOpcode, vm *Engine) error {
	if len(vm.condStack) == 0 {
		return scriptError(ErrUnbalancedConditional, "endif without matching if")
	}
	vm.condStack = vm.condStack[:len(vm.condStack)-1]
	return nil
}

func opcodeVerify(pop *parsedOpcode, vm *Engine) error {
	return abstractVerify(vm, ErrVerify)
}

func opcodeReturn(pop *parsedOpcode, vm *Engine) error {
	return scriptError(ErrOpReturn, "script hit an OP_RETURN opcode")
}

func opcodeCodeSeparator(pop *parsedOpcode, vm *Engine) error {
	return nil
}
