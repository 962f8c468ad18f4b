// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/sha1"
	"crypto/sha256"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

// opcodeInvalid is the catch-all handler for opcode bytes that have no
// defined meaning.
func opcodeInvalid(pop *parsedOpcode, vm *Engine) error {
	return scriptError(ErrBadOpcode, "attempt to execute invalid opcode")
}

// opcodeDisabled handles an opcode that has been permanently removed from
// the scripting language.
func opcodeDisabled(pop *parsedOpcode, vm *Engine) error {
	return scriptError(ErrDisabledOpcode, "attempt to execute disabled opcode")
}

// opcodeReserved handles an opcode that is reserved and thus is always
// illegal when actually executed.
func opcodeReserved(pop *parsedOpcode, vm *Engine) error {
	return scriptError(ErrBadOpcode, "attempt to execute reserved opcode")
}

func opcodeNop(pop *parsedOpcode, vm *Engine) error {
	if pop.opcode.value != OP_NOP && vm.hasFlag(ScriptVerifyDiscourageUpgradableNOPs) {
		return scriptError(ErrDiscourageUpgradableNOPs, "attempt to execute reserved NOP opcode")
	}
	return nil
}

func opcodePushData(pop *parsedOpcode, vm *Engine) error {
	if len(pop.data) > MaxScriptElementSize {
		return scriptError(ErrPushSize, "element size exceeds max allowed size")
	}
	vm.dstack.PushByteArray(pop.data)
	return nil
}

func opcodeNegate(pop *parsedOpcode, vm *Engine) error {
	vm.dstack.PushInt(ScriptNum(-1))
	return nil
}

func opcodeToAltStack(pop *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.astack.PushByteArray(so)
	return nil
}

func opcodeFromAltStack(pop *parsedOpcode, vm *Engine) error {
	so, err := vm.astack.PopByteArray()
	if err != nil {
		return scriptError(ErrInvalidAltStackOperation, err.Error())
	}
	vm.dstack.PushByteArray(so)
	return nil
}

func opcode2Drop(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.DropN(2)
}

func opcode2Dup(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.DupN(2)
}

func opcode3Dup(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.DupN(3)
}

func opcode2Over(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.OverN(2)
}

func opcode2Rot(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.RotN(2)
}

func opcode2Swap(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.SwapN(2)
}

func opcodeIfDup(pop *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	if asBool(so) {
		vm.dstack.PushByteArray(so)
	}
	return nil
}

func opcodeDepth(pop *parsedOpcode, vm *Engine) error {
	vm.dstack.PushInt(ScriptNum(vm.dstack.Depth()))
	return nil
}

func opcodeDrop(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.DropN(1)
}

func opcodeDup(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.DupN(1)
}

func opcodeNip(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.NipN(1)
}

func opcodeOver(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.OverN(1)
}

func opcodePick(pop *parsedOpcode, vm *Engine) error {
	val, err := vm.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	return vm.dstack.PickN(int32(val.Int32()))
}

func opcodeRoll(pop *parsedOpcode, vm *Engine) error {
	val, err := vm.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	return vm.dstack.RollN(int32(val.Int32()))
}

func opcodeRot(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.RotN(1)
}

func opcodeSwap(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.SwapN(1)
}

func opcodeTuck(pop *parsedOpcode, vm *Engine) error {
	return vm.dstack.Tuck()
}

func opcodeSize(pop *parsedOpcode, vm *Engine) error {
	so, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	vm.dstack.PushInt(ScriptNum(len(so)))
	return nil
}

func opcodeEqual(pop *parsedOpcode, vm *Engine) error {
	a, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	b, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushBool(bytesEqual(a, b))
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func opcodeEqualVerify(pop *parsedOpcode, vm *Engine) error {
	if err := opcodeEqual(pop, vm); err != nil {
		return err
	}
	return abstractVerify(vm, ErrEqualVerify)
}

func abstractVerify(vm *Engine, code ErrorCode) error {
	verified, err := vm.dstack.PopBool()
	if err != nil {
		return err
	}
	if !verified {
		return scriptError(code, "verify failed")
	}
	return nil
}

func opcodeArithUnary(vm *Engine, f func(ScriptNum) ScriptNum) error {
	n, err := vm.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	vm.dstack.PushInt(f(n))
	return nil
}

func opcode1Add(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithUnary(vm, func(n ScriptNum) ScriptNum { return n + 1 })
}

func opcode1Sub(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithUnary(vm, func(n ScriptNum) ScriptNum { return n - 1 })
}

func opcodeArithNegate(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithUnary(vm, func(n ScriptNum) ScriptNum { return -n })
}

func opcodeAbs(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithUnary(vm, func(n ScriptNum) ScriptNum {
		if n < 0 {
			return -n
		}
		return n
	})
}

func opcodeNot(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithUnary(vm, func(n ScriptNum) ScriptNum {
		if n == 0 {
			return 1
		}
		return 0
	})
}

func opcode0NotEqual(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithUnary(vm, func(n ScriptNum) ScriptNum {
		if n != 0 {
			return 1
		}
		return 0
	})
}

func opcodeArithBinary(vm *Engine, f func(a, b ScriptNum) ScriptNum) error {
	b, err := vm.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	a, err := vm.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	vm.dstack.PushInt(f(a, b))
	return nil
}

func boolNum(b bool) ScriptNum {
	if b {
		return 1
	}
	return 0
}

func opcodeAdd(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithBinary(vm, func(a, b ScriptNum) ScriptNum { return a + b })
}

func opcodeSub(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithBinary(vm, func(a, b ScriptNum) ScriptNum { return a - b })
}

func opcodeBoolAnd(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithBinary(vm, func(a, b ScriptNum) ScriptNum { return boolNum(a != 0 && b != 0) })
}

func opcodeBoolOr(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithBinary(vm, func(a, b ScriptNum) ScriptNum { return boolNum(a != 0 || b != 0) })
}

func opcodeNumEqual(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithBinary(vm, func(a, b ScriptNum) ScriptNum { return boolNum(a == b) })
}

func opcodeNumEqualVerify(pop *parsedOpcode, vm *Engine) error {
	if err := opcodeNumEqual(pop, vm); err != nil {
		return err
	}
	return abstractVerify(vm, ErrNumEqualVerify)
}

func opcodeNumNotEqual(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithBinary(vm, func(a, b ScriptNum) ScriptNum { return boolNum(a != b) })
}

func opcodeLessThan(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithBinary(vm, func(a, b ScriptNum) ScriptNum { return boolNum(a < b) })
}

func opcodeGreaterThan(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithBinary(vm, func(a, b ScriptNum) ScriptNum { return boolNum(a > b) })
}

func opcodeLessThanOrEqual(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithBinary(vm, func(a, b ScriptNum) ScriptNum { return boolNum(a <= b) })
}

func opcodeGreaterThanOrEqual(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithBinary(vm, func(a, b ScriptNum) ScriptNum { return boolNum(a >= b) })
}

func opcodeMin(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithBinary(vm, func(a, b ScriptNum) ScriptNum {
		if a < b {
			return a
		}
		return b
	})
}

func opcodeMax(pop *parsedOpcode, vm *Engine) error {
	return opcodeArithBinary(vm, func(a, b ScriptNum) ScriptNum {
		if a > b {
			return a
		}
		return b
	})
}

func opcodeWithin(pop *parsedOpcode, vm *Engine) error {
	maxVal, err := vm.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	minVal, err := vm.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	x, err := vm.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	vm.dstack.PushBool(x >= minVal && x < maxVal)
	return nil
}

func opcodeHashUnary(vm *Engine, f func([]byte) []byte) error {
	so, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	vm.dstack.PushByteArray(f(so))
	return nil
}

func opcodeRipemd160(pop *parsedOpcode, vm *Engine) error {
	return opcodeHashUnary(vm, func(b []byte) []byte {
		h := ripemd160.New()
		h.Write(b)
		return h.Sum(nil)
	})
}

func opcodeSha1(pop *parsedOpcode, vm *Engine) error {
	return opcodeHashUnary(vm, func(b []byte) []byte {
		h := sha1.Sum(b)
		return h[:]
	})
}

func opcodeSha256(pop *parsedOpcode, vm *Engine) error {
	return opcodeHashUnary(vm, func(b []byte) []byte {
		h := sha256.Sum256(b)
		return h[:]
	})
}

// opcodeHash160 matches the Bitcoin convention of RIPEMD160(SHA256(x)),
// used for legacy-shaped pubkey-hash scripts.
func opcodeHash160(pop *parsedOpcode, vm *Engine) error {
	return opcodeHashUnary(vm, func(b []byte) []byte {
		sh := sha256.Sum256(b)
		h := ripemd160.New()
		h.Write(sh[:])
		return h.Sum(nil)
	})
}

func opcodeHash256(pop *parsedOpcode, vm *Engine) error {
	return opcodeHashUnary(vm, func(b []byte) []byte {
		h := blake2b.Sum256(b)
		h2 := blake2b.Sum256(h[:])
		return h2[:]
	})
}

// opcodeBlake160 is the witness-program pubkey-hash primitive: BLAKE2b-160
// of the input, the same construction addresses/address.go uses for
// P2PKH-style hashes.
func opcodeBlake160(pop *parsedOpcode, vm *Engine) error {
	return opcodeHashUnary(vm, func(b []byte) []byte {
		h, _ := blake2b.New(20, nil)
		h.Write(b)
		return h.Sum(nil)
	})
}

func opcodeBlake256(pop *parsedOpcode, vm *Engine) error {
	return opcodeHashUnary(vm, func(b []byte) []byte {
		h := blake2b.Sum256(b)
		return h[:]
	})
}

func opcodeSha3(pop *parsedOpcode, vm *Engine) error {
	return opcodeHashUnary(vm, func(b []byte) []byte {
		h := sha3.Sum256(b)
		return h[:]
	})
}

func opcodeKeccak(pop *parsedOpcode, vm *Engine) error {
	return opcodeHashUnary(vm, func(b []byte) []byte {
		h := sha3.NewLegacyKeccak256()
		h.Write(b)
		return h.Sum(nil)
	})
}
