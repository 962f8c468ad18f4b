// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// rawSigLen is the length of a bare Schnorr signature; one sighash-type
// byte is appended to make the 65-byte signature carried on the wire
// (spec.md §4.3).
const rawSigLen = 64

// subScript returns the portion of the currently executing script after
// the most recently executed OP_CODESEPARATOR, re-serialized, which is the
// piece CHECKSIG/CHECKMULTISIG commit to.
func (vm *Engine) subScript() []byte {
	var buf bytes.Buffer
	for _, pop := range vm.script[vm.scriptPC:] {
		buf.Write(pop.bytes())
	}
	return buf.Bytes()
}

func (vm *Engine) prevOutValue() (uint64, error) {
	if vm.fetcher == nil {
		return 0, scriptError(ErrCheckSigVerify, "no previous output fetcher configured")
	}
	op := vm.tx.TxIn[vm.txIdx].PreviousOutPoint
	out, ok := vm.fetcher.FetchPrevOutput(op)
	if !ok {
		return 0, scriptError(ErrCheckSigVerify, "previous output not found")
	}
	return out.Value, nil
}

// verifySig checks a 65-byte (64-byte Schnorr signature plus one sighash
// type byte) signature against a 32- or 33-byte public key.
func (vm *Engine) verifySig(sigBytes, pkBytes []byte) (bool, error) {
	if len(sigBytes) != rawSigLen+1 {
		return false, scriptError(ErrSigEncoding, "signature is not 65 bytes")
	}
	hashType := SigHashType(sigBytes[rawSigLen])

	value, err := vm.prevOutValue()
	if err != nil {
		return false, err
	}
	hash, err := CalcSignatureHash(vm.tx, vm.txIdx, vm.subScript(), value, hashType)
	if err != nil {
		return false, err
	}

	if vm.sigCache != nil && vm.sigCache.Exists(hash, sigBytes, pkBytes) {
		return true, nil
	}

	sig, err := schnorr.ParseSignature(sigBytes[:rawSigLen])
	if err != nil {
		if vm.hasFlag(ScriptVerifyNullFail) {
			return false, scriptError(ErrSigEncoding, "malformed signature")
		}
		return false, nil
	}
	pubKey, err := schnorr.ParsePubKey(pkBytes)
	if err != nil {
		return false, scriptError(ErrPubKeyEncoding, "malformed public key")
	}

	valid := sig.Verify(hash[:], pubKey)
	if valid && vm.sigCache != nil {
		vm.sigCache.Add(hash, sigBytes, pkBytes)
	}
	return valid, nil
}

func opcodeCheckSig(pop *parsedOpcode, vm *Engine) error {
	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	sigBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	valid, err := vm.verifySig(sigBytes, pkBytes)
	if err != nil {
		return err
	}
	if !valid && vm.hasFlag(ScriptVerifyNullFail) && len(sigBytes) != 0 {
		return scriptError(ErrNullFail, "signature not empty on failed checksig")
	}
	vm.dstack.PushBool(valid)
	return nil
}

func opcodeCheckSigVerify(pop *parsedOpcode, vm *Engine) error {
	if err := opcodeCheckSig(pop, vm); err != nil {
		return err
	}
	return abstractVerify(vm, ErrCheckSigVerify)
}

// opcodeCheckMultiSig implements an m-of-n check: n pubkeys, m signatures,
// in pubkey order, with a leading dummy element consumed for the
// historical off-by-one in this opcode family.
func opcodeCheckMultiSig(pop *parsedOpcode, vm *Engine) error {
	numKeys, err := vm.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	numPubKeys := int(numKeys.Int32())
	if numPubKeys < 0 || numPubKeys > 20 {
		return scriptError(ErrPubKeyCount, "invalid number of pubkeys")
	}

	pubKeys := make([][]byte, numPubKeys)
	for i := 0; i < numPubKeys; i++ {
		pk, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		pubKeys[i] = pk
	}

	numSigsNum, err := vm.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	numSigs := int(numSigsNum.Int32())
	if numSigs < 0 || numSigs > numPubKeys {
		return scriptError(ErrSigCount, "invalid number of signatures")
	}

	sigs := make([][]byte, numSigs)
	for i := 0; i < numSigs; i++ {
		sig, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		sigs[i] = sig
	}

	// Dummy element consumed for the historical CHECKMULTISIG off-by-one.
	if _, err := vm.dstack.PopByteArray(); err != nil {
		return err
	}

	pkIdx := 0
	sigIdx := 0
	success := true
	for sigIdx < numSigs {
		if pkIdx >= numPubKeys {
			success = false
			break
		}
		valid, err := vm.verifySig(sigs[sigIdx], pubKeys[pkIdx])
		if err != nil {
			return err
		}
		if valid {
			sigIdx++
		}
		pkIdx++
	}

	if !success && vm.hasFlag(ScriptVerifyNullFail) {
		for _, sig := range sigs {
			if len(sig) != 0 {
				return scriptError(ErrNullFail, "signature not empty on failed checkmultisig")
			}
		}
	}

	vm.dstack.PushBool(success)
	return nil
}

func opcodeCheckMultiSigVerify(pop *parsedOpcode, vm *Engine) error {
	if err := opcodeCheckMultiSig(pop, vm); err != nil {
		return err
	}
	return abstractVerify(vm, ErrCheckMultisigVerify)
}

func opcodeCheckLockTimeVerify(pop *parsedOpcode, vm *Engine) error {
	if !vm.hasFlag(ScriptVerifyCheckLockTimeVerify) {
		return nil
	}
	lockTime, err := vm.dstack.PeekInt(0, maxScriptNumLen)
	if err != nil {
		return err
	}
	if lockTime < 0 {
		return scriptError(ErrNegativeLockTime, "negative locktime")
	}
	if int64(lockTime) > int64(vm.tx.LockTime) {
		return scriptError(ErrUnsatisfiedLockTime, "locktime requirement not satisfied")
	}
	const finalSequence = 0xffffffff
	if vm.tx.TxIn[vm.txIdx].Sequence == finalSequence {
		return scriptError(ErrUnsatisfiedLockTime, "input is final, locktime cannot be enforced")
	}
	return nil
}

func opcodeCheckSequenceVerify(pop *parsedOpcode, vm *Engine) error {
	if !vm.hasFlag(ScriptVerifyCheckSequenceVerify) {
		return nil
	}
	sequence, err := vm.dstack.PeekInt(0, maxScriptNumLen)
	if err != nil {
		return err
	}
	if sequence < 0 {
		return scriptError(ErrNegativeLockTime, "negative sequence")
	}

	const sequenceLockTimeDisabled = 1 << 31
	if int64(sequence)&sequenceLockTimeDisabled != 0 {
		return nil
	}

	const sequenceLockTimeMask = 0x0000ffff
	txSeq := vm.tx.TxIn[vm.txIdx].Sequence
	if int64(txSeq)&sequenceLockTimeDisabled != 0 {
		return scriptError(ErrUnsatisfiedLockTime, "transaction sequence has disable flag set")
	}
	if int64(sequence)&sequenceLockTimeMask > int64(txSeq)&sequenceLockTimeMask {
		return scriptError(ErrUnsatisfiedLockTime, "sequence requirement not satisfied")
	}
	return nil
}

// opcodeType pushes the covenant type (spec.md §6.2) of the same-index
// output of the spending transaction, or 0 if the spending transaction has
// no output at that index. It is one of the introspection primitives the
// covenant model is built on and requires a transaction context.
func opcodeType(pop *parsedOpcode, vm *Engine) error {
	if vm.tx == nil {
		return scriptError(ErrInvalidStackOperation, "OP_TYPE requires a transaction context")
	}
	if vm.txIdx < 0 || vm.txIdx >= len(vm.tx.TxOut) {
		vm.dstack.PushInt(0)
		return nil
	}
	vm.dstack.PushInt(ScriptNum(vm.tx.TxOut[vm.txIdx].Covenant.Type))
	return nil
}

// opcodeCheckOutput pops (expectedValue, addressHash, addressVersion) and
// checks them against the same-index output of the spending transaction,
// leaving a boolean success flag (spec.md §4.2). An expectedValue of 0 means
// "same value as the input being spent," letting a redeem script pass a
// coin's value through to its replacement output without hard-coding it.
func opcodeCheckOutput(pop *parsedOpcode, vm *Engine) error {
	addrVersion, err := vm.dstack.PopInt(defaultScriptNumLen)
	if err != nil {
		return err
	}
	addrHash, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	expectedValue, err := vm.dstack.PopInt(maxMoneyScriptNumLen)
	if err != nil {
		return err
	}

	if vm.tx == nil {
		return scriptError(ErrInvalidStackOperation, "OP_CHECKOUTPUT requires a transaction context")
	}
	if vm.txIdx < 0 || vm.txIdx >= len(vm.tx.TxOut) {
		vm.dstack.PushBool(false)
		return nil
	}
	out := vm.tx.TxOut[vm.txIdx]

	want := uint64(int64(expectedValue))
	if want == 0 {
		inputValue, err := vm.prevOutValue()
		if err != nil {
			vm.dstack.PushBool(false)
			return nil
		}
		want = inputValue
	}

	ok := uint8(addrVersion.Int32()) == out.Address.Version &&
		bytesEqual(addrHash, out.Address.Hash) &&
		want == out.Value
	vm.dstack.PushBool(ok)
	return nil
}
