// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/domainchain/dmcd/wire"
)

// VerifyWitnessProgram checks that the witness stack attached to input
// txIdx of tx satisfies the witness program carried in the output it
// spends (spec.md §4.4). Dispatch is entirely driven by the program's
// version and hash length:
//
//   - version 0, 20-byte hash: pay-to-pubkey-hash. The witness must be
//     exactly [signature, pubkey], and BLAKE160(pubkey) must equal hash.
//   - version 0, 32-byte hash: pay-to-script-hash. The witness must be
//     [...redeemScript items, redeemScript], and SHA3-256(redeemScript)
//     must equal hash; the remaining items become the redeem script's
//     initial stack.
//   - version wire.OpReturnVersion: unspendable. Always fails.
//   - any other version: reserved for future upgrade. Fails when
//     ScriptVerifyDiscourageUpgradableWitnessProgram is set; otherwise the
//     spend succeeds with no further checks.
func VerifyWitnessProgram(prog wire.Address, witness [][]byte, tx *wire.MsgTx, txIdx int, value uint64, flags ScriptFlags, fetcher PrevOutputFetcher) error {
	return VerifyWitnessProgramCached(prog, witness, tx, txIdx, value, flags, fetcher, nil)
}

// VerifyWitnessProgramCached is VerifyWitnessProgram with an optional
// signature cache consulted (and populated) by every CHECKSIG the spend
// performs; a nil cache behaves exactly like VerifyWitnessProgram.
func VerifyWitnessProgramCached(prog wire.Address, witness [][]byte, tx *wire.MsgTx, txIdx int, value uint64, flags ScriptFlags, fetcher PrevOutputFetcher, cache *SigCache) error {
	if prog.IsOpReturn() {
		return scriptError(ErrWitnessProgramMismatch, "attempt to spend an OP_RETURN output")
	}

	if prog.Version > 0 {
		if flags&ScriptVerifyDiscourageUpgradableWitnessProgram != 0 {
			return scriptError(ErrDiscourageUpgradableWitnessProgram, "unknown witness program version")
		}
		// Reserved for a future soft-fork; spends with no known rules
		// attached succeed unconditionally.
		return nil
	}

	switch len(prog.Hash) {
	case 20:
		return verifyPubKeyHashWitness(prog, witness, tx, txIdx, value, flags, fetcher, cache)
	case 32:
		return verifyScriptHashWitness(prog, witness, tx, txIdx, value, flags, fetcher, cache)
	default:
		return scriptError(ErrWitnessProgramWrongLength, "witness program has unrecognized hash length")
	}
}

func verifyPubKeyHashWitness(prog wire.Address, witness [][]byte, tx *wire.MsgTx, txIdx int, value uint64, flags ScriptFlags, fetcher PrevOutputFetcher, cache *SigCache) error {
	if len(witness) != 2 {
		return scriptError(ErrWitnessProgramWitnessEmpty, "pubkey-hash witness must carry exactly a signature and a pubkey")
	}
	sig, pubKey := witness[0], witness[1]

	h := blake160(pubKey)
	if !bytesEqual(h, prog.Hash) {
		return scriptError(ErrWitnessProgramMismatch, "pubkey does not hash to the witness program")
	}

	vm := &Engine{tx: tx, txIdx: txIdx, flags: flags, fetcher: fetcher, sigCache: cache}
	valid, err := vm.verifySig(sig, pubKey)
	if err != nil {
		return err
	}
	if !valid {
		return scriptError(ErrEvalFalse, "signature verification failed")
	}
	return nil
}

func verifyScriptHashWitness(prog wire.Address, witness [][]byte, tx *wire.MsgTx, txIdx int, value uint64, flags ScriptFlags, fetcher PrevOutputFetcher, cache *SigCache) error {
	if len(witness) == 0 {
		return scriptError(ErrWitnessProgramWitnessEmpty, "script-hash witness must carry a redeem script")
	}

	redeemScript := witness[len(witness)-1]
	items := witness[:len(witness)-1]

	if len(redeemScript) > MaxScriptSize {
		return scriptError(ErrScriptSize, "redeem script exceeds max allowed size")
	}

	h := scriptSha3(redeemScript)
	if !bytesEqual(h, prog.Hash) {
		return scriptError(ErrWitnessProgramMismatch, "redeem script does not hash to the witness program")
	}

	vm, err := NewEngine(redeemScript, tx, txIdx, flags, fetcher)
	if err != nil {
		return err
	}
	vm.SetSigCache(cache)
	vm.SetInitialStack(items)
	return vm.Execute()
}

func blake160(b []byte) []byte {
	var pop parsedOpcode
	e := &Engine{}
	e.dstack.PushByteArray(b)
	_ = opcodeBlake160(&pop, e)
	h, _ := e.dstack.PopByteArray()
	return h
}

// scriptSha3 matches spec.md §4.4's "sha3(script) == hash" witness-program
// check; it is distinct from opcodeSha3's stack-level plumbing so it can be
// called before an Engine exists.
func scriptSha3(b []byte) []byte {
	var pop parsedOpcode
	e := &Engine{}
	e.dstack.PushByteArray(b)
	_ = opcodeSha3(&pop, e)
	h, _ := e.dstack.PopByteArray()
	return h
}
