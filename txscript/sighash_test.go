// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/domainchain/dmcd/wire"
)

func sighashTestTx() *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.TxIn = []*wire.TxIn{
		{PreviousOutPoint: wire.OutPoint{Index: 0}, Sequence: 0xffffffff},
		{PreviousOutPoint: wire.OutPoint{Index: 1}, Sequence: 0xfffffffe},
	}
	tx.TxOut = []*wire.TxOut{
		{Value: 1000},
		{Value: 2000},
	}
	return tx
}

func TestCalcSignatureHashDeterministic(t *testing.T) {
	tx := sighashTestTx()
	subScript := []byte{OP_TRUE}

	h1, err := CalcSignatureHash(tx, 0, subScript, 5000, SigHashAll)
	require.NoError(t, err)
	h2, err := CalcSignatureHash(tx, 0, subScript, 5000, SigHashAll)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

// TestCalcSignatureHashNoInputAnyOneCanPayMalleable verifies spec.md §8's
// "under NOINPUT | ANYONECANPAY, mutating any other input's prevout/
// sequence leaves the sighash unchanged" property.
func TestCalcSignatureHashNoInputAnyOneCanPayMalleable(t *testing.T) {
	tx := sighashTestTx()
	subScript := []byte{OP_TRUE}
	hashType := SigHashAll | SigHashNoInput | SigHashAnyOneCanPay

	before, err := CalcSignatureHash(tx, 0, subScript, 5000, hashType)
	require.NoError(t, err)

	tx.TxIn[1].PreviousOutPoint.Index = 99
	tx.TxIn[1].Sequence = 0

	after, err := CalcSignatureHash(tx, 0, subScript, 5000, hashType)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

// TestCalcSignatureHashPlainNoInputZeroesPrevoutsAndSequences verifies
// spec.md §4.3: under plain NOINPUT (without ANYONECANPAY), hashPrevouts
// and hashSequences must still be zero-filled, not just the signed
// input's own outpoint/sequence. Mutating another input's prevout or
// sequence must not change the sighash.
func TestCalcSignatureHashPlainNoInputZeroesPrevoutsAndSequences(t *testing.T) {
	tx := sighashTestTx()
	subScript := []byte{OP_TRUE}
	hashType := SigHashAll | SigHashNoInput

	before, err := CalcSignatureHash(tx, 0, subScript, 5000, hashType)
	require.NoError(t, err)

	tx.TxIn[1].PreviousOutPoint.Index = 99
	tx.TxIn[1].Sequence = 0

	after, err := CalcSignatureHash(tx, 0, subScript, 5000, hashType)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

// TestCalcSignatureHashAnyOneCanPayMutatesOwnSequence verifies spec.md
// §8's companion property: under plain ANYONECANPAY (no NOINPUT),
// mutating the signed input's own sequence changes the sighash, since
// the signed input's outpoint/sequence are still committed directly.
func TestCalcSignatureHashAnyOneCanPayMutatesOwnSequence(t *testing.T) {
	tx := sighashTestTx()
	subScript := []byte{OP_TRUE}
	hashType := SigHashAll | SigHashAnyOneCanPay

	before, err := CalcSignatureHash(tx, 0, subScript, 5000, hashType)
	require.NoError(t, err)

	tx.TxIn[0].Sequence = 0

	after, err := CalcSignatureHash(tx, 0, subScript, 5000, hashType)
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

// TestCalcSignatureHashSingleOutOfRangeZeroesOutputs verifies spec.md
// §4.3: SIGHASH_SINGLE with no corresponding output commits a zero
// hashOutputs instead of failing the spend.
func TestCalcSignatureHashSingleOutOfRangeZeroesOutputs(t *testing.T) {
	tx := sighashTestTx()
	tx.TxIn = append(tx.TxIn, &wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 2}, Sequence: 0xffffffff})
	subScript := []byte{OP_TRUE}

	// idx 2 has no corresponding output (len(TxOut) == 2): must zero
	// hashOutputs and succeed rather than error.
	_, err := CalcSignatureHash(tx, 2, subScript, 5000, SigHashSingle)
	require.NoError(t, err)
}

// TestCalcSignatureHashSingleReverseOutOfRangeZeroesOutputs verifies the
// same zero-if-out-of-range rule for SIGHASH_SINGLEREVERSE.
func TestCalcSignatureHashSingleReverseOutOfRangeZeroesOutputs(t *testing.T) {
	tx := sighashTestTx()
	tx.TxIn = append(tx.TxIn, &wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 2}, Sequence: 0xffffffff})
	subScript := []byte{OP_TRUE}

	// len(TxOut) - 1 - idx == -1 for idx == len(TxOut) == 2, out of range.
	_, err := CalcSignatureHash(tx, 2, subScript, 5000, SigHashSingleReverse)
	require.NoError(t, err)
}
