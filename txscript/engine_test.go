// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/domainchain/dmcd/wire"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, script []byte) error {
	t.Helper()
	tx := wire.NewMsgTx(1)
	tx.TxIn = []*wire.TxIn{{PreviousOutPoint: wire.OutPoint{Index: 0}, Sequence: 0xffffffff}}
	vm, err := NewEngine(script, tx, 0, StandardVerifyFlags, nil)
	require.NoError(t, err)
	return vm.Execute()
}

func TestEngineArithmetic(t *testing.T) {
	// OP_2 OP_3 OP_ADD OP_5 OP_NUMEQUAL
	script := []byte{OP_2, OP_3, OP_ADD, OP_5, OP_NUMEQUAL}
	require.NoError(t, runScript(t, script))
}

func TestEngineArithmeticFalse(t *testing.T) {
	script := []byte{OP_2, OP_3, OP_ADD, OP_6, OP_NUMEQUAL}
	err := runScript(t, script)
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrEvalFalse))
}

func TestEngineIfElse(t *testing.T) {
	// OP_1 OP_IF OP_2 OP_ELSE OP_3 OP_ENDIF OP_2 OP_NUMEQUAL
	script := []byte{OP_1, OP_IF, OP_2, OP_ELSE, OP_3, OP_ENDIF, OP_2, OP_NUMEQUAL}
	require.NoError(t, runScript(t, script))
}

func TestEngineUnbalancedConditional(t *testing.T) {
	script := []byte{OP_1, OP_IF, OP_1}
	err := runScript(t, script)
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrUnbalancedConditional))
}

func TestEngineDisabledOpcode(t *testing.T) {
	script := []byte{OP_1, OP_1, OP_CAT}
	err := runScript(t, script)
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrDisabledOpcode))
}

func TestEngineCleanStackEnforced(t *testing.T) {
	script := []byte{OP_1, OP_1}
	err := runScript(t, script)
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrEvalFalse))
}

func TestDisasmString(t *testing.T) {
	s, err := DisasmString([]byte{OP_2, OP_3, OP_ADD})
	require.NoError(t, err)
	require.Equal(t, "OP_2 OP_3 OP_ADD", s)
}
