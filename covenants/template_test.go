// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package covenants

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/domainchain/dmcd/txscript"
	"github.com/domainchain/dmcd/wire"
)

func disasm(t *testing.T, script []byte) string {
	t.Helper()
	s, err := txscript.DisasmString(script)
	require.NoError(t, err)
	return s
}

func TestAnyoneCanRenewScriptShape(t *testing.T) {
	owner := make([]byte, 33)
	script, err := AnyoneCanRenewScript(owner)
	require.NoError(t, err)
	require.NotEmpty(t, script)
	require.Contains(t, disasm(t, script), "OP_TYPE")
	require.Contains(t, disasm(t, script), "OP_CHECKSIG")
}

func TestSplitManagementScriptShape(t *testing.T) {
	hot := make([]byte, 33)
	cold := make([]byte, 33)
	script, err := SplitManagementScript(hot, cold)
	require.NoError(t, err)
	require.NotEmpty(t, script)
	require.Contains(t, disasm(t, script), "OP_BOOLOR")
}

func TestScriptsCoverDistinctCovenantTypes(t *testing.T) {
	owner := make([]byte, 33)
	script, err := AnyoneCanRenewScript(owner)
	require.NoError(t, err)

	// The RENEW type constant the anyone-can-renew script pushes must be
	// distinct from the UPDATE one.
	require.NotEqual(t, int64(wire.CovenantRenew), int64(wire.CovenantUpdate))
	require.NotEmpty(t, script)
}
