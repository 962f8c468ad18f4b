// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestScriptNumRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := ScriptNum(rapid.Int64Range(-1<<40, 1<<40).Draw(t, "n"))
		encoded := n.Bytes()

		decoded, err := MakeScriptNum(encoded, true, maxMoneyScriptNumLen)
		require.NoError(t, err)
		require.Equal(t, n, decoded)
	})
}

func TestScriptNumMinimalEncodingRejected(t *testing.T) {
	_, err := MakeScriptNum([]byte{0x01, 0x00}, true, maxScriptNumLen)
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrMinimalData))

	_, err = MakeScriptNum([]byte{0x01, 0x00}, false, maxScriptNumLen)
	require.NoError(t, err)
}

func TestScriptNumZeroIsEmptyString(t *testing.T) {
	require.Nil(t, ScriptNum(0).Bytes())

	n, err := MakeScriptNum(nil, true, defaultScriptNumLen)
	require.NoError(t, err)
	require.Equal(t, ScriptNum(0), n)
}

func TestScriptNumExceedsLimit(t *testing.T) {
	_, err := MakeScriptNum([]byte{1, 2, 3, 4, 5, 6}, true, defaultScriptNumLen)
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrNumberTooBig))
}

func TestScriptNumNegativeEncodeDecode(t *testing.T) {
	n := ScriptNum(-255)
	decoded, err := MakeScriptNum(n.Bytes(), true, defaultScriptNumLen)
	require.NoError(t, err)
	require.Equal(t, n, decoded)
}
