// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package names

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyBlind(t *testing.T) {
	var nonce [NonceSize]byte
	nonce[0] = 0x42

	blindHash := Blind(12345, nonce)
	require.True(t, VerifyBlind(blindHash, 12345, nonce))
	require.False(t, VerifyBlind(blindHash, 12346, nonce))

	var otherNonce [NonceSize]byte
	otherNonce[0] = 0x43
	require.False(t, VerifyBlind(blindHash, 12345, otherNonce))
}
