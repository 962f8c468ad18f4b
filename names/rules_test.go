// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package names

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidName(t *testing.T) {
	cases := []struct {
		name    string
		wantErr error
	}{
		{"", ErrNameTooShort},
		{"example", nil},
		{"my-name", nil},
		{"-leading", ErrNameInvalidEdge},
		{"trailing-", ErrNameInvalidEdge},
		{"has space", ErrNameInvalidChar},
		{"UPPER", ErrNameInvalidChar},
		{".leading-dot", ErrNameInvalidDots},
		{"trailing-dot.", ErrNameInvalidDots},
		{"double..dot", ErrNameInvalidDots},
	}
	for _, c := range cases {
		err := IsValidName([]byte(c.name))
		if c.wantErr == nil {
			require.NoError(t, err, c.name)
		} else {
			require.ErrorIs(t, err, c.wantErr, c.name)
		}
	}

	long := make([]byte, MaxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	require.ErrorIs(t, IsValidName(long), ErrNameTooLong)
}

func TestHashIsDeterministic(t *testing.T) {
	a := Hash([]byte("example"))
	b := Hash([]byte("example"))
	require.Equal(t, a, b)

	c := Hash([]byte("different"))
	require.NotEqual(t, a, c)
}

func TestRolloutBucketBounded(t *testing.T) {
	h := Hash([]byte("somename"))
	bucket := RolloutBucket(h)
	require.Less(t, bucket, uint32(RolloutWeeks))
	require.Equal(t, bucket*RolloutBlocksPerWeek, RolloutHeight(h))
}

func TestLookupReserved(t *testing.T) {
	rn, ok := LookupReserved(Hash([]byte("icann")))
	require.True(t, ok)
	require.Equal(t, "icann", rn.Name)
	require.False(t, rn.Weak)

	_, ok = LookupReserved(Hash([]byte("not-a-reserved-name")))
	require.False(t, ok)
}
