// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package names

import (
	"encoding/binary"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
)

// NonceSize is the width of the nonce committed to by a BID's blind hash
// (spec.md §4.5, §4.6).
const NonceSize = 32

// Blind computes the commitment a BID covenant carries in place of its
// true value: blake2b-256(u64_le(value) || nonce) (spec.md §4.6, glossary
// "Blind"). REVEAL later discloses (value, nonce) so the consensus layer
// can recompute this and compare against the BID's recorded blindHash.
func Blind(value uint64, nonce [NonceSize]byte) chainhash.Hash {
	var buf [8 + NonceSize]byte
	binary.LittleEndian.PutUint64(buf[:8], value)
	copy(buf[8:], nonce[:])
	return chainhash.HashH(buf[:])
}

// VerifyBlind reports whether (value, nonce) is the opening of blindHash.
func VerifyBlind(blindHash chainhash.Hash, value uint64, nonce [NonceSize]byte) bool {
	return Blind(value, nonce) == blindHash
}
