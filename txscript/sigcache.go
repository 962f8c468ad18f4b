// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/dchest/siphash"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
)

// sigCacheEntry records one verified (signature, pubkey) pair so a cache
// hit on the shortened siphash key can still be confirmed against the
// full values before being trusted.
type sigCacheEntry struct {
	sigBytes []byte
	pkBytes  []byte
}

// SigCache is a verified-signature cache with randomized entry eviction,
// mitigating the CPU-exhaustion DoS a flood of invalid signatures would
// otherwise cost every peer that relays them, and letting a block's
// script checks skip transactions already verified on admission to the
// mempool.
type SigCache struct {
	sync.RWMutex
	validSigs  map[chainhash.Hash]sigCacheEntry
	maxEntries uint
	k0, k1     uint64
}

// NewSigCache returns a SigCache holding at most maxEntries verified
// signatures; once full, Add evicts a random existing entry to make room,
// per the btcsuite/decred family's sigcache eviction policy.
func NewSigCache(maxEntries uint) *SigCache {
	k0, k1 := sipRandomKey()
	return &SigCache{
		validSigs:  make(map[chainhash.Hash]sigCacheEntry, maxEntries),
		maxEntries: maxEntries,
		k0:         k0,
		k1:         k1,
	}
}

// key derives the cache key for a (sigHash, sig, pubKey) triple: a siphash
// over the three concatenated values, keyed with a per-cache random key so
// the map's bucket placement cannot be predicted by an attacker crafting
// signatures to force worst-case collisions.
func (c *SigCache) key(sigHash chainhash.Hash, sigBytes, pkBytes []byte) chainhash.Hash {
	buf := make([]byte, 0, chainhash.HashSize+len(sigBytes)+len(pkBytes))
	buf = append(buf, sigHash[:]...)
	buf = append(buf, sigBytes...)
	buf = append(buf, pkBytes...)
	var out chainhash.Hash
	binary.LittleEndian.PutUint64(out[:8], siphash.Hash(c.k0, c.k1, buf))
	return out
}

// Exists reports whether sigBytes over sigHash under pkBytes has already
// been verified and cached.
func (c *SigCache) Exists(sigHash chainhash.Hash, sigBytes, pkBytes []byte) bool {
	key := c.key(sigHash, sigBytes, pkBytes)
	c.RLock()
	entry, ok := c.validSigs[key]
	c.RUnlock()
	return ok && bytes.Equal(entry.sigBytes, sigBytes) && bytes.Equal(entry.pkBytes, pkBytes)
}

// Add records that sigBytes over sigHash under pkBytes verified
// successfully.
func (c *SigCache) Add(sigHash chainhash.Hash, sigBytes, pkBytes []byte) {
	if c.maxEntries == 0 {
		return
	}
	key := c.key(sigHash, sigBytes, pkBytes)

	c.Lock()
	defer c.Unlock()
	if uint(len(c.validSigs)+1) > c.maxEntries {
		// Evict a random entry; Go's map iteration order is
		// unspecified, which is all the randomness this needs.
		for k := range c.validSigs {
			delete(c.validSigs, k)
			break
		}
	}
	c.validSigs[key] = sigCacheEntry{
		sigBytes: append([]byte(nil), sigBytes...),
		pkBytes:  append([]byte(nil), pkBytes...),
	}
}

// sipRandomKey returns a cryptographically random siphash key pair, one
// generated per SigCache so an attacker cannot predict cache-key
// placement across processes.
func sipRandomKey() (k0, k1 uint64) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(buf[:8]), binary.LittleEndian.Uint64(buf[8:])
}
