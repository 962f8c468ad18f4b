// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package names implements the per-name state machine (spec.md C5) and the
// name validity/hashing rules (C6) that drive the covenant consensus gate
// and the mempool admission adapter. It is the authenticated-trie-facing
// half of the name-covenant core; the other half, the script interpreter
// that gates every spend, lives in txscript.
package names

import (
	"errors"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"golang.org/x/crypto/sha3"
)

// MinNameLength and MaxNameLength bound a name's raw byte length
// (spec.md §3.1: "1..=63 bytes, lowercase DNS label").
const (
	MinNameLength = 1
	MaxNameLength = 63
)

// MaxDataLength bounds a NameState's opaque resource-record blob
// (spec.md §3.1).
const MaxDataLength = 512

// ErrNameTooShort, ErrNameTooLong, ErrNameInvalidChar, ErrNameInvalidEdge,
// and ErrNameInvalidDots report specific name-validity violations so callers
// can attach a VerifyError reason tag without re-deriving which rule fired.
var (
	ErrNameTooShort    = errors.New("names: name is empty")
	ErrNameTooLong     = errors.New("names: name exceeds maximum length")
	ErrNameInvalidChar = errors.New("names: name contains a character outside [a-z0-9-_.]")
	ErrNameInvalidEdge = errors.New("names: name has a leading or trailing hyphen")
	ErrNameInvalidDots = errors.New("names: name has a leading, trailing, or repeated dot")
)

// IsValidName reports whether name satisfies the DNS-label validity rule
// referenced by spec.md §3.1's `name` field: 1..=63 bytes, lowercase,
// restricted to letters, digits, hyphen, underscore and dot, no
// leading/trailing hyphen, and no leading/trailing/consecutive dots.
func IsValidName(name []byte) error {
	if len(name) < MinNameLength {
		return ErrNameTooShort
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return ErrNameInvalidChar
		}
		if c == '-' && (i == 0 || i == len(name)-1) {
			return ErrNameInvalidEdge
		}
	}
	if name[0] == '.' || name[len(name)-1] == '.' {
		return ErrNameInvalidDots
	}
	for i := 1; i < len(name); i++ {
		if name[i] == '.' && name[i-1] == '.' {
			return ErrNameInvalidDots
		}
	}
	return nil
}

// Hash returns the name-hash consensus uses to key the trie: sha3-256 of
// the raw name bytes (spec.md §4.5: "name-hash equals sha3(name)"). This is
// deliberately sha3, not the blake2b-256 chainhash.HashH uses for
// transaction identity — the two hash domains are never interchangeable.
func Hash(name []byte) chainhash.Hash {
	return chainhash.Hash(sha3.Sum256(name))
}

// RolloutWeeks is the number of weekly buckets the reserved-name rollout
// schedule assigns names to (spec.md §4.9's "rollout schedule"):
// approximately one fifty-second of reserved names become available for auction
// (rather than claim-only) in each successive week after genesis.
const RolloutWeeks = 52

// RolloutBlocksPerWeek is the number of blocks treated as one rollout week
// for RolloutBucket's height arithmetic, assuming ~10-minute blocks.
const RolloutBlocksPerWeek = 6 * 24 * 7

// RolloutBucket assigns a reserved name to one of RolloutWeeks buckets,
// deterministically derived from its name-hash so the schedule cannot be
// gamed by choosing a name whose hash happens to roll out early. Bucket 0
// opens at genesis; bucket k opens at height k*RolloutBlocksPerWeek.
func RolloutBucket(nameHash chainhash.Hash) uint32 {
	var v uint32
	for _, b := range nameHash[:4] {
		v = v<<8 | uint32(b)
	}
	return v % RolloutWeeks
}

// RolloutHeight returns the height at which a reserved name assigned to
// RolloutBucket(nameHash) first becomes eligible for auction via OPEN
// rather than only via CLAIM.
func RolloutHeight(nameHash chainhash.Hash) uint32 {
	return RolloutBucket(nameHash) * RolloutBlocksPerWeek
}

// ReservedName describes one entry of the hard-coded reserved-name table
// (spec.md §4.9's claim-ingestion path), shaped like chaincfg/genesis.go's
// hard-coded constant tables elsewhere in the pack.
type ReservedName struct {
	Name   string
	Value  uint64 // base units credited on a successful claim
	Weak   bool   // weak claims can be overridden by a later auction win
	RootTX uint32 // index into the DNSSEC root-zone proof set; VerifyNameClaim does not read it
}

// ReservedNames is the hard-coded table of names carved out for the
// claim-ingestion path (C10) rather than auctioned from genesis. A real
// deployment seeds this from a snapshot of the legacy DNS root zone; this
// table carries a representative starter set so claim.VerifyNameClaim has
// concrete entries to validate against in tests and regtest.
var ReservedNames = []ReservedName{
	{Name: "icann", Value: 1_000_000_00000000, Weak: false, RootTX: 0},
	{Name: "example", Value: 100_000_00000000, Weak: true, RootTX: 1},
	{Name: "test", Value: 10_000_00000000, Weak: true, RootTX: 2},
}

var reservedByHash = func() map[chainhash.Hash]*ReservedName {
	m := make(map[chainhash.Hash]*ReservedName, len(ReservedNames))
	for i := range ReservedNames {
		rn := &ReservedNames[i]
		m[Hash([]byte(rn.Name))] = rn
	}
	return m
}()

// LookupReserved returns the reserved-name table entry for nameHash, if
// any, and whether it was found.
func LookupReserved(nameHash chainhash.Hash) (*ReservedName, bool) {
	rn, ok := reservedByHash[nameHash]
	return rn, ok
}
