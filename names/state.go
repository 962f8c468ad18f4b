// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package names

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/domainchain/dmcd/chaincfg"
	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/wire"
)

// NameState is the per-name record maintained in the authenticated trie,
// keyed by its 32-byte name-hash (spec.md §3.1). It is the single mutable
// object every covenant application reads and writes; the trie package
// only ever stores its encoded form.
type NameState struct {
	Name      []byte
	NameHash  chainhash.Hash
	Height    uint32
	Renewal   uint32
	Owner     wire.OutPoint
	Value     uint64
	Highest   uint64
	Data      []byte
	Transfer  uint32
	Revoked   uint32
	Claimed   uint32
	Renewals  uint32
	Weak      bool
}

// Phase identifies which stage of the auction/ownership lifecycle a
// NameState is in at a given height (spec.md §4.6). It is computed, never
// stored, so the phase arithmetic is written exactly once and shared by
// the consensus gate (C8) and the mempool admission adapter (C9).
type Phase int

const (
	PhaseOpening Phase = iota
	PhaseBidding
	PhaseReveal
	PhaseClosed
	PhaseRevoked
	PhaseExpired
)

func (p Phase) String() string {
	switch p {
	case PhaseOpening:
		return "OPENING"
	case PhaseBidding:
		return "BIDDING"
	case PhaseReveal:
		return "REVEAL"
	case PhaseClosed:
		return "CLOSED"
	case PhaseRevoked:
		return "REVOKED"
	case PhaseExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// Phase computes the NameState's lifecycle stage at the given height under
// the auction windows carried by params, per spec.md §4.6.
//
// REVOKED and EXPIRED take priority over the open-height-driven stages:
// a revoked name is REVOKED for RevocationDelay blocks regardless of where
// its auction clock sits, and any name (revoked or not) whose last renewal
// is RenewalWindow blocks stale is EXPIRED and behaves as absent for OPEN
// purposes.
func (ns *NameState) Phase(height uint32, params *chaincfg.Params) Phase {
	if ns.Revoked > 0 && height-ns.Revoked < params.RevocationDelay {
		return PhaseRevoked
	}
	if height >= ns.Renewal && height-ns.Renewal >= params.RenewalWindow {
		return PhaseExpired
	}

	biddingStart := ns.Height + params.TreeInterval
	biddingEnd := biddingStart + params.BiddingPeriod
	revealEnd := biddingEnd + params.RevealPeriod

	switch {
	case height <= biddingStart:
		return PhaseOpening
	case height <= biddingEnd:
		return PhaseBidding
	case height <= revealEnd:
		return PhaseReveal
	default:
		return PhaseClosed
	}
}

// IsOpenable reports whether a fresh OPEN covenant may target this
// NameState's name-hash at the given height: either it is EXPIRED, or it
// is REVOKED and has cleared RevocationDelay (REVOKED implies EXPIRED is
// not simultaneously reported by Phase, so this is checked independently).
func (ns *NameState) IsOpenable(height uint32, params *chaincfg.Params) bool {
	if ns.Revoked > 0 {
		return height-ns.Revoked >= params.RevocationDelay
	}
	if ns.Height == 0 && ns.Claimed == 0 {
		return true // never seen: absent NameState, trivially openable
	}
	return ns.Phase(height, params) == PhaseExpired
}

// Clone returns a deep copy of the NameState, used by the consensus gate
// and mempool overlay to stage a mutation without affecting the committed
// value until the enclosing batch commits.
func (ns *NameState) Clone() *NameState {
	c := *ns
	c.Name = append([]byte(nil), ns.Name...)
	c.Data = append([]byte(nil), ns.Data...)
	return &c
}

// Encode writes the NameState in its canonical trie-value form
// (spec.md §6.6): name_len:u8, name, name_hash:32, height:u32, renewal:u32,
// owner_txid:32, owner_index:u32, value:u64, highest:u64, data_len:varint,
// data, transfer:u32, revoked:u32, claimed:u32, renewals:u32, weak:u8.
func (ns *NameState) Encode(w io.Writer) error {
	if len(ns.Name) > MaxNameLength {
		return errNameEncodeTooLong
	}
	if _, err := w.Write([]byte{byte(len(ns.Name))}); err != nil {
		return err
	}
	if _, err := w.Write(ns.Name); err != nil {
		return err
	}
	if _, err := w.Write(ns.NameHash[:]); err != nil {
		return err
	}
	var u32 [4]byte
	putU32 := func(v uint32) error {
		binary.LittleEndian.PutUint32(u32[:], v)
		_, err := w.Write(u32[:])
		return err
	}
	if err := putU32(ns.Height); err != nil {
		return err
	}
	if err := putU32(ns.Renewal); err != nil {
		return err
	}
	if _, err := w.Write(ns.Owner.Hash[:]); err != nil {
		return err
	}
	if err := putU32(ns.Owner.Index); err != nil {
		return err
	}
	var u64 [8]byte
	putU64 := func(v uint64) error {
		binary.LittleEndian.PutUint64(u64[:], v)
		_, err := w.Write(u64[:])
		return err
	}
	if err := putU64(ns.Value); err != nil {
		return err
	}
	if err := putU64(ns.Highest); err != nil {
		return err
	}
	if err := wire.WriteVarBytes(w, ns.Data); err != nil {
		return err
	}
	if err := putU32(ns.Transfer); err != nil {
		return err
	}
	if err := putU32(ns.Revoked); err != nil {
		return err
	}
	if err := putU32(ns.Claimed); err != nil {
		return err
	}
	if err := putU32(ns.Renewals); err != nil {
		return err
	}
	weak := byte(0)
	if ns.Weak {
		weak = 1
	}
	_, err := w.Write([]byte{weak})
	return err
}

// Decode reads a NameState from its canonical trie-value form.
func (ns *NameState) Decode(r io.Reader) error {
	var nameLen [1]byte
	if _, err := io.ReadFull(r, nameLen[:]); err != nil {
		return err
	}
	name := make([]byte, nameLen[0])
	if _, err := io.ReadFull(r, name); err != nil {
		return err
	}
	var nameHash chainhash.Hash
	if _, err := io.ReadFull(r, nameHash[:]); err != nil {
		return err
	}
	var u32 [4]byte
	readU32 := func() (uint32, error) {
		if _, err := io.ReadFull(r, u32[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint32(u32[:]), nil
	}
	height, err := readU32()
	if err != nil {
		return err
	}
	renewal, err := readU32()
	if err != nil {
		return err
	}
	var ownerTxid chainhash.Hash
	if _, err := io.ReadFull(r, ownerTxid[:]); err != nil {
		return err
	}
	ownerIndex, err := readU32()
	if err != nil {
		return err
	}
	var u64 [8]byte
	readU64 := func() (uint64, error) {
		if _, err := io.ReadFull(r, u64[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(u64[:]), nil
	}
	value, err := readU64()
	if err != nil {
		return err
	}
	highest, err := readU64()
	if err != nil {
		return err
	}
	data, err := wire.ReadVarBytes(r, MaxDataLength, "name data")
	if err != nil {
		return err
	}
	transfer, err := readU32()
	if err != nil {
		return err
	}
	revoked, err := readU32()
	if err != nil {
		return err
	}
	claimed, err := readU32()
	if err != nil {
		return err
	}
	renewals, err := readU32()
	if err != nil {
		return err
	}
	var weakByte [1]byte
	if _, err := io.ReadFull(r, weakByte[:]); err != nil {
		return err
	}

	ns.Name = name
	ns.NameHash = nameHash
	ns.Height = height
	ns.Renewal = renewal
	ns.Owner = wire.OutPoint{Hash: ownerTxid, Index: ownerIndex}
	ns.Value = value
	ns.Highest = highest
	ns.Data = data
	ns.Transfer = transfer
	ns.Revoked = revoked
	ns.Claimed = claimed
	ns.Renewals = renewals
	ns.Weak = weakByte[0] != 0
	return nil
}

// EncodeBytes is a convenience wrapper returning Encode's output directly,
// the form the trie package stores as a leaf value.
func (ns *NameState) EncodeBytes() []byte {
	var buf bytes.Buffer
	_ = ns.Encode(&buf)
	return buf.Bytes()
}

// DecodeNameState decodes a NameState from its canonical trie-value bytes.
func DecodeNameState(b []byte) (*NameState, error) {
	ns := new(NameState)
	if err := ns.Decode(bytes.NewReader(b)); err != nil {
		return nil, err
	}
	return ns, nil
}

var errNameEncodeTooLong = &nameEncodeError{"name exceeds maximum length"}

type nameEncodeError struct{ s string }

func (e *nameEncodeError) Error() string { return "names: " + e.s }
