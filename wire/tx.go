// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the canonical transaction encoding described in
// spec.md §6.1: outpoints, covenant-bearing outputs, and the witness stack
// that gates each input, plus the two transaction hashes (id and
// witness-inclusive) that the rest of the core identifies transactions and
// signs over with.
package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
)

// Bounds that keep a hostile peer's encoded transaction from causing
// unbounded allocation during decode.
const (
	MaxTxInPerTx  = 1_000_000
	MaxTxOutPerTx = 1_000_000

	// MaxOutputValue is the maximum value a single output may carry, in
	// base units (spec.md §3.1: "u64 less than a protocol max").
	MaxOutputValue = 21_000_000 * 1e8

	// MaxWitnessItemSize bounds a single witness stack item.
	MaxWitnessItemSize = 11_000
)

// OutPoint identifies an unspent output by the hash of the transaction
// that created it and the output's index within that transaction
// (spec.md §3.1).
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// String returns the canonical "hash:index" representation of the
// outpoint.
func (o OutPoint) String() string {
	return o.Hash.String() + ":" + itoa(o.Index)
}

// Less reports whether o sorts before other under the lexicographic
// (txid, index) ordering spec.md §4.6 rule 5 uses to break reveal ties.
func (o OutPoint) Less(other OutPoint) bool {
	if cmp := bytes.Compare(o.Hash[:], other.Hash[:]); cmp != 0 {
		return cmp < 0
	}
	return o.Index < other.Index
}

func itoa(v uint32) string {
	return string(appendUint(nil, uint64(v)))
}

func appendUint(dst []byte, v uint64) []byte {
	if v == 0 {
		return append(dst, '0')
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return append(dst, buf[i:]...)
}

// TxIn is a transaction input: the outpoint it spends, a sequence number
// usable for relative-locktime signaling, and its witness stack
// (spec.md §3.1).
type TxIn struct {
	PreviousOutPoint OutPoint
	Sequence         uint32
	Witness          [][]byte
}

// TxOut is a transaction output: its value in base units, the address that
// gates spending it, and the covenant attached to it (spec.md §3.1).
type TxOut struct {
	Value    uint64
	Address  Address
	Covenant Covenant
}

// MsgTx is a transaction: version, ordered inputs, ordered outputs, and a
// locktime (spec.md §3.1).
type MsgTx struct {
	Version  uint32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new transaction with the given version and no
// inputs or outputs.
func NewMsgTx(version uint32) *MsgTx {
	return &MsgTx{Version: version}
}

// HasWitness reports whether any input carries a non-empty witness stack.
func (tx *MsgTx) HasWitness() bool {
	for _, in := range tx.TxIn {
		if len(in.Witness) > 0 {
			return true
		}
	}
	return false
}

// encode writes the transaction body (fields 1-6 of spec.md §6.1) to w.
// Witness data is appended separately so that the id hash (over fields
// 1-6) and the witness-inclusive hash (over fields 1-7) can both be
// derived from one serialization routine.
func (tx *MsgTx) encode(w io.Writer, withWitness bool) error {
	var verBuf [4]byte
	binary.LittleEndian.PutUint32(verBuf[:], tx.Version)
	if _, err := w.Write(verBuf[:]); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(tx.TxIn))); err != nil {
		return err
	}
	for _, in := range tx.TxIn {
		if _, err := w.Write(in.PreviousOutPoint.Hash[:]); err != nil {
			return err
		}
		var idxBuf [4]byte
		binary.LittleEndian.PutUint32(idxBuf[:], in.PreviousOutPoint.Index)
		if _, err := w.Write(idxBuf[:]); err != nil {
			return err
		}
		var seqBuf [4]byte
		binary.LittleEndian.PutUint32(seqBuf[:], in.Sequence)
		if _, err := w.Write(seqBuf[:]); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(tx.TxOut))); err != nil {
		return err
	}
	for _, out := range tx.TxOut {
		if out.Value > MaxOutputValue {
			return messageError("MsgTx.encode", "output value exceeds max")
		}
		var valBuf [8]byte
		binary.LittleEndian.PutUint64(valBuf[:], out.Value)
		if _, err := w.Write(valBuf[:]); err != nil {
			return err
		}
		if err := out.Address.Encode(w); err != nil {
			return err
		}
		if err := out.Covenant.Encode(w); err != nil {
			return err
		}
	}

	var lockBuf [4]byte
	binary.LittleEndian.PutUint32(lockBuf[:], tx.LockTime)
	if _, err := w.Write(lockBuf[:]); err != nil {
		return err
	}

	if !withWitness {
		return nil
	}
	for _, in := range tx.TxIn {
		if err := WriteVarInt(w, uint64(len(in.Witness))); err != nil {
			return err
		}
		for _, item := range in.Witness {
			if len(item) > MaxWitnessItemSize {
				return messageError("MsgTx.encode", "witness item too large")
			}
			if err := WriteVarBytes(w, item); err != nil {
				return err
			}
		}
	}
	return nil
}

// Serialize writes the canonical id-hash preimage (fields 1-6) to w.
func (tx *MsgTx) Serialize(w io.Writer) error {
	return tx.encode(w, false)
}

// SerializeWitness writes the canonical witness-inclusive preimage
// (fields 1-7) to w.
func (tx *MsgTx) SerializeWitness(w io.Writer) error {
	return tx.encode(w, true)
}

// Decode reads a transaction, including its witness data, from r.
func (tx *MsgTx) Decode(r io.Reader) error {
	var verBuf [4]byte
	if _, err := io.ReadFull(r, verBuf[:]); err != nil {
		return err
	}
	tx.Version = binary.LittleEndian.Uint32(verBuf[:])

	inCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if inCount > MaxTxInPerTx {
		return messageError("MsgTx.Decode", "too many inputs")
	}
	tx.TxIn = make([]*TxIn, inCount)
	for i := range tx.TxIn {
		in := new(TxIn)
		if _, err := io.ReadFull(r, in.PreviousOutPoint.Hash[:]); err != nil {
			return err
		}
		var idxBuf [4]byte
		if _, err := io.ReadFull(r, idxBuf[:]); err != nil {
			return err
		}
		in.PreviousOutPoint.Index = binary.LittleEndian.Uint32(idxBuf[:])
		var seqBuf [4]byte
		if _, err := io.ReadFull(r, seqBuf[:]); err != nil {
			return err
		}
		in.Sequence = binary.LittleEndian.Uint32(seqBuf[:])
		tx.TxIn[i] = in
	}

	outCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if outCount > MaxTxOutPerTx {
		return messageError("MsgTx.Decode", "too many outputs")
	}
	tx.TxOut = make([]*TxOut, outCount)
	for i := range tx.TxOut {
		out := new(TxOut)
		var valBuf [8]byte
		if _, err := io.ReadFull(r, valBuf[:]); err != nil {
			return err
		}
		out.Value = binary.LittleEndian.Uint64(valBuf[:])
		if out.Value > MaxOutputValue {
			return messageError("MsgTx.Decode", "output value exceeds max")
		}
		if err := out.Address.Decode(r); err != nil {
			return err
		}
		if err := out.Covenant.Decode(r); err != nil {
			return err
		}
		tx.TxOut[i] = out
	}

	var lockBuf [4]byte
	if _, err := io.ReadFull(r, lockBuf[:]); err != nil {
		return err
	}
	tx.LockTime = binary.LittleEndian.Uint32(lockBuf[:])

	for _, in := range tx.TxIn {
		witCount, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		witness := make([][]byte, witCount)
		for i := range witness {
			item, err := ReadVarBytes(r, MaxWitnessItemSize, "witness item")
			if err != nil {
				return err
			}
			witness[i] = item
		}
		in.Witness = witness
	}

	return nil
}

// TxHash returns the transaction's identity hash: blake2b-256 of fields
// 1-6 (i.e. without witness data).
func (tx *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = tx.Serialize(&buf)
	return chainhash.HashH(buf.Bytes())
}

// WitnessHash returns the witness-inclusive hash: blake2b-256 of fields
// 1-7, used for witness-commitment purposes.
func (tx *MsgTx) WitnessHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = tx.SerializeWitness(&buf)
	return chainhash.HashH(buf.Bytes())
}

// Copy returns a deep copy of the transaction.
func (tx *MsgTx) Copy() *MsgTx {
	newTx := &MsgTx{
		Version:  tx.Version,
		LockTime: tx.LockTime,
		TxIn:     make([]*TxIn, len(tx.TxIn)),
		TxOut:    make([]*TxOut, len(tx.TxOut)),
	}
	for i, in := range tx.TxIn {
		witness := make([][]byte, len(in.Witness))
		for j, item := range in.Witness {
			witness[j] = append([]byte(nil), item...)
		}
		newTx.TxIn[i] = &TxIn{
			PreviousOutPoint: in.PreviousOutPoint,
			Sequence:         in.Sequence,
			Witness:          witness,
		}
	}
	for i, out := range tx.TxOut {
		items := make([][]byte, len(out.Covenant.Items))
		for j, item := range out.Covenant.Items {
			items[j] = append([]byte(nil), item...)
		}
		newTx.TxOut[i] = &TxOut{
			Value:   out.Value,
			Address: Address{Version: out.Address.Version, Hash: append([]byte(nil), out.Address.Hash...)},
			Covenant: Covenant{
				Type:  out.Covenant.Type,
				Items: items,
			},
		}
	}
	return newTx
}
