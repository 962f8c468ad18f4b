// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"

	"github.com/domainchain/dmcd/chaincfg/chainhash"
	"github.com/domainchain/dmcd/wire"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// SigHashType identifies which parts of a transaction a signature commits
// to (spec.md §4.3). The low nibble selects the output-commitment variant;
// two independent modifier bits may be OR'd in on top of it.
type SigHashType byte

const (
	SigHashAll           SigHashType = 0x01
	SigHashNone          SigHashType = 0x02
	SigHashSingle        SigHashType = 0x03
	SigHashSingleReverse SigHashType = 0x04

	sigHashOutputMask = 0x0f

	// SigHashAnyOneCanPay, when set, commits only to the input being
	// signed rather than to every input of the transaction.
	SigHashAnyOneCanPay SigHashType = 0x80

	// SigHashNoInput, when set, commits to the coin value and script
	// but not to the outpoint spent or to any input's sequence (the
	// input's own outpoint and sequence are written as zero), letting
	// the signature be replayed against any coin with an identical
	// script and value.
	SigHashNoInput SigHashType = 0x40
)

func (t SigHashType) outputVariant() SigHashType { return t & sigHashOutputMask }
func (t SigHashType) anyOneCanPay() bool          { return t&SigHashAnyOneCanPay != 0 }
func (t SigHashType) noInput() bool               { return t&SigHashNoInput != 0 }

func doubleBlake2b(b []byte) chainhash.Hash {
	return chainhash.DoubleHashH(b)
}

func writeOutput(buf *bytes.Buffer, out *wire.TxOut) {
	var valBuf [8]byte
	binary.LittleEndian.PutUint64(valBuf[:], out.Value)
	buf.Write(valBuf[:])
	_ = out.Address.Encode(buf)
	_ = out.Covenant.Encode(buf)
}

// prevoutsHash hashes every input's outpoint in transaction order.
func prevoutsHash(tx *wire.MsgTx) chainhash.Hash {
	var buf bytes.Buffer
	for _, in := range tx.TxIn {
		buf.Write(in.PreviousOutPoint.Hash[:])
		var idx [4]byte
		binary.LittleEndian.PutUint32(idx[:], in.PreviousOutPoint.Index)
		buf.Write(idx[:])
	}
	return doubleBlake2b(buf.Bytes())
}

// sequencesHash hashes every input's sequence number in transaction order.
func sequencesHash(tx *wire.MsgTx) chainhash.Hash {
	var buf bytes.Buffer
	for _, in := range tx.TxIn {
		var seq [4]byte
		binary.LittleEndian.PutUint32(seq[:], in.Sequence)
		buf.Write(seq[:])
	}
	return doubleBlake2b(buf.Bytes())
}

// outputsHashAll hashes every output of the transaction.
func outputsHashAll(tx *wire.MsgTx) chainhash.Hash {
	var buf bytes.Buffer
	for _, out := range tx.TxOut {
		writeOutput(&buf, out)
	}
	return doubleBlake2b(buf.Bytes())
}

var zeroHash chainhash.Hash

// CalcSignatureHash computes the BLAKE2b-256 sighash digest that a
// signature over input idx of tx, spending a coin worth value with
// script subScript, must commit to under hashType (spec.md §4.3).
//
// subScript is the portion of the redeem script from the position
// following the last executed OP_CODESEPARATOR to its end.
func CalcSignatureHash(tx *wire.MsgTx, idx int, subScript []byte, value uint64, hashType SigHashType) (chainhash.Hash, error) {
	if idx < 0 || idx >= len(tx.TxIn) {
		return zeroHash, scriptError(ErrInvalidStackOperation, "signature hash input index out of range")
	}

	var buf bytes.Buffer

	var verBuf [4]byte
	binary.LittleEndian.PutUint32(verBuf[:], tx.Version)
	buf.Write(verBuf[:])

	if hashType.anyOneCanPay() || hashType.noInput() {
		buf.Write(zeroHash[:])
	} else {
		h := prevoutsHash(tx)
		buf.Write(h[:])
	}

	variant := hashType.outputVariant()
	if hashType.anyOneCanPay() || hashType.noInput() {
		buf.Write(zeroHash[:])
	} else {
		h := sequencesHash(tx)
		buf.Write(h[:])
	}

	in := tx.TxIn[idx]
	if hashType.noInput() {
		buf.Write(zeroHash[:])
		var zeroIdx [4]byte
		buf.Write(zeroIdx[:])
	} else {
		buf.Write(in.PreviousOutPoint.Hash[:])
		var outIdx [4]byte
		binary.LittleEndian.PutUint32(outIdx[:], in.PreviousOutPoint.Index)
		buf.Write(outIdx[:])
	}

	subHash := sha3.Sum256(subScript)
	buf.Write(subHash[:])

	var valBuf [8]byte
	binary.LittleEndian.PutUint64(valBuf[:], value)
	buf.Write(valBuf[:])

	if hashType.noInput() {
		var zeroSeq [4]byte
		buf.Write(zeroSeq[:])
	} else {
		var seqBuf [4]byte
		binary.LittleEndian.PutUint32(seqBuf[:], in.Sequence)
		buf.Write(seqBuf[:])
	}

	switch variant {
	case SigHashAll:
		h := outputsHashAll(tx)
		buf.Write(h[:])
	case SigHashNone:
		buf.Write(zeroHash[:])
	case SigHashSingle:
		if idx >= len(tx.TxOut) {
			buf.Write(zeroHash[:])
		} else {
			var ob bytes.Buffer
			writeOutput(&ob, tx.TxOut[idx])
			h := doubleBlake2b(ob.Bytes())
			buf.Write(h[:])
		}
	case SigHashSingleReverse:
		ridx := len(tx.TxOut) - 1 - idx
		if ridx < 0 || ridx >= len(tx.TxOut) {
			buf.Write(zeroHash[:])
		} else {
			var ob bytes.Buffer
			writeOutput(&ob, tx.TxOut[ridx])
			h := doubleBlake2b(ob.Bytes())
			buf.Write(h[:])
		}
	default:
		return zeroHash, scriptError(ErrSigEncoding, "unknown sighash output variant")
	}

	var lockBuf [4]byte
	binary.LittleEndian.PutUint32(lockBuf[:], tx.LockTime)
	buf.Write(lockBuf[:])

	buf.WriteByte(byte(hashType))

	digest := blake2b.Sum256(buf.Bytes())
	return chainhash.Hash(digest), nil
}
