// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// errNonCanonicalVarInt is returned when a variable-length integer is
// encoded in a non-minimal way, mirroring the canonical-encoding rule
// btcd/dcrd enforce on their own varints.
func errNonCanonicalVarInt(disc uint8, val, min uint64) error {
	return fmt.Errorf("non-canonical varint %x - discriminant %x must "+
		"encode a value greater than %x", val, disc, min)
}

// ReadVarInt reads a variable-length integer from r and returns it as a
// uint64, following the same prefix-discriminant scheme as the reference
// Bitcoin-family wire protocols: values under 0xfd are encoded directly in
// the discriminant byte; 0xfd/0xfe/0xff introduce a following 2/4/8-byte
// little-endian value.
func ReadVarInt(r io.Reader) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, err
	}

	var rv uint64
	switch prefix[0] {
	case 0xff:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		rv = binary.LittleEndian.Uint64(buf[:])
		if rv <= 0xffffffff {
			return 0, errNonCanonicalVarInt(prefix[0], rv, 0xffffffff)
		}
	case 0xfe:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		rv = uint64(binary.LittleEndian.Uint32(buf[:]))
		if rv <= 0xffff {
			return 0, errNonCanonicalVarInt(prefix[0], rv, 0xffff)
		}
	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		rv = uint64(binary.LittleEndian.Uint16(buf[:]))
		if rv < 0xfd {
			return 0, errNonCanonicalVarInt(prefix[0], rv, 0xfd)
		}
	default:
		rv = uint64(prefix[0])
	}

	return rv, nil
}

// WriteVarInt writes a variable-length integer to w in minimal encoding.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		_, err := w.Write([]byte{byte(val)})
		return err
	}
	if val <= 0xffff {
		buf := make([]byte, 3)
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(val))
		_, err := w.Write(buf)
		return err
	}
	if val <= 0xffffffff {
		buf := make([]byte, 5)
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(val))
		_, err := w.Write(buf)
		return err
	}
	buf := make([]byte, 9)
	buf[0] = 0xff
	binary.LittleEndian.PutUint64(buf[1:], val)
	_, err := w.Write(buf)
	return err
}

// VarIntSerializeSize returns the number of bytes it would take to encode
// val as a variable-length integer.
func VarIntSerializeSize(val uint64) int {
	switch {
	case val < 0xfd:
		return 1
	case val <= 0xffff:
		return 3
	case val <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// ReadVarBytes reads a variable-length byte slice prefixed by a varint
// giving its length, enforcing maxAllowed to bound allocation from
// attacker-controlled input.
func ReadVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		return nil, fmt.Errorf("%s is larger than the max allowed size "+
			"[count %d, max %d]", fieldName, count, maxAllowed)
	}

	b := make([]byte, count)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes writes a variable-length byte slice to w, prefixed by a
// varint giving its length.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
