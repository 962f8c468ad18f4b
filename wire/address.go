// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
)

// OpReturnVersion is the witness-program version reserved for unspendable
// null-data outputs (spec.md §6.3).
const OpReturnVersion = 31

// MinAddressHashSize and MaxAddressHashSize bound the witness-program hash
// carried by an Address, per spec.md §3.1.
const (
	MinAddressHashSize = 2
	MaxAddressHashSize = 40
)

// Address is the (version, hash) witness-program pair that gates an
// Output, per spec.md §3.1 and §6.3. Its human-readable bech32 form is
// produced by the addresses package; Address itself only carries the raw
// consensus-level bytes.
type Address struct {
	Version uint8
	Hash    []byte
}

// IsOpReturn reports whether the address is the unspendable null-data
// sentinel (version 31).
func (a *Address) IsOpReturn() bool {
	return a.Version == OpReturnVersion
}

// validate enforces the version range (0..=31) and hash length bounds.
func (a *Address) validate() error {
	if a.Version > 31 {
		return messageError("Address.validate", "address version exceeds 5 bits")
	}
	if len(a.Hash) < MinAddressHashSize || len(a.Hash) > MaxAddressHashSize {
		return messageError("Address.validate", "address hash length out of range")
	}
	return nil
}

// Encode writes the address in its canonical wire form:
// version:u8, hash_len:u8, hash bytes.
func (a *Address) Encode(w io.Writer) error {
	if err := a.validate(); err != nil {
		return err
	}
	if _, err := w.Write([]byte{a.Version, byte(len(a.Hash))}); err != nil {
		return err
	}
	_, err := w.Write(a.Hash)
	return err
}

// Decode reads an address from its canonical wire form.
func (a *Address) Decode(r io.Reader) error {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}
	hashLen := hdr[1]
	hash := make([]byte, hashLen)
	if _, err := io.ReadFull(r, hash); err != nil {
		return err
	}
	a.Version = hdr[0]
	a.Hash = hash
	return a.validate()
}
