// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// CovenantType is the tag byte identifying one of the twelve covenant
// kinds enumerated in spec.md §6.2. The per-type item-shape and
// phase-transition rules live in the covenant and names packages; this
// type only carries the wire-level tag.
type CovenantType uint8

// Covenant type tags (spec.md §6.2).
const (
	CovenantNone     CovenantType = 0
	CovenantClaim    CovenantType = 1
	CovenantOpen     CovenantType = 2
	CovenantBid      CovenantType = 3
	CovenantReveal   CovenantType = 4
	CovenantRedeem   CovenantType = 5
	CovenantRegister CovenantType = 6
	CovenantUpdate   CovenantType = 7
	CovenantRenew    CovenantType = 8
	CovenantTransfer CovenantType = 9
	CovenantFinalize CovenantType = 10
	CovenantRevoke   CovenantType = 11
)

var covenantTypeNames = map[CovenantType]string{
	CovenantNone:     "NONE",
	CovenantClaim:    "CLAIM",
	CovenantOpen:     "OPEN",
	CovenantBid:      "BID",
	CovenantReveal:   "REVEAL",
	CovenantRedeem:   "REDEEM",
	CovenantRegister: "REGISTER",
	CovenantUpdate:   "UPDATE",
	CovenantRenew:    "RENEW",
	CovenantTransfer: "TRANSFER",
	CovenantFinalize: "FINALIZE",
	CovenantRevoke:   "REVOKE",
}

// String returns the covenant type's mnemonic name, or "UNKNOWN" for an
// unrecognized tag.
func (t CovenantType) String() string {
	if s, ok := covenantTypeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// IsName reports whether the covenant type references a name (i.e. is
// anything but NONE), per spec.md invariant 3.
func (t CovenantType) IsName() bool {
	return t != CovenantNone
}

// MaxCovenantItems bounds the number of items a covenant may carry. The
// widest covenant (FINALIZE) has seven items; twelve leaves headroom
// without allowing unbounded allocation from a hostile peer.
const MaxCovenantItems = 12

// MaxCovenantItemSize bounds a single covenant item. The widest item is a
// NameState's opaque `data` blob, capped by spec.md §3.1 at 512 bytes; 1KiB
// covers that plus encoding overhead for any other item.
const MaxCovenantItemSize = 1024

// Covenant is the tagged, ordered list of byte-string items carried by an
// Output (spec.md §3.1).
type Covenant struct {
	Type  CovenantType
	Items [][]byte
}

// Item returns the item at position i, or nil if the covenant does not
// carry that many items.
func (c *Covenant) Item(i int) []byte {
	if i < 0 || i >= len(c.Items) {
		return nil
	}
	return c.Items[i]
}

// Encode writes the covenant in its canonical wire form: type:u8,
// item_count:varint, then each item as len:varint, bytes.
func (c *Covenant) Encode(w io.Writer) error {
	if len(c.Items) > MaxCovenantItems {
		return messageError("Covenant.Encode", "too many covenant items")
	}
	if _, err := w.Write([]byte{byte(c.Type)}); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(c.Items))); err != nil {
		return err
	}
	for _, item := range c.Items {
		if len(item) > MaxCovenantItemSize {
			return messageError("Covenant.Encode", "covenant item too large")
		}
		if err := WriteVarBytes(w, item); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a covenant from its canonical wire form.
func (c *Covenant) Decode(r io.Reader) error {
	var typeByte [1]byte
	if _, err := io.ReadFull(r, typeByte[:]); err != nil {
		return err
	}
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxCovenantItems {
		return messageError("Covenant.Decode", "too many covenant items")
	}

	items := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		item, err := ReadVarBytes(r, MaxCovenantItemSize, "covenant item")
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	c.Type = CovenantType(typeByte[0])
	c.Items = items
	return nil
}
