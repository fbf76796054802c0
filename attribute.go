package qrtrack

import (
	"fmt"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/unicode/norm"

	"github.com/qrtrack/qrtrack/rwutils"
	"github.com/qrtrack/qrtrack/varint"
)

// Attribute is a metadata trait attached to minted codes. The trait type is
// optional.
type Attribute struct {
	TraitType    string
	HasTraitType bool
	Value        string
}

// NewAttribute returns an attribute with a trait type. Both strings are
// normalized to NFC so that visually equal inputs compare and hash equally.
func NewAttribute(traitType, value string) Attribute {
	return Attribute{
		TraitType:    norm.NFC.String(traitType),
		HasTraitType: true,
		Value:        norm.NFC.String(value),
	}
}

// NewValue returns an attribute without a trait type.
func NewValue(value string) Attribute {
	return Attribute{Value: norm.NFC.String(value)}
}

func (a Attribute) String() string {
	if !a.HasTraitType {
		return fmt.Sprintf("(attr %q)", a.Value)
	}
	return fmt.Sprintf("(attr %q=%q)", a.TraitType, a.Value)
}

func (a Attribute) Equal(b Attribute) bool {
	if a.HasTraitType != b.HasTraitType || a.Value != b.Value {
		return false
	}
	return !a.HasTraitType || a.TraitType == b.TraitType
}

// Digest hashes the same bytes AppendTo writes, so it is stable across
// processes.
func (a Attribute) Digest() uint64 {
	var tmp [64]byte
	return xxh3.Hash(a.appendBytes(tmp[:0]))
}

func (a Attribute) appendBytes(buf []byte) []byte {
	if !a.HasTraitType {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		buf = varint.Append(buf, uint64(len(a.TraitType)))
		buf = append(buf, a.TraitType...)
	}
	buf = varint.Append(buf, uint64(len(a.Value)))
	return append(buf, a.Value...)
}

func (a *Attribute) AppendTo(w *rwutils.W) {
	if !a.HasTraitType {
		w.Uint8(0)
	} else {
		w.Uint8(1)
		w.Str(a.TraitType)
	}
	w.Str(a.Value)
}

func (a *Attribute) ReadFrom(r *rwutils.R) {
	*a = Attribute{}
	switch tag := r.Uint8(); tag {
	case 0:
	case 1:
		a.HasTraitType = true
		a.TraitType = r.Str()
	default:
		r.Invalid("invalid attribute tag: %d", tag)
	}
	a.Value = r.Str()
}
