package testhelp

import (
	"fmt"

	"github.com/zeebo/mwc"

	"github.com/qrtrack/qrtrack"
	"github.com/qrtrack/qrtrack/rwutils"
)

var (
	attrRng = mwc.Rand()
	nameRng = mwc.Rand()
)

// Pinned is an item whose digest is chosen by the test, which makes home
// slots and collisions exact.
type Pinned struct {
	Name string
	Home uint64
}

func Pin(name string, home uint64) Pinned { return Pinned{Name: name, Home: home} }

func (p Pinned) Digest() uint64      { return p.Home }
func (p Pinned) Equal(q Pinned) bool { return p.Name == q.Name }
func (p Pinned) String() string      { return fmt.Sprintf("%s@%d", p.Name, p.Home) }

func (p *Pinned) AppendTo(w *rwutils.W) {
	w.Str(p.Name)
	w.Uint64(p.Home)
}

func (p *Pinned) ReadFrom(r *rwutils.R) {
	p.Name = r.Str()
	p.Home = r.Uint64()
}

func Name(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	v := make([]byte, n)
	for i := range v {
		v[i] = alphabet[nameRng.Uint64n(uint64(len(alphabet)))]
	}
	return string(v)
}

// Attribute returns a random attribute. Roughly one in eight has no trait
// type.
func Attribute() qrtrack.Attribute {
	if attrRng.Uint64n(8) == 0 {
		return qrtrack.NewValue(Name(12))
	}
	return qrtrack.NewAttribute(Name(int(4+attrRng.Uint64n(20))), Name(int(1+attrRng.Uint64n(8))))
}

// Attributes returns n distinct attributes.
func Attributes(n int) []qrtrack.Attribute {
	seen := make(map[qrtrack.Attribute]struct{}, n)
	out := make([]qrtrack.Attribute, 0, n)
	for len(out) < n {
		a := Attribute()
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
