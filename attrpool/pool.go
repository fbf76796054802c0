// Package attrpool builds the candidate attributes used to populate an
// empty attribute table.
package attrpool

import (
	"fmt"

	"github.com/zeebo/mwc"

	"github.com/qrtrack/qrtrack"
)

var catalog = []struct {
	trait  string
	values []string
}{
	{"Flying Fish Tea Discount", []string{"5%", "10%", "15%", "20%", "25%", "30%", "40%", "50%"}},
	{"Background", []string{"Ivory", "Slate", "Teal", "Coral", "Saffron", "Midnight", "Mint", "Rose"}},
	{"Frame", []string{"None", "Rounded", "Square", "Dotted", "Double", "Gold", "Silver", "Bronze"}},
	{"Pattern", []string{"Plain", "Waves", "Grid", "Scales", "Rings", "Stripes"}},
	{"Origin", []string{"Alishan", "Darjeeling", "Uji", "Yunnan", "Assam", "Nilgiri", "Ceylon", "Fujian"}},
	{"Steep Time", []string{"1 min", "2 min", "3 min", "4 min", "5 min"}},
	{"Season", []string{"First Flush", "Second Flush", "Monsoon", "Autumnal", "Winter"}},
}

var flags = []string{"Limited", "Founders", "Staff Pick", "Returning Guest"}

// Catalog returns every attribute the generator draws from, before
// shuffling and padding.
func Catalog() []qrtrack.Attribute {
	var out []qrtrack.Attribute
	for _, entry := range catalog {
		for _, value := range entry.values {
			out = append(out, qrtrack.NewAttribute(entry.trait, value))
		}
	}
	for _, flag := range flags {
		out = append(out, qrtrack.NewValue(flag))
	}
	return out
}

// Generate returns n distinct attributes. The marker always comes first,
// the catalog follows in an order fixed by seed, and numbered editions pad
// the pool when n exceeds the catalog.
func Generate(n int, seed uint64) []qrtrack.Attribute {
	if n <= 0 {
		return nil
	}

	all := Catalog()
	rest := make([]qrtrack.Attribute, 0, len(all))
	for _, a := range all {
		if !a.Equal(qrtrack.Marker) {
			rest = append(rest, a)
		}
	}

	rng := mwc.New(seed, seed^0x9e3779b97f4a7c15)
	for i := len(rest) - 1; i > 0; i-- {
		j := int(rng.Uint64n(uint64(i + 1)))
		rest[i], rest[j] = rest[j], rest[i]
	}

	out := make([]qrtrack.Attribute, 0, n)
	out = append(out, qrtrack.Marker)
	for _, a := range rest {
		if len(out) == n {
			return out
		}
		out = append(out, a)
	}
	for i := 1; len(out) < n; i++ {
		out = append(out, qrtrack.NewAttribute("Edition", fmt.Sprintf("#%04d", i)))
	}
	return out
}
