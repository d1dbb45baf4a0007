package models

import (
	"sort"

	"github.com/google/uuid"
)

// Style is a bit set of text styles.
type Style uint8

const (
	StyleBold Style = 1 << iota
	StyleItalic
	StyleSpoiler
	StyleStrikethrough
	StyleMonospace
)

// Styles lists every single-bit style, in wire order.
var Styles = []Style{StyleBold, StyleItalic, StyleSpoiler, StyleStrikethrough, StyleMonospace}

func (s Style) Has(o Style) bool { return s&o == o }

type Mention struct {
	Start  int
	Length int
	Aci    uuid.UUID
}

type StyleRange struct {
	Start  int
	Length int
	Style  Style
}

// BodyRanges annotates a message body with mentions and styles. Offsets are in
// UTF-16 code units.
type BodyRanges struct {
	Mentions []Mention
	Styles   []StyleRange
}

func (r BodyRanges) IsEmpty() bool {
	return len(r.Mentions) == 0 && len(r.Styles) == 0
}

// Normalize orders ranges by start offset, then length, so that equal range
// sets compare equal regardless of insertion order.
func (r *BodyRanges) Normalize() {
	sort.SliceStable(r.Mentions, func(i, j int) bool {
		a, b := r.Mentions[i], r.Mentions[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Length < b.Length
	})
	sort.SliceStable(r.Styles, func(i, j int) bool {
		a, b := r.Styles[i], r.Styles[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Length != b.Length {
			return a.Length < b.Length
		}
		return a.Style < b.Style
	})
}
