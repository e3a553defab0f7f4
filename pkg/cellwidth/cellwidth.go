// Package cellwidth reports how many terminal cells a string occupies.
//
// Combining marks and zero-width joiners count as 0, East Asian wide and
// fullwidth characters count as 2, everything else as 1.
package cellwidth

import (
	"github.com/mattn/go-runewidth"
)

// Oracle measures display width under a fixed ambiguous-width policy.
// The zero value is not usable; use Default or New.
type Oracle struct {
	cond *runewidth.Condition
}

// New returns an oracle. When ambiguousWide is set, East Asian ambiguous
// characters are counted as two cells, which matches CJK locales.
func New(ambiguousWide bool) *Oracle {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = ambiguousWide
	return &Oracle{cond: cond}
}

// Default is the narrow-ambiguous oracle used when nothing else is configured.
var Default = New(false)

// String returns the cell width of s.
func (o *Oracle) String(s string) int {
	return o.cond.StringWidth(s)
}

// Rune returns the cell width of r.
func (o *Oracle) Rune(r rune) int {
	return o.cond.RuneWidth(r)
}

// Truncate cuts s so that it occupies at most width cells, appending tail
// when anything was removed. The tail counts toward width.
func (o *Oracle) Truncate(s string, width int, tail string) string {
	if width <= 0 {
		return ""
	}
	return o.cond.Truncate(s, width, tail)
}

// Take splits s at the last rune boundary whose prefix fits in width cells.
// A rune wider than width on its own is never returned in head.
func (o *Oracle) Take(s string, width int) (head, rest string) {
	w := 0
	for i, r := range s {
		rw := o.cond.RuneWidth(r)
		if w+rw > width {
			return s[:i], s[i:]
		}
		w += rw
	}
	return s, ""
}

// String returns the cell width of s using the Default oracle.
func String(s string) int {
	return Default.String(s)
}

// Rune returns the cell width of r using the Default oracle.
func Rune(r rune) int {
	return Default.Rune(r)
}
