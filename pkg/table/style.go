package table

import (
	"github.com/odvcencio/textgrid/pkg/rendering"
	"github.com/odvcencio/textgrid/pkg/widgets"
)

// CellStyle holds the optional per-cell attributes that cascade from the
// table down to a single cell. A nil field means "not set at this level".
type CellStyle struct {
	borders       *Borders
	padding       *widgets.Padding
	whitespace    *rendering.Whitespace
	align         *rendering.TextAlign
	verticalAlign *rendering.VerticalAlign
	overflow      *rendering.OverflowWrap
	style         *rendering.TextStyle
}

func ptr[T any](v T) *T { return &v }

// SetBorders sets which edges draw lines.
func (s *CellStyle) SetBorders(b Borders) { s.borders = ptr(b) }

// SetPadding sets the padding around cell content.
func (s *CellStyle) SetPadding(p widgets.Padding) { s.padding = ptr(p) }

// SetWhitespace sets the whitespace mode for text content.
func (s *CellStyle) SetWhitespace(ws rendering.Whitespace) { s.whitespace = ptr(ws) }

// SetAlign sets horizontal alignment.
func (s *CellStyle) SetAlign(a rendering.TextAlign) { s.align = ptr(a) }

// SetVerticalAlign sets vertical alignment.
func (s *CellStyle) SetVerticalAlign(a rendering.VerticalAlign) { s.verticalAlign = ptr(a) }

// SetOverflow sets the overflow policy for text content.
func (s *CellStyle) SetOverflow(o rendering.OverflowWrap) { s.overflow = ptr(o) }

// SetStyle sets the text style. Unlike the other attributes, styles from
// every level are merged.
func (s *CellStyle) SetStyle(ts rendering.TextStyle) { s.style = ptr(ts) }

// Built-in cascade defaults.
var (
	defaultBorders    = BordersAll
	defaultPadding    = widgets.HorizontalPadding(1)
	defaultWhitespace = rendering.WhitespacePre
	defaultAlign      = rendering.TextAlignNone
	defaultVAlign     = rendering.VerticalAlignTop
	defaultOverflow   = rendering.OverflowEllipses
)

// firstPresent walks levels in priority order and returns the first
// attribute that is set, or def. Nil levels are skipped.
func firstPresent[T any](levels []*CellStyle, get func(*CellStyle) *T, def T) T {
	for _, l := range levels {
		if l == nil {
			continue
		}
		if v := get(l); v != nil {
			return *v
		}
	}
	return def
}

// resolvedStyle is the outcome of the cascade for one cell.
type resolvedStyle struct {
	borders       Borders
	padding       widgets.Padding
	whitespace    rendering.Whitespace
	align         rendering.TextAlign
	verticalAlign rendering.VerticalAlign
	overflow      rendering.OverflowWrap
	style         rendering.TextStyle
}

// resolve applies the cascade to levels, ordered from highest priority
// (the cell) to lowest (the table). styles are folded in the same order;
// nil entries are skipped.
func resolve(levels []*CellStyle, styles []*rendering.TextStyle) resolvedStyle {
	r := resolvedStyle{
		borders:       firstPresent(levels, func(s *CellStyle) *Borders { return s.borders }, defaultBorders),
		padding:       firstPresent(levels, func(s *CellStyle) *widgets.Padding { return s.padding }, defaultPadding),
		whitespace:    firstPresent(levels, func(s *CellStyle) *rendering.Whitespace { return s.whitespace }, defaultWhitespace),
		align:         firstPresent(levels, func(s *CellStyle) *rendering.TextAlign { return s.align }, defaultAlign),
		verticalAlign: firstPresent(levels, func(s *CellStyle) *rendering.VerticalAlign { return s.verticalAlign }, defaultVAlign),
		overflow:      firstPresent(levels, func(s *CellStyle) *rendering.OverflowWrap { return s.overflow }, defaultOverflow),
	}

	folded := make([]rendering.TextStyle, 0, len(styles))
	for _, s := range styles {
		if s != nil {
			folded = append(folded, *s)
		}
	}
	r.style = rendering.FoldStyles(folded...)
	return r
}
