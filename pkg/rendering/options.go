package rendering

import (
	"fmt"
	"strings"
)

// Whitespace controls whitespace handling and wrapping, modeled on the CSS
// white-space property.
type Whitespace struct {
	Name string
	// CollapseNewlines replaces explicit line breaks with spaces.
	CollapseNewlines bool
	// CollapseSpaces replaces whitespace runs with one space.
	CollapseSpaces bool
	// Wrap allows breaking lines at whitespace to fit the width.
	Wrap bool
	// TrimEOL strips whitespace before a line break.
	TrimEOL bool
}

// Whitespace presets.
var (
	WhitespaceNormal  = Whitespace{Name: "normal", CollapseNewlines: true, CollapseSpaces: true, Wrap: true, TrimEOL: true}
	WhitespaceNoWrap  = Whitespace{Name: "nowrap", CollapseNewlines: true, CollapseSpaces: true, Wrap: false, TrimEOL: true}
	WhitespacePre     = Whitespace{Name: "pre"}
	WhitespacePreWrap = Whitespace{Name: "pre-wrap", Wrap: true, TrimEOL: true}
	WhitespacePreLine = Whitespace{Name: "pre-line", CollapseSpaces: true, Wrap: true, TrimEOL: true}
)

var whitespacePresets = []Whitespace{
	WhitespaceNormal, WhitespaceNoWrap, WhitespacePre, WhitespacePreWrap, WhitespacePreLine,
}

// ParseWhitespace looks up a preset by name ("normal", "pre-wrap", ...).
// Underscores are accepted in place of dashes.
func ParseWhitespace(name string) (Whitespace, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, ws := range whitespacePresets {
		if ws.Name == key {
			return ws, nil
		}
	}
	return Whitespace{}, fmt.Errorf("unknown whitespace mode %q", name)
}

func (w Whitespace) String() string {
	if w.Name != "" {
		return w.Name
	}
	return fmt.Sprintf("whitespace(%t,%t,%t,%t)", w.CollapseNewlines, w.CollapseSpaces, w.Wrap, w.TrimEOL)
}

// TextAlign is horizontal alignment.
type TextAlign uint8

const (
	// TextAlignNone adds no padding at all.
	TextAlignNone TextAlign = iota
	TextAlignLeft
	TextAlignRight
	TextAlignCenter
	TextAlignJustify
)

var textAlignNames = [...]string{"none", "left", "right", "center", "justify"}

func (a TextAlign) String() string {
	if int(a) < len(textAlignNames) {
		return textAlignNames[a]
	}
	return fmt.Sprintf("TextAlign(%d)", a)
}

// ParseTextAlign parses an alignment name.
func ParseTextAlign(name string) (TextAlign, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range textAlignNames {
		if n == key {
			return TextAlign(i), nil
		}
	}
	return TextAlignNone, fmt.Errorf("unknown text align %q", name)
}

// VerticalAlign positions content inside a taller box.
type VerticalAlign uint8

const (
	VerticalAlignTop VerticalAlign = iota
	VerticalAlignMiddle
	VerticalAlignBottom
)

var verticalAlignNames = [...]string{"top", "middle", "bottom"}

func (a VerticalAlign) String() string {
	if int(a) < len(verticalAlignNames) {
		return verticalAlignNames[a]
	}
	return fmt.Sprintf("VerticalAlign(%d)", a)
}

// ParseVerticalAlign parses a vertical alignment name.
func ParseVerticalAlign(name string) (VerticalAlign, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range verticalAlignNames {
		if n == key {
			return VerticalAlign(i), nil
		}
	}
	return VerticalAlignTop, fmt.Errorf("unknown vertical align %q", name)
}

// OverflowWrap decides what happens to a single word wider than the line.
type OverflowWrap uint8

const (
	// OverflowNormal leaves the word intact; the line overflows.
	OverflowNormal OverflowWrap = iota
	// OverflowBreakWord splits the word across lines.
	OverflowBreakWord
	// OverflowTruncate cuts the word at the line width.
	OverflowTruncate
	// OverflowEllipses cuts the word and ends it with "…".
	OverflowEllipses
)

var overflowNames = [...]string{"normal", "break-word", "truncate", "ellipses"}

func (o OverflowWrap) String() string {
	if int(o) < len(overflowNames) {
		return overflowNames[o]
	}
	return fmt.Sprintf("OverflowWrap(%d)", o)
}

// ParseOverflowWrap parses an overflow policy name.
func ParseOverflowWrap(name string) (OverflowWrap, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for i, n := range overflowNames {
		if n == key {
			return OverflowWrap(i), nil
		}
	}
	return OverflowNormal, fmt.Errorf("unknown overflow wrap %q", name)
}
