package rendering

// AttrMask represents text attributes.
type AttrMask uint16

// Attribute flags
const (
	AttrBold AttrMask = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrStrikethrough
)

// TextStyle holds the visual attributes of a span. Each attribute is
// optional: an attribute that was never set inherits from whatever style it
// is combined with. The zero value sets nothing.
type TextStyle struct {
	FG        Color
	BG        Color
	Hyperlink string

	attrs AttrMask // attributes switched on
	set   AttrMask // attributes explicitly set, on or off
}

// DefaultStyle is the style that sets nothing.
var DefaultStyle = TextStyle{}

// WithFG returns a copy with foreground color set.
func (s TextStyle) WithFG(c Color) TextStyle {
	s.FG = c
	return s
}

// WithBG returns a copy with background color set.
func (s TextStyle) WithBG(c Color) TextStyle {
	s.BG = c
	return s
}

// WithHyperlink returns a copy linking to url.
func (s TextStyle) WithHyperlink(url string) TextStyle {
	s.Hyperlink = url
	return s
}

// WithAttr returns a copy with attr explicitly switched on or off.
func (s TextStyle) WithAttr(attr AttrMask, on bool) TextStyle {
	s.set |= attr
	if on {
		s.attrs |= attr
	} else {
		s.attrs &^= attr
	}
	return s
}

// Bold returns a copy with bold on.
func (s TextStyle) Bold() TextStyle { return s.WithAttr(AttrBold, true) }

// Dim returns a copy with dim on.
func (s TextStyle) Dim() TextStyle { return s.WithAttr(AttrDim, true) }

// Italic returns a copy with italic on.
func (s TextStyle) Italic() TextStyle { return s.WithAttr(AttrItalic, true) }

// Underline returns a copy with underline on.
func (s TextStyle) Underline() TextStyle { return s.WithAttr(AttrUnderline, true) }

// Reverse returns a copy with reverse video on.
func (s TextStyle) Reverse() TextStyle { return s.WithAttr(AttrReverse, true) }

// Strikethrough returns a copy with strikethrough on.
func (s TextStyle) Strikethrough() TextStyle { return s.WithAttr(AttrStrikethrough, true) }

// Has reports whether attr is switched on.
func (s TextStyle) Has(attr AttrMask) bool {
	return s.attrs&attr != 0
}

// Attributes returns the attributes that are switched on.
func (s TextStyle) Attributes() AttrMask {
	return s.attrs
}

// IsZero reports whether the style sets nothing.
func (s TextStyle) IsZero() bool {
	return s == TextStyle{}
}

// Combine returns s overlaid with other: every attribute other sets wins,
// everything else is kept from s.
func (s TextStyle) Combine(other TextStyle) TextStyle {
	if other.FG.IsSet() {
		s.FG = other.FG
	}
	if other.BG.IsSet() {
		s.BG = other.BG
	}
	if other.Hyperlink != "" {
		s.Hyperlink = other.Hyperlink
	}
	s.attrs = (s.attrs &^ other.set) | (other.attrs & other.set)
	s.set |= other.set
	return s
}

// FoldStyles combines styles from lowest to highest priority. The first
// argument has the highest priority, matching the cascade order.
func FoldStyles(styles ...TextStyle) TextStyle {
	var out TextStyle
	for i := len(styles) - 1; i >= 0; i-- {
		out = out.Combine(styles[i])
	}
	return out
}
