package widgets

import (
	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
)

// Padding is the number of blank cells around each side of a widget.
type Padding struct {
	Top    int `yaml:"top" json:"top"`
	Right  int `yaml:"right" json:"right"`
	Bottom int `yaml:"bottom" json:"bottom"`
	Left   int `yaml:"left" json:"left"`
}

// NewPadding validates and returns a padding.
func NewPadding(top, right, bottom, left int) (Padding, error) {
	p := Padding{Top: top, Right: right, Bottom: bottom, Left: left}
	return p, p.Validate()
}

// UniformPadding returns the same padding on every side.
func UniformPadding(all int) Padding {
	return Padding{Top: all, Right: all, Bottom: all, Left: all}
}

// HorizontalPadding pads left and right only.
func HorizontalPadding(n int) Padding {
	return Padding{Right: n, Left: n}
}

// Validate rejects negative sides.
func (p Padding) Validate() error {
	for _, side := range []struct {
		name string
		v    int
	}{{"top", p.Top}, {"right", p.Right}, {"bottom", p.Bottom}, {"left", p.Left}} {
		if side.v < 0 {
			return errors.Newf(errors.ErrCodeInvalidPadding, "invalid negative %s padding", side.name).
				WithContext(side.name, side.v)
		}
	}
	return nil
}

// IsEmpty reports whether every side is zero.
func (p Padding) IsEmpty() bool {
	return p == Padding{}
}

// Width is left plus right.
func (p Padding) Width() int {
	return p.Left + p.Right
}

// Add sums two paddings side by side.
func (p Padding) Add(o Padding) Padding {
	return Padding{
		Top:    p.Top + o.Top,
		Right:  p.Right + o.Right,
		Bottom: p.Bottom + o.Bottom,
		Left:   p.Left + o.Left,
	}
}

// Padded surrounds a widget with blank cells.
type Padded struct {
	content       rendering.Widget
	padding       Padding
	padEmptyLines bool
}

// WithPadding wraps w in padding. Padding an already padded widget merges
// the two paddings instead of nesting. When padEmptyLines is false, lines
// with no content get no horizontal padding.
func WithPadding(w rendering.Widget, p Padding, padEmptyLines bool) rendering.Widget {
	if p.IsEmpty() {
		return w
	}
	if inner, ok := w.(*Padded); ok {
		return &Padded{content: inner.content, padding: inner.padding.Add(p), padEmptyLines: padEmptyLines}
	}
	return &Padded{content: w, padding: p, padEmptyLines: padEmptyLines}
}

// Content returns the wrapped widget.
func (p *Padded) Content() rendering.Widget { return p.content }

// Padding returns the merged padding.
func (p *Padded) Padding() Padding { return p.padding }

func (p *Padded) Measure(ctx rendering.RenderContext, width int) rendering.WidthRange {
	pw := p.padding.Width()
	return p.content.Measure(ctx, width-pw).Add(pw)
}

func (p *Padded) Render(ctx rendering.RenderContext, width int) rendering.Lines {
	lines := p.content.Render(ctx, max(width-p.padding.Width(), 0))

	out := make(rendering.Lines, 0, p.padding.Top+len(lines)+p.padding.Bottom)
	for i := 0; i < p.padding.Top; i++ {
		out = append(out, rendering.Line{})
	}
	for _, line := range lines {
		if !p.padEmptyLines && len(line.Spans) == 0 {
			out = append(out, rendering.Line{})
			continue
		}
		spans := make([]rendering.Span, 0, len(line.Spans)+2)
		if p.padding.Left > 0 {
			spans = append(spans, rendering.Space(p.padding.Left, rendering.DefaultStyle))
		}
		spans = append(spans, line.Spans...)
		if p.padding.Right > 0 {
			spans = append(spans, rendering.Space(p.padding.Right, rendering.DefaultStyle))
		}
		out = append(out, rendering.NewLine(spans...))
	}
	for i := 0; i < p.padding.Bottom; i++ {
		out = append(out, rendering.Line{})
	}
	return out
}
