package widgets

import (
	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
)

// VerticalLayout stacks widgets top to bottom with blank lines between
// them. Every entry takes at least one line, even when it renders nothing.
type VerticalLayout struct {
	entries []layoutEntry
	spacing int
	align   rendering.TextAlign
	expand  bool
}

type layoutEntry struct {
	widget rendering.Widget
	style  rendering.TextStyle
	align  rendering.TextAlign
}

// LayoutOption configures a VerticalLayout.
type LayoutOption func(*VerticalLayout)

// WithSpacing sets the number of blank lines between entries.
func WithSpacing(n int) LayoutOption {
	return func(v *VerticalLayout) { v.spacing = n }
}

// WithLayoutAlign pads every entry to the full width using align.
func WithLayoutAlign(a rendering.TextAlign) LayoutOption {
	return func(v *VerticalLayout) { v.align = a }
}

// WithLayoutExpand renders entries at the full width instead of the widest
// entry's preferred width.
func WithLayoutExpand(expand bool) LayoutOption {
	return func(v *VerticalLayout) { v.expand = expand }
}

// NewVerticalLayout stacks widgets.
func NewVerticalLayout(widgets []rendering.Widget, opts ...LayoutOption) (*VerticalLayout, error) {
	v := &VerticalLayout{}
	for _, opt := range opts {
		opt(v)
	}
	if v.spacing < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout spacing cannot be negative").
			WithContext("spacing", v.spacing)
	}
	for _, w := range widgets {
		if w == nil {
			continue
		}
		v.entries = append(v.entries, layoutEntry{widget: w, align: v.align})
	}
	return v, nil
}

// Add appends a widget with its own style and alignment and returns v.
func (v *VerticalLayout) Add(w rendering.Widget, style rendering.TextStyle, align rendering.TextAlign) *VerticalLayout {
	v.entries = append(v.entries, layoutEntry{widget: w, style: style, align: align})
	return v
}

// Len returns the number of entries.
func (v *VerticalLayout) Len() int { return len(v.entries) }

func (v *VerticalLayout) Measure(ctx rendering.RenderContext, width int) rendering.WidthRange {
	ranges := make([]rendering.WidthRange, len(v.entries))
	for i, e := range v.entries {
		ranges[i] = e.widget.Measure(ctx, width)
	}
	return rendering.MaxWidthRange(ranges, 0)
}

func (v *VerticalLayout) Render(ctx rendering.RenderContext, width int) rendering.Lines {
	renderWidth := width
	aligned := false
	for _, e := range v.entries {
		aligned = aligned || e.align != rendering.TextAlignNone
	}
	if aligned && !v.expand {
		renderWidth = min(v.Measure(ctx, width).Max, width)
	}

	spacer := rendering.Line{}
	if v.align != rendering.TextAlignNone && renderWidth > 0 {
		spacer = rendering.NewLine(rendering.Space(renderWidth, rendering.DefaultStyle))
	}

	var out rendering.Lines
	for i, e := range v.entries {
		if i > 0 {
			for j := 0; j < v.spacing; j++ {
				out = append(out, spacer)
			}
		}
		rendered := e.widget.Render(ctx, renderWidth).WithStyle(e.style)
		if e.align != rendering.TextAlignNone {
			rendered = rendered.SetSize(renderWidth, len(rendered), rendering.VerticalAlignTop, e.align)
		}
		if len(rendered) == 0 {
			rendered = rendering.Lines{{}}
		}
		out = append(out, rendered...)
	}
	return out
}
