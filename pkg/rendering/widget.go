// Package rendering holds the styled-text model shared by every widget:
// spans, lines, width ranges, alignment options and border glyph sets.
package rendering

// DefaultTabWidth is used when a RenderContext leaves TabWidth unset.
const DefaultTabWidth = 8

// RenderContext carries the settings a widget needs from its caller. It is
// passed explicitly on every call; nothing is read from global state.
type RenderContext struct {
	TabWidth int
}

// DefaultContext returns a context with the default tab width.
func DefaultContext() RenderContext {
	return RenderContext{TabWidth: DefaultTabWidth}
}

// Widget is anything that can be measured and rendered at a width.
// Implementations must be safe for concurrent use.
type Widget interface {
	Measure(ctx RenderContext, width int) WidthRange
	Render(ctx RenderContext, width int) Lines
}

// Aligner is implemented by widgets whose alignment can be overridden by a
// container, such as a table cell.
type Aligner interface {
	WithAlign(align TextAlign, overflow *OverflowWrap) Widget
}

// WithAlign applies align to w when w supports it and returns w unchanged
// otherwise.
func WithAlign(w Widget, align TextAlign, overflow *OverflowWrap) Widget {
	if a, ok := w.(Aligner); ok {
		return a.WithAlign(align, overflow)
	}
	return w
}
