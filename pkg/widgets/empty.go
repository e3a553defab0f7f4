package widgets

import "github.com/odvcencio/textgrid/pkg/rendering"

// Empty is a widget with no width, no height and no content. It is used as
// a placeholder in layouts.
var Empty rendering.Widget = emptyWidget{}

type emptyWidget struct{}

func (emptyWidget) Measure(rendering.RenderContext, int) rendering.WidthRange {
	return rendering.WidthRange{}
}

func (emptyWidget) Render(rendering.RenderContext, int) rendering.Lines {
	return nil
}

// IsEmpty reports whether w is the Empty placeholder.
func IsEmpty(w rendering.Widget) bool {
	_, ok := w.(emptyWidget)
	return ok
}
