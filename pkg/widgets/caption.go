package widgets

import "github.com/odvcencio/textgrid/pkg/rendering"

// Caption adds a top and/or bottom caption to a widget. Captions are
// rendered no wider than the content.
type Caption struct {
	content rendering.Widget
	top     rendering.Widget
	bottom  rendering.Widget
}

// NewCaption wraps content. Either caption may be nil.
func NewCaption(content, top, bottom rendering.Widget) *Caption {
	return &Caption{content: content, top: top, bottom: bottom}
}

// CaptionText builds a caption widget from plain text.
func CaptionText(text string, align rendering.TextAlign) rendering.Widget {
	t, _ := NewText(text, rendering.DefaultStyle, WithTextAlign(align))
	return t
}

func (c *Caption) Measure(ctx rendering.RenderContext, width int) rendering.WidthRange {
	return c.content.Measure(ctx, width)
}

func (c *Caption) Render(ctx rendering.RenderContext, width int) rendering.Lines {
	captionWidth := min(c.content.Measure(ctx, width).Max, width)
	var out rendering.Lines
	if c.top != nil {
		out = append(out, c.top.Render(ctx, captionWidth)...)
	}
	out = append(out, c.content.Render(ctx, width)...)
	if c.bottom != nil {
		out = append(out, c.bottom.Render(ctx, captionWidth)...)
	}
	return out
}
