package widgets

import (
	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
)

// Panel draws a border around another widget with optional titles inset
// into the top and bottom edges.
//
//	╭─ title ────────╮
//	│my panel content│
//	╰───── subtitle ─╯
type Panel struct {
	content      rendering.Widget
	title        rendering.Widget
	bottomTitle  rendering.Widget
	expand       bool
	padding      Padding
	border       *rendering.BorderType
	titleAlign   rendering.TextAlign
	bottomAlign  rendering.TextAlign
	hasBottom    bool
	borderStyle  rendering.TextStyle
	titlePadding int
}

// PanelOption configures a Panel.
type PanelOption func(*Panel)

// WithTitle sets the top title.
func WithTitle(w rendering.Widget) PanelOption {
	return func(p *Panel) { p.title = w }
}

// WithBottomTitle sets the bottom title.
func WithBottomTitle(w rendering.Widget) PanelOption {
	return func(p *Panel) { p.bottomTitle = w }
}

// WithExpand makes the panel fill the available width instead of shrinking
// to its content.
func WithExpand(expand bool) PanelOption {
	return func(p *Panel) { p.expand = expand }
}

// WithPanelPadding adds padding between the content and the border.
func WithPanelPadding(pad Padding) PanelOption {
	return func(p *Panel) { p.padding = pad }
}

// WithBorder sets the border glyphs. The default is rounded.
func WithBorder(bt rendering.BorderType) PanelOption {
	return func(p *Panel) { p.border = &bt }
}

// WithoutBorder draws only the titles and content.
func WithoutBorder() PanelOption {
	return func(p *Panel) { p.border = nil }
}

// WithPanelTitleAlign aligns both titles unless the bottom one is set
// separately.
func WithPanelTitleAlign(a rendering.TextAlign) PanelOption {
	return func(p *Panel) { p.titleAlign = a }
}

// WithBottomTitleAlign aligns the bottom title.
func WithBottomTitleAlign(a rendering.TextAlign) PanelOption {
	return func(p *Panel) { p.bottomAlign, p.hasBottom = a, true }
}

// WithBorderStyle styles the border glyphs.
func WithBorderStyle(s rendering.TextStyle) PanelOption {
	return func(p *Panel) { p.borderStyle = s }
}

// WithPanelTitlePadding sets the gap between a title and the border.
func WithPanelTitlePadding(n int) PanelOption {
	return func(p *Panel) { p.titlePadding = n }
}

// TitleText builds a single-line title that is cut with an ellipsis when
// it does not fit.
func TitleText(text string) rendering.Widget {
	t, _ := NewText(text, rendering.DefaultStyle,
		WithWhitespace(rendering.WhitespaceNoWrap),
		WithOverflow(rendering.OverflowEllipses))
	return t
}

// NewPanel wraps content in a panel.
func NewPanel(content rendering.Widget, opts ...PanelOption) (*Panel, error) {
	rounded := rendering.BorderRounded
	p := &Panel{
		content:      content,
		border:       &rounded,
		titleAlign:   rendering.TextAlignCenter,
		titlePadding: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.padding.Validate(); err != nil {
		return nil, err
	}
	if p.titlePadding < 0 {
		return nil, errors.New(errors.ErrCodeInvalidPadding, "title padding cannot be negative").
			WithContext("padding", p.titlePadding)
	}
	if !p.hasBottom {
		p.bottomAlign = p.titleAlign
	}
	p.content = WithPadding(p.content, p.padding, true)
	return p, nil
}

func (p *Panel) borderWidth() int {
	if p.border == nil {
		return 0
	}
	return 2
}

func (p *Panel) contentWidth(width int) int {
	return max(width-p.borderWidth(), 0)
}

func (p *Panel) Measure(ctx rendering.RenderContext, width int) rendering.WidthRange {
	bw := p.borderWidth()
	content := p.content.Measure(ctx, p.contentWidth(width)).Add(bw)
	if p.expand {
		content.Min = content.Max
	}
	ranges := []rendering.WidthRange{content}
	if p.title != nil {
		titleWidth := max(p.contentWidth(width)-2*p.titlePadding, 0)
		ranges = append(ranges, p.title.Measure(ctx, titleWidth).Add(bw+2*p.titlePadding))
	}
	return rendering.MaxWidthRange(ranges, 0)
}

func (p *Panel) Render(ctx rendering.RenderContext, width int) rendering.Lines {
	maxContent := p.contentWidth(width)
	contentWidth := maxContent
	if !p.expand {
		contentWidth = min(p.Measure(ctx, width).Max-p.borderWidth(), maxContent)
	}

	content := p.content.Render(ctx, maxContent)
	content = content.SetSize(contentWidth, len(content), rendering.VerticalAlignTop, rendering.TextAlignLeft)

	top := p.edge(ctx, p.title, p.titleAlign, true, contentWidth)
	bottom := p.edge(ctx, p.bottomTitle, p.bottomAlign, false, contentWidth)

	if p.border == nil {
		var out rendering.Lines
		if p.title != nil {
			out = append(out, top...)
		}
		out = append(out, content...)
		if p.bottomTitle != nil {
			out = append(out, bottom...)
		}
		return out
	}

	b := p.border.Body
	glyph := func(s string) rendering.Span { return rendering.MustWord(s, p.borderStyle) }
	blank := rendering.Space(1, rendering.DefaultStyle)
	wrap := func(l rendering.Line, left, right rendering.Span) rendering.Line {
		spans := make([]rendering.Span, 0, len(l.Spans)+2)
		spans = append(spans, left)
		spans = append(spans, l.Spans...)
		return rendering.NewLine(append(spans, right)...)
	}

	out := make(rendering.Lines, 0, len(top)+len(content)+len(bottom))
	for i, l := range top {
		if i < len(top)-1 {
			out = append(out, wrap(l, blank, blank))
		} else {
			out = append(out, wrap(l, glyph(b.ES), glyph(b.SW)))
		}
	}
	for _, l := range content {
		out = append(out, wrap(l, glyph(b.NS), glyph(b.NS)))
	}
	for i, l := range bottom {
		if i > 0 {
			out = append(out, wrap(l, blank, blank))
		} else {
			out = append(out, wrap(l, glyph(b.NE), glyph(b.NW)))
		}
	}
	return out
}

// edge renders the top or bottom border line with its title.
func (p *Panel) edge(ctx rendering.RenderContext, title rendering.Widget, align rendering.TextAlign, overflowTop bool, width int) rendering.Lines {
	char := " "
	if p.border != nil {
		char = p.border.Body.EW
	}
	hr, err := NewHorizontalRule(
		WithRuleTitle(title),
		WithRuleChar(char),
		WithRuleStyle(p.borderStyle),
		WithTitleAlign(align),
		WithTitlePadding(p.titlePadding),
		WithTitleOverflowTop(overflowTop),
	)
	if err != nil {
		return nil
	}
	return hr.Render(ctx, width)
}
