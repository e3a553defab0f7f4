package widgets

import (
	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
)

// Text is a paragraph widget. It wraps and aligns its lines to the width it
// is rendered at. Text values are immutable and safe for concurrent use.
type Text struct {
	lines      rendering.Lines
	whitespace rendering.Whitespace
	align      rendering.TextAlign
	overflow   rendering.OverflowWrap

	width       int
	hasWidth    bool
	tabWidth    int
	hasTabWidth bool
}

// TextOption configures a Text.
type TextOption func(*Text)

// WithWhitespace sets the whitespace mode. The default is pre.
func WithWhitespace(ws rendering.Whitespace) TextOption {
	return func(t *Text) { t.whitespace = ws }
}

// WithTextAlign sets horizontal alignment. The default adds no padding.
func WithTextAlign(a rendering.TextAlign) TextOption {
	return func(t *Text) { t.align = a }
}

// WithOverflow sets the policy for words wider than the line.
func WithOverflow(o rendering.OverflowWrap) TextOption {
	return func(t *Text) { t.overflow = o }
}

// WithFixedWidth makes the text wrap at w regardless of the width it is
// rendered at.
func WithFixedWidth(w int) TextOption {
	return func(t *Text) { t.width, t.hasWidth = w, true }
}

// WithTabWidth overrides the context tab width.
func WithTabWidth(n int) TextOption {
	return func(t *Text) { t.tabWidth, t.hasTabWidth = n, true }
}

// NewText parses text, decoding any ANSI styling over style.
func NewText(text string, style rendering.TextStyle, opts ...TextOption) (*Text, error) {
	return NewTextLines(rendering.ParseText(text, style), opts...)
}

// NewTextLines builds a Text from already parsed lines.
func NewTextLines(lines rendering.Lines, opts ...TextOption) (*Text, error) {
	t := &Text{
		lines:      lines,
		whitespace: rendering.WhitespacePre,
		align:      rendering.TextAlignNone,
		overflow:   rendering.OverflowNormal,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.hasWidth && t.width < 0 {
		return nil, errors.New(errors.ErrCodeInvalidWidth, "text width cannot be negative").
			WithContext("width", t.width)
	}
	if t.hasTabWidth && t.tabWidth < 0 {
		return nil, errors.New(errors.ErrCodeInvalidWidth, "tab width cannot be negative").
			WithContext("tab_width", t.tabWidth)
	}
	return t, nil
}

// PlainText builds unstyled text with default options. It cannot fail.
func PlainText(text string) *Text {
	t, _ := NewText(text, rendering.DefaultStyle)
	return t
}

// WithAlign returns a copy with a different alignment, and overflow policy
// when overflow is non-nil.
func (t *Text) WithAlign(align rendering.TextAlign, overflow *rendering.OverflowWrap) rendering.Widget {
	if align == t.align && (overflow == nil || *overflow == t.overflow) {
		return t
	}
	c := *t
	c.align = align
	if overflow != nil {
		c.overflow = *overflow
	}
	return &c
}

// Lines returns the unwrapped source lines.
func (t *Text) Lines() rendering.Lines {
	return t.lines
}

// Measure reports the widest word as min and the widest unwrapped line as
// max, ignoring alignment padding.
func (t *Text) Measure(ctx rendering.RenderContext, width int) rendering.WidthRange {
	lines := t.wrap(t.wrapWidth(width), t.tabs(ctx), rendering.TextAlignNone, rendering.OverflowNormal)
	var r rendering.WidthRange
	for _, l := range lines {
		for _, s := range l.Spans {
			r.Min = max(r.Min, s.Width())
		}
		r.Max = max(r.Max, l.Width())
	}
	return r
}

// Render wraps the text to width.
func (t *Text) Render(ctx rendering.RenderContext, width int) rendering.Lines {
	w := t.wrapWidth(width)
	if w <= 0 {
		return nil
	}
	return t.wrap(w, t.tabs(ctx), t.align, t.overflow)
}

func (t *Text) wrapWidth(width int) int {
	if t.hasWidth {
		return t.width
	}
	return width
}

func (t *Text) tabs(ctx rendering.RenderContext) int {
	if t.hasTabWidth {
		return t.tabWidth
	}
	return ctx.TabWidth
}

func (t *Text) wrap(wrapWidth, tabWidth int, align rendering.TextAlign, overflow rendering.OverflowWrap) rendering.Lines {
	if wrapWidth <= 0 && overflow != rendering.OverflowNormal {
		return nil
	}

	ws := t.whitespace
	trim := ws.TrimEOL || align == rendering.TextAlignJustify

	var (
		out      rendering.Lines
		line     []rendering.Span
		endStyle rendering.TextStyle
		width    int
		lastWS   = true
	)

	breakLine := func() {
		if trim {
			if last := lastNonWhitespace(line); last >= 0 && last < len(line)-1 {
				line = line[:last+1]
				width = spansWidth(line)
			}
		}
		if width < wrapWidth {
			line = alignLine(line, wrapWidth-width, align, endStyle)
		}
		style := endStyle
		if n := len(line); n > 0 {
			style = line[n-1].Style()
		}
		out = append(out, rendering.Line{Spans: line, EndStyle: style})
		line = nil
		width = 0
		lastWS = true
	}

	for _, src := range t.lines {
		lastNW := -1
		if trim {
			lastNW = lastNonWhitespace(src.Spans)
		}
		endStyle = src.EndStyle

		for i, piece := range src.Spans {
			if piece.IsHardBreak() {
				breakLine()
				continue
			}

			// trailing whitespace; keep scanning for a later hard break
			if lastNW >= 0 && i > lastNW {
				continue
			}

			// the previous source line was joined onto this one
			if i == 0 && !lastWS {
				style := rendering.DefaultStyle
				if prev := line[len(line)-1].Style(); prev == piece.Style() {
					style = prev
				}
				line = append(line, rendering.Space(1, style))
				lastWS = true
				width++
			}

			isWS := piece.IsWhitespace()
			if isWS && lastWS && ws.CollapseSpaces {
				continue
			}

			span := piece
			switch {
			case isWS && ws.CollapseSpaces:
				span = rendering.Space(1, piece.Style())
			case piece.IsTab():
				if tabWidth <= 0 {
					continue
				}
				span = rendering.Space(tabWidth-width%tabWidth, piece.Style())
			}

			if ws.Wrap && width > 0 && width+span.Width() > wrapWidth {
				breakLine()
				if isWS {
					continue
				}
			}

			if span.Width() > wrapWidth && overflow != rendering.OverflowNormal {
				var ok bool
				span, ok = t.overflowSpan(span, isWS, wrapWidth, overflow, func(full rendering.Span) {
					if width > 0 {
						breakLine()
					}
					line = []rendering.Span{full}
					width = full.Width()
					breakLine()
				})
				if !ok {
					continue
				}
			}

			width += span.Width()
			line = append(line, span)
			lastWS = isWS
		}

		if !ws.CollapseNewlines {
			breakLine()
		}
	}

	if len(line) > 0 {
		breakLine()
	}
	return out
}

// overflowSpan applies the overflow policy to a span wider than wrapWidth.
// Whole lines produced by breaking a word are passed to emit. ok is false
// when nothing of the span is left for the current line.
func (t *Text) overflowSpan(span rendering.Span, isWS bool, wrapWidth int, overflow rendering.OverflowWrap, emit func(rendering.Span)) (rendering.Span, bool) {
	if isWS {
		return rendering.Space(wrapWidth, span.Style()), true
	}
	switch overflow {
	case rendering.OverflowTruncate:
		return span.Take(wrapWidth)
	case rendering.OverflowEllipses:
		text := "…"
		if head, ok := span.Take(wrapWidth - 1); ok {
			text = head.Text() + text
		}
		s, err := rendering.Word(text, span.Style())
		return s, err == nil
	case rendering.OverflowBreakWord:
		chunks := span.Chunks(wrapWidth)
		for _, c := range chunks[:len(chunks)-1] {
			emit(c)
		}
		return chunks[len(chunks)-1], true
	}
	return span, true
}

func lastNonWhitespace(spans []rendering.Span) int {
	for i := len(spans) - 1; i >= 0; i-- {
		if !spans[i].IsWhitespace() {
			return i
		}
	}
	return -1
}

func spansWidth(spans []rendering.Span) int {
	w := 0
	for _, s := range spans {
		w += s.Width()
	}
	return w
}

func alignLine(line []rendering.Span, extra int, align rendering.TextAlign, endStyle rendering.TextStyle) []rendering.Span {
	firstStyle, lastStyle := endStyle, endStyle
	if n := len(line); n > 0 {
		firstStyle, lastStyle = line[0].Style(), line[n-1].Style()
	}

	switch align {
	case rendering.TextAlignLeft:
		return append(line, rendering.Space(extra, lastStyle))
	case rendering.TextAlignRight:
		return prepend(rendering.Space(extra, firstStyle), line)
	case rendering.TextAlignCenter:
		return centerLine(line, extra, firstStyle, lastStyle)
	case rendering.TextAlignJustify:
		return justifyLine(line, extra, firstStyle, lastStyle)
	}
	return line
}

// centerLine splits extra around the line; an odd cell goes on the left.
func centerLine(line []rendering.Span, extra int, firstStyle, lastStyle rendering.TextStyle) []rendering.Span {
	half := extra / 2
	if half > 0 {
		line = append(line, rendering.Space(half, lastStyle))
	}
	if left := half + extra%2; left > 0 {
		line = prepend(rendering.Space(left, firstStyle), line)
	}
	return line
}

// justifyLine widens the whitespace between words so the line fills extra
// more cells. Earlier gaps take the remainder first. Whitespace before the
// first word or after the last is left alone.
func justifyLine(line []rendering.Span, extra int, firstStyle, lastStyle rendering.TextStyle) []rendering.Span {
	first, last := -1, -1
	for i, s := range line {
		if !s.IsWhitespace() {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	gaps := 0
	for i := first + 1; i < last; i++ {
		if line[i].IsWhitespace() {
			gaps++
		}
	}
	if gaps == 0 {
		return centerLine(line, extra, firstStyle, lastStyle)
	}

	size := extra / gaps
	remainder := extra % gaps
	out := make([]rendering.Span, 0, len(line)+gaps)
	for i, s := range line {
		out = append(out, s)
		if i <= first || i >= last || !s.IsWhitespace() {
			continue
		}
		n := size
		if remainder > 0 {
			n++
			remainder--
		}
		if n > 0 {
			out = append(out, rendering.Space(n, s.Style()))
		}
	}
	return out
}

func prepend(s rendering.Span, line []rendering.Span) []rendering.Span {
	out := make([]rendering.Span, 0, len(line)+1)
	out = append(out, s)
	return append(out, line...)
}
