package widgets

import (
	"strconv"

	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
)

// UnorderedList renders entries behind a bullet. Wrapped lines of an entry
// are indented to line up with its first line.
type UnorderedList struct {
	entries []rendering.Widget
	bullet  rendering.Line
	style   rendering.TextStyle
}

// NewUnorderedList builds a bulleted list. An empty bullet renders the
// entries with no marker at all.
func NewUnorderedList(entries []rendering.Widget, bullet string, style rendering.TextStyle) (*UnorderedList, error) {
	l := &UnorderedList{entries: entries, style: style}
	if bullet == "" {
		return l, nil
	}
	marker, err := listMarker(bullet, style)
	if err != nil {
		return nil, err
	}
	l.bullet = rendering.NewLine(
		rendering.Space(1, rendering.DefaultStyle),
		marker,
		rendering.Space(1, rendering.DefaultStyle),
	)
	return l, nil
}

func (l *UnorderedList) Measure(ctx rendering.RenderContext, width int) rendering.WidthRange {
	bw := l.bullet.Width()
	ranges := make([]rendering.WidthRange, len(l.entries))
	for i, e := range l.entries {
		ranges[i] = e.Measure(ctx, width-bw)
	}
	return rendering.MaxWidthRange(ranges, bw)
}

func (l *UnorderedList) Render(ctx rendering.RenderContext, width int) rendering.Lines {
	bw := l.bullet.Width()
	var continuation []rendering.Span
	if bw > 0 {
		continuation = []rendering.Span{rendering.Space(bw, l.style)}
	}
	return renderEntries(ctx, l.entries, max(width-bw, 0), func(int) []rendering.Span {
		return l.bullet.Spans
	}, func(int) []rendering.Span {
		return continuation
	})
}

// OrderedList numbers its entries from one. Numbers are right aligned so
// every entry starts in the same column.
type OrderedList struct {
	entries   []rendering.Widget
	separator rendering.Span
	hasSep    bool
	style     rendering.TextStyle
}

// NewOrderedList builds a numbered list; separator follows each number.
func NewOrderedList(entries []rendering.Widget, separator string, style rendering.TextStyle) (*OrderedList, error) {
	l := &OrderedList{entries: entries, style: style}
	if separator != "" {
		sep, err := listMarker(separator, style)
		if err != nil {
			return nil, err
		}
		l.separator, l.hasSep = sep, true
	}
	return l, nil
}

func (l *OrderedList) digits() int {
	return len(strconv.Itoa(max(len(l.entries), 1)))
}

func (l *OrderedList) markerWidth() int {
	w := l.digits() + 2
	if l.hasSep {
		w += l.separator.Width()
	}
	return w
}

func (l *OrderedList) Measure(ctx rendering.RenderContext, width int) rendering.WidthRange {
	mw := l.markerWidth()
	ranges := make([]rendering.WidthRange, len(l.entries))
	for i, e := range l.entries {
		ranges[i] = e.Measure(ctx, width-mw)
	}
	return rendering.MaxWidthRange(ranges, mw)
}

func (l *OrderedList) Render(ctx rendering.RenderContext, width int) rendering.Lines {
	mw := l.markerWidth()
	digits := l.digits()
	continuation := []rendering.Span{rendering.Space(mw, rendering.DefaultStyle)}
	return renderEntries(ctx, l.entries, max(width-mw, 0), func(i int) []rendering.Span {
		num := strconv.Itoa(i + 1)
		spans := []rendering.Span{rendering.Space(1+digits-len(num), rendering.DefaultStyle)}
		spans = append(spans, rendering.MustWord(num, l.style))
		if l.hasSep {
			spans = append(spans, l.separator)
		}
		return append(spans, rendering.Space(1, rendering.DefaultStyle))
	}, func(int) []rendering.Span {
		return continuation
	})
}

func renderEntries(ctx rendering.RenderContext, entries []rendering.Widget, contentWidth int,
	first, rest func(i int) []rendering.Span) rendering.Lines {
	var out rendering.Lines
	for i, e := range entries {
		for j, line := range e.Render(ctx, contentWidth) {
			prefix := rest(i)
			if j == 0 {
				prefix = first(i)
			}
			spans := make([]rendering.Span, 0, len(prefix)+len(line.Spans))
			spans = append(spans, prefix...)
			spans = append(spans, line.Spans...)
			out = append(out, rendering.Line{Spans: spans, EndStyle: line.EndStyle})
		}
	}
	return out
}

func listMarker(text string, style rendering.TextStyle) (rendering.Span, error) {
	span, err := rendering.Word(text, style)
	if err != nil {
		return rendering.Span{}, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid list marker").
			WithContext("marker", text)
	}
	return span, nil
}
