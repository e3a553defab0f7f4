package rendering

import "strings"

// Line is one visual row of spans. EndStyle styles any padding added after
// the last span.
type Line struct {
	Spans    []Span
	EndStyle TextStyle
}

// NewLine builds a line whose end style is the style of its last span.
func NewLine(spans ...Span) Line {
	l := Line{Spans: spans}
	if n := len(spans); n > 0 {
		l.EndStyle = spans[n-1].style
	}
	return l
}

// Width returns the sum of the span widths.
func (l Line) Width() int {
	w := 0
	for _, s := range l.Spans {
		w += s.width
	}
	return w
}

// String returns the plain text of the line.
func (l Line) String() string {
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.text)
	}
	return sb.String()
}

// Lines is an ordered list of lines with implicit breaks between them and
// no trailing break. Values are treated as immutable once built.
type Lines []Line

// Height returns the number of lines.
func (ls Lines) Height() int {
	return len(ls)
}

// Width returns the width of the widest line.
func (ls Lines) Width() int {
	w := 0
	for _, l := range ls {
		if lw := l.Width(); lw > w {
			w = lw
		}
	}
	return w
}

// Concat joins other after ls, merging the last line of ls with the first
// line of other so adjacent widgets render inline.
func (ls Lines) Concat(other Lines) Lines {
	if len(ls) == 0 {
		return other
	}
	if len(other) == 0 {
		return ls
	}
	out := make(Lines, 0, len(ls)+len(other)-1)
	out = append(out, ls[:len(ls)-1]...)
	last := ls[len(ls)-1]
	first := other[0]
	spans := make([]Span, 0, len(last.Spans)+len(first.Spans))
	spans = append(spans, last.Spans...)
	spans = append(spans, first.Spans...)
	out = append(out, Line{Spans: spans, EndStyle: first.EndStyle})
	return append(out, other[1:]...)
}

// WithStyle returns a copy with style combined over every span.
func (ls Lines) WithStyle(style TextStyle) Lines {
	if style.IsZero() {
		return ls
	}
	out := make(Lines, len(ls))
	for i, l := range ls {
		spans := make([]Span, len(l.Spans))
		for j, s := range l.Spans {
			spans[j] = s.WithStyle(style)
		}
		out[i] = Line{Spans: spans, EndStyle: l.EndStyle.Combine(style)}
	}
	return out
}

// ReplaceStyle returns a copy with every span's style replaced.
func (ls Lines) ReplaceStyle(style TextStyle) Lines {
	if style.IsZero() {
		return ls
	}
	out := make(Lines, len(ls))
	for i, l := range ls {
		spans := make([]Span, len(l.Spans))
		for j, s := range l.Spans {
			spans[j] = s.ReplaceStyle(style)
		}
		out[i] = Line{Spans: spans, EndStyle: style}
	}
	return out
}

// String returns the plain text, one line per row.
func (ls Lines) String() string {
	parts := make([]string, len(ls))
	for i, l := range ls {
		parts[i] = l.String()
	}
	return strings.Join(parts, "\n")
}

// SetSize pads or crops every line to exactly width cells and adds or
// removes lines so there are exactly height of them. Added rows are placed
// according to vAlign and horizontal padding according to hAlign.
func (ls Lines) SetSize(width, height int, vAlign VerticalAlign, hAlign TextAlign) Lines {
	if height <= 0 {
		return nil
	}
	if width <= 0 {
		return make(Lines, height)
	}

	heightToAdd := height - len(ls)
	if heightToAdd < 0 {
		heightToAdd = 0
	}
	emptyLine := NewLine(Space(width, DefaultStyle))

	var top int
	switch vAlign {
	case VerticalAlignMiddle:
		top = heightToAdd/2 + heightToAdd%2
	case VerticalAlignBottom:
		top = heightToAdd
	}

	out := make(Lines, 0, height)
	for i := 0; i < top; i++ {
		out = append(out, emptyLine)
	}

	for i, line := range ls {
		if i >= height {
			break
		}
		out = append(out, fitLine(line, width, hAlign))
	}

	if len(out) > height {
		return out[:height]
	}
	for len(out) < height {
		out = append(out, emptyLine)
	}
	return out
}

func fitLine(line Line, width int, hAlign TextAlign) Line {
	w := 0
	for j, span := range line.Spans {
		if w+span.width <= width {
			w += span.width
			continue
		}
		spans := make([]Span, 0, j+2)
		spans = append(spans, line.Spans[:j]...)
		if w < width {
			if head, ok := span.Take(width - w); ok {
				spans = append(spans, head)
				w += head.width
			}
			// a wide rune straddled the edge
			if w < width {
				spans = append(spans, Space(width-w, line.EndStyle))
			}
		}
		return NewLine(spans...)
	}

	remaining := width - w
	if remaining == 0 {
		return line
	}

	beginStyle := line.EndStyle
	if len(line.Spans) > 0 {
		beginStyle = line.Spans[0].style
	}

	spans := make([]Span, 0, len(line.Spans)+2)
	switch hAlign {
	case TextAlignCenter, TextAlignJustify:
		// the odd cell goes on the left, as in wrapped text
		spans = append(spans, Space(remaining/2+remaining%2, beginStyle))
		spans = append(spans, line.Spans...)
		if right := remaining / 2; right > 0 {
			spans = append(spans, Space(right, line.EndStyle))
		}
	case TextAlignLeft:
		spans = append(spans, line.Spans...)
		spans = append(spans, Space(remaining, line.EndStyle))
	case TextAlignRight:
		spans = append(spans, Space(remaining, beginStyle))
		spans = append(spans, line.Spans...)
	default:
		// padding is unstyled when there is no alignment
		spans = append(spans, line.Spans...)
		spans = append(spans, Space(remaining, DefaultStyle))
	}
	return NewLine(spans...)
}
