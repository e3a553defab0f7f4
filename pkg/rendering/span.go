package rendering

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/odvcencio/textgrid/pkg/cellwidth"
	"github.com/odvcencio/textgrid/pkg/errors"
)

const (
	// NEL and LS always break a line, whatever the whitespace mode.
	NEL = "\u0085"
	LS  = "\u2028"
)

// Span is a run of text with a single style. Its text is never empty and is
// either entirely whitespace or contains no whitespace at all.
type Span struct {
	text  string
	style TextStyle
	width int
}

// Word validates text and returns a span for it.
func Word(text string, style TextStyle) (Span, error) {
	if text == "" {
		return Span{}, errors.New(errors.ErrCodeInvalidSpan, "span text cannot be empty")
	}
	if strings.ContainsAny(text, "\n\r") {
		return Span{}, errors.New(errors.ErrCodeInvalidSpan, "spans cannot contain line breaks").
			WithContext("text", text)
	}
	if strings.ContainsAny(text, "\x1b\u009b") {
		return Span{}, errors.New(errors.ErrCodeInvalidSpan, "spans cannot contain escape sequences").
			WithContext("text", text)
	}
	spaces := 0
	for _, r := range text {
		if isStrayControl(r) {
			return Span{}, errors.New(errors.ErrCodeInvalidSpan, "spans cannot contain control characters").
				WithContext("text", text)
		}
		if unicode.IsSpace(r) {
			spaces++
		}
	}
	if spaces != 0 && spaces != utf8.RuneCountInString(text) {
		return Span{}, errors.New(errors.ErrCodeInvalidSpan, "spans must contain either all whitespace or no whitespace").
			WithContext("text", text)
	}
	return newSpan(text, style), nil
}

// MustWord is like Word but panics on invalid text. It is meant for literals.
func MustWord(text string, style TextStyle) Span {
	s, err := Word(text, style)
	if err != nil {
		panic(err)
	}
	return s
}

// Space returns a whitespace span n cells wide. n below 1 is treated as 1.
func Space(n int, style TextStyle) Span {
	if n < 1 {
		n = 1
	}
	return Span{text: strings.Repeat(" ", n), style: style, width: n}
}

// isStrayControl reports control characters that have no place in a span.
// Tabs and NEL are spans of their own.
func isStrayControl(r rune) bool {
	return unicode.IsControl(r) && r != '\t' && r != '\u0085'
}

func newSpan(text string, style TextStyle) Span {
	return Span{text: text, style: style, width: cellwidth.String(text)}
}

// Text returns the span's text.
func (s Span) Text() string { return s.text }

// Style returns the span's style.
func (s Span) Style() TextStyle { return s.style }

// Width returns the number of terminal cells the span occupies.
func (s Span) Width() int { return s.width }

// IsWhitespace reports whether the span is a whitespace span.
func (s Span) IsWhitespace() bool {
	r, _ := utf8.DecodeRuneInString(s.text)
	return unicode.IsSpace(r)
}

// IsTab reports whether the span is a tab.
func (s Span) IsTab() bool {
	return strings.HasPrefix(s.text, "\t")
}

// IsHardBreak reports whether the span is a NEL or LS separator.
func (s Span) IsHardBreak() bool {
	return s.text == NEL || s.text == LS
}

// WithStyle returns the span with style combined over its own.
func (s Span) WithStyle(style TextStyle) Span {
	s.style = s.style.Combine(style)
	return s
}

// ReplaceStyle returns the span with its style replaced.
func (s Span) ReplaceStyle(style TextStyle) Span {
	s.style = style
	return s
}

// Take returns a span holding the longest prefix that fits in width cells.
// ok is false when not even one rune fits.
func (s Span) Take(width int) (Span, bool) {
	head, _ := cellwidth.Default.Take(s.text, width)
	if head == "" {
		return Span{}, false
	}
	return newSpan(head, s.style), true
}

// Chunks splits the span into consecutive pieces of at most width cells.
func (s Span) Chunks(width int) []Span {
	if width <= 0 {
		return nil
	}
	var out []Span
	rest := s.text
	for rest != "" {
		head, tail := cellwidth.Default.Take(rest, width)
		if head == "" {
			// a single rune wider than width; emit it alone
			_, size := utf8.DecodeRuneInString(rest)
			head, tail = rest[:size], rest[size:]
		}
		out = append(out, newSpan(head, s.style))
		rest = tail
	}
	return out
}
