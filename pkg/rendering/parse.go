package rendering

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

type chunk struct {
	text  string
	style TextStyle
}

// ParseText splits text into lines of spans. Escape sequences are stripped:
// SGR codes and OSC 8 hyperlinks become span styles layered over
// defaultStyle, anything else is discarded. Tabs, NEL and LS each become a
// span of their own so the wrap engine can treat them specially.
func ParseText(text string, defaultStyle TextStyle) Lines {
	var words []chunk
	for _, c := range parseANSI(text, defaultStyle) {
		words = append(words, splitWords(c)...)
	}
	return splitLines(words)
}

// parseANSI splits text into chunks, starting a new chunk only when the
// style changes.
func parseANSI(text string, defaultStyle TextStyle) []chunk {
	var (
		parts []chunk
		buf   strings.Builder
		state byte
		style = defaultStyle
	)

	flush := func() {
		if buf.Len() > 0 {
			parts = append(parts, chunk{text: buf.String(), style: style})
			buf.Reset()
		}
	}

	remaining := text
	for len(remaining) > 0 {
		seq, _, n, newState := ansi.DecodeSequence(remaining, state, nil)
		state = newState
		if n <= 0 {
			buf.WriteString(remaining)
			break
		}
		remaining = remaining[n:]

		if !isEscape(seq) {
			buf.WriteString(seq)
			continue
		}
		next := updateStyle(style, defaultStyle, seq)
		if next != style {
			flush()
			style = next
		}
	}
	flush()
	return parts
}

func isEscape(seq string) bool {
	return strings.HasPrefix(seq, "\x1b") ||
		strings.HasPrefix(seq, "\u009b") ||
		strings.HasPrefix(seq, "\u009d")
}

// Chunk kinds used when splitting words.
const (
	kindCarriageReturn = iota
	kindBreak
	kindSpace
	kindWord
)

// splitWords splits a chunk into runs of whitespace and non-whitespace.
// Every newline, tab, NEL and LS is a run of its own.
func splitWords(c chunk) []chunk {
	c.text = stripControls(c.text)
	var out []chunk
	start := 0
	kind := -1
	for i, r := range c.text {
		var k int
		switch {
		case r == '\r':
			k = kindCarriageReturn
		case r == '\n' || r == '\t' || r == '\u0085' || r == '\u2028':
			k = kindBreak
		case unicode.IsSpace(r):
			k = kindSpace
		default:
			k = kindWord
		}
		if i == 0 {
			kind = k
		} else if k == kindBreak || k != kind {
			out = append(out, chunk{text: c.text[start:i], style: c.style})
			start = i
			kind = k
		}
	}
	if start < len(c.text) {
		out = append(out, chunk{text: c.text[start:], style: c.style})
	}
	return out
}

// stripControls drops control characters other than line breaks, tabs
// and NEL, which would otherwise move the cursor in the final output.
func stripControls(text string) string {
	return strings.Map(func(r rune) rune {
		if r != '\n' && r != '\r' && isStrayControl(r) {
			return -1
		}
		return r
	}, text)
}

// splitLines turns a flat list of words into lines, consuming newlines.
func splitLines(words []chunk) Lines {
	var (
		lines Lines
		line  []Span
	)
	for _, w := range words {
		switch {
		case strings.HasSuffix(w.text, "\n"):
			lines = append(lines, Line{Spans: line, EndStyle: w.style})
			line = nil
		case strings.Trim(w.text, "\r") == "":
			// carriage returns only ever precede a newline
		default:
			line = append(line, newSpan(w.text, w.style))
		}
	}
	if len(line) > 0 {
		lines = append(lines, NewLine(line...))
	}
	if n := len(words); n > 0 && strings.HasSuffix(words[n-1].text, "\n") {
		lines = append(lines, Line{EndStyle: words[n-1].style})
	}
	return lines
}

// updateStyle applies an escape sequence to existing. Reset codes restore
// the corresponding attribute from def.
func updateStyle(existing, def TextStyle, seq string) TextStyle {
	switch {
	case strings.HasPrefix(seq, "\x1b]") || strings.HasPrefix(seq, "\u009d"):
		return updateStyleWithOSC(existing, def, seq)
	case strings.HasPrefix(seq, "\x1b[") || strings.HasPrefix(seq, "\u009b"):
		return updateStyleWithCSI(existing, def, seq)
	default:
		return existing
	}
}

func updateStyleWithOSC(existing, def TextStyle, seq string) TextStyle {
	body := strings.TrimPrefix(strings.TrimPrefix(seq, "\x1b]"), "\u009d")
	body = strings.TrimSuffix(strings.TrimSuffix(body, "\x07"), "\x1b\\")
	if !strings.HasPrefix(body, "8;") {
		return existing
	}
	params := strings.Split(body, ";")
	link := params[len(params)-1]
	if strings.TrimSpace(link) == "" {
		existing.Hyperlink = def.Hyperlink
		return existing
	}
	existing.Hyperlink = link
	return existing
}

func updateStyleWithCSI(existing, def TextStyle, seq string) TextStyle {
	if !strings.HasSuffix(seq, "m") {
		return existing
	}
	body := strings.TrimPrefix(strings.TrimPrefix(seq, "\x1b["), "\u009b")
	body = strings.TrimSuffix(body, "m")

	var codes []int
	for _, part := range strings.Split(body, ";") {
		if part == "" {
			codes = append(codes, 0)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			// malformed SGR, ignore the whole sequence
			return existing
		}
		codes = append(codes, n)
	}

	s := existing
	reset := func(attr AttrMask) {
		s = s.WithAttr(attr, def.Has(attr))
	}

	for i := 0; i < len(codes); i++ {
		switch code := codes[i]; {
		case code == 0:
			link := s.Hyperlink
			s = def
			s.Hyperlink = link
		case code == 1:
			s = s.WithAttr(AttrBold, true)
		case code == 2:
			s = s.WithAttr(AttrDim, true)
		case code == 3:
			s = s.WithAttr(AttrItalic, true)
		case code == 4:
			s = s.WithAttr(AttrUnderline, true)
		case code == 5:
			s = s.WithAttr(AttrBlink, true)
		case code == 7:
			s = s.WithAttr(AttrReverse, true)
		case code == 9:
			s = s.WithAttr(AttrStrikethrough, true)
		case code == 22:
			reset(AttrBold)
			reset(AttrDim)
		case code == 23:
			reset(AttrItalic)
		case code == 24:
			reset(AttrUnderline)
		case code == 25:
			reset(AttrBlink)
		case code == 27:
			reset(AttrReverse)
		case code == 29:
			reset(AttrStrikethrough)
		case code >= 30 && code <= 37:
			s.FG = Color{Mode: ColorMode16, Value: uint32(code - 30)}
		case code >= 90 && code <= 97:
			s.FG = Color{Mode: ColorMode16, Value: uint32(code - 90 + 8)}
		case code >= 40 && code <= 47:
			s.BG = Color{Mode: ColorMode16, Value: uint32(code - 40)}
		case code >= 100 && code <= 107:
			s.BG = Color{Mode: ColorMode16, Value: uint32(code - 100 + 8)}
		case code == 39:
			s.FG = def.FG
		case code == 49:
			s.BG = def.BG
		case code == 38 || code == 48:
			c, consumed, ok := extendedColor(codes[i+1:])
			if !ok {
				return s
			}
			if code == 38 {
				s.FG = c
			} else {
				s.BG = c
			}
			i += consumed
		case code == 58:
			// underline color is not supported; skip its arguments
			if i+1 < len(codes) {
				switch codes[i+1] {
				case 5:
					i += 2
				case 2:
					i += 4
				default:
					return s
				}
			}
		}
	}
	return s
}

// extendedColor decodes the arguments of a 38/48 selector. consumed is the
// number of codes used after the selector.
func extendedColor(args []int) (c Color, consumed int, ok bool) {
	if len(args) == 0 {
		return ColorNone, 0, false
	}
	switch args[0] {
	case 5:
		if len(args) < 2 || args[1] < 0 || args[1] > 255 {
			return ColorNone, 0, false
		}
		return Color256(uint8(args[1])), 2, true
	case 2:
		if len(args) < 4 {
			return ColorNone, 0, false
		}
		for _, v := range args[1:4] {
			if v < 0 || v > 255 {
				return ColorNone, 0, false
			}
		}
		return RGB(uint8(args[1]), uint8(args[2]), uint8(args[3])), 4, true
	default:
		return ColorNone, 0, false
	}
}
