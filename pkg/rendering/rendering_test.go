package rendering

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/textgrid/pkg/errors"
)

func TestWord(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"word", "hello", false},
		{"whitespace", "   ", false},
		{"tab", "\t", false},
		{"wide", "日本", false},
		{"empty", "", true},
		{"mixed", "a b", true},
		{"newline", "a\nb", true},
		{"only newline", "\n", true},
		{"escape", "\x1b[1mhi", true},
		{"backspace", "x\by", true},
		{"bell", "\a", true},
		{"nul", "x\x00", true},
		{"delete", "x\x7f", true},
		{"nel", NEL, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Word(tt.text, DefaultStyle)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidSpan))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.text, s.Text())
		})
	}
}

func TestSpanWidth(t *testing.T) {
	assert.Equal(t, 4, MustWord("日本", DefaultStyle).Width())
	assert.Equal(t, 3, Space(3, DefaultStyle).Width())
	assert.True(t, Space(2, DefaultStyle).IsWhitespace())
	assert.False(t, MustWord("x", DefaultStyle).IsWhitespace())
}

func TestSpanChunks(t *testing.T) {
	chunks := MustWord("abcdefg", DefaultStyle).Chunks(3)
	var texts []string
	for _, c := range chunks {
		texts = append(texts, c.Text())
	}
	assert.Equal(t, []string{"abc", "def", "g"}, texts)
}

func TestNewWidthRange(t *testing.T) {
	r, err := NewWidthRange(2, 5)
	require.NoError(t, err)
	assert.Equal(t, WidthRange{Min: 2, Max: 5}, r)

	_, err = NewWidthRange(6, 5)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidWidthRange))
}

func TestWidthRangeArithmetic(t *testing.T) {
	r := WidthRange{Min: 3, Max: 9}
	assert.Equal(t, WidthRange{Min: 5, Max: 11}, r.Add(2))
	assert.Equal(t, WidthRange{Min: 4, Max: 10}, r.Plus(WidthRange{Min: 1, Max: 1}))
	assert.Equal(t, WidthRange{Min: 1, Max: 4}, r.Div(2))
	assert.Equal(t, r, r.Div(1))

	got := MaxWidthRange([]WidthRange{{1, 8}, {4, 5}}, 2)
	assert.Equal(t, WidthRange{Min: 6, Max: 10}, got)
}

func TestLinesConcat(t *testing.T) {
	a := Lines{NewLine(MustWord("a", DefaultStyle)), NewLine(MustWord("b", DefaultStyle))}
	b := Lines{NewLine(MustWord("c", DefaultStyle)), NewLine(MustWord("d", DefaultStyle))}

	got := a.Concat(b)
	assert.Equal(t, "a\nbc\nd", got.String())
	assert.Equal(t, 3, got.Height())
	assert.Equal(t, 2, got.Width())
}

func TestSetSize(t *testing.T) {
	lines := Lines{NewLine(MustWord("ab", DefaultStyle))}

	tests := []struct {
		name   string
		width  int
		height int
		v      VerticalAlign
		h      TextAlign
		want   string
	}{
		{"pad right", 5, 1, VerticalAlignTop, TextAlignLeft, "ab   "},
		{"pad left", 5, 1, VerticalAlignTop, TextAlignRight, "   ab"},
		{"center", 5, 1, VerticalAlignTop, TextAlignCenter, "  ab "},
		{"crop", 1, 1, VerticalAlignTop, TextAlignNone, "a"},
		{"bottom", 2, 3, VerticalAlignBottom, TextAlignNone, "  \n  \nab"},
		{"middle", 2, 4, VerticalAlignMiddle, TextAlignNone, "  \n  \nab\n  "},
		{"cut height", 2, 0, VerticalAlignTop, TextAlignNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lines.SetSize(tt.width, tt.height, tt.v, tt.h)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.height, got.Height())
		})
	}
}

func TestSetSizeWideGlyphStraddle(t *testing.T) {
	lines := Lines{NewLine(MustWord("a日", DefaultStyle))}
	got := lines.SetSize(2, 1, VerticalAlignTop, TextAlignNone)
	assert.Equal(t, "a ", got.String())
	assert.Equal(t, 2, got[0].Width())
}

func TestSetSizeZeroWidth(t *testing.T) {
	got := Lines{NewLine(MustWord("ab", DefaultStyle))}.SetSize(0, 2, VerticalAlignTop, TextAlignNone)
	assert.Equal(t, 2, got.Height())
	assert.Equal(t, 0, got.Width())
}

func TestStyleCombine(t *testing.T) {
	base := DefaultStyle.WithFG(ColorRed).Bold()
	over := DefaultStyle.WithBG(ColorBlue).WithAttr(AttrBold, false)

	got := base.Combine(over)
	assert.Equal(t, ColorRed, got.FG)
	assert.Equal(t, ColorBlue, got.BG)
	assert.False(t, got.Has(AttrBold))

	// unset attributes inherit
	got = base.Combine(DefaultStyle.Italic())
	assert.True(t, got.Has(AttrBold))
	assert.True(t, got.Has(AttrItalic))
}

func TestFoldStylesPriority(t *testing.T) {
	cell := DefaultStyle.WithFG(ColorGreen)
	table := DefaultStyle.WithFG(ColorRed).Underline()

	got := FoldStyles(cell, DefaultStyle, table)
	assert.Equal(t, ColorGreen, got.FG)
	assert.True(t, got.Has(AttrUnderline))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8800")
	require.NoError(t, err)
	assert.Equal(t, RGB(0xff, 0x88, 0x00), c)

	c, err = ParseColor("bright_blue")
	require.NoError(t, err)
	assert.Equal(t, ColorBrightBlue, c)

	c, err = ParseColor("200")
	require.NoError(t, err)
	assert.Equal(t, Color256(200), c)

	_, err = ParseColor("chartreuse-ish")
	assert.Error(t, err)
}

func TestBorderCorners(t *testing.T) {
	s := BorderSquare.Body
	assert.Equal(t, "┼", s.Corner(true, true, true, true))
	assert.Equal(t, "┌", s.Corner(false, true, true, false))
	assert.Equal(t, "┘", s.Corner(true, false, false, true))
	assert.Equal(t, "─", s.Corner(false, true, false, true))
	assert.Equal(t, " ", s.Corner(false, false, false, false))
	assert.Equal(t, "╷", s.Corner(false, false, true, false))

	_, err := NewBorderTypeSection("short")
	assert.Error(t, err)
}

func TestParseBorderType(t *testing.T) {
	bt, err := ParseBorderType("heavy_head_foot")
	require.NoError(t, err)
	assert.Equal(t, "┡", bt.HeadBottom.NES)

	_, err = ParseBorderType("wavy")
	assert.Error(t, err)
}

func TestParseText(t *testing.T) {
	lines := ParseText("hello  world\nsecond\tline", DefaultStyle)
	require.Equal(t, 2, lines.Height())

	var texts []string
	for _, s := range lines[0].Spans {
		texts = append(texts, s.Text())
	}
	assert.Equal(t, []string{"hello", "  ", "world"}, texts)

	texts = nil
	for _, s := range lines[1].Spans {
		texts = append(texts, s.Text())
	}
	assert.Equal(t, []string{"second", "\t", "line"}, texts)
}

func TestParseTextDropsControlCharacters(t *testing.T) {
	lines := ParseText("x\by\a \x00z\tw", DefaultStyle)
	require.Equal(t, 1, lines.Height())

	var texts []string
	for _, s := range lines[0].Spans {
		texts = append(texts, s.Text())
	}
	assert.Equal(t, []string{"xy", " ", "z", "\t", "w"}, texts)
	assert.Equal(t, 2, lines[0].Spans[0].Width())

	assert.Empty(t, ParseText("\x00\x01", DefaultStyle))
}

func TestParseTextTrailingNewline(t *testing.T) {
	lines := ParseText("a\n", DefaultStyle)
	assert.Equal(t, 2, lines.Height())
	assert.Empty(t, lines[1].Spans)
}

func TestParseTextCRLF(t *testing.T) {
	lines := ParseText("a\r\nb", DefaultStyle)
	assert.Equal(t, "a\nb", lines.String())
}

func TestParseTextANSI(t *testing.T) {
	lines := ParseText("\x1b[1;31mred\x1b[0m plain \x1b[38;5;200mpink\x1b[39m", DefaultStyle)
	require.Equal(t, 1, lines.Height())
	spans := lines[0].Spans
	require.Len(t, spans, 5)

	assert.Equal(t, "red", spans[0].Text())
	assert.True(t, spans[0].Style().Has(AttrBold))
	assert.Equal(t, ColorRed, spans[0].Style().FG)

	assert.Equal(t, "plain", spans[2].Text())
	assert.True(t, spans[2].Style().IsZero())

	assert.Equal(t, "pink", spans[4].Text())
	assert.Equal(t, Color256(200), spans[4].Style().FG)
}

func TestParseTextHyperlink(t *testing.T) {
	lines := ParseText("\x1b]8;;https://example.com\x1b\\link\x1b]8;;\x1b\\ after", DefaultStyle)
	spans := lines[0].Spans
	require.NotEmpty(t, spans)
	assert.Equal(t, "link", spans[0].Text())
	assert.Equal(t, "https://example.com", spans[0].Style().Hyperlink)
	assert.Equal(t, "", spans[len(spans)-1].Style().Hyperlink)
}

func TestParseTextHardBreaks(t *testing.T) {
	lines := ParseText("a"+NEL+"b", DefaultStyle)
	require.Equal(t, 1, lines.Height())
	require.Len(t, lines[0].Spans, 3)
	assert.True(t, lines[0].Spans[1].IsHardBreak())
}

func TestParseEnums(t *testing.T) {
	ws, err := ParseWhitespace("PRE_WRAP")
	require.NoError(t, err)
	assert.Equal(t, WhitespacePreWrap, ws)

	a, err := ParseTextAlign("justify")
	require.NoError(t, err)
	assert.Equal(t, TextAlignJustify, a)

	v, err := ParseVerticalAlign("middle")
	require.NoError(t, err)
	assert.Equal(t, VerticalAlignMiddle, v)

	o, err := ParseOverflowWrap("break_word")
	require.NoError(t, err)
	assert.Equal(t, OverflowBreakWord, o)

	_, err = ParseTextAlign(strings.Repeat("x", 3))
	assert.Error(t, err)
}
