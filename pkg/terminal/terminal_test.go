package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
)

func styledLine(text string, style rendering.TextStyle) rendering.Lines {
	return rendering.Lines{rendering.NewLine(rendering.MustWord(text, style))}
}

func TestRenderLevelNoneIsPlain(t *testing.T) {
	lines := rendering.ParseText("hello world\nsecond", rendering.TextStyle{}.Bold().WithFG(rendering.ColorRed))

	assert.Equal(t, "hello world\nsecond", Render(lines, LevelNone))
}

func TestRenderTrueColor(t *testing.T) {
	style := rendering.TextStyle{}.WithFG(rendering.Hex(0xff0000)).Bold()
	out := Render(styledLine("hi", style), LevelTrueColor)

	assert.Contains(t, out, "38;2;255;0;0")
	assert.True(t, strings.HasPrefix(out, "\x1b["))
	assert.Equal(t, "hi", ansi.Strip(out))
}

func TestRenderDegradesColor(t *testing.T) {
	style := rendering.TextStyle{}.WithFG(rendering.Hex(0xff0000))
	out := Render(styledLine("hi", style), LevelANSI16)

	assert.NotContains(t, out, "38;2")
	assert.Contains(t, out, "\x1b[")
	assert.Equal(t, "hi", ansi.Strip(out))
}

func TestRenderGroupsEqualStyles(t *testing.T) {
	s := rendering.TextStyle{}.Italic()
	lines := rendering.Lines{rendering.NewLine(
		rendering.MustWord("a", s), rendering.Space(1, s), rendering.MustWord("b", s),
		rendering.MustWord("c", rendering.TextStyle{}),
	)}
	out := Render(lines, LevelANSI256)

	assert.Equal(t, 1, strings.Count(out, "\x1b[0m"))
	assert.True(t, strings.HasSuffix(out, "c"))
	assert.Equal(t, "a bc", ansi.Strip(out))
}

func TestRenderHyperlinks(t *testing.T) {
	lines := styledLine("docs", rendering.TextStyle{}.WithHyperlink("https://x.test"))

	assert.Contains(t, Render(lines, LevelANSI256), "\x1b]8;;https://x.test")
	assert.Equal(t, "docs", Render(lines, LevelNone))

	noLinks := Renderer{Level: LevelTrueColor}.Render(lines)
	assert.Equal(t, "docs", noLinks)
}

func TestRenderHTML(t *testing.T) {
	lines := rendering.Lines{rendering.NewLine(
		rendering.MustWord("<b>", rendering.TextStyle{}.Bold()),
		rendering.Space(1, rendering.TextStyle{}),
		rendering.MustWord("x", rendering.TextStyle{}.WithHyperlink("https://e.test").WithFG(rendering.Hex(0x00ff00))),
	)}

	want := `<pre style="font-family: monospace"><code>` + "\n" +
		`<span style="font-weight: bold">&lt;b&gt;</span><span> </span>` +
		`<a href="https://e.test" style="color: #00ff00">x</a>` + "\n" +
		`</code></pre>`
	assert.Equal(t, want, RenderHTML(lines))
}

func TestRenderHTMLPaletteAndDecorations(t *testing.T) {
	style := rendering.TextStyle{}.WithBG(rendering.ColorRed).Underline().Strikethrough()
	out := RenderHTML(styledLine("x", style))

	assert.Contains(t, out, "background-color: #")
	assert.Contains(t, out, "text-decoration: underline line-through")
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel(" ANSI256 ")
	require.NoError(t, err)
	assert.Equal(t, LevelANSI256, l)
	assert.Equal(t, "ansi256", l.String())

	_, err = ParseLevel("sepia")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	info := Info{Level: LevelANSI16}
	got, err := info.Resolve("auto")
	require.NoError(t, err)
	assert.Equal(t, LevelANSI16, got)
	got, err = info.Resolve("none")
	require.NoError(t, err)
	assert.Equal(t, LevelNone, got)
}

func TestDetectNonTerminal(t *testing.T) {
	t.Setenv("COLUMNS", "100")
	t.Setenv("LINES", "30")
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CLICOLOR_FORCE", "")

	info := Detect(&bytes.Buffer{})
	assert.Equal(t, 100, info.Width)
	assert.Equal(t, 30, info.Height)
	assert.Equal(t, LevelNone, info.Level)
	assert.False(t, info.Interactive)
	assert.False(t, info.Hyperlinks)

	t.Setenv("COLUMNS", "")
	t.Setenv("LINES", "nope")
	info = Detect(&bytes.Buffer{})
	assert.Equal(t, 79, info.Width)
	assert.Equal(t, 24, info.Height)
}

func TestInfoRenderer(t *testing.T) {
	info := Info{Level: LevelTrueColor, Hyperlinks: true}
	assert.True(t, info.Renderer(LevelANSI256, true).Hyperlinks)
	assert.False(t, info.Renderer(LevelANSI256, false).Hyperlinks)
	assert.False(t, info.Renderer(LevelNone, true).Hyperlinks)
}

func TestWriterStatus(t *testing.T) {
	var buf bytes.Buffer
	w := NewWithOutput(&buf, Renderer{Level: LevelNone})

	w.Error("bad %d", 1)
	w.Warn("careful")
	w.Success("done")
	w.Info("fyi")
	w.Dim("quiet")

	assert.Equal(t, "error: bad 1\nwarning: careful\n✓ done\nfyi\nquiet\n", ansi.Strip(buf.String()))
}

func TestWriterLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWithOutput(&buf, Renderer{Level: LevelNone})

	require.NoError(t, w.Lines(rendering.ParseText("a b\nc", rendering.TextStyle{})))
	assert.Equal(t, "a b\nc\n", buf.String())
	assert.Equal(t, LevelNone, w.Renderer().Level)
}

func newSimPager(t *testing.T, width, height, n int) *Pager {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(width, height)

	var lines rendering.Lines
	for i := 0; i < n; i++ {
		lines = append(lines, rendering.NewLine(rendering.MustWord("l"+string(rune('0'+i)), rendering.TextStyle{})))
	}
	p, err := NewPager(screen, "doc", lines)
	require.NoError(t, err)
	return p
}

func TestPagerScrolling(t *testing.T) {
	p := newSimPager(t, 10, 4, 10)

	assert.True(t, p.HandleKey(tcell.KeyRune, 'j'))
	assert.Equal(t, 1, p.Top())
	p.HandleKey(tcell.KeyUp, 0)
	p.HandleKey(tcell.KeyUp, 0)
	assert.Equal(t, 0, p.Top())

	p.HandleKey(tcell.KeyPgDn, 0)
	assert.Equal(t, 3, p.Top())
	p.HandleKey(tcell.KeyRune, 'G')
	assert.Equal(t, 7, p.Top(), "last page stays full")
	p.HandleKey(tcell.KeyRune, ' ')
	assert.Equal(t, 7, p.Top())
	p.HandleKey(tcell.KeyHome, 0)
	assert.Equal(t, 0, p.Top())

	assert.False(t, p.HandleKey(tcell.KeyRune, 'q'))
	assert.False(t, p.HandleKey(tcell.KeyEscape, 0))
}

func TestPagerDraw(t *testing.T) {
	p := newSimPager(t, 10, 4, 10)
	p.HandleKey(tcell.KeyRune, 'j')
	p.Draw()

	r, _, _, _ := p.screen.GetContent(0, 0)
	assert.Equal(t, 'l', r)
	r, _, _, _ = p.screen.GetContent(1, 0)
	assert.Equal(t, '1', r)
	r, _, _, _ = p.screen.GetContent(1, 3)
	assert.Equal(t, 'd', r, "status bar shows the title")
}

func TestPagerSetLinesClamps(t *testing.T) {
	p := newSimPager(t, 10, 4, 10)
	p.HandleKey(tcell.KeyEnd, 0)
	require.Equal(t, 7, p.Top())

	p.SetLines(rendering.ParseText("one\ntwo", rendering.TextStyle{}))
	assert.Equal(t, 0, p.Top())
}
