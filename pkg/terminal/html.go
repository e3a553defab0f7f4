package terminal

import (
	"html"
	"strings"

	"github.com/muesli/termenv"

	"github.com/odvcencio/textgrid/pkg/rendering"
)

// RenderHTML renders lines as a <pre><code> fragment with inline CSS.
// Linked runs become anchors.
func RenderHTML(lines rendering.Lines) string {
	var sb strings.Builder
	sb.WriteString(`<pre style="font-family: monospace"><code>`)
	sb.WriteByte('\n')
	for _, line := range lines {
		var run []rendering.Span
		for _, span := range line.Spans {
			if len(run) > 0 && run[len(run)-1].Style() != span.Style() {
				writeHTMLRun(&sb, run)
				run = run[:0]
			}
			run = append(run, span)
		}
		writeHTMLRun(&sb, run)
		sb.WriteByte('\n')
	}
	sb.WriteString("</code></pre>")
	return sb.String()
}

func writeHTMLRun(sb *strings.Builder, run []rendering.Span) {
	if len(run) == 0 {
		return
	}
	style := run[0].Style()
	tag := "span"
	if style.Hyperlink != "" {
		tag = "a"
		sb.WriteString(`<a href="`)
		sb.WriteString(html.EscapeString(style.Hyperlink))
		sb.WriteByte('"')
	} else {
		sb.WriteString("<span")
	}
	if rules := cssRules(style); len(rules) > 0 {
		sb.WriteString(` style="`)
		sb.WriteString(strings.Join(rules, "; "))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	for _, span := range run {
		sb.WriteString(html.EscapeString(span.Text()))
	}
	sb.WriteString("</" + tag + ">")
}

func cssRules(s rendering.TextStyle) []string {
	fg, bg := s.FG, s.BG
	if s.Has(rendering.AttrReverse) {
		fg, bg = bg, fg
	}
	var rules []string
	if hex, ok := cssColor(fg); ok {
		rules = append(rules, "color: "+hex)
	}
	if hex, ok := cssColor(bg); ok {
		rules = append(rules, "background-color: "+hex)
	}
	if s.Has(rendering.AttrBold) {
		rules = append(rules, "font-weight: bold")
	}
	if s.Has(rendering.AttrItalic) {
		rules = append(rules, "font-style: italic")
	}
	if s.Has(rendering.AttrDim) {
		rules = append(rules, "opacity: 0.5")
	}
	var decorations []string
	if s.Has(rendering.AttrUnderline) {
		decorations = append(decorations, "underline")
	}
	if s.Has(rendering.AttrStrikethrough) {
		decorations = append(decorations, "line-through")
	}
	if len(decorations) > 0 {
		rules = append(rules, "text-decoration: "+strings.Join(decorations, " "))
	}
	return rules
}

func cssColor(c rendering.Color) (string, bool) {
	switch c.Mode {
	case rendering.ColorModeRGB:
		return c.String(), true
	case rendering.ColorMode16:
		return termenv.ConvertToRGB(termenv.ANSIColor(c.Value)).Hex(), true
	case rendering.ColorMode256:
		return termenv.ConvertToRGB(termenv.ANSI256Color(c.Value)).Hex(), true
	default:
		return "", false
	}
}
