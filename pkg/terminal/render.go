// Package terminal writes rendered lines to terminals and documents: ANSI
// text at a chosen color level, HTML fragments, status messages and an
// interactive pager.
package terminal

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
)

// Level is the color capability output is rendered for.
type Level int

const (
	LevelNone Level = iota
	LevelANSI16
	LevelANSI256
	LevelTrueColor
)

var levelNames = map[string]Level{
	"none":      LevelNone,
	"ansi16":    LevelANSI16,
	"ansi256":   LevelANSI256,
	"truecolor": LevelTrueColor,
}

// ParseLevel parses a level name. "auto" is resolved by Info.Resolve.
func ParseLevel(name string) (Level, error) {
	if l, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l, nil
	}
	return LevelNone, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown color level %q", name))
}

func (l Level) String() string {
	for name, v := range levelNames {
		if v == l {
			return name
		}
	}
	return "unknown"
}

// Profile returns the termenv profile for the level.
func (l Level) Profile() termenv.Profile {
	switch l {
	case LevelANSI16:
		return termenv.ANSI
	case LevelANSI256:
		return termenv.ANSI256
	case LevelTrueColor:
		return termenv.TrueColor
	default:
		return termenv.Ascii
	}
}

func levelForProfile(p termenv.Profile) Level {
	switch p {
	case termenv.TrueColor:
		return LevelTrueColor
	case termenv.ANSI256:
		return LevelANSI256
	case termenv.ANSI:
		return LevelANSI16
	default:
		return LevelNone
	}
}

// Renderer serializes lines as ANSI text.
type Renderer struct {
	Level Level
	// Hyperlinks emits OSC 8 sequences for linked spans. Ignored at LevelNone.
	Hyperlinks bool
}

// Render serializes lines at level, with hyperlinks whenever color is on.
func Render(lines rendering.Lines, level Level) string {
	return Renderer{Level: level, Hyperlinks: level != LevelNone}.Render(lines)
}

// Render joins the lines with "\n". Adjacent spans sharing a style are
// written under a single escape sequence.
func (r Renderer) Render(lines rendering.Lines) string {
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		r.writeLine(&sb, line)
	}
	return sb.String()
}

func (r Renderer) writeLine(sb *strings.Builder, line rendering.Line) {
	var run strings.Builder
	var style rendering.TextStyle
	flush := func() {
		if run.Len() == 0 {
			return
		}
		sb.WriteString(r.styled(run.String(), style))
		run.Reset()
	}
	for _, span := range line.Spans {
		if run.Len() > 0 && span.Style() != style {
			flush()
		}
		style = span.Style()
		run.WriteString(span.Text())
	}
	flush()
}

func (r Renderer) styled(text string, s rendering.TextStyle) string {
	if r.Level == LevelNone || s.IsZero() {
		return text
	}
	profile := r.Level.Profile()
	out := profile.String(text)
	if c := termColor(profile, s.FG); c != nil {
		out = out.Foreground(c)
	}
	if c := termColor(profile, s.BG); c != nil {
		out = out.Background(c)
	}
	if s.Has(rendering.AttrBold) {
		out = out.Bold()
	}
	if s.Has(rendering.AttrDim) {
		out = out.Faint()
	}
	if s.Has(rendering.AttrItalic) {
		out = out.Italic()
	}
	if s.Has(rendering.AttrUnderline) {
		out = out.Underline()
	}
	if s.Has(rendering.AttrBlink) {
		out = out.Blink()
	}
	if s.Has(rendering.AttrReverse) {
		out = out.Reverse()
	}
	if s.Has(rendering.AttrStrikethrough) {
		out = out.CrossOut()
	}
	styled := out.String()
	if r.Hyperlinks && s.Hyperlink != "" {
		styled = termenv.Hyperlink(s.Hyperlink, styled)
	}
	return styled
}

// termColor converts c and degrades it to what profile supports. Unset and
// default colors return nil so the terminal default applies.
func termColor(profile termenv.Profile, c rendering.Color) termenv.Color {
	var tc termenv.Color
	switch c.Mode {
	case rendering.ColorMode16:
		tc = termenv.ANSIColor(c.Value)
	case rendering.ColorMode256:
		tc = termenv.ANSI256Color(c.Value)
	case rendering.ColorModeRGB:
		tc = termenv.RGBColor(fmt.Sprintf("#%06x", c.Value))
	default:
		return nil
	}
	return profile.Convert(tc)
}
