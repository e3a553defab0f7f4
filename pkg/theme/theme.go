// Package theme provides the styles and glyphs used by markdown rendering,
// lists, rules and panels. A Theme is a plain value passed to whatever
// renders with it; there is no process-wide theme.
package theme

import (
	"fmt"
	"strings"

	"github.com/odvcencio/textgrid/pkg/rendering"
)

// Theme defines the complete visual language for rendered documents.
type Theme struct {
	Name string

	// Semantic colors
	Success rendering.TextStyle
	Danger  rendering.TextStyle
	Warning rendering.TextStyle
	Info    rendering.TextStyle
	Muted   rendering.TextStyle

	// Widgets
	ListNumber  rendering.TextStyle
	ListBullet  rendering.TextStyle
	Rule        rendering.TextStyle
	PanelBorder rendering.TextStyle
	TableBorder rendering.TextStyle

	// Markdown
	Blockquote      rendering.TextStyle
	Emphasis        rendering.TextStyle
	Strong          rendering.TextStyle
	Strikethrough   rendering.TextStyle
	CodeBlock       rendering.TextStyle
	CodeSpan        rendering.TextStyle
	TableHeader     rendering.TextStyle
	TableBody       rendering.TextStyle
	LinkText        rendering.TextStyle
	LinkDestination rendering.TextStyle
	ImageAlt        rendering.TextStyle
	Headings        [6]rendering.TextStyle

	// Code highlighting, used when no chroma style is configured
	Code CodePalette

	Symbols Symbols

	// CodeBlockBorder draws fenced code inside a panel.
	CodeBlockBorder bool
	// TableASCII renders markdown tables with ASCII borders.
	TableASCII bool

	RuleTitlePadding  int
	PanelTitlePadding int
	HeadingPadding    int
}

// CodePalette maps token categories to styles.
type CodePalette struct {
	Default     rendering.TextStyle
	Keyword     rendering.TextStyle
	TypeName    rendering.TextStyle
	Function    rendering.TextStyle
	String      rendering.TextStyle
	Number      rendering.TextStyle
	Comment     rendering.TextStyle
	Operator    rendering.TextStyle
	Punctuation rendering.TextStyle
	Builtin     rendering.TextStyle
	Tag         rendering.TextStyle
	Error       rendering.TextStyle
}

// Symbols provides consistent iconography.
type Symbols struct {
	Bullet          string
	NumberSeparator string
	Rule            string
	TaskChecked     string
	TaskUnchecked   string
	BlockquoteBar   string
	ImagePrefix     string
	HeadingRules    [6]string
}

var (
	header    = rendering.Hex(0xc678dd)
	highlight = rendering.Hex(0x61afef)
	gray      = rendering.Hex(0x5c6370)
	red       = rendering.Hex(0xe06c75)
	yellow    = rendering.Hex(0xe5c07b)
	green     = rendering.Hex(0x98c379)
	orange    = rendering.Hex(0xd19a66)
	cyan      = rendering.Hex(0x56b6c2)
)

func fg(c rendering.Color) rendering.TextStyle {
	return rendering.DefaultStyle.WithFG(c)
}

func unicodeSymbols() Symbols {
	return Symbols{
		Bullet:          "•",
		NumberSeparator: ".",
		Rule:            "─",
		TaskChecked:     "☑",
		TaskUnchecked:   "☐",
		BlockquoteBar:   "▎",
		ImagePrefix:     "🖼️",
		HeadingRules:    [6]string{"═", "─", " ", " ", " ", " "},
	}
}

// DefaultTheme returns the colored unicode theme.
func DefaultTheme() *Theme {
	return &Theme{
		Name: "default",

		Success: fg(green),
		Danger:  fg(red),
		Warning: fg(yellow),
		Info:    fg(highlight),
		Muted:   rendering.DefaultStyle.Dim(),

		Blockquote:      fg(yellow),
		Emphasis:        rendering.DefaultStyle.Italic(),
		Strong:          rendering.DefaultStyle.Bold(),
		Strikethrough:   rendering.DefaultStyle.Strikethrough(),
		CodeBlock:       fg(highlight),
		CodeSpan:        fg(highlight).WithBG(gray),
		TableHeader:     rendering.DefaultStyle.Bold(),
		LinkText:        fg(highlight),
		LinkDestination: fg(highlight).Dim(),
		ImageAlt:        rendering.DefaultStyle.Dim(),
		Headings: [6]rendering.TextStyle{
			fg(header).Bold(),
			fg(header).Bold(),
			fg(header).Bold().Underline(),
			fg(header).Underline(),
			fg(header).Italic(),
			fg(header).Dim(),
		},

		Code: CodePalette{
			Keyword:     fg(header).Bold(),
			TypeName:    fg(yellow),
			Function:    fg(highlight),
			String:      fg(green),
			Number:      fg(orange),
			Comment:     fg(gray).Italic(),
			Operator:    fg(cyan),
			Punctuation: fg(gray),
			Builtin:     fg(cyan),
			Tag:         fg(red),
			Error:       fg(red).Bold(),
		},

		Symbols: unicodeSymbols(),

		CodeBlockBorder:   true,
		RuleTitlePadding:  1,
		PanelTitlePadding: 1,
		HeadingPadding:    1,
	}
}

// PlainTheme uses the default glyphs with no colors or attributes.
func PlainTheme() *Theme {
	return &Theme{
		Name:              "plain",
		Symbols:           unicodeSymbols(),
		CodeBlockBorder:   true,
		RuleTitlePadding:  1,
		PanelTitlePadding: 1,
		HeadingPadding:    1,
	}
}

// ASCIITheme uses no colors and only ASCII glyphs.
func ASCIITheme() *Theme {
	t := PlainTheme()
	t.Name = "ascii"
	t.Symbols = Symbols{
		Bullet:          "*",
		NumberSeparator: ".",
		Rule:            "-",
		TaskChecked:     "[x]",
		TaskUnchecked:   "[ ]",
		BlockquoteBar:   "|",
		ImagePrefix:     "[img]",
		HeadingRules:    [6]string{"=", "-", " ", " ", " ", " "},
	}
	t.TableASCII = true
	return t
}

// Names lists the built-in themes.
func Names() []string {
	return []string{"default", "plain", "ascii"}
}

// Lookup returns a fresh copy of a built-in theme by name. The empty name
// selects the default theme.
func Lookup(name string) (*Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultTheme(), nil
	case "plain":
		return PlainTheme(), nil
	case "ascii":
		return ASCIITheme(), nil
	default:
		return nil, fmt.Errorf("unknown theme %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
}

// Heading returns the style for a heading level, clamped to 1..6.
func (t *Theme) Heading(level int) rendering.TextStyle {
	return t.Headings[clampLevel(level)-1]
}

// HeadingRule returns the rule glyph drawn beside a heading.
func (t *Theme) HeadingRule(level int) string {
	return t.Symbols.HeadingRules[clampLevel(level)-1]
}

// BorderType returns the border set used for markdown tables.
func (t *Theme) BorderType() rendering.BorderType {
	if t.TableASCII {
		return rendering.BorderASCIIDoubleSectionSeparator
	}
	return rendering.BorderSquareDoubleSectionSeparator
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}
