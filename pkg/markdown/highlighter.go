package markdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/odvcencio/textgrid/pkg/rendering"
	"github.com/odvcencio/textgrid/pkg/theme"
)

// Highlighter applies syntax highlighting to fenced code blocks. Colors
// come from a chroma style when one is named, otherwise from the theme's
// code palette.
type Highlighter struct {
	palette theme.CodePalette
	style   *chroma.Style
}

// NewHighlighter returns a highlighter. An empty styleName uses the theme.
func NewHighlighter(t *theme.Theme, styleName string) (*Highlighter, error) {
	if t == nil {
		t = theme.DefaultTheme()
	}
	h := &Highlighter{palette: t.Code}
	if styleName == "" {
		return h, nil
	}
	style, ok := styles.Registry[strings.ToLower(styleName)]
	if !ok {
		return nil, fmt.Errorf("unknown code style %q", styleName)
	}
	h.style = style
	return h, nil
}

// CodeStyles lists the chroma style names accepted by NewHighlighter.
func CodeStyles() []string {
	names := make([]string, 0, len(styles.Registry))
	for name := range styles.Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Highlight tokenizes code and returns one line per source line, each
// token styled over base.
func (h *Highlighter) Highlight(code, language string, base rendering.TextStyle) rendering.Lines {
	if code == "" {
		return rendering.Lines{{}}
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iter, err := lexer.Tokenise(nil, code)
	if err != nil {
		return rendering.ParseText(code, base)
	}

	var lines rendering.Lines
	for token := iter(); token != chroma.EOF; token = iter() {
		if token.Value == "" {
			continue
		}
		style := base.Combine(h.styleForToken(token.Type))
		lines = lines.Concat(rendering.ParseText(token.Value, style))
	}
	// Lexers that ensure a trailing newline add a final empty line.
	if want := strings.Count(code, "\n") + 1; len(lines) > want {
		lines = lines[:want]
	}
	return lines
}

func (h *Highlighter) styleForToken(ttype chroma.TokenType) rendering.TextStyle {
	if h.style != nil {
		return styleFromEntry(h.style.Get(ttype))
	}
	if ttype == chroma.Error {
		return h.palette.Error
	}
	switch {
	case ttype.InCategory(chroma.Comment):
		return h.palette.Comment
	case ttype.InCategory(chroma.Keyword):
		return h.palette.Keyword
	case ttype.InSubCategory(chroma.LiteralString):
		return h.palette.String
	case ttype.InSubCategory(chroma.LiteralNumber):
		return h.palette.Number
	case ttype.InCategory(chroma.Operator):
		return h.palette.Operator
	case ttype.InCategory(chroma.Punctuation):
		return h.palette.Punctuation
	case ttype.InCategory(chroma.Name):
		switch ttype {
		case chroma.NameFunction, chroma.NameFunctionMagic:
			return h.palette.Function
		case chroma.NameClass, chroma.NameNamespace:
			return h.palette.TypeName
		case chroma.NameBuiltin, chroma.NameBuiltinPseudo:
			return h.palette.Builtin
		case chroma.NameTag:
			return h.palette.Tag
		case chroma.NameConstant:
			return h.palette.Number
		}
	}
	return h.palette.Default
}

func styleFromEntry(e chroma.StyleEntry) rendering.TextStyle {
	var s rendering.TextStyle
	if e.Colour.IsSet() {
		s = s.WithFG(rendering.RGB(e.Colour.Red(), e.Colour.Green(), e.Colour.Blue()))
	}
	if e.Bold == chroma.Yes {
		s = s.Bold()
	}
	if e.Italic == chroma.Yes {
		s = s.Italic()
	}
	if e.Underline == chroma.Yes {
		s = s.Underline()
	}
	return s
}
