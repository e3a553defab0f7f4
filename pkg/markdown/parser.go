// Package markdown renders CommonMark and GitHub flavored markdown into
// widgets: paragraphs wrap, headings become titled rules, fenced code is
// highlighted and GFM tables are laid out by the table engine.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

// Parser wraps goldmark for markdown parsing.
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a new markdown parser with GFM enabled.
func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // tables, strikethrough, autolinks, task lists
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	return &Parser{md: md}
}

// Normalize prepares source for parsing: carriage returns are dropped and
// the text is put in NFC so composed and decomposed input measure the same.
func Normalize(source string) []byte {
	source = strings.ReplaceAll(source, "\r", "")
	return []byte(norm.NFC.String(source))
}

// Parse parses normalized markdown source and returns the AST root.
func (p *Parser) Parse(source []byte) ast.Node {
	reader := text.NewReader(source)
	return p.md.Parser().Parse(reader)
}

// WalkFunc is called for each node during tree traversal.
type WalkFunc func(node ast.Node, entering bool) (ast.WalkStatus, error)

// Walk traverses the AST tree calling fn for each node.
func Walk(node ast.Node, fn WalkFunc) error {
	return ast.Walk(node, ast.Walker(fn))
}

// plainText concatenates the literal text under node.
func plainText(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// blockText returns the raw lines of a leaf block such as a code block.
func blockText(node ast.Node, source []byte) string {
	var b strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	if html, ok := node.(*ast.HTMLBlock); ok && html.HasClosure() {
		b.Write(html.ClosureLine.Value(source))
	}
	return b.String()
}
