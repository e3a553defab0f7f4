package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
	"github.com/odvcencio/textgrid/pkg/table"
	"github.com/odvcencio/textgrid/pkg/theme"
	"github.com/odvcencio/textgrid/pkg/widgets"
)

// hardBreak is NEL, which the wrap engine always breaks on.
const hardBreak = "\u0085"

// Renderer turns markdown into widgets. It holds no per-document state and
// may be shared between goroutines.
type Renderer struct {
	parser      *Parser
	theme       *theme.Theme
	highlighter *Highlighter
	codeStyle   string
	hyperlinks  bool
	showHTML    bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithHyperlinks renders links as OSC 8 hyperlinks instead of printing
// the destination after the link text.
func WithHyperlinks(on bool) Option {
	return func(r *Renderer) { r.hyperlinks = on }
}

// WithHTML renders raw HTML blocks and tags as text instead of dropping them.
func WithHTML(on bool) Option {
	return func(r *Renderer) { r.showHTML = on }
}

// WithCodeStyle highlights code with a named chroma style.
func WithCodeStyle(name string) Option {
	return func(r *Renderer) { r.codeStyle = name }
}

// NewRenderer creates a renderer using the provided theme.
func NewRenderer(t *theme.Theme, opts ...Option) (*Renderer, error) {
	if t == nil {
		t = theme.DefaultTheme()
	}
	r := &Renderer{parser: NewParser(), theme: t}
	for _, opt := range opts {
		opt(r)
	}
	h, err := NewHighlighter(t, r.codeStyle)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid code style").
			WithContext("style", r.codeStyle)
	}
	r.highlighter = h
	return r, nil
}

// Render parses markdown and returns a widget for the whole document.
func (r *Renderer) Render(source string) (rendering.Widget, error) {
	src := Normalize(source)
	doc := r.parser.Parse(src)
	d := &document{r: r, source: src}
	return d.blocks(doc, 1)
}

type document struct {
	r      *Renderer
	source []byte
}

// blocks lays out the block children of node with spacing blank lines
// between them.
func (d *document) blocks(node ast.Node, spacing int) (rendering.Widget, error) {
	var children []rendering.Widget
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		w, err := d.block(child)
		if err != nil {
			return nil, err
		}
		if w != nil {
			children = append(children, w)
		}
	}
	return widgets.NewVerticalLayout(children, widgets.WithSpacing(spacing))
}

func (d *document) block(node ast.Node) (rendering.Widget, error) {
	t := d.r.theme
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return d.text(d.inlines(n, rendering.DefaultStyle), rendering.WhitespaceNormal)

	case *ast.Heading:
		return d.heading(n)

	case *ast.Blockquote:
		content, err := d.blocks(n, 1)
		if err != nil {
			return nil, err
		}
		bar, err := rendering.Word(t.Symbols.BlockquoteBar, t.Blockquote)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid blockquote bar")
		}
		return &blockQuote{content: content, bar: bar, style: t.Blockquote}, nil

	case *ast.List:
		return d.list(n)

	case *ast.FencedCodeBlock:
		return d.code(strings.TrimSuffix(blockText(n, d.source), "\n"), string(n.Language(d.source)))

	case *ast.CodeBlock:
		return d.code(strings.TrimSuffix(blockText(n, d.source), "\n"), "")

	case *ast.HTMLBlock:
		if !d.r.showHTML {
			return widgets.Empty, nil
		}
		return d.text(rendering.ParseText(strings.TrimSuffix(blockText(n, d.source), "\n"), rendering.DefaultStyle),
			rendering.WhitespacePreWrap)

	case *ast.ThematicBreak:
		return widgets.NewHorizontalRule(
			widgets.WithRuleChar(t.Symbols.Rule),
			widgets.WithRuleStyle(t.Rule),
		)

	case *extast.Table:
		return d.table(n)

	default:
		if node.HasChildren() {
			return d.blocks(node, 1)
		}
		return nil, nil
	}
}

func (d *document) text(lines rendering.Lines, ws rendering.Whitespace) (rendering.Widget, error) {
	return widgets.NewTextLines(lines, widgets.WithWhitespace(ws))
}

func (d *document) heading(n *ast.Heading) (rendering.Widget, error) {
	t := d.r.theme
	style := t.Heading(n.Level)
	title, err := d.text(d.inlines(n, style), rendering.WhitespaceNormal)
	if err != nil {
		return nil, err
	}
	rule, err := widgets.NewHorizontalRule(
		widgets.WithRuleTitle(title),
		widgets.WithRuleChar(t.HeadingRule(n.Level)),
		widgets.WithRuleStyle(rendering.DefaultStyle.WithFG(style.FG).WithBG(style.BG)),
		widgets.WithTitlePadding(t.RuleTitlePadding),
	)
	if err != nil {
		return nil, err
	}
	pad, err := widgets.NewPadding(t.HeadingPadding, 0, t.HeadingPadding, 0)
	if err != nil {
		return nil, err
	}
	return widgets.WithPadding(rule, pad, true), nil
}

func (d *document) list(n *ast.List) (rendering.Widget, error) {
	spacing := 0
	if !n.IsTight {
		spacing = 1
	}
	var items []rendering.Widget
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		w, err := d.blocks(item, spacing)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}

	t := d.r.theme
	if n.IsOrdered() {
		return widgets.NewOrderedList(items, t.Symbols.NumberSeparator, t.ListNumber)
	}
	return widgets.NewUnorderedList(items, t.Symbols.Bullet, t.ListBullet)
}

func (d *document) code(code, language string) (rendering.Widget, error) {
	t := d.r.theme
	lines := d.r.highlighter.Highlight(code, language, t.CodeBlock)
	content, err := d.text(lines, rendering.WhitespacePreWrap)
	if err != nil {
		return nil, err
	}
	if !t.CodeBlockBorder {
		return content, nil
	}
	return widgets.NewPanel(content,
		widgets.WithBorderStyle(t.PanelBorder),
		widgets.WithPanelTitlePadding(t.PanelTitlePadding),
	)
}

func (d *document) table(n *extast.Table) (rendering.Widget, error) {
	t := d.r.theme
	var cellErr error
	cells := func(row ast.Node) []any {
		var out []any
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			w, err := d.text(d.inlines(cell, rendering.DefaultStyle), rendering.WhitespaceNormal)
			if err != nil && cellErr == nil {
				cellErr = err
			}
			out = append(out, w)
		}
		return out
	}

	tbl, err := table.New(func(b *table.Builder) {
		b.BorderType(t.BorderType())
		b.BorderStyle(t.TableBorder)
		for i, a := range n.Alignments {
			align := columnAlign(a)
			b.Column(i, func(c *table.ColumnBuilder) { c.SetAlign(align) })
		}
		b.Header(func(s *table.SectionBuilder) { s.SetStyle(t.TableHeader) })
		b.Body(func(s *table.SectionBuilder) { s.SetStyle(t.TableBody) })
		for row := n.FirstChild(); row != nil; row = row.NextSibling() {
			row := row
			switch row.(type) {
			case *extast.TableHeader:
				b.Header(func(s *table.SectionBuilder) { s.Row(cells(row)...) })
			case *extast.TableRow:
				b.Body(func(s *table.SectionBuilder) { s.Row(cells(row)...) })
			}
		}
	})
	if cellErr != nil {
		return nil, cellErr
	}
	if err != nil {
		return nil, fmt.Errorf("building markdown table: %w", err)
	}
	return tbl, nil
}

func columnAlign(a extast.Alignment) rendering.TextAlign {
	switch a {
	case extast.AlignRight:
		return rendering.TextAlignRight
	case extast.AlignCenter:
		return rendering.TextAlignCenter
	default:
		return rendering.TextAlignLeft
	}
}

// inlines renders the inline children of node into styled lines.
func (d *document) inlines(node ast.Node, style rendering.TextStyle) rendering.Lines {
	var lines rendering.Lines
	add := func(text string, s rendering.TextStyle) {
		if text != "" {
			lines = lines.Concat(rendering.ParseText(text, s))
		}
	}
	var walk func(n ast.Node, s rendering.TextStyle)
	children := func(n ast.Node, s rendering.TextStyle) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c, s)
		}
	}
	t := d.r.theme

	walk = func(n ast.Node, s rendering.TextStyle) {
		switch n := n.(type) {
		case *ast.Text:
			add(string(n.Segment.Value(d.source)), s)
			switch {
			case n.HardLineBreak():
				add(hardBreak, s)
			case n.SoftLineBreak():
				add(" ", s)
			}

		case *ast.String:
			add(string(n.Value), s)

		case *ast.CodeSpan:
			add(strings.TrimSpace(plainText(n, d.source)), s.Combine(t.CodeSpan))

		case *ast.Emphasis:
			mark := t.Emphasis
			if n.Level >= 2 {
				mark = t.Strong
			}
			children(n, s.Combine(mark))

		case *extast.Strikethrough:
			children(n, s.Combine(t.Strikethrough))

		case *ast.Link:
			dest := string(n.Destination)
			if d.r.hyperlinks && strings.TrimSpace(dest) != "" {
				children(n, s.Combine(t.LinkText).WithHyperlink(dest))
				return
			}
			children(n, s.Combine(t.LinkText))
			if dest != "" {
				add("("+dest+")", s.Combine(t.LinkDestination))
			}

		case *ast.AutoLink:
			url := string(n.URL(d.source))
			ls := s.Combine(t.LinkText)
			if d.r.hyperlinks {
				ls = ls.WithHyperlink(url)
			}
			add(string(n.Label(d.source)), ls)

		case *ast.Image:
			alt := plainText(n, d.source)
			if alt == "" {
				return
			}
			add(t.Symbols.ImagePrefix+" ", s)
			add(alt, s.Combine(t.ImageAlt))

		case *ast.RawHTML:
			if !d.r.showHTML {
				return
			}
			for i := 0; i < n.Segments.Len(); i++ {
				seg := n.Segments.At(i)
				add(string(seg.Value(d.source)), s)
			}

		case *extast.TaskCheckBox:
			box := t.Symbols.TaskUnchecked
			if n.IsChecked {
				box = t.Symbols.TaskChecked
			}
			add(box+" ", s.Combine(t.ListBullet))

		default:
			children(n, s)
		}
	}
	children(node, style)
	return lines
}

// blockQuote draws a bar down the left of its content.
type blockQuote struct {
	content rendering.Widget
	bar     rendering.Span
	style   rendering.TextStyle
}

func (q *blockQuote) Measure(ctx rendering.RenderContext, width int) rendering.WidthRange {
	return q.content.Measure(ctx, width-2).Add(2)
}

func (q *blockQuote) Render(ctx rendering.RenderContext, width int) rendering.Lines {
	lines := q.content.Render(ctx, max(width-2, 0)).WithStyle(q.style)
	out := make(rendering.Lines, len(lines))
	for i, l := range lines {
		if len(l.Spans) == 0 {
			out[i] = rendering.NewLine(q.bar)
			continue
		}
		spans := make([]rendering.Span, 0, len(l.Spans)+2)
		spans = append(spans, q.bar, rendering.Space(1, q.style))
		spans = append(spans, l.Spans...)
		out[i] = rendering.Line{Spans: spans, EndStyle: l.EndStyle}
	}
	return out
}
