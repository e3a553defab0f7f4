package table

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
	"github.com/odvcencio/textgrid/pkg/widgets"
)

// Document is a declarative table, read from YAML files or JSON requests.
// Unset fields leave whatever the defaults function passed to Build chose.
type Document struct {
	Border        string           `yaml:"border,omitempty" json:"border,omitempty"`
	OuterBorder   *bool            `yaml:"outer_border,omitempty" json:"outer_border,omitempty"`
	CellBorders   *Borders         `yaml:"cell_borders,omitempty" json:"cell_borders,omitempty"`
	Padding       *widgets.Padding `yaml:"padding,omitempty" json:"padding,omitempty"`
	Whitespace    string           `yaml:"whitespace,omitempty" json:"whitespace,omitempty"`
	Align         string           `yaml:"align,omitempty" json:"align,omitempty"`
	Overflow      string           `yaml:"overflow,omitempty" json:"overflow,omitempty"`
	Columns       []ColumnDocument `yaml:"columns,omitempty" json:"columns,omitempty"`
	Header        []RowDocument    `yaml:"header,omitempty" json:"header,omitempty"`
	Body          []RowDocument    `yaml:"body,omitempty" json:"body,omitempty"`
	Footer        []RowDocument    `yaml:"footer,omitempty" json:"footer,omitempty"`
	CaptionTop    string           `yaml:"caption_top,omitempty" json:"caption_top,omitempty"`
	CaptionBottom string           `yaml:"caption_bottom,omitempty" json:"caption_bottom,omitempty"`
}

// ColumnDocument configures one column by position.
type ColumnDocument struct {
	Width *ColumnWidth `yaml:"width,omitempty" json:"width,omitempty"`
	Align string       `yaml:"align,omitempty" json:"align,omitempty"`
}

// RowDocument is one row of cells.
type RowDocument []CellDocument

// CellDocument is one cell. A bare scalar is shorthand for {text: ...}.
type CellDocument struct {
	Text       string        `yaml:"text" json:"text"`
	ColumnSpan int           `yaml:"column_span,omitempty" json:"column_span,omitempty"`
	RowSpan    int           `yaml:"row_span,omitempty" json:"row_span,omitempty"`
	Align      string        `yaml:"align,omitempty" json:"align,omitempty"`
	Style      StyleDocument `yaml:"style,omitempty" json:"style,omitempty"`
}

// StyleDocument names a text style.
type StyleDocument struct {
	FG            string `yaml:"fg,omitempty" json:"fg,omitempty"`
	BG            string `yaml:"bg,omitempty" json:"bg,omitempty"`
	Bold          bool   `yaml:"bold,omitempty" json:"bold,omitempty"`
	Dim           bool   `yaml:"dim,omitempty" json:"dim,omitempty"`
	Italic        bool   `yaml:"italic,omitempty" json:"italic,omitempty"`
	Underline     bool   `yaml:"underline,omitempty" json:"underline,omitempty"`
	Strikethrough bool   `yaml:"strikethrough,omitempty" json:"strikethrough,omitempty"`
	Link          string `yaml:"link,omitempty" json:"link,omitempty"`
}

// UnmarshalYAML accepts a scalar or a mapping.
func (c *CellDocument) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Tag != "!!null" {
			c.Text = node.Value
		}
		return nil
	}
	type plain CellDocument
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = CellDocument(p)
	return nil
}

// UnmarshalJSON accepts a string, number, boolean or object.
func (c *CellDocument) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		return nil
	case data[0] == '{':
		type plain CellDocument
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*c = CellDocument(p)
		return nil
	case data[0] == '"':
		return json.Unmarshal(data, &c.Text)
	default:
		c.Text = string(data)
		return nil
	}
}

// ParseDocument decodes a YAML (or JSON, which YAML accepts) document.
func ParseDocument(data []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "parsing table document")
	}
	return &d, nil
}

// DocumentFromRecords builds a document from CSV-style records. When
// header is set the first record becomes the header row.
func DocumentFromRecords(records [][]string, header bool) *Document {
	d := &Document{}
	for i, rec := range records {
		row := make(RowDocument, len(rec))
		for j, field := range rec {
			row[j] = CellDocument{Text: field}
		}
		if header && i == 0 {
			d.Header = append(d.Header, row)
		} else {
			d.Body = append(d.Body, row)
		}
	}
	return d
}

// Build declares the table. defaults, when non-nil, runs first so the
// document can override it.
func (d *Document) Build(defaults func(*Builder)) (*Table, error) {
	apply, err := d.compile()
	if err != nil {
		return nil, err
	}
	return New(func(b *Builder) {
		if defaults != nil {
			defaults(b)
		}
		apply(b)
	})
}

func invalidField(field, value string, err error) error {
	return errors.Wrap(err, errors.ErrCodeInvalidInput, fmt.Sprintf("invalid %s %q", field, value)).
		WithContext("field", field)
}

// compile validates every named option up front so that the builder
// function itself cannot fail on them.
func (d *Document) compile() (func(*Builder), error) {
	var steps []func(*Builder)

	if d.Border != "" {
		bt, err := rendering.ParseBorderType(d.Border)
		if err != nil {
			return nil, invalidField("border", d.Border, err)
		}
		steps = append(steps, func(b *Builder) { b.BorderType(bt) })
	}
	if d.OuterBorder != nil {
		on := *d.OuterBorder
		steps = append(steps, func(b *Builder) { b.OuterBorder(on) })
	}
	if d.CellBorders != nil {
		borders := *d.CellBorders
		steps = append(steps, func(b *Builder) { b.SetBorders(borders) })
	}
	if d.Padding != nil {
		p := *d.Padding
		if err := p.Validate(); err != nil {
			return nil, err
		}
		steps = append(steps, func(b *Builder) { b.SetPadding(p) })
	}
	if d.Whitespace != "" {
		ws, err := rendering.ParseWhitespace(d.Whitespace)
		if err != nil {
			return nil, invalidField("whitespace", d.Whitespace, err)
		}
		steps = append(steps, func(b *Builder) { b.SetWhitespace(ws) })
	}
	if d.Align != "" {
		a, err := rendering.ParseTextAlign(d.Align)
		if err != nil {
			return nil, invalidField("align", d.Align, err)
		}
		steps = append(steps, func(b *Builder) { b.SetAlign(a) })
	}
	if d.Overflow != "" {
		o, err := rendering.ParseOverflowWrap(d.Overflow)
		if err != nil {
			return nil, invalidField("overflow", d.Overflow, err)
		}
		steps = append(steps, func(b *Builder) { b.SetOverflow(o) })
	}

	for i, col := range d.Columns {
		i, col := i, col
		var align *rendering.TextAlign
		if col.Align != "" {
			a, err := rendering.ParseTextAlign(col.Align)
			if err != nil {
				return nil, invalidField("columns.align", col.Align, err)
			}
			align = &a
		}
		steps = append(steps, func(b *Builder) {
			b.Column(i, func(c *ColumnBuilder) {
				if col.Width != nil {
					c.Width(*col.Width)
				}
				if align != nil {
					c.SetAlign(*align)
				}
			})
		})
	}

	sections := []struct {
		rows []RowDocument
		open func(*Builder, func(*SectionBuilder))
	}{
		{d.Header, (*Builder).Header},
		{d.Body, (*Builder).Body},
		{d.Footer, (*Builder).Footer},
	}
	for _, sec := range sections {
		if len(sec.rows) == 0 {
			continue
		}
		rows, err := compileRows(sec.rows)
		if err != nil {
			return nil, err
		}
		open := sec.open
		steps = append(steps, func(b *Builder) {
			open(b, func(s *SectionBuilder) {
				for _, row := range rows {
					r := s.Row()
					for _, cell := range row {
						r.Cell(cell.text, cell.configure)
					}
				}
			})
		})
	}

	if d.CaptionTop != "" {
		text := d.CaptionTop
		steps = append(steps, func(b *Builder) { b.CaptionTopText(text, rendering.TextAlignCenter) })
	}
	if d.CaptionBottom != "" {
		text := d.CaptionBottom
		steps = append(steps, func(b *Builder) { b.CaptionBottomText(text, rendering.TextAlignCenter) })
	}

	return func(b *Builder) {
		for _, step := range steps {
			step(b)
		}
	}, nil
}

type compiledCell struct {
	text      string
	configure func(*CellBuilder)
}

func compileRows(rows []RowDocument) ([][]compiledCell, error) {
	out := make([][]compiledCell, len(rows))
	for y, row := range rows {
		out[y] = make([]compiledCell, len(row))
		for x, cell := range row {
			compiled, err := compileCell(cell)
			if err != nil {
				return nil, err
			}
			out[y][x] = compiled
		}
	}
	return out, nil
}

func compileCell(cell CellDocument) (compiledCell, error) {
	style, err := cell.Style.TextStyle()
	if err != nil {
		return compiledCell{}, err
	}
	var align *rendering.TextAlign
	if cell.Align != "" {
		a, err := rendering.ParseTextAlign(cell.Align)
		if err != nil {
			return compiledCell{}, invalidField("cell.align", cell.Align, err)
		}
		align = &a
	}
	return compiledCell{
		text: cell.Text,
		configure: func(c *CellBuilder) {
			if cell.ColumnSpan != 0 {
				c.ColumnSpan(cell.ColumnSpan)
			}
			if cell.RowSpan != 0 {
				c.RowSpan(cell.RowSpan)
			}
			if align != nil {
				c.SetAlign(*align)
			}
			if !style.IsZero() {
				c.SetStyle(style)
			}
		},
	}, nil
}

// TextStyle converts the document into a text style.
func (s StyleDocument) TextStyle() (rendering.TextStyle, error) {
	var ts rendering.TextStyle
	if s.FG != "" {
		c, err := rendering.ParseColor(s.FG)
		if err != nil {
			return ts, invalidField("style.fg", s.FG, err)
		}
		ts = ts.WithFG(c)
	}
	if s.BG != "" {
		c, err := rendering.ParseColor(s.BG)
		if err != nil {
			return ts, invalidField("style.bg", s.BG, err)
		}
		ts = ts.WithBG(c)
	}
	if s.Bold {
		ts = ts.Bold()
	}
	if s.Dim {
		ts = ts.Dim()
	}
	if s.Italic {
		ts = ts.Italic()
	}
	if s.Underline {
		ts = ts.Underline()
	}
	if s.Strikethrough {
		ts = ts.Strikethrough()
	}
	if s.Link != "" {
		ts = ts.WithHyperlink(s.Link)
	}
	return ts, nil
}
