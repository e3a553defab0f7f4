package table

import (
	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
)

// Builder declares a table. Attributes set directly on the Builder apply
// to every cell unless a more specific level overrides them.
//
// Builder methods never fail; invalid input is recorded and reported by New.
type Builder struct {
	CellStyle

	borderType   rendering.BorderType
	borderStyle  rendering.TextStyle
	tableBorders *Borders

	columns map[int]*ColumnBuilder
	header  *SectionBuilder
	body    *SectionBuilder
	footer  *SectionBuilder

	captionTop    rendering.Widget
	captionBottom rendering.Widget

	addPaddingWidthToFixedWidth bool

	err error
}

func newBuilder() *Builder {
	b := &Builder{
		borderType: rendering.BorderSquare,
		columns:    make(map[int]*ColumnBuilder),
	}
	b.header = newSectionBuilder(b)
	b.body = newSectionBuilder(b)
	b.footer = newSectionBuilder(b)
	return b
}

// fail records the first error raised while declaring the table.
func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// BorderType sets the glyph set used for borders.
func (b *Builder) BorderType(bt rendering.BorderType) { b.borderType = bt }

// BorderStyle sets the style of border glyphs.
func (b *Builder) BorderStyle(s rendering.TextStyle) { b.borderStyle = s }

// OuterBorder controls the outer frame. Disabling it is shorthand for
// TableBorders(BordersNone); enabling it lets cell borders decide.
func (b *Builder) OuterBorder(on bool) {
	if on {
		b.tableBorders = nil
		return
	}
	b.tableBorders = ptr(BordersNone)
}

// TableBorders forces which outer edges of the table draw lines, overriding
// the edges of the outermost cells.
func (b *Builder) TableBorders(borders Borders) { b.tableBorders = ptr(borders) }

// AddPaddingWidthToFixedWidth makes fixed column widths describe the
// content area, with cell padding added on top.
func (b *Builder) AddPaddingWidthToFixedWidth(on bool) { b.addPaddingWidthToFixedWidth = on }

// Column configures column i for every section.
func (b *Builder) Column(i int, fn func(*ColumnBuilder)) {
	col, ok := columnAt(b, b.columns, i)
	if ok && fn != nil {
		fn(col)
	}
}

// Header declares the header section.
func (b *Builder) Header(fn func(*SectionBuilder)) { fn(b.header) }

// Body declares the body section.
func (b *Builder) Body(fn func(*SectionBuilder)) { fn(b.body) }

// Footer declares the footer section.
func (b *Builder) Footer(fn func(*SectionBuilder)) { fn(b.footer) }

// CaptionTop places w above the table.
func (b *Builder) CaptionTop(w rendering.Widget) { b.captionTop = w }

// CaptionBottom places w below the table.
func (b *Builder) CaptionBottom(w rendering.Widget) { b.captionBottom = w }

// CaptionTopText places a line of text above the table.
func (b *Builder) CaptionTopText(text string, align rendering.TextAlign) {
	b.captionTop = captionText(text, align)
}

// CaptionBottomText places a line of text below the table.
func (b *Builder) CaptionBottomText(text string, align rendering.TextAlign) {
	b.captionBottom = captionText(text, align)
}

func columnAt(b *Builder, cols map[int]*ColumnBuilder, i int) (*ColumnBuilder, bool) {
	if i < 0 {
		b.fail(errors.New(errors.ErrCodeInvalidColumn, "column index cannot be negative").
			WithContext("column", i))
		return nil, false
	}
	col, ok := cols[i]
	if !ok {
		col = &ColumnBuilder{owner: b}
		cols[i] = col
	}
	return col, true
}

// ColumnBuilder configures one column.
type ColumnBuilder struct {
	CellStyle
	owner *Builder
	width *ColumnWidth
}

// Width sets the sizing policy.
func (c *ColumnBuilder) Width(w ColumnWidth) { c.width = &w }

// FixedWidth is shorthand for Width(Fixed(w)).
func (c *ColumnBuilder) FixedWidth(w int) {
	cw, err := Fixed(w)
	if err != nil {
		c.owner.fail(err)
		return
	}
	c.Width(cw)
}

// ExpandWidth is shorthand for Width(Expand(weight)).
func (c *ColumnBuilder) ExpandWidth(weight float64) {
	cw, err := Expand(weight)
	if err != nil {
		c.owner.fail(err)
		return
	}
	c.Width(cw)
}

func (c *ColumnBuilder) cellStyle() *CellStyle {
	if c == nil {
		return nil
	}
	return &c.CellStyle
}

func (c *ColumnBuilder) policy() *ColumnWidth {
	if c == nil {
		return nil
	}
	return c.width
}

// SectionBuilder declares the rows of a header, body or footer.
type SectionBuilder struct {
	CellStyle
	owner     *Builder
	columns   map[int]*ColumnBuilder
	rows      []*RowBuilder
	rowStyles []rendering.TextStyle
}

func newSectionBuilder(b *Builder) *SectionBuilder {
	return &SectionBuilder{owner: b, columns: make(map[int]*ColumnBuilder)}
}

// Column configures column i within this section.
func (s *SectionBuilder) Column(i int, fn func(*ColumnBuilder)) {
	col, ok := columnAt(s.owner, s.columns, i)
	if ok && fn != nil {
		fn(col)
	}
}

// RowStyles stripes rows: row y gets styles[y % len(styles)].
func (s *SectionBuilder) RowStyles(styles ...rendering.TextStyle) {
	s.rowStyles = append([]rendering.TextStyle(nil), styles...)
}

// Row appends a row of cells. Strings and other values become text;
// rendering.Widget values are used as is.
func (s *SectionBuilder) Row(cells ...any) *RowBuilder {
	r := &RowBuilder{owner: s.owner}
	r.Cells(cells...)
	s.rows = append(s.rows, r)
	return r
}

// RowFunc appends a row configured by fn.
func (s *SectionBuilder) RowFunc(fn func(*RowBuilder)) {
	r := s.Row()
	fn(r)
}

// Rows appends one row per entry.
func (s *SectionBuilder) Rows(rows ...[]any) {
	for _, cells := range rows {
		s.Row(cells...)
	}
}

// RowBuilder declares one row.
type RowBuilder struct {
	CellStyle
	owner *Builder
	cells []*CellBuilder
}

// Cell appends a cell holding content.
func (r *RowBuilder) Cell(content any, fns ...func(*CellBuilder)) *RowBuilder {
	c := &CellBuilder{owner: r.owner, content: content, rowSpan: 1, columnSpan: 1}
	for _, fn := range fns {
		fn(c)
	}
	r.cells = append(r.cells, c)
	return r
}

// Cells appends one cell per value.
func (r *RowBuilder) Cells(contents ...any) *RowBuilder {
	for _, c := range contents {
		r.Cell(c)
	}
	return r
}

// CellBuilder declares one cell.
type CellBuilder struct {
	CellStyle
	owner      *Builder
	content    any
	rowSpan    int
	columnSpan int
}

// ColumnSpan makes the cell cover n columns.
func (c *CellBuilder) ColumnSpan(n int) {
	if n <= 0 {
		c.owner.fail(errors.New(errors.ErrCodeInvalidSpanCount, "columnSpan must be greater than 0").
			WithContext("column_span", n))
		return
	}
	c.columnSpan = n
}

// RowSpan makes the cell cover n rows.
func (c *CellBuilder) RowSpan(n int) {
	if n <= 0 {
		c.owner.fail(errors.New(errors.ErrCodeInvalidSpanCount, "rowSpan must be greater than 0").
			WithContext("row_span", n))
		return
	}
	c.rowSpan = n
}
