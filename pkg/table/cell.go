package table

import (
	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
)

// BorderFlag is the state of one cell edge.
type BorderFlag uint8

const (
	// BorderUnset draws nothing and lets neighbours decide.
	BorderUnset BorderFlag = iota
	// BorderBlank reserves the edge but draws spaces.
	BorderBlank
	// BorderLine draws a line.
	BorderLine
)

func flagOf(line bool) BorderFlag {
	if line {
		return BorderLine
	}
	return BorderBlank
}

// IsSet reports whether the edge carries any border attribute.
func (f BorderFlag) IsSet() bool { return f != BorderUnset }

// IsLine reports whether the edge draws a line.
func (f BorderFlag) IsLine() bool { return f == BorderLine }

// Edges holds the four border flags of a cell.
type Edges struct {
	Left, Top, Right, Bottom BorderFlag
}

// CellKind tags a Cell.
type CellKind uint8

const (
	// KindEmpty is a 1x1 placeholder with blank borders.
	KindEmpty CellKind = iota
	// KindContent is the origin slot of a declared cell.
	KindContent
	// KindSpanRef is a slot covered by a spanning cell but not its origin.
	KindSpanRef
)

func (k CellKind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindSpanRef:
		return "span-ref"
	default:
		return "empty"
	}
}

// Cell is one slot of a Grid. Content and SpanRef cells refer to their
// content by index into the grid's content arena.
type Cell struct {
	Kind CellKind
	Edges
	// Ref indexes Grid.Content for KindContent and KindSpanRef.
	Ref int
}

var emptyCell = Cell{Kind: KindEmpty, Edges: Edges{BorderBlank, BorderBlank, BorderBlank, BorderBlank}}

// Content is the payload of a declared cell.
type Content struct {
	Widget        rendering.Widget
	RowSpan       int
	ColumnSpan    int
	Style         rendering.TextStyle
	Align         rendering.TextAlign
	VerticalAlign rendering.VerticalAlign
	// PaddingWidth is the horizontal padding already wrapped around Widget.
	PaddingWidth int
}

// NewContent validates spans and returns a content payload.
func NewContent(w rendering.Widget, rowSpan, columnSpan int) (Content, error) {
	if rowSpan <= 0 {
		return Content{}, errors.New(errors.ErrCodeInvalidSpanCount, "rowSpan must be greater than 0").
			WithContext("row_span", rowSpan)
	}
	if columnSpan <= 0 {
		return Content{}, errors.New(errors.ErrCodeInvalidSpanCount, "columnSpan must be greater than 0").
			WithContext("column_span", columnSpan)
	}
	return Content{Widget: w, RowSpan: rowSpan, ColumnSpan: columnSpan}, nil
}

// Grid is the immutable cell matrix produced by Build. Rows may be shorter
// than the column count; missing slots behave as empty cells.
type Grid struct {
	rows        [][]Cell
	contents    []Content
	columnCount int
	headerRows  int
	footerRows  int
}

// RowCount returns the number of rows.
func (g *Grid) RowCount() int { return len(g.rows) }

// ColumnCount returns the length of the longest row.
func (g *Grid) ColumnCount() int { return g.columnCount }

// HeaderRows returns how many leading rows belong to the header.
func (g *Grid) HeaderRows() int { return g.headerRows }

// FooterRows returns how many trailing rows belong to the footer.
func (g *Grid) FooterRows() int { return g.footerRows }

// Lookup returns the cell at (x, y). ok is false outside the declared rows.
func (g *Grid) Lookup(x, y int) (Cell, bool) {
	if y < 0 || y >= len(g.rows) || x < 0 || x >= len(g.rows[y]) {
		return Cell{}, false
	}
	return g.rows[y][x], true
}

// At returns the cell at (x, y), or an empty cell outside the declared rows.
func (g *Grid) At(x, y int) Cell {
	if c, ok := g.Lookup(x, y); ok {
		return c
	}
	return emptyCell
}

// Content returns the payload referenced by c. It panics for empty cells.
func (g *Grid) Content(c Cell) *Content {
	if c.Kind == KindEmpty {
		panic("table: empty cell has no content")
	}
	return &g.contents[c.Ref]
}

// RowSpan returns the row span of the region c belongs to.
func (g *Grid) RowSpan(c Cell) int {
	if c.Kind == KindEmpty {
		return 1
	}
	return g.contents[c.Ref].RowSpan
}

// ColumnSpan returns the column span of the region c belongs to.
func (g *Grid) ColumnSpan(c Cell) int {
	if c.Kind == KindEmpty {
		return 1
	}
	return g.contents[c.Ref].ColumnSpan
}
