package table

import (
	"fmt"

	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
	"github.com/odvcencio/textgrid/pkg/widgets"
)

// layout places declared cells onto a Grid. Sections are laid out one at a
// time; rows never span from one section into another.
type layout struct {
	b            *Builder
	builderWidth int
	contents     []Content
}

// build resolves every cell's attributes and returns the finished grid
// together with the effective policy of each column.
func build(b *Builder) (*Grid, []ColumnWidth, error) {
	l := &layout{b: b}
	for _, s := range []*SectionBuilder{b.header, b.body, b.footer} {
		for _, r := range s.rows {
			l.builderWidth = max(l.builderWidth, len(r.cells))
		}
	}

	var rows [][]Cell
	for _, s := range []*SectionBuilder{b.header, b.body, b.footer} {
		sectionRows, err := l.buildSection(s)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, sectionRows...)
	}

	g := &Grid{
		rows:       rows,
		headerRows: len(b.header.rows),
		footerRows: len(b.footer.rows),
	}
	if len(rows) == 0 {
		l.emptyTable(g)
	}
	g.contents = l.contents
	for _, r := range g.rows {
		g.columnCount = max(g.columnCount, len(r))
	}

	policies := make([]ColumnWidth, g.columnCount)
	for x := range policies {
		policies[x] = strongest(
			b.columns[x].policy(),
			b.header.columns[x].policy(),
			b.body.columns[x].policy(),
			b.footer.columns[x].policy(),
		)
	}
	return g, policies, nil
}

// emptyTable gives a table with no rows a single empty cell so it still
// draws its outer border.
func (l *layout) emptyTable(g *Grid) {
	outer := BordersAll
	if l.b.tableBorders != nil {
		outer = *l.b.tableBorders
	}
	l.contents = append(l.contents, Content{
		Widget:        widgets.Empty,
		RowSpan:       1,
		ColumnSpan:    1,
		Align:         rendering.TextAlignLeft,
		VerticalAlign: rendering.VerticalAlignTop,
	})
	g.rows = [][]Cell{{{
		Kind: KindContent,
		Edges: Edges{
			Left:   flagOf(outer.Left()),
			Top:    flagOf(outer.Top()),
			Right:  flagOf(outer.Right()),
			Bottom: flagOf(outer.Bottom()),
		},
	}}}
}

func (l *layout) buildSection(s *SectionBuilder) ([][]Cell, error) {
	rows := make([][]Cell, len(s.rows))
	for y, row := range s.rows {
		x := 0
		for _, cb := range row.cells {
			x = findEmptyColumn(rows, x, y)
			if err := l.insertCell(rows, s, row, cb, x, y); err != nil {
				return nil, err
			}
			x++
		}
	}
	return rows, nil
}

// findEmptyColumn returns the first empty slot of row y at or after x,
// growing the row when there is none.
func findEmptyColumn(rows [][]Cell, x, y int) int {
	row := rows[y]
	if x >= len(row) {
		ensureWidth(rows, y, x+1)
		return x
	}
	for i := x; i < len(row); i++ {
		if row[i].Kind == KindEmpty {
			return i
		}
	}
	ensureWidth(rows, y, len(row)+1)
	return len(row)
}

func ensureWidth(rows [][]Cell, y, width int) {
	for len(rows[y]) < width {
		rows[y] = append(rows[y], emptyCell)
	}
}

func (l *layout) insertCell(rows [][]Cell, s *SectionBuilder, row *RowBuilder, cb *CellBuilder, startX, startY int) error {
	// Spans are truncated rather than growing the table: a cell may only
	// cover the columns its rows leave unused, and never leave its section.
	maxRowSize := 0
	for y := startY; y < startY+cb.rowSpan && y < len(s.rows); y++ {
		maxRowSize = max(maxRowSize, len(s.rows[y].cells))
	}
	columnSpan := min(cb.columnSpan, l.builderWidth-maxRowSize+1)
	rowSpan := min(cb.rowSpan, len(rows)-startY)

	tableCol, sectionCol := l.b.columns[startX], s.columns[startX]
	levels := []*CellStyle{
		&cb.CellStyle,
		&row.CellStyle,
		sectionCol.cellStyle(),
		tableCol.cellStyle(),
		&s.CellStyle,
		&l.b.CellStyle,
	}
	var striped *rendering.TextStyle
	if n := len(s.rowStyles); n > 0 {
		striped = &s.rowStyles[startY%n]
	}
	styles := []*rendering.TextStyle{cb.style, row.style, striped}
	if sectionCol != nil {
		styles = append(styles, sectionCol.style)
	}
	if tableCol != nil {
		styles = append(styles, tableCol.style)
	}
	styles = append(styles, s.style, l.b.style)

	rs := resolve(levels, styles)
	if err := rs.padding.Validate(); err != nil {
		return err
	}

	content, err := NewContent(l.widget(cb.content, rs), rowSpan, columnSpan)
	if err != nil {
		return err
	}
	content.Style = rs.style
	content.Align = rs.align
	content.VerticalAlign = rs.verticalAlign
	content.PaddingWidth = rs.padding.Width()

	ref := len(l.contents)
	l.contents = append(l.contents, content)

	b := rs.borders
	lastX, lastY := startX+columnSpan-1, startY+rowSpan-1
	for y := startY; y <= lastY; y++ {
		for x := startX; x <= lastX; x++ {
			var c Cell
			if x == startX && y == startY {
				c = Cell{Kind: KindContent, Ref: ref, Edges: Edges{
					Left: flagOf(b.Left()),
					Top:  flagOf(b.Top()),
				}}
				if columnSpan == 1 {
					c.Right = flagOf(b.Right())
				}
				if rowSpan == 1 {
					c.Bottom = flagOf(b.Bottom())
				}
			} else {
				c = Cell{Kind: KindSpanRef, Ref: ref}
				if x == startX {
					c.Left = flagOf(b.Left())
				}
				if y == startY {
					c.Top = flagOf(b.Top())
				}
				if x == lastX {
					c.Right = flagOf(b.Right())
				}
				if y == lastY {
					c.Bottom = flagOf(b.Bottom())
				}
			}

			ensureWidth(rows, y, x+1)
			if rows[y][x].Kind != KindEmpty {
				return errors.New(errors.ErrCodeSpanOverlap, "cell spans cannot overlap").
					WithContext("row", y).
					WithContext("column", x)
			}
			rows[y][x] = c
		}
	}
	return nil
}

// widget turns declared cell content into the padded widget to render.
func (l *layout) widget(v any, rs resolvedStyle) rendering.Widget {
	var w rendering.Widget
	switch c := v.(type) {
	case nil:
		w = widgets.Empty
	case rendering.Widget:
		w = rendering.WithAlign(c, rs.align, &rs.overflow)
	default:
		text := fmt.Sprint(c)
		if text == "" {
			w = widgets.Empty
			break
		}
		t, err := widgets.NewText(text, rendering.DefaultStyle,
			widgets.WithWhitespace(rs.whitespace),
			widgets.WithTextAlign(rs.align),
			widgets.WithOverflow(rs.overflow))
		if err != nil {
			// text options carry no widths, so this cannot fail
			w = widgets.PlainText(text)
			break
		}
		w = t
	}
	return widgets.WithPadding(w, rs.padding, true)
}
