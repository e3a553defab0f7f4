package table

import (
	"strings"

	"github.com/odvcencio/textgrid/pkg/rendering"
)

// renderer draws one table at one set of column widths. It is built fresh
// for every Render call and never shared.
type renderer struct {
	grid        *Grid
	topo        *topology
	ctx         rendering.RenderContext
	borderStyle rendering.TextStyle
	widths      []int

	rendered   [][]rendering.Lines
	rowHeights []int
	lines      [][]rendering.Span
}

func newRenderer(g *Grid, topo *topology, ctx rendering.RenderContext, borderStyle rendering.TextStyle, widths []int) *renderer {
	r := &renderer{grid: g, topo: topo, ctx: ctx, borderStyle: borderStyle, widths: widths}
	r.renderContents()

	total := 0
	for _, h := range r.rowHeights {
		total += h
	}
	for _, b := range topo.rowBorders {
		if b {
			total++
		}
	}
	r.lines = make([][]rendering.Span, total)
	return r
}

// renderContents renders every content cell at its final width and derives
// row heights from the results.
func (r *renderer) renderContents() {
	rows := r.grid.RowCount()
	r.rendered = make([][]rendering.Lines, rows)
	r.rowHeights = make([]int, rows)
	for y := 0; y < rows; y++ {
		r.rendered[y] = make([]rendering.Lines, r.grid.ColumnCount())
		height := 1
		for x := range r.rendered[y] {
			c, ok := r.grid.Lookup(x, y)
			if !ok || c.Kind != KindContent {
				continue
			}
			content := r.grid.Content(c)
			width := r.cellWidth(x, content.ColumnSpan)
			if width <= 0 {
				continue
			}
			lines := content.Widget.Render(r.ctx, width).WithStyle(content.Style)
			r.rendered[y][x] = lines
			height = max(height, lines.Height()/content.RowSpan)
		}
		r.rowHeights[y] = height
	}
}

// cellWidth is the width of a cell covering span columns from x, including
// the border columns it swallows.
func (r *renderer) cellWidth(x, span int) int {
	w := 0
	for i := x; i < x+span && i < len(r.widths); i++ {
		w += r.widths[i]
	}
	for i := x + 1; i < x+span && i < len(r.topo.columnBorders); i++ {
		if r.topo.columnBorders[i] {
			w++
		}
	}
	return w
}

func (r *renderer) cellHeight(y, span int) int {
	h := 0
	for i := y; i < y+span && i < len(r.rowHeights); i++ {
		h += r.rowHeights[i]
	}
	for i := y + 1; i < y+span && i < len(r.topo.rowBorders); i++ {
		if r.topo.rowBorders[i] {
			h++
		}
	}
	return h
}

func (r *renderer) render() rendering.Lines {
	cols := len(r.widths)
	for x := 0; x < cols; x++ {
		r.drawLeftBorderForColumn(x)
		lineY := 0
		for y := 0; y < r.grid.RowCount(); y++ {
			cell := r.grid.At(x, y)
			lineY += r.drawTopBorderForCell(lineY, x, y, cell.Top)
			r.drawCell(lineY, cell, x, y)
			lineY += r.rowHeights[y]
		}
	}
	r.drawLeftBorderForColumn(cols)
	r.drawBottomBorder()

	out := make(rendering.Lines, len(r.lines))
	for i, spans := range r.lines {
		out[i] = rendering.NewLine(spans...)
	}
	return out
}

func (r *renderer) glyph(s string) rendering.Span {
	return rendering.MustWord(s, r.borderStyle)
}

func (r *renderer) drawLeftBorderForColumn(x int) {
	if !r.topo.columnBorders[x] {
		return
	}
	cols := r.grid.ColumnCount()
	lineY := 0
	for y := 0; y < r.grid.RowCount(); y++ {
		height := r.rowHeights[y]
		top := 0
		if r.topo.rowBorders[y] {
			if g, ok := r.topo.corner(x, y); ok {
				r.lines[lineY] = append(r.lines[lineY], r.glyph(g))
			}
			top = 1
		}

		cell := r.grid.At(x, y)
		if cell.Left.IsSet() {
			line := (x == 0 && r.topo.outerLeft()) ||
				(x == cols && r.topo.outerRight()) ||
				cell.Left.IsLine() ||
				r.topo.edges(x-1, y).Right.IsLine()
			span := rendering.Space(1, r.borderStyle)
			if line {
				span = r.glyph(r.topo.section(y, false).NS)
			}
			for i := 0; i < height; i++ {
				l := lineY + top + i
				r.lines[l] = append(r.lines[l], span)
			}
		}
		lineY += height + top
	}
}

// drawTopBorderForCell draws the border segment above cell (x, y) and
// returns how many lines it occupies.
func (r *renderer) drawTopBorderForCell(lineY, x, y int, top BorderFlag) int {
	if !r.topo.rowBorders[y] {
		return 0
	}
	width := r.widths[x]
	if width == 0 || !top.IsSet() {
		return 1
	}

	line := top.IsLine() ||
		(y == 0 && r.topo.outerTop()) ||
		(y == r.grid.RowCount() && r.topo.outerBottom()) ||
		r.topo.edges(x, y-1).Bottom.IsLine()
	if line {
		seg := strings.Repeat(r.topo.section(y, true).EW, width)
		r.lines[lineY] = append(r.lines[lineY], r.glyph(seg))
	} else {
		r.lines[lineY] = append(r.lines[lineY], rendering.Space(width, r.borderStyle))
	}
	return 1
}

func (r *renderer) drawCell(lineY int, cell Cell, x, y int) {
	switch cell.Kind {
	case KindSpanRef:
		return
	case KindEmpty:
		if r.widths[x] == 0 {
			return
		}
		blank := rendering.Space(r.widths[x], rendering.DefaultStyle)
		for i := 0; i < r.rowHeights[y]; i++ {
			r.lines[lineY+i] = append(r.lines[lineY+i], blank)
		}
		return
	}

	content := r.grid.Content(cell)
	width := r.cellWidth(x, content.ColumnSpan)
	height := r.cellHeight(y, content.RowSpan)
	lines := r.rendered[y][x].SetSize(width, height, content.VerticalAlign, content.Align)
	for i, l := range lines {
		r.lines[lineY+i] = append(r.lines[lineY+i], l.Spans...)
	}
}

func (r *renderer) drawBottomBorder() {
	rows, cols := r.grid.RowCount(), len(r.widths)
	if !r.topo.rowBorders[rows] {
		return
	}
	last := len(r.lines) - 1
	for x := 0; x < cols; x++ {
		if r.topo.columnBorders[x] {
			if g, ok := r.topo.corner(x, rows); ok {
				r.lines[last] = append(r.lines[last], r.glyph(g))
			}
		}
		r.drawTopBorderForCell(last, x, rows, BorderBlank)
	}
	if r.topo.columnBorders[cols] {
		if g, ok := r.topo.corner(cols, rows); ok {
			r.lines[last] = append(r.lines[last], r.glyph(g))
		}
	}
}
