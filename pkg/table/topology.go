package table

import "github.com/odvcencio/textgrid/pkg/rendering"

// topology answers where border lines run. A row border line y sits above
// row y; column border x sits left of column x. Index RowCount and
// ColumnCount are the bottom and right outer edges.
type topology struct {
	grid       *Grid
	outer      *Borders
	borderType rendering.BorderType

	rowBorders    []bool
	columnBorders []bool
	borderWidth   int
}

func newTopology(g *Grid, outer *Borders, bt rendering.BorderType) *topology {
	t := &topology{grid: g, outer: outer, borderType: bt}
	rows, cols := g.RowCount(), g.ColumnCount()

	t.rowBorders = make([]bool, rows+1)
	for y := range t.rowBorders {
		switch {
		case y == 0 && outer != nil:
			t.rowBorders[y] = outer.Top()
		case y == rows && outer != nil:
			t.rowBorders[y] = outer.Bottom()
		default:
			for x := 0; x < cols; x++ {
				if t.edges(x, y).Top.IsLine() || t.edges(x, y-1).Bottom.IsLine() {
					t.rowBorders[y] = true
					break
				}
			}
		}
	}

	t.columnBorders = make([]bool, cols+1)
	for x := range t.columnBorders {
		switch {
		case x == 0 && outer != nil:
			t.columnBorders[x] = outer.Left()
		case x == cols && outer != nil:
			t.columnBorders[x] = outer.Right()
		default:
			for y := 0; y < rows; y++ {
				if t.edges(x, y).Left.IsLine() || t.edges(x-1, y).Right.IsLine() {
					t.columnBorders[x] = true
					break
				}
			}
		}
		if t.columnBorders[x] {
			t.borderWidth++
		}
	}
	return t
}

// edges returns the border flags at (x, y). Slots outside the declared
// rows have no flags at all.
func (t *topology) edges(x, y int) Edges {
	c, ok := t.grid.Lookup(x, y)
	if !ok {
		return Edges{}
	}
	return c.Edges
}

func (t *topology) outerLeft() bool   { return t.outer != nil && t.outer.Left() }
func (t *topology) outerTop() bool    { return t.outer != nil && t.outer.Top() }
func (t *topology) outerRight() bool  { return t.outer != nil && t.outer.Right() }
func (t *topology) outerBottom() bool { return t.outer != nil && t.outer.Bottom() }

// corner returns the glyph where row border y meets column border x. ok is
// false inside a spanning cell, where nothing may be drawn.
func (t *topology) corner(x, y int) (glyph string, ok bool) {
	rows, cols := t.grid.RowCount(), t.grid.ColumnCount()
	tl, tlOK := t.grid.Lookup(x-1, y-1)
	tr, trOK := t.grid.Lookup(x, y-1)
	bl, blOK := t.grid.Lookup(x-1, y)
	br, brOK := t.grid.Lookup(x, y)

	if (tlOK || trOK || blOK || brOK) &&
		!tl.Right.IsSet() && !tr.Left.IsSet() &&
		!tr.Bottom.IsSet() && !br.Top.IsSet() &&
		!bl.Right.IsSet() && !br.Left.IsSet() &&
		!tl.Bottom.IsSet() && !bl.Top.IsSet() {
		return "", false
	}

	vertical := (x == 0 && t.outerLeft()) || (x == cols && t.outerRight())
	horizontal := (y == 0 && t.outerTop()) || (y == rows && t.outerBottom())

	n := tl.Right.IsLine() || tr.Left.IsLine() || (y > 0 && vertical)
	e := tr.Bottom.IsLine() || br.Top.IsLine() || (x < cols && horizontal)
	s := bl.Right.IsLine() || br.Left.IsLine() || (y < rows && vertical)
	w := tl.Bottom.IsLine() || bl.Top.IsLine() || (x > 0 && horizontal)

	return t.section(y, true).Corner(n, e, s, w), true
}

// section picks the glyph set for row border y, or for the content of
// row y when allowBottom is false.
func (t *topology) section(y int, allowBottom bool) rendering.BorderTypeSection {
	rows := t.grid.RowCount()
	header, footer := t.grid.HeaderRows(), t.grid.FooterRows()
	switch {
	case y < header:
		return t.borderType.Head
	case allowBottom && header > 0 && y == header:
		return t.borderType.HeadBottom
	case allowBottom && footer > 0 && y == rows-footer:
		return t.borderType.BodyBottom
	case footer == 0 || y < rows-footer:
		return t.borderType.Body
	default:
		return t.borderType.Foot
	}
}
