// Package table lays out bordered tables with row and column spans.
//
// Tables are declared with New and a builder function, then rendered like
// any other widget:
//
//	t, err := table.New(func(b *table.Builder) {
//		b.Header(func(s *table.SectionBuilder) { s.Row("name", "size") })
//		b.Body(func(s *table.SectionBuilder) { s.Row("a.txt", 12) })
//	})
//
// A built Table is immutable and safe to render from many goroutines.
package table

import (
	"github.com/odvcencio/textgrid/pkg/rendering"
	"github.com/odvcencio/textgrid/pkg/widgets"
)

// Table is a rendered-on-demand table widget.
type Table struct {
	grid        *Grid
	columns     []ColumnWidth
	topo        *topology
	borderStyle rendering.TextStyle
	addPadding  bool
	expand      bool

	// captioned wraps the table when captions are set.
	captioned rendering.Widget
}

// New declares a table with fn and builds it.
func New(fn func(*Builder)) (*Table, error) {
	b := newBuilder()
	fn(b)
	return b.build()
}

// NewGrid declares a borderless grid: a single body section whose columns
// are separated by blank space.
func NewGrid(fn func(*SectionBuilder)) (*Table, error) {
	b := newBuilder()
	b.SetBorders(BordersLeftRight)
	b.OuterBorder(false)
	b.BorderType(rendering.BorderBlank)
	b.SetPadding(widgets.Padding{})
	fn(b.body)
	return b.build()
}

func (b *Builder) build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	g, policies, err := build(b)
	if err != nil {
		return nil, err
	}

	t := &Table{
		grid:        g,
		columns:     policies,
		topo:        newTopology(g, b.tableBorders, b.borderType),
		borderStyle: b.borderStyle,
		addPadding:  b.addPaddingWidthToFixedWidth,
	}
	for _, p := range policies {
		if p.IsExpand() {
			t.expand = true
		}
	}
	if b.captionTop != nil || b.captionBottom != nil {
		t.captioned = widgets.NewCaption(tableContent{t}, b.captionTop, b.captionBottom)
	}
	return t, nil
}

func captionText(text string, align rendering.TextAlign) rendering.Widget {
	return widgets.CaptionText(text, align)
}

// Grid returns the laid out cells, for exporters.
func (t *Table) Grid() *Grid { return t.grid }

// Columns returns the effective width policy of every column.
func (t *Table) Columns() []ColumnWidth {
	return append([]ColumnWidth(nil), t.columns...)
}

func (t *Table) Measure(ctx rendering.RenderContext, width int) rendering.WidthRange {
	if t.captioned != nil {
		return t.captioned.Measure(ctx, width)
	}
	return t.measure(ctx, width)
}

func (t *Table) Render(ctx rendering.RenderContext, width int) rendering.Lines {
	if t.captioned != nil {
		return t.captioned.Render(ctx, width)
	}
	return t.render(ctx, width)
}

// tableContent is the bare table, without captions.
type tableContent struct{ t *Table }

func (c tableContent) Measure(ctx rendering.RenderContext, width int) rendering.WidthRange {
	return c.t.measure(ctx, width)
}

func (c tableContent) Render(ctx rendering.RenderContext, width int) rendering.Lines {
	return c.t.render(ctx, width)
}

func (t *Table) measure(ctx rendering.RenderContext, width int) rendering.WidthRange {
	if t.expand {
		return rendering.FixedRange(width)
	}
	available := width - t.topo.borderWidth
	r := rendering.FixedRange(t.topo.borderWidth)
	for x := range t.columns {
		r = r.Plus(t.measureColumn(ctx, x, available))
	}
	return r
}

// measureColumn returns the width range of column x. Spanning cells count
// an equal share of their width in every column they cover.
func (t *Table) measureColumn(ctx rendering.RenderContext, x, width int) rendering.WidthRange {
	if p := t.columns[x]; p.IsFixed() {
		w := p.Width
		if t.addPadding {
			w += t.maxPaddingWidth(x)
		}
		return rendering.FixedRange(w)
	}

	var ranges []rendering.WidthRange
	for y := 0; y < t.grid.RowCount(); y++ {
		c, ok := t.grid.Lookup(x, y)
		if !ok {
			continue
		}
		if c.Kind == KindEmpty {
			ranges = append(ranges, rendering.WidthRange{})
			continue
		}
		content := t.grid.Content(c)
		ranges = append(ranges, content.Widget.Measure(ctx, width).Div(content.ColumnSpan))
	}
	return rendering.MaxWidthRange(ranges, 0)
}

func (t *Table) maxPaddingWidth(x int) int {
	w := 0
	for y := 0; y < t.grid.RowCount(); y++ {
		if c, ok := t.grid.Lookup(x, y); ok && c.Kind != KindEmpty {
			w = max(w, t.grid.Content(c).PaddingWidth)
		}
	}
	return w
}

// columnWidths allocates width between the columns.
func (t *Table) columnWidths(ctx rendering.RenderContext, width int) []int {
	available := width - t.topo.borderWidth
	if available <= 0 {
		return make([]int, len(t.columns))
	}
	measured := make([]rendering.WidthRange, len(t.columns))
	for x := range t.columns {
		measured[x] = t.measureColumn(ctx, x, available)
	}
	return allocateWidths(t.columns, measured, available)
}

func (t *Table) render(ctx rendering.RenderContext, width int) rendering.Lines {
	widths := t.columnWidths(ctx, width)
	return newRenderer(t.grid, t.topo, ctx, t.borderStyle, widths).render()
}
