package table

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/odvcencio/textgrid/pkg/errors"
	"github.com/odvcencio/textgrid/pkg/rendering"
	"github.com/odvcencio/textgrid/pkg/widgets"
)

func rowTable(t *testing.T, cells ...any) *Table {
	t.Helper()
	return mustTable(t, func(b *Builder) {
		b.Body(func(s *SectionBuilder) {
			if len(cells) > 0 {
				s.Row(cells...)
			}
		})
	})
}

func csvWith(opts ...func(*CSVOptions)) CSVOptions {
	o := DefaultCSVOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func TestCSVEmptyAndSingle(t *testing.T) {
	out, err := ContentToCSV(rowTable(t), DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, "\n", out)

	out, err = ContentToCSV(rowTable(t, 1), DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestCSVEscaping(t *testing.T) {
	tests := []struct {
		name        string
		cells       []any
		want        string
		doubleQuote bool
		quoting     CSVQuoting
	}{
		{"delimiter", []any{"a", 1, "p,q"}, `a,1,"p,q"`, true, QuoteMinimal},
		{"escaped quotes", []any{"a", 1, `p,"q"`}, `a,1,"p,\"q\""`, false, QuoteMinimal},
		{"doubled quote", []any{`"`}, `""""`, true, QuoteMinimal},
		{"escaped quote", []any{`"`}, `\"`, false, QuoteMinimal},
		{"quote unquoted", []any{`"`}, `\"`, true, QuoteNone},
		{"delimiter unquoted", []any{"a", 1, "p,q"}, `a,1,p\,q`, true, QuoteNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ContentToCSV(rowTable(t, tt.cells...), csvWith(func(o *CSVOptions) {
				o.EscapeChar = '\\'
				o.DoubleQuote = tt.doubleQuote
				o.Quoting = tt.quoting
			}))
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestCSVEscapeErrors(t *testing.T) {
	_, err := ContentToCSV(rowTable(t, "a", 1, `p,"q"`), DefaultCSVOptions())
	assert.True(t, errors.IsCode(err, errors.ErrCodeExport))

	_, err = ContentToCSV(rowTable(t, "a", 1, "p,q"), csvWith(func(o *CSVOptions) { o.Quoting = QuoteNone }))
	assert.True(t, errors.IsCode(err, errors.ErrCodeExport))
}

func TestCSVQuoting(t *testing.T) {
	multiline, err := widgets.NewText("a\nb", rendering.DefaultStyle, widgets.WithWhitespace(rendering.WhitespacePre))
	require.NoError(t, err)

	tests := []struct {
		name    string
		cells   []any
		want    string
		quoting CSVQuoting
	}{
		{"minimal", []any{"a", 1, "p,q"}, `a,1,"p,q"`, QuoteMinimal},
		{"non-numeric", []any{"a", 1, "p,q"}, `"a",1,"p,q"`, QuoteNonNumeric},
		{"all", []any{"a", 1, "p,q"}, `"a","1","p,q"`, QuoteAll},
		{"widget", []any{multiline, 1}, "\"a\nb\",\"1\"", QuoteAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ContentToCSV(rowTable(t, tt.cells...), csvWith(func(o *CSVOptions) { o.Quoting = tt.quoting }))
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestCSVSpans(t *testing.T) {
	cols := mustTable(t, func(b *Builder) {
		b.Body(func(s *SectionBuilder) {
			s.RowFunc(func(r *RowBuilder) {
				r.Cell(1, func(c *CellBuilder) { c.ColumnSpan(2) })
				r.Cell(2)
			})
			s.Row(3, 4, 5)
		})
	})
	out, err := ContentToCSV(cols, DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, "1,,2\n3,4,5\n", out)

	rows := mustTable(t, func(b *Builder) {
		b.Body(func(s *SectionBuilder) {
			s.RowFunc(func(r *RowBuilder) {
				r.Cell(1, func(c *CellBuilder) { c.RowSpan(2) })
				r.Cell(2)
			})
			s.Row(3)
		})
	})
	out, err = ContentToCSV(rows, DefaultCSVOptions())
	require.NoError(t, err)
	assert.Equal(t, "1,2\n,3\n", out)
}

func TestCSVRejectsNonText(t *testing.T) {
	rule, err := widgets.NewHorizontalRule()
	require.NoError(t, err)

	_, err = ContentToCSV(rowTable(t, rule), DefaultCSVOptions())
	assert.True(t, errors.IsCode(err, errors.ErrCodeExport))
}

func TestParseCSVQuoting(t *testing.T) {
	q, err := ParseCSVQuoting("non_numeric")
	require.NoError(t, err)
	assert.Equal(t, QuoteNonNumeric, q)

	_, err = ParseCSVQuoting("sometimes")
	assert.Error(t, err)
}

func TestXLSXExport(t *testing.T) {
	tbl := mustTable(t, func(b *Builder) {
		b.Header(func(s *SectionBuilder) { s.Row("name", "size") })
		b.Body(func(s *SectionBuilder) {
			s.Row("a.txt", 12)
			s.RowFunc(func(r *RowBuilder) {
				r.Cell("total", func(c *CellBuilder) { c.ColumnSpan(2) })
			})
		})
	})

	var buf bytes.Buffer
	require.NoError(t, ContentToXLSX(tbl, &buf, "Files"))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Files", "A1")
	require.NoError(t, err)
	assert.Equal(t, "name", v)

	v, err = f.GetCellValue("Files", "B2")
	require.NoError(t, err)
	assert.Equal(t, "12", v)

	merged, err := f.GetMergeCells("Files")
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A3", merged[0].GetStartAxis())
	assert.Equal(t, "B3", merged[0].GetEndAxis())
}
