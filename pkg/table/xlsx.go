package table

import (
	"io"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/odvcencio/textgrid/pkg/errors"
)

// DefaultSheet is the worksheet name used when none is given.
const DefaultSheet = "Sheet1"

// ContentToXLSX writes the table as a single worksheet. Spanning cells
// become merged ranges, header rows are bold and numeric text is stored as
// numbers.
func ContentToXLSX(t *Table, w io.Writer, sheet string) error {
	rows, err := contentRows(t)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = DefaultSheet
	}
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return errors.Wrap(err, errors.ErrCodeExport, "invalid sheet name").WithContext("sheet", sheet)
		}
	}

	g := t.grid
	for y, row := range g.rows {
		for x, c := range row {
			if c.Kind != KindContent {
				continue
			}
			start, err := excelize.CoordinatesToCellName(x+1, y+1)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeExport, "cell out of range")
			}
			if err := f.SetCellValue(sheet, start, cellValue(rows[y][x])); err != nil {
				return errors.Wrap(err, errors.ErrCodeExport, "failed to write cell").WithContext("cell", start)
			}

			content := g.Content(c)
			if content.ColumnSpan == 1 && content.RowSpan == 1 {
				continue
			}
			end, err := excelize.CoordinatesToCellName(x+content.ColumnSpan, y+content.RowSpan)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeExport, "cell out of range")
			}
			if err := f.MergeCell(sheet, start, end); err != nil {
				return errors.Wrap(err, errors.ErrCodeExport, "failed to merge cells").
					WithContext("range", start+":"+end)
			}
		}
	}

	if g.headerRows > 0 && g.columnCount > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeExport, "failed to create header style")
		}
		end, err := excelize.CoordinatesToCellName(g.columnCount, g.headerRows)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeExport, "cell out of range")
		}
		if err := f.SetCellStyle(sheet, "A1", end, bold); err != nil {
			return errors.Wrap(err, errors.ErrCodeExport, "failed to style header")
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, errors.ErrCodeExport, "failed to write workbook")
	}
	return nil
}

func cellValue(text string) any {
	if n, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return n
	}
	return text
}
