package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/warp/payroll-engine/engine"
)

const sheetName = "Payroll"

// WriteXLSX writes the export table as a single-sheet workbook. Same
// columns, order, and sorting as the CSV output.
func WriteXLSX(w io.Writer, lines []engine.PayrollLine, aggs []engine.Aggregate) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	if err := setRow(f, 1, Header); err != nil {
		return err
	}
	for i, row := range Rows(lines, aggs) {
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func setRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheetName, cell, &row)
}
