package export

import (
	"encoding/csv"
	"io"

	"github.com/warp/payroll-engine/engine"
)

// WriteCSV writes the header row followed by one row per payroll line.
// encoding/csv handles quoting, so deduction names with embedded commas or
// quotes round-trip safely.
func WriteCSV(w io.Writer, lines []engine.PayrollLine, aggs []engine.Aggregate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range Rows(lines, aggs) {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
