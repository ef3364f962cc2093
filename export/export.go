/*
Package export serializes payroll runs into tabular form.

PURPOSE:
  Pure serialization: no aggregation or recomputation happens here. One
  header row plus one row per payroll line, rows sorted by employee_id
  ascending then pay period.

COLUMN LAYOUT (stable, in this order):
  employee_id, pay_period, normal_minutes, holiday_minutes,
  special_minutes, overtime_minutes, gross_amount, deductions, net_amount

DEDUCTIONS COLUMN:
  All deductions flatten into a single field, application order preserved,
  formatted "name=amount" and joined with ";", e.g.

    health insurance=5000;pension=9150

  Deduction names may contain commas; the CSV writer quotes the field, so
  the file round-trips with any standard CSV reader.

OUTPUTS:
  WriteCSV  - UTF-8 CSV with standard double-quote escaping
  WriteXLSX - the same table as a spreadsheet, for office use
*/
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/warp/payroll-engine/engine"
)

// Header is the stable column order of every export.
var Header = []string{
	"employee_id",
	"pay_period",
	"normal_minutes",
	"holiday_minutes",
	"special_minutes",
	"overtime_minutes",
	"gross_amount",
	"deductions",
	"net_amount",
}

// Rows flattens a run into data rows (header excluded), sorted by
// employee_id ascending, then pay period. Minutes come from the aggregate
// matching each line's employee and period.
func Rows(lines []engine.PayrollLine, aggs []engine.Aggregate) [][]string {
	type aggKey struct {
		id     engine.EmployeeID
		period string
	}
	byKey := make(map[aggKey]engine.Aggregate, len(aggs))
	for _, a := range aggs {
		byKey[aggKey{a.EmployeeID, a.Period.Label}] = a
	}

	sorted := make([]engine.PayrollLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].EmployeeID != sorted[j].EmployeeID {
			return sorted[i].EmployeeID < sorted[j].EmployeeID
		}
		return sorted[i].Period.Label < sorted[j].Period.Label
	})

	rows := make([][]string, 0, len(sorted))
	for _, line := range sorted {
		agg := byKey[aggKey{line.EmployeeID, line.Period.Label}]
		rows = append(rows, []string{
			string(line.EmployeeID),
			line.Period.Label,
			fmt.Sprintf("%d", agg.NormalMinutes),
			fmt.Sprintf("%d", agg.HolidayMinutes),
			fmt.Sprintf("%d", agg.SpecialMinutes),
			fmt.Sprintf("%d", agg.OvertimeMinutes),
			line.Gross.String(),
			flattenDeductions(line.Deductions),
			line.Net.String(),
		})
	}
	return rows
}

func flattenDeductions(deds []engine.DeductionLine) string {
	parts := make([]string, len(deds))
	for i, d := range deds {
		parts[i] = fmt.Sprintf("%s=%s", d.Name, d.Amount.String())
	}
	return strings.Join(parts, ";")
}
