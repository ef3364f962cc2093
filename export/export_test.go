package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/export"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func money(s string) engine.Money { return engine.MustParseMoney(s) }

func testPeriod(t *testing.T) engine.PayPeriod {
	t.Helper()
	p, err := engine.ResolvePayPeriod("202501", 31)
	require.NoError(t, err)
	return p
}

func testRun(t *testing.T) ([]engine.PayrollLine, []engine.Aggregate) {
	t.Helper()
	period := testPeriod(t)

	lines := []engine.PayrollLine{
		{
			EmployeeID: "emp-2",
			Period:     period,
			Gross:      money("200000"),
			Deductions: []engine.DeductionLine{
				{Name: "health insurance", Amount: money("5000")},
				{Name: "pension", Amount: money("9150")},
			},
			Net: money("185850"),
		},
		{
			EmployeeID: "emp-1",
			Period:     period,
			Gross:      money("13500"),
			Net:        money("13500"),
		},
	}
	aggs := []engine.Aggregate{
		{EmployeeID: "emp-1", Period: period, NormalMinutes: 540},
		{EmployeeID: "emp-2", Period: period, NormalMinutes: 9000, HolidayMinutes: 240, OvertimeMinutes: 120},
	}
	return lines, aggs
}

// =============================================================================
// ROW LAYOUT
// =============================================================================

func TestRows_SortedByEmployeeID(t *testing.T) {
	// GIVEN: Lines in arbitrary order
	// WHEN: Flattening to rows
	// THEN: Rows come out sorted by employee_id with aggregates joined in

	lines, aggs := testRun(t)
	rows := export.Rows(lines, aggs)

	require.Len(t, rows, 2)
	assert.Equal(t, "emp-1", rows[0][0])
	assert.Equal(t, "emp-2", rows[1][0])

	assert.Equal(t, []string{
		"emp-1", "202501", "540", "0", "0", "0", "13500", "", "13500",
	}, rows[0])
	assert.Equal(t, []string{
		"emp-2", "202501", "9000", "240", "0", "120", "200000",
		"health insurance=5000;pension=9150", "185850",
	}, rows[1])
}

func TestRows_Empty(t *testing.T) {
	rows := export.Rows(nil, nil)
	assert.Empty(t, rows)
}

// =============================================================================
// CSV OUTPUT
// =============================================================================

func TestWriteCSV_HeaderAndRows(t *testing.T) {
	lines, aggs := testRun(t)

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, lines, aggs))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, export.Header, records[0])
	assert.Equal(t, "emp-1", records[1][0])
	assert.Equal(t, "emp-2", records[2][0])
}

func TestWriteCSV_CommaInDeductionName_RoundTrips(t *testing.T) {
	// GIVEN: A deduction name containing a comma
	// WHEN: Writing and re-reading the CSV
	// THEN: The field survives intact thanks to quoting

	period := testPeriod(t)
	lines := []engine.PayrollLine{{
		EmployeeID: "emp-1",
		Period:     period,
		Gross:      money("100000"),
		Deductions: []engine.DeductionLine{
			{Name: "tax, resident", Amount: money("12000")},
		},
		Net: money("88000"),
	}}
	aggs := []engine.Aggregate{{EmployeeID: "emp-1", Period: period, NormalMinutes: 480}}

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, lines, aggs))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "tax, resident=12000", records[1][7])
	assert.Len(t, records[1], len(export.Header))
}

// =============================================================================
// XLSX OUTPUT
// =============================================================================

func TestWriteXLSX_SameTableAsCSV(t *testing.T) {
	lines, aggs := testRun(t)

	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, lines, aggs))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Payroll")
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, export.Header, got[0])
	assert.Equal(t, "emp-1", got[1][0])
	assert.Equal(t, "13500", got[1][6])
	assert.Equal(t, "health insurance=5000;pension=9150", got[2][7])
}
