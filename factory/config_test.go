package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/factory"
)

// =============================================================================
// COMPANY CONFIG
// =============================================================================

func TestParseConfig_FullDocument(t *testing.T) {
	config := `{
		"weekly_holidays": ["saturday", "sunday"],
		"special_periods": [
			{"id": "new-year", "name": "New Year", "start": "2024-12-29", "end": "2025-01-03", "multiplier": "1.5"}
		],
		"settings": {
			"closing_day": 15,
			"holiday_multiplier": "1.4",
			"overtime_multiplier": "1.3",
			"daily_overtime_minutes": 480,
			"lunch_break": {"from": "12:00", "to": "13:00"},
			"daily_rest_minutes": 15,
			"rounding": "down"
		}
	}`

	cal, settings, err := factory.ParseConfig(config)
	require.NoError(t, err)

	assert.True(t, cal.IsWeeklyHoliday(time.Saturday))
	assert.True(t, cal.IsWeeklyHoliday(time.Sunday))
	assert.False(t, cal.IsWeeklyHoliday(time.Monday))

	cls := cal.Classify(engine.NewDate(2025, time.January, 2))
	assert.Equal(t, engine.CategorySpecial, cls.Category)
	assert.Equal(t, engine.SpecialPeriodID("new-year"), cls.SpecialPeriodID)

	sp, ok := cal.SpecialPeriodByID("new-year")
	require.True(t, ok)
	assert.True(t, sp.Multiplier.Equal(engine.MustParseMoney("1.5")))

	assert.Equal(t, 15, settings.ClosingDay)
	assert.True(t, settings.Rates.Holiday.Equal(engine.MustParseMoney("1.4")))
	assert.True(t, settings.Rates.Special.Equal(engine.MustParseMoney("1.35")), "unset multiplier keeps default")
	assert.True(t, settings.Rates.Overtime.Equal(engine.MustParseMoney("1.3")))
	assert.Equal(t, engine.Minutes(480), settings.Overtime.DailyThresholdMinutes)
	assert.Equal(t, engine.ClockTime{Hour: 12}, settings.Breaks.LunchStart)
	assert.Equal(t, engine.ClockTime{Hour: 13}, settings.Breaks.LunchEnd)
	assert.Equal(t, engine.Minutes(15), settings.Breaks.DailyRestMinutes)
	assert.Equal(t, engine.RoundDown, settings.Rounding.Mode)
}

func TestParseConfig_MinimalDocument_Defaults(t *testing.T) {
	cal, settings, err := factory.ParseConfig(`{"weekly_holidays": []}`)
	require.NoError(t, err)

	assert.Equal(t, engine.CategoryNormal, cal.Classify(engine.NewDate(2025, time.January, 5)).Category)
	assert.Equal(t, 31, settings.ClosingDay)
	assert.True(t, settings.Rates.Holiday.Equal(engine.MustParseMoney("1.35")))
	assert.Equal(t, engine.Minutes(0), settings.Breaks.DailyRestMinutes)
}

func TestParseConfig_Rejections(t *testing.T) {
	for name, config := range map[string]string{
		"malformed json":   `{`,
		"unknown weekday":  `{"weekly_holidays": ["caturday"]}`,
		"bad date":         `{"special_periods": [{"id": "x", "start": "2025/01/01", "end": "2025-01-03"}]}`,
		"bad multiplier":   `{"special_periods": [{"id": "x", "start": "2025-01-01", "end": "2025-01-03", "multiplier": "lots"}]}`,
		"bad lunch clock":  `{"settings": {"lunch_break": {"from": "noon", "to": "13:00"}}}`,
		"bad rounding":     `{"settings": {"rounding": "banker"}}`,
		"overlap": `{"special_periods": [
			{"id": "a", "start": "2025-01-01", "end": "2025-01-05"},
			{"id": "b", "start": "2025-01-05", "end": "2025-01-07"}
		]}`,
	} {
		_, _, err := factory.ParseConfig(config)
		require.Error(t, err, name)
		assert.True(t, engine.IsConfigurationError(err), name)
	}
}

// =============================================================================
// PAY POLICIES
// =============================================================================

func TestParsePolicy_Hourly(t *testing.T) {
	policy, err := factory.ParsePolicy(`{
		"employee_id": "emp-001",
		"mode": "hourly",
		"hourly_rate": "1500",
		"allowances": [{"name": "commute allowance", "amount": "10000"}],
		"deductions": [
			{"name": "employment insurance", "kind": "percent", "amount": "0.6"},
			{"name": "resident tax", "kind": "flat", "amount": "12000"}
		]
	}`)
	require.NoError(t, err)

	assert.Equal(t, engine.EmployeeID("emp-001"), policy.EmployeeID)
	assert.Equal(t, engine.ModeHourly, policy.Mode)
	assert.True(t, policy.HourlyRate.Equal(engine.MustParseMoney("1500")))

	require.Len(t, policy.Allowances, 1)
	require.Len(t, policy.Deductions, 2)
	assert.Equal(t, engine.DeductPercent, policy.Deductions[0].Kind)
	assert.Equal(t, engine.DeductFlat, policy.Deductions[1].Kind)
}

func TestParsePolicy_FixedWithDates(t *testing.T) {
	policy, err := factory.ParsePolicy(`{
		"employee_id": "emp-002",
		"mode": "fixed",
		"monthly_salary": "300000",
		"proration": "working",
		"hire_date": "2025-01-16",
		"retire_date": "2025-06-30"
	}`)
	require.NoError(t, err)

	assert.Equal(t, engine.ModeFixed, policy.Mode)
	assert.Equal(t, engine.ProrateWorkingDays, policy.Proration)
	require.NotNil(t, policy.HireDate)
	assert.Equal(t, engine.NewDate(2025, time.January, 16), *policy.HireDate)
	require.NotNil(t, policy.RetireDate)
	assert.Equal(t, engine.NewDate(2025, time.June, 30), *policy.RetireDate)
}

func TestParsePolicy_Rejections(t *testing.T) {
	for name, doc := range map[string]string{
		"missing rate":    `{"employee_id": "e", "mode": "hourly"}`,
		"unknown mode":    `{"employee_id": "e", "mode": "weekly", "hourly_rate": "1"}`,
		"bad proration":   `{"employee_id": "e", "mode": "fixed", "monthly_salary": "1", "proration": "guess"}`,
		"bad amount":      `{"employee_id": "e", "mode": "hourly", "hourly_rate": "cheap"}`,
		"bad deduction":   `{"employee_id": "e", "mode": "hourly", "hourly_rate": "1", "deductions": [{"name": "x", "kind": "ratio", "amount": "1"}]}`,
		"bad hire date":   `{"employee_id": "e", "mode": "hourly", "hourly_rate": "1", "hire_date": "Jan 16"}`,
	} {
		_, err := factory.ParsePolicy(doc)
		require.Error(t, err, name)
		assert.True(t, engine.IsConfigurationError(err), name)
	}
}
