package attendance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/engine"
)

func money(s string) engine.Money { return engine.MustParseMoney(s) }

func TestStatutoryDeductions_OrderAndKinds(t *testing.T) {
	rules := attendance.StatutoryDeductions(
		money("0.6"), money("15000"), money("27000"), money("12000"), money("8000"))

	require.Len(t, rules, 5)
	assert.Equal(t, "employment insurance", rules[0].Name)
	assert.Equal(t, engine.DeductPercent, rules[0].Kind)
	assert.Equal(t, "health insurance", rules[1].Name)
	assert.Equal(t, "pension", rules[2].Name)
	assert.Equal(t, "resident tax", rules[3].Name)
	assert.Equal(t, "withholding tax", rules[4].Name)
	for _, r := range rules[1:] {
		assert.Equal(t, engine.DeductFlat, r.Kind)
	}
}

func TestStatutoryDeductions_ZeroAmountsSkipped(t *testing.T) {
	rules := attendance.StatutoryDeductions(
		money("0"), money("15000"), money("0"), money("0"), money("0"))

	require.Len(t, rules, 1)
	assert.Equal(t, "health insurance", rules[0].Name)
}

func TestWithCommuteAllowance(t *testing.T) {
	policy := attendance.HourlyPolicy("emp-1", money("1500"), nil)
	policy = attendance.WithCommuteAllowance(policy, money("10000"))

	require.Len(t, policy.Allowances, 1)
	assert.Equal(t, "commute allowance", policy.Allowances[0].Name)
	require.NoError(t, policy.Validate())

	// Zero allowance is dropped.
	policy = attendance.WithCommuteAllowance(policy, money("0"))
	assert.Len(t, policy.Allowances, 1)
}

func TestFixedPolicy_Validates(t *testing.T) {
	policy := attendance.FixedPolicy("emp-2", money("300000"), engine.ProrateCalendarDays, nil)
	assert.NoError(t, policy.Validate())
}
