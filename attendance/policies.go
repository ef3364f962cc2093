/*
policies.go - Pre-built pay policy configurations

PURPOSE:
  Ready-to-use policy constructors for the common cases, so callers don't
  assemble PayPolicy structs by hand. These mirror how the workplace
  actually pays people: hourly staff with statutory deductions, and
  fixed-salary staff with a chosen proration method.

STATUTORY DEDUCTIONS:
  The standard set applies in this order, each against the running gross:
    1. employment insurance (percent of gross)
    2. health insurance     (flat)
    3. pension              (flat)
    4. resident tax         (flat)
    5. withholding tax      (flat)

CUSTOMIZATION:
  These are starting points; append or reorder Deductions as needed.
*/
package attendance

import "github.com/warp/payroll-engine/engine"

// StatutoryDeductions assembles the standard deduction set in the order it
// is applied. employmentInsPercent is in percent points (0.6 = 0.6%).
func StatutoryDeductions(employmentInsPercent, health, pension, residentTax, withholding engine.Money) []engine.DeductionRule {
	var rules []engine.DeductionRule
	if employmentInsPercent.IsPositive() {
		rules = append(rules, engine.DeductionRule{Name: "employment insurance", Kind: engine.DeductPercent, Amount: employmentInsPercent})
	}
	for _, d := range []struct {
		name   string
		amount engine.Money
	}{
		{"health insurance", health},
		{"pension", pension},
		{"resident tax", residentTax},
		{"withholding tax", withholding},
	} {
		if d.amount.IsPositive() {
			rules = append(rules, engine.DeductionRule{Name: d.name, Kind: engine.DeductFlat, Amount: d.amount})
		}
	}
	return rules
}

// HourlyPolicy returns a policy for hourly staff.
func HourlyPolicy(id engine.EmployeeID, rate engine.Money, deductions []engine.DeductionRule) engine.PayPolicy {
	return engine.PayPolicy{
		EmployeeID: id,
		Mode:       engine.ModeHourly,
		HourlyRate: rate,
		Deductions: deductions,
	}
}

// FixedPolicy returns a policy for salaried staff. Proration kicks in only
// for partial periods (mid-period hires or retirements).
func FixedPolicy(id engine.EmployeeID, salary engine.Money, proration engine.ProrationMethod, deductions []engine.DeductionRule) engine.PayPolicy {
	return engine.PayPolicy{
		EmployeeID:    id,
		Mode:          engine.ModeFixed,
		MonthlySalary: salary,
		Proration:     proration,
		Deductions:    deductions,
	}
}

// WithCommuteAllowance appends a commute allowance to a policy. The
// allowance adds to gross before deductions, matching how the office
// includes it in the taxable total.
func WithCommuteAllowance(policy engine.PayPolicy, amount engine.Money) engine.PayPolicy {
	if amount.IsPositive() {
		policy.Allowances = append(policy.Allowances, engine.Allowance{Name: "commute allowance", Amount: amount})
	}
	return policy
}
