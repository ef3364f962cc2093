/*
payroll.go - Pricing an aggregate under a pay policy

PURPOSE:
  Turns one Aggregate plus one PayPolicy into one PayrollLine. All money
  math is exact decimal; rounding happens exactly once, at the final net,
  under a configured rounding rule.

PAY MODES:
  HOURLY:
    gross = normal_hours  * rate
          + holiday_hours * rate * holiday_multiplier
          + special_hours * rate * special_multiplier (per special period)
          + overtime_hours * rate * overtime_multiplier
    Multipliers are configuration, never hardcoded. A special period with
    its own multiplier overrides the default special multiplier.

  FIXED:
    gross = monthly salary, unless the period is partial (hire or retire
    date inside it). A partial period requires a configured proration
    method; without one the line fails with ErrProrationUndefined rather
    than silently guessing.

PRORATION METHODS (fixed salary, partial periods):
  calendar      salary / calendar days of the period, x days worked
  fixed30       salary / 30, x days worked
  working       salary / scheduled working days, x days worked
  working_hour  salary / (working days x 8h), x hours worked
  hourly_avg    salary / 173.8h, x hours worked
  weekly        salary / (4.33 weeks x 5), x days worked
  nowork        salary - (salary / calendar days) x absent days
  no_deduct     salary, untouched

DEDUCTIONS:
  Ordered rules applied against the running gross: PERCENT takes a share
  of the running total, FLAT subtracts outright. Net never goes negative;
  when it would, the line clamps to zero and a NegativeNetClamped anomaly
  is reported alongside it.
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAY POLICY
// =============================================================================

type PayMode string

const (
	ModeHourly PayMode = "hourly"
	ModeFixed  PayMode = "fixed"
)

type DeductionKind string

const (
	DeductPercent DeductionKind = "percent"
	DeductFlat    DeductionKind = "flat"
)

// DeductionRule is one configured deduction. For DeductPercent, Amount is
// in percent points (10 means 10% of the running gross). For DeductFlat it
// is a currency amount.
type DeductionRule struct {
	Name   string
	Kind   DeductionKind
	Amount Money
}

// Allowance is a flat addition to gross (e.g. commute allowance), applied
// before deductions.
type Allowance struct {
	Name   string
	Amount Money
}

type ProrationMethod string

const (
	ProrateCalendarDays ProrationMethod = "calendar"
	ProrateFixed30      ProrationMethod = "fixed30"
	ProrateWorkingDays  ProrationMethod = "working"
	ProrateWorkingHours ProrationMethod = "working_hour"
	ProrateAverageHours ProrationMethod = "hourly_avg"
	ProrateWeekly       ProrationMethod = "weekly"
	ProrateNoWorkNoPay  ProrationMethod = "nowork"
	ProrateNoDeduct     ProrationMethod = "no_deduct"
)

// PayPolicy is one employee's pay contract, immutable for the duration of
// a calculation.
type PayPolicy struct {
	EmployeeID EmployeeID
	Mode       PayMode

	HourlyRate    Money // ModeHourly
	MonthlySalary Money // ModeFixed

	// Proration applies to ModeFixed when the pay period is partial.
	// Empty means undefined: a partial period then fails the line.
	Proration ProrationMethod

	// Employment window. A hire or retire date inside the pay period makes
	// the period partial for this employee.
	HireDate   *Date
	RetireDate *Date

	Allowances []Allowance
	Deductions []DeductionRule
}

// Validate rejects malformed policies before any calculation.
func (p PayPolicy) Validate() error {
	switch p.Mode {
	case ModeHourly:
		if !p.HourlyRate.IsPositive() {
			return &ConfigurationError{Field: "hourly_rate", Reason: fmt.Sprintf("employee %s: hourly policy needs a positive rate", p.EmployeeID)}
		}
	case ModeFixed:
		if !p.MonthlySalary.IsPositive() {
			return &ConfigurationError{Field: "monthly_salary", Reason: fmt.Sprintf("employee %s: fixed policy needs a positive salary", p.EmployeeID)}
		}
	default:
		return &ConfigurationError{Field: "mode", Reason: fmt.Sprintf("employee %s: unknown pay mode %q", p.EmployeeID, p.Mode)}
	}

	switch p.Proration {
	case "", ProrateCalendarDays, ProrateFixed30, ProrateWorkingDays,
		ProrateWorkingHours, ProrateAverageHours, ProrateWeekly,
		ProrateNoWorkNoPay, ProrateNoDeduct:
	default:
		return &ConfigurationError{Field: "proration", Reason: fmt.Sprintf("employee %s: unknown proration method %q", p.EmployeeID, p.Proration)}
	}

	for _, d := range p.Deductions {
		if d.Kind != DeductPercent && d.Kind != DeductFlat {
			return &ConfigurationError{Field: "deductions", Reason: fmt.Sprintf("employee %s: deduction %q has unknown kind %q", p.EmployeeID, d.Name, d.Kind)}
		}
		if d.Amount.IsNegative() {
			return &ConfigurationError{Field: "deductions", Reason: fmt.Sprintf("employee %s: deduction %q is negative", p.EmployeeID, d.Name)}
		}
	}
	return nil
}

// =============================================================================
// RATES AND ROUNDING
// =============================================================================

// RateConfig holds the category multipliers for hourly pay.
type RateConfig struct {
	Holiday  Money
	Special  Money
	Overtime Money
}

// DefaultRates mirrors the workplace defaults: holidays and special
// periods at 1.35, overtime at 1.25.
func DefaultRates() RateConfig {
	return RateConfig{
		Holiday:  MustParseMoney("1.35"),
		Special:  MustParseMoney("1.35"),
		Overtime: MustParseMoney("1.25"),
	}
}

func (r RateConfig) validate() error {
	for _, m := range []struct {
		name string
		v    Money
	}{{"holiday_multiplier", r.Holiday}, {"special_multiplier", r.Special}, {"overtime_multiplier", r.Overtime}} {
		if !m.v.IsPositive() {
			return &ConfigurationError{Field: m.name, Reason: "must be positive"}
		}
	}
	return nil
}

type RoundingMode string

const (
	RoundHalfUp RoundingMode = "half_up"
	RoundDown   RoundingMode = "down"
	RoundUp     RoundingMode = "up"
)

// RoundingRule rounds a final net amount to the nearest whole currency
// unit. It is applied exactly once per payroll line.
type RoundingRule struct {
	Mode RoundingMode
}

func (r RoundingRule) Apply(m Money) Money {
	switch r.Mode {
	case RoundDown:
		return m.RoundDown(0)
	case RoundUp:
		return m.RoundUp(0)
	default: // RoundHalfUp or unset
		return m.Round(0)
	}
}

func (r RoundingRule) validate() error {
	switch r.Mode {
	case "", RoundHalfUp, RoundDown, RoundUp:
		return nil
	}
	return &ConfigurationError{Field: "rounding", Reason: fmt.Sprintf("unknown mode %q", r.Mode)}
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator prices aggregates. The calendar is needed for working-day
// denominators and per-special-period multipliers.
type Calculator struct {
	Calendar Calendar
	Rates    RateConfig
	Rounding RoundingRule
}

// Calculate produces one payroll line. The returned anomalies (at most a
// NegativeNetClamped) accompany the line; an error means the line failed
// and the caller should record a LineFailure for this employee only.
func (c Calculator) Calculate(agg Aggregate, policy PayPolicy) (PayrollLine, []Anomaly, error) {
	var gross Money
	var err error

	switch policy.Mode {
	case ModeHourly:
		gross = c.hourlyGross(agg, policy)
	case ModeFixed:
		gross, err = c.fixedGross(agg, policy)
		if err != nil {
			return PayrollLine{}, nil, err
		}
	default:
		return PayrollLine{}, nil, &ConfigurationError{Field: "mode", Reason: fmt.Sprintf("unknown pay mode %q", policy.Mode)}
	}

	for _, al := range policy.Allowances {
		gross = gross.Add(al.Amount)
	}

	line := PayrollLine{
		EmployeeID: agg.EmployeeID,
		Period:     agg.Period,
		Gross:      gross,
	}

	var anomalies []Anomaly
	running := gross
	for _, rule := range policy.Deductions {
		amount := rule.Amount
		if rule.Kind == DeductPercent {
			amount = running.Mul(rule.Amount).Div(decimal.NewFromInt(100))
		}
		line.Deductions = append(line.Deductions, DeductionLine{Name: rule.Name, Amount: amount})
		running = running.Sub(amount)
	}

	if running.IsNegative() {
		anomalies = append(anomalies, Anomaly{
			Kind:       AnomalyNegativeNetClamped,
			EmployeeID: agg.EmployeeID,
			Detail:     fmt.Sprintf("net %s clamped to zero for period %s", running, agg.Period.Label),
		})
		running = decimal.Zero
	}
	line.Net = c.Rounding.Apply(running)

	return line, anomalies, nil
}

// hourlyGross prices the categorized minutes. Special minutes price per
// special period so ranges with their own multiplier override the default.
func (c Calculator) hourlyGross(agg Aggregate, policy PayPolicy) Money {
	rate := policy.HourlyRate

	gross := rate.Mul(agg.NormalMinutes.Hours())
	gross = gross.Add(rate.Mul(c.Rates.Holiday).Mul(agg.HolidayMinutes.Hours()))
	gross = gross.Add(rate.Mul(c.Rates.Overtime).Mul(agg.OvertimeMinutes.Hours()))

	accounted := Minutes(0)
	for id, m := range agg.SpecialBreakdown {
		mult := c.Rates.Special
		if sp, ok := c.Calendar.SpecialPeriodByID(id); ok && sp.Multiplier.IsPositive() {
			mult = sp.Multiplier
		}
		gross = gross.Add(rate.Mul(mult).Mul(m.Hours()))
		accounted += m
	}
	// Special minutes without a breakdown entry price at the default rate.
	if rest := agg.SpecialMinutes - accounted; rest > 0 {
		gross = gross.Add(rate.Mul(c.Rates.Special).Mul(rest.Hours()))
	}
	return gross
}

// fixedGross returns the salary, prorated when the period is partial.
func (c Calculator) fixedGross(agg Aggregate, policy PayPolicy) (Money, error) {
	if !c.partialPeriod(agg.Period, policy) {
		return policy.MonthlySalary, nil
	}
	if policy.Proration == "" {
		return Money{}, &ProrationError{EmployeeID: agg.EmployeeID, Period: agg.Period}
	}
	return c.prorate(agg, policy)
}

func (c Calculator) partialPeriod(period PayPeriod, policy PayPolicy) bool {
	if policy.HireDate != nil && policy.HireDate.After(period.Start) {
		return true
	}
	if policy.RetireDate != nil && policy.RetireDate.Before(period.End) {
		return true
	}
	return false
}

func (c Calculator) prorate(agg Aggregate, policy PayPolicy) (Money, error) {
	salary := policy.MonthlySalary
	period := agg.Period

	calendarDays := decimal.NewFromInt(int64(period.CalendarDays()))
	workingDays := decimal.NewFromInt(int64(c.Calendar.WorkingDays(period.Start, period.End)))
	daysWorked := decimal.NewFromInt(int64(agg.DaysWorked))
	hoursWorked := agg.TotalMinutes().Hours()

	switch policy.Proration {
	case ProrateCalendarDays:
		return salary.Div(calendarDays).Mul(daysWorked), nil
	case ProrateFixed30:
		return salary.Div(decimal.NewFromInt(30)).Mul(daysWorked), nil
	case ProrateWorkingDays:
		if workingDays.IsZero() {
			return decimal.Zero, nil
		}
		return salary.Div(workingDays).Mul(daysWorked), nil
	case ProrateWorkingHours:
		workingHours := workingDays.Mul(decimal.NewFromInt(8))
		if workingHours.IsZero() {
			return decimal.Zero, nil
		}
		return salary.Div(workingHours).Mul(hoursWorked), nil
	case ProrateAverageHours:
		return salary.Div(MustParseMoney("173.8")).Mul(hoursWorked), nil
	case ProrateWeekly:
		return salary.Div(MustParseMoney("4.33").Mul(decimal.NewFromInt(5))).Mul(daysWorked), nil
	case ProrateNoWorkNoPay:
		absent := calendarDays.Sub(daysWorked)
		return salary.Sub(salary.Div(calendarDays).Mul(absent)), nil
	case ProrateNoDeduct:
		return salary, nil
	}
	return Money{}, &ConfigurationError{Field: "proration", Reason: fmt.Sprintf("unknown proration method %q", policy.Proration)}
}
