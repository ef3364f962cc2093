/*
Package factory provides JSON to Go configuration conversion.

PURPOSE:
  Converts JSON calendar, settings, and pay policy definitions into engine
  types. This keeps payroll rules out of code: the office can edit a JSON
  file, and the factory builds validated engine configuration from it.

JSON SCHEMA (calendar + settings):
  {
    "weekly_holidays": ["saturday", "sunday"],
    "special_periods": [
      {"id": "new-year-2025", "name": "New Year", "start": "2024-12-29",
       "end": "2025-01-03", "multiplier": "1.5"}
    ],
    "settings": {
      "closing_day": 31,
      "holiday_multiplier": "1.35",
      "special_multiplier": "1.35",
      "overtime_multiplier": "1.25",
      "daily_overtime_minutes": 480,
      "period_overtime_minutes": 0,
      "lunch_break": {"from": "12:00", "to": "13:00"},
      "daily_rest_minutes": 15,
      "rounding": "half_up"
    }
  }

JSON SCHEMA (pay policy):
  {
    "employee_id": "emp-001",
    "mode": "hourly",                  // or "fixed"
    "hourly_rate": "1500",
    "monthly_salary": "300000",
    "proration": "calendar",
    "hire_date": "2025-01-16",
    "allowances": [{"name": "commute allowance", "amount": "10000"}],
    "deductions": [
      {"name": "employment insurance", "kind": "percent", "amount": "0.6"},
      {"name": "resident tax", "kind": "flat", "amount": "12000"}
    ]
  }

VALIDATION:
  Everything is validated here: bad JSON, unknown enum values, overlapping
  special periods, and malformed amounts all fail with ConfigurationError
  before any calculation can run.

SEE ALSO:
  - engine/calendar.go: Calendar the parsed config becomes
  - engine/payroll.go: PayPolicy and Settings definitions
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the top-level company configuration document.
type ConfigJSON struct {
	WeeklyHolidays []string            `json:"weekly_holidays"`
	SpecialPeriods []SpecialPeriodJSON `json:"special_periods,omitempty"`
	Settings       *SettingsJSON       `json:"settings,omitempty"`
}

type SpecialPeriodJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Multiplier string `json:"multiplier,omitempty"`
}

type SettingsJSON struct {
	ClosingDay            int             `json:"closing_day,omitempty"`
	HolidayMultiplier     string          `json:"holiday_multiplier,omitempty"`
	SpecialMultiplier     string          `json:"special_multiplier,omitempty"`
	OvertimeMultiplier    string          `json:"overtime_multiplier,omitempty"`
	DailyOvertimeMinutes  int64           `json:"daily_overtime_minutes,omitempty"`
	PeriodOvertimeMinutes int64           `json:"period_overtime_minutes,omitempty"`
	LunchBreak            *LunchBreakJSON `json:"lunch_break,omitempty"`
	DailyRestMinutes      int64           `json:"daily_rest_minutes,omitempty"`
	Rounding              string          `json:"rounding,omitempty"`
}

type LunchBreakJSON struct {
	From string `json:"from"` // "HH:MM"
	To   string `json:"to"`
}

// PolicyJSON is the JSON representation of one employee's pay policy.
type PolicyJSON struct {
	EmployeeID    string          `json:"employee_id"`
	Mode          string          `json:"mode"`
	HourlyRate    string          `json:"hourly_rate,omitempty"`
	MonthlySalary string          `json:"monthly_salary,omitempty"`
	Proration     string          `json:"proration,omitempty"`
	HireDate      string          `json:"hire_date,omitempty"`
	RetireDate    string          `json:"retire_date,omitempty"`
	Allowances    []AllowanceJSON `json:"allowances,omitempty"`
	Deductions    []DeductionJSON `json:"deductions,omitempty"`
}

type AllowanceJSON struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type DeductionJSON struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"` // percent, flat
	Amount string `json:"amount"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseConfig parses the company configuration document into a validated
// calendar and settings pair.
func ParseConfig(jsonStr string) (engine.Calendar, engine.Settings, error) {
	var cj ConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return engine.Calendar{}, engine.Settings{}, &engine.ConfigurationError{Field: "config", Reason: err.Error()}
	}

	cal, err := parseCalendar(cj)
	if err != nil {
		return engine.Calendar{}, engine.Settings{}, err
	}
	settings, err := parseSettings(cj.Settings)
	if err != nil {
		return engine.Calendar{}, engine.Settings{}, err
	}
	return cal, settings, nil
}

func parseCalendar(cj ConfigJSON) (engine.Calendar, error) {
	var weekdays []time.Weekday
	for _, name := range cj.WeeklyHolidays {
		wd, err := parseWeekday(name)
		if err != nil {
			return engine.Calendar{}, err
		}
		weekdays = append(weekdays, wd)
	}

	var specials []engine.SpecialPeriod
	for _, sj := range cj.SpecialPeriods {
		start, err := parseDate("special_periods.start", sj.Start)
		if err != nil {
			return engine.Calendar{}, err
		}
		end, err := parseDate("special_periods.end", sj.End)
		if err != nil {
			return engine.Calendar{}, err
		}
		sp := engine.SpecialPeriod{
			ID:    engine.SpecialPeriodID(sj.ID),
			Name:  sj.Name,
			Start: start,
			End:   end,
		}
		if sj.Multiplier != "" {
			sp.Multiplier, err = parseMoney("special_periods.multiplier", sj.Multiplier)
			if err != nil {
				return engine.Calendar{}, err
			}
		}
		specials = append(specials, sp)
	}

	return engine.NewCalendar(weekdays, specials)
}

func parseSettings(sj *SettingsJSON) (engine.Settings, error) {
	settings := engine.DefaultSettings()
	if sj == nil {
		return settings, nil
	}

	if sj.ClosingDay != 0 {
		settings.ClosingDay = sj.ClosingDay
	}
	for _, m := range []struct {
		field string
		raw   string
		dst   *engine.Money
	}{
		{"holiday_multiplier", sj.HolidayMultiplier, &settings.Rates.Holiday},
		{"special_multiplier", sj.SpecialMultiplier, &settings.Rates.Special},
		{"overtime_multiplier", sj.OvertimeMultiplier, &settings.Rates.Overtime},
	} {
		if m.raw == "" {
			continue
		}
		v, err := parseMoney(m.field, m.raw)
		if err != nil {
			return engine.Settings{}, err
		}
		*m.dst = v
	}

	settings.Overtime = engine.OvertimeRule{
		DailyThresholdMinutes:  engine.Minutes(sj.DailyOvertimeMinutes),
		PeriodThresholdMinutes: engine.Minutes(sj.PeriodOvertimeMinutes),
	}
	settings.Breaks.DailyRestMinutes = engine.Minutes(sj.DailyRestMinutes)

	if sj.LunchBreak != nil {
		from, err := parseClock("lunch_break.from", sj.LunchBreak.From)
		if err != nil {
			return engine.Settings{}, err
		}
		to, err := parseClock("lunch_break.to", sj.LunchBreak.To)
		if err != nil {
			return engine.Settings{}, err
		}
		settings.Breaks.LunchStart = from
		settings.Breaks.LunchEnd = to
	}

	if sj.Rounding != "" {
		settings.Rounding = engine.RoundingRule{Mode: engine.RoundingMode(sj.Rounding)}
	}

	if err := settings.Validate(); err != nil {
		return engine.Settings{}, err
	}
	return settings, nil
}

// ParsePolicy parses one pay policy document.
func ParsePolicy(jsonStr string) (engine.PayPolicy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return engine.PayPolicy{}, &engine.ConfigurationError{Field: "policy", Reason: err.Error()}
	}
	return FromPolicyJSON(pj)
}

// FromPolicyJSON converts an already-decoded PolicyJSON.
func FromPolicyJSON(pj PolicyJSON) (engine.PayPolicy, error) {
	policy := engine.PayPolicy{
		EmployeeID: engine.EmployeeID(pj.EmployeeID),
		Mode:       engine.PayMode(pj.Mode),
		Proration:  engine.ProrationMethod(pj.Proration),
	}

	var err error
	if pj.HourlyRate != "" {
		policy.HourlyRate, err = parseMoney("hourly_rate", pj.HourlyRate)
		if err != nil {
			return engine.PayPolicy{}, err
		}
	}
	if pj.MonthlySalary != "" {
		policy.MonthlySalary, err = parseMoney("monthly_salary", pj.MonthlySalary)
		if err != nil {
			return engine.PayPolicy{}, err
		}
	}
	if pj.HireDate != "" {
		d, err := parseDate("hire_date", pj.HireDate)
		if err != nil {
			return engine.PayPolicy{}, err
		}
		policy.HireDate = &d
	}
	if pj.RetireDate != "" {
		d, err := parseDate("retire_date", pj.RetireDate)
		if err != nil {
			return engine.PayPolicy{}, err
		}
		policy.RetireDate = &d
	}
	for _, aj := range pj.Allowances {
		amount, err := parseMoney("allowances.amount", aj.Amount)
		if err != nil {
			return engine.PayPolicy{}, err
		}
		policy.Allowances = append(policy.Allowances, engine.Allowance{Name: aj.Name, Amount: amount})
	}
	for _, dj := range pj.Deductions {
		amount, err := parseMoney("deductions.amount", dj.Amount)
		if err != nil {
			return engine.PayPolicy{}, err
		}
		policy.Deductions = append(policy.Deductions, engine.DeductionRule{
			Name:   dj.Name,
			Kind:   engine.DeductionKind(dj.Kind),
			Amount: amount,
		})
	}

	if err := policy.Validate(); err != nil {
		return engine.PayPolicy{}, err
	}
	return policy, nil
}

// =============================================================================
// PRIMITIVE PARSERS
// =============================================================================

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(name string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(name)]
	if !ok {
		return 0, &engine.ConfigurationError{Field: "weekly_holidays", Reason: fmt.Sprintf("unknown weekday %q", name)}
	}
	return wd, nil
}

func parseDate(field, s string) (engine.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return engine.Date{}, &engine.ConfigurationError{Field: field, Reason: fmt.Sprintf("%q is not YYYY-MM-DD", s)}
	}
	return engine.DateOf(t), nil
}

func parseClock(field, s string) (engine.ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return engine.ClockTime{}, &engine.ConfigurationError{Field: field, Reason: fmt.Sprintf("%q is not HH:MM", s)}
	}
	return engine.ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func parseMoney(field, s string) (engine.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return engine.Money{}, &engine.ConfigurationError{Field: field, Reason: fmt.Sprintf("%q is not a decimal amount", s)}
	}
	return d, nil
}
