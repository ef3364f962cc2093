/*
run.go - One payroll run, end to end

PURPOSE:
  Orchestrates the pipeline for a batch of employees: reconcile each
  employee's events, aggregate, price, and collect the results. A run is a
  pure transformation of (events, calendar, policies, settings) into
  (aggregates, payroll lines); nothing is retained between runs and
  recomputation is idempotent given the same inputs.

FAILURE SEMANTICS:
  - Settings or policy problems are configuration errors: the run aborts
    before any employee is processed.
  - Reconciliation anomalies and clamped nets attach to the result; they
    never abort anything.
  - A per-line failure (ProrationUndefined) is recorded in Failures and
    the run continues with the remaining employees.

CONCURRENCY:
  Employees are independent; callers may shard a batch across goroutines
  freely. Within one employee, events must be processed in timestamp
  order, which is why the per-employee pipeline is sequential.
*/
package engine

import "sort"

// =============================================================================
// SETTINGS - Company-level knobs, explicit and immutable per run
// =============================================================================

// Settings bundles the company-level configuration a run needs. It is
// passed explicitly into Run rather than read from ambient state.
type Settings struct {
	Rates    RateConfig
	Overtime OvertimeRule
	Breaks   BreakRule
	Rounding RoundingRule

	// ClosingDay resolves YYYYMM labels into period boundaries. Values
	// outside 1..31 behave as 31 (calendar months).
	ClosingDay int
}

// DefaultSettings returns calendar-month periods with default multipliers
// and no break deductions.
func DefaultSettings() Settings {
	return Settings{Rates: DefaultRates(), Rounding: RoundingRule{Mode: RoundHalfUp}, ClosingDay: 31}
}

// Validate rejects malformed settings before a run starts.
func (s Settings) Validate() error {
	if err := s.Rates.validate(); err != nil {
		return err
	}
	if err := s.Rounding.validate(); err != nil {
		return err
	}
	if s.Overtime.DailyThresholdMinutes < 0 || s.Overtime.PeriodThresholdMinutes < 0 {
		return &ConfigurationError{Field: "overtime", Reason: "thresholds must not be negative"}
	}
	if s.Breaks.DailyRestMinutes < 0 {
		return &ConfigurationError{Field: "breaks", Reason: "daily rest must not be negative"}
	}
	return nil
}

// =============================================================================
// RUN INPUT / RESULT
// =============================================================================

// EmployeeInput is one employee's fully materialized slice of a run: the
// ordered scan events for the period plus the pay policy in force.
type EmployeeInput struct {
	Employee Employee
	Events   []ScanEvent
	Policy   PayPolicy
}

// RunInput is everything one calculation run consumes.
type RunInput struct {
	Period    PayPeriod
	Calendar  Calendar
	Settings  Settings
	Employees []EmployeeInput
}

// RunResult carries every output of a run. Lines and aggregates are sorted
// by employee id; anomalies and failures are reported, never dropped.
type RunResult struct {
	Period     PayPeriod
	Lines      []PayrollLine
	Aggregates []Aggregate
	Anomalies  []Anomaly
	Failures   []LineFailure
}

// =============================================================================
// RUN
// =============================================================================

// Run executes one payroll run. It returns an error only for configuration
// problems, which abort the run before any employee is processed; all
// per-employee issues land in the result instead.
func Run(in RunInput) (*RunResult, error) {
	if err := in.Settings.Validate(); err != nil {
		return nil, err
	}
	for _, emp := range in.Employees {
		if err := emp.Policy.Validate(); err != nil {
			return nil, err
		}
	}

	reconciler := Reconciler{Calendar: in.Calendar, Breaks: in.Settings.Breaks}
	aggregator := Aggregator{
		Overtime:         in.Settings.Overtime,
		DailyRestMinutes: in.Settings.Breaks.DailyRestMinutes,
	}
	calculator := Calculator{
		Calendar: in.Calendar,
		Rates:    in.Settings.Rates,
		Rounding: in.Settings.Rounding,
	}

	result := &RunResult{Period: in.Period}

	for _, emp := range in.Employees {
		rec := reconciler.Reconcile(emp.Employee.ID, emp.Events)
		result.Anomalies = append(result.Anomalies, rec.Anomalies...)

		agg := aggregator.Aggregate(emp.Employee.ID, in.Period, rec.Sessions)
		result.Aggregates = append(result.Aggregates, agg)

		line, anomalies, err := calculator.Calculate(agg, emp.Policy)
		if err != nil {
			result.Failures = append(result.Failures, LineFailure{EmployeeID: emp.Employee.ID, Err: err})
			continue
		}
		result.Anomalies = append(result.Anomalies, anomalies...)
		result.Lines = append(result.Lines, line)
	}

	sort.Slice(result.Lines, func(i, j int) bool {
		return result.Lines[i].EmployeeID < result.Lines[j].EmployeeID
	})
	sort.Slice(result.Aggregates, func(i, j int) bool {
		return result.Aggregates[i].EmployeeID < result.Aggregates[j].EmployeeID
	})

	return result, nil
}
