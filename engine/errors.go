/*
errors.go - Centralized error and anomaly types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.

ERROR CATEGORIES:
  1. Configuration errors - bad calendar/policy/settings setup. Fatal:
     rejected before any calculation begins.
  2. Line failures - fatal for ONE employee's payroll line only (e.g.
     ProrationUndefined). Other employees in the same run are unaffected.
  3. Anomalies - non-fatal per-event or per-line findings (duplicate
     check-in, orphan check-out, unclosed session, clamped net). Collected
     and reported alongside normal output, never silently dropped.

USAGE:
  Callers match with errors.Is / errors.As:

    if errors.Is(err, engine.ErrProrationUndefined) {
        // fixed-salary employee with a partial period and no proration rule
    }

SEE ALSO:
  - run.go: attaches anomalies and line failures to the run result
  - calendar.go / payroll.go: produce ConfigurationError at load time
*/
package engine

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProrationUndefined is returned when a fixed-salary employee has a
	// partial pay period and the policy configures no proration method.
	// The engine refuses to guess; the line fails, the run continues.
	ErrProrationUndefined = errors.New("proration undefined for partial period")

	// ErrInvalidPeriod is returned when a pay period is malformed.
	ErrInvalidPeriod = errors.New("invalid pay period")

	// ErrEmployeeNotFound is returned by stores when an employee is unknown.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrTokenNotFound is returned when a QR token resolves to no employee.
	ErrTokenNotFound = errors.New("qr token not found")

	// ErrEmployeeRetired is returned when a retired employee's token scans.
	ErrEmployeeRetired = errors.New("employee is retired")
)

// =============================================================================
// CONFIGURATION ERROR - Fatal before any calculation
// =============================================================================

// ConfigurationError reports malformed calendar, policy, or settings input.
// It is always raised at configuration load, never mid-calculation.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// =============================================================================
// LINE FAILURE - Fatal for one employee's line only
// =============================================================================

// ProrationError carries the context of an undefined proration.
type ProrationError struct {
	EmployeeID EmployeeID
	Period     PayPeriod
}

func (e *ProrationError) Error() string {
	return fmt.Sprintf("proration undefined: employee %s has a partial period %s and no proration method configured",
		e.EmployeeID, e.Period.Label)
}

func (e *ProrationError) Unwrap() error { return ErrProrationUndefined }

// LineFailure records that one employee's payroll line could not be
// produced. The rest of the run is unaffected.
type LineFailure struct {
	EmployeeID EmployeeID
	Err        error
}

// =============================================================================
// ANOMALIES - Non-fatal findings reported with the result
// =============================================================================

type AnomalyKind string

const (
	// AnomalyDuplicateCheckIn: two IN scans with no OUT between them.
	// The earlier IN is discarded; the later one stays pending.
	AnomalyDuplicateCheckIn AnomalyKind = "duplicate_check_in"

	// AnomalyOrphanCheckOut: an OUT scan with no pending IN. No session.
	AnomalyOrphanCheckOut AnomalyKind = "orphan_check_out"

	// AnomalyUnclosedSession: an IN still pending at the end of the query
	// range. Excluded from aggregation for this run; it becomes eligible
	// again once a later event fetch sees its OUT.
	AnomalyUnclosedSession AnomalyKind = "unclosed_session"

	// AnomalyNegativeNetClamped: deductions drove net pay below zero and
	// the line was clamped to zero.
	AnomalyNegativeNetClamped AnomalyKind = "negative_net_clamped"
)

// Anomaly is a non-fatal per-event or per-line finding.
type Anomaly struct {
	Kind       AnomalyKind
	EmployeeID EmployeeID
	At         time.Time
	Detail     string
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s: employee=%s at=%s %s",
		a.Kind, a.EmployeeID, a.At.Format(time.RFC3339), a.Detail)
}
