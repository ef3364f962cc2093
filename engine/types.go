/*
Package engine provides the attendance aggregation and payroll calculation core.

PURPOSE:
  This package contains the pipeline that turns raw time-clock scan events
  into a monthly payroll: pairing IN/OUT scans into worked sessions,
  classifying worked time into normal/holiday/special buckets, applying
  overtime thresholds, and pricing the result under an employee's pay policy.

KEY CONCEPTS IN THIS FILE (types.go):
  - ScanEvent: A raw, immutable clock-in/clock-out record
  - Date: A calendar day (the unit the classifier operates on)
  - WorkSession: A reconciled [start, end) interval with a classification
  - Aggregate: Per-employee, per-period minute totals by category
  - Money: Exact decimal currency amounts

DESIGN PRINCIPLES:
  1. Immutability: ScanEvents are never modified once recorded
  2. Precision: Uses decimal.Decimal to avoid floating-point errors in pay
  3. Determinism: Every stage is a pure function of its inputs
  4. Recomputability: A run produces fresh sessions/aggregates every time

DATA FLOW:
  []ScanEvent -> Reconciler -> []WorkSession -> Aggregator -> Aggregate
             -> Calculator -> PayrollLine -> export

SEE ALSO:
  - calendar.go: Date classification (normal/holiday/special)
  - reconcile.go: Scan pairing and session splitting
  - aggregate.go: Minute totals and overtime reclassification
  - payroll.go: Gross/deduction/net calculation
*/
package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Exact decimal currency
// =============================================================================

// Money is an exact decimal amount of currency. All monetary arithmetic in
// the engine happens on Money; binary floating point never touches pay.
type Money = decimal.Decimal

func NewMoney(value int64) Money { return decimal.NewFromInt(value) }

// MustParseMoney parses a decimal string and panics on failure. For
// constants and config defaults known to be well-formed; a malformed
// constant must never degrade to zero silently.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("malformed money constant %q: %v", s, err))
	}
	return d
}

// =============================================================================
// MINUTES - Worked time quantity
// =============================================================================

// Minutes is a whole number of worked minutes. Sessions are measured at
// minute granularity; sub-minute residue is truncated at pairing time.
type Minutes int64

// Hours converts minutes to an exact decimal hour count (e.g. 90 -> 1.5).
func (m Minutes) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(decimal.NewFromInt(60))
}

func (m Minutes) Duration() time.Duration { return time.Duration(m) * time.Minute }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type SpecialPeriodID string

// =============================================================================
// SCAN EVENT - Raw clock record
// =============================================================================

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// ScanEvent is a single QR clock scan. Events are immutable once recorded;
// ordering within an employee is by Timestamp.
type ScanEvent struct {
	EmployeeID EmployeeID
	Timestamp  time.Time
	Direction  Direction
}

// =============================================================================
// DATE - Calendar day
// =============================================================================

// Date is a calendar day, independent of wall-clock time. Classification
// and pay periods operate on dates, not timestamps.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar day a timestamp falls on, in the timestamp's
// own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Time returns midnight at the start of the date in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) AddDays(n int) Date          { return DateOf(d.Time(time.UTC).AddDate(0, 0, n)) }
func (d Date) Weekday() time.Weekday       { return d.Time(time.UTC).Weekday() }
func (d Date) Before(other Date) bool      { return d.Time(time.UTC).Before(other.Time(time.UTC)) }
func (d Date) After(other Date) bool       { return d.Time(time.UTC).After(other.Time(time.UTC)) }
func (d Date) Equal(other Date) bool       { return d == other }
func (d Date) BeforeOrEqual(o Date) bool   { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool    { return !d.Before(o) }
func (d Date) IsZero() bool                { return d == Date{} }

func (d Date) String() string { return d.Time(time.UTC).Format("2006-01-02") }

// DaysBetween returns the number of days from a to b (b after a is positive).
func DaysBetween(a, b Date) int {
	return int(b.Time(time.UTC).Sub(a.Time(time.UTC)).Hours() / 24)
}

// =============================================================================
// CLASSIFICATION - What kind of day worked time fell on
// =============================================================================

type Category string

const (
	CategoryNormal  Category = "normal"
	CategoryHoliday Category = "holiday"
	CategorySpecial Category = "special"
)

// Classification is the result of classifying a date. SpecialPeriodID is
// set only when Category is CategorySpecial.
type Classification struct {
	Category        Category
	SpecialPeriodID SpecialPeriodID
}

// =============================================================================
// WORK SESSION - Reconciled worked interval
// =============================================================================

// WorkSession is one reconciled [Start, End) worked interval. Sessions are
// derived, never persisted: each reconciliation pass produces them fresh.
//
// INVARIANTS:
//   - End > Start
//   - The interval never spans a classification boundary: a session that
//     crosses midnight into a differently-classified day is split first.
type WorkSession struct {
	EmployeeID     EmployeeID
	Start          time.Time
	End            time.Time
	Classification Classification
}

// Minutes returns the session length in whole minutes (truncated).
func (s WorkSession) Minutes() Minutes {
	return Minutes(s.End.Sub(s.Start) / time.Minute)
}

// =============================================================================
// AGGREGATE - Per-employee, per-period minute totals
// =============================================================================

// Aggregate sums reconciled sessions for one employee over one pay period.
//
// INVARIANT: NormalMinutes + HolidayMinutes + SpecialMinutes + OvertimeMinutes
// equals the total reconciled worked minutes for the period. Overtime is
// reclassified out of normal, never double-counted.
type Aggregate struct {
	EmployeeID EmployeeID
	Period     PayPeriod

	NormalMinutes   Minutes
	HolidayMinutes  Minutes
	SpecialMinutes  Minutes
	OvertimeMinutes Minutes

	// SpecialBreakdown splits SpecialMinutes by special period, so that
	// per-period multipliers can price each range independently.
	SpecialBreakdown map[SpecialPeriodID]Minutes

	// DaysWorked counts distinct calendar days with at least one session.
	// Day-based proration methods use it as the worked-day denominator input.
	DaysWorked int
}

// TotalMinutes returns all reconciled worked minutes in the period.
func (a Aggregate) TotalMinutes() Minutes {
	return a.NormalMinutes + a.HolidayMinutes + a.SpecialMinutes + a.OvertimeMinutes
}

// =============================================================================
// PAYROLL LINE - Terminal output of one employee's calculation
// =============================================================================

// DeductionLine is one applied deduction, in application order.
type DeductionLine struct {
	Name   string
	Amount Money
}

// PayrollLine is the priced result for one employee and one pay period.
// The engine produces it and hands it off; persistence is the caller's
// concern.
type PayrollLine struct {
	EmployeeID EmployeeID
	Period     PayPeriod
	Gross      Money
	Deductions []DeductionLine
	Net        Money
}

// =============================================================================
// EMPLOYEE - Minimal identity record the engine needs
// =============================================================================

// Employee is the slice of the employee master the engine and its adapters
// care about. QRToken identifies the employee on the clock-capture side.
type Employee struct {
	ID          EmployeeID
	Name        string
	QRToken     string
	Retired     bool
	RetiredDate *Date
}
