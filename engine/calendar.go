/*
calendar.go - Date classification (normal / holiday / special)

PURPOSE:
  Decides, for a given calendar day, whether worked time on it is paid as
  normal, weekly-holiday, or special-period time. The classifier is a pure
  lookup: all rules are bound into an immutable Calendar at configuration
  load, and Classify never fails.

RULES:
  - Weekly holidays: a fixed set of weekdays (e.g. Saturday + Sunday).
  - Special periods: admin-defined inclusive date ranges (year-end, Obon,
    Golden Week and the like), each with its own pay multiplier.

PRECEDENCE:
  SPECIAL > HOLIDAY > NORMAL. A Sunday inside a special period classifies
  as special, not holiday.

VALIDATION:
  Two distinct special periods covering the same date would make Classify
  ambiguous, so NewCalendar rejects that with a ConfigurationError. Bad
  configuration fails at load, never at classification time.

SEE ALSO:
  - reconcile.go: splits sessions so each sits inside one classification
  - payroll.go: uses per-special-period multipliers when pricing
*/
package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// SPECIAL PERIOD - Admin-defined range with its own multiplier
// =============================================================================

// SpecialPeriod is an inclusive [Start, End] date range that pays at its
// own rate. Multiplier zero means "use the default special multiplier".
type SpecialPeriod struct {
	ID         SpecialPeriodID
	Name       string
	Start      Date
	End        Date
	Multiplier Money
}

// Contains reports whether the date falls inside the period.
func (sp SpecialPeriod) Contains(d Date) bool {
	return d.AfterOrEqual(sp.Start) && d.BeforeOrEqual(sp.End)
}

// =============================================================================
// CALENDAR - Immutable classification config
// =============================================================================

// Calendar classifies dates. Build it with NewCalendar; the zero value
// classifies every date as normal.
type Calendar struct {
	weeklyHolidays map[time.Weekday]bool
	specialPeriods []SpecialPeriod
}

// NewCalendar validates and binds a weekly holiday pattern plus special
// period ranges. It fails with ConfigurationError when:
//   - a special period ends before it starts, or
//   - two distinct special periods overlap (same date, two IDs), which
//     would make classification ambiguous.
func NewCalendar(weeklyHolidays []time.Weekday, specials []SpecialPeriod) (Calendar, error) {
	cal := Calendar{
		weeklyHolidays: make(map[time.Weekday]bool, len(weeklyHolidays)),
		specialPeriods: make([]SpecialPeriod, len(specials)),
	}
	for _, wd := range weeklyHolidays {
		cal.weeklyHolidays[wd] = true
	}
	copy(cal.specialPeriods, specials)

	seen := make(map[SpecialPeriodID]bool, len(specials))
	for i, sp := range specials {
		if sp.ID == "" {
			return Calendar{}, &ConfigurationError{
				Field:  "special_periods",
				Reason: fmt.Sprintf("period %q has no id", sp.Name),
			}
		}
		if seen[sp.ID] {
			return Calendar{}, &ConfigurationError{
				Field:  "special_periods",
				Reason: fmt.Sprintf("duplicate special period id %q", sp.ID),
			}
		}
		seen[sp.ID] = true
		if sp.End.Before(sp.Start) {
			return Calendar{}, &ConfigurationError{
				Field:  "special_periods",
				Reason: fmt.Sprintf("period %q ends %s before it starts %s", sp.ID, sp.End, sp.Start),
			}
		}
		for _, other := range specials[:i] {
			if rangesOverlap(sp.Start, sp.End, other.Start, other.End) {
				return Calendar{}, &ConfigurationError{
					Field:  "special_periods",
					Reason: fmt.Sprintf("periods %q and %q overlap", other.ID, sp.ID),
				}
			}
		}
	}
	return cal, nil
}

func rangesOverlap(aStart, aEnd, bStart, bEnd Date) bool {
	return aStart.BeforeOrEqual(bEnd) && bStart.BeforeOrEqual(aEnd)
}

// Classify returns the classification for a date.
// Precedence: special > weekly holiday > normal.
func (c Calendar) Classify(d Date) Classification {
	for _, sp := range c.specialPeriods {
		if sp.Contains(d) {
			return Classification{Category: CategorySpecial, SpecialPeriodID: sp.ID}
		}
	}
	if c.weeklyHolidays[d.Weekday()] {
		return Classification{Category: CategoryHoliday}
	}
	return Classification{Category: CategoryNormal}
}

// SpecialPeriodByID looks up a configured special period.
func (c Calendar) SpecialPeriodByID(id SpecialPeriodID) (SpecialPeriod, bool) {
	for _, sp := range c.specialPeriods {
		if sp.ID == id {
			return sp, true
		}
	}
	return SpecialPeriod{}, false
}

// IsWeeklyHoliday reports whether the weekday is part of the holiday pattern.
func (c Calendar) IsWeeklyHoliday(wd time.Weekday) bool { return c.weeklyHolidays[wd] }

// WorkingDays counts non-holiday, non-special days in [from, to] inclusive.
// Day-based proration uses it as the scheduled-working-day denominator.
func (c Calendar) WorkingDays(from, to Date) int {
	n := 0
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		if c.Classify(d).Category == CategoryNormal {
			n++
		}
	}
	return n
}
