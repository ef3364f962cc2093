/*
period.go - Pay periods with closing-day resolution

PURPOSE:
  A pay period is the bounded date range one payroll run covers. Periods
  are addressed by a "YYYYMM" label and resolved against the company's
  closing day:

    closing day >= 28  -> the calendar month itself
                          (202501 -> Jan 1 .. Jan 31)
    closing day  < 28  -> from the day after the previous month's closing
                          day through this month's closing day
                          (closing 15, 202502 -> Jan 16 .. Feb 15)

  The run aggregates everything whose session start falls in the period.
*/
package engine

import (
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// PAY PERIOD
// =============================================================================

// PayPeriod is an inclusive [Start, End] date range labeled "YYYYMM".
type PayPeriod struct {
	Label string
	Start Date
	End   Date
}

// ResolvePayPeriod turns a YYYYMM label into concrete boundaries using the
// configured closing day. closingDay outside 1..31 is treated as 31.
func ResolvePayPeriod(ym string, closingDay int) (PayPeriod, error) {
	year, month, err := parseYM(ym)
	if err != nil {
		return PayPeriod{}, err
	}
	if closingDay < 1 || closingDay > 31 {
		closingDay = 31
	}

	if closingDay >= 28 {
		start := NewDate(year, month, 1)
		end := endOfMonth(year, month)
		return PayPeriod{Label: ym, Start: start, End: end}, nil
	}

	prevYear, prevMonth := year, month-1
	if month == time.January {
		prevYear, prevMonth = year-1, time.December
	}
	start := NewDate(prevYear, prevMonth, closingDay+1)
	end := NewDate(year, month, closingDay)
	return PayPeriod{Label: ym, Start: start, End: end}, nil
}

func parseYM(ym string) (int, time.Month, error) {
	if len(ym) != 6 {
		return 0, 0, fmt.Errorf("%w: %q is not YYYYMM", ErrInvalidPeriod, ym)
	}
	year, err := strconv.Atoi(ym[:4])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q is not YYYYMM", ErrInvalidPeriod, ym)
	}
	m, err := strconv.Atoi(ym[4:])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("%w: %q has month out of range", ErrInvalidPeriod, ym)
	}
	return year, time.Month(m), nil
}

func endOfMonth(year int, month time.Month) Date {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return DateOf(t)
}

// Contains reports whether the date falls in the period.
func (p PayPeriod) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// CalendarDays returns the number of days in the period.
func (p PayPeriod) CalendarDays() int { return DaysBetween(p.Start, p.End) + 1 }

// Bounds returns the period as a half-open [from, to) timestamp range in
// the given location, suitable for event queries.
func (p PayPeriod) Bounds(loc *time.Location) (time.Time, time.Time) {
	return p.Start.Time(loc), p.End.AddDays(1).Time(loc)
}

func (p PayPeriod) String() string {
	return fmt.Sprintf("%s [%s, %s]", p.Label, p.Start, p.End)
}
