/*
aggregate.go - Minute totals per employee per pay period

PURPOSE:
  Sums reconciled sessions into one Aggregate: minutes per category, a
  per-special-period breakdown, distinct days worked, and overtime.

OVERTIME:
  Normal-category minutes beyond a configurable threshold reclassify into
  OvertimeMinutes. Two thresholds compose:
    1. Daily: applied per calendar day
    2. Period: applied to the remaining normal total for the period
  Overtime minutes are tracked separately and never double-counted against
  normal minutes.

DAILY REST:
  When the break rule configures a per-day rest (the original workplace
  deducts 15 minutes), it is taken once per worked day, allocated against
  the day's buckets in normal -> special -> holiday order, clamped at zero.

DETERMINISM:
  The result is invariant to the order sessions are presented: sessions are
  grouped by day first, and every per-day and per-period step is a pure
  function of the grouped totals.
*/
package engine

import "sort"

// =============================================================================
// OVERTIME RULE
// =============================================================================

// OvertimeRule configures overtime thresholds. Zero disables a threshold.
type OvertimeRule struct {
	DailyThresholdMinutes  Minutes
	PeriodThresholdMinutes Minutes
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator sums sessions for one employee within one pay period.
type Aggregator struct {
	Overtime         OvertimeRule
	DailyRestMinutes Minutes
}

type dayBucket struct {
	normal      Minutes
	holiday     Minutes
	special     Minutes
	specialByID map[SpecialPeriodID]Minutes
}

// Aggregate sums the sessions into one Aggregate. Sessions outside the
// period (by start date) are ignored; the reconciler normally hands in
// exactly the period's sessions.
func (ag Aggregator) Aggregate(employeeID EmployeeID, period PayPeriod, sessions []WorkSession) Aggregate {
	days := make(map[Date]*dayBucket)

	for _, s := range sessions {
		day := DateOf(s.Start)
		if !period.Contains(day) {
			continue
		}
		b := days[day]
		if b == nil {
			b = &dayBucket{specialByID: make(map[SpecialPeriodID]Minutes)}
			days[day] = b
		}
		m := s.Minutes()
		switch s.Classification.Category {
		case CategoryHoliday:
			b.holiday += m
		case CategorySpecial:
			b.special += m
			b.specialByID[s.Classification.SpecialPeriodID] += m
		default:
			b.normal += m
		}
	}

	agg := Aggregate{
		EmployeeID:       employeeID,
		Period:           period,
		SpecialBreakdown: make(map[SpecialPeriodID]Minutes),
	}

	for _, b := range days {
		agg.DaysWorked++
		ag.deductRest(b)

		normal := b.normal
		if ag.Overtime.DailyThresholdMinutes > 0 && normal > ag.Overtime.DailyThresholdMinutes {
			agg.OvertimeMinutes += normal - ag.Overtime.DailyThresholdMinutes
			normal = ag.Overtime.DailyThresholdMinutes
		}
		agg.NormalMinutes += normal
		agg.HolidayMinutes += b.holiday
		agg.SpecialMinutes += b.special
		for id, m := range b.specialByID {
			agg.SpecialBreakdown[id] += m
		}
	}

	if ag.Overtime.PeriodThresholdMinutes > 0 && agg.NormalMinutes > ag.Overtime.PeriodThresholdMinutes {
		agg.OvertimeMinutes += agg.NormalMinutes - ag.Overtime.PeriodThresholdMinutes
		agg.NormalMinutes = ag.Overtime.PeriodThresholdMinutes
	}

	return agg
}

// deductRest takes the daily rest out of one day's buckets, normal first,
// then special, then holiday. The special breakdown shrinks with the
// special bucket, largest periods first for a deterministic allocation.
func (ag Aggregator) deductRest(b *dayBucket) {
	remains := ag.DailyRestMinutes
	if remains <= 0 {
		return
	}

	take := min64(b.normal, remains)
	b.normal -= take
	remains -= take

	if remains > 0 {
		take = min64(b.special, remains)
		b.special -= take
		ag.shrinkSpecial(b, take)
		remains -= take
	}
	if remains > 0 {
		take = min64(b.holiday, remains)
		b.holiday -= take
	}
}

func (ag Aggregator) shrinkSpecial(b *dayBucket, take Minutes) {
	if take <= 0 || len(b.specialByID) == 0 {
		return
	}
	ids := make([]SpecialPeriodID, 0, len(b.specialByID))
	for id := range b.specialByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if b.specialByID[ids[i]] != b.specialByID[ids[j]] {
			return b.specialByID[ids[i]] > b.specialByID[ids[j]]
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		if take <= 0 {
			break
		}
		t := min64(b.specialByID[id], take)
		b.specialByID[id] -= t
		take -= t
	}
}

func min64(a, b Minutes) Minutes {
	if a < b {
		return a
	}
	return b
}
