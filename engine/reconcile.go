/*
reconcile.go - Pairing raw scans into worked sessions

PURPOSE:
  Turns an employee's ordered scan events into clean WorkSessions plus a
  list of anomalies. This is the messy edge of the pipeline: real clock
  data has double check-ins, forgotten check-outs, and shifts that cross
  midnight.

PAIRING ALGORITHM:
  Walk events in timestamp order. An IN opens a pending session; the next
  OUT closes it.

  - IN while a session is pending: the EARLIER in is discarded as a
    DuplicateCheckIn anomaly; the later IN stays pending.
  - OUT with nothing pending: OrphanCheckOut anomaly, no session.
  - IN still pending at the end of the range: UnclosedSession anomaly. The
    session is excluded from this run and becomes eligible again once a
    later fetch sees its OUT.

SPLITTING:
  A closed session never spans a classification boundary. Sessions are cut
  at every midnight, and each piece is classified by its own date. A shift
  22:00-02:00 over a normal->holiday boundary becomes two sessions whose
  minutes sum to the original duration.

BREAKS:
  An optional BreakRule excludes a lunch window (the original workplace
  rule: 12:00-13:00) from every session, and a fixed per-day rest that the
  aggregator deducts. Both default to off.

  The reconciler is pure and deterministic; it performs no I/O.

SEE ALSO:
  - aggregate.go: sums the sessions this produces
  - calendar.go: classification lookup
*/
package engine

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// BREAK RULE - Optional lunch window and daily rest
// =============================================================================

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

func (ct ClockTime) on(d Date, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, ct.Hour, ct.Minute, 0, 0, loc)
}

// BreakRule configures unpaid breaks. The zero value disables both rules,
// so every paired minute counts as worked time.
type BreakRule struct {
	// Lunch window excluded from every session, applied per calendar day.
	// Disabled when LunchStart == LunchEnd.
	LunchStart ClockTime
	LunchEnd   ClockTime

	// Fixed rest deducted once per worked day, allocated against the day's
	// buckets in normal -> special -> holiday order. Never goes below zero.
	DailyRestMinutes Minutes
}

func (b BreakRule) lunchEnabled() bool { return b.LunchStart != b.LunchEnd }

// =============================================================================
// RECONCILER
// =============================================================================

// Reconciler pairs one employee's scan events into sessions.
type Reconciler struct {
	Calendar Calendar
	Breaks   BreakRule
}

// ReconcileResult is the output of one reconciliation pass.
type ReconcileResult struct {
	Sessions  []WorkSession
	Anomalies []Anomaly
}

// Reconcile pairs the events of one employee over a bounded query range.
// Events are processed in timestamp order; the input is re-sorted so the
// result does not depend on storage ordering quirks.
func (r Reconciler) Reconcile(employeeID EmployeeID, events []ScanEvent) ReconcileResult {
	sorted := make([]ScanEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var result ReconcileResult
	var pending *ScanEvent

	for i := range sorted {
		ev := sorted[i]
		switch ev.Direction {
		case DirectionIn:
			if pending != nil {
				result.Anomalies = append(result.Anomalies, Anomaly{
					Kind:       AnomalyDuplicateCheckIn,
					EmployeeID: employeeID,
					At:         pending.Timestamp,
					Detail:     fmt.Sprintf("superseded by check-in at %s", ev.Timestamp.Format(time.RFC3339)),
				})
			}
			pending = &sorted[i]

		case DirectionOut:
			if pending == nil {
				result.Anomalies = append(result.Anomalies, Anomaly{
					Kind:       AnomalyOrphanCheckOut,
					EmployeeID: employeeID,
					At:         ev.Timestamp,
					Detail:     "check-out without a pending check-in",
				})
				continue
			}
			result.Sessions = append(result.Sessions,
				r.splitSession(employeeID, pending.Timestamp, ev.Timestamp)...)
			pending = nil
		}
	}

	if pending != nil {
		result.Anomalies = append(result.Anomalies, Anomaly{
			Kind:       AnomalyUnclosedSession,
			EmployeeID: employeeID,
			At:         pending.Timestamp,
			Detail:     "check-in never closed within the query range",
		})
	}

	return result
}

// splitSession cuts [start, end) at every midnight and around the lunch
// window, classifying each piece by its own date. Pieces with zero length
// are dropped; the remaining minutes always sum to the paired duration
// minus excluded breaks.
func (r Reconciler) splitSession(employeeID EmployeeID, start, end time.Time) []WorkSession {
	if !end.After(start) {
		return nil
	}

	var sessions []WorkSession
	cur := start
	for cur.Before(end) {
		day := DateOf(cur)
		dayEnd := day.AddDays(1).Time(cur.Location())
		segEnd := end
		if dayEnd.Before(segEnd) {
			segEnd = dayEnd
		}

		cls := r.Calendar.Classify(day)
		for _, piece := range r.excludeLunch(cur, segEnd, day) {
			sessions = append(sessions, WorkSession{
				EmployeeID:     employeeID,
				Start:          piece.start,
				End:            piece.end,
				Classification: cls,
			})
		}
		cur = segEnd
	}
	return sessions
}

type interval struct{ start, end time.Time }

// excludeLunch removes the lunch window from a within-day segment,
// returning the remaining pieces in order.
func (r Reconciler) excludeLunch(start, end time.Time, day Date) []interval {
	if !r.Breaks.lunchEnabled() {
		return []interval{{start, end}}
	}
	ws := r.Breaks.LunchStart.on(day, start.Location())
	we := r.Breaks.LunchEnd.on(day, start.Location())
	if !ws.Before(end) || !we.After(start) {
		return []interval{{start, end}}
	}

	var pieces []interval
	if start.Before(ws) {
		pieces = append(pieces, interval{start, ws})
	}
	if we.Before(end) {
		pieces = append(pieces, interval{we, end})
	}
	return pieces
}
