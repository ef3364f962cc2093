/*
capture.go - QR clock-capture adapter

PURPOSE:
  The bridge between the QR scanner and the engine. It does exactly one
  thing: resolve a scanned token to an employee and append a ScanEvent.
  No aggregation logic lives here; the reconciler owns all interpretation
  of the event stream.

DIRECTION INFERENCE:
  Kiosk scanners send a bare token, not a direction. The adapter toggles:
  if the employee's latest event today was an IN, this scan is an OUT, and
  vice versa. A caller that knows the direction (manual corrections) can
  pass it explicitly.

TOKENS:
  Each employee carries an opaque token embedded in their QR badge.
  Retiring an employee invalidates the badge by rotating the token, and
  scans from retired employees are rejected outright.

SEE ALSO:
  - engine/store.go: EventStore/EmployeeStore this adapter writes through
  - engine/reconcile.go: where the recorded events are interpreted
*/
package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// CAPTURE - Turns token scans into ScanEvents
// =============================================================================

// Capture records clock scans. Now is injectable for tests and defaults
// to time.Now.
type Capture struct {
	Store engine.Store
	Now   func() time.Time
}

func NewCapture(store engine.Store) *Capture {
	return &Capture{Store: store, Now: time.Now}
}

// RecordScan resolves a QR token and appends a scan event with the
// direction inferred from the employee's latest event today. It returns
// the recorded event.
func (c *Capture) RecordScan(ctx context.Context, token string) (engine.ScanEvent, error) {
	emp, _, err := c.Store.EmployeeByToken(ctx, token)
	if err != nil {
		return engine.ScanEvent{}, err
	}
	if emp.Retired {
		return engine.ScanEvent{}, engine.ErrEmployeeRetired
	}

	now := c.Now()
	direction := engine.DirectionIn
	if last, ok, err := c.Store.LastEventOn(ctx, emp.ID, engine.DateOf(now)); err != nil {
		return engine.ScanEvent{}, err
	} else if ok && last.Direction == engine.DirectionIn {
		direction = engine.DirectionOut
	}

	return c.record(ctx, emp.ID, now, direction)
}

// RecordScanDirected appends a scan with an explicit direction, bypassing
// inference. Used for manual corrections from the admin side.
func (c *Capture) RecordScanDirected(ctx context.Context, token string, at time.Time, direction engine.Direction) (engine.ScanEvent, error) {
	emp, _, err := c.Store.EmployeeByToken(ctx, token)
	if err != nil {
		return engine.ScanEvent{}, err
	}
	if emp.Retired {
		return engine.ScanEvent{}, engine.ErrEmployeeRetired
	}
	return c.record(ctx, emp.ID, at, direction)
}

func (c *Capture) record(ctx context.Context, id engine.EmployeeID, at time.Time, direction engine.Direction) (engine.ScanEvent, error) {
	ev := engine.ScanEvent{EmployeeID: id, Timestamp: at, Direction: direction}
	if err := c.Store.AppendEvent(ctx, ev); err != nil {
		return engine.ScanEvent{}, err
	}
	return ev, nil
}

// =============================================================================
// TOKENS AND RETIREMENT
// =============================================================================

// NewQRToken issues an opaque badge token.
func NewQRToken() string {
	return uuid.NewString()
}

// Retire flags the employee as retired as of the given date and rotates
// the QR token so the old badge stops scanning.
func Retire(ctx context.Context, store engine.Store, id engine.EmployeeID, on engine.Date) error {
	emp, policy, err := store.Employee(ctx, id)
	if err != nil {
		return err
	}
	if emp.Retired {
		return nil
	}
	emp.Retired = true
	emp.RetiredDate = &on
	emp.QRToken = NewQRToken()
	policy.RetireDate = &on
	return store.SaveEmployee(ctx, emp, policy)
}

// Rehire clears the retirement flag and issues a fresh badge token.
func Rehire(ctx context.Context, store engine.Store, id engine.EmployeeID) error {
	emp, policy, err := store.Employee(ctx, id)
	if err != nil {
		return err
	}
	if !emp.Retired {
		return nil
	}
	emp.Retired = false
	emp.RetiredDate = nil
	emp.QRToken = NewQRToken()
	policy.RetireDate = nil
	return store.SaveEmployee(ctx, emp, policy)
}
