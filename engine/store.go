/*
store.go - Persistence interfaces the engine consumes

PURPOSE:
  The engine itself is pure; these interfaces are the boundary to whatever
  persists scan events and employee records. The run only requires reads
  (the clock-capture adapter owns the writes), and read consistency during
  a run is the store's contract, not the engine's.

IMPLEMENTATIONS:
  - engine/store (memory): in-memory, for tests and scenarios
  - store/sqlite: production SQLite store

SEE ALSO:
  - run.go: consumes fully materialized EmployeeInputs built from these
  - attendance/capture.go: the writer side of EventStore
*/
package engine

import (
	"context"
	"time"
)

// =============================================================================
// EVENT STORE - Append-only scan event log
// =============================================================================

// EventStore persists scan events. Events are append-only: a recorded scan
// is never updated or deleted, mistakes are handled at reconciliation.
type EventStore interface {
	// AppendEvent records one scan.
	AppendEvent(ctx context.Context, ev ScanEvent) error

	// EventsInRange returns one employee's events with timestamps in
	// [from, to), ordered by timestamp ascending.
	EventsInRange(ctx context.Context, id EmployeeID, from, to time.Time) ([]ScanEvent, error)

	// LastEventOn returns the employee's latest event on the given day,
	// or ok=false when the day has none. The capture adapter uses it to
	// infer scan direction.
	LastEventOn(ctx context.Context, id EmployeeID, day Date) (ScanEvent, bool, error)
}

// =============================================================================
// EMPLOYEE STORE - Employee master and pay policies
// =============================================================================

// EmployeeStore persists employees together with their pay policies.
type EmployeeStore interface {
	SaveEmployee(ctx context.Context, emp Employee, policy PayPolicy) error
	Employee(ctx context.Context, id EmployeeID) (Employee, PayPolicy, error)
	EmployeeByToken(ctx context.Context, token string) (Employee, PayPolicy, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	Policy(ctx context.Context, id EmployeeID) (PayPolicy, error)
}

// Store combines the persistence surfaces one deployment needs.
type Store interface {
	EventStore
	EmployeeStore
}
