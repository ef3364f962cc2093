/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements engine.Store (EventStore + EmployeeStore) on SQLite. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  scan_events: Append-only clock log. No UPDATE, no DELETE - suspicious
               scans are handled by the reconciler, not by editing history.
  employees:   Employee master, with the QR token and the pay policy
               stored as a JSON document (policies change rarely and are
               read whole).

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block and crash recovery improves.

TIMEZONES:
  Timestamps are stored normalized to UTC but read back in the store's
  configured location (NewInLocation), so day-based interpretation
  downstream (classification, midnight splits, "today" for direction
  inference) follows company time rather than UTC.

USAGE:
  store, err := sqlite.NewInLocation("./data/payroll.db", tokyo)
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/factory"
)

// Store implements engine.Store using SQLite.
type Store struct {
	db  *sql.DB
	loc *time.Location
}

var _ engine.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path. Timestamps
// read back in UTC. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	return NewInLocation(dbPath, time.UTC)
}

// NewInLocation creates a SQLite store whose event timestamps read back in
// the given location. nil means UTC.
func NewInLocation(dbPath string, loc *time.Location) (*Store, error) {
	if loc == nil {
		loc = time.UTC
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, loc: loc}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	-- Scan events (append-only clock log)
	CREATE TABLE IF NOT EXISTS scan_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL,
		ts TEXT NOT NULL,
		direction TEXT NOT NULL CHECK (direction IN ('in', 'out'))
	);
	CREATE INDEX IF NOT EXISTS idx_scan_events_employee_ts
		ON scan_events(employee_id, ts);

	-- Employee master with pay policy document
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		qr_token TEXT NOT NULL UNIQUE,
		retired INTEGER NOT NULL DEFAULT 0,
		retired_date TEXT,
		policy_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EVENT STORE
// =============================================================================

// AppendEvent records one scan. Append-only: the log is never edited.
func (s *Store) AppendEvent(ctx context.Context, ev engine.ScanEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scan_events (employee_id, ts, direction) VALUES (?, ?, ?)`,
		string(ev.EmployeeID), ev.Timestamp.UTC().Format(time.RFC3339), string(ev.Direction))
	return err
}

func (s *Store) EventsInRange(ctx context.Context, id engine.EmployeeID, from, to time.Time) ([]engine.ScanEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id, ts, direction FROM scan_events
		 WHERE employee_id = ? AND ts >= ? AND ts < ?
		 ORDER BY ts ASC, id ASC`,
		string(id), from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanEvents(rows)
}

func (s *Store) LastEventOn(ctx context.Context, id engine.EmployeeID, day engine.Date) (engine.ScanEvent, bool, error) {
	// The day's bounds follow the store's location, so "today" matches the
	// company clock rather than UTC.
	from := day.Time(s.loc)
	to := day.AddDays(1).Time(s.loc)
	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id, ts, direction FROM scan_events
		 WHERE employee_id = ? AND ts >= ? AND ts < ?
		 ORDER BY ts DESC, id DESC LIMIT 1`,
		string(id), from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return engine.ScanEvent{}, false, err
	}
	defer rows.Close()

	evs, err := s.scanEvents(rows)
	if err != nil || len(evs) == 0 {
		return engine.ScanEvent{}, false, err
	}
	return evs[0], true, nil
}

func (s *Store) scanEvents(rows *sql.Rows) ([]engine.ScanEvent, error) {
	var out []engine.ScanEvent
	for rows.Next() {
		var id, ts, direction string
		if err := rows.Scan(&id, &ts, &direction); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("corrupt timestamp %q: %w", ts, err)
		}
		out = append(out, engine.ScanEvent{
			EmployeeID: engine.EmployeeID(id),
			Timestamp:  t.In(s.loc),
			Direction:  engine.Direction(direction),
		})
	}
	return out, rows.Err()
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp engine.Employee, policy engine.PayPolicy) error {
	policyJSON, err := json.Marshal(policyToJSON(policy))
	if err != nil {
		return err
	}
	var retiredDate any
	if emp.RetiredDate != nil {
		retiredDate = emp.RetiredDate.String()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, qr_token, retired, retired_date, policy_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			qr_token = excluded.qr_token,
			retired = excluded.retired,
			retired_date = excluded.retired_date,
			policy_json = excluded.policy_json,
			updated_at = excluded.updated_at`,
		string(emp.ID), emp.Name, emp.QRToken, boolToInt(emp.Retired), retiredDate,
		string(policyJSON), now, now)
	return err
}

func (s *Store) Employee(ctx context.Context, id engine.EmployeeID) (engine.Employee, engine.PayPolicy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, qr_token, retired, retired_date, policy_json FROM employees WHERE id = ?`,
		string(id))
	return scanEmployee(row)
}

func (s *Store) EmployeeByToken(ctx context.Context, token string) (engine.Employee, engine.PayPolicy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, qr_token, retired, retired_date, policy_json FROM employees WHERE qr_token = ?`,
		token)
	emp, policy, err := scanEmployee(row)
	if errors.Is(err, engine.ErrEmployeeNotFound) {
		return engine.Employee{}, engine.PayPolicy{}, engine.ErrTokenNotFound
	}
	return emp, policy, err
}

func (s *Store) ListEmployees(ctx context.Context) ([]engine.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, qr_token, retired, retired_date FROM employees ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Employee
	for rows.Next() {
		var emp engine.Employee
		var id, name, token string
		var retired int
		var retiredDate sql.NullString
		if err := rows.Scan(&id, &name, &token, &retired, &retiredDate); err != nil {
			return nil, err
		}
		emp.ID = engine.EmployeeID(id)
		emp.Name = name
		emp.QRToken = token
		emp.Retired = retired != 0
		if retiredDate.Valid {
			d, err := parseStoredDate(retiredDate.String)
			if err != nil {
				return nil, err
			}
			emp.RetiredDate = &d
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) Policy(ctx context.Context, id engine.EmployeeID) (engine.PayPolicy, error) {
	_, policy, err := s.Employee(ctx, id)
	return policy, err
}

func scanEmployee(row *sql.Row) (engine.Employee, engine.PayPolicy, error) {
	var emp engine.Employee
	var id, name, token, policyJSON string
	var retired int
	var retiredDate sql.NullString

	err := row.Scan(&id, &name, &token, &retired, &retiredDate, &policyJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Employee{}, engine.PayPolicy{}, engine.ErrEmployeeNotFound
	}
	if err != nil {
		return engine.Employee{}, engine.PayPolicy{}, err
	}

	emp.ID = engine.EmployeeID(id)
	emp.Name = name
	emp.QRToken = token
	emp.Retired = retired != 0
	if retiredDate.Valid {
		d, err := parseStoredDate(retiredDate.String)
		if err != nil {
			return engine.Employee{}, engine.PayPolicy{}, err
		}
		emp.RetiredDate = &d
	}

	var pj factory.PolicyJSON
	if err := json.Unmarshal([]byte(policyJSON), &pj); err != nil {
		return engine.Employee{}, engine.PayPolicy{}, fmt.Errorf("corrupt policy for employee %s: %w", id, err)
	}
	policy, err := factory.FromPolicyJSON(pj)
	if err != nil {
		return engine.Employee{}, engine.PayPolicy{}, fmt.Errorf("corrupt policy for employee %s: %w", id, err)
	}
	return emp, policy, nil
}

func parseStoredDate(s string) (engine.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return engine.Date{}, fmt.Errorf("corrupt date %q: %w", s, err)
	}
	return engine.DateOf(t), nil
}

func policyToJSON(p engine.PayPolicy) factory.PolicyJSON {
	pj := factory.PolicyJSON{
		EmployeeID: string(p.EmployeeID),
		Mode:       string(p.Mode),
		Proration:  string(p.Proration),
	}
	if p.HourlyRate.IsPositive() {
		pj.HourlyRate = p.HourlyRate.String()
	}
	if p.MonthlySalary.IsPositive() {
		pj.MonthlySalary = p.MonthlySalary.String()
	}
	if p.HireDate != nil {
		pj.HireDate = p.HireDate.String()
	}
	if p.RetireDate != nil {
		pj.RetireDate = p.RetireDate.String()
	}
	for _, a := range p.Allowances {
		pj.Allowances = append(pj.Allowances, factory.AllowanceJSON{Name: a.Name, Amount: a.Amount.String()})
	}
	for _, d := range p.Deductions {
		pj.Deductions = append(pj.Deductions, factory.DeductionJSON{Name: d.Name, Kind: string(d.Kind), Amount: d.Amount.String()})
	}
	return pj
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
