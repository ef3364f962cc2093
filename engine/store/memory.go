// Package store provides in-memory Store implementations for tests and dev.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	events    map[engine.EmployeeID][]engine.ScanEvent
	employees map[engine.EmployeeID]engine.Employee
	policies  map[engine.EmployeeID]engine.PayPolicy
	byToken   map[string]engine.EmployeeID
}

var _ engine.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		events:    make(map[engine.EmployeeID][]engine.ScanEvent),
		employees: make(map[engine.EmployeeID]engine.Employee),
		policies:  make(map[engine.EmployeeID]engine.PayPolicy),
		byToken:   make(map[string]engine.EmployeeID),
	}
}

// AppendEvent records one scan. Append-only.
func (m *Memory) AppendEvent(_ context.Context, ev engine.ScanEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	evs := m.events[ev.EmployeeID]

	// Binary search for insertion point keeps the log timestamp-ordered.
	i := sort.Search(len(evs), func(i int) bool {
		return evs[i].Timestamp.After(ev.Timestamp)
	})
	evs = append(evs, engine.ScanEvent{})
	copy(evs[i+1:], evs[i:])
	evs[i] = ev
	m.events[ev.EmployeeID] = evs
	return nil
}

func (m *Memory) EventsInRange(_ context.Context, id engine.EmployeeID, from, to time.Time) ([]engine.ScanEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []engine.ScanEvent
	for _, ev := range m.events[id] {
		if !ev.Timestamp.Before(from) && ev.Timestamp.Before(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *Memory) LastEventOn(_ context.Context, id engine.EmployeeID, day engine.Date) (engine.ScanEvent, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var last engine.ScanEvent
	found := false
	for _, ev := range m.events[id] {
		if engine.DateOf(ev.Timestamp) == day {
			last = ev
			found = true
		}
	}
	return last, found, nil
}

func (m *Memory) SaveEmployee(_ context.Context, emp engine.Employee, policy engine.PayPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.employees[emp.ID]; ok && old.QRToken != emp.QRToken {
		delete(m.byToken, old.QRToken)
	}
	m.employees[emp.ID] = emp
	m.policies[emp.ID] = policy
	if emp.QRToken != "" {
		m.byToken[emp.QRToken] = emp.ID
	}
	return nil
}

func (m *Memory) Employee(_ context.Context, id engine.EmployeeID) (engine.Employee, engine.PayPolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return engine.Employee{}, engine.PayPolicy{}, engine.ErrEmployeeNotFound
	}
	return emp, m.policies[id], nil
}

func (m *Memory) EmployeeByToken(ctx context.Context, token string) (engine.Employee, engine.PayPolicy, error) {
	m.mu.RLock()
	id, ok := m.byToken[token]
	m.mu.RUnlock()
	if !ok {
		return engine.Employee{}, engine.PayPolicy{}, engine.ErrTokenNotFound
	}
	return m.Employee(ctx, id)
}

func (m *Memory) ListEmployees(_ context.Context) ([]engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]engine.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Policy(_ context.Context, id engine.EmployeeID) (engine.PayPolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.policies[id]
	if !ok {
		return engine.PayPolicy{}, engine.ErrEmployeeNotFound
	}
	return p, nil
}
