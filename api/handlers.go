/*
handlers.go - HTTP request handlers

PURPOSE:
  Implements the HTTP endpoints: employee management, QR scan capture,
  payroll runs, and export downloads. Handlers translate between the JSON
  contract (dto.go) and the engine's types; no business logic lives here.

ENDPOINTS:
  GET    /api/employees                      List employees
  POST   /api/employees                      Create employee with policy
  GET    /api/employees/{id}                 Fetch one employee
  POST   /api/employees/{id}/retire          Retire (rotates QR token)
  POST   /api/employees/{id}/rehire          Rehire (rotates QR token)
  POST   /api/scans                          Record a QR scan
  POST   /api/payroll/run                    Run payroll for a period
  GET    /api/payroll/{period}/export.csv    CSV download
  GET    /api/payroll/{period}/export.xlsx   XLSX download

SEE ALSO:
  - server.go: Routing and middleware
  - engine/run.go: The pipeline the payroll endpoints drive
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/factory"
)

// =============================================================================
// HANDLER - Holds dependencies for all endpoints
// =============================================================================

// Handler carries the dependencies the endpoints need.
type Handler struct {
	store    engine.Store
	capture  *attendance.Capture
	calendar engine.Calendar
	settings engine.Settings
	loc      *time.Location
}

// NewHandler wires a handler around a store and the company configuration.
// loc is the timezone scans and period boundaries are interpreted in; nil
// means UTC.
func NewHandler(store engine.Store, calendar engine.Calendar, settings engine.Settings, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	capture := attendance.NewCapture(store)
	// Scans stamp in company time, so "today" for direction inference
	// matches the company clock.
	capture.Now = func() time.Time { return time.Now().In(loc) }
	return &Handler{
		store:    store,
		capture:  capture,
		calendar: calendar,
		settings: settings,
		loc:      loc,
	}
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees handles GET /api/employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, emp := range employees {
		dtos = append(dtos, toEmployeeDTO(emp))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee handles POST /api/employees.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	req.Policy.EmployeeID = req.ID
	policy, err := factory.FromPolicyJSON(req.Policy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pay policy", err)
		return
	}

	emp := engine.Employee{
		ID:      engine.EmployeeID(req.ID),
		Name:    req.Name,
		QRToken: attendance.NewQRToken(),
	}
	if err := h.store.SaveEmployee(r.Context(), emp, policy); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee handles GET /api/employees/{id}.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))
	emp, _, err := h.store.Employee(r.Context(), id)
	if err != nil {
		if errors.Is(err, engine.ErrEmployeeNotFound) {
			writeError(w, http.StatusNotFound, "employee not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// RetireEmployee handles POST /api/employees/{id}/retire. Retiring rotates
// the QR token so the old badge stops scanning immediately.
func (h *Handler) RetireEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	var req RetireEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	on := engine.DateOf(time.Now().In(h.loc))
	if req.Date != "" {
		t, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD", err)
			return
		}
		on = engine.Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
	}

	if err := attendance.Retire(r.Context(), h.store, id, on); err != nil {
		if errors.Is(err, engine.ErrEmployeeNotFound) {
			writeError(w, http.StatusNotFound, "employee not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to retire employee", err)
		return
	}

	emp, _, err := h.store.Employee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// RehireEmployee handles POST /api/employees/{id}/rehire.
func (h *Handler) RehireEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	if err := attendance.Rehire(r.Context(), h.store, id); err != nil {
		if errors.Is(err, engine.ErrEmployeeNotFound) {
			writeError(w, http.StatusNotFound, "employee not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to rehire employee", err)
		return
	}

	emp, _, err := h.store.Employee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// =============================================================================
// SCAN ENDPOINT
// =============================================================================

// RecordScan handles POST /api/scans. The kiosk posts the badge token and
// the capture adapter infers direction from the day's last event.
func (h *Handler) RecordScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required", nil)
		return
	}

	ev, err := h.capture.RecordScan(r.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrTokenNotFound):
			writeError(w, http.StatusNotFound, "unknown token", err)
		case errors.Is(err, engine.ErrEmployeeRetired):
			writeError(w, http.StatusForbidden, "employee is retired", err)
		default:
			writeError(w, http.StatusInternalServerError, "failed to record scan", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toScanDTO(ev))
}

// =============================================================================
// PAYROLL ENDPOINTS
// =============================================================================

// RunPayroll handles POST /api/payroll/run.
func (h *Handler) RunPayroll(w http.ResponseWriter, r *http.Request) {
	var req RunPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.runPeriod(r, req.Period)
	if err != nil {
		writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRunResponse(result))
}

// ExportCSV handles GET /api/payroll/{period}/export.csv.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	result, err := h.runPeriod(r, chi.URLParam(r, "period"))
	if err != nil {
		writeRunError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payroll_%s.csv"`, result.Period.Label))
	if err := export.WriteCSV(w, result.Lines, result.Aggregates); err != nil {
		// Headers are already out; nothing useful left to send.
		return
	}
}

// ExportXLSX handles GET /api/payroll/{period}/export.xlsx.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	result, err := h.runPeriod(r, chi.URLParam(r, "period"))
	if err != nil {
		writeRunError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payroll_%s.xlsx"`, result.Period.Label))
	if err := export.WriteXLSX(w, result.Lines, result.Aggregates); err != nil {
		return
	}
}

// runPeriod materializes the run input for a YYYYMM label and executes the
// pipeline. Events are loaded per employee over the period's bounds.
func (h *Handler) runPeriod(r *http.Request, ym string) (*engine.RunResult, error) {
	period, err := engine.ResolvePayPeriod(ym, h.settings.ClosingDay)
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	employees, err := h.store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	// One day of slack on each side of the period so a shift straddling
	// the boundary pairs up instead of surfacing as an unclosed check-in
	// in one run and an orphan check-out in the next. The aggregator
	// drops sub-sessions dated outside the period, so each piece is paid
	// exactly once.
	from, to := period.Bounds(h.loc)
	from, to = from.AddDate(0, 0, -1), to.AddDate(0, 0, 1)

	inputs := make([]engine.EmployeeInput, 0, len(employees))
	for _, emp := range employees {
		events, err := h.store.EventsInRange(ctx, emp.ID, from, to)
		if err != nil {
			return nil, err
		}
		// Classification and midnight splits operate on the timestamp's
		// own calendar day; normalize into company time.
		for i := range events {
			events[i].Timestamp = events[i].Timestamp.In(h.loc)
		}
		policy, err := h.store.Policy(ctx, emp.ID)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, engine.EmployeeInput{Employee: emp, Events: events, Policy: policy})
	}

	result, err := engine.Run(engine.RunInput{
		Period:    period,
		Calendar:  h.calendar,
		Settings:  h.settings,
		Employees: inputs,
	})
	if err != nil {
		return nil, err
	}

	// Anomalies on slack-window events belong to the neighboring period
	// and are reported by that period's own run.
	kept := result.Anomalies[:0]
	for _, a := range result.Anomalies {
		if a.At.IsZero() || period.Contains(engine.DateOf(a.At.In(h.loc))) {
			kept = append(kept, a)
		}
	}
	result.Anomalies = kept
	return result, nil
}

// writeRunError maps pipeline errors to HTTP statuses: configuration and
// period problems are the caller's fault, everything else is ours.
func writeRunError(w http.ResponseWriter, err error) {
	if engine.IsConfigurationError(err) || errors.Is(err, engine.ErrInvalidPeriod) {
		writeError(w, http.StatusBadRequest, "invalid payroll configuration", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "payroll run failed", err)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
