/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  engine's internal types from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the factory, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: PolicyJSON embedded in employee requests
*/
package api

import (
	"time"

	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/factory"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	QRToken     string `json:"qr_token"`
	Retired     bool   `json:"retired"`
	RetiredDate string `json:"retired_date,omitempty"`
}

// CreateEmployeeRequest creates an employee with their pay policy.
type CreateEmployeeRequest struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Policy factory.PolicyJSON `json:"policy"`
}

// RetireEmployeeRequest flags an employee as retired.
type RetireEmployeeRequest struct {
	Date string `json:"date"` // YYYY-MM-DD; empty = today
}

// ScanRequest is what the QR kiosk posts: just the badge token.
type ScanRequest struct {
	Token string `json:"token"`
}

// ScanDTO echoes the recorded event back to the kiosk.
type ScanDTO struct {
	EmployeeID string `json:"employee_id"`
	Timestamp  string `json:"timestamp"`
	Direction  string `json:"direction"`
}

// RunPayrollRequest triggers a payroll run for a YYYYMM period.
type RunPayrollRequest struct {
	Period string `json:"period"`
}

// PayrollLineDTO is one employee's priced line.
type PayrollLineDTO struct {
	EmployeeID      string         `json:"employee_id"`
	Period          string         `json:"period"`
	NormalMinutes   int64          `json:"normal_minutes"`
	HolidayMinutes  int64          `json:"holiday_minutes"`
	SpecialMinutes  int64          `json:"special_minutes"`
	OvertimeMinutes int64          `json:"overtime_minutes"`
	DaysWorked      int            `json:"days_worked"`
	Gross           string         `json:"gross"`
	Deductions      []DeductionDTO `json:"deductions"`
	Net             string         `json:"net"`
}

type DeductionDTO struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// AnomalyDTO is a non-fatal finding attached to a run.
type AnomalyDTO struct {
	Kind       string `json:"kind"`
	EmployeeID string `json:"employee_id"`
	At         string `json:"at,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// FailureDTO reports one employee whose line could not be produced.
type FailureDTO struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

// RunResponse is the full result of a payroll run.
type RunResponse struct {
	Period    string           `json:"period"`
	Start     string           `json:"start"`
	End       string           `json:"end"`
	Lines     []PayrollLineDTO `json:"lines"`
	Anomalies []AnomalyDTO     `json:"anomalies"`
	Failures  []FailureDTO     `json:"failures"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(emp engine.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:      string(emp.ID),
		Name:    emp.Name,
		QRToken: emp.QRToken,
		Retired: emp.Retired,
	}
	if emp.RetiredDate != nil {
		dto.RetiredDate = emp.RetiredDate.String()
	}
	return dto
}

func toScanDTO(ev engine.ScanEvent) ScanDTO {
	return ScanDTO{
		EmployeeID: string(ev.EmployeeID),
		Timestamp:  ev.Timestamp.Format(time.RFC3339),
		Direction:  string(ev.Direction),
	}
}

func toRunResponse(result *engine.RunResult) RunResponse {
	resp := RunResponse{
		Period:    result.Period.Label,
		Start:     result.Period.Start.String(),
		End:       result.Period.End.String(),
		Lines:     []PayrollLineDTO{},
		Anomalies: []AnomalyDTO{},
		Failures:  []FailureDTO{},
	}

	aggByID := make(map[engine.EmployeeID]engine.Aggregate, len(result.Aggregates))
	for _, a := range result.Aggregates {
		aggByID[a.EmployeeID] = a
	}

	for _, line := range result.Lines {
		agg := aggByID[line.EmployeeID]
		dto := PayrollLineDTO{
			EmployeeID:      string(line.EmployeeID),
			Period:          line.Period.Label,
			NormalMinutes:   int64(agg.NormalMinutes),
			HolidayMinutes:  int64(agg.HolidayMinutes),
			SpecialMinutes:  int64(agg.SpecialMinutes),
			OvertimeMinutes: int64(agg.OvertimeMinutes),
			DaysWorked:      agg.DaysWorked,
			Gross:           line.Gross.String(),
			Deductions:      []DeductionDTO{},
			Net:             line.Net.String(),
		}
		for _, d := range line.Deductions {
			dto.Deductions = append(dto.Deductions, DeductionDTO{Name: d.Name, Amount: d.Amount.String()})
		}
		resp.Lines = append(resp.Lines, dto)
	}

	for _, a := range result.Anomalies {
		dto := AnomalyDTO{
			Kind:       string(a.Kind),
			EmployeeID: string(a.EmployeeID),
			Detail:     a.Detail,
		}
		if !a.At.IsZero() {
			dto.At = a.At.Format(time.RFC3339)
		}
		resp.Anomalies = append(resp.Anomalies, dto)
	}

	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, FailureDTO{
			EmployeeID: string(f.EmployeeID),
			Error:      f.Err.Error(),
		})
	}
	return resp
}
