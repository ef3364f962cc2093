package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func employeeInput(id string, policy engine.PayPolicy, events ...engine.ScanEvent) engine.EmployeeInput {
	policy.EmployeeID = engine.EmployeeID(id)
	for i := range events {
		events[i].EmployeeID = engine.EmployeeID(id)
	}
	return engine.EmployeeInput{
		Employee: engine.Employee{ID: engine.EmployeeID(id), Name: id},
		Events:   events,
		Policy:   policy,
	}
}

func workday(day, inHour, outHour int) []engine.ScanEvent {
	return []engine.ScanEvent{
		{Timestamp: at(2025, time.January, day, inHour, 0), Direction: engine.DirectionIn},
		{Timestamp: at(2025, time.January, day, outHour, 0), Direction: engine.DirectionOut},
	}
}

// =============================================================================
// END-TO-END RUNS
// =============================================================================

func TestRun_SingleHourlyEmployee(t *testing.T) {
	// GIVEN: One employee, one clean 09:00-18:00 Monday at 1500/hour
	// WHEN: Running January 2025
	// THEN: One line: 540 normal minutes, gross and net 13500

	input := engine.RunInput{
		Period:   jan2025(t),
		Calendar: weekendCalendar(t),
		Settings: engine.DefaultSettings(),
		Employees: []engine.EmployeeInput{
			employeeInput("emp-1", hourlyPolicy("1500"), workday(6, 9, 18)...),
		},
	}

	result, err := engine.Run(input)
	require.NoError(t, err)

	require.Len(t, result.Lines, 1)
	assert.True(t, result.Lines[0].Gross.Equal(money("13500")), "gross = %s", result.Lines[0].Gross)
	assert.True(t, result.Lines[0].Net.Equal(money("13500")), "net = %s", result.Lines[0].Net)

	require.Len(t, result.Aggregates, 1)
	assert.Equal(t, engine.Minutes(540), result.Aggregates[0].NormalMinutes)
	assert.Empty(t, result.Anomalies)
	assert.Empty(t, result.Failures)
}

func TestRun_ResultsSortedByEmployeeID(t *testing.T) {
	input := engine.RunInput{
		Period:   jan2025(t),
		Calendar: weekendCalendar(t),
		Settings: engine.DefaultSettings(),
		Employees: []engine.EmployeeInput{
			employeeInput("emp-3", hourlyPolicy("1000"), workday(6, 9, 17)...),
			employeeInput("emp-1", hourlyPolicy("1000"), workday(6, 9, 17)...),
			employeeInput("emp-2", hourlyPolicy("1000"), workday(6, 9, 17)...),
		},
	}

	result, err := engine.Run(input)
	require.NoError(t, err)

	require.Len(t, result.Lines, 3)
	assert.Equal(t, engine.EmployeeID("emp-1"), result.Lines[0].EmployeeID)
	assert.Equal(t, engine.EmployeeID("emp-2"), result.Lines[1].EmployeeID)
	assert.Equal(t, engine.EmployeeID("emp-3"), result.Lines[2].EmployeeID)
}

func TestRun_AnomaliesAttachWithoutAborting(t *testing.T) {
	// GIVEN: One employee with a duplicate check-in, one clean
	// WHEN: Running
	// THEN: Both get lines; the anomaly is attributed to the right employee

	messy := []engine.ScanEvent{
		{Timestamp: at(2025, time.January, 6, 9, 0), Direction: engine.DirectionIn},
		{Timestamp: at(2025, time.January, 6, 9, 30), Direction: engine.DirectionIn},
		{Timestamp: at(2025, time.January, 6, 17, 30), Direction: engine.DirectionOut},
	}

	input := engine.RunInput{
		Period:   jan2025(t),
		Calendar: weekendCalendar(t),
		Settings: engine.DefaultSettings(),
		Employees: []engine.EmployeeInput{
			employeeInput("emp-1", hourlyPolicy("1000"), messy...),
			employeeInput("emp-2", hourlyPolicy("1000"), workday(6, 9, 17)...),
		},
	}

	result, err := engine.Run(input)
	require.NoError(t, err)

	assert.Len(t, result.Lines, 2)
	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, engine.AnomalyDuplicateCheckIn, result.Anomalies[0].Kind)
	assert.Equal(t, engine.EmployeeID("emp-1"), result.Anomalies[0].EmployeeID)
}

func TestRun_ProrationFailure_SkipsLineContinuesRun(t *testing.T) {
	// GIVEN: A partial-period fixed employee with no proration method, plus
	//        a healthy hourly employee
	// WHEN: Running
	// THEN: One failure, one line; the run itself succeeds

	hire := engine.NewDate(2025, time.January, 15)
	broken := fixedPolicy("300000", "")
	broken.HireDate = &hire

	input := engine.RunInput{
		Period:   jan2025(t),
		Calendar: weekendCalendar(t),
		Settings: engine.DefaultSettings(),
		Employees: []engine.EmployeeInput{
			employeeInput("emp-1", broken, workday(20, 9, 17)...),
			employeeInput("emp-2", hourlyPolicy("1000"), workday(6, 9, 17)...),
		},
	}

	result, err := engine.Run(input)
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, engine.EmployeeID("emp-1"), result.Failures[0].EmployeeID)
	assert.ErrorIs(t, result.Failures[0].Err, engine.ErrProrationUndefined)

	require.Len(t, result.Lines, 1)
	assert.Equal(t, engine.EmployeeID("emp-2"), result.Lines[0].EmployeeID)

	// Aggregates are still reported for the failed employee.
	assert.Len(t, result.Aggregates, 2)
}

func TestRun_ConfigurationError_AbortsBeforeProcessing(t *testing.T) {
	// GIVEN: A second employee with an invalid policy
	// WHEN: Running
	// THEN: The whole run aborts; no partial results

	bad := engine.PayPolicy{Mode: engine.ModeHourly} // no rate

	input := engine.RunInput{
		Period:   jan2025(t),
		Calendar: weekendCalendar(t),
		Settings: engine.DefaultSettings(),
		Employees: []engine.EmployeeInput{
			employeeInput("emp-1", hourlyPolicy("1000"), workday(6, 9, 17)...),
			employeeInput("emp-2", bad),
		},
	}

	result, err := engine.Run(input)

	require.Error(t, err)
	assert.True(t, engine.IsConfigurationError(err))
	assert.Nil(t, result)
}

func TestRun_InvalidSettings_Aborts(t *testing.T) {
	settings := engine.DefaultSettings()
	settings.Rates.Overtime = money("-1")

	input := engine.RunInput{
		Period:   jan2025(t),
		Calendar: weekendCalendar(t),
		Settings: settings,
	}

	_, err := engine.Run(input)
	require.Error(t, err)
	assert.True(t, engine.IsConfigurationError(err))
}

func TestRun_Recomputable_SameInputSameOutput(t *testing.T) {
	input := engine.RunInput{
		Period:   jan2025(t),
		Calendar: weekendCalendar(t),
		Settings: engine.DefaultSettings(),
		Employees: []engine.EmployeeInput{
			employeeInput("emp-1", hourlyPolicy("1234"), workday(6, 9, 18)...),
		},
	}

	first, err := engine.Run(input)
	require.NoError(t, err)
	second, err := engine.Run(input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
