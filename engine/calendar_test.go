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

func weekendCalendar(t *testing.T, specials ...engine.SpecialPeriod) engine.Calendar {
	t.Helper()
	cal, err := engine.NewCalendar([]time.Weekday{time.Saturday, time.Sunday}, specials)
	require.NoError(t, err)
	return cal
}

func special(id string, start, end engine.Date) engine.SpecialPeriod {
	return engine.SpecialPeriod{
		ID:    engine.SpecialPeriodID(id),
		Name:  id,
		Start: start,
		End:   end,
	}
}

// =============================================================================
// CLASSIFICATION TESTS
// =============================================================================

func TestCalendar_Classify_WeekdayIsNormal(t *testing.T) {
	cal := weekendCalendar(t)

	// 2025-01-06 is a Monday
	cls := cal.Classify(engine.NewDate(2025, time.January, 6))
	assert.Equal(t, engine.CategoryNormal, cls.Category)
	assert.Empty(t, cls.SpecialPeriodID)
}

func TestCalendar_Classify_WeeklyHolidayPattern(t *testing.T) {
	cal := weekendCalendar(t)

	// 2025-01-04 is a Saturday, 2025-01-05 a Sunday
	assert.Equal(t, engine.CategoryHoliday, cal.Classify(engine.NewDate(2025, time.January, 4)).Category)
	assert.Equal(t, engine.CategoryHoliday, cal.Classify(engine.NewDate(2025, time.January, 5)).Category)
}

func TestCalendar_Classify_SpecialBeatsHoliday(t *testing.T) {
	// GIVEN: A special period covering a weekend
	// WHEN: Classifying the Sunday inside it
	// THEN: The day is special, not holiday

	newYear := special("new-year", engine.NewDate(2024, time.December, 29), engine.NewDate(2025, time.January, 5))
	cal := weekendCalendar(t, newYear)

	cls := cal.Classify(engine.NewDate(2025, time.January, 5)) // Sunday inside the range
	assert.Equal(t, engine.CategorySpecial, cls.Category)
	assert.Equal(t, engine.SpecialPeriodID("new-year"), cls.SpecialPeriodID)
}

func TestCalendar_Classify_SpecialBoundariesInclusive(t *testing.T) {
	sp := special("obon", engine.NewDate(2025, time.August, 13), engine.NewDate(2025, time.August, 15))
	cal := weekendCalendar(t, sp)

	assert.Equal(t, engine.CategorySpecial, cal.Classify(engine.NewDate(2025, time.August, 13)).Category)
	assert.Equal(t, engine.CategorySpecial, cal.Classify(engine.NewDate(2025, time.August, 15)).Category)
	assert.Equal(t, engine.CategoryNormal, cal.Classify(engine.NewDate(2025, time.August, 12)).Category)
	assert.Equal(t, engine.CategoryNormal, cal.Classify(engine.NewDate(2025, time.August, 18)).Category) // Monday after
}

func TestCalendar_ZeroValue_EverythingNormal(t *testing.T) {
	var cal engine.Calendar

	cls := cal.Classify(engine.NewDate(2025, time.January, 5)) // a Sunday
	assert.Equal(t, engine.CategoryNormal, cls.Category)
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestNewCalendar_OverlappingSpecials_Rejected(t *testing.T) {
	// GIVEN: Two distinct special periods sharing a date
	// WHEN: Building the calendar
	// THEN: Configuration fails before any classification can happen

	a := special("a", engine.NewDate(2025, time.May, 1), engine.NewDate(2025, time.May, 7))
	b := special("b", engine.NewDate(2025, time.May, 7), engine.NewDate(2025, time.May, 10))

	_, err := engine.NewCalendar(nil, []engine.SpecialPeriod{a, b})
	require.Error(t, err)
	assert.True(t, engine.IsConfigurationError(err))
}

func TestNewCalendar_EndBeforeStart_Rejected(t *testing.T) {
	sp := special("backwards", engine.NewDate(2025, time.May, 10), engine.NewDate(2025, time.May, 1))

	_, err := engine.NewCalendar(nil, []engine.SpecialPeriod{sp})
	require.Error(t, err)
	assert.True(t, engine.IsConfigurationError(err))
}

func TestNewCalendar_DuplicateID_Rejected(t *testing.T) {
	a := special("x", engine.NewDate(2025, time.May, 1), engine.NewDate(2025, time.May, 2))
	b := special("x", engine.NewDate(2025, time.June, 1), engine.NewDate(2025, time.June, 2))

	_, err := engine.NewCalendar(nil, []engine.SpecialPeriod{a, b})
	require.Error(t, err)
	assert.True(t, engine.IsConfigurationError(err))
}

func TestNewCalendar_MissingID_Rejected(t *testing.T) {
	sp := engine.SpecialPeriod{Name: "anonymous", Start: engine.NewDate(2025, time.May, 1), End: engine.NewDate(2025, time.May, 2)}

	_, err := engine.NewCalendar(nil, []engine.SpecialPeriod{sp})
	require.Error(t, err)
	assert.True(t, engine.IsConfigurationError(err))
}

// =============================================================================
// WORKING DAYS
// =============================================================================

func TestCalendar_WorkingDays_ExcludesHolidaysAndSpecials(t *testing.T) {
	// GIVEN: Weekends off plus a 3-weekday special period
	// WHEN: Counting working days over January 2025
	// THEN: 23 weekdays minus the 3 special weekdays

	sp := special("inventory", engine.NewDate(2025, time.January, 7), engine.NewDate(2025, time.January, 9))
	cal := weekendCalendar(t, sp)

	got := cal.WorkingDays(engine.NewDate(2025, time.January, 1), engine.NewDate(2025, time.January, 31))
	assert.Equal(t, 20, got)
}

func TestCalendar_SpecialPeriodByID(t *testing.T) {
	sp := special("golden-week", engine.NewDate(2025, time.April, 29), engine.NewDate(2025, time.May, 5))
	cal := weekendCalendar(t, sp)

	found, ok := cal.SpecialPeriodByID("golden-week")
	require.True(t, ok)
	assert.Equal(t, sp.Start, found.Start)

	_, ok = cal.SpecialPeriodByID("nope")
	assert.False(t, ok)
}
