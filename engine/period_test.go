package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// CLOSING DAY RESOLUTION
// =============================================================================

func TestResolvePayPeriod_ClosingDay31_CalendarMonth(t *testing.T) {
	p, err := engine.ResolvePayPeriod("202501", 31)
	require.NoError(t, err)

	assert.Equal(t, "202501", p.Label)
	assert.Equal(t, engine.NewDate(2025, time.January, 1), p.Start)
	assert.Equal(t, engine.NewDate(2025, time.January, 31), p.End)
	assert.Equal(t, 31, p.CalendarDays())
}

func TestResolvePayPeriod_ClosingDay28OrAbove_StillCalendarMonth(t *testing.T) {
	// February is shorter than any closing day >= 28, so those all resolve
	// to the calendar month.
	p, err := engine.ResolvePayPeriod("202502", 28)
	require.NoError(t, err)

	assert.Equal(t, engine.NewDate(2025, time.February, 1), p.Start)
	assert.Equal(t, engine.NewDate(2025, time.February, 28), p.End)
}

func TestResolvePayPeriod_MidMonthClosing_SpansTwoMonths(t *testing.T) {
	// GIVEN: Closing day 15
	// WHEN: Resolving 202502
	// THEN: The period runs Jan 16 through Feb 15

	p, err := engine.ResolvePayPeriod("202502", 15)
	require.NoError(t, err)

	assert.Equal(t, engine.NewDate(2025, time.January, 16), p.Start)
	assert.Equal(t, engine.NewDate(2025, time.February, 15), p.End)
}

func TestResolvePayPeriod_January_WrapsToPreviousYear(t *testing.T) {
	p, err := engine.ResolvePayPeriod("202501", 20)
	require.NoError(t, err)

	assert.Equal(t, engine.NewDate(2024, time.December, 21), p.Start)
	assert.Equal(t, engine.NewDate(2025, time.January, 20), p.End)
}

func TestResolvePayPeriod_ClosingDayOutOfRange_TreatedAsMonthEnd(t *testing.T) {
	p, err := engine.ResolvePayPeriod("202504", 0)
	require.NoError(t, err)

	assert.Equal(t, engine.NewDate(2025, time.April, 1), p.Start)
	assert.Equal(t, engine.NewDate(2025, time.April, 30), p.End)
}

func TestResolvePayPeriod_InvalidLabels(t *testing.T) {
	for _, ym := range []string{"", "2025", "2025-01", "202513", "202500", "abcdef"} {
		_, err := engine.ResolvePayPeriod(ym, 31)
		assert.ErrorIs(t, err, engine.ErrInvalidPeriod, "label %q", ym)
	}
}

// =============================================================================
// PERIOD QUERIES
// =============================================================================

func TestPayPeriod_Contains(t *testing.T) {
	p, err := engine.ResolvePayPeriod("202503", 15)
	require.NoError(t, err)

	assert.True(t, p.Contains(engine.NewDate(2025, time.February, 16)))
	assert.True(t, p.Contains(engine.NewDate(2025, time.March, 15)))
	assert.False(t, p.Contains(engine.NewDate(2025, time.February, 15)))
	assert.False(t, p.Contains(engine.NewDate(2025, time.March, 16)))
}

func TestPayPeriod_Bounds_HalfOpen(t *testing.T) {
	p, err := engine.ResolvePayPeriod("202501", 31)
	require.NoError(t, err)

	from, to := p.Bounds(time.UTC)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), to)
}
