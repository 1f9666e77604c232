package reserve_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldlab/reservation-engine/reserve"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(year int, month time.Month, day int) reserve.Date {
	return reserve.NewDate(year, month, day)
}

func span(t *testing.T, start, end reserve.Date) reserve.DateSpan {
	t.Helper()
	s, err := reserve.NewDateSpan(start, end)
	require.NoError(t, err)
	return s
}

// =============================================================================
// DATE TESTS
// =============================================================================

func TestParseDate_RoundTrip(t *testing.T) {
	date, err := reserve.ParseDate("2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", date.String())
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := reserve.ParseDate("05/01/2024")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 4, reserve.DaysBetween(d(2024, time.January, 1), d(2024, time.January, 5)))
	assert.Equal(t, 0, reserve.DaysBetween(d(2024, time.January, 1), d(2024, time.January, 1)))
	assert.Equal(t, -2, reserve.DaysBetween(d(2024, time.January, 3), d(2024, time.January, 1)))
}

func TestEndOfMonth_Boundaries(t *testing.T) {
	assert.Equal(t, "2024-02-29", reserve.EndOfMonth(2024, time.February).String())
	assert.Equal(t, "2023-02-28", reserve.EndOfMonth(2023, time.February).String())
	assert.Equal(t, "2024-12-31", reserve.EndOfMonth(2024, time.December).String())
}

// =============================================================================
// SPAN CONSTRUCTION AND DURATION
// =============================================================================

func TestNewDateSpan_EndBeforeStart(t *testing.T) {
	_, err := reserve.NewDateSpan(d(2024, time.January, 5), d(2024, time.January, 1))
	assert.ErrorIs(t, err, reserve.ErrInvalidSpan)
}

func TestDurationDays_SameDayCountsAsOne(t *testing.T) {
	// GIVEN: A same-day reservation
	// THEN: Duration is 1, never 0
	s := span(t, d(2024, time.March, 10), d(2024, time.March, 10))
	assert.Equal(t, 1, s.DurationDays())
	assert.Equal(t, 1, s.InclusiveDays())
}

func TestDurationDays_MultiDay(t *testing.T) {
	s := span(t, d(2024, time.January, 3), d(2024, time.January, 8))
	assert.Equal(t, 5, s.DurationDays())
	assert.Equal(t, 6, s.InclusiveDays())
}

// =============================================================================
// OVERLAP BOUNDARY RULES
// =============================================================================

func TestOverlap_Symmetry(t *testing.T) {
	a := span(t, d(2024, time.January, 1), d(2024, time.January, 5))
	b := span(t, d(2024, time.January, 3), d(2024, time.January, 8))

	assert.Equal(t, a.OverlapsStrict(b), b.OverlapsStrict(a))
	assert.Equal(t, a.OverlapsInclusive(b), b.OverlapsInclusive(a))
	assert.True(t, a.OverlapsStrict(b))
}

func TestOverlap_SelfOverlap(t *testing.T) {
	// A non-empty interval strictly overlaps itself.
	a := span(t, d(2024, time.January, 1), d(2024, time.January, 5))
	assert.True(t, a.OverlapsStrict(a))
	assert.True(t, a.OverlapsInclusive(a))
}

func TestOverlap_TouchingEndpoints_BothRulesSimultaneously(t *testing.T) {
	// GIVEN: A.end == B.start
	// THEN: No conflict under the strict rule, but the pair DOES merge
	//       into one run under the aggregation rule.
	a := span(t, d(2024, time.January, 1), d(2024, time.January, 5))
	b := span(t, d(2024, time.January, 5), d(2024, time.January, 9))

	assert.False(t, a.OverlapsStrict(b), "touching endpoints are not a conflict")
	assert.False(t, b.OverlapsStrict(a))
	assert.True(t, a.OverlapsInclusive(b), "touching endpoints count for the inclusive rule")

	merged := reserve.MergeSpans([]reserve.DateSpan{a, b}, nil)
	require.Len(t, merged, 1, "touching spans merge into one run")
	assert.Equal(t, "2024-01-01", merged[0].Start.String())
	assert.Equal(t, "2024-01-09", merged[0].End.String())
}

func TestOverlap_Disjoint(t *testing.T) {
	a := span(t, d(2024, time.January, 1), d(2024, time.January, 3))
	b := span(t, d(2024, time.January, 6), d(2024, time.January, 9))
	assert.False(t, a.OverlapsStrict(b))
	assert.False(t, a.OverlapsInclusive(b))
}

// =============================================================================
// CLIPPING
// =============================================================================

func TestClip(t *testing.T) {
	bounds := span(t, d(2024, time.January, 5), d(2024, time.January, 20))

	t.Run("partial overlap clips both ends", func(t *testing.T) {
		s := span(t, d(2024, time.January, 1), d(2024, time.January, 10))
		clipped, ok := s.Clip(bounds)
		require.True(t, ok)
		assert.Equal(t, "2024-01-05", clipped.Start.String())
		assert.Equal(t, "2024-01-10", clipped.End.String())
	})

	t.Run("fully outside is discarded", func(t *testing.T) {
		s := span(t, d(2024, time.January, 1), d(2024, time.January, 4))
		_, ok := s.Clip(bounds)
		assert.False(t, ok)
	})

	t.Run("fully inside is unchanged", func(t *testing.T) {
		s := span(t, d(2024, time.January, 8), d(2024, time.January, 12))
		clipped, ok := s.Clip(bounds)
		require.True(t, ok)
		assert.Equal(t, s, clipped)
	})
}
