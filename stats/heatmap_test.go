package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldlab/reservation-engine/reserve"
)

// =============================================================================
// TRAILING-WINDOW CONFLICT HEATMAP
// =============================================================================

func TestHeatmap_SingleMonthPair(t *testing.T) {
	// GIVEN: Two overlapping reservations within one calendar month
	// THEN: totalConflicts equals the pairwise count in that month only,
	//       and peak == low because only one month has data
	rs := []reserve.Reservation{
		resolved(t, "1", "scope-1", "lab-a", "ada", "2024-06-03", "2024-06-10"),
		resolved(t, "2", "scope-1", "lab-a", "grace", "2024-06-08", "2024-06-12"),
	}

	e := newTestEngine()
	hm := e.Compute(rs, 0).Heatmap

	require.Len(t, hm.Months, 12)
	assert.Equal(t, 1, hm.TotalConflicts)

	// fixedNow is June 2024, so June is the last bucket.
	june := hm.Months[11]
	assert.Equal(t, 2024, june.Year)
	assert.Equal(t, 6, june.Month)
	assert.Equal(t, 1, june.Conflicts)

	assert.Equal(t, hm.Peak, hm.Low, "peak and low coincide with one active month")
	assert.Equal(t, 11, hm.Peak)
}

func TestHeatmap_PairSpanningTwoMonthsCountsOncePerBucket(t *testing.T) {
	// GIVEN: A pair overlapping in both May and June
	// THEN: The pair is deduplicated within each bucket but counted in both
	//       (bucket-local counting, not global dedup)
	rs := []reserve.Reservation{
		resolved(t, "1", "scope-1", "lab-a", "ada", "2024-05-20", "2024-06-05"),
		resolved(t, "2", "scope-1", "lab-a", "grace", "2024-05-25", "2024-06-10"),
	}

	e := newTestEngine()
	hm := e.Compute(rs, 0).Heatmap

	may, june := hm.Months[10], hm.Months[11]
	assert.Equal(t, 1, may.Conflicts)
	assert.Equal(t, 1, june.Conflicts)
	assert.Equal(t, 2, hm.TotalConflicts)
}

func TestHeatmap_TouchingEndpointsCountInclusively(t *testing.T) {
	// The heatmap pair rule is inclusive: one end equal to another start
	// IS a pair, unlike the detection pass.
	rs := []reserve.Reservation{
		resolved(t, "1", "scope-1", "lab-a", "ada", "2024-06-01", "2024-06-05"),
		resolved(t, "2", "scope-1", "lab-a", "grace", "2024-06-05", "2024-06-09"),
	}

	e := newTestEngine()
	hm := e.Compute(rs, 0).Heatmap
	assert.Equal(t, 1, hm.TotalConflicts)
}

func TestHeatmap_DifferentResourceIsNoPair(t *testing.T) {
	rs := []reserve.Reservation{
		resolved(t, "1", "scope-1", "lab-a", "ada", "2024-06-01", "2024-06-10"),
		resolved(t, "2", "scope-2", "lab-a", "grace", "2024-06-01", "2024-06-10"),
		resolved(t, "3", "scope-1", "lab-b", "ada", "2024-06-01", "2024-06-10"),
	}

	e := newTestEngine()
	assert.Equal(t, 0, e.Compute(rs, 0).Heatmap.TotalConflicts)
}

func TestHeatmap_IgnoresUserTimeframe(t *testing.T) {
	// The heatmap always covers the trailing 12 calendar months,
	// independent of monthsBack.
	rs := []reserve.Reservation{
		resolved(t, "1", "scope-1", "lab-a", "ada", "2023-09-03", "2023-09-10"),
		resolved(t, "2", "scope-1", "lab-a", "grace", "2023-09-08", "2023-09-12"),
	}

	e := newTestEngine()
	// monthsBack=1 is a 30-day window that excludes September 2023 from
	// every other view, but not from the heatmap.
	result := e.Compute(rs, 1)
	assert.Equal(t, 0, result.Summary.Reservations)
	assert.Equal(t, 1, result.Heatmap.TotalConflicts)

	sept := result.Heatmap.Months[2] // Jul 2023 is bucket 0 when "now" is June 2024
	assert.Equal(t, 2023, sept.Year)
	assert.Equal(t, 9, sept.Month)
	assert.Equal(t, 1, sept.Conflicts)
}
