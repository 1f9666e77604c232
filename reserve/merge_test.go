package reserve_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldlab/reservation-engine/reserve"
)

// =============================================================================
// UNIQUE-DAYS MERGE
// =============================================================================

func TestUniqueDays_OverlappingPairMergesToOneRun(t *testing.T) {
	// GIVEN: [01-01, 01-05] and [01-03, 01-08]
	// THEN: One run [01-01, 01-08] = 8 unique days, no double counting
	spans := []reserve.DateSpan{
		span(t, d(2024, time.January, 1), d(2024, time.January, 5)),
		span(t, d(2024, time.January, 3), d(2024, time.January, 8)),
	}

	merged := reserve.MergeSpans(spans, nil)
	require.Len(t, merged, 1)
	assert.Equal(t, 8, reserve.UniqueDays(spans, nil))
}

func TestUniqueDays_DisjointSpansSumIndependently(t *testing.T) {
	spans := []reserve.DateSpan{
		span(t, d(2024, time.January, 1), d(2024, time.January, 3)),   // 3 days
		span(t, d(2024, time.January, 10), d(2024, time.January, 12)), // 3 days
	}
	assert.Equal(t, 6, reserve.UniqueDays(spans, nil))
	assert.Len(t, reserve.MergeSpans(spans, nil), 2)
}

func TestUniqueDays_OrderIndependent(t *testing.T) {
	// Shuffling the input before merging yields the same total.
	spans := []reserve.DateSpan{
		span(t, d(2024, time.January, 1), d(2024, time.January, 5)),
		span(t, d(2024, time.January, 4), d(2024, time.January, 9)),
		span(t, d(2024, time.February, 1), d(2024, time.February, 2)),
		span(t, d(2024, time.January, 9), d(2024, time.January, 15)),
		span(t, d(2024, time.March, 3), d(2024, time.March, 3)),
	}
	want := reserve.UniqueDays(spans, nil)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]reserve.DateSpan, len(spans))
		copy(shuffled, spans)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, reserve.UniqueDays(shuffled, nil))
	}
}

func TestUniqueDays_EmptyInput(t *testing.T) {
	assert.Equal(t, 0, reserve.UniqueDays(nil, nil))
	assert.Nil(t, reserve.MergeSpans(nil, nil))
}

func TestUniqueDays_TimeframeClipsAndDiscards(t *testing.T) {
	// GIVEN: A window [01-05, 01-20]
	// THEN: Outside spans are discarded, straddling spans are clipped
	window := span(t, d(2024, time.January, 5), d(2024, time.January, 20))
	spans := []reserve.DateSpan{
		span(t, d(2024, time.January, 1), d(2024, time.January, 3)),  // fully before: dropped
		span(t, d(2024, time.January, 2), d(2024, time.January, 8)),  // clipped to [01-05, 01-08]
		span(t, d(2024, time.January, 18), d(2024, time.January, 25)), // clipped to [01-18, 01-20]
	}

	// [01-05, 01-08] = 4 days, [01-18, 01-20] = 3 days
	assert.Equal(t, 7, reserve.UniqueDays(spans, &window))
}

func TestUniqueReservationDays(t *testing.T) {
	rs := []reserve.Reservation{
		candidate(t, "1", d(2024, time.January, 1), d(2024, time.January, 5)),
		candidate(t, "2", d(2024, time.January, 3), d(2024, time.January, 8)),
	}
	assert.Equal(t, 8, reserve.UniqueReservationDays(rs, nil))
}
