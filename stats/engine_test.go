package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldlab/reservation-engine/reserve"
	"github.com/fieldlab/reservation-engine/stats"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fixedNow pins the clock so trailing windows are deterministic.
var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine() *stats.Engine {
	e := stats.NewEngine()
	e.Now = func() time.Time { return fixedNow }
	return e
}

func resolved(t *testing.T, id, device, region, user, start, end string) reserve.Reservation {
	t.Helper()
	s, err := reserve.ParseDate(start)
	require.NoError(t, err)
	e, err := reserve.ParseDate(end)
	require.NoError(t, err)
	span, err := reserve.NewDateSpan(s, e)
	require.NoError(t, err)
	return reserve.Reservation{
		ID:          reserve.ReservationID(id),
		Device:      device,
		Region:      region,
		Span:        span,
		RequestedBy: user,
		Status:      reserve.StatusResolved,
	}
}

// batch is the shared fixture: two users, two devices, two regions, all
// within the trailing year of fixedNow.
func batch(t *testing.T) []reserve.Reservation {
	return []reserve.Reservation{
		resolved(t, "1", "scope-1", "lab-a", "ada", "2024-06-01", "2024-06-05"),
		resolved(t, "2", "scope-1", "lab-a", "ada", "2024-06-03", "2024-06-10"),
		resolved(t, "3", "scope-2", "lab-a", "grace", "2024-06-04", "2024-06-04"),
		resolved(t, "4", "scope-1", "lab-b", "grace", "2024-05-20", "2024-06-02"),
	}
}

// =============================================================================
// EMPTY INPUT - zero-valued structures, never an error
// =============================================================================

func TestCompute_EmptyInput(t *testing.T) {
	e := newTestEngine()

	result := e.Compute(nil, 6)
	require.NotNil(t, result)

	assert.Empty(t, result.Rankings)
	assert.Empty(t, result.Leaders)
	assert.Empty(t, result.Utilization)
	assert.Equal(t, 0, result.Heatmap.TotalConflicts)
	assert.Equal(t, -1, result.Heatmap.Peak)
	assert.Equal(t, -1, result.Heatmap.Low)
	assert.Len(t, result.Heatmap.Months, 12)
	assert.Zero(t, result.Efficiency.AvgDurationDays)
	assert.Zero(t, result.Summary.Reservations)
}

func TestCompute_OnlyResolvedReservationsCount(t *testing.T) {
	rs := batch(t)
	rs[0].Status = reserve.StatusNew
	rs[1].Status = reserve.StatusCancelled

	e := newTestEngine()
	result := e.Compute(rs, 0)
	assert.Equal(t, 2, result.Summary.Reservations)
}

// =============================================================================
// LEADERS
// =============================================================================

func TestCompute_LeadersPerRegion(t *testing.T) {
	e := newTestEngine()
	result := e.Compute(batch(t), 0)

	require.Len(t, result.Leaders, 2)
	labA := result.Leaders[0]
	assert.Equal(t, "lab-a", labA.Region)

	require.Len(t, labA.TopDevices, 2)
	assert.Equal(t, "scope-1", labA.TopDevices[0].Name)
	assert.Equal(t, 2, labA.TopDevices[0].Count)
	// [06-01, 06-05] and [06-03, 06-10] merge to 10 unique days.
	assert.Equal(t, 10, labA.TopDevices[0].TotalDays)
	assert.Equal(t, 1, labA.TopDevices[0].DistinctPeer)

	assert.Equal(t, "scope-2", labA.TopDevices[1].Name)
	assert.Equal(t, 1, labA.TopDevices[1].TotalDays, "same-day reservation is one day")

	require.Len(t, labA.TopUsers, 2)
	assert.Equal(t, "ada", labA.TopUsers[0].Name)
	assert.Equal(t, 10, labA.TopUsers[0].TotalDays)
}

func TestCompute_LeadersTruncatedToTopTen(t *testing.T) {
	var rs []reserve.Reservation
	for i := 0; i < 15; i++ {
		id := string(rune('a' + i))
		rs = append(rs, resolved(t, id, "dev-"+id, "lab-a", "user-"+id, "2024-06-01", "2024-06-02"))
	}

	e := newTestEngine()
	result := e.Compute(rs, 0)
	require.Len(t, result.Leaders, 1)
	assert.Len(t, result.Leaders[0].TopDevices, 10)
	assert.Len(t, result.Leaders[0].TopUsers, 10)
}

// =============================================================================
// UTILIZATION
// =============================================================================

func TestCompute_UtilizationAgainstFixedCapacity(t *testing.T) {
	e := newTestEngine()
	result := e.Compute(batch(t), 0)

	require.Len(t, result.Utilization, 2)

	labA := result.Utilization[0]
	assert.Equal(t, "lab-a", labA.Region)
	assert.Equal(t, 10, labA.ReservedDays)
	assert.Equal(t, stats.FixedCapacityDays, labA.CapacityDays)
	// 10 / 365 * 100 rounded to one decimal.
	assert.InDelta(t, 2.7, labA.Rate, 0.001)

	labB := result.Utilization[1]
	assert.Equal(t, 14, labB.ReservedDays)
	assert.InDelta(t, 3.8, labB.Rate, 0.001)
}

// =============================================================================
// RANKINGS
// =============================================================================

func TestCompute_Rankings(t *testing.T) {
	// GIVEN: grace leads every normalized signal (count tied, more days,
	//        more devices); both users sit in the duration sweet spot
	// THEN: grace scores 100, ada scores 80
	e := newTestEngine()
	result := e.Compute(batch(t), 0)

	require.Len(t, result.Rankings, 2)

	grace := result.Rankings[0]
	assert.Equal(t, "grace", grace.User)
	assert.Equal(t, 100, grace.Score)
	assert.Equal(t, 2, grace.Reservations)
	assert.Equal(t, 15, grace.UniqueDays)
	assert.Equal(t, 2, grace.DistinctDevices)

	ada := result.Rankings[1]
	assert.Equal(t, "ada", ada.User)
	// .4*(2/2) + .3*(10/15) + .2*(1/2) + .1*1 = 0.8
	assert.Equal(t, 80, ada.Score)
	assert.Equal(t, 10, ada.UniqueDays)
	assert.InDelta(t, 5.5, ada.AvgDurationDays, 0.001)
}

func TestCompute_RankingLongStayPenalty(t *testing.T) {
	// A single 30-day-average user maxes every normalized signal but takes
	// the long-stay efficiency floor of 0.2:
	// round((0.4 + 0.3 + 0.2 + 0.1*0.2) * 100) = 92.
	rs := []reserve.Reservation{
		resolved(t, "1", "scope-1", "lab-a", "ada", "2024-01-01", "2024-01-31"),
	}

	e := newTestEngine()
	result := e.Compute(rs, 0)
	require.Len(t, result.Rankings, 1)
	assert.Equal(t, 92, result.Rankings[0].Score)
}

func TestCompute_RankingShortStayScalesDown(t *testing.T) {
	// Average stay of 1 day: efficiency = 0.3 + 0.7*(1/2) = 0.65.
	// round((0.9 + 0.1*0.65) * 100) = 97 (rounding 96.5 away from zero).
	rs := []reserve.Reservation{
		resolved(t, "1", "scope-1", "lab-a", "ada", "2024-06-01", "2024-06-02"),
	}

	e := newTestEngine()
	result := e.Compute(rs, 0)
	require.Len(t, result.Rankings, 1)
	assert.Equal(t, 97, result.Rankings[0].Score)
}

// =============================================================================
// TIMEFRAME FILTERING
// =============================================================================

func TestCompute_TimeframeExcludesOldReservations(t *testing.T) {
	rs := append(batch(t),
		resolved(t, "5", "scope-1", "lab-a", "ada", "2024-01-10", "2024-01-20"))

	e := newTestEngine()

	allTime := e.Compute(rs, 0)
	assert.Equal(t, 5, allTime.Summary.Reservations)

	// monthsBack=1 is a trailing 30-day window from 2024-06-15; the
	// January reservation falls outside it.
	lastMonth := e.Compute(rs, 1)
	assert.Equal(t, 4, lastMonth.Summary.Reservations)
}

func TestWindowDays(t *testing.T) {
	assert.Equal(t, 0, stats.WindowDays(0))
	assert.Equal(t, 30, stats.WindowDays(1))
	assert.Equal(t, 90, stats.WindowDays(3))
	assert.Equal(t, 180, stats.WindowDays(6))
	assert.Equal(t, 365, stats.WindowDays(12))
	assert.Equal(t, 0, stats.WindowDays(7), "unknown selectors mean all time")
}

// =============================================================================
// EFFICIENCY & SUMMARY
// =============================================================================

func TestCompute_Efficiency(t *testing.T) {
	e := newTestEngine()
	result := e.Compute(batch(t), 0)

	// Durations 4, 7, 1, 13: average 6.25; one short booking out of four.
	assert.InDelta(t, 6.25, result.Efficiency.AvgDurationDays, 0.001)
	assert.InDelta(t, 0.25, result.Efficiency.ShortBookingRate, 0.001)
	assert.Equal(t, stats.EstimatedLeadTimeDays, result.Efficiency.AvgLeadTimeDays)
	assert.Equal(t, stats.EstimatedLastMinuteRate, result.Efficiency.LastMinuteRate)
}

func TestCompute_Summary(t *testing.T) {
	e := newTestEngine()
	result := e.Compute(batch(t), 0)

	assert.Equal(t, 4, result.Summary.Reservations)
	assert.Equal(t, 2, result.Summary.DistinctDevices)
	assert.Equal(t, 2, result.Summary.DistinctUsers)
	assert.Equal(t, 2, result.Summary.DistinctRegions)
	// Unique days merge per (device, region): 10 + 1 + 14.
	assert.Equal(t, 25, result.Summary.UniqueDays)
}
