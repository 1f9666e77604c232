/*
Package stats derives reporting views from a reservation batch.

PURPOSE:
  Computes rankings, capacity utilization, a trailing-window conflict
  heatmap, and efficiency metrics over the resolved reservation set. All
  outputs are pure, derived, immutable value objects; nothing in this
  package mutates the source reservations.

KEY CONCEPTS IN THIS FILE (types.go):
  - Statistics: The full memoizable output of one computation
  - LeaderEntry / RegionLeaders: Top devices and users per region
  - RankingEntry: The 0-100 composite user score
  - Heatmap / MonthBucket: Trailing 12-month conflict counts

TIMEFRAME SEMANTICS:
  monthsBack = 0 means all time. The values {1, 3, 6, 12} select fixed
  trailing day windows {30, 90, 180, 365}. The heatmap ignores this and
  always looks back over the 12 calendar months ending at "now".

SEE ALSO:
  - engine.go: Orchestrates the views and owns the cache
  - ranking.go: Score computation
  - heatmap.go: Trailing-window pair counting
  - cache.go: Memoization keyed by dataset + parameters
*/
package stats

// =============================================================================
// TIMEFRAME
// =============================================================================

// WindowDays maps a monthsBack selector to its fixed trailing-day window.
// Zero (all time) and unknown selectors map to 0, meaning unfiltered.
func WindowDays(monthsBack int) int {
	switch monthsBack {
	case 1:
		return 30
	case 3:
		return 90
	case 6:
		return 180
	case 12:
		return 365
	default:
		return 0
	}
}

// =============================================================================
// RESULT VALUE OBJECTS
// =============================================================================

// LeaderEntry is one row of a top-devices or top-users table.
type LeaderEntry struct {
	Name         string `json:"name"`
	Count        int    `json:"count"`
	TotalDays    int    `json:"totalDays"`
	DistinctPeer int    `json:"distinctPeer"` // users for a device row, devices for a user row
}

// RegionLeaders holds the top tables for one lab region.
type RegionLeaders struct {
	Region     string        `json:"region"`
	TopDevices []LeaderEntry `json:"topDevices"`
	TopUsers   []LeaderEntry `json:"topUsers"`
}

// RankingEntry is a user's composite score with its underlying signals.
type RankingEntry struct {
	User            string  `json:"user"`
	Score           int     `json:"score"` // 0-100
	Reservations    int     `json:"reservations"`
	UniqueDays      int     `json:"uniqueDays"`
	DistinctDevices int     `json:"distinctDevices"`
	AvgDurationDays float64 `json:"avgDurationDays"`
}

// UtilizationEntry reports one region against the fixed capacity.
type UtilizationEntry struct {
	Region       string  `json:"region"`
	ReservedDays int     `json:"reservedDays"`
	CapacityDays int     `json:"capacityDays"`
	Rate         float64 `json:"rate"` // percent
}

// MonthBucket is one calendar month of the trailing conflict heatmap.
type MonthBucket struct {
	Year      int `json:"year"`
	Month     int `json:"month"`
	Conflicts int `json:"conflicts"`
}

// Heatmap covers the 12 calendar months ending at the current month.
// Peak and Low index into Months; both are -1 when no month has data.
type Heatmap struct {
	Months         []MonthBucket `json:"months"`
	TotalConflicts int           `json:"totalConflicts"`
	Peak           int           `json:"peak"`
	Low            int           `json:"low"`
}

// Efficiency aggregates booking-behavior metrics. Lead time and the
// last-minute rate are fixed estimates: the batch carries no
// booking-creation timestamp to derive them from.
type Efficiency struct {
	AvgDurationDays  float64 `json:"avgDurationDays"`
	ShortBookingRate float64 `json:"shortBookingRate"` // proportion of bookings <= 3 days
	AvgLeadTimeDays  float64 `json:"avgLeadTimeDays"`  // estimated
	LastMinuteRate   float64 `json:"lastMinuteRate"`   // estimated
}

// Summary totals the filtered reservation set.
type Summary struct {
	Reservations    int `json:"reservations"`
	DistinctDevices int `json:"distinctDevices"`
	DistinctUsers   int `json:"distinctUsers"`
	DistinctRegions int `json:"distinctRegions"`
	UniqueDays      int `json:"uniqueDays"`
}

// Statistics is the complete output of one computation and the unit the
// cache memoizes.
type Statistics struct {
	MonthsBack  int                `json:"monthsBack"`
	Rankings    []RankingEntry     `json:"rankings"`
	Leaders     []RegionLeaders    `json:"leaders"`
	Utilization []UtilizationEntry `json:"utilization"`
	Heatmap     Heatmap            `json:"heatmap"`
	Efficiency  Efficiency         `json:"efficiency"`
	Summary     Summary            `json:"summary"`
}
