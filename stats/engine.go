/*
engine.go - Statistics orchestration

PURPOSE:
  The Engine composes the independent derived views (leaders, rankings,
  utilization, heatmap, efficiency, summary) over one reservation batch.
  It consults its result cache before recomputing and owns that cache
  explicitly; there is no module-level state.

INPUT SELECTION:
  Every view except the heatmap operates on the status=resolved subset,
  optionally filtered to the trailing window monthsBack selects. The
  heatmap always looks back 365 days from "now" regardless of monthsBack.

CLOCK:
  "Now" is injected so trailing windows are testable. The zero value uses
  the wall clock.

SEE ALSO:
  - cache.go: Memoization and explicit invalidation
  - ranking.go, heatmap.go: The heavier views
*/
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fieldlab/reservation-engine/reserve"
)

// FixedCapacityDays is the single capacity constant utilization is measured
// against. It is deliberately not a per-device availability model.
const FixedCapacityDays = 365

// TopN truncates every leaders table.
const TopN = 10

// Estimated constants for signals the batch cannot support: rows carry no
// booking-creation timestamp.
const (
	EstimatedLeadTimeDays   = 7.0
	EstimatedLastMinuteRate = 0.15
)

// shortBookingMaxDays is the duration at or below which a reservation
// counts as a short booking.
const shortBookingMaxDays = 3

// Engine computes statistics over reservation batches.
type Engine struct {
	// Now supplies the reference time for trailing windows. Nil means
	// time.Now.
	Now func() time.Time

	cache *ResultCache
}

// NewEngine returns an engine with an empty cache.
func NewEngine() *Engine {
	return &Engine{cache: NewResultCache()}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) today() reserve.Date {
	return reserve.DateOf(e.now().UTC())
}

// ClearCache drops every memoized result. Invalidation is always explicit:
// timeframe change, manual refresh, or dataset reset.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Compute derives the full statistics object for the batch. Empty input
// returns zero-valued structures; it never fails.
func (e *Engine) Compute(all []reserve.Reservation, monthsBack int) *Statistics {
	if e.cache != nil {
		if cached, ok := e.cache.Get(all, monthsBack); ok {
			return cached
		}
	}

	resolved := filterStatus(all, reserve.StatusResolved)
	window := e.window(monthsBack)
	selected := selectWindow(resolved, window)

	result := &Statistics{
		MonthsBack:  monthsBack,
		Rankings:    e.rankings(selected, window),
		Leaders:     e.leaders(selected, window),
		Utilization: e.utilization(selected, window),
		Heatmap:     e.heatmap(resolved),
		Efficiency:  e.efficiency(selected),
		Summary:     e.summary(selected, window),
	}

	if e.cache != nil {
		// The object is fully built before it becomes visible to readers.
		e.cache.Put(all, monthsBack, result)
	}
	return result
}

// window returns the trailing span monthsBack selects, or nil for all time.
func (e *Engine) window(monthsBack int) *reserve.DateSpan {
	days := WindowDays(monthsBack)
	if days == 0 {
		return nil
	}
	today := e.today()
	return &reserve.DateSpan{Start: today.AddDays(-days), End: today}
}

func filterStatus(all []reserve.Reservation, status reserve.Status) []reserve.Reservation {
	out := make([]reserve.Reservation, 0, len(all))
	for _, r := range all {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// selectWindow keeps reservations whose span touches the window at all;
// aggregation then clips them to it.
func selectWindow(rs []reserve.Reservation, window *reserve.DateSpan) []reserve.Reservation {
	if window == nil {
		return rs
	}
	out := make([]reserve.Reservation, 0, len(rs))
	for _, r := range rs {
		if r.Span.OverlapsInclusive(*window) {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// LEADERS - Top devices and users per region
// =============================================================================

func (e *Engine) leaders(rs []reserve.Reservation, window *reserve.DateSpan) []RegionLeaders {
	byRegion := make(map[string][]reserve.Reservation)
	var regions []string
	for _, r := range rs {
		if _, seen := byRegion[r.Region]; !seen {
			regions = append(regions, r.Region)
		}
		byRegion[r.Region] = append(byRegion[r.Region], r)
	}
	sort.Strings(regions)

	out := make([]RegionLeaders, 0, len(regions))
	for _, region := range regions {
		out = append(out, RegionLeaders{
			Region:     region,
			TopDevices: topBy(byRegion[region], window, func(r reserve.Reservation) string { return r.Device }, func(r reserve.Reservation) string { return r.RequestedBy }),
			TopUsers:   topBy(byRegion[region], window, func(r reserve.Reservation) string { return r.RequestedBy }, func(r reserve.Reservation) string { return r.Device }),
		})
	}
	return out
}

// topBy tallies count, merged unique days, and distinct peers per bucket
// key, then returns the TopN entries.
func topBy(rs []reserve.Reservation, window *reserve.DateSpan, key, peer func(reserve.Reservation) string) []LeaderEntry {
	buckets := make(map[string][]reserve.Reservation)
	peers := make(map[string]map[string]struct{})
	for _, r := range rs {
		k := key(r)
		buckets[k] = append(buckets[k], r)
		if peers[k] == nil {
			peers[k] = make(map[string]struct{})
		}
		peers[k][peer(r)] = struct{}{}
	}

	entries := make([]LeaderEntry, 0, len(buckets))
	for k, members := range buckets {
		entries = append(entries, LeaderEntry{
			Name:         k,
			Count:        len(members),
			TotalDays:    reserve.UniqueReservationDays(members, window),
			DistinctPeer: len(peers[k]),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		if entries[i].TotalDays != entries[j].TotalDays {
			return entries[i].TotalDays > entries[j].TotalDays
		}
		return entries[i].Name < entries[j].Name
	})

	if len(entries) > TopN {
		entries = entries[:TopN]
	}
	return entries
}

// =============================================================================
// UTILIZATION - Fixed-capacity rate per region
// =============================================================================

func (e *Engine) utilization(rs []reserve.Reservation, window *reserve.DateSpan) []UtilizationEntry {
	byRegion := make(map[string][]reserve.Reservation)
	var regions []string
	for _, r := range rs {
		if _, seen := byRegion[r.Region]; !seen {
			regions = append(regions, r.Region)
		}
		byRegion[r.Region] = append(byRegion[r.Region], r)
	}
	sort.Strings(regions)

	out := make([]UtilizationEntry, 0, len(regions))
	for _, region := range regions {
		reserved := reserve.UniqueReservationDays(byRegion[region], window)
		rate := decimal.NewFromInt(int64(reserved)).
			Div(decimal.NewFromInt(FixedCapacityDays)).
			Mul(decimal.NewFromInt(100)).
			Round(1)
		rateF, _ := rate.Float64()
		out = append(out, UtilizationEntry{
			Region:       region,
			ReservedDays: reserved,
			CapacityDays: FixedCapacityDays,
			Rate:         rateF,
		})
	}
	return out
}

// =============================================================================
// EFFICIENCY & SUMMARY
// =============================================================================

func (e *Engine) efficiency(rs []reserve.Reservation) Efficiency {
	eff := Efficiency{
		AvgLeadTimeDays: EstimatedLeadTimeDays,
		LastMinuteRate:  EstimatedLastMinuteRate,
	}
	if len(rs) == 0 {
		return eff
	}

	totalDuration := 0
	short := 0
	for _, r := range rs {
		d := r.DurationDays()
		totalDuration += d
		if d <= shortBookingMaxDays {
			short++
		}
	}

	n := decimal.NewFromInt(int64(len(rs)))
	avg, _ := decimal.NewFromInt(int64(totalDuration)).Div(n).Round(2).Float64()
	shortRate, _ := decimal.NewFromInt(int64(short)).Div(n).Round(3).Float64()
	eff.AvgDurationDays = avg
	eff.ShortBookingRate = shortRate
	return eff
}

func (e *Engine) summary(rs []reserve.Reservation, window *reserve.DateSpan) Summary {
	devices := make(map[string]struct{})
	users := make(map[string]struct{})
	regions := make(map[string]struct{})
	byKey := make(map[reserve.GroupKey][]reserve.Reservation)
	for _, r := range rs {
		devices[r.Device] = struct{}{}
		users[r.RequestedBy] = struct{}{}
		regions[r.Region] = struct{}{}
		byKey[r.Key()] = append(byKey[r.Key()], r)
	}

	// Unique days are merged per (device, region): simultaneous bookings of
	// different devices are distinct usage.
	uniqueDays := 0
	for _, members := range byKey {
		uniqueDays += reserve.UniqueReservationDays(members, window)
	}

	return Summary{
		Reservations:    len(rs),
		DistinctDevices: len(devices),
		DistinctUsers:   len(users),
		DistinctRegions: len(regions),
		UniqueDays:      uniqueDays,
	}
}
