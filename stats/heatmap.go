/*
heatmap.go - Trailing-window conflict pattern analysis

PURPOSE:
  Counts pairwise reservation conflicts per calendar month over the 12
  months ending at the current month. This view is independent of any
  user-selected statistics timeframe: its lookback is always the trailing
  365 days from "now".

COUNTING RULES:
  Per month bucket, select reservations whose span overlaps that month,
  then count unique unordered pairs on the same (device, region) whose
  spans overlap INCLUSIVELY (s1 <= e2 && s2 <= e1 — touching endpoints
  count here, unlike the detection pass). A pair is deduplicated within
  each month bucket, not globally: a pair spanning three months is counted
  once in each of those three buckets.
*/
package stats

import (
	"time"

	"github.com/fieldlab/reservation-engine/reserve"
)

// heatmapMonths is the number of calendar buckets in the trailing window.
const heatmapMonths = 12

func (e *Engine) heatmap(resolved []reserve.Reservation) Heatmap {
	now := e.now().UTC()

	hm := Heatmap{
		Months: make([]MonthBucket, 0, heatmapMonths),
		Peak:   -1,
		Low:    -1,
	}

	for i := heatmapMonths - 1; i >= 0; i-- {
		anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		monthSpan := reserve.MonthSpan(anchor.Year(), anchor.Month())

		bucket := MonthBucket{
			Year:      anchor.Year(),
			Month:     int(anchor.Month()),
			Conflicts: countMonthConflicts(resolved, monthSpan),
		}
		hm.Months = append(hm.Months, bucket)
		hm.TotalConflicts += bucket.Conflicts
	}

	// Peak and low consider only months that saw conflicts; with a single
	// active month they coincide.
	for i, b := range hm.Months {
		if b.Conflicts == 0 {
			continue
		}
		if hm.Peak == -1 || b.Conflicts > hm.Months[hm.Peak].Conflicts {
			hm.Peak = i
		}
		if hm.Low == -1 || b.Conflicts < hm.Months[hm.Low].Conflicts {
			hm.Low = i
		}
	}
	return hm
}

// countMonthConflicts counts unique unordered overlapping pairs among the
// reservations touching the month.
func countMonthConflicts(rs []reserve.Reservation, month reserve.DateSpan) int {
	var inMonth []reserve.Reservation
	for _, r := range rs {
		if r.Span.OverlapsInclusive(month) {
			inMonth = append(inMonth, r)
		}
	}

	type pairKey struct {
		a, b reserve.ReservationID
	}
	seen := make(map[pairKey]struct{})

	for i := 0; i < len(inMonth); i++ {
		for j := i + 1; j < len(inMonth); j++ {
			a, b := inMonth[i], inMonth[j]
			if !a.SameResource(b) || !a.Span.OverlapsInclusive(b.Span) {
				continue
			}
			key := pairKey{a: a.ID, b: b.ID}
			if key.b < key.a {
				key.a, key.b = key.b, key.a
			}
			seen[key] = struct{}{}
		}
	}
	return len(seen)
}
