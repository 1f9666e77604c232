/*
merge.go - Unique-usage-day interval merging

PURPOSE:
  Computes "days actually in use" for a set of reservations sharing some
  grouping key (device, user, region) without double-counting overlapping
  bookings. This is the aggregation primitive the statistics layer calls
  per bucket.

BOUNDARY RULE:
  The sweep merges whenever the next span's start is <= the current open
  span's end. Touching spans (one end equals the next start) DO merge into
  one run. This is intentionally the opposite boundary choice from the
  strict conflict test in detect.go; both rules must hold simultaneously
  for the same pair of spans.

CLIPPING:
  An optional timeframe clips every span before sorting; spans left empty
  or inverted by the clip are discarded.

SEE ALSO:
  - dates.go: DateSpan.Clip and InclusiveDays
  - detect.go: The strict-boundary counterpart
*/
package reserve

import "sort"

// MergeSpans clips, sorts, and merges the given spans into disjoint runs.
// The result is ordered by start and independent of input order. within may
// be nil for no timeframe restriction.
func MergeSpans(spans []DateSpan, within *DateSpan) []DateSpan {
	clipped := make([]DateSpan, 0, len(spans))
	for _, s := range spans {
		if within != nil {
			c, ok := s.Clip(*within)
			if !ok {
				continue
			}
			clipped = append(clipped, c)
			continue
		}
		clipped = append(clipped, s)
	}
	if len(clipped) == 0 {
		return nil
	}

	sort.Slice(clipped, func(i, j int) bool {
		if !clipped[i].Start.Equal(clipped[j].Start) {
			return clipped[i].Start.Before(clipped[j].Start)
		}
		return clipped[i].End.Before(clipped[j].End)
	})

	merged := []DateSpan{clipped[0]}
	for _, next := range clipped[1:] {
		current := &merged[len(merged)-1]
		// Inclusive/adjacent merge: touching spans join the open run.
		if next.Start.BeforeOrEqual(current.End) {
			current.End = MaxDate(current.End, next.End)
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// UniqueDays counts the calendar days covered by the spans after merging.
// Empty input yields 0.
func UniqueDays(spans []DateSpan, within *DateSpan) int {
	total := 0
	for _, run := range MergeSpans(spans, within) {
		total += run.InclusiveDays()
	}
	return total
}

// ReservationSpans projects a reservation slice onto its spans.
func ReservationSpans(reservations []Reservation) []DateSpan {
	spans := make([]DateSpan, len(reservations))
	for i, r := range reservations {
		spans[i] = r.Span
	}
	return spans
}

// UniqueReservationDays is UniqueDays over a reservation slice.
func UniqueReservationDays(reservations []Reservation, within *DateSpan) int {
	return UniqueDays(ReservationSpans(reservations), within)
}
