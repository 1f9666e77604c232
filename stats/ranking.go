/*
ranking.go - Composite user ranking score

PURPOSE:
  Scores each user 0-100 by normalizing four signals against the cohort's
  maxima and combining them with fixed weights:

    reservation count        0.4
    total unique days        0.3
    distinct devices         0.2
    duration efficiency      0.1

DURATION EFFICIENCY:
  An average stay inside [2, 14] days scores 1.0. Shorter averages scale
  down linearly to a 0.3 floor at zero. Longer averages decay by 0.05 per
  day over 14, floored at 0.2.

PRECISION:
  All weighting is done in decimal and rounded to an integer at the end,
  so the same cohort always produces the same scores.
*/
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fieldlab/reservation-engine/reserve"
)

var (
	weightCount      = decimal.NewFromFloat(0.4)
	weightDays       = decimal.NewFromFloat(0.3)
	weightDevices    = decimal.NewFromFloat(0.2)
	weightEfficiency = decimal.NewFromFloat(0.1)
)

const (
	efficiencySweetMin = 2.0
	efficiencySweetMax = 14.0
	efficiencyShortMin = 0.3
	efficiencyLongMin  = 0.2
	efficiencyDecay    = 0.05 // per day beyond the sweet spot
)

type userSignals struct {
	user        string
	count       int
	uniqueDays  int
	devices     int
	avgDuration decimal.Decimal
}

func (e *Engine) rankings(rs []reserve.Reservation, window *reserve.DateSpan) []RankingEntry {
	if len(rs) == 0 {
		return nil
	}

	byUser := make(map[string][]reserve.Reservation)
	var users []string
	for _, r := range rs {
		if _, seen := byUser[r.RequestedBy]; !seen {
			users = append(users, r.RequestedBy)
		}
		byUser[r.RequestedBy] = append(byUser[r.RequestedBy], r)
	}
	sort.Strings(users)

	signals := make([]userSignals, 0, len(users))
	maxCount, maxDays, maxDevices := 0, 0, 0
	for _, u := range users {
		members := byUser[u]
		devices := make(map[string]struct{})
		totalDuration := 0
		for _, r := range members {
			devices[r.Device] = struct{}{}
			totalDuration += r.DurationDays()
		}
		s := userSignals{
			user:       u,
			count:      len(members),
			uniqueDays: reserve.UniqueReservationDays(members, window),
			devices:    len(devices),
			avgDuration: decimal.NewFromInt(int64(totalDuration)).
				Div(decimal.NewFromInt(int64(len(members)))),
		}
		signals = append(signals, s)
		if s.count > maxCount {
			maxCount = s.count
		}
		if s.uniqueDays > maxDays {
			maxDays = s.uniqueDays
		}
		if s.devices > maxDevices {
			maxDevices = s.devices
		}
	}

	entries := make([]RankingEntry, 0, len(signals))
	for _, s := range signals {
		score := weightCount.Mul(normalize(s.count, maxCount)).
			Add(weightDays.Mul(normalize(s.uniqueDays, maxDays))).
			Add(weightDevices.Mul(normalize(s.devices, maxDevices))).
			Add(weightEfficiency.Mul(durationEfficiency(s.avgDuration)))

		avg, _ := s.avgDuration.Round(2).Float64()
		entries = append(entries, RankingEntry{
			User:            s.user,
			Score:           int(score.Mul(decimal.NewFromInt(100)).Round(0).IntPart()),
			Reservations:    s.count,
			UniqueDays:      s.uniqueDays,
			DistinctDevices: s.devices,
			AvgDurationDays: avg,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].User < entries[j].User
	})
	return entries
}

// normalize scales a signal against the cohort maximum. A zero maximum
// contributes nothing rather than dividing by zero.
func normalize(value, max int) decimal.Decimal {
	if max == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(value)).Div(decimal.NewFromInt(int64(max)))
}

// durationEfficiency rewards average stays inside the sweet spot.
func durationEfficiency(avg decimal.Decimal) decimal.Decimal {
	sweetMin := decimal.NewFromFloat(efficiencySweetMin)
	sweetMax := decimal.NewFromFloat(efficiencySweetMax)
	one := decimal.NewFromInt(1)

	switch {
	case avg.GreaterThanOrEqual(sweetMin) && avg.LessThanOrEqual(sweetMax):
		return one
	case avg.LessThan(sweetMin):
		// Linear from the 0.3 floor at zero up to 1.0 at the sweet spot.
		floor := decimal.NewFromFloat(efficiencyShortMin)
		slope := one.Sub(floor)
		score := floor.Add(slope.Mul(avg.Div(sweetMin)))
		if score.LessThan(floor) {
			return floor
		}
		return score
	default:
		floor := decimal.NewFromFloat(efficiencyLongMin)
		penalty := avg.Sub(sweetMax).Mul(decimal.NewFromFloat(efficiencyDecay))
		score := one.Sub(penalty)
		if score.LessThan(floor) {
			return floor
		}
		return score
	}
}
