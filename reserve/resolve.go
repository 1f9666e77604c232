/*
resolve.go - Deterministic conflict resolution ("stability mode")

PURPOSE:
  Assigns a priority order within each conflict group and computes
  reschedule suggestions for every member except the primary. The lowest
  numeric id wins: that member is honored and keeps its schedule.

ANCHORING RULE:
  Member i's suggestion is anchored to member i-1's ORIGINAL end date:

    newStart = member[i-1].End + bufferDays
    newEnd   = newStart + durationDays(member[i]) - 1

  A rescheduled member's suggested new end is never propagated forward to
  the next member's anchor. In chains of three or more this can produce a
  suggestion that still overlaps the previous member's SUGGESTED range.
  Known limitation, preserved deliberately; see DESIGN.md.

OUTPUT SHAPE:
  Resolution produces an immutable side table {reservationID -> Suggestion}
  joined at presentation time. Reservations themselves are never mutated.

SEE ALSO:
  - detect.go: Produces the groups this pass consumes
  - types.go: PriorityLess defines the id ordering (non-numeric ids last)
*/
package reserve

import (
	"fmt"
	"sort"
)

// DefaultBufferDays separates a suggested reschedule from its anchor.
const DefaultBufferDays = 1

// =============================================================================
// SUGGESTION SIDE TABLE
// =============================================================================

// Suggestion is a reschedule proposal for one conflicted reservation.
type Suggestion struct {
	ReservationID ReservationID
	Span          DateSpan
	DurationDays  int
	Note          string
}

// SuggestionTable maps conflicted reservations to their proposals. The
// resolver writes each entry exactly once; readers join it against the
// reservation set at presentation time.
type SuggestionTable map[ReservationID]Suggestion

// =============================================================================
// RESOLVED GROUPS
// =============================================================================

// ResolvedGroup is a conflict group after priority ordering. Members are
// sorted ascending by numeric id; Primary is nil only when the group has
// no members, which callers treat as "no honored reservation".
type ResolvedGroup struct {
	Key     GroupKey
	Primary *Reservation
	Members []Reservation
}

// Resolution is the full output of one resolution pass.
type Resolution struct {
	Groups      []ResolvedGroup
	Suggestions SuggestionTable
}

// =============================================================================
// CONFLICT RESOLVER
// =============================================================================

// ConflictResolver computes suggestions for a detection pass. The zero
// value uses DefaultBufferDays.
type ConflictResolver struct {
	BufferDays int
}

func (cr *ConflictResolver) buffer() int {
	if cr.BufferDays <= 0 {
		return DefaultBufferDays
	}
	return cr.BufferDays
}

// Resolve orders every group by priority and fills the suggestion table.
// It never fails: empty input yields an empty resolution.
func (cr *ConflictResolver) Resolve(groups []ConflictGroup) Resolution {
	res := Resolution{
		Groups:      make([]ResolvedGroup, 0, len(groups)),
		Suggestions: make(SuggestionTable),
	}

	for _, g := range groups {
		members := make([]Reservation, len(g.Members))
		copy(members, g.Members)
		sort.SliceStable(members, func(i, j int) bool {
			return PriorityLess(members[i].ID, members[j].ID)
		})

		rg := ResolvedGroup{Key: g.Key, Members: members}
		if len(members) > 0 {
			rg.Primary = &members[0]
		}

		// Each non-primary member is anchored to its predecessor's
		// original end date, never to the predecessor's suggested end.
		for i := 1; i < len(members); i++ {
			s := cr.suggest(members[i-1], members[i])
			res.Suggestions[members[i].ID] = s
		}

		res.Groups = append(res.Groups, rg)
	}
	return res
}

func (cr *ConflictResolver) suggest(anchor, member Reservation) Suggestion {
	duration := member.DurationDays()
	newStart := anchor.Span.End.AddDays(cr.buffer())
	newEnd := newStart.AddDays(duration - 1)
	span := DateSpan{Start: newStart, End: newEnd}

	return Suggestion{
		ReservationID: member.ID,
		Span:          span,
		DurationDays:  duration,
		Note:          fmt.Sprintf("reschedule to %s - %s (%d day booking)", newStart, newEnd, duration),
	}
}

// PrimaryOf returns the honored reservation of a resolved group, or
// ErrNoPrimary when the group has none.
func (rg ResolvedGroup) PrimaryOf() (Reservation, error) {
	if rg.Primary == nil {
		return Reservation{}, ErrNoPrimary
	}
	return *rg.Primary, nil
}
