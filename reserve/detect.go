/*
detect.go - Conflict detection across a reservation batch

PURPOSE:
  Groups mutually overlapping reservations per (device, region) key.
  Candidates ("new" reservations) are checked against each other and
  against the fixed commitments (acknowledged and resolved reservations,
  which are treated as already honored and never rescheduled).

GROUPING SEMANTICS:
  The default mode (GroupDirect) reproduces the historical behavior: a
  group is seeded by the first unconsumed candidate and collects only
  reservations that DIRECTLY overlap that seed. This is NOT a transitive
  closure. If A overlaps B and B overlaps C but A does not overlap C, the
  group seeded by A is {A, B}; C stands alone or seeds its own group
  later, even though B links them.

  GroupTransitive computes true connected components instead. Call sites
  select the mode on the detector; nothing else changes.

BOUNDARY RULE:
  Overlap here is STRICT: [s1,e1] and [s2,e2] conflict iff
  s1 < e2 && s2 < e1. Touching endpoints (one end equals another start)
  do not conflict, even though both dates are calendar-inclusive. The
  aggregation side (merge.go) deliberately uses the opposite inclusive
  rule; see DESIGN.md for the open question around this asymmetry.

SEE ALSO:
  - resolve.go: Assigns priority and reschedule suggestions per group
  - merge.go: The inclusive-boundary counterpart
*/
package reserve

// =============================================================================
// GROUPING MODE
// =============================================================================

type GroupingMode int

const (
	// GroupDirect collects only reservations that directly overlap the
	// group's seed candidate. Matches historical behavior.
	GroupDirect GroupingMode = iota

	// GroupTransitive collects full connected components under the strict
	// overlap relation.
	GroupTransitive
)

// =============================================================================
// CONFLICT GROUP
// =============================================================================

// ConflictGroup holds reservations contending for the same (device, region).
// Groups are recomputed on every detection pass and never persisted or
// merged across runs. Members appear in discovery order: the seed candidate
// first, then later candidates, then acknowledged, then resolved.
type ConflictGroup struct {
	Key     GroupKey
	Members []Reservation
}

func (g ConflictGroup) Size() int { return len(g.Members) }

// ContainsID reports set membership by reservation id.
func (g ConflictGroup) ContainsID(id ReservationID) bool {
	for _, m := range g.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// =============================================================================
// CONFLICT DETECTOR
// =============================================================================

// ConflictDetector runs one synchronous detection pass over a batch.
// The zero value detects in GroupDirect mode.
type ConflictDetector struct {
	Mode GroupingMode
}

// Detect iterates candidates in original order and emits every group that
// ends up with more than one member. Acknowledged and resolved reservations
// join any group they overlap but never seed one, and may appear in more
// than one group.
func (d *ConflictDetector) Detect(candidates, acknowledged, resolved []Reservation) []ConflictGroup {
	if d.Mode == GroupTransitive {
		return d.detectTransitive(candidates, acknowledged, resolved)
	}
	return d.detectDirect(candidates, acknowledged, resolved)
}

func (d *ConflictDetector) detectDirect(candidates, acknowledged, resolved []Reservation) []ConflictGroup {
	var groups []ConflictGroup
	consumed := make([]bool, len(candidates))

	for i, seed := range candidates {
		if consumed[i] {
			continue
		}
		group := ConflictGroup{Key: seed.Key(), Members: []Reservation{seed}}

		// Later unconsumed candidates that directly overlap the seed.
		for j := i + 1; j < len(candidates); j++ {
			if consumed[j] {
				continue
			}
			if conflicts(seed, candidates[j]) {
				group.Members = append(group.Members, candidates[j])
				consumed[j] = true
			}
		}

		// Fixed commitments that directly overlap the seed.
		for _, a := range acknowledged {
			if conflicts(seed, a) {
				group.Members = append(group.Members, a)
			}
		}
		for _, r := range resolved {
			if conflicts(seed, r) {
				group.Members = append(group.Members, r)
			}
		}

		if group.Size() > 1 {
			consumed[i] = true
			groups = append(groups, group)
		}
	}
	return groups
}

// detectTransitive computes connected components over candidates and fixed
// commitments under the strict overlap relation. Components are emitted in
// the order of their earliest candidate and only when they contain at
// least one candidate; a component of fixed commitments alone is not a
// conflict the resolver can act on.
func (d *ConflictDetector) detectTransitive(candidates, acknowledged, resolved []Reservation) []ConflictGroup {
	all := make([]Reservation, 0, len(candidates)+len(acknowledged)+len(resolved))
	all = append(all, candidates...)
	all = append(all, acknowledged...)
	all = append(all, resolved...)

	parent := make([]int, len(all))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if conflicts(all[i], all[j]) {
				union(i, j)
			}
		}
	}

	// Group members by root, preserving input order within each component.
	members := make(map[int][]Reservation)
	order := make([]int, 0)
	hasCandidate := make(map[int]bool)
	for i, r := range all {
		root := find(i)
		if _, seen := members[root]; !seen {
			order = append(order, root)
		}
		members[root] = append(members[root], r)
		if i < len(candidates) {
			hasCandidate[root] = true
		}
	}

	var groups []ConflictGroup
	for _, root := range order {
		ms := members[root]
		if len(ms) > 1 && hasCandidate[root] {
			groups = append(groups, ConflictGroup{Key: ms[0].Key(), Members: ms})
		}
	}
	return groups
}

// conflicts is the detection predicate: same resource, strictly
// overlapping spans.
func conflicts(a, b Reservation) bool {
	return a.SameResource(b) && a.Span.OverlapsStrict(b.Span)
}

// =============================================================================
// VALID-RESERVATION FILTER
// =============================================================================

// ValidReservations returns the candidates whose id appears in no conflict
// group. Pure set membership; no interval logic.
func ValidReservations(candidates []Reservation, groups []ConflictGroup) []Reservation {
	conflicted := make(map[ReservationID]struct{})
	for _, g := range groups {
		for _, m := range g.Members {
			conflicted[m.ID] = struct{}{}
		}
	}

	valid := make([]Reservation, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := conflicted[c.ID]; !ok {
			valid = append(valid, c)
		}
	}
	return valid
}
