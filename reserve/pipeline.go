package reserve

// Pipeline bundles one detection pass with its resolution pass. The zero
// value uses direct grouping and the default reschedule buffer.
type Pipeline struct {
	Detector ConflictDetector
	Resolver ConflictResolver
}

// Outcome is the result of a full detect-and-resolve pass: the resolved
// groups, the suggestion side table, and the candidates untouched by any
// conflict.
type Outcome struct {
	Groups      []ResolvedGroup
	Suggestions SuggestionTable
	Valid       []Reservation
}

// DetectAndResolve runs detection over the three collections and resolves
// every emitted group. The pass runs to completion synchronously; the
// outcome is fully built before it is returned.
func (p *Pipeline) DetectAndResolve(candidates, acknowledged, resolved []Reservation) Outcome {
	groups := p.Detector.Detect(candidates, acknowledged, resolved)
	resolution := p.Resolver.Resolve(groups)
	return Outcome{
		Groups:      resolution.Groups,
		Suggestions: resolution.Suggestions,
		Valid:       ValidReservations(candidates, groups),
	}
}
