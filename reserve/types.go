/*
Package reserve implements the reservation conflict and aggregation core.

PURPOSE:
  This package contains the entity model and the two tightly coupled
  algorithm families that share the same interval primitive:
  - Conflict detection and deterministic resolution among overlapping
    equipment reservations on a (device, region) key
  - Interval-aware aggregation (unique-usage-day merging) that the
    statistics layer builds on

KEY CONCEPTS IN THIS FILE (types.go):
  - Reservation: An immutable interval record keyed by (device, region)
  - ReservationID: String-encoded numeric id; lower numeric value wins
    priority during resolution
  - Row: The boundary type handed over by the ingestion collaborator
  - GroupKey: The (device, region) pair every grouping is keyed by

DESIGN PRINCIPLES:
  1. Immutability: Reservations never change after construction. Reschedule
     suggestions live in a side table (see resolve.go), not on the entity.
  2. Determinism: Every pass over the same input produces the same output;
     callers retry simply by recomputing.
  3. No schema checking: The core trusts the ingestion boundary to deliver
     validated rows. Rows flagged invalid are skipped, not repaired.

SEE ALSO:
  - dates.go: Date and DateSpan primitives, overlap predicates
  - detect.go: ConflictDetector and the valid-reservation filter
  - resolve.go: ConflictResolver and the suggestion side table
  - merge.go: Unique-days interval merging
*/
package reserve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusNew          Status = "new"
	StatusAcknowledged Status = "acknowledged"
	StatusResolved     Status = "resolved"
	StatusCancelled    Status = "cancelled"
)

// ParseStatus normalizes an ingested status value case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusNew:
		return StatusNew, nil
	case StatusAcknowledged:
		return StatusAcknowledged, nil
	case StatusResolved:
		return StatusResolved, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", &UnknownStatusError{Value: s}
	}
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ReservationID string

// Numeric parses the id's numeric value. ok is false for non-numeric ids,
// which the priority ordering places last rather than rejecting.
func (id ReservationID) Numeric() (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(id)), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// PriorityLess orders ids ascending by numeric value; lower wins.
// Non-numeric ids sort after all numeric ones, ties break on the raw
// string so the order is total and stable.
func PriorityLess(a, b ReservationID) bool {
	na, okA := a.Numeric()
	nb, okB := b.Numeric()
	switch {
	case okA && okB:
		if na != nb {
			return na < nb
		}
		return a < b
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}

// GroupKey identifies the resource a reservation contends for.
type GroupKey struct {
	Device string
	Region string
}

func (k GroupKey) String() string { return k.Device + "/" + k.Region }

// =============================================================================
// RESERVATION
// =============================================================================

// Reservation is the canonical interval record. It is constructed once from
// an ingested row and never mutated afterwards.
type Reservation struct {
	ID          ReservationID
	Device      string
	Region      string
	Span        DateSpan
	RequestedBy string
	Status      Status
}

func (r Reservation) Key() GroupKey { return GroupKey{Device: r.Device, Region: r.Region} }

// DurationDays is the booking duration; same-day reservations count as 1.
func (r Reservation) DurationDays() int { return r.Span.DurationDays() }

// SameResource reports whether two reservations contend for the same
// (device, region) pair.
func (r Reservation) SameResource(other Reservation) bool { return r.Key() == other.Key() }

// =============================================================================
// INGESTION BOUNDARY
// =============================================================================

// Row is the shape the ingestion collaborator hands over: one object per
// CSV line after column mapping and row-level validation. The core never
// sees raw CSV text.
type Row struct {
	ID          string `json:"id"`
	Device      string `json:"device"`
	Region      string `json:"region"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	RequestedBy string `json:"requestedBy"`
	Status      string `json:"status"`
	Valid       bool   `json:"valid"`
}

// FromRow builds a Reservation from a validated row.
func FromRow(row Row) (Reservation, error) {
	start, err := ParseDate(row.StartDate)
	if err != nil {
		return Reservation{}, &InvalidRowError{ID: row.ID, Reason: err.Error()}
	}
	end, err := ParseDate(row.EndDate)
	if err != nil {
		return Reservation{}, &InvalidRowError{ID: row.ID, Reason: err.Error()}
	}
	span, err := NewDateSpan(start, end)
	if err != nil {
		return Reservation{}, &InvalidRowError{ID: row.ID, Reason: fmt.Sprintf("%s > %s", row.StartDate, row.EndDate)}
	}
	status, err := ParseStatus(row.Status)
	if err != nil {
		return Reservation{}, &InvalidRowError{ID: row.ID, Reason: err.Error()}
	}
	return Reservation{
		ID:          ReservationID(strings.TrimSpace(row.ID)),
		Device:      strings.TrimSpace(row.Device),
		Region:      strings.TrimSpace(row.Region),
		Span:        span,
		RequestedBy: strings.TrimSpace(row.RequestedBy),
		Status:      status,
	}, nil
}

// FromRows converts a batch in order. Rows flagged invalid by the ingestion
// layer are skipped; rows that fail conversion despite the flag are
// reported but do not abort the batch.
func FromRows(rows []Row) (reservations []Reservation, skipped []InvalidRowError) {
	for _, row := range rows {
		if !row.Valid {
			skipped = append(skipped, InvalidRowError{ID: row.ID, Reason: "flagged invalid by ingestion"})
			continue
		}
		r, err := FromRow(row)
		if err != nil {
			var invalid *InvalidRowError
			if errors.As(err, &invalid) {
				skipped = append(skipped, *invalid)
			} else {
				skipped = append(skipped, InvalidRowError{ID: row.ID, Reason: err.Error()})
			}
			continue
		}
		reservations = append(reservations, r)
	}
	return reservations, skipped
}

// PartitionByStatus splits a dataset into the three collections conflict
// detection consumes. Cancelled reservations participate in none of them.
func PartitionByStatus(all []Reservation) (candidates, acknowledged, resolved []Reservation) {
	for _, r := range all {
		switch r.Status {
		case StatusNew:
			candidates = append(candidates, r)
		case StatusAcknowledged:
			acknowledged = append(acknowledged, r)
		case StatusResolved:
			resolved = append(resolved, r)
		}
	}
	return candidates, acknowledged, resolved
}
