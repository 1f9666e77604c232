/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the domain
  model from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - stats: Statistics results carry their own JSON tags and are returned
    as-is
*/
package api

import (
	"github.com/fieldlab/reservation-engine/reserve"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ReservationDTO represents a reservation in API responses.
type ReservationDTO struct {
	ID           string `json:"id"`
	Device       string `json:"device"`
	Region       string `json:"region"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	RequestedBy  string `json:"requestedBy"`
	Status       string `json:"status"`
	DurationDays int    `json:"durationDays"`
}

func toReservationDTO(r reserve.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:           string(r.ID),
		Device:       r.Device,
		Region:       r.Region,
		StartDate:    r.Span.Start.String(),
		EndDate:      r.Span.End.String(),
		RequestedBy:  r.RequestedBy,
		Status:       string(r.Status),
		DurationDays: r.DurationDays(),
	}
}

func toReservationDTOs(rs []reserve.Reservation) []ReservationDTO {
	dtos := make([]ReservationDTO, len(rs))
	for i, r := range rs {
		dtos[i] = toReservationDTO(r)
	}
	return dtos
}

// LoadBatchRequest carries one ingested dataset: the ordered row objects
// the ingestion collaborator produced, each with its validity flag.
type LoadBatchRequest struct {
	Rows []reserve.Row `json:"rows"`
}

// SkippedRowDTO explains why a row did not make it into the batch.
type SkippedRowDTO struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// LoadBatchResponse reports the outcome of a batch load.
type LoadBatchResponse struct {
	DatasetID string          `json:"datasetId"`
	Loaded    int             `json:"loaded"`
	Skipped   []SkippedRowDTO `json:"skipped"`
}

// SuggestionDTO is a reschedule proposal for one conflicted reservation.
type SuggestionDTO struct {
	ReservationID string `json:"reservationId"`
	NewStart      string `json:"newStart"`
	NewEnd        string `json:"newEnd"`
	DurationDays  int    `json:"durationDays"`
	Note          string `json:"note"`
}

// ConflictGroupDTO is one resolved conflict group. PrimaryID is empty when
// the group has no honored reservation.
type ConflictGroupDTO struct {
	Device    string           `json:"device"`
	Region    string           `json:"region"`
	PrimaryID string           `json:"primaryId,omitempty"`
	Members   []ReservationDTO `json:"members"`
}

// DetectResponse is the full output of a detect-and-resolve pass.
type DetectResponse struct {
	ConflictGroups    []ConflictGroupDTO       `json:"conflictGroups"`
	Suggestions       map[string]SuggestionDTO `json:"suggestions"`
	ValidReservations []ReservationDTO         `json:"validReservations"`
}

// DatasetDTO describes the currently loaded batch.
type DatasetDTO struct {
	ID           string           `json:"id"`
	LoadedAt     string           `json:"loadedAt"`
	RowCount     int              `json:"rowCount"`
	SkippedRows  int              `json:"skippedRows"`
	Reservations []ReservationDTO `json:"reservations"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
