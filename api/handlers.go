/*
handlers.go - HTTP API handlers for the reservation engine

PURPOSE:
  Exposes the conflict and statistics core via REST. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Dataset:
    POST   /api/reservations/batch   Load a dataset (replaces the current one)
    GET    /api/reservations         List the current dataset
    POST   /api/reservations/reset   Clear the dataset and the stats cache

  Conflicts:
    POST   /api/conflicts/detect     Run detection + resolution

  Statistics:
    GET    /api/statistics           Compute (cached) statistics
    POST   /api/statistics/cache/clear  Drop memoized results

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (malformed body, bad months_back)
  - 500: Internal errors

  An empty dataset is not an error for read endpoints: lists come back
  empty and statistics come back zero-valued.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fieldlab/reservation-engine/reserve"
	"github.com/fieldlab/reservation-engine/stats"
	"github.com/fieldlab/reservation-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Stats    *stats.Engine
	Pipeline reserve.Pipeline
	Log      *logrus.Logger
}

// NewHandler creates a handler around the given store.
func NewHandler(store *sqlite.Store, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{
		Store: store,
		Stats: stats.NewEngine(),
		Log:   log,
	}
}

// =============================================================================
// DATASET HANDLERS
// =============================================================================

// LoadBatch replaces the current dataset with the posted rows.
func (h *Handler) LoadBatch(w http.ResponseWriter, r *http.Request) {
	var req LoadBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	reservations, skipped := reserve.FromRows(req.Rows)
	datasetID := uuid.NewString()

	if err := h.Store.ReplaceDataset(r.Context(), datasetID, reservations, len(skipped)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store dataset", err)
		return
	}

	// A new batch invalidates every memoized statistics result.
	h.Stats.ClearCache()

	resp := LoadBatchResponse{
		DatasetID: datasetID,
		Loaded:    len(reservations),
		Skipped:   make([]SkippedRowDTO, 0, len(skipped)),
	}
	for _, s := range skipped {
		resp.Skipped = append(resp.Skipped, SkippedRowDTO{ID: s.ID, Reason: s.Reason})
	}

	h.Log.WithFields(logrus.Fields{
		"dataset": datasetID,
		"loaded":  len(reservations),
		"skipped": len(skipped),
	}).Info("dataset loaded")

	writeJSON(w, http.StatusCreated, resp)
}

// ListDataset returns the loaded batch with its metadata.
func (h *Handler) ListDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.Store.CurrentDataset(r.Context())
	if errors.Is(err, reserve.ErrEmptyDataset) {
		writeJSON(w, http.StatusOK, DatasetDTO{Reservations: []ReservationDTO{}})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read dataset", err)
		return
	}

	reservations, err := h.Store.ListReservations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reservations", err)
		return
	}

	writeJSON(w, http.StatusOK, DatasetDTO{
		ID:           info.ID,
		LoadedAt:     info.LoadedAt.Format("2006-01-02T15:04:05Z07:00"),
		RowCount:     info.RowCount,
		SkippedRows:  info.SkippedRows,
		Reservations: toReservationDTOs(reservations),
	})
}

// ResetDataset drops the batch and the statistics cache.
func (h *Handler) ResetDataset(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset dataset", err)
		return
	}
	h.Stats.ClearCache()
	h.Log.Info("dataset reset")
	writeJSON(w, http.StatusOK, map[string]any{"reset": true})
}

// =============================================================================
// CONFLICT HANDLERS
// =============================================================================

// DetectConflicts partitions the dataset by status and runs one full
// detect-and-resolve pass over it.
func (h *Handler) DetectConflicts(w http.ResponseWriter, r *http.Request) {
	all, err := h.Store.ListReservations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reservations", err)
		return
	}

	candidates, acknowledged, resolved := reserve.PartitionByStatus(all)
	outcome := h.Pipeline.DetectAndResolve(candidates, acknowledged, resolved)

	resp := DetectResponse{
		ConflictGroups:    make([]ConflictGroupDTO, 0, len(outcome.Groups)),
		Suggestions:       make(map[string]SuggestionDTO, len(outcome.Suggestions)),
		ValidReservations: toReservationDTOs(outcome.Valid),
	}

	for _, g := range outcome.Groups {
		dto := ConflictGroupDTO{
			Device:  g.Key.Device,
			Region:  g.Key.Region,
			Members: toReservationDTOs(g.Members),
		}
		if g.Primary != nil {
			dto.PrimaryID = string(g.Primary.ID)
		}
		resp.ConflictGroups = append(resp.ConflictGroups, dto)
	}

	for id, s := range outcome.Suggestions {
		resp.Suggestions[string(id)] = SuggestionDTO{
			ReservationID: string(s.ReservationID),
			NewStart:      s.Span.Start.String(),
			NewEnd:        s.Span.End.String(),
			DurationDays:  s.DurationDays,
			Note:          s.Note,
		}
	}

	h.Log.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"groups":     len(resp.ConflictGroups),
		"valid":      len(resp.ValidReservations),
	}).Info("conflict pass completed")

	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// STATISTICS HANDLERS
// =============================================================================

// GetStatistics computes (or returns the memoized) statistics for the
// dataset. months_back: 0 = all time, {1,3,6,12} select fixed windows.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	monthsBack := 0
	if raw := r.URL.Query().Get("months_back"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid months_back (use 0, 1, 3, 6 or 12)", err)
			return
		}
		switch n {
		case 0, 1, 3, 6, 12:
			monthsBack = n
		default:
			writeError(w, http.StatusBadRequest, "Invalid months_back (use 0, 1, 3, 6 or 12)", nil)
			return
		}
	}

	all, err := h.Store.ListReservations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reservations", err)
		return
	}

	writeJSON(w, http.StatusOK, h.Stats.Compute(all, monthsBack))
}

// ClearStatsCache drops every memoized statistics result.
func (h *Handler) ClearStatsCache(w http.ResponseWriter, r *http.Request) {
	h.Stats.ClearCache()
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
