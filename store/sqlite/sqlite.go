/*
Package sqlite provides SQLite-backed session storage for reservation
batches.

PURPOSE:
  Holds the one reservation batch the engine operates on per session. The
  default database is ":memory:": this is session storage for the loaded
  batch, not persistence across sessions. A file path can be supplied for
  development convenience.

KEY TABLES:
  datasets:     One row per loaded batch (id, loaded timestamp, row counts)
  reservations: The batch contents, keyed by dataset

BATCH SEMANTICS:
  Loading a batch REPLACES the previous one atomically. Statistics and
  conflict passes always see either the old batch or the new one, never a
  mix.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety under the HTTP server. WAL mode for
  file-backed databases.

USAGE:
  store, err := sqlite.New(":memory:")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - reserve: The entity model stored here
  - api: The only writer and reader of this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fieldlab/reservation-engine/reserve"
)

// Store implements session dataset storage using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// DatasetInfo describes the currently loaded batch.
type DatasetInfo struct {
	ID          string
	LoadedAt    time.Time
	RowCount    int
	SkippedRows int
}

// New creates a store at the given database path. Use ":memory:" for the
// standard in-memory session store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		id TEXT PRIMARY KEY,
		loaded_at TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		skipped_rows INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reservations (
		dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
		res_id TEXT NOT NULL,
		device TEXT NOT NULL,
		region TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		requested_by TEXT NOT NULL,
		status TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (dataset_id, res_id)
	);

	CREATE INDEX IF NOT EXISTS idx_reservations_status
		ON reservations(dataset_id, status);
	CREATE INDEX IF NOT EXISTS idx_reservations_key
		ON reservations(dataset_id, device, region);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ReplaceDataset atomically swaps in a new batch. The previous batch is
// dropped in the same transaction.
func (s *Store) ReplaceDataset(ctx context.Context, datasetID string, rs []reserve.Reservation, skipped int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations`); err != nil {
		return fmt.Errorf("failed to clear reservations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM datasets`); err != nil {
		return fmt.Errorf("failed to clear datasets: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (id, loaded_at, row_count, skipped_rows) VALUES (?, ?, ?, ?)`,
		datasetID, time.Now().UTC().Format(time.RFC3339), len(rs), skipped,
	); err != nil {
		return fmt.Errorf("failed to insert dataset: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reservations
			(dataset_id, res_id, device, region, start_date, end_date, requested_by, status, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rs {
		if _, err := stmt.ExecContext(ctx,
			datasetID, string(r.ID), r.Device, r.Region,
			r.Span.Start.String(), r.Span.End.String(),
			r.RequestedBy, string(r.Status), i,
		); err != nil {
			return fmt.Errorf("failed to insert reservation %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// CurrentDataset returns the loaded batch's metadata, or
// reserve.ErrEmptyDataset when none is loaded.
func (s *Store) CurrentDataset(ctx context.Context) (*DatasetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, loaded_at, row_count, skipped_rows FROM datasets LIMIT 1`)

	var info DatasetInfo
	var loadedAt string
	if err := row.Scan(&info.ID, &loadedAt, &info.RowCount, &info.SkippedRows); err != nil {
		if err == sql.ErrNoRows {
			return nil, reserve.ErrEmptyDataset
		}
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	t, err := time.Parse(time.RFC3339, loadedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt loaded_at %q: %w", loadedAt, err)
	}
	info.LoadedAt = t
	return &info, nil
}

// ListReservations returns the full batch in original load order. An
// empty store yields an empty slice, not an error.
func (s *Store) ListReservations(ctx context.Context) ([]reserve.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT res_id, device, region, start_date, end_date, requested_by, status
		FROM reservations ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// ListByStatus returns the batch subset with the given status, in load
// order.
func (s *Store) ListByStatus(ctx context.Context, status reserve.Status) ([]reserve.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT res_id, device, region, start_date, end_date, requested_by, status
		FROM reservations WHERE status = ? ORDER BY position`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// Reset drops the loaded batch.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations`); err != nil {
		return fmt.Errorf("failed to clear reservations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM datasets`); err != nil {
		return fmt.Errorf("failed to clear datasets: %w", err)
	}
	return tx.Commit()
}

func scanReservations(rows *sql.Rows) ([]reserve.Reservation, error) {
	out := []reserve.Reservation{}
	for rows.Next() {
		var id, device, region, start, end, requestedBy, status string
		if err := rows.Scan(&id, &device, &region, &start, &end, &requestedBy, &status); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}

		startDate, err := reserve.ParseDate(start)
		if err != nil {
			return nil, fmt.Errorf("corrupt start_date for %s: %w", id, err)
		}
		endDate, err := reserve.ParseDate(end)
		if err != nil {
			return nil, fmt.Errorf("corrupt end_date for %s: %w", id, err)
		}

		out = append(out, reserve.Reservation{
			ID:          reserve.ReservationID(id),
			Device:      device,
			Region:      region,
			Span:        reserve.DateSpan{Start: startDate, End: endDate},
			RequestedBy: requestedBy,
			Status:      reserve.Status(status),
		})
	}
	return out, rows.Err()
}
