package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/lbsync/internal/models"
	"github.com/desertthunder/lbsync/internal/shared"
)

const syncRunColumns = `id, sequence, list_id, folder, status, dry_run, candidates, resolved, dropped, added, removed,
		cache_hits, lookups, error_message, started_at, completed_at, created_at, updated_at, deleted_at`

// ErrSyncRunNotFound is returned when no live row matches.
var ErrSyncRunNotFound = errors.New("sync run not found")

// SyncRunRepository implements models.Repository[*models.SyncRun] for run history.
type SyncRunRepository struct {
	db *sql.DB
}

// NewSyncRunRepository creates a new SyncRunRepository with the given database connection
func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Create inserts a new run with generated ID and sequence
func (r *SyncRunRepository) Create(run *models.SyncRun) error {
	return r.create(context.Background(), run)
}

// RecordRun stores a finished run. Satisfies tasks.RunRecorder.
func (r *SyncRunRepository) RecordRun(ctx context.Context, run *models.SyncRun) error {
	return r.create(ctx, run)
}

func (r *SyncRunRepository) create(ctx context.Context, run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.SetID(shared.GenerateID())
	run.SetSequence(sequence)

	query := `
		INSERT INTO sync_runs (id, sequence, list_id, folder, status, dry_run, candidates, resolved, dropped, added, removed,
			cache_hits, lookups, error_message, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		run.ID(),
		run.Sequence(),
		run.ListID(),
		run.Folder(),
		string(run.Status()),
		run.DryRun(),
		run.Candidates(),
		run.Resolved(),
		run.Dropped(),
		run.Added(),
		run.Removed(),
		run.CacheHits(),
		run.Lookups(),
		nullString(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *SyncRunRepository) Get(id string) (*models.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE id = ? AND deleted_at IS NULL`

	run, err := scanSyncRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSyncRunNotFound, id)
	}
	return run, err
}

// Update rewrites a run's status, counters and completion time
func (r *SyncRunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE sync_runs
		SET status = ?, dry_run = ?, candidates = ?, resolved = ?, dropped = ?, added = ?, removed = ?,
			cache_hits = ?, lookups = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(run.Status()),
		run.DryRun(),
		run.Candidates(),
		run.Resolved(),
		run.Dropped(),
		run.Added(),
		run.Removed(),
		run.CacheHits(),
		run.Lookups(),
		nullString(run.ErrorMessage()),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}

	return expectOneRow(result, run.ID())
}

// Delete soft-deletes a run by ID
func (r *SyncRunRepository) Delete(id string) error {
	query := `
		UPDATE sync_runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete sync run: %w", err)
	}

	return expectOneRow(result, id)
}

// List retrieves runs matching the given criteria, newest first.
//
// Supported criteria: "list_id" (string), "status" (models.SyncStatus or string), "limit" (int).
func (r *SyncRunRepository) List(criteria map[string]any) ([]*models.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE deleted_at IS NULL`
	args := []any{}

	if listID, ok := criteria["list_id"].(string); ok && listID != "" {
		query += " AND list_id = ?"
		args = append(args, listID)
	}

	switch status := criteria["status"].(type) {
	case models.SyncStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Recent returns up to limit runs, newest first
func (r *SyncRunRepository) Recent(limit int) ([]*models.SyncRun, error) {
	return r.List(map[string]any{"limit": limit})
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSyncRun scans a single row into a [models.SyncRun]
func scanSyncRun(row rowScanner) (*models.SyncRun, error) {
	var (
		id           string
		sequence     int
		listID       string
		folder       string
		status       string
		dryRun       bool
		candidates   int
		resolved     int
		dropped      int
		added        int
		removed      int
		cacheHits    int
		lookups      int
		errorMessage sql.NullString
		startedAt    time.Time
		completedAt  sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(&id, &sequence, &listID, &folder, &status, &dryRun, &candidates, &resolved, &dropped, &added, &removed,
		&cacheHits, &lookups, &errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	run := models.NewSyncRun(sequence, listID, folder, startedAt)
	run.SetID(id)
	run.SetState(models.SyncStatus(status), dryRun, errorMessage.String)
	run.SetCounters(candidates, resolved, dropped, added, removed, cacheHits, lookups)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func expectOneRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already deleted: %s", ErrSyncRunNotFound, id)
	}
	return nil
}
