package models

import (
	"errors"
	"time"
)

// SyncStatus is the terminal state of a sync run.
type SyncStatus string

const (
	SyncStatusApplied SyncStatus = "applied"
	SyncStatusNoop    SyncStatus = "noop"
	SyncStatusDryRun  SyncStatus = "dry_run"
	SyncStatusFailed  SyncStatus = "failed"
)

// Valid reports whether s is a known status.
func (s SyncStatus) Valid() bool {
	switch s {
	case SyncStatusApplied, SyncStatusNoop, SyncStatusDryRun, SyncStatusFailed:
		return true
	}
	return false
}

// SyncRun records one reconciliation run for the history command.
type SyncRun struct {
	id           string
	sequence     int
	listID       string
	folder       string
	status       SyncStatus
	dryRun       bool
	candidates   int
	resolved     int
	dropped      int
	added        int
	removed      int
	cacheHits    int
	lookups      int
	errorMessage string
	startedAt    time.Time
	completedAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewSyncRun creates a SyncRun for listID and folder started at startedAt.
func NewSyncRun(sequence int, listID, folder string, startedAt time.Time) *SyncRun {
	now := time.Now()
	return &SyncRun{
		sequence:  sequence,
		listID:    listID,
		folder:    folder,
		status:    SyncStatusFailed,
		startedAt: startedAt,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *SyncRun) ID() string              { return r.id }
func (r *SyncRun) Sequence() int           { return r.sequence }
func (r *SyncRun) ListID() string          { return r.listID }
func (r *SyncRun) Folder() string          { return r.folder }
func (r *SyncRun) Status() SyncStatus      { return r.status }
func (r *SyncRun) DryRun() bool            { return r.dryRun }
func (r *SyncRun) Candidates() int         { return r.candidates }
func (r *SyncRun) Resolved() int           { return r.resolved }
func (r *SyncRun) Dropped() int            { return r.dropped }
func (r *SyncRun) Added() int              { return r.added }
func (r *SyncRun) Removed() int            { return r.removed }
func (r *SyncRun) CacheHits() int          { return r.cacheHits }
func (r *SyncRun) Lookups() int            { return r.lookups }
func (r *SyncRun) ErrorMessage() string    { return r.errorMessage }
func (r *SyncRun) StartedAt() time.Time    { return r.startedAt }
func (r *SyncRun) CompletedAt() *time.Time { return r.completedAt }
func (r *SyncRun) CreatedAt() time.Time    { return r.createdAt }
func (r *SyncRun) UpdatedAt() time.Time    { return r.updatedAt }
func (r *SyncRun) DeletedAt() *time.Time   { return r.deletedAt }

func (r *SyncRun) SetID(id string)             { r.id = id }
func (r *SyncRun) SetSequence(seq int)         { r.sequence = seq }
func (r *SyncRun) SetUpdatedAt(t time.Time)    { r.updatedAt = t }
func (r *SyncRun) SetDeletedAt(t *time.Time)   { r.deletedAt = t }
func (r *SyncRun) SetCreatedAt(t time.Time)    { r.createdAt = t }
func (r *SyncRun) SetCompletedAt(t *time.Time) { r.completedAt = t }

// ApplyReport copies the counters from a finished run's report.
func (r *SyncRun) ApplyReport(report *SyncReport) {
	r.dryRun = report.DryRun
	r.candidates = report.Candidates
	r.resolved = report.Resolved
	r.dropped = len(report.Dropped)
	r.added = len(report.ToAdd)
	r.removed = len(report.ToRemove)
	r.cacheHits = report.CacheHits
	r.lookups = report.Lookups

	switch {
	case report.DryRun:
		r.status = SyncStatusDryRun
	case report.NothingToDo:
		r.status = SyncStatusNoop
	case report.Applied:
		r.status = SyncStatusApplied
	}
}

// Fail marks the run as failed with err.
func (r *SyncRun) Fail(err error) {
	r.status = SyncStatusFailed
	if err != nil {
		r.errorMessage = err.Error()
	}
}

// Complete stamps the completion time.
func (r *SyncRun) Complete(t time.Time) {
	r.completedAt = &t
	r.updatedAt = t
}

// SetCounters restores persisted counters. Used by repositories when scanning rows.
func (r *SyncRun) SetCounters(candidates, resolved, dropped, added, removed, cacheHits, lookups int) {
	r.candidates = candidates
	r.resolved = resolved
	r.dropped = dropped
	r.added = added
	r.removed = removed
	r.cacheHits = cacheHits
	r.lookups = lookups
}

// SetState restores persisted status fields. Used by repositories when scanning rows.
func (r *SyncRun) SetState(status SyncStatus, dryRun bool, errorMessage string) {
	r.status = status
	r.dryRun = dryRun
	r.errorMessage = errorMessage
}

// Validate checks required fields.
func (r *SyncRun) Validate() error {
	if r.listID == "" {
		return errors.New("list ID is required")
	}
	if !r.status.Valid() {
		return errors.New("invalid sync status")
	}
	if r.startedAt.IsZero() {
		return errors.New("start time is required")
	}
	return nil
}
