// Package repositories implements SQLite persistence for run history.
//
// [SyncRunRepository] implements models.Repository[*models.SyncRun] and also satisfies
// tasks.RunRecorder, so the sync engine can record each run without depending on SQL.
// Runs are soft-deleted via deleted_at timestamps and excluded from queries by default.
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
