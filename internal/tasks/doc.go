// Package tasks reconciles a Letterboxd list with a local collection, with real-time progress reporting.
//
// # Core Operations
//
// [SyncEngine.Run] performs one reconciliation:
//
//  1. Load the name → film ID cache ([CacheStore])
//  2. Collect candidate names ([CandidateSource], normally the directory scanner)
//  3. Resolve names and fetch list membership concurrently
//     - [Resolver] : cache first, then at most N concurrent searches
//     - [Fetcher] : sequential cursor pagination with page-limit and stalled-cursor guards
//  4. Persist the cache (skipped on dry runs)
//  5. [Diff] the two sets
//  6. Apply the delta with exactly one list update, unless it is empty or the run is a dry run
//
// # Error Handling
//
// Lookups that find nothing or fail transiently drop their candidate with a warning.
// Fatal failures (authentication, cancellation) abort the batch and cancel the fetcher.
// Any fetch failure is fatal: an incomplete membership would remove films that are still listed.
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Run History
//
// The optional [RunRecorder] interface stores a [models.SyncRun] per run (repositories.SyncRunRepository).
// Recording errors are logged and never fail the run.
package tasks
