package tasks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lbsync/internal/cache"
	"github.com/desertthunder/lbsync/internal/models"
	"github.com/desertthunder/lbsync/internal/services"
	"github.com/desertthunder/lbsync/internal/shared"
	"golang.org/x/sync/errgroup"
)

// CandidateSource produces the raw candidate names for a run.
type CandidateSource interface {
	Candidates(ctx context.Context) ([]string, error)
}

// CacheStore persists the name → film ID mapping between runs.
type CacheStore interface {
	Load() (map[string]string, error)
	Save(entries map[string]string) error
	Path() string
}

// RunRecorder stores a summary of each run. Optional.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *models.SyncRun) error
}

// SyncOpts selects the list and mode for one run.
type SyncOpts struct {
	ListID string
	Folder string // Reported only; candidates come from the engine's source
	DryRun bool
}

// SyncResult contains all data from a reconciliation run.
type SyncResult struct {
	ListID      string
	Folder      string
	DryRun      bool
	Candidates  []string       // Raw names from the source, duplicates included
	Resolve     *ResolveResult // Resolver outcome
	Local       IDSet          // Resolved film IDs
	Remote      IDSet          // List membership at fetch time
	Delta       models.Delta   // Changes needed to make Remote equal Local
	NothingToDo bool           // Delta was empty; no update was sent
	Applied     bool           // The update call succeeded
	CacheSaved  bool           // The cache was written back
}

// Report converts the result into its user-facing summary.
func (r *SyncResult) Report() *models.SyncReport {
	report := &models.SyncReport{
		ListID:      r.ListID,
		Folder:      r.Folder,
		DryRun:      r.DryRun,
		NothingToDo: r.NothingToDo,
		Applied:     r.Applied,
		CacheSaved:  r.CacheSaved,
		Candidates:  len(r.Candidates),
		RemoteCount: len(r.Remote),
		ToAdd:       r.Local.Films(r.Delta.ToAdd),
		ToRemove:    r.Remote.Films(r.Delta.ToRemove),
		Dropped:     []models.DroppedCandidate{},
	}
	if r.Resolve != nil {
		report.Resolved = len(r.Resolve.Resolved)
		report.CacheHits = r.Resolve.CacheHits
		report.Lookups = r.Resolve.Lookups
		report.Dropped = r.Resolve.Dropped
	}
	return report
}

// EngineOpts wires the dependencies of a [SyncEngine].
type EngineOpts struct {
	Lookup      services.Lookup
	Lists       services.ListService
	Store       CacheStore
	Source      CandidateSource
	Recorder    RunRecorder // May be nil
	Concurrency int
	PageSize    int
	MaxPages    int
	Logger      *log.Logger
}

// SyncEngine drives one reconciliation: load cache, scan, resolve and fetch concurrently,
// persist cache, diff, then apply the delta in a single update.
type SyncEngine struct {
	lists    services.ListService
	store    CacheStore
	source   CandidateSource
	recorder RunRecorder
	resolver *Resolver
	fetcher  *Fetcher
	logger   *log.Logger
	now      func() time.Time
}

// NewSyncEngine creates a new SyncEngine with the provided dependencies.
func NewSyncEngine(opts EngineOpts) *SyncEngine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &SyncEngine{
		lists:    opts.Lists,
		store:    opts.Store,
		source:   opts.Source,
		recorder: opts.Recorder,
		resolver: NewResolver(opts.Lookup, opts.Concurrency, logger),
		fetcher:  NewFetcher(opts.Lists, opts.PageSize, opts.MaxPages),
		logger:   logger,
		now:      time.Now,
	}
}

// Run performs one reconciliation of the source against opts.ListID.
//
// A partial result is returned alongside any error so callers can report what was done.
func (e *SyncEngine) Run(ctx context.Context, opts SyncOpts, progress chan<- ProgressUpdate) (*SyncResult, error) {
	if opts.ListID == "" {
		return nil, fmt.Errorf("%w: list ID", shared.ErrMissingArgument)
	}
	if e.lists == nil || e.store == nil || e.source == nil || e.resolver.lookup == nil {
		return nil, fmt.Errorf("%w: sync engine not fully configured", shared.ErrServiceUnavailable)
	}

	started := e.now()
	result := &SyncResult{ListID: opts.ListID, Folder: opts.Folder, DryRun: opts.DryRun}
	logger := shared.WithLogger(e.logger, "list", opts.ListID)

	err := e.run(ctx, opts, result, logger, progress)
	e.record(ctx, opts, started, result, err, logger)
	if err != nil {
		return result, err
	}
	return result, nil
}

func (e *SyncEngine) run(ctx context.Context, opts SyncOpts, result *SyncResult, logger *log.Logger, progress chan<- ProgressUpdate) error {
	seed, err := e.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load cache: %w", err)
	}
	names := cache.NewMap(seed)
	sendProgress(progress, loadCacheUpdate(e.store.Path(), names.Len()))

	candidates, err := e.source.Candidates(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect candidates: %w", err)
	}
	result.Candidates = candidates
	sendProgress(progress, scanUpdate(opts.Folder, len(candidates)))
	logger.Debug("collected candidates", "count", len(candidates))

	var resolved *ResolveResult
	var remote IDSet

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resolved, err = e.resolver.Resolve(gctx, candidates, names, progress)
		return err
	})
	g.Go(func() error {
		var err error
		remote, err = e.fetcher.fetch(gctx, opts.ListID, progress)
		return err
	})
	groupErr := g.Wait()

	if !opts.DryRun {
		e.persist(names, result, logger, progress)
	}
	if groupErr != nil {
		return groupErr
	}

	result.Resolve = resolved
	result.Local = resolved.Films()
	result.Remote = remote
	result.Delta = Diff(result.Local, result.Remote)
	sendProgress(progress, reconcileUpdate(result.Delta))
	logger.Debug("computed delta", "add", len(result.Delta.ToAdd), "remove", len(result.Delta.ToRemove))

	if result.Delta.Empty() {
		result.NothingToDo = true
		logger.Info("list already up to date")
		return nil
	}
	if opts.DryRun {
		logger.Info("dry run, skipping update", "add", len(result.Delta.ToAdd), "remove", len(result.Delta.ToRemove))
		return nil
	}

	sendProgress(progress, updateListUpdate(opts.ListID, result.Delta, false))
	if err := e.lists.UpdateList(ctx, opts.ListID, result.Delta.ToAdd, result.Delta.ToRemove); err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}
	result.Applied = true
	sendProgress(progress, updateListUpdate(opts.ListID, result.Delta, true))
	logger.Info("list updated", "added", len(result.Delta.ToAdd), "removed", len(result.Delta.ToRemove))
	return nil
}

// persist writes the cache back. A failure is reported but never fails the run.
func (e *SyncEngine) persist(names *cache.Map, result *SyncResult, logger *log.Logger, progress chan<- ProgressUpdate) {
	err := e.store.Save(names.Snapshot())
	sendProgress(progress, persistCacheUpdate(e.store.Path(), names.Len(), err))
	if err != nil {
		logger.Warn("failed to save cache", "path", e.store.Path(), "error", err)
		return
	}
	result.CacheSaved = true
	logger.Debug("saved cache", "path", e.store.Path(), "entries", names.Len(), "added", names.Added())
}

func (e *SyncEngine) record(ctx context.Context, opts SyncOpts, started time.Time, result *SyncResult, runErr error, logger *log.Logger) {
	if e.recorder == nil {
		return
	}

	run := models.NewSyncRun(0, opts.ListID, opts.Folder, started)
	run.ApplyReport(result.Report())
	if runErr != nil {
		run.Fail(runErr)
	}
	run.Complete(e.now())

	if err := e.recorder.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("failed to record run", "error", err)
	}
}
