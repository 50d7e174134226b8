package tasks

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lbsync/internal/cache"
	"github.com/desertthunder/lbsync/internal/models"
	"github.com/desertthunder/lbsync/internal/services"
	"github.com/desertthunder/lbsync/internal/shared"
	"golang.org/x/sync/errgroup"
)

// ResolveResult holds the outcome of resolving a batch of candidate names.
type ResolveResult struct {
	Resolved  map[string]models.Film    // Candidate name → film; only names that resolved
	Dropped   []models.DroppedCandidate // Sorted by name
	CacheHits int                       // Names answered from the cache
	Lookups   int                       // Names answered by a successful remote search
}

// Films returns the resolved films as a set.
func (r *ResolveResult) Films() IDSet {
	set := make(IDSet, len(r.Resolved))
	for _, film := range r.Resolved {
		set.Add(film)
	}
	return set
}

// Resolver maps candidate names to film IDs through the cache and a bounded pool of lookups.
type Resolver struct {
	lookup      services.Lookup
	concurrency int
	logger      *log.Logger
}

// NewResolver creates a Resolver. A non-positive concurrency uses [shared.DefaultConcurrency].
func NewResolver(lookup services.Lookup, concurrency int, logger *log.Logger) *Resolver {
	if concurrency <= 0 {
		concurrency = shared.DefaultConcurrency
	}
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Resolver{lookup: lookup, concurrency: concurrency, logger: logger}
}

// Concurrency returns the maximum number of lookups in flight.
func (r *Resolver) Concurrency() int {
	return r.concurrency
}

// Resolve looks up each distinct name once.
//
// Cache hits never reach the network. Misses are searched with at most [Resolver.Concurrency]
// requests in flight; successful results are written back to c. No-match and transient failures
// drop the name with a warning. A fatal failure cancels outstanding lookups and is returned.
func (r *Resolver) Resolve(ctx context.Context, names []string, c *cache.Map, progress chan<- ProgressUpdate) (*ResolveResult, error) {
	unique := dedupe(names)
	result := &ResolveResult{Resolved: make(map[string]models.Film, len(unique))}
	total := len(unique)

	misses := make([]string, 0, len(unique))
	for _, name := range unique {
		if id, ok := c.Get(name); ok {
			result.Resolved[name] = models.Film{ID: id, Name: name}
			result.CacheHits++
			continue
		}
		misses = append(misses, name)
	}

	var mu sync.Mutex
	step := result.CacheHits

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, name := range misses {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			film, err := r.lookup.SearchFilm(gctx, name)
			if err == nil && (film == nil || film.ID == "") {
				err = shared.NewServiceError(shared.KindNoMatch, "search", 0, fmt.Errorf("%w for '%s'", shared.ErrNoMatch, name))
			}

			mu.Lock()
			defer mu.Unlock()
			step++

			if err == nil {
				c.Set(name, film.ID)
				result.Resolved[name] = *film
				result.Lookups++
				sendProgress(progress, resolveUpdate(step, total, name, film))
				return nil
			}

			kind := shared.KindOf(err)
			if kind == shared.KindFatal {
				return fmt.Errorf("failed to resolve '%s': %w", name, err)
			}

			r.logger.Warn("dropped candidate", "name", name, "kind", kind, "error", err)
			result.Dropped = append(result.Dropped, models.DroppedCandidate{Name: name, Reason: kind.String()})
			sendProgress(progress, resolveUpdate(step, total, name, nil))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(result.Dropped, func(a, b models.DroppedCandidate) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return result, nil
}

// dedupe removes repeated names, keeping first-seen order.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
