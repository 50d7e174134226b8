package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/lbsync/internal/cache"
	"github.com/desertthunder/lbsync/internal/models"
	"github.com/desertthunder/lbsync/internal/shared"
	tu "github.com/desertthunder/lbsync/internal/testing"
)

func TestResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit makes no remote call", func(t *testing.T) {
		fake := tu.NewFakeLetterboxd(nil)
		r := NewResolver(fake, 4, quietLogger())

		result, err := r.Resolve(ctx, []string{"Alien"}, cache.NewMap(map[string]string{"Alien": "2b0k"}), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if fake.SearchCalls() != 0 {
			t.Errorf("expected 0 searches, got %d", fake.SearchCalls())
		}
		if result.CacheHits != 1 || result.Resolved["Alien"].ID != "2b0k" {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("duplicates are looked up once", func(t *testing.T) {
		fake := tu.NewFakeLetterboxd(map[string]models.Film{"Heat": film("29Pi", "Heat", 1995)})
		r := NewResolver(fake, 4, quietLogger())

		result, err := r.Resolve(ctx, []string{"Heat", "Heat", "Heat"}, cache.NewMap(nil), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if fake.SearchCalls() != 1 {
			t.Errorf("expected 1 search, got %d", fake.SearchCalls())
		}
		if len(result.Resolved) != 1 || result.Lookups != 1 {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("writes lookups back to cache", func(t *testing.T) {
		fake := tu.NewFakeLetterboxd(map[string]models.Film{"Heat": film("29Pi", "Heat", 1995)})
		m := cache.NewMap(nil)

		if _, err := NewResolver(fake, 4, quietLogger()).Resolve(ctx, []string{"Heat"}, m, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id, ok := m.Get("Heat"); !ok || id != "29Pi" {
			t.Errorf("expected cache entry for Heat, got %q %v", id, ok)
		}
		if m.Added() != 1 {
			t.Errorf("expected 1 added entry, got %d", m.Added())
		}
	})

	t.Run("no match drops one of N", func(t *testing.T) {
		catalog := map[string]models.Film{}
		names := make([]string, 0, 10)
		for i := range 10 {
			name := fmt.Sprintf("Film %d", i)
			names = append(names, name)
			if i != 3 {
				catalog[name] = film(fmt.Sprintf("id%d", i), name, 2000+i)
			}
		}
		fake := tu.NewFakeLetterboxd(catalog)
		m := cache.NewMap(nil)

		result, err := NewResolver(fake, 4, quietLogger()).Resolve(ctx, names, m, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Resolved) != 9 {
			t.Errorf("expected 9 resolved, got %d", len(result.Resolved))
		}
		if len(result.Dropped) != 1 || result.Dropped[0].Name != "Film 3" || result.Dropped[0].Reason != "no_match" {
			t.Errorf("unexpected dropped: %+v", result.Dropped)
		}
		if _, ok := m.Get("Film 3"); ok {
			t.Error("unresolved name must not be cached")
		}
	})

	t.Run("transient failure drops candidate", func(t *testing.T) {
		fake := tu.NewFakeLetterboxd(map[string]models.Film{"Heat": film("29Pi", "Heat", 1995)})
		fake.SearchErrs = map[string]error{
			"Alien": shared.NewServiceError(shared.KindTransient, "search", 503, shared.ErrServiceUnavailable),
		}

		result, err := NewResolver(fake, 4, quietLogger()).Resolve(ctx, []string{"Heat", "Alien"}, cache.NewMap(nil), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Resolved) != 1 || len(result.Dropped) != 1 || result.Dropped[0].Reason != "transient" {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("nil film is no match", func(t *testing.T) {
		lookup := lookupFunc(func(ctx context.Context, query string) (*models.Film, error) {
			return nil, nil
		})

		result, err := NewResolver(lookup, 2, quietLogger()).Resolve(ctx, []string{"Ghost"}, cache.NewMap(nil), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Dropped) != 1 || result.Dropped[0].Reason != "no_match" {
			t.Errorf("unexpected dropped: %+v", result.Dropped)
		}
	})

	t.Run("fatal failure aborts batch", func(t *testing.T) {
		fake := tu.NewFakeLetterboxd(map[string]models.Film{"Heat": film("29Pi", "Heat", 1995)})
		fake.SearchErrs = map[string]error{
			"Alien": shared.NewServiceError(shared.KindFatal, "search", 401, shared.ErrNotAuthenticated),
		}

		_, err := NewResolver(fake, 1, quietLogger()).Resolve(ctx, []string{"Alien", "Heat"}, cache.NewMap(nil), nil)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		fake := tu.NewFakeLetterboxd(map[string]models.Film{"Heat": film("29Pi", "Heat", 1995)})
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := NewResolver(fake, 4, quietLogger()).Resolve(cctx, []string{"Heat"}, cache.NewMap(nil), nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("concurrency is bounded", func(t *testing.T) {
		catalog := map[string]models.Film{}
		names := make([]string, 100)
		for i := range names {
			names[i] = fmt.Sprintf("Film %03d", i)
			catalog[names[i]] = film(fmt.Sprintf("id%03d", i), names[i], 0)
		}
		fake := tu.NewFakeLetterboxd(catalog)
		fake.Delay = 5 * time.Millisecond

		r := NewResolver(fake, 0, quietLogger())
		if r.Concurrency() != shared.DefaultConcurrency {
			t.Fatalf("expected default concurrency %d, got %d", shared.DefaultConcurrency, r.Concurrency())
		}

		result, err := r.Resolve(ctx, names, cache.NewMap(nil), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Resolved) != 100 {
			t.Errorf("expected 100 resolved, got %d", len(result.Resolved))
		}
		if peak := fake.PeakConcurrency(); peak > 16 || peak < 2 {
			t.Errorf("expected peak concurrency in [2, 16], got %d", peak)
		}
	})

	t.Run("dropped order is stable", func(t *testing.T) {
		fake := tu.NewFakeLetterboxd(nil)
		fake.Delay = time.Millisecond

		result, err := NewResolver(fake, 8, quietLogger()).Resolve(ctx, []string{"Zulu", "Alpha", "Mike"}, cache.NewMap(nil), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := []string{"Alpha", "Mike", "Zulu"}
		for i, d := range result.Dropped {
			if d.Name != want[i] {
				t.Errorf("dropped[%d]: expected %s, got %s", i, want[i], d.Name)
			}
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		fake := tu.NewFakeLetterboxd(map[string]models.Film{"Heat": film("29Pi", "Heat", 1995)})
		progress := make(chan ProgressUpdate, 10)

		if _, err := NewResolver(fake, 2, quietLogger()).Resolve(ctx, []string{"Heat", "Nope"}, cache.NewMap(nil), progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		count := 0
		for update := range progress {
			if update.Phase != ResolveNames || update.Total != 2 {
				t.Errorf("unexpected update: %+v", update)
			}
			count++
		}
		if count != 2 {
			t.Errorf("expected 2 updates, got %d", count)
		}
	})
}
