package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/lbsync/internal/services"
	"github.com/desertthunder/lbsync/internal/shared"
)

// Fetcher reads the full membership of a list by following its cursor.
type Fetcher struct {
	lists    services.ListService
	pageSize int
	maxPages int
}

// NewFetcher creates a Fetcher. Non-positive sizes use the defaults.
func NewFetcher(lists services.ListService, pageSize, maxPages int) *Fetcher {
	if pageSize <= 0 {
		pageSize = shared.DefaultPageSize
	}
	if maxPages <= 0 {
		maxPages = shared.DefaultMaxPages
	}
	return &Fetcher{lists: lists, pageSize: pageSize, maxPages: maxPages}
}

// FetchAll returns every film ID on listID.
//
// Pages are requested one at a time since each depends on the previous cursor.
// Any error fails the whole fetch; a partial membership would produce wrong removals.
func (f *Fetcher) FetchAll(ctx context.Context, listID string) (IDSet, error) {
	return f.fetch(ctx, listID, nil)
}

func (f *Fetcher) fetch(ctx context.Context, listID string, progress chan<- ProgressUpdate) (IDSet, error) {
	set := IDSet{}
	cursor := ""

	for page := 1; ; page++ {
		if page > f.maxPages {
			return nil, fmt.Errorf("%w: stopped after %d pages", shared.ErrPaginationLimit, f.maxPages)
		}

		resp, err := f.lists.ListEntries(ctx, listID, cursor, f.pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch list entries (page %d): %w", page, err)
		}

		for _, film := range resp.Films {
			set.Add(film)
		}
		sendProgress(progress, fetchPageUpdate(page, len(set)))

		if resp.Next == "" {
			return set, nil
		}
		if resp.Next == cursor {
			return nil, fmt.Errorf("%w: cursor %q repeated on page %d", shared.ErrPaginationStalled, cursor, page)
		}
		cursor = resp.Next
	}
}
