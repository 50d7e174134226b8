// package services defines the interfaces for the remote catalog and list service
//
// Letterboxd (signed REST API)
package services

import (
	"context"
	"time"

	"github.com/desertthunder/lbsync/internal/models"
)

const defaultTimeout = 30 * time.Second

// Lookup resolves a free-text query to the best matching film.
//
// Implementations return an error of kind [shared.KindNoMatch] when nothing matches,
// [shared.KindFatal] when the session is no longer usable, and [shared.KindTransient] otherwise.
type Lookup interface {
	SearchFilm(ctx context.Context, query string) (*models.Film, error)
}

// ListService reads and updates list membership.
type ListService interface {
	// ListEntries fetches one page of list entries. An empty cursor requests the first page.
	ListEntries(ctx context.Context, listID, cursor string, perPage int) (*models.EntriesPage, error)

	// UpdateList adds and removes films in a single request.
	UpdateList(ctx context.Context, listID string, toAdd, toRemove []string) error
}

// Service is the full remote surface used by the CLI.
type Service interface {
	Lookup
	ListService

	// Authenticate exchanges member credentials for an access token.
	Authenticate(ctx context.Context, username, password string) error

	// GetList retrieves list metadata by ID.
	GetList(ctx context.Context, listID string) (*models.List, error)

	// Name returns the name of the service
	Name() string
}
