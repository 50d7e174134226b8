package models

import "fmt"

// Film represents a film from the Letterboxd catalog.
type Film struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseYear int    `json:"release_year,omitempty"`
}

// Label returns a human-readable "Name (Year)" string, falling back to the ID.
func (f Film) Label() string {
	switch {
	case f.Name == "":
		return f.ID
	case f.ReleaseYear > 0:
		return fmt.Sprintf("%s (%d)", f.Name, f.ReleaseYear)
	default:
		return f.Name
	}
}

// List represents a Letterboxd list's metadata.
type List struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FilmCount   int    `json:"film_count"`
	Published   bool   `json:"published"`
	Ranked      bool   `json:"ranked"`
	OwnerName   string `json:"owner_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// EntriesPage is one page of list membership.
// An empty Next cursor means the page is the last one.
type EntriesPage struct {
	Films []Film
	Next  string
}

// Delta is the add/remove pair that makes the remote list match the local collection.
type Delta struct {
	ToAdd    []string `json:"to_add"`
	ToRemove []string `json:"to_remove"`
}

// Empty reports whether the remote list already matches.
func (d Delta) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// DroppedCandidate is a candidate name that could not be resolved to a film.
type DroppedCandidate struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// SyncReport is the user-facing summary of a reconciliation run.
type SyncReport struct {
	ListID      string             `json:"list_id"`
	Folder      string             `json:"folder"`
	DryRun      bool               `json:"dry_run"`
	NothingToDo bool               `json:"nothing_to_do"`
	Applied     bool               `json:"applied"`
	CacheSaved  bool               `json:"cache_saved"`
	Candidates  int                `json:"candidates"`
	Resolved    int                `json:"resolved"`
	CacheHits   int                `json:"cache_hits"`
	Lookups     int                `json:"lookups"`
	RemoteCount int                `json:"remote_count"`
	ToAdd       []Film             `json:"to_add"`
	ToRemove    []Film             `json:"to_remove"`
	Dropped     []DroppedCandidate `json:"dropped"`
}
