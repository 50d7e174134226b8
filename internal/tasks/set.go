package tasks

import (
	"slices"

	"github.com/desertthunder/lbsync/internal/models"
)

// IDSet is a set of film IDs. Values are display labels used only in reports.
type IDSet map[string]string

// NewIDSet builds a set from films, labelling each by [models.Film.Label].
func NewIDSet(films ...models.Film) IDSet {
	s := make(IDSet, len(films))
	for _, f := range films {
		s.Add(f)
	}
	return s
}

// Add inserts film, keeping the first non-empty label seen for its ID.
func (s IDSet) Add(film models.Film) {
	if film.ID == "" {
		return
	}
	if label, ok := s[film.ID]; ok && label != film.ID {
		return
	}
	s[film.ID] = film.Label()
}

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in ascending order.
func (s IDSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Films expands ids into films carrying the set's labels.
func (s IDSet) Films(ids []string) []models.Film {
	films := make([]models.Film, len(ids))
	for i, id := range ids {
		films[i] = models.Film{ID: id, Name: s[id]}
	}
	return films
}
