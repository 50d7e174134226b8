package tasks

import (
	"context"
	"io"
	"maps"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lbsync/internal/models"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

type staticSource struct {
	names []string
	err   error
}

func (s staticSource) Candidates(ctx context.Context) ([]string, error) {
	return s.names, s.err
}

type memStore struct {
	mu      sync.Mutex
	entries map[string]string
	loadErr error
	saveErr error
	saves   int
}

func newMemStore(seed map[string]string) *memStore {
	if seed == nil {
		seed = map[string]string{}
	}
	return &memStore{entries: seed}
}

func (m *memStore) Load() (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return maps.Clone(m.entries), nil
}

func (m *memStore) Save(entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries = maps.Clone(entries)
	return nil
}

func (m *memStore) Path() string { return "memory" }

func (m *memStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *memStore) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.entries)
}

type memRecorder struct {
	runs []*models.SyncRun
	err  error
}

func (r *memRecorder) RecordRun(ctx context.Context, run *models.SyncRun) error {
	r.runs = append(r.runs, run)
	return r.err
}

type lookupFunc func(ctx context.Context, query string) (*models.Film, error)

func (f lookupFunc) SearchFilm(ctx context.Context, query string) (*models.Film, error) {
	return f(ctx, query)
}

func film(id, name string, year int) models.Film {
	return models.Film{ID: id, Name: name, ReleaseYear: year}
}
