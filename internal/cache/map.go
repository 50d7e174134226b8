package cache

import (
	"maps"
	"sync"
)

// Map is a mutex-guarded name → film ID mapping shared by concurrent lookups.
type Map struct {
	mu      sync.RWMutex
	entries map[string]string
	added   int
}

// NewMap creates a Map seeded with a copy of entries.
func NewMap(entries map[string]string) *Map {
	m := &Map{entries: make(map[string]string, len(entries))}
	for name, id := range entries {
		if name != "" && id != "" {
			m.entries[name] = id
		}
	}
	return m
}

// Get returns the cached ID for name. Matching is byte-exact.
func (m *Map) Get(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.entries[name]
	return id, ok
}

// Set records id for name. An empty id is ignored so the cache never holds placeholders.
func (m *Map) Set(name, id string) {
	if name == "" || id == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.entries[name]; !ok || prev != id {
		if !ok {
			m.added++
		}
		m.entries[name] = id
	}
}

// Forget removes name. Only used by offline cache maintenance, never during a run.
func (m *Map) Forget(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[name]; !ok {
		return false
	}
	delete(m.entries, name)
	return true
}

// Len returns the number of entries.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Added returns how many new names were inserted since the Map was created.
func (m *Map) Added() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.added
}

// Snapshot returns a copy of the current entries.
func (m *Map) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.entries)
}
