package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertthunder/lbsync/internal/shared"
)

// Store reads and writes the cache document at a fixed path.
type Store struct {
	path string
	perm os.FileMode
}

// NewStore creates a Store for path.
func NewStore(path string) *Store {
	if path == "" {
		path = shared.DefaultCachePath
	}
	return &Store{path: path, perm: 0644}
}

// Path returns the file path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted mapping.
//
// A missing file is not an error. Entries with an empty name or ID are skipped.
func (s *Store) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]string{}, nil
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrMalformedCache, s.path, err)
	}

	entries := make(map[string]string, len(raw))
	for name, id := range raw {
		if name == "" || id == "" {
			continue
		}
		entries[name] = id
	}
	return entries, nil
}

// Save replaces the persisted mapping with entries.
func (s *Store) Save(entries map[string]string) error {
	if entries == nil {
		entries = map[string]string{}
	}

	// Map keys are marshaled in sorted order, which keeps diffs of the file stable.
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	data = append(data, '\n')

	return writeAtomic(s.path, data, s.perm)
}

func writeAtomic(dest string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-cache-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, perm)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close cache: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace cache: %w", err)
	}

	// best effort: persist the rename itself
	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
