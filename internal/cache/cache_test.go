package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/lbsync/internal/shared"
	tu "github.com/desertthunder/lbsync/internal/testing"
)

func TestStore(t *testing.T) {
	t.Run("Load Missing File", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), ".movies.json"))

		entries, err := store.Load()
		if err != nil {
			t.Fatalf("expected no error for missing cache, got %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty mapping, got %v", entries)
		}
	})

	t.Run("Load Empty File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".movies.json")
		if err := os.WriteFile(path, []byte("\n"), 0644); err != nil {
			t.Fatalf("failed to write cache: %v", err)
		}

		entries, err := NewStore(path).Load()
		if err != nil {
			t.Fatalf("expected no error for empty cache, got %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty mapping, got %v", entries)
		}
	})

	t.Run("Load Malformed File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".movies.json")
		if err := os.WriteFile(path, []byte(`{"Alien": `), 0644); err != nil {
			t.Fatalf("failed to write cache: %v", err)
		}

		_, err := NewStore(path).Load()
		if !errors.Is(err, shared.ErrMalformedCache) {
			t.Errorf("expected ErrMalformedCache, got %v", err)
		}
	})

	t.Run("Load Wrong Shape", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".movies.json")
		if err := os.WriteFile(path, []byte(`["Alien", "2b0k"]`), 0644); err != nil {
			t.Fatalf("failed to write cache: %v", err)
		}

		_, err := NewStore(path).Load()
		if !errors.Is(err, shared.ErrMalformedCache) {
			t.Errorf("expected ErrMalformedCache, got %v", err)
		}
	})

	t.Run("Load Skips Empty IDs", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".movies.json")
		if err := os.WriteFile(path, []byte(`{"Alien": "2b0k", "Unknown": ""}`), 0644); err != nil {
			t.Fatalf("failed to write cache: %v", err)
		}

		entries, err := NewStore(path).Load()
		if err != nil {
			t.Fatalf("failed to load cache: %v", err)
		}
		if len(entries) != 1 || entries["Alien"] != "2b0k" {
			t.Errorf("expected only the non-empty entry, got %v", entries)
		}
	})

	t.Run("Save And Load Round Trip", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".movies.json")
		store := NewStore(path)

		want := map[string]string{"Alien": "2b0k", "Heat": "29Pi", "Alien (Director's Cut)": "2b0k"}
		if err := store.Save(want); err != nil {
			t.Fatalf("failed to save cache: %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("failed to load cache: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), len(got))
		}
		for k, v := range want {
			if got[k] != v {
				t.Errorf("entry %q: expected %q, got %q", k, v, got[k])
			}
		}

		files, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(files) != 1 {
			t.Errorf("expected temp files to be cleaned up, found %d entries", len(files))
		}
	})

	t.Run("Save Overwrites Previous", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".movies.json")
		store := NewStore(path)

		if err := store.Save(map[string]string{"Alien": "2b0k"}); err != nil {
			t.Fatalf("failed to save cache: %v", err)
		}
		if err := store.Save(map[string]string{"Heat": "29Pi"}); err != nil {
			t.Fatalf("failed to save cache: %v", err)
		}

		content := tu.MustReadFile(t, path)
		if strings.Contains(content, "Alien") || !strings.Contains(content, "Heat") {
			t.Errorf("expected overwritten content, got %s", content)
		}
	})

	t.Run("Save Into Missing Directory", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "missing", ".movies.json"))
		if err := store.Save(map[string]string{"Alien": "2b0k"}); err == nil {
			t.Error("expected error when directory does not exist")
		}
	})

	t.Run("Default Path", func(t *testing.T) {
		if NewStore("").Path() != ".movies.json" {
			t.Errorf("expected default path, got %s", NewStore("").Path())
		}
	})
}

func TestMap(t *testing.T) {
	t.Run("Get And Set", func(t *testing.T) {
		m := NewMap(map[string]string{"Alien": "2b0k", "Broken": ""})

		if _, ok := m.Get("Broken"); ok {
			t.Error("empty seed IDs must be dropped")
		}
		if id, ok := m.Get("Alien"); !ok || id != "2b0k" {
			t.Errorf("expected hit for Alien, got %q %v", id, ok)
		}
		if _, ok := m.Get("alien"); ok {
			t.Error("lookups must be byte-exact")
		}

		m.Set("Heat", "29Pi")
		m.Set("Nothing", "")

		if m.Len() != 2 {
			t.Errorf("expected 2 entries, got %d", m.Len())
		}
		if m.Added() != 1 {
			t.Errorf("expected 1 added entry, got %d", m.Added())
		}
	})

	t.Run("Snapshot Is A Copy", func(t *testing.T) {
		m := NewMap(nil)
		m.Set("Alien", "2b0k")

		snap := m.Snapshot()
		snap["Heat"] = "29Pi"

		if m.Len() != 1 {
			t.Errorf("mutating snapshot must not affect the map, got %d entries", m.Len())
		}
	})

	t.Run("Forget", func(t *testing.T) {
		m := NewMap(map[string]string{"Alien": "2b0k"})
		if !m.Forget("Alien") {
			t.Error("expected Forget to report removal")
		}
		if m.Forget("Alien") {
			t.Error("expected second Forget to report nothing removed")
		}
	})

	t.Run("Concurrent Writers", func(t *testing.T) {
		m := NewMap(nil)

		var wg sync.WaitGroup
		for i := range 200 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				name := fmt.Sprintf("film-%d", i%100)
				m.Set(name, fmt.Sprintf("id-%d", i%100))
				m.Get(name)
			}(i)
		}
		wg.Wait()

		if m.Len() != 100 {
			t.Errorf("expected 100 entries, got %d", m.Len())
		}
		if m.Added() != 100 {
			t.Errorf("expected 100 added, got %d", m.Added())
		}
	})
}
