package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/desertthunder/lbsync/internal/shared"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("requires folder", func(t *testing.T) {
		if _, err := New("", "", nil, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("rejects invalid pattern", func(t *testing.T) {
		if _, err := New(t.TempDir(), "(unclosed", nil, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("rejects pattern without capture group", func(t *testing.T) {
		if _, err := New(t.TempDir(), `\.mkv$`, nil, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestCandidates(t *testing.T) {
	ctx := context.Background()

	t.Run("pattern extracts group one", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "Alien (1979).mkv", "Heat (1995).mkv", "notes.txt")

		s, err := New(dir, `^(.+) \(\d{4}\)\.mkv$`, nil, nil)
		if err != nil {
			t.Fatalf("failed to create scanner: %v", err)
		}

		got, err := s.Candidates(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if want := []string{"Alien", "Heat"}; !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("heuristic without pattern", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "The.Matrix.1999.1080p.BluRay.mkv", "Heat (1995).mp4")

		s, _ := New(dir, "", nil, nil)
		got, err := s.Candidates(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if want := []string{"Heat 1995", "The Matrix 1999"}; !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("skips dotfiles directories and other extensions", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, ".movies.json", ".hidden.mkv", "Alien.1979.mkv", "poster.jpg")
		if err := os.Mkdir(filepath.Join(dir, "Heat.1995.mkv"), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}

		s, _ := New(dir, "", []string{"MKV", "mp4"}, nil)
		got, err := s.Candidates(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if want := []string{"Alien 1979"}; !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("keeps duplicates", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "Alien.1979.720p.mkv", "Alien.1979.1080p.mkv")

		s, _ := New(dir, "", nil, nil)
		got, _ := s.Candidates(ctx)
		if len(got) != 2 || got[0] != got[1] {
			t.Errorf("expected two identical candidates, got %v", got)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		s, _ := New(filepath.Join(t.TempDir(), "missing"), "", nil, nil)
		_, err := s.Candidates(ctx)
		if !errors.Is(err, shared.ErrUnreadableDir) {
			t.Errorf("expected ErrUnreadableDir, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		s, _ := New(t.TempDir(), "", nil, nil)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := s.Candidates(cctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestTitleAndYear(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"The.Matrix.1999.1080p.mkv", "The Matrix 1999"},
		{"Heat (1995).mp4", "Heat 1995"},
		{"Alien_Directors_Cut.avi", "Alien Directors Cut"},
		{"Blade.Runner.2049.2017.2160p.mkv", "Blade Runner 2049"},
		{"1917.2019.mkv", "1917 2019"},
		{"Sicario.720p.WEBRip.x264.mp4", "Sicario"},
		{"[Group] Paprika [2006].mkv", "Group Paprika 2006"},
	}

	for _, tc := range tests {
		t.Run(tc.file, func(t *testing.T) {
			got, ok := TitleAndYear(tc.file)
			if !ok || got != tc.want {
				t.Errorf("expected %q, got %q (%v)", tc.want, got, ok)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		if _, ok := TitleAndYear(".mkv"); ok {
			t.Error("expected no candidate for bare extension")
		}
	})
}
