package shared

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestKindOf(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{
			name: "service error reports its own kind",
			err:  NewServiceError(KindFatal, "search", 401, ErrNotAuthenticated),
			want: KindFatal,
		},
		{
			name: "wrapped service error",
			err:  fmt.Errorf("lookup: %w", NewServiceError(KindNoMatch, "search", 0, ErrNoMatch)),
			want: KindNoMatch,
		},
		{
			name: "bare no match",
			err:  fmt.Errorf("%w: 'Nope'", ErrNoMatch),
			want: KindNoMatch,
		},
		{
			name: "authentication sentinel",
			err:  fmt.Errorf("%w: token expired", ErrNotAuthenticated),
			want: KindFatal,
		},
		{
			name: "canceled context",
			err:  context.Canceled,
			want: KindFatal,
		},
		{
			name: "anything else is transient",
			err:  errors.New("connection reset by peer"),
			want: KindTransient,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServiceError(t *testing.T) {
	t.Run("Unwrap", func(t *testing.T) {
		err := NewServiceError(KindFatal, "list_entries", 404, ErrListNotFound)
		if !errors.Is(err, ErrListNotFound) {
			t.Error("expected service error to unwrap to ErrListNotFound")
		}
		if !IsFatal(err) {
			t.Error("expected fatal kind")
		}
	})

	t.Run("Error Message", func(t *testing.T) {
		err := NewServiceError(KindTransient, "search", 503, ErrAPIRequest)
		msg := err.Error()
		for _, want := range []string{"search", "transient", "503"} {
			if !strings.Contains(msg, want) {
				t.Errorf("expected %q in %q", want, msg)
			}
		}

		noStatus := NewServiceError(KindTransient, "search", 0, ErrAPIRequest)
		if strings.Contains(noStatus.Error(), "status") {
			t.Errorf("expected no status in %q", noStatus.Error())
		}
	})

	t.Run("IsFatal nil", func(t *testing.T) {
		if IsFatal(nil) {
			t.Error("nil error must not be fatal")
		}
	})
}

func TestLogger(t *testing.T) {
	t.Run("WithLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "list", "abc1")
		logger.Info("hello")

		if !strings.Contains(buf.String(), "list=abc1") {
			t.Errorf("expected key-value context in output, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("suppressed")

		if buf.Len() != 0 {
			t.Errorf("expected info to be suppressed, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "lbsync.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("written")
	})

	t.Run("GenerateID", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == "" || a == b {
			t.Errorf("expected unique non-empty ids, got %q and %q", a, b)
		}
	})
}
