package tasks

import (
	"fmt"

	"github.com/desertthunder/lbsync/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadCache Phase = iota
	ScanCandidates
	ResolveNames
	FetchEntries
	Reconcile
	PersistCache
	UpdateList
)

func (p Phase) String() string {
	switch p {
	case LoadCache:
		return "load_cache"
	case ScanCandidates:
		return "scan_candidates"
	case ResolveNames:
		return "resolve_names"
	case FetchEntries:
		return "fetch_entries"
	case Reconcile:
		return "reconcile"
	case PersistCache:
		return "persist_cache"
	case UpdateList:
		return "update_list"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func loadCacheUpdate(path string, entries int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadCache,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d cached names from %s", entries, path),
	}
}

func scanUpdate(folder string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanCandidates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d candidates in %s", count, folder),
	}
}

func resolveUpdate(step, total int, name string, film *models.Film) ProgressUpdate {
	if film == nil {
		return ProgressUpdate{
			Phase:   ResolveNames,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s", step, total, name),
		}
	}
	return ProgressUpdate{
		Phase:   ResolveNames,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s → %s", step, total, name, film.Label()),
		Data:    film,
	}
}

func fetchPageUpdate(page, films int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchEntries,
		Step:    page,
		Message: fmt.Sprintf("Fetched list page %d (%d films so far)", page, films),
	}
}

func reconcileUpdate(delta models.Delta) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconcile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d to add, %d to remove", len(delta.ToAdd), len(delta.ToRemove)),
		Data:    delta,
	}
}

func persistCacheUpdate(path string, entries int, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{
			Phase:   PersistCache,
			Step:    1,
			Total:   1,
			Message: fmt.Sprintf("Failed to save cache %s: %v", path, err),
		}
	}
	return ProgressUpdate{
		Phase:   PersistCache,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saved %d cached names to %s", entries, path),
	}
}

func updateListUpdate(listID string, delta models.Delta, done bool) ProgressUpdate {
	step, msg := 0, fmt.Sprintf("Updating list %s...", listID)
	if done {
		step, msg = 1, fmt.Sprintf("List %s updated (+%d / -%d)", listID, len(delta.ToAdd), len(delta.ToRemove))
	}
	return ProgressUpdate{
		Phase:   UpdateList,
		Step:    step,
		Total:   1,
		Message: msg,
	}
}
