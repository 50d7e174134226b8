// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/lbsync/internal/models"
	"github.com/desertthunder/lbsync/internal/shared"
)

// FakeUpdate records one UpdateList call.
type FakeUpdate struct {
	ListID   string
	ToAdd    []string
	ToRemove []string
}

// FakeLetterboxd is an in-memory test double for [services.Service].
//
// Search results come from Catalog keyed by the exact query. List membership lives in Remote
// and is paged by perPage with numeric cursors unless Pages overrides it. UpdateList applies
// the delta to Remote so repeated runs observe the new state.
type FakeLetterboxd struct {
	Catalog     map[string]models.Film
	SearchErrs  map[string]error
	Remote      []models.Film
	Pages       map[string]models.EntriesPage // keyed by cursor, "" is the first page
	ListName    string
	Delay       time.Duration
	AuthErr     error
	EntriesErr  error
	UpdateErr   error
	RejectEmpty bool // UpdateList fails when both slices are empty

	mu      sync.Mutex
	updates []FakeUpdate
	queries []string

	searchCalls  atomic.Int32
	entriesCalls atomic.Int32
	updateCalls  atomic.Int32
	inFlight     atomic.Int32
	peak         atomic.Int32
}

// NewFakeLetterboxd creates a fake whose catalog maps each query to the given film.
func NewFakeLetterboxd(catalog map[string]models.Film, remote ...models.Film) *FakeLetterboxd {
	if catalog == nil {
		catalog = map[string]models.Film{}
	}
	return &FakeLetterboxd{Catalog: catalog, Remote: remote, ListName: "Fake List"}
}

func (f *FakeLetterboxd) Name() string { return "fake" }

func (f *FakeLetterboxd) Authenticate(ctx context.Context, username, password string) error {
	return f.AuthErr
}

func (f *FakeLetterboxd) SearchFilm(ctx context.Context, query string) (*models.Film, error) {
	f.searchCalls.Add(1)
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if current <= peak || f.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := f.SearchErrs[query]; ok {
		return nil, err
	}
	film, ok := f.Catalog[query]
	if !ok {
		return nil, shared.NewServiceError(shared.KindNoMatch, "search", 0, fmt.Errorf("%w for '%s'", shared.ErrNoMatch, query))
	}
	return &film, nil
}

func (f *FakeLetterboxd) ListEntries(ctx context.Context, listID, cursor string, perPage int) (*models.EntriesPage, error) {
	f.entriesCalls.Add(1)
	if f.EntriesErr != nil {
		return nil, f.EntriesErr
	}

	if f.Pages != nil {
		page, ok := f.Pages[cursor]
		if !ok {
			return nil, shared.NewServiceError(shared.KindFatal, "list_entries", 400, fmt.Errorf("unknown cursor %q", cursor))
		}
		return &page, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, shared.NewServiceError(shared.KindFatal, "list_entries", 400, err)
		}
		start = n
	}
	if perPage <= 0 {
		perPage = len(f.Remote)
	}

	end := min(start+perPage, len(f.Remote))
	page := &models.EntriesPage{Films: slices.Clone(f.Remote[min(start, end):end])}
	if end < len(f.Remote) {
		page.Next = strconv.Itoa(end)
	}
	return page, nil
}

func (f *FakeLetterboxd) GetList(ctx context.Context, listID string) (*models.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.List{ID: listID, Name: f.ListName, FilmCount: len(f.Remote)}, nil
}

func (f *FakeLetterboxd) UpdateList(ctx context.Context, listID string, toAdd, toRemove []string) error {
	f.updateCalls.Add(1)
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	if f.RejectEmpty && len(toAdd) == 0 && len(toRemove) == 0 {
		return shared.NewServiceError(shared.KindFatal, "update_list", 0, shared.ErrUpdateRejected)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.updates = append(f.updates, FakeUpdate{ListID: listID, ToAdd: slices.Clone(toAdd), ToRemove: slices.Clone(toRemove)})

	f.Remote = slices.DeleteFunc(f.Remote, func(film models.Film) bool {
		return slices.Contains(toRemove, film.ID)
	})
	for _, id := range toAdd {
		film := models.Film{ID: id}
		for _, known := range f.Catalog {
			if known.ID == id {
				film = known
				break
			}
		}
		f.Remote = append(f.Remote, film)
	}
	return nil
}

// SearchCalls returns how many searches were issued.
func (f *FakeLetterboxd) SearchCalls() int { return int(f.searchCalls.Load()) }

// EntriesCalls returns how many entry pages were requested.
func (f *FakeLetterboxd) EntriesCalls() int { return int(f.entriesCalls.Load()) }

// UpdateCalls returns how many update requests were issued, including failed ones.
func (f *FakeLetterboxd) UpdateCalls() int { return int(f.updateCalls.Load()) }

// PeakConcurrency returns the highest number of searches observed in flight at once.
func (f *FakeLetterboxd) PeakConcurrency() int { return int(f.peak.Load()) }

// Updates returns the recorded successful updates.
func (f *FakeLetterboxd) Updates() []FakeUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.updates)
}

// Queries returns every search query in call order.
func (f *FakeLetterboxd) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.queries)
}

// RemoteIDs returns the current remote film IDs, sorted.
func (f *FakeLetterboxd) RemoteIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, len(f.Remote))
	for i, film := range f.Remote {
		ids[i] = film.ID
	}
	slices.Sort(ids)
	return ids
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFiles creates empty files named names inside dir.
func MustWriteFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(dir+string(os.PathSeparator)+name, nil, 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", name, err)
		}
	}
}
