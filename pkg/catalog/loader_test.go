package catalog

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nutrilabel/pkg/cache"
	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/nutrition"
	"github.com/matzehuels/nutrilabel/pkg/sheets"
)

const testURL = "https://example.com/nutrition.csv"

func granolaTable() *sheets.Table {
	return &sheets.Table{
		Header: []string{
			"Product", "Serving Size", "Energy", "Total Fat", "Saturated Fat", "Trans Fat",
			"Cholesterol", "Sodium", "Total Carbohydrate", "Dietary Fiber", "Total Sugars",
			"Added Sugars", "Protein",
		},
		Rows: [][]string{
			{"Granola Bar", "40g", "180", "7", "1", "0", "0", "95", "27", "3", "10", "6", "3"},
			{"Broken Bar", "40g", "180", "", "1", "0", "0", "95", "27", "3", "10", "6", "3"},
		},
	}
}

// countingFetcher returns its table (or err) and counts calls.
type countingFetcher struct {
	mu    sync.Mutex
	calls atomic.Int32
	table *sheets.Table
	err   error
	delay time.Duration
}

func (f *countingFetcher) Fetch(ctx context.Context, url string) (*sheets.Table, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.table, f.err
}

func (f *countingFetcher) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLoader(f Fetcher, clock *fakeClock, snapshots cache.Cache) *Loader {
	return NewLoader(Options{
		URL:       testURL,
		TTL:       300 * time.Second,
		Fetcher:   f,
		Snapshots: snapshots,
		Logger:    log.NewWithOptions(io.Discard, log.Options{}),
		Now:       clock.Now,
	})
}

func TestLoadGranolaBar(t *testing.T) {
	f := &countingFetcher{table: granolaTable()}
	l := newTestLoader(f, &fakeClock{now: time.Unix(1000, 0)}, nil)

	e, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	rec, ok := e.Catalog.Get("Granola Bar")
	if !ok {
		t.Fatal("Granola Bar missing")
	}
	if rec.Calories() != 180 {
		t.Errorf("Calories() = %v, want 180", rec.Calories())
	}
	if _, ok := e.Catalog.Get("Broken Bar"); ok {
		t.Error("row with a blank required cell must be excluded")
	}
	if len(e.Skipped) != 1 || !errors.Is(e.Skipped[0].Err, errors.ErrCodeRowParse) {
		t.Errorf("Skipped = %v", e.Skipped)
	}
}

func TestLoadCachesWithinTTL(t *testing.T) {
	f := &countingFetcher{table: granolaTable()}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := newTestLoader(f, clock, nil)
	ctx := context.Background()

	first, _ := l.Load(ctx)
	clock.Advance(299 * time.Second)
	second, _ := l.Load(ctx)

	if n := f.calls.Load(); n != 1 {
		t.Fatalf("fetches within TTL = %d, want 1", n)
	}
	if first != second {
		t.Error("entry should be reused within TTL")
	}

	clock.Advance(time.Second)
	third, _ := l.Load(ctx)
	if n := f.calls.Load(); n != 2 {
		t.Fatalf("fetches after expiry = %d, want 2", n)
	}
	if third == second {
		t.Error("entry should be replaced after expiry")
	}

	l.Load(ctx)
	if n := f.calls.Load(); n != 2 {
		t.Errorf("fetches after refetch = %d, want 2", n)
	}
}

func TestLoadServesStaleEntryOnFailure(t *testing.T) {
	f := &countingFetcher{table: granolaTable()}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := newTestLoader(f, clock, nil)
	ctx := context.Background()

	if _, err := l.Load(ctx); err != nil {
		t.Fatal(err)
	}
	f.fail(errors.New(errors.ErrCodeFetch, "sheet not found"))
	clock.Advance(time.Hour)

	e, err := l.Load(ctx)
	if !errors.Is(err, errors.ErrCodeFetch) {
		t.Fatalf("Load() error = %v, want FETCH_ERROR", err)
	}
	if e == nil || !e.Stale {
		t.Fatalf("Load() entry = %+v, want stale previous entry", e)
	}
	if _, ok := e.Catalog.Get("Granola Bar"); !ok {
		t.Error("stale entry should still hold the previous catalog")
	}
}

func TestLoadFailureWithoutEntry(t *testing.T) {
	f := &countingFetcher{err: io.ErrUnexpectedEOF}
	l := newTestLoader(f, &fakeClock{now: time.Unix(1000, 0)}, nil)

	e, err := l.Load(context.Background())
	if e != nil {
		t.Errorf("entry = %+v, want nil", e)
	}
	if !errors.Is(err, errors.ErrCodeFetch) {
		t.Errorf("plain fetcher errors should be wrapped as FETCH_ERROR, got %v", err)
	}
}

func TestLoadMissingColumnIsFetchError(t *testing.T) {
	tbl := granolaTable()
	tbl.Header = tbl.Header[:5]
	l := newTestLoader(&countingFetcher{table: tbl}, &fakeClock{now: time.Unix(1000, 0)}, nil)

	if _, err := l.Load(context.Background()); !errors.Is(err, errors.ErrCodeFetch) {
		t.Errorf("error = %v, want FETCH_ERROR", err)
	}
}

func TestLoadNoURL(t *testing.T) {
	l := newTestLoader(&countingFetcher{table: granolaTable()}, &fakeClock{now: time.Unix(1000, 0)}, nil)
	l.Configure("", 0)
	if _, err := l.Load(context.Background()); !errors.Is(err, errors.ErrCodeFetch) {
		t.Errorf("error = %v, want FETCH_ERROR", err)
	}
}

func TestConcurrentLoadsShareOneFetch(t *testing.T) {
	f := &countingFetcher{table: granolaTable(), delay: 50 * time.Millisecond}
	l := newTestLoader(f, &fakeClock{now: time.Unix(1000, 0)}, nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Load(context.Background()); err != nil {
				t.Errorf("Load() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := f.calls.Load(); n != 1 {
		t.Errorf("fetches = %d, want 1", n)
	}
}

func TestRefreshForcesFetch(t *testing.T) {
	f := &countingFetcher{table: granolaTable()}
	l := newTestLoader(f, &fakeClock{now: time.Unix(1000, 0)}, nil)
	ctx := context.Background()

	l.Load(ctx)
	l.Refresh(ctx)
	if n := f.calls.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2", n)
	}
}

func TestConfigure(t *testing.T) {
	f := &countingFetcher{table: granolaTable()}
	l := newTestLoader(f, &fakeClock{now: time.Unix(1000, 0)}, nil)
	ctx := context.Background()
	l.Load(ctx)

	l.Configure(testURL, 10*time.Minute)
	if l.Current() == nil {
		t.Error("same URL should keep the entry")
	}
	if l.TTL() != 10*time.Minute {
		t.Errorf("TTL() = %v", l.TTL())
	}

	l.Configure("https://example.com/other.csv", 0)
	if l.Current() != nil {
		t.Error("new URL should drop the entry")
	}
	if l.TTL() != 10*time.Minute {
		t.Error("zero TTL should keep the current duration")
	}
	l.Load(ctx)
	if n := f.calls.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2", n)
	}
}

func TestInvalidate(t *testing.T) {
	f := &countingFetcher{table: granolaTable()}
	l := newTestLoader(f, &fakeClock{now: time.Unix(1000, 0)}, nil)
	ctx := context.Background()

	l.Load(ctx)
	l.Invalidate()
	if l.Current() != nil {
		t.Error("Invalidate should drop the entry")
	}
	if _, err := l.Load(ctx); err != nil {
		t.Fatalf("Load() after Invalidate: %v", err)
	}
	if n := f.calls.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2", n)
	}
}

func TestSnapshotServedAfterRestart(t *testing.T) {
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	ctx := context.Background()

	first := newTestLoader(&countingFetcher{table: granolaTable()}, clock, store)
	if _, err := first.Load(ctx); err != nil {
		t.Fatal(err)
	}

	// A new loader over the same store, with the sheet now unreachable.
	restarted := newTestLoader(&countingFetcher{err: errors.New(errors.ErrCodeFetch, "down")}, clock, store)
	e, err := restarted.Load(ctx)
	if err == nil {
		t.Fatal("expected the fetch error to be reported")
	}
	if e == nil || !e.Stale {
		t.Fatalf("entry = %+v, want stale snapshot", e)
	}
	if !e.FetchedAt.Equal(time.Unix(1000, 0)) {
		t.Errorf("FetchedAt = %v, want snapshot time", e.FetchedAt)
	}
	if _, ok := e.Catalog.Get("Granola Bar"); !ok {
		t.Error("snapshot catalog should contain Granola Bar")
	}
}

func TestEntryValid(t *testing.T) {
	at := time.Unix(1000, 0)
	e := &Entry{FetchedAt: at, Catalog: &nutrition.Catalog{}}
	if !e.Valid(at.Add(299*time.Second), 300*time.Second) {
		t.Error("entry should be valid before the duration elapses")
	}
	if e.Valid(at.Add(300*time.Second), 300*time.Second) {
		t.Error("entry should expire exactly at the duration")
	}
	var nilEntry *Entry
	if nilEntry.Valid(at, time.Hour) {
		t.Error("nil entry is never valid")
	}
}
