// Package catalog loads the product catalog from a spreadsheet and keeps it
// for a fixed duration.
//
// A [Loader] holds one [Entry]. [Loader.Load] serves the entry while it is
// younger than the cache duration and fetches otherwise; concurrent callers
// that find the entry expired share a single fetch. When a fetch fails the
// previous entry, marked stale, is returned together with the FETCH_ERROR so
// the caller can show both.
//
// An optional snapshot store ([cache.Cache]) keeps the last successfully
// fetched table. It is only read when a fetch fails and the loader has no
// entry of its own, which is what a freshly restarted process looks like.
package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/nutrilabel/pkg/cache"
	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/nutrition"
	"github.com/matzehuels/nutrilabel/pkg/observability"
	"github.com/matzehuels/nutrilabel/pkg/sheets"
)

// DefaultTTL is the default cache duration.
const DefaultTTL = 5 * time.Minute

// Fetcher downloads and decodes a sheet. [*sheets.Client] implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*sheets.Table, error)
}

// Entry is one loaded catalog.
type Entry struct {
	Source    string
	FetchedAt time.Time
	Catalog   *nutrition.Catalog
	Skipped   []nutrition.RowResult
	Stale     bool // returned after a failed fetch
}

// Valid reports whether the entry may still be served at now.
func (e *Entry) Valid(now time.Time, ttl time.Duration) bool {
	return e != nil && now.Sub(e.FetchedAt) < ttl
}

// Options configures a [Loader].
type Options struct {
	URL       string
	TTL       time.Duration // 0 means DefaultTTL
	Fetcher   Fetcher
	Snapshots cache.Cache // nil disables snapshots
	Logger    *log.Logger
	Now       func() time.Time
}

// Loader fetches, parses and caches the catalog. It is safe for concurrent use.
type Loader struct {
	mu    sync.Mutex
	url   string
	ttl   time.Duration
	entry *Entry

	fetcher   Fetcher
	snapshots cache.Cache
	logger    *log.Logger
	now       func() time.Time
	group     singleflight.Group
}

// NewLoader creates a loader. Nothing is fetched until the first Load.
func NewLoader(opts Options) *Loader {
	l := &Loader{
		url:       opts.URL,
		ttl:       opts.TTL,
		fetcher:   opts.Fetcher,
		snapshots: opts.Snapshots,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if l.ttl <= 0 {
		l.ttl = DefaultTTL
	}
	if l.fetcher == nil {
		l.fetcher = sheets.NewClient(sheets.Options{})
	}
	if l.snapshots == nil {
		l.snapshots = cache.NewNullCache()
	}
	if l.logger == nil {
		l.logger = log.Default()
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Load returns the cached entry while it is valid and fetches otherwise.
// On a failed fetch it returns the previous entry (or nil) and the error.
func (l *Loader) Load(ctx context.Context) (*Entry, error) {
	l.mu.Lock()
	if l.entry != nil && !l.entry.Stale && l.entry.Valid(l.now(), l.ttl) {
		e := l.entry
		l.mu.Unlock()
		observability.Cache().OnCacheHit(ctx, "catalog")
		return e, nil
	}
	l.mu.Unlock()
	observability.Cache().OnCacheMiss(ctx, "catalog")
	return l.Refresh(ctx)
}

// Refresh fetches regardless of the entry's age.
func (l *Loader) Refresh(ctx context.Context) (*Entry, error) {
	url := l.URL()
	v, err, _ := l.group.Do(url, func() (any, error) {
		return l.fetch(context.WithoutCancel(ctx), url)
	})
	if err != nil {
		return l.stale(ctx, url), err
	}
	return v.(*Entry), nil
}

// Configure changes the source and cache duration. Changing the URL drops
// the current entry.
func (l *Loader) Configure(url string, ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if url != l.url {
		l.entry = nil
	}
	l.url = url
	if ttl > 0 {
		l.ttl = ttl
	}
}

// Invalidate drops the current entry so the next Load fetches.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.entry = nil
	l.mu.Unlock()
}

// URL returns the configured sheet URL.
func (l *Loader) URL() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.url
}

// TTL returns the cache duration.
func (l *Loader) TTL() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ttl
}

// Current returns the held entry without fetching. It may be nil or expired.
func (l *Loader) Current() *Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entry
}

func (l *Loader) fetch(ctx context.Context, url string) (*Entry, error) {
	hooks := observability.Loader()
	hooks.OnFetchStart(ctx, url)
	start := time.Now()

	entry, table, err := l.fetchAndParse(ctx, url)
	if err != nil {
		hooks.OnFetchComplete(ctx, url, 0, 0, time.Since(start), err)
		l.logger.Warn("sheet fetch failed", "url", url, "err", err)
		return nil, err
	}

	for _, r := range entry.Skipped {
		hooks.OnRowSkipped(ctx, r.Row, r.Err)
		l.logger.Warn("skipped row", "row", r.Row, "product", r.Product, "err", errors.UserMessage(r.Err))
	}
	hooks.OnFetchComplete(ctx, url, entry.Catalog.Len(), len(entry.Skipped), time.Since(start), nil)
	l.logger.Info("loaded catalog", "products", entry.Catalog.Len(), "skipped", len(entry.Skipped), "duration", time.Since(start))

	l.mu.Lock()
	if l.url == url {
		l.entry = entry
	}
	l.mu.Unlock()

	l.saveSnapshot(ctx, url, entry.FetchedAt, table)
	return entry, nil
}

func (l *Loader) fetchAndParse(ctx context.Context, url string) (*Entry, *sheets.Table, error) {
	if url == "" {
		return nil, nil, errors.New(errors.ErrCodeFetch, "no sheet URL configured")
	}
	table, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		if !errors.Is(err, errors.ErrCodeFetch) {
			err = errors.Wrap(errors.ErrCodeFetch, err, "fetch sheet")
		}
		return nil, nil, err
	}
	entry, err := newEntry(url, l.now(), table)
	if err != nil {
		return nil, nil, err
	}
	return entry, table, nil
}

func newEntry(url string, at time.Time, table *sheets.Table) (*Entry, error) {
	cat, skipped, err := nutrition.Parse(table)
	if err != nil {
		return nil, err
	}
	return &Entry{Source: url, FetchedAt: at, Catalog: cat, Skipped: skipped}, nil
}

// stale returns the held entry marked stale, falling back to the snapshot
// store when there is none.
func (l *Loader) stale(ctx context.Context, url string) *Entry {
	l.mu.Lock()
	if l.entry != nil && l.entry.Source == url {
		e := *l.entry
		e.Stale = true
		l.mu.Unlock()
		return &e
	}
	l.mu.Unlock()

	e, err := l.loadSnapshot(ctx, url)
	if err != nil {
		return nil
	}
	e.Stale = true
	l.mu.Lock()
	if l.entry == nil && l.url == url {
		l.entry = e
	}
	l.mu.Unlock()
	l.logger.Info("serving snapshot", "url", url, "fetched_at", e.FetchedAt.Format(time.RFC3339))
	return e
}

type snapshot struct {
	URL       string     `json:"url"`
	FetchedAt time.Time  `json:"fetched_at"`
	Header    []string   `json:"header"`
	Rows      [][]string `json:"rows"`
}

func (l *Loader) saveSnapshot(ctx context.Context, url string, at time.Time, t *sheets.Table) {
	data, err := json.Marshal(snapshot{URL: url, FetchedAt: at, Header: t.Header, Rows: t.Rows})
	if err != nil {
		return
	}
	if err := l.snapshots.Set(ctx, cache.SnapshotKey(url), data, 0); err != nil {
		l.logger.Debug("snapshot write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "snapshot", len(data))
}

func (l *Loader) loadSnapshot(ctx context.Context, url string) (*Entry, error) {
	data, hit, err := l.snapshots.Get(ctx, cache.SnapshotKey(url))
	if err != nil {
		return nil, err
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "snapshot")
		return nil, cache.ErrCacheMiss
	}
	observability.Cache().OnCacheHit(ctx, "snapshot")

	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return newEntry(url, s.FetchedAt, &sheets.Table{Header: s.Header, Rows: s.Rows})
}
