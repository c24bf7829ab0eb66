// Package creativecache keeps fully merged creatives and their discovered
// asset lists in memory so the merge/discovery walk runs once per creative,
// not once per bundle request. Entries expire on a sliding inactivity window
// and are rebuilt transparently on the next access.
package creativecache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/signstack/creative-server/assets"
	"github.com/signstack/creative-server/creative"
	"github.com/signstack/creative-server/creative/merge"
	"github.com/signstack/creative-server/metrics"
	"github.com/signstack/creative-server/util/timeutil"

	"github.com/golang/glog"
)

// Entry is one creative's cached build output. It is immutable once stored;
// concurrent readers share it.
type Entry struct {
	Creative        *creative.Document
	ComponentAssets []assets.Descriptor
	LibraryAssets   []assets.Descriptor
	MediaURLs       []string
	ExcludedURLs    []string
	LastUpdated     time.Time
}

// MetricsRecorder is the slice of the metrics engine the cache reports
// hit/miss results to.
type MetricsRecorder interface {
	RecordCacheResult(result string)
}

// Cache is safe for concurrent use. Concurrent misses for the same id may
// race and build duplicate entries; the merge is idempotent, so the builds
// converge and last-write-wins is acceptable.
type Cache struct {
	fetcher  creative.Fetcher
	merger   *merge.Merger
	ttl      time.Duration
	clock    timeutil.Time
	recorder MetricsRecorder

	mu      sync.RWMutex
	entries map[string]*cachedEntry
}

type cachedEntry struct {
	entry      *Entry
	lastAccess atomic.Int64
}

func New(fetcher creative.Fetcher, merger *merge.Merger, ttl time.Duration, clock timeutil.Time) *Cache {
	return &Cache{
		fetcher: fetcher,
		merger:  merger,
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]*cachedEntry),
	}
}

// WithMetrics attaches a hit/miss recorder. Must be called before the cache
// serves traffic.
func (c *Cache) WithMetrics(recorder MetricsRecorder) *Cache {
	c.recorder = recorder
	return c
}

// Get returns the cached entry for the creative id, building it on a miss.
// Every hit refreshes the entry's sliding expiry window.
func (c *Cache) Get(ctx context.Context, id string) (*Entry, error) {
	c.mu.RLock()
	ce, ok := c.entries[id]
	c.mu.RUnlock()
	if ok {
		c.record(metrics.CacheHit)
		ce.lastAccess.Store(c.clock.Now().UnixNano())
		return ce.entry, nil
	}
	c.record(metrics.CacheMiss)
	return c.build(ctx, id)
}

func (c *Cache) record(result string) {
	if c.recorder != nil {
		c.recorder.RecordCacheResult(result)
	}
}

func (c *Cache) build(ctx context.Context, id string) (*Entry, error) {
	raw, err := c.fetcher.FetchCreative(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := creative.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf(`error parsing creative "%s": %v`, id, err)
	}

	reg := assets.NewRegistry()
	c.merger.MergeDefaults(doc, reg)

	now := c.clock.Now()
	entry := &Entry{
		Creative:        doc,
		ComponentAssets: reg.Components(),
		LibraryAssets:   reg.Libraries(),
		MediaURLs:       merge.ExtractMediaURLs(doc),
		ExcludedURLs:    doc.CacheExclusions,
		LastUpdated:     now,
	}

	ce := &cachedEntry{entry: entry}
	ce.lastAccess.Store(now.UnixNano())

	c.mu.Lock()
	c.entries[id] = ce
	c.mu.Unlock()

	if glog.V(2) {
		glog.Infof("Built creative cache entry for %q: %d component assets, %d library assets, %d media urls",
			id, len(entry.ComponentAssets), len(entry.LibraryAssets), len(entry.MediaURLs))
	}
	return entry, nil
}

// Invalidate drops the entry for the given id, forcing a rebuild on next access.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// SweepExpired evicts entries idle beyond the sliding window. It is run
// periodically by a ticker task.
func (c *Cache) SweepExpired() error {
	cutoff := c.clock.Now().Add(-c.ttl).UnixNano()

	c.mu.Lock()
	for id, ce := range c.entries {
		if ce.lastAccess.Load() < cutoff {
			delete(c.entries, id)
		}
	}
	c.mu.Unlock()
	return nil
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
