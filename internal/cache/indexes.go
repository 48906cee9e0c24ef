// Package cache provides caching for the index catalogue and the store of
// editor sessions.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/usestring/quickwit-mcp/pkg/client"
)

const listKey = "indexes"

// Source is the part of the Quickwit API the catalogue reads from.
type Source interface {
	ListIndexes(ctx context.Context) ([]client.Index, error)
	GetIndex(ctx context.Context, indexID string) (*client.Index, error)
}

// Recorder receives cache hit and miss events.
type Recorder interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

type nopRecorder struct{}

func (nopRecorder) CacheHit(string)  {}
func (nopRecorder) CacheMiss(string) {}

// IndexCatalog caches index metadata for a short TTL. Concurrent misses for
// the same key share one backend request. Failures are never cached.
type IndexCatalog struct {
	source   Source
	recorder Recorder
	list     *expirable.LRU[string, []client.Index]
	indexes  *expirable.LRU[string, *client.Index]
	group    singleflight.Group
}

// CatalogOption configures an IndexCatalog.
type CatalogOption func(*IndexCatalog)

// WithRecorder reports hits and misses to r.
func WithRecorder(r Recorder) CatalogOption {
	return func(c *IndexCatalog) {
		c.recorder = r
	}
}

// NewIndexCatalog caches up to maxItems indexes for ttl.
func NewIndexCatalog(source Source, maxItems int, ttl time.Duration, opts ...CatalogOption) *IndexCatalog {
	if maxItems <= 0 {
		maxItems = 1
	}
	c := &IndexCatalog{
		source:   source,
		recorder: nopRecorder{},
		list:     expirable.NewLRU[string, []client.Index](1, nil, ttl),
		indexes:  expirable.NewLRU[string, *client.Index](maxItems, nil, ttl),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListIndexes returns the cached index list, fetching it on a miss. Listed
// indexes also warm the per-index cache.
func (c *IndexCatalog) ListIndexes(ctx context.Context) ([]client.Index, error) {
	if list, ok := c.list.Get(listKey); ok {
		c.recorder.CacheHit("index_list")
		return list, nil
	}
	c.recorder.CacheMiss("index_list")

	// Shared fetches outlive the cancellation of the caller that started them.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, shared := c.group.Do("list", func() (any, error) {
		list, err := c.source.ListIndexes(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.list.Add(listKey, list)
		for i := range list {
			idx := list[i]
			c.indexes.Add(idx.IndexConfig.IndexID, &idx)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("index list fetch shared")
	}
	return v.([]client.Index), nil
}

// Get returns the metadata of one index.
func (c *IndexCatalog) Get(ctx context.Context, indexID string) (*client.Index, error) {
	if idx, ok := c.indexes.Get(indexID); ok {
		c.recorder.CacheHit("index")
		return idx, nil
	}
	c.recorder.CacheMiss("index")

	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do("index/"+indexID, func() (any, error) {
		idx, err := c.source.GetIndex(fetchCtx, indexID)
		if err != nil {
			return nil, err
		}
		c.indexes.Add(indexID, idx)
		if list, ok := c.list.Peek(listKey); ok && !containsIndex(list, indexID) {
			// The cached list predates this index.
			c.list.Remove(listKey)
		}
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*client.Index), nil
}

func containsIndex(list []client.Index, indexID string) bool {
	for i := range list {
		if list[i].IndexConfig.IndexID == indexID {
			return true
		}
	}
	return false
}

// Invalidate drops every cached entry.
func (c *IndexCatalog) Invalidate() {
	c.list.Purge()
	c.indexes.Purge()
}
