// Package indexes implements the index browser: the index list and the
// lazily fetched statistics shown when a row is expanded.
package indexes

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/usestring/quickwit-mcp/pkg/client"
)

// Lister returns the index catalogue.
type Lister interface {
	ListIndexes(ctx context.Context) ([]client.Index, error)
}

// Backend is the part of the Quickwit API the browser reads from.
type Backend interface {
	Lister
	DescribeIndex(ctx context.Context, indexID string) (*client.IndexDescription, error)
	GetIndexingStats(ctx context.Context) (*client.IndexingStats, error)
	ListSplits(ctx context.Context, indexID string) (*client.ListSplitsResponse, error)
}

// Details is the expanded view of one index row.
type Details struct {
	Summary     client.IndexSummary
	Description Cell[*client.IndexDescription]
	Indexing    Cell[*client.IndexingStats]
	Splits      Cell[*client.ListSplitsResponse]
}

// DetailRow is one label/value line of the expanded row.
type DetailRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Rows renders the details table of an expanded index row.
func (d *Details) Rows() []DetailRow {
	desc := d.Description
	return []DetailRow{
		{"Created at:", FormatUTC(d.Summary.CreatedAt)},
		{"URI:", d.Summary.IndexURI},
		{"Number of published documents:", desc.Render(func(v *client.IndexDescription) string {
			return strconv.FormatUint(v.PublishedDocCount, 10)
		})},
		{"Size of published documents (uncompressed):", desc.Render(func(v *client.IndexDescription) string {
			return FormatBytes(v.PublishedDocsUncompressedBytes)
		})},
		{"Number of published splits:", desc.Render(func(v *client.IndexDescription) string {
			return strconv.FormatUint(uint64(v.PublishedSplitCount), 10)
		})},
		{"Size of published splits:", desc.Render(func(v *client.IndexDescription) string {
			return FormatBytes(v.PublishedSplitsBytes)
		})},
		{"Number of staged splits:", d.Indexing.Render(func(v *client.IndexingStats) string {
			return strconv.FormatInt(v.StagedSplits(), 10)
		})},
		{"Number of splits marked for deletion:", d.Splits.Render(func(v *client.ListSplitsResponse) string {
			return strconv.Itoa(v.MarkedForDeletionCount())
		})},
	}
}

// Browser holds the index list and the expanded rows. Safe for concurrent use.
type Browser struct {
	backend Backend
	lister  Lister

	mu       sync.Mutex
	list     Cell[[]client.IndexSummary]
	expanded map[string]*Details
}

// Option configures a Browser.
type Option func(*Browser)

// WithLister reads the index list from l instead of the backend, e.g. a
// cached catalogue.
func WithLister(l Lister) Option {
	return func(b *Browser) {
		b.lister = l
	}
}

// New creates a browser reading from backend.
func New(backend Backend, opts ...Option) *Browser {
	b := &Browser{
		backend:  backend,
		lister:   backend,
		list:     Pending[[]client.IndexSummary](),
		expanded: make(map[string]*Details),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// List fetches the index list. A failure is recorded in the returned cell
// and leaves expanded rows untouched.
func (b *Browser) List(ctx context.Context) Cell[[]client.IndexSummary] {
	indexes, err := b.lister.ListIndexes(ctx)
	var cell Cell[[]client.IndexSummary]
	if err != nil {
		slog.Warn("listing indexes failed", slog.String("error", err.Error()))
		cell = Resolve[[]client.IndexSummary](nil, err)
	} else {
		summaries := make([]client.IndexSummary, len(indexes))
		for i := range indexes {
			summaries[i] = indexes[i].Summary()
		}
		cell = Resolve(summaries, nil)
	}

	b.mu.Lock()
	b.list = cell
	b.mu.Unlock()
	return cell
}

// Indexes returns the last fetched list cell.
func (b *Browser) Indexes() Cell[[]client.IndexSummary] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.list
}

// summary looks indexID up in the index list. A ready list that misses the
// id is fetched again once, so indexes created since the last listing show up.
func (b *Browser) summary(ctx context.Context, indexID string) (client.IndexSummary, error) {
	list := b.Indexes()
	fetched := false
	if list.State != StateReady {
		list = b.List(ctx)
		fetched = true
		if list.State == StateFailed {
			return client.IndexSummary{}, list.Err
		}
	}
	if s, ok := findSummary(list.Value, indexID); ok {
		return s, nil
	}
	if !fetched {
		list = b.List(ctx)
		if list.State == StateFailed {
			return client.IndexSummary{}, list.Err
		}
		if s, ok := findSummary(list.Value, indexID); ok {
			return s, nil
		}
	}
	return client.IndexSummary{}, fmt.Errorf("index %q not found", indexID)
}

func findSummary(list []client.IndexSummary, indexID string) (client.IndexSummary, bool) {
	for _, s := range list {
		if s.IndexID == indexID {
			return s, true
		}
	}
	return client.IndexSummary{}, false
}

// Expand opens the row of indexID and fetches its description, the indexing
// stats and its splits concurrently. Each fetch lands in its own cell. An
// already expanded row is returned as is.
func (b *Browser) Expand(ctx context.Context, indexID string) (Details, error) {
	b.mu.Lock()
	if d, ok := b.expanded[indexID]; ok {
		out := *d
		b.mu.Unlock()
		return out, nil
	}
	b.mu.Unlock()

	sum, err := b.summary(ctx, indexID)
	if err != nil {
		return Details{}, err
	}

	d := &Details{
		Summary:     sum,
		Description: Pending[*client.IndexDescription](),
		Indexing:    Pending[*client.IndexingStats](),
		Splits:      Pending[*client.ListSplitsResponse](),
	}
	b.mu.Lock()
	if existing, ok := b.expanded[indexID]; ok {
		out := *existing
		b.mu.Unlock()
		return out, nil
	}
	b.expanded[indexID] = d
	b.mu.Unlock()

	// Fetches never fail the group so a failing cell cannot cancel siblings.
	var g errgroup.Group
	g.Go(func() error {
		desc, err := b.backend.DescribeIndex(ctx, indexID)
		cell := Resolve(desc, err)
		b.store(indexID, d, func(d *Details) { d.Description = cell })
		return nil
	})
	g.Go(func() error {
		stats, err := b.backend.GetIndexingStats(ctx)
		cell := Resolve(stats, err)
		b.store(indexID, d, func(d *Details) { d.Indexing = cell })
		return nil
	})
	g.Go(func() error {
		splits, err := b.backend.ListSplits(ctx, indexID)
		cell := Resolve(splits, err)
		b.store(indexID, d, func(d *Details) { d.Splits = cell })
		return nil
	})
	_ = g.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	return *d, nil
}

// store applies a fetch result unless the row was collapsed meanwhile.
func (b *Browser) store(indexID string, d *Details, apply func(*Details)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.expanded[indexID] != d {
		return
	}
	apply(d)
}

// Collapse closes the row of indexID and forgets its details.
func (b *Browser) Collapse(indexID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.expanded, indexID)
}

// Expanded returns the ids of the open rows, sorted.
func (b *Browser) Expanded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.expanded))
	for id := range b.expanded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
