package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/usestring/quickwit-mcp/internal/cache"
	"github.com/usestring/quickwit-mcp/internal/config"
	"github.com/usestring/quickwit-mcp/internal/editor"
	"github.com/usestring/quickwit-mcp/internal/indexes"
	"github.com/usestring/quickwit-mcp/internal/query"
	"github.com/usestring/quickwit-mcp/internal/render"
	"github.com/usestring/quickwit-mcp/pkg/client"
	"github.com/usestring/quickwit-mcp/pkg/location"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Client   *client.Client
	Catalog  *cache.IndexCatalog
	Browser  *indexes.Browser
	Sessions *cache.Sessions[*Session]
	Query    *query.Engine
	Config   *config.Config
	Now      func() time.Time
}

// Session is one editor session: a query state controller and the page
// location it mirrors its searches into.
type Session struct {
	ID       string
	Editor   *editor.Controller
	Location *location.Memory
}

// NewDeps wires the default dependencies around c.
func NewDeps(c *client.Client, cfg *config.Config, opts ...DepsOption) *Deps {
	d := &Deps{
		Client: c,
		Query:  query.NewEngine(),
		Config: cfg,
		Now:    time.Now,
	}
	var o depsOptions
	for _, opt := range opts {
		opt(&o)
	}

	var catalogOpts []cache.CatalogOption
	if o.recorder != nil {
		catalogOpts = append(catalogOpts, cache.WithRecorder(o.recorder))
	}
	d.Catalog = cache.NewIndexCatalog(c, cfg.IndexCacheMaxItems, cfg.IndexCacheTTL, catalogOpts...)
	d.Browser = indexes.New(c, indexes.WithLister(d.Catalog))

	var sessionOpts []cache.SessionsOption
	if o.sessionGauge != nil {
		sessionOpts = append(sessionOpts, cache.WithSizeObserver(o.sessionGauge))
	}
	d.Sessions = cache.NewSessions[*Session](cfg.EditorSessionMax, cfg.EditorSessionTTL, sessionOpts...)
	return d
}

// DepsOption configures NewDeps.
type DepsOption func(*depsOptions)

type depsOptions struct {
	recorder     cache.Recorder
	sessionGauge func(int)
}

// WithCacheRecorder reports catalogue cache hits and misses to r.
func WithCacheRecorder(r cache.Recorder) DepsOption {
	return func(o *depsOptions) {
		o.recorder = r
	}
}

// WithSessionGauge reports the number of live editor sessions to f.
func WithSessionGauge(f func(int)) DepsOption {
	return func(o *depsOptions) {
		o.sessionGauge = f
	}
}

// OpenSession creates an editor session seeded from rawURL and hydrates it.
// The index list is loaded first so the selector can offer it; a failure to
// load it is kept in the session state. A failed hydration search is kept
// in the state as well.
func (d *Deps) OpenSession(ctx context.Context, rawURL string) (*Session, error) {
	loc, err := location.NewMemory(rawURL)
	if err != nil {
		return nil, ErrInvalidInput("invalid url: " + err.Error())
	}

	table := render.NewTable(render.WithTimestampField(d.Config.TimestampField))
	ctrl := editor.New(d.Client, loc,
		editor.WithSortField(d.Config.SortByField),
		editor.WithMaxHits(d.Config.DefaultMaxHits),
		editor.WithLister(d.Catalog),
		editor.WithTable(table),
		editor.WithClock(d.Now),
	)

	if err := ctrl.LoadIndexes(ctx); err != nil {
		slog.Warn("loading indexes for editor session failed", slog.String("error", err.Error()))
	}
	if _, err := ctrl.Hydrate(ctx); err != nil {
		slog.Warn("hydration search failed", slog.String("error", err.Error()))
	}

	s := &Session{Editor: ctrl, Location: loc}
	s.ID = d.Sessions.Add(s)
	return s, nil
}

// Session looks up an editor session.
func (d *Deps) Session(id string) (*Session, error) {
	s, ok := d.Sessions.Get(id)
	if !ok {
		return nil, ErrNotFound("editor session", id)
	}
	return s, nil
}
