// Package editor implements the query editor's state controller: the query
// text, index selection, hit limit and time range of one session, the
// search workflow and its synchronization with the page location.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/usestring/quickwit-mcp/internal/indexes"
	"github.com/usestring/quickwit-mcp/internal/render"
	"github.com/usestring/quickwit-mcp/pkg/client"
	"github.com/usestring/quickwit-mcp/pkg/location"
	"github.com/usestring/quickwit-mcp/pkg/timerange"
)

// Defaults of a fresh session.
const (
	DefaultQuery     = "*"
	DefaultSortField = "timestamp_nanos"
)

var (
	// ErrInvalidMaxHits rejects a max hits edit; the prior value is kept.
	ErrInvalidMaxHits = errors.New("max hits must be an integer between 1 and 1000")

	// ErrSuperseded is returned by Run when a newer run was issued while this
	// one was in flight. Its outcome was discarded.
	ErrSuperseded = errors.New("search superseded by a newer run")
)

// Backend is the part of the Quickwit API the editor uses.
type Backend interface {
	Query(indexID string) *client.QueryBuilder
	ListIndexes(ctx context.Context) ([]client.Index, error)
}

// State is a snapshot of the editor. SelectedIndex is empty when no index
// is selected; SearchInput is the text of the index box, which may diverge
// from the selection while typing.
type State struct {
	QueryText     string
	SelectedIndex string
	SearchInput   string
	MaxHits       int
	TimeRange     *timerange.Range
	DropdownOpen  bool
	Loading       bool
	Response      *client.QueryResponse
	Err           error
	Indexes       indexes.Cell[[]client.IndexSummary]
}

// Controller owns the state of one editor session. Safe for concurrent use.
type Controller struct {
	backend   Backend
	lister    indexes.Lister
	loc       location.Location
	now       func() time.Time
	sortField string

	mu       sync.Mutex
	state    State
	table    *render.Table
	issued   uint64
	hydrated bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithSortField sets the field every run sorts by.
func WithSortField(field string) Option {
	return func(c *Controller) {
		c.sortField = field
	}
}

// WithMaxHits sets the hit limit of a fresh session. Values outside
// [1, 1000] are ignored.
func WithMaxHits(n int) Option {
	return func(c *Controller) {
		if n >= client.MinMaxHits && n <= client.MaxMaxHits {
			c.state.MaxHits = n
		}
	}
}

// WithClock overrides the clock time ranges are resolved against.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithLister reads the index list from l instead of the backend.
func WithLister(l indexes.Lister) Option {
	return func(c *Controller) {
		c.lister = l
	}
}

// WithTable sets the result table, e.g. one with a custom timestamp field.
func WithTable(t *render.Table) Option {
	return func(c *Controller) {
		c.table = t
	}
}

// New creates a controller with a fresh session state.
func New(backend Backend, loc location.Location, opts ...Option) *Controller {
	c := &Controller{
		backend:   backend,
		lister:    backend,
		loc:       loc,
		now:       time.Now,
		sortField: DefaultSortField,
		table:     render.NewTable(),
		state: State{
			QueryText: DefaultQuery,
			MaxHits:   client.DefaultMaxHits,
			Indexes:   indexes.Pending[[]client.IndexSummary](),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Hydrate seeds the session from the location's query, max_hits and index
// parameters. When an index is present it runs exactly one search with the
// current time range. Only the first call has any effect; it reports whether
// a search was issued.
func (c *Controller) Hydrate(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.hydrated {
		c.mu.Unlock()
		return false, nil
	}
	c.hydrated = true

	params := c.loc.ReadParams()
	if params.Has("query") {
		c.state.QueryText = params.Get("query")
	}
	if params.Has("max_hits") {
		if err := c.setMaxHitsLocked(params.Get("max_hits")); err != nil {
			slog.Debug("ignoring max_hits from location", slog.String("value", params.Get("max_hits")))
		}
	}
	index := params.Get("index")
	if index != "" {
		c.state.SearchInput = index
		c.state.SelectedIndex = index
	}
	c.mu.Unlock()

	if index == "" {
		return false, nil
	}
	return true, c.Run(ctx)
}

// LoadIndexes fetches the index list offered by the selector.
func (c *Controller) LoadIndexes(ctx context.Context) error {
	list, err := c.lister.ListIndexes(ctx)
	var cell indexes.Cell[[]client.IndexSummary]
	if err == nil {
		summaries := make([]client.IndexSummary, len(list))
		for i := range list {
			summaries[i] = list[i].Summary()
		}
		cell = indexes.Resolve(summaries, nil)
	} else {
		cell = indexes.Resolve[[]client.IndexSummary](nil, err)
	}

	c.mu.Lock()
	c.state.Indexes = cell
	c.mu.Unlock()
	return err
}

// FilteredIndexes returns the selector entries for the current input.
func (c *Controller) FilteredIndexes() []client.IndexSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filteredLocked()
}

// filteredLocked matches index ids case-insensitively against the search
// input. The selected index is always offered, whatever the input.
func (c *Controller) filteredLocked() []client.IndexSummary {
	needle := strings.ToLower(c.state.SearchInput)
	out := make([]client.IndexSummary, 0, len(c.state.Indexes.Value))
	for _, idx := range c.state.Indexes.Value {
		if strings.Contains(strings.ToLower(idx.IndexID), needle) || idx.IndexID == c.state.SelectedIndex {
			out = append(out, idx)
		}
	}
	return out
}

func (c *Controller) exactMatchLocked(id string) bool {
	for _, idx := range c.filteredLocked() {
		if idx.IndexID == id {
			return true
		}
	}
	return false
}

// SetSearchInput handles typing in the index box. An exact id match selects
// that index; clearing the box clears the selection.
func (c *Controller) SetSearchInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SearchInput = text
	if text == "" {
		c.state.SelectedIndex = ""
		return
	}
	if c.exactMatchLocked(text) {
		c.state.SelectedIndex = text
	}
}

// SelectIndex handles a click on a dropdown entry and closes the dropdown.
func (c *Controller) SelectIndex(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SearchInput = id
	if c.exactMatchLocked(id) {
		c.state.SelectedIndex = id
	} else {
		c.state.SelectedIndex = ""
	}
	c.state.DropdownOpen = false
}

// ClearIndex handles the clear button.
func (c *Controller) ClearIndex() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SelectedIndex = ""
	c.state.SearchInput = ""
}

// Focus opens the dropdown.
func (c *Controller) Focus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.DropdownOpen = true
}

// ToggleDropdown flips the dropdown.
func (c *Controller) ToggleDropdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.DropdownOpen = !c.state.DropdownOpen
}

// Blur handles focus leaving the index box. The dropdown closes and, unless
// the input names an offered index exactly, the input snaps back to the
// selected index. The selection itself never changes here.
func (c *Controller) Blur() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.DropdownOpen = false
	if !c.exactMatchLocked(c.state.SearchInput) {
		c.state.SearchInput = c.state.SelectedIndex
	}
}

// SetQuery sets the query text.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.QueryText = text
}

// SetMaxHits accepts integers in [1, 1000]; anything else is rejected with
// ErrInvalidMaxHits and the prior value is kept.
func (c *Controller) SetMaxHits(input string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setMaxHitsLocked(input)
}

func (c *Controller) setMaxHitsLocked(input string) error {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < client.MinMaxHits || n > client.MaxMaxHits {
		return fmt.Errorf("%w: %q", ErrInvalidMaxHits, input)
	}
	c.state.MaxHits = n
	return nil
}

// SetTimeRange sets the time range; nil removes time filtering.
func (c *Controller) SetTimeRange(r *timerange.Range) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.TimeRange = r
}

// CanRun reports whether an index is selected.
func (c *Controller) CanRun() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.SelectedIndex != ""
}

// Run searches the selected index with the current query, hit limit, sort
// field and time range lower bound, mirroring the request into the location.
// It is a no-op without a selected index. Each run takes a new token and only
// the latest run may update the session; older ones return ErrSuperseded.
// Failures are kept in the state as Err instead of leaving it loading.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.state.SelectedIndex == "" {
		c.mu.Unlock()
		return nil
	}
	c.issued++
	token := c.issued
	builder := c.backend.Query(c.state.SelectedIndex).
		WithQuery(c.state.QueryText).
		WithMaxHits(c.state.MaxHits).
		WithSortField(c.sortField).
		WithStartTimestamp(timerange.StartParam(c.state.TimeRange, c.now())).
		WithEndTimestamp(timerange.EndParam(c.state.TimeRange)).
		WithHistory(c.loc)
	c.state.Loading = true
	c.mu.Unlock()

	resp, err := builder.Execute(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.issued {
		slog.Debug("discarding superseded search",
			slog.Uint64("token", token),
			slog.Uint64("latest", c.issued),
		)
		return ErrSuperseded
	}
	c.state.Loading = false
	if err != nil {
		c.state.Err = err
		return err
	}
	c.state.Err = nil
	c.state.Response = resp
	c.table.SetHits(resp.Hits)
	return nil
}

// FieldMappings returns the doc mapping fields of the selected index, taken
// from the loaded index list.
func (c *Controller) FieldMappings() []client.FieldMapping {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, idx := range c.state.Indexes.Value {
		if idx.IndexID == c.state.SelectedIndex {
			return idx.FieldMappings
		}
	}
	return nil
}

// SetCollapseAll sets the global collapse flag of the hit table.
func (c *Controller) SetCollapseAll(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table.SetCollapseAll(v)
}

// ToggleRow flips a single hit row.
func (c *Controller) ToggleRow(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table.ToggleRow(i)
}

// CollapseAll returns the global collapse flag.
func (c *Controller) CollapseAll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table.CollapseAll()
}

// Rows renders the hits of the last response.
func (c *Controller) Rows() []render.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table.Rows()
}

// HitCount renders the summary line of the last response.
func (c *Controller) HitCount() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return render.HitCount(c.state.Response)
}
