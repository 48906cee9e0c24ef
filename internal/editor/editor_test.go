package editor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/quickwit-mcp/pkg/client"
	"github.com/usestring/quickwit-mcp/pkg/location"
	"github.com/usestring/quickwit-mcp/pkg/timerange"
)

const indexesJSON = `[
  {"index_config": {"index_id": "app-logs", "index_uri": "s3://b/app-logs", "doc_mapping": {"field_mappings": [{"name": "body", "type": "text"}]}}, "create_timestamp": 1, "sources": []},
  {"index_config": {"index_id": "Audit-LOG", "index_uri": "s3://b/audit", "doc_mapping": {"field_mappings": []}}, "create_timestamp": 1, "sources": []},
  {"index_config": {"index_id": "traces", "index_uri": "s3://b/traces", "doc_mapping": {"field_mappings": []}}, "create_timestamp": 1, "sources": []}
]`

type fakeQuickwit struct {
	srv      *httptest.Server
	searches atomic.Int32
	mu       sync.Mutex
	lastURI  string
	status   int
	block    map[string]chan struct{}
}

func newFakeQuickwit(t *testing.T) *fakeQuickwit {
	t.Helper()
	f := &fakeQuickwit{status: http.StatusOK, block: map[string]chan struct{}{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/indexes" {
			_, _ = w.Write([]byte(indexesJSON))
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/search") {
			http.NotFound(w, r)
			return
		}
		f.searches.Add(1)
		query := r.URL.Query().Get("query")

		f.mu.Lock()
		f.lastURI = r.URL.RequestURI()
		status := f.status
		wait := f.block[query]
		f.mu.Unlock()
		if wait != nil {
			<-wait
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"failed"}`))
			return
		}
		_, _ = w.Write([]byte(`{"elapsed_time_micros": 10, "num_hits": 1, "hits": [{"q": "` + query + `"}]}`))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeQuickwit) client() *client.Client {
	return client.New(client.WithBaseURL(f.srv.URL))
}

func (f *fakeQuickwit) uri() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastURI
}

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newController(t *testing.T, f *fakeQuickwit, rawURL string) (*Controller, *location.Memory) {
	t.Helper()
	loc, err := location.NewMemory(rawURL)
	require.NoError(t, err)
	c := New(f.client(), loc, WithClock(func() time.Time { return fixedNow }))
	return c, loc
}

func TestNew_Defaults(t *testing.T) {
	c, _ := newController(t, newFakeQuickwit(t), "")
	s := c.State()
	assert.Equal(t, "*", s.QueryText)
	assert.Equal(t, 20, s.MaxHits)
	assert.Empty(t, s.SelectedIndex)
	assert.Nil(t, s.TimeRange)
	assert.True(t, c.CollapseAll())
	assert.Equal(t, "0 hits found in 0.00 seconds", c.HitCount())
}

func TestHydrate_FromLocation(t *testing.T) {
	f := newFakeQuickwit(t)
	c, loc := newController(t, f, "http://console/search?query=foo&max_hits=10&index=logs")

	searched, err := c.Hydrate(context.Background())
	require.NoError(t, err)
	assert.True(t, searched)

	s := c.State()
	assert.Equal(t, "foo", s.QueryText)
	assert.Equal(t, 10, s.MaxHits)
	assert.Equal(t, "logs", s.SelectedIndex)
	assert.Equal(t, "logs", s.SearchInput)
	assert.Equal(t, int32(1), f.searches.Load())
	assert.Equal(t, "/api/v1/logs/search?query=foo&max_hits=10&sort_by_field=timestamp_nanos&start_timestamp=&end_timestamp=", f.uri())
	assert.Equal(t, "index=logs&query=foo&max_hits=10&sort_by_field=timestamp_nanos&start_timestamp=&end_timestamp=", loc.Current())

	// Hydration happens once.
	searched, err = c.Hydrate(context.Background())
	require.NoError(t, err)
	assert.False(t, searched)
	assert.Equal(t, int32(1), f.searches.Load())
}

func TestHydrate_WithoutIndexDoesNotSearch(t *testing.T) {
	f := newFakeQuickwit(t)
	c, _ := newController(t, f, "?query=bar&max_hits=5000")

	searched, err := c.Hydrate(context.Background())
	require.NoError(t, err)
	assert.False(t, searched)
	assert.Equal(t, "bar", c.State().QueryText)
	assert.Equal(t, 20, c.State().MaxHits, "out of range max_hits is ignored")
	assert.Equal(t, int32(0), f.searches.Load())
}

func TestSetMaxHits(t *testing.T) {
	c, _ := newController(t, newFakeQuickwit(t), "")

	require.NoError(t, c.SetMaxHits("50"))
	for _, bad := range []string{"0", "1001", "abc", "", "-5", "2.5"} {
		err := c.SetMaxHits(bad)
		assert.True(t, errors.Is(err, ErrInvalidMaxHits), bad)
		assert.Equal(t, 50, c.State().MaxHits, bad)
	}

	require.NoError(t, c.SetMaxHits("1"))
	assert.Equal(t, 1, c.State().MaxHits)
	require.NoError(t, c.SetMaxHits("1000"))
	assert.Equal(t, 1000, c.State().MaxHits)
}

func TestRun_NoopWithoutSelection(t *testing.T) {
	f := newFakeQuickwit(t)
	c, loc := newController(t, f, "")

	assert.False(t, c.CanRun())
	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, int32(0), f.searches.Load())
	assert.Equal(t, 1, loc.Len())
}

func TestRun_BuildsRequestFromState(t *testing.T) {
	f := newFakeQuickwit(t)
	c, loc := newController(t, f, "")
	ctx := context.Background()
	require.NoError(t, c.LoadIndexes(ctx))

	c.SelectIndex("traces")
	c.SetQuery("error AND level:5")
	require.NoError(t, c.SetMaxHits("50"))
	c.SetTimeRange(timerange.Preset(timerange.Last15Min))

	require.True(t, c.CanRun())
	require.NoError(t, c.Run(ctx))

	start := "1710071100" // fixedNow - 15m
	assert.Equal(t, "/api/v1/traces/search?query=error%20AND%20level%3A5&max_hits=50&sort_by_field=timestamp_nanos&start_timestamp="+start+"&end_timestamp=", f.uri())
	assert.Equal(t, "index=traces&query=error%20AND%20level%3A5&max_hits=50&sort_by_field=timestamp_nanos&start_timestamp="+start+"&end_timestamp=", loc.Current())

	s := c.State()
	assert.False(t, s.Loading)
	assert.NoError(t, s.Err)
	require.NotNil(t, s.Response)
	assert.Equal(t, int64(1), s.Response.NumHits)
	require.Len(t, c.Rows(), 1)
	assert.Equal(t, "error AND level:5", c.Rows()[0].Fields[0].Value)
}

func TestRun_FailureSetsErrorState(t *testing.T) {
	f := newFakeQuickwit(t)
	f.status = http.StatusInternalServerError
	c, _ := newController(t, f, "?index=logs")

	_, err := c.Hydrate(context.Background())
	require.Error(t, err)

	s := c.State()
	assert.False(t, s.Loading, "a failed run does not stay loading")
	require.Error(t, s.Err)
	var apiErr *client.APIError
	assert.True(t, errors.As(s.Err, &apiErr))
	assert.Nil(t, s.Response)
}

func TestRun_LatestRunWins(t *testing.T) {
	f := newFakeQuickwit(t)
	release := make(chan struct{})
	f.block["slow"] = release
	c, _ := newController(t, f, "?index=logs")
	ctx := context.Background()
	c.SetSearchInput("logs")
	c.mu.Lock()
	c.state.SelectedIndex = "logs"
	c.mu.Unlock()

	c.SetQuery("slow")
	slowDone := make(chan error, 1)
	go func() { slowDone <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return f.searches.Load() == 1 }, time.Second, time.Millisecond)

	c.SetQuery("fast")
	require.NoError(t, c.Run(ctx))
	assert.Equal(t, "fast", c.Rows()[0].Fields[0].Value)

	close(release)
	assert.True(t, errors.Is(<-slowDone, ErrSuperseded))

	s := c.State()
	assert.False(t, s.Loading)
	assert.Equal(t, "fast", c.Rows()[0].Fields[0].Value, "stale response is discarded")
}

func TestFilteredIndexes(t *testing.T) {
	c, _ := newController(t, newFakeQuickwit(t), "")
	require.NoError(t, c.LoadIndexes(context.Background()))

	c.SetSearchInput("log")
	assert.Empty(t, c.State().SelectedIndex)
	assert.Equal(t, []string{"app-logs", "Audit-LOG"}, ids(c.FilteredIndexes()))

	c.SetSearchInput("LOG")
	assert.Equal(t, []string{"app-logs", "Audit-LOG"}, ids(c.FilteredIndexes()))

	// The selected index stays on offer even when it does not match.
	c.SelectIndex("traces")
	c.SetSearchInput("log")
	assert.Equal(t, "traces", c.State().SelectedIndex)
	assert.Equal(t, []string{"app-logs", "Audit-LOG", "traces"}, ids(c.FilteredIndexes()))

	// Non-matching indexes other than the selection are filtered out.
	c.SelectIndex("app-logs")
	c.SetSearchInput("trac")
	assert.Equal(t, "app-logs", c.State().SelectedIndex)
	assert.Equal(t, []string{"app-logs", "traces"}, ids(c.FilteredIndexes()))
}

func TestSelection(t *testing.T) {
	c, _ := newController(t, newFakeQuickwit(t), "")
	require.NoError(t, c.LoadIndexes(context.Background()))

	c.ToggleDropdown()
	assert.True(t, c.State().DropdownOpen)
	c.ToggleDropdown()
	assert.False(t, c.State().DropdownOpen)

	c.Focus()
	assert.True(t, c.State().DropdownOpen)

	// Typing an exact id selects it.
	c.SetSearchInput("traces")
	assert.Equal(t, "traces", c.State().SelectedIndex)

	// Clearing the input clears the selection.
	c.SetSearchInput("")
	assert.Empty(t, c.State().SelectedIndex)

	// Clicking an entry selects it and closes the dropdown.
	c.SelectIndex("app-logs")
	s := c.State()
	assert.Equal(t, "app-logs", s.SelectedIndex)
	assert.Equal(t, "app-logs", s.SearchInput)
	assert.False(t, s.DropdownOpen)

	// Clicking an id that is not offered clears the selection.
	c.ClearIndex()
	c.SetSearchInput("trac")
	c.SelectIndex("unknown")
	assert.Empty(t, c.State().SelectedIndex)

	c.SelectIndex("app-logs")
	c.ClearIndex()
	s = c.State()
	assert.Empty(t, s.SelectedIndex)
	assert.Empty(t, s.SearchInput)
}

func TestBlur_SnapsBackToSelection(t *testing.T) {
	c, _ := newController(t, newFakeQuickwit(t), "")
	require.NoError(t, c.LoadIndexes(context.Background()))

	c.SelectIndex("traces")
	c.Focus()
	c.SetSearchInput("tra")
	c.Blur()

	s := c.State()
	assert.Equal(t, "traces", s.SearchInput, "partial input reverts to the selection")
	assert.Equal(t, "traces", s.SelectedIndex, "blur never changes the selection")
	assert.False(t, s.DropdownOpen)

	c.ClearIndex()
	c.SetSearchInput("zzz")
	c.Blur()
	assert.Empty(t, c.State().SearchInput, "reverts to empty without a selection")

	c.SetSearchInput("app-logs")
	c.Blur()
	assert.Equal(t, "app-logs", c.State().SearchInput, "exact match survives blur")
}

func TestFieldMappingsAndTable(t *testing.T) {
	f := newFakeQuickwit(t)
	c, _ := newController(t, f, "")
	ctx := context.Background()
	require.NoError(t, c.LoadIndexes(ctx))

	assert.Nil(t, c.FieldMappings())
	c.SelectIndex("app-logs")
	assert.Equal(t, []client.FieldMapping{{Name: "body", Type: "text"}}, c.FieldMappings())

	require.NoError(t, c.Run(ctx))
	require.NoError(t, c.ToggleRow(0))
	assert.False(t, c.Rows()[0].Collapsed)
	c.SetCollapseAll(true)
	assert.True(t, c.Rows()[0].Collapsed)
	assert.Error(t, c.ToggleRow(5))
}

func ids(list []client.IndexSummary) []string {
	out := make([]string, len(list))
	for i, idx := range list {
		out[i] = idx.IndexID
	}
	return out
}
