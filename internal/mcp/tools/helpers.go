package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/quickwit-mcp/internal/editor"
	"github.com/usestring/quickwit-mcp/internal/indexes"
	"github.com/usestring/quickwit-mcp/internal/render"
	"github.com/usestring/quickwit-mcp/pkg/client"
	"github.com/usestring/quickwit-mcp/pkg/timerange"
)

// MimeJSON is the MIME type for JSON content.
const MimeJSON = "application/json"

// MakeJSONToolResult creates a CallToolResult with JSON content.
func MakeJSONToolResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

// IndexInfo is the tool view of an index summary.
type IndexInfo struct {
	IndexID        string                `json:"index_id"`
	IndexURI       string                `json:"index_uri"`
	CreatedAt      string                `json:"created_at"`
	TimestampField string                `json:"timestamp_field,omitempty"`
	SourceCount    int                   `json:"source_count"`
	FieldMappings  []client.FieldMapping `json:"field_mappings,omitzero"`
}

func indexInfo(s client.IndexSummary) IndexInfo {
	return IndexInfo{
		IndexID:        s.IndexID,
		IndexURI:       s.IndexURI,
		CreatedAt:      indexes.FormatUTC(s.CreatedAt),
		TimestampField: s.TimestampField,
		SourceCount:    s.SourceCount,
		FieldMappings:  s.FieldMappings,
	}
}

// ResultsView is the rendered outcome of a search.
type ResultsView struct {
	HitCount       string       `json:"hit_count"`
	NumHits        int64        `json:"num_hits"`
	ElapsedSeconds float64      `json:"elapsed_seconds"`
	CollapseAll    bool         `json:"collapse_all"`
	Rows           []render.Row `json:"rows,omitzero"`
}

// SessionView is the view model of an editor session.
type SessionView struct {
	SessionID     string       `json:"session_id"`
	URL           string       `json:"url"`
	Query         string       `json:"query"`
	SelectedIndex string       `json:"selected_index,omitempty"`
	SearchInput   string       `json:"search_input"`
	MaxHits       int          `json:"max_hits"`
	TimeRange     string       `json:"time_range"`
	DropdownOpen  bool         `json:"dropdown_open"`
	Indexes       []string     `json:"indexes,omitzero"` // selector entries for the current input
	IndexesError  string       `json:"indexes_error,omitempty"`
	CanRun        bool         `json:"can_run"`
	Loading       bool         `json:"loading"`
	Error         string       `json:"error,omitempty"`
	ErrorCode     string       `json:"error_code,omitempty"`
	Results       *ResultsView `json:"results,omitempty"`
}

func sessionView(s *Session) SessionView {
	ctrl := s.Editor
	state := ctrl.State()

	v := SessionView{
		SessionID:     s.ID,
		URL:           "?" + s.Location.Current(),
		Query:         state.QueryText,
		SelectedIndex: state.SelectedIndex,
		SearchInput:   state.SearchInput,
		MaxHits:       state.MaxHits,
		TimeRange:     timerange.Describe(state.TimeRange),
		DropdownOpen:  state.DropdownOpen,
		IndexesError:  state.Indexes.ErrorString(),
		CanRun:        state.SelectedIndex != "",
		Loading:       state.Loading,
	}
	for _, idx := range ctrl.FilteredIndexes() {
		v.Indexes = append(v.Indexes, idx.IndexID)
	}
	if state.Err != nil {
		v.Error = state.Err.Error()
		v.ErrorCode = classify(state.Err).Code
	}
	if state.Response != nil {
		v.Results = resultsView(state.Response, ctrl)
	}
	return v
}

// rowSource is the part of a result table the views read.
type rowSource interface {
	Rows() []render.Row
	CollapseAll() bool
}

func resultsView(resp *client.QueryResponse, rows rowSource) *ResultsView {
	return &ResultsView{
		HitCount:       render.HitCount(resp),
		NumHits:        resp.NumHits,
		ElapsedSeconds: resp.ElapsedTimeMicros / 1e6,
		CollapseAll:    rows.CollapseAll(),
		Rows:           rows.Rows(),
	}
}

var _ rowSource = (*editor.Controller)(nil)
var _ rowSource = (*render.Table)(nil)

// parseTimeRange accepts a preset label or key, "custom:<start>,<end>" in
// yyyy/mm/dd hh:mm:ss, or "" / "none" for no range.
func parseTimeRange(s string) (*timerange.Range, error) {
	if rest, ok := strings.CutPrefix(strings.TrimSpace(s), "custom:"); ok {
		start, end, found := strings.Cut(rest, ",")
		if !found {
			return nil, ErrInvalidInput("custom time range must be custom:<start>,<end>")
		}
		r, err := timerange.ParseCustom(start, end)
		if err != nil {
			return nil, WrapQuickwitError(err)
		}
		return r, nil
	}
	r, err := timerange.Parse(s)
	if err != nil {
		return nil, WrapQuickwitError(err)
	}
	return r, nil
}
