package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/quickwit-mcp/internal/editor"
	"github.com/usestring/quickwit-mcp/internal/render"
	"github.com/usestring/quickwit-mcp/pkg/client"
	"github.com/usestring/quickwit-mcp/pkg/timerange"
)

// SearchInput is the input for quickwit_search.
type SearchInput struct {
	IndexID     string `json:"index_id" jsonschema:"Index to search"`
	Query       string `json:"query,omitempty" jsonschema:"Quickwit query language, e.g. 'level:error AND service:api' (default: *)"`
	MaxHits     int    `json:"max_hits,omitempty" jsonschema:"Maximum hits to return, 1 to 1000 (default: 20)"`
	SortByField string `json:"sort_by_field,omitempty" jsonschema:"Sort field (default: timestamp_nanos)"`
	TimeRange   string `json:"time_range,omitempty" jsonschema:"Lower time bound: a preset (15m, 30m, 1h, 7d, 30d, 3M, 1y or its label such as 'Last 7 days') or custom:<yyyy/mm/dd hh:mm:ss>,<yyyy/mm/dd hh:mm:ss>"`
	Expanded    bool   `json:"expanded,omitempty" jsonschema:"Render hits as pretty JSON instead of key/value pairs. Default: false"`
}

// SearchOutput is the output for quickwit_search.
type SearchOutput struct {
	Request   string      `json:"request"`
	Location  string      `json:"location"`
	TimeRange string      `json:"time_range"`
	Results   ResultsView `json:"results"`
}

// ToolSearch runs a one-off search outside any editor session.
func ToolSearch(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
		if input.IndexID == "" {
			return nil, SearchOutput{}, ErrInvalidInput("index_id is required")
		}

		maxHits := input.MaxHits
		if maxHits == 0 {
			maxHits = d.Config.DefaultMaxHits
		}
		if maxHits < client.MinMaxHits || maxHits > client.MaxMaxHits {
			return nil, SearchOutput{}, WrapQuickwitError(fmt.Errorf("%w: %d", editor.ErrInvalidMaxHits, maxHits))
		}
		query := input.Query
		if query == "" {
			query = editor.DefaultQuery
		}
		sortField := input.SortByField
		if sortField == "" {
			sortField = d.Config.SortByField
		}
		r, err := parseTimeRange(input.TimeRange)
		if err != nil {
			return nil, SearchOutput{}, err
		}

		builder := d.Client.Query(input.IndexID).
			WithQuery(query).
			WithMaxHits(maxHits).
			WithSortField(sortField).
			WithStartTimestamp(timerange.StartParam(r, d.Now())).
			WithEndTimestamp(timerange.EndParam(r))
		request := builder.Request()

		resp, err := builder.Execute(ctx)
		if err != nil {
			return nil, SearchOutput{}, WrapQuickwitError(err)
		}

		table := render.NewTable(render.WithTimestampField(d.Config.TimestampField))
		table.SetHits(resp.Hits)
		table.SetCollapseAll(!input.Expanded)

		return nil, SearchOutput{
			Request:   request.Path(),
			Location:  request.LocationQuery(),
			TimeRange: timerange.Describe(r),
			Results:   *resultsView(resp, table),
		}, nil
	}
}
