package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleExploreIndex guides an investigation of one index with the editor
// tools.
func HandleExploreIndex(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := req.Params.Arguments
		index := args["index"]
		goal := args["goal"]

		var sb strings.Builder
		sb.WriteString("# Explore a Quickwit Index\n\n")
		fmt.Fprintf(&sb, "You are investigating log or trace data stored in the Quickwit cluster at %s.\n\n", cfg.BackendURL)
		if goal != "" {
			fmt.Fprintf(&sb, "**Goal**: %s\n\n", goal)
		}

		sb.WriteString("## Workflow\n\n")
		if index == "" {
			sb.WriteString("1. **Pick an index** with `quickwit_indexes_list` (use `filter` to narrow by id).\n")
		} else {
			fmt.Fprintf(&sb, "1. **Index**: `%s`. Confirm it exists with `quickwit_indexes_list` (filter: %q).\n", index, index)
		}
		sb.WriteString("2. **Size it up** with `quickwit_index_details`: published docs, split counts and sizes.\n")
		sb.WriteString("3. **Learn the fields** with `quickwit_index_fields` before writing queries.\n")
		if index == "" {
			sb.WriteString("4. **Open an editor** with `quickwit_editor_open`, then select the index with `quickwit_editor_update` (select_index).\n")
		} else {
			fmt.Fprintf(&sb, "4. **Open an editor** with `quickwit_editor_open` and url `?index=%s` to run a first search immediately.\n", index)
		}
		sb.WriteString("5. **Iterate** with `quickwit_editor_update` (query, max_hits, time_range, run: true).\n")
		sb.WriteString("6. **Dig into hits** with `quickwit_hits_query` (jq) and check them with `quickwit_hits_validate`.\n\n")

		sb.WriteString("## Editor Behavior\n\n")
		fmt.Fprintf(&sb, "- A new session starts with query `*`, %d hits and no time range.\n", cfg.DefaultMaxHits)
		fmt.Fprintf(&sb, "- Every run sorts by `%s` and filters on the time range lower bound only.\n", cfg.SortByField)
		sb.WriteString("- max_hits accepts 1 to 1000; invalid values are rejected and the previous value kept.\n")
		sb.WriteString("- Time ranges: 15m, 30m, 1h, 7d, 30d, 3M, 1y, or custom:<yyyy/mm/dd hh:mm:ss>,<yyyy/mm/dd hh:mm:ss>.\n")
		sb.WriteString("- The session url (`?index=...&query=...`) reflects the last run and can be reopened later.\n\n")

		sb.WriteString("## Query Tips\n\n")
		sb.WriteString("- `field:value` matches a field, `AND` / `OR` / `NOT` combine clauses, `*` matches everything.\n")
		sb.WriteString("- Start broad with few hits, then narrow the query before raising max_hits.\n")
		sb.WriteString("- Prefer `quickwit_hits_query` with slurp=true for counts and group-bys over reading rows.\n")

		return &sdkmcp.GetPromptResult{
			Description: "Explore a Quickwit index",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
