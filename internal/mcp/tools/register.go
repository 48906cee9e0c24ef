package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "quickwit_cluster",
		Description: "Get the Quickwit cluster id and the backend URL the console talks to",
	}, ToolCluster(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "quickwit_indexes_list",
		Description: "List Quickwit indexes with URI, creation time, timestamp field and field mappings. Optional case-insensitive filter on the index id.",
	}, ToolIndexesList(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "quickwit_index_details",
		Description: "Expand an index: published documents and splits with sizes, staged splits and splits marked for deletion. Each statistic group is fetched independently; a failed group reports its error without hiding the others.",
	}, ToolIndexDetails(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "quickwit_index_fields",
		Description: "Get the field mappings of an index and a JSON Schema derived from them. Use before writing queries or jq expressions against hits.",
	}, ToolIndexFields(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "quickwit_search",
		Description: "Run a one-off search against an index. Returns the request path, the console query string mirroring it, a hit count summary and rendered rows (key/value pairs, or pretty JSON with expanded=true). For iterative exploration use the editor tools instead.",
	}, ToolSearch(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "quickwit_editor_open",
		Description: "Open a query editor session (default query *, 20 hits, no time range). Pass a console url to restore query, max_hits and index; a url naming an index runs one search immediately. Returns the session view including session_id.",
	}, ToolEditorOpen(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "quickwit_editor_update",
		Description: "Edit an editor session: index box typing and selection, query, max_hits, time range, row collapse state, optionally followed by a run. Rejected edits are listed and leave the previous value in place.",
	}, ToolEditorUpdate(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "quickwit_editor_run",
		Description: "Run the search of an editor session and update its url. Requires a selected index. Search failures are reported in the session view (error, error_code).",
	}, ToolEditorRun(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "quickwit_editor_view",
		Description: "Get the view of an editor session: url, query state, index dropdown entries, results.",
	}, ToolEditorView(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "quickwit_hits_query",
		Description: "Run a jq expression over the last hits of an editor session. Per hit by default; slurp=true runs once over the array of hits.",
	}, ToolHitsQuery(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "quickwit_hits_validate",
		Description: "Validate the last hits of an editor session against the doc mapping of the selected index, or against a supplied JSON Schema.",
	}, ToolHitsValidate(d))
}
