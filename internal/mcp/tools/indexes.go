package tools

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/quickwit-mcp/internal/indexes"
	"github.com/usestring/quickwit-mcp/internal/schema"
	"github.com/usestring/quickwit-mcp/pkg/client"
)

// ClusterInput is the input for quickwit_cluster.
type ClusterInput struct{}

// ClusterOutput is the output for quickwit_cluster.
type ClusterOutput struct {
	ClusterID  string `json:"cluster_id"`
	BackendURL string `json:"backend_url"`
}

// ToolCluster returns the cluster id.
func ToolCluster(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ClusterInput) (*sdkmcp.CallToolResult, ClusterOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ClusterInput) (*sdkmcp.CallToolResult, ClusterOutput, error) {
		cluster, err := d.Client.GetCluster(ctx)
		if err != nil {
			return nil, ClusterOutput{}, WrapQuickwitError(err)
		}
		return nil, ClusterOutput{ClusterID: cluster.ClusterID, BackendURL: d.Client.BaseURL()}, nil
	}
}

// IndexesListInput is the input for quickwit_indexes_list.
type IndexesListInput struct {
	Filter  string `json:"filter,omitempty" jsonschema:"Case-insensitive substring of the index id"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"Bypass the index cache. Default: false"`
}

// IndexesListOutput is the output for quickwit_indexes_list.
type IndexesListOutput struct {
	Indexes []IndexInfo `json:"indexes,omitzero"`
	Count   int         `json:"count"`
}

// ToolIndexesList lists indexes.
func ToolIndexesList(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input IndexesListInput) (*sdkmcp.CallToolResult, IndexesListOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input IndexesListInput) (*sdkmcp.CallToolResult, IndexesListOutput, error) {
		if input.Refresh {
			d.Catalog.Invalidate()
		}
		list, err := d.Catalog.ListIndexes(ctx)
		if err != nil {
			return nil, IndexesListOutput{}, WrapQuickwitError(err)
		}

		needle := strings.ToLower(input.Filter)
		var out IndexesListOutput
		for i := range list {
			if !strings.Contains(strings.ToLower(list[i].IndexConfig.IndexID), needle) {
				continue
			}
			out.Indexes = append(out.Indexes, indexInfo(list[i].Summary()))
		}
		out.Count = len(out.Indexes)
		return nil, out, nil
	}
}

// IndexDetailsInput is the input for quickwit_index_details.
type IndexDetailsInput struct {
	IndexID string `json:"index_id" jsonschema:"Index id"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"Collapse and re-expand the row to refetch its statistics. Default: false"`
}

// IndexDetailsOutput is the output for quickwit_index_details.
type IndexDetailsOutput struct {
	Index  IndexInfo           `json:"index"`
	Rows   []indexes.DetailRow `json:"rows,omitzero"`
	Cells  map[string]string   `json:"cells,omitempty"`  // fetch state per statistic group
	Errors map[string]string   `json:"errors,omitempty"` // failure message per failed group
}

// ToolIndexDetails expands an index row of the browser.
func ToolIndexDetails(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input IndexDetailsInput) (*sdkmcp.CallToolResult, IndexDetailsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input IndexDetailsInput) (*sdkmcp.CallToolResult, IndexDetailsOutput, error) {
		if input.IndexID == "" {
			return nil, IndexDetailsOutput{}, ErrInvalidInput("index_id is required")
		}
		if input.Refresh {
			d.Browser.Collapse(input.IndexID)
		}
		if _, err := d.Catalog.Get(ctx, input.IndexID); err != nil {
			return nil, IndexDetailsOutput{}, WrapQuickwitError(err)
		}

		details, err := d.Browser.Expand(ctx, input.IndexID)
		if err != nil {
			return nil, IndexDetailsOutput{}, WrapQuickwitError(err)
		}

		out := IndexDetailsOutput{
			Index: indexInfo(details.Summary),
			Rows:  details.Rows(),
			Cells: map[string]string{
				"description": string(details.Description.State),
				"indexing":    string(details.Indexing.State),
				"splits":      string(details.Splits.State),
			},
		}
		for name, msg := range map[string]string{
			"description": details.Description.ErrorString(),
			"indexing":    details.Indexing.ErrorString(),
			"splits":      details.Splits.ErrorString(),
		} {
			if msg == "" {
				continue
			}
			if out.Errors == nil {
				out.Errors = make(map[string]string)
			}
			out.Errors[name] = msg
		}
		return nil, out, nil
	}
}

// IndexFieldsInput is the input for quickwit_index_fields.
type IndexFieldsInput struct {
	IndexID string `json:"index_id" jsonschema:"Index id"`
}

// IndexFieldsOutput is the output for quickwit_index_fields.
type IndexFieldsOutput struct {
	IndexID        string                `json:"index_id"`
	TimestampField string                `json:"timestamp_field,omitempty"`
	Fields         []client.FieldMapping `json:"fields,omitzero"`
	Schema         map[string]any        `json:"schema,omitempty"` // JSON Schema derived from the doc mapping
}

// ToolIndexFields returns the field mappings of an index.
func ToolIndexFields(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input IndexFieldsInput) (*sdkmcp.CallToolResult, IndexFieldsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input IndexFieldsInput) (*sdkmcp.CallToolResult, IndexFieldsOutput, error) {
		if input.IndexID == "" {
			return nil, IndexFieldsOutput{}, ErrInvalidInput("index_id is required")
		}
		idx, err := d.Catalog.Get(ctx, input.IndexID)
		if err != nil {
			return nil, IndexFieldsOutput{}, WrapQuickwitError(err)
		}

		summary := idx.Summary()
		derived, err := schema.ToMap(schema.FromFieldMappings(summary.FieldMappings))
		if err != nil {
			return nil, IndexFieldsOutput{}, err
		}
		return nil, IndexFieldsOutput{
			IndexID:        summary.IndexID,
			TimestampField: summary.TimestampField,
			Fields:         summary.FieldMappings,
			Schema:         derived,
		}, nil
	}
}
