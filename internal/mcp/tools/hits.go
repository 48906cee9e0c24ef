package tools

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/quickwit-mcp/internal/query"
	"github.com/usestring/quickwit-mcp/internal/schema"
)

// HitsQueryInput is the input for quickwit_hits_query.
type HitsQueryInput struct {
	SessionID   string `json:"session_id" jsonschema:"Editor session id"`
	Expression  string `json:"expression" jsonschema:"jq expression, run once per hit, e.g. 'select(.level == \"error\") | .message'"`
	Slurp       bool   `json:"slurp,omitempty" jsonschema:"Run the expression once over the array of all hits, e.g. 'group_by(.service) | map({service: .[0].service, n: length})'. Default: false"`
	Deduplicate bool   `json:"deduplicate,omitempty" jsonschema:"Remove duplicate values. Default: false"`
	MaxResults  int    `json:"max_results,omitempty" jsonschema:"Max values to return (default: 1000)"`
}

// HitsQueryOutput is the output for quickwit_hits_query.
type HitsQueryOutput struct {
	Values         []any    `json:"values,omitzero"`
	Errors         []string `json:"errors,omitzero"`
	RawCount       int      `json:"raw_count"`
	MatchedIndices []int    `json:"matched_indices,omitzero"`
	Truncated      bool     `json:"truncated,omitempty"`
}

const defaultMaxQueryResults = 1000

// ToolHitsQuery runs a jq expression over the last hits of a session.
func ToolHitsQuery(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input HitsQueryInput) (*sdkmcp.CallToolResult, HitsQueryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input HitsQueryInput) (*sdkmcp.CallToolResult, HitsQueryOutput, error) {
		if input.Expression == "" {
			return nil, HitsQueryOutput{}, ErrInvalidInput("expression is required")
		}
		hits, err := sessionHits(d, input.SessionID)
		if err != nil {
			return nil, HitsQueryOutput{}, err
		}

		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = defaultMaxQueryResults
		}
		result, err := d.Query.QueryHits(hits, input.Expression, query.Options{
			Slurp:       input.Slurp,
			Deduplicate: input.Deduplicate,
			MaxResults:  maxResults,
		})
		if err != nil {
			return nil, HitsQueryOutput{}, ErrInvalidInput(err.Error())
		}

		return nil, HitsQueryOutput{
			Values:         result.Values,
			Errors:         result.Errors,
			RawCount:       result.RawCount,
			MatchedIndices: result.MatchedIndices,
			Truncated:      result.Truncated,
		}, nil
	}
}

// HitsValidateInput is the input for quickwit_hits_validate.
type HitsValidateInput struct {
	SessionID string `json:"session_id" jsonschema:"Editor session id"`
	Schema    string `json:"schema,omitempty" jsonschema:"JSON Schema to validate against (default: derived from the doc mapping of the selected index)"`
}

// HitsValidateOutput is the output for quickwit_hits_validate.
type HitsValidateOutput struct {
	IndexID      string            `json:"index_id"`
	SchemaSource string            `json:"schema_source"` // doc_mapping or custom
	Valid        bool              `json:"valid"`
	Checked      int               `json:"checked"`
	Invalid      int               `json:"invalid"`
	Hits         []schema.HitError `json:"hits,omitzero"`
}

// ToolHitsValidate validates the last hits of a session against the doc
// mapping of the selected index or a supplied JSON Schema.
func ToolHitsValidate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input HitsValidateInput) (*sdkmcp.CallToolResult, HitsValidateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input HitsValidateInput) (*sdkmcp.CallToolResult, HitsValidateOutput, error) {
		hits, err := sessionHits(d, input.SessionID)
		if err != nil {
			return nil, HitsValidateOutput{}, err
		}
		s, _ := d.Session(input.SessionID)
		indexID := s.Editor.State().SelectedIndex

		out := HitsValidateOutput{IndexID: indexID}
		var v *schema.Validator
		if input.Schema != "" {
			out.SchemaSource = "custom"
			v, err = schema.NewValidatorFromJSON([]byte(input.Schema))
			if err != nil {
				return nil, HitsValidateOutput{}, ErrInvalidInput(err.Error())
			}
		} else {
			out.SchemaSource = "doc_mapping"
			if indexID == "" {
				return nil, HitsValidateOutput{}, ErrInvalidInput("no index selected; pass a schema or select an index")
			}
			idx, err := d.Catalog.Get(ctx, indexID)
			if err != nil {
				return nil, HitsValidateOutput{}, WrapQuickwitError(err)
			}
			v, err = schema.NewValidator(schema.FromFieldMappings(idx.IndexConfig.DocMapping.FieldMappings))
			if err != nil {
				return nil, HitsValidateOutput{}, err
			}
		}

		report := v.ValidateHits(hits)
		out.Valid = report.Valid
		out.Checked = report.Checked
		out.Invalid = report.Invalid
		out.Hits = report.Hits
		return nil, out, nil
	}
}

func sessionHits(d *Deps, sessionID string) ([]json.RawMessage, error) {
	s, err := d.Session(sessionID)
	if err != nil {
		return nil, err
	}
	resp := s.Editor.State().Response
	if resp == nil {
		return nil, ErrInvalidInput("session has no results; run a search first")
	}
	return resp.Hits, nil
}
