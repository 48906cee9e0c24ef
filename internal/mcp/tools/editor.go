package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/quickwit-mcp/internal/editor"
)

// EditorOpenInput is the input for quickwit_editor_open.
type EditorOpenInput struct {
	URL string `json:"url,omitempty" jsonschema:"Console URL or query string to restore, e.g. '?index=logs&query=level:error&max_hits=50'. When it names an index, one search runs immediately."`
}

// EditorSessionInput identifies an editor session.
type EditorSessionInput struct {
	SessionID string `json:"session_id" jsonschema:"Editor session id from quickwit_editor_open"`
}

// EditorUpdateInput is the input for quickwit_editor_update. Edits apply
// in field order.
type EditorUpdateInput struct {
	SessionID      string  `json:"session_id" jsonschema:"Editor session id from quickwit_editor_open"`
	ClearIndex     bool    `json:"clear_index,omitempty" jsonschema:"Clear the index selection and the index box"`
	Focus          bool    `json:"focus,omitempty" jsonschema:"Open the index dropdown"`
	ToggleDropdown bool    `json:"toggle_dropdown,omitempty" jsonschema:"Open or close the index dropdown (the arrow button)"`
	SearchInput    *string `json:"search_input,omitempty" jsonschema:"Type into the index box. An exact index id selects it; empty text clears the selection."`
	SelectIndex    *string `json:"select_index,omitempty" jsonschema:"Pick an entry of the index dropdown"`
	Blur           bool    `json:"blur,omitempty" jsonschema:"Leave the index box: closes the dropdown and reverts partial input to the selected index"`
	Query          *string `json:"query,omitempty" jsonschema:"Query text"`
	MaxHits        *string `json:"max_hits,omitempty" jsonschema:"Hit limit as typed, 1 to 1000. Invalid values are rejected and the previous limit kept."`
	TimeRange      *string `json:"time_range,omitempty" jsonschema:"Preset (15m, 30m, 1h, 7d, 30d, 3M, 1y or its label), custom:<start>,<end> or none"`
	CollapseAll    *bool   `json:"collapse_all,omitempty" jsonschema:"Collapse (true) or expand (false) every result row"`
	ToggleRows     []int   `json:"toggle_rows,omitempty" jsonschema:"Result row indices to expand or collapse individually"`
	Run            bool    `json:"run,omitempty" jsonschema:"Run the search after applying the edits"`
}

// EditorUpdateOutput is the output for quickwit_editor_update.
type EditorUpdateOutput struct {
	Session  SessionView `json:"session"`
	Rejected []string    `json:"rejected,omitzero"` // edits that were refused, with the reason
}

// ToolEditorOpen opens an editor session.
func ToolEditorOpen(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorOpenInput) (*sdkmcp.CallToolResult, SessionView, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorOpenInput) (*sdkmcp.CallToolResult, SessionView, error) {
		s, err := d.OpenSession(ctx, input.URL)
		if err != nil {
			return nil, SessionView{}, err
		}
		return nil, sessionView(s), nil
	}
}

// ToolEditorView returns the view of an editor session.
func ToolEditorView(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, SessionView, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, SessionView, error) {
		s, err := d.Session(input.SessionID)
		if err != nil {
			return nil, SessionView{}, err
		}
		return nil, sessionView(s), nil
	}
}

// ToolEditorRun runs the search of an editor session. A failed search is
// reported in the view, not as a tool error.
func ToolEditorRun(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, SessionView, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorSessionInput) (*sdkmcp.CallToolResult, SessionView, error) {
		s, err := d.Session(input.SessionID)
		if err != nil {
			return nil, SessionView{}, err
		}
		if !s.Editor.CanRun() {
			return nil, SessionView{}, ErrInvalidInput("select an index before running a search")
		}
		runEditor(ctx, s)
		return nil, sessionView(s), nil
	}
}

// runEditor runs the session search. Failures stay in the session state.
func runEditor(ctx context.Context, s *Session) {
	if err := s.Editor.Run(ctx); err != nil && !errors.Is(err, editor.ErrSuperseded) {
		slog.Warn("editor search failed",
			slog.String("session", s.ID),
			slog.String("error", err.Error()),
		)
	}
}

// ToolEditorUpdate applies edits to an editor session.
func ToolEditorUpdate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorUpdateInput) (*sdkmcp.CallToolResult, EditorUpdateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input EditorUpdateInput) (*sdkmcp.CallToolResult, EditorUpdateOutput, error) {
		s, err := d.Session(input.SessionID)
		if err != nil {
			return nil, EditorUpdateOutput{}, err
		}
		ctrl := s.Editor
		var rejected []string

		if input.ClearIndex {
			ctrl.ClearIndex()
		}
		if input.Focus {
			ctrl.Focus()
		}
		if input.ToggleDropdown {
			ctrl.ToggleDropdown()
		}
		if input.SearchInput != nil {
			ctrl.SetSearchInput(*input.SearchInput)
		}
		if input.SelectIndex != nil {
			ctrl.SelectIndex(*input.SelectIndex)
		}
		if input.Blur {
			ctrl.Blur()
		}
		if input.Query != nil {
			ctrl.SetQuery(*input.Query)
		}
		if input.MaxHits != nil {
			if err := ctrl.SetMaxHits(*input.MaxHits); err != nil {
				rejected = append(rejected, "max_hits: "+err.Error())
			}
		}
		if input.TimeRange != nil {
			if r, err := parseTimeRange(*input.TimeRange); err != nil {
				rejected = append(rejected, "time_range: "+err.Error())
			} else {
				ctrl.SetTimeRange(r)
			}
		}
		if input.CollapseAll != nil {
			ctrl.SetCollapseAll(*input.CollapseAll)
		}
		for _, i := range input.ToggleRows {
			if err := ctrl.ToggleRow(i); err != nil {
				rejected = append(rejected, fmt.Sprintf("toggle_rows[%d]: %v", i, err))
			}
		}
		if input.Run {
			if ctrl.CanRun() {
				runEditor(ctx, s)
			} else {
				rejected = append(rejected, "run: no index selected")
			}
		}

		return nil, EditorUpdateOutput{Session: sessionView(s), Rejected: rejected}, nil
	}
}

// ViewSession returns the view of an editor session.
func ViewSession(d *Deps, sessionID string) (SessionView, error) {
	s, err := d.Session(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return sessionView(s), nil
}
