package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/quickwit-mcp/internal/config"
	"github.com/usestring/quickwit-mcp/internal/mcp/tools"
	"github.com/usestring/quickwit-mcp/pkg/client"
)

const logsIndexJSON = `{"index_config": {"index_id": "app-logs", "index_uri": "s3://bucket/app-logs", "doc_mapping": {"field_mappings": [{"name": "body", "type": "text"}]}}, "create_timestamp": 1710000000, "sources": []}`

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/cluster":
			_, _ = w.Write([]byte(`{"cluster_id": "qw-test"}`))
		case r.URL.Path == "/api/v1/indexes":
			_, _ = w.Write([]byte("[" + logsIndexJSON + "]"))
		case r.URL.Path == "/api/v1/indexes/app-logs":
			_, _ = w.Write([]byte(logsIndexJSON))
		case strings.HasSuffix(r.URL.Path, "/search"):
			_, _ = w.Write([]byte(`{"elapsed_time_micros": 1000, "num_hits": 1, "hits": [{"body": "hello"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "not found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func connect(t *testing.T, s *Server) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()

	ss, err := s.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	c := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := c.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func newTestServer(t *testing.T, opts ...ServerOption) *Server {
	t.Helper()
	backend := newBackend(t)
	deps := tools.NewDeps(client.New(client.WithBaseURL(backend.URL)), config.Default())
	s, err := NewServer(deps, opts...)
	require.NoError(t, err)
	return s
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)
}

func TestServer_ListsBuiltins(t *testing.T) {
	s := newTestServer(t, WithBuiltinTools(), WithBuiltinPrompts())
	cs := connect(t, s)
	ctx := context.Background()

	toolList, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range toolList.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"quickwit_cluster",
		"quickwit_indexes_list",
		"quickwit_index_details",
		"quickwit_index_fields",
		"quickwit_search",
		"quickwit_editor_open",
		"quickwit_editor_update",
		"quickwit_editor_run",
		"quickwit_editor_view",
		"quickwit_hits_query",
		"quickwit_hits_validate",
	}, names)

	prompts, err := cs.ListPrompts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, prompts.Prompts, 1)
	assert.Equal(t, "explore_index", prompts.Prompts[0].Name)

	templates, err := cs.ListResourceTemplates(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, templates.ResourceTemplates, 2)
}

func TestServer_WithoutBuiltins(t *testing.T) {
	var registered bool
	s := newTestServer(t, WithCustomRegistration(func(srv *sdkmcp.Server) {
		registered = true
		srv.AddPrompt(&sdkmcp.Prompt{Name: "custom"}, func(context.Context, *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
			return &sdkmcp.GetPromptResult{}, nil
		})
	}))
	assert.True(t, registered)

	cs := connect(t, s)
	prompts, err := cs.ListPrompts(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, prompts.Prompts, 1)
	assert.Equal(t, "custom", prompts.Prompts[0].Name)
}

func TestServer_EditorRoundTrip(t *testing.T) {
	s := newTestServer(t, WithBuiltinTools())
	cs := connect(t, s)
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "quickwit_editor_open",
		Arguments: map[string]any{"url": "?index=app-logs&query=hello"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var view tools.SessionView
	require.NoError(t, json.Unmarshal(raw, &view))
	assert.Equal(t, "app-logs", view.SelectedIndex)
	require.NotNil(t, view.Results)
	assert.Equal(t, "1 hits found in 0.00 seconds", view.Results.HitCount)

	read, err := cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "quickwit://editor/" + view.SessionID})
	require.NoError(t, err)
	require.Len(t, read.Contents, 1)
	assert.Equal(t, tools.MimeJSON, read.Contents[0].MIMEType)
	assert.Contains(t, read.Contents[0].Text, `"selected_index": "app-logs"`)

	read, err = cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "quickwit://index/app-logs"})
	require.NoError(t, err)
	assert.Contains(t, read.Contents[0].Text, `"index_uri": "s3://bucket/app-logs"`)
}

func TestServer_ToolErrorsAreResults(t *testing.T) {
	s := newTestServer(t, WithBuiltinTools())
	cs := connect(t, s)

	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "quickwit_editor_view",
		Arguments: map[string]any{"session_id": "missing"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestParseResourceURI(t *testing.T) {
	params, err := parseResourceURI("quickwit://index/app-logs")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"index": "app-logs"}, params)

	params, err = parseResourceURI("quickwit://index/otel%2Dlogs%2Dv0_7")
	require.NoError(t, err)
	assert.Equal(t, "otel-logs-v0_7", params["index"])

	params, err = parseResourceURI("quickwit://editor/3f0c5a52-8a53-4a5c-9b1b-7c3c1f0f2f11")
	require.NoError(t, err)
	assert.Equal(t, "3f0c5a52-8a53-4a5c-9b1b-7c3c1f0f2f11", params["session"])

	for _, uri := range []string{
		"http://index/x",
		"quickwit://index/",
		"quickwit://index",
		"quickwit://split/x",
		"quickwit://index/%zz",
	} {
		_, err := parseResourceURI(uri)
		assert.Error(t, err, uri)
	}
}

func TestTargetAttrs(t *testing.T) {
	attrs := targetAttrs(&sdkmcp.CallToolRequest{Params: &sdkmcp.CallToolParamsRaw{Name: "quickwit_search"}})
	require.Len(t, attrs, 1)
	assert.Equal(t, "tool", attrs[0].Key)
	assert.Equal(t, "quickwit_search", attrs[0].Value.String())

	attrs = targetAttrs(&sdkmcp.ReadResourceRequest{Params: &sdkmcp.ReadResourceParams{URI: "quickwit://index/a"}})
	require.Len(t, attrs, 1)
	assert.Equal(t, "uri", attrs[0].Key)

	assert.Empty(t, targetAttrs(&sdkmcp.ListToolsRequest{}))
}
