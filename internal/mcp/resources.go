package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/quickwit-mcp/internal/mcp/tools"
)

// Resource URI scheme: quickwit://
// Supported URIs:
//   quickwit://index/{index}
//   quickwit://editor/{session}

const scheme = "quickwit://"

// registerResources registers resource templates and handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "quickwit://index/{index}",
		Name:        "Index Metadata",
		Description: "Full index metadata as returned by Quickwit: index config, doc mapping, sources. quickwit_index_fields already returns the field mappings; fetch this for settings and sources.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceIndex)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "quickwit://editor/{session}",
		Name:        "Editor Session",
		Description: "Current view of an editor session: url, query state and rendered results. Same content as quickwit_editor_view.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceEditor)
}

func (s *Server) handleResourceIndex(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	idx, err := s.deps.Catalog.Get(ctx, params["index"])
	if err != nil {
		return nil, tools.WrapQuickwitError(err)
	}
	return toResourceResult(req.Params.URI, idx)
}

func (s *Server) handleResourceEditor(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	view, err := tools.ViewSession(s.deps, params["session"])
	if err != nil {
		return nil, err
	}
	return toResourceResult(req.Params.URI, view)
}

// parseResourceURI extracts the parameters of a quickwit:// URI. Index ids
// may be percent-encoded.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, scheme) {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected " + scheme)
	}

	kind, rest, _ := strings.Cut(strings.TrimPrefix(uri, scheme), "/")
	if rest == "" {
		return nil, tools.ErrInvalidInput(fmt.Sprintf("%s URI requires an id", kind))
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return nil, tools.ErrInvalidInput("invalid resource id: " + err.Error())
	}

	switch kind {
	case "index":
		return map[string]string{"index": id}, nil
	case "editor":
		return map[string]string{"session": id}, nil
	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", kind))
	}
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
