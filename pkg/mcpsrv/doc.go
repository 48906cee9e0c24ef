// Package mcpsrv provides an extensible MCP server for the Quickwit console.
//
// This package exposes a high-level API for creating and running an MCP server
// with all builtin Quickwit tools, prompts, and resources. Users can extend the
// server with custom tools, prompts, and resources using functional options.
//
// # Basic Usage
//
// Create a server with configuration loaded from the environment:
//
//	server, err := mcpsrv.NewServer(client.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type MyInput struct {
//	    IndexID string `json:"index_id"`
//	}
//
//	type MyOutput struct {
//	    Sources int `json:"sources"`
//	}
//
//	server, err := mcpsrv.NewServer(
//	    client.New(),
//	    mcpsrv.WithDepsTool(&mcp.Tool{Name: "source_count"}, func(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	        return func(ctx context.Context, _ *mcp.CallToolRequest, in MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	            idx, err := d.Catalog.Get(ctx, in.IndexID)
//	            if err != nil {
//	                return nil, MyOutput{}, err
//	            }
//	            return nil, MyOutput{Sources: len(idx.Sources)}, nil
//	        }
//	    }),
//	)
//
// # Transports
//
// Run serves stdio by default. With [WithHTTPAddr] (or MCP_HTTP_ADDR) it
// serves the streamable HTTP transport on /mcp and, unless metrics are
// disabled, Prometheus metrics on /metrics.
//
//	server, err := mcpsrv.NewServer(
//	    client.New(client.WithBaseURL("http://quickwit:7280")),
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithHTTPAddr(":8080"),
//	)
package mcpsrv
