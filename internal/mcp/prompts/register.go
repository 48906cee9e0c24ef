package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "explore_index",
		Description: "RECOMMENDED: Explore a Quickwit index step by step: size, fields, searches, jq over hits.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "index",
				Description: "Index id to explore",
				Required:    false,
			},
			{
				Name:        "goal",
				Description: "What you are looking for (e.g., 'errors from the payment service in the last hour')",
				Required:    false,
			},
		},
	}, HandleExploreIndex(cfg))
}
