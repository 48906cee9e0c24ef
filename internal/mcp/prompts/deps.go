// Package prompts contains MCP prompt implementations for the Quickwit console.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	BackendURL     string
	SortByField    string
	DefaultMaxHits int
}
