package mcpsrv

import (
	"github.com/usestring/quickwit-mcp/internal/mcp/tools"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools:
// the API client, the cached index catalogue, the index browser, editor
// sessions and the jq engine.
type Deps = tools.Deps
