package adapter

import (
	"context"

	"github.com/Cyclone1070/iavtools/internal/tool"
)

// Tool is one capability exposed to the agent loop. Tools are stateless
// between calls apart from what they persist in the workspace.
type Tool interface {
	// Name returns the unique identifier for this tool
	Name() string

	// Declaration returns the function signature shown to the model
	Declaration() tool.Declaration

	// Execute decodes args, runs the tool and renders its output. Malformed
	// or disallowed input is returned as an error; execution outcomes such
	// as a non-zero exit are reported through Result.Error.
	Execute(ctx context.Context, args map[string]any) (*Result, error)
}

// Result is the bounded text a tool hands back to the agent loop.
type Result struct {
	ID     string `json:"id"`
	Output string `json:"output"`
	Error  bool   `json:"error,omitempty"`
}
