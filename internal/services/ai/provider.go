package ai

import (
	"context"
)

// Request is one system+user exchange with the language model
type Request struct {
	// Operation names the call in logs, e.g. "extract_tasks"
	Operation string
	System    string
	User      string
	// JSON asks the model for a single JSON object
	JSON bool
	// Temperature overrides the provider default when non-zero
	Temperature float64
}

// Completer sends a request to a language model and returns the text of the first choice
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
