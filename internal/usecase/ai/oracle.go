// Package ai implements the two AI-backed pipeline stages: the fail-closed
// classifier and the fail-open summarizer. Both treat the model as an opaque
// text oracle and only depend on its response contract.
package ai

import "context"

// Oracle answers a prompt with text. An empty model selects the oracle's
// configured default.
type Oracle interface {
	Ask(ctx context.Context, prompt, model string) (string, error)
}
