// Package llm provides the text generation collaborator used to answer questions.
package llm

import "context"

// Generator produces a completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
}
