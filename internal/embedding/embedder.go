// Package embedding provides text embedding clients, caching, and a deterministic test embedder.
package embedding

import "context"

// Embedder produces vector embeddings for text. Embed is used for queries and
// EmbedBatch for document chunks; implementations may embed the two differently.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
