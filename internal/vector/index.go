// Package vector provides the in-memory vector index and its lifecycle handle.
package vector

import "github.com/hyperjump/docqa/internal/models"

// Result is a single search hit.
type Result struct {
	Chunk models.Chunk
	Score float64 // inner product; cosine similarity for normalized vectors
}
