package indexer

import (
	"fmt"
	"strings"

	"github.com/hyperjump/docqa/internal/models"
)

// Chunker splits text into overlapping fixed-size character windows.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in characters).
// overlap must be non-negative and strictly less than size.
func NewChunker(chunkSize, chunkOverlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, chunkOverlap)
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}, nil
}

// Chunk splits text into chunks of at most chunkSize characters. Every chunk but
// the last is exactly chunkSize long, so consecutive chunks share exactly
// chunkOverlap characters and dropping the first chunkOverlap characters of each
// later chunk reconstructs text. Empty or whitespace-only text yields no chunks.
func (c *Chunker) Chunk(source, text string) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	step := c.chunkSize - c.chunkOverlap
	chunks := make([]models.Chunk, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			Source: source,
			Text:   string(runes[start:end]),
			Index:  len(chunks),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
