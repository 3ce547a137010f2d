package vector

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hyperjump/docqa/internal/storage"
)

// MemoryIndex is an in-memory vector index using brute-force inner product search.
// It is not safe for concurrent use; Handle serializes access to it.
type MemoryIndex struct {
	dimensions int
	entries    []storage.Entry
}

// NewMemoryIndex creates an in-memory vector index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{dimensions: dimensions}, nil
}

// FromSnapshot rebuilds an index from a persisted snapshot.
func FromSnapshot(snap *storage.Snapshot) (*MemoryIndex, error) {
	if snap == nil {
		return nil, errors.New("nil snapshot")
	}
	idx, err := NewMemoryIndex(snap.Dimensions)
	if err != nil {
		return nil, err
	}
	if err := idx.Add(snap.Entries); err != nil {
		return nil, err
	}
	return idx, nil
}

// Add appends entries in order. Either all entries are added or none are.
func (m *MemoryIndex) Add(entries []storage.Entry) error {
	for i, e := range entries {
		if len(e.Vector) != m.dimensions {
			return fmt.Errorf("entry %d: vector dimension mismatch: got %d, expected %d", i, len(e.Vector), m.dimensions)
		}
		if L2Norm(e.Vector) == 0 {
			return fmt.Errorf("entry %d: zero vector", i)
		}
		if e.Chunk.Text == "" {
			return fmt.Errorf("entry %d: empty chunk text", i)
		}
	}
	for _, e := range entries {
		vec := make([]float32, m.dimensions)
		copy(vec, e.Vector)
		m.entries = append(m.entries, storage.Entry{Chunk: e.Chunk, Vector: vec})
	}
	return nil
}

// Search returns the top-k entries by inner product, most similar first. Ties
// keep insertion order.
func (m *MemoryIndex) Search(query []float32, k int) ([]Result, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	if k <= 0 || len(m.entries) == 0 {
		return nil, nil
	}
	results := make([]Result, len(m.entries))
	for i, e := range m.entries {
		results[i] = Result{Chunk: e.Chunk, Score: InnerProduct(query, e.Vector)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Snapshot returns the index contents for persistence. Vectors are shared, not copied.
func (m *MemoryIndex) Snapshot(model string) *storage.Snapshot {
	entries := make([]storage.Entry, len(m.entries))
	copy(entries, m.entries)
	return &storage.Snapshot{
		Dimensions: m.dimensions,
		Model:      model,
		SavedAt:    time.Now(),
		Entries:    entries,
	}
}

// Sources returns the distinct chunk sources in first-seen order.
func (m *MemoryIndex) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range m.entries {
		if !seen[e.Chunk.Source] {
			seen[e.Chunk.Source] = true
			out = append(out, e.Chunk.Source)
		}
	}
	return out
}

// Size returns the number of entries in the index.
func (m *MemoryIndex) Size() int {
	return len(m.entries)
}

// Dimensions returns the vector dimension.
func (m *MemoryIndex) Dimensions() int {
	return m.dimensions
}
