package vector

import (
	"testing"

	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/storage"
)

func entry(id, source string, vec ...float32) storage.Entry {
	return storage.Entry{Chunk: models.Chunk{ID: id, Source: source, Text: "text " + id}, Vector: vec}
}

func TestMemoryIndex_AddSearch(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Add([]storage.Entry{
		entry("a", "x.pdf", 1, 0, 0),
		entry("b", "x.pdf", 0.9, 0.1, 0),
		entry("c", "y.pdf", 0, 1, 0),
	}); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("Size=%d", idx.Size())
	}

	results, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "a" || results[1].Chunk.ID != "b" {
		t.Errorf("unexpected order: %s, %s", results[0].Chunk.ID, results[1].Chunk.ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results should be ordered by decreasing score")
	}
}

func TestMemoryIndex_SearchTiesKeepInsertionOrder(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	_ = idx.Add([]storage.Entry{
		entry("first", "a.pdf", 0, 1),
		entry("second", "a.pdf", 0, 1),
		entry("third", "a.pdf", 0, 1),
	})
	results, err := idx.Search([]float32{0, 1}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"first", "second", "third"} {
		if results[i].Chunk.ID != want {
			t.Errorf("result %d: got %s, want %s", i, results[i].Chunk.ID, want)
		}
	}
}

func TestMemoryIndex_AddIsAllOrNothing(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	err := idx.Add([]storage.Entry{
		entry("ok", "a.pdf", 1, 0),
		entry("bad", "a.pdf", 1, 0, 0),
	})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if idx.Size() != 0 {
		t.Errorf("index should be unchanged, Size=%d", idx.Size())
	}
	if err := idx.Add([]storage.Entry{entry("zero", "a.pdf", 0, 0)}); err == nil {
		t.Error("expected zero vector to be rejected")
	}
}

func TestMemoryIndex_SearchEdgeCases(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	if res, err := idx.Search([]float32{1, 0}, 4); err != nil || res != nil {
		t.Errorf("empty index: got %v, %v", res, err)
	}
	_ = idx.Add([]storage.Entry{entry("a", "a.pdf", 1, 0)})
	if res, _ := idx.Search([]float32{1, 0}, 0); res != nil {
		t.Error("k=0 should return nothing")
	}
	if _, err := idx.Search([]float32{1, 0, 0}, 1); err == nil {
		t.Error("expected query dimension mismatch error")
	}
}

func TestMemoryIndex_SnapshotAndSources(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	_ = idx.Add([]storage.Entry{
		entry("a", "one.pdf", 1, 0),
		entry("b", "two.pdf", 0, 1),
		entry("c", "one.pdf", 1, 1),
	})
	sources := idx.Sources()
	if len(sources) != 2 || sources[0] != "one.pdf" || sources[1] != "two.pdf" {
		t.Errorf("Sources=%v", sources)
	}

	snap := idx.Snapshot("mock")
	if snap.Dimensions != 2 || snap.Model != "mock" || len(snap.Entries) != 3 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	restored, err := FromSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Size() != 3 || restored.Dimensions() != 2 {
		t.Errorf("restored Size=%d Dimensions=%d", restored.Size(), restored.Dimensions())
	}
}

func TestNewMemoryIndex_InvalidDimensions(t *testing.T) {
	if _, err := NewMemoryIndex(0); err == nil {
		t.Error("expected error")
	}
	if _, err := FromSnapshot(nil); err == nil {
		t.Error("expected error for nil snapshot")
	}
}
