package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/docqa/internal/models"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Dimensions: 3,
		Model:      "mock",
		Entries: []Entry{
			{Chunk: models.Chunk{ID: "a", Source: "one.pdf", Text: "first", Index: 0}, Vector: []float32{1, 0, 0}},
			{Chunk: models.Chunk{ID: "b", Source: "one.pdf", Text: "second", Index: 1}, Vector: []float32{0, 1, 0}},
			{Chunk: models.Chunk{ID: "c", Source: "two.pdf", Text: "third", Index: 0}, Vector: []float32{0, 0.6, 0.8}},
		},
	}
}

func TestSQLiteSnapshot_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vector_store")
	store := NewSQLiteSnapshot(dir)
	ctx := context.Background()

	want := testSnapshot()
	if err := store.Save(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected snapshot, got nil")
	}
	if got.Dimensions != 3 || got.Model != "mock" {
		t.Errorf("meta: got dims=%d model=%q", got.Dimensions, got.Model)
	}
	if got.SavedAt.IsZero() {
		t.Error("SavedAt should be set")
	}
	if len(got.Entries) != len(want.Entries) {
		t.Fatalf("expected %d entries, got %d", len(want.Entries), len(got.Entries))
	}
	for i := range want.Entries {
		if got.Entries[i].Chunk != want.Entries[i].Chunk {
			t.Errorf("entry %d chunk: got %+v, want %+v", i, got.Entries[i].Chunk, want.Entries[i].Chunk)
		}
		for j, v := range want.Entries[i].Vector {
			if got.Entries[i].Vector[j] != v {
				t.Errorf("entry %d vector[%d]: got %v, want %v", i, j, got.Entries[i].Vector[j], v)
			}
		}
	}
	if _, err := os.Stat(filepath.Join(dir, snapshotFile+tempSuffix)); !os.IsNotExist(err) {
		t.Error("temp file should not remain after Save")
	}
}

func TestSQLiteSnapshot_SaveReplaces(t *testing.T) {
	store := NewSQLiteSnapshot(t.TempDir())
	ctx := context.Background()

	if err := store.Save(ctx, testSnapshot()); err != nil {
		t.Fatal(err)
	}
	smaller := testSnapshot()
	smaller.Entries = smaller.Entries[:1]
	if err := store.Save(ctx, smaller); err != nil {
		t.Fatal(err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Entries) != 1 {
		t.Errorf("expected 1 entry after replace, got %d", len(got.Entries))
	}
}

func TestSQLiteSnapshot_LoadMissing(t *testing.T) {
	store := NewSQLiteSnapshot(filepath.Join(t.TempDir(), "nope"))
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil snapshot, got %+v", got)
	}
}

func TestSQLiteSnapshot_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, snapshotFile), []byte("not a database"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewSQLiteSnapshot(dir).Load(context.Background()); err == nil {
		t.Error("expected error for corrupt snapshot")
	}
}

func TestSQLiteSnapshot_SaveRejectsBadDimensions(t *testing.T) {
	dir := t.TempDir()
	store := NewSQLiteSnapshot(dir)
	snap := testSnapshot()
	snap.Entries[1].Vector = []float32{1}
	if err := store.Save(context.Background(), snap); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(filepath.Join(dir, snapshotFile)); !os.IsNotExist(err) {
		t.Error("failed save must not leave a live snapshot")
	}
}

func TestSQLiteSnapshot_RemoveIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	store := NewSQLiteSnapshot(dir)
	if err := store.Save(context.Background(), testSnapshot()); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("directory should be gone")
	}
	if err := store.Remove(); err != nil {
		t.Errorf("second Remove: %v", err)
	}
}

func TestFloat32Encoding(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3e-7}
	out, err := bytesToFloat32Slice(float32SliceToBytes(in))
	if err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("index %d: got %v, want %v", i, out[i], in[i])
		}
	}
	if _, err := bytesToFloat32Slice([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated blob")
	}
}

func TestSQLiteSnapshot_DiskUsage(t *testing.T) {
	store := NewSQLiteSnapshot(filepath.Join(t.TempDir(), "store"))
	n, err := store.DiskUsage()
	if err != nil || n != 0 {
		t.Fatalf("empty store: got %d, %v", n, err)
	}
	if err := store.Save(context.Background(), testSnapshot()); err != nil {
		t.Fatal(err)
	}
	n, err = store.DiskUsage()
	if err != nil {
		t.Fatal(err)
	}
	if n <= 0 {
		t.Errorf("expected positive usage, got %d", n)
	}
}
