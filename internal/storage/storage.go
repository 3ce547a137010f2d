// Package storage persists vector index snapshots to disk.
package storage

import (
	"context"
	"time"

	"github.com/hyperjump/docqa/internal/models"
)

// Entry is one indexed chunk with its embedding.
type Entry struct {
	Chunk  models.Chunk
	Vector []float32
}

// Snapshot is the complete persisted state of a vector index.
type Snapshot struct {
	Dimensions int
	Model      string
	SavedAt    time.Time
	Entries    []Entry
}

// SnapshotStore saves and restores whole-index snapshots.
type SnapshotStore interface {
	// Save replaces any previous snapshot atomically.
	Save(ctx context.Context, snap *Snapshot) error
	// Load returns nil, nil when no snapshot exists.
	Load(ctx context.Context) (*Snapshot, error)
	// Remove deletes all persisted state. Removing nothing is not an error.
	Remove() error
	// Path is the directory holding the snapshot.
	Path() string
}
