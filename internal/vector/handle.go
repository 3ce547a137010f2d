package vector

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/docqa/internal/embedding"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/storage"
	"github.com/hyperjump/docqa/pkg/utils"
)

// Handle owns the process-wide vector index and its persisted copy. The index
// is either absent or holds at least one chunk; it is never present but empty.
//
// Upsert, Clear and persistence take the write lock. Embedding calls run
// outside the lock so a slow collaborator does not block searches.
type Handle struct {
	mu       sync.RWMutex
	index    *MemoryIndex // nil when absent
	store    storage.SnapshotStore
	embedder embedding.Embedder
	model    string
	logger   *zap.Logger
}

// HandleOption configures a Handle.
type HandleOption func(*Handle)

// WithLogger sets the logger for load and persistence warnings.
func WithLogger(l *zap.Logger) HandleOption {
	return func(h *Handle) { h.logger = l }
}

// WithModelName records the embedding model in snapshots; a snapshot written
// by a different model is ignored on Load.
func WithModelName(name string) HandleOption {
	return func(h *Handle) { h.model = name }
}

// NewHandle creates a handle with an absent index. Call Load to restore a persisted one.
func NewHandle(store storage.SnapshotStore, embedder embedding.Embedder, opts ...HandleOption) *Handle {
	h := &Handle{
		store:    store,
		embedder: embedder,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Load restores the persisted index. Any failure leaves the index absent and
// is logged, never returned. It reports whether an index is now present.
func (h *Handle) Load(ctx context.Context) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.index = nil

	snap, err := h.store.Load(ctx)
	if err != nil {
		h.logger.Warn("could not load vector index, starting fresh",
			zap.String("path", h.store.Path()), zap.Error(err))
		return false
	}
	if snap == nil || len(snap.Entries) == 0 {
		return false
	}
	if h.model != "" && snap.Model != "" && snap.Model != h.model {
		h.logger.Warn("vector index was built with a different embedding model, starting fresh",
			zap.String("index_model", snap.Model), zap.String("model", h.model))
		return false
	}
	if dims := h.embedder.Dimensions(); dims > 0 && dims != snap.Dimensions {
		h.logger.Warn("vector index dimension mismatch, starting fresh",
			zap.Int("index_dimensions", snap.Dimensions), zap.Int("dimensions", dims))
		return false
	}
	idx, err := FromSnapshot(snap)
	if err != nil {
		h.logger.Warn("could not rebuild vector index, starting fresh", zap.Error(err))
		return false
	}
	h.index = idx
	h.logger.Info("vector index loaded",
		zap.Int("chunks", idx.Size()), zap.String("path", h.store.Path()))
	return true
}

// Upsert embeds chunks and adds them to the index, creating it if absent, then
// persists the whole index. An embedding failure returns *models.EmbeddingError
// and leaves the index unchanged. A persistence failure returns
// *models.PersistenceError; the chunks stay searchable in memory.
func (h *Handle) Upsert(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := h.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return &models.EmbeddingError{Op: "embed documents", Err: err}
	}
	if len(vectors) != len(chunks) {
		return &models.EmbeddingError{
			Op:  "embed documents",
			Err: fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(vectors)),
		}
	}
	entries := make([]storage.Entry, len(chunks))
	for i, c := range chunks {
		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		utils.NormalizeL2(vec)
		entries[i] = storage.Entry{Chunk: c, Vector: vec}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	idx := h.index
	if idx == nil {
		idx, err = NewMemoryIndex(len(entries[0].Vector))
		if err != nil {
			return &models.EmbeddingError{Op: "embed documents", Err: err}
		}
	}
	if err := idx.Add(entries); err != nil {
		return &models.EmbeddingError{Op: "embed documents", Err: err}
	}
	h.index = idx

	if err := h.store.Save(ctx, idx.Snapshot(h.model)); err != nil {
		h.logger.Warn("could not persist vector index; data may not survive a restart",
			zap.String("path", h.store.Path()), zap.Error(err))
		return &models.PersistenceError{Op: "save", Err: err}
	}
	h.logger.Debug("vector index persisted",
		zap.Int("added", len(entries)), zap.Int("chunks", idx.Size()))
	return nil
}

// Search returns up to k chunks most similar to query, most relevant first.
// It returns an empty result without embedding the query when the index is
// absent or k is not positive.
func (h *Handle) Search(ctx context.Context, query string, k int) ([]models.Chunk, error) {
	if k <= 0 || !h.IsPresent() {
		return nil, nil
	}
	vec, err := h.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &models.EmbeddingError{Op: "embed query", Err: err}
	}
	q := make([]float32, len(vec))
	copy(q, vec)
	utils.NormalizeL2(q)

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.index == nil {
		return nil, nil
	}
	results, err := h.index.Search(q, k)
	if err != nil {
		return nil, &models.EmbeddingError{Op: "embed query", Err: err}
	}
	chunks := make([]models.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}
	return chunks, nil
}

// IsPresent reports whether the index holds at least one chunk.
func (h *Handle) IsPresent() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index != nil && h.index.Size() > 0
}

// Size returns the number of indexed chunks.
func (h *Handle) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.index == nil {
		return 0
	}
	return h.index.Size()
}

// Sources returns the names of the indexed documents.
func (h *Handle) Sources() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.index == nil {
		return nil
	}
	return h.index.Sources()
}

// Path returns the persisted index location.
func (h *Handle) Path() string {
	return h.store.Path()
}

// DiskUsage returns the bytes used by the persisted index, when the store can report it.
func (h *Handle) DiskUsage() (int64, bool) {
	du, ok := h.store.(interface{ DiskUsage() (int64, error) })
	if !ok {
		return 0, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	n, err := du.DiskUsage()
	if err != nil {
		return 0, false
	}
	return n, true
}

// Clear discards the in-memory index and deletes the persisted copy. Clearing
// an absent index is a no-op. The in-memory index is absent afterwards even if
// removing the persisted copy fails.
func (h *Handle) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.index = nil
	if err := h.store.Remove(); err != nil {
		h.logger.Warn("could not remove persisted vector index", zap.Error(err))
		return &models.PersistenceError{Op: "remove", Err: err}
	}
	return nil
}
