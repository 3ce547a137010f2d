package server

import (
	"github.com/hyperjump/docqa/internal/config"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/vector"
)

// BuildStatus reports the state of index and the settings it runs with.
// sessions is the number of open sessions.
func BuildStatus(index *vector.Handle, cfg *config.Config, sessions int) *models.Status {
	st := &models.Status{
		IndexPresent: index.IsPresent(),
		Chunks:       index.Size(),
		Documents:    index.Sources(),
		Sessions:     sessions,
		IndexPath:    index.Path(),
	}
	if st.Documents == nil {
		st.Documents = []string{}
	}
	if n, ok := index.DiskUsage(); ok {
		st.DiskUsageBytes = &n
	}
	if cfg != nil {
		st.Variant = cfg.Assistant.Variant
		st.Model = cfg.LLM.Model
		st.EmbeddingModel = cfg.Embedding.Model
		st.ChunkSize = cfg.RAG.ChunkSize
		st.ChunkOverlap = cfg.RAG.ChunkOverlap
	}
	return st
}
