package models

// Answer is the response to a query.
type Answer struct {
	Text string `json:"answer"`
	// Grounded is true when the prompt carried retrieved document context.
	Grounded bool `json:"grounded"`
	// Sources lists the distinct document names the context was drawn from, most relevant first.
	Sources []string `json:"sources,omitempty"`
}

// IngestResponse is the response for a batch upload.
type IngestResponse struct {
	Results   []*IngestResult `json:"results"`
	Succeeded int             `json:"succeeded"`
	// Skipped counts files that were readable but had no text to index.
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Add appends r and updates the counters.
func (resp *IngestResponse) Add(r *IngestResult) {
	resp.Results = append(resp.Results, r)
	switch {
	case r.OK():
		resp.Succeeded++
	case r.Error != "":
		resp.Failed++
	default:
		resp.Skipped++
	}
}

// Status describes the index and configuration of a running assistant.
type Status struct {
	IndexPresent   bool     `json:"index_present"`
	Chunks         int      `json:"chunks"`
	Documents      []string `json:"documents"`
	Sessions       int      `json:"sessions"`
	DiskUsageBytes *int64   `json:"disk_usage_bytes,omitempty"`
	Variant        string   `json:"variant,omitempty"`
	Model          string   `json:"model,omitempty"`
	EmbeddingModel string   `json:"embedding_model,omitempty"`
	ChunkSize      int      `json:"chunk_size,omitempty"`
	ChunkOverlap   int      `json:"chunk_overlap,omitempty"`
	IndexPath      string   `json:"index_path,omitempty"`
}
