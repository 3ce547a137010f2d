// Package models defines core data structures for chunks, conversation turns, and answers.
package models

// Chunk is an immutable slice of one document's text, the unit of indexing and retrieval.
type Chunk struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Text   string `json:"text"`
	Index  int    `json:"index"`
}

// Upload is one file attached to a message.
type Upload struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// IngestResult reports the outcome of ingesting a single file. Error and
// Warning are user-facing text; a result with Error set indexed nothing.
type IngestResult struct {
	Name     string `json:"name"`
	Chunks   int    `json:"chunks"`
	Error    string `json:"error,omitempty"`
	Warning  string `json:"warning,omitempty"`
	Analysis string `json:"analysis,omitempty"`
}

// OK reports whether the file was indexed.
func (r *IngestResult) OK() bool {
	return r.Error == "" && r.Chunks > 0
}
