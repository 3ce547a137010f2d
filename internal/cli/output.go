// Package cli provides output helpers for the docqa command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/docqa/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteAnswer writes an answer and, for grounded answers, the documents it drew on.
func WriteAnswer(w io.Writer, answer *models.Answer, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, answer)
	}
	fmt.Fprintln(w, answer.Text)
	if answer.Grounded && len(answer.Sources) > 0 {
		fmt.Fprintf(w, "\nSources: %s\n", strings.Join(answer.Sources, ", "))
	}
	return nil
}

// WriteIngestResponse writes the per-file outcome of an upload and a summary line.
func WriteIngestResponse(w io.Writer, resp *models.IngestResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	for _, r := range resp.Results {
		switch {
		case r.Error != "":
			fmt.Fprintf(w, "  failed   %s: %s\n", r.Name, r.Error)
		case r.Chunks == 0:
			fmt.Fprintf(w, "  skipped  %s: %s\n", r.Name, r.Warning)
		default:
			fmt.Fprintf(w, "  indexed  %s (%d chunks)\n", r.Name, r.Chunks)
			if r.Warning != "" {
				fmt.Fprintf(w, "           warning: %s\n", r.Warning)
			}
		}
		if r.Analysis != "" {
			fmt.Fprintf(w, "\n%s\n\n", indent(r.Analysis, "    "))
		}
	}
	fmt.Fprintf(w, "%d succeeded, %d skipped, %d failed\n", resp.Succeeded, resp.Skipped, resp.Failed)
	return nil
}

// WriteStatus writes the assistant status.
func WriteStatus(w io.Writer, st *models.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "index_present:    %t\n", st.IndexPresent)
	fmt.Fprintf(w, "chunks:           %d   # indexed text chunks\n", st.Chunks)
	fmt.Fprintf(w, "documents:        %d\n", len(st.Documents))
	for _, d := range st.Documents {
		fmt.Fprintf(w, "  - %s\n", d)
	}
	fmt.Fprintf(w, "sessions:         %d   # open sessions\n", st.Sessions)
	if st.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes: %d   # persisted index on disk\n", *st.DiskUsageBytes)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# configuration")
	if st.Variant != "" {
		fmt.Fprintf(w, "variant:          %s\n", st.Variant)
	}
	if st.Model != "" {
		fmt.Fprintf(w, "model:            %s\n", st.Model)
	}
	if st.EmbeddingModel != "" {
		fmt.Fprintf(w, "embedding_model:  %s\n", st.EmbeddingModel)
	}
	if st.ChunkSize > 0 {
		fmt.Fprintf(w, "chunk_size:       %d\n", st.ChunkSize)
	}
	if st.ChunkOverlap > 0 {
		fmt.Fprintf(w, "chunk_overlap:    %d\n", st.ChunkOverlap)
	}
	if st.IndexPath != "" {
		fmt.Fprintf(w, "index_path:       %s\n", st.IndexPath)
	}
	return nil
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
