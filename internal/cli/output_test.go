package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/docqa/internal/models"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"compact", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteAnswer_text(t *testing.T) {
	var buf bytes.Buffer
	answer := &models.Answer{Text: "Paris.", Grounded: true, Sources: []string{"france.pdf", "europe.pdf"}}
	if err := WriteAnswer(&buf, answer, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Paris.\n") {
		t.Errorf("answer should come first:\n%s", out)
	}
	if !strings.Contains(out, "Sources: france.pdf, europe.pdf") {
		t.Errorf("missing sources line:\n%s", out)
	}

	buf.Reset()
	if err := WriteAnswer(&buf, &models.Answer{Text: "4"}, OutputText); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Sources") {
		t.Errorf("direct answers have no sources line:\n%s", buf.String())
	}
}

func TestWriteAnswer_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, &models.Answer{Text: "4"}, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded["answer"] != "4" {
		t.Errorf("answer field: got %v", decoded["answer"])
	}
}

func TestWriteIngestResponse_text(t *testing.T) {
	resp := &models.IngestResponse{}
	resp.Add(&models.IngestResult{Name: "good.pdf", Chunks: 3, Analysis: "Title: Attention\nAuthors: Vaswani"})
	resp.Add(&models.IngestResult{Name: "saved-late.pdf", Chunks: 1, Warning: "could not be saved"})
	resp.Add(&models.IngestResult{Name: "blank.pdf", Warning: "no extractable text"})
	resp.Add(&models.IngestResult{Name: "notes.txt", Error: "unsupported file type"})

	var buf bytes.Buffer
	if err := WriteIngestResponse(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{
		"indexed  good.pdf (3 chunks)",
		"    Title: Attention",
		"warning: could not be saved",
		"skipped  blank.pdf: no extractable text",
		"failed   notes.txt: unsupported file type",
		"2 succeeded, 1 skipped, 1 failed",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteStatus_text(t *testing.T) {
	disk := int64(4096)
	st := &models.Status{
		IndexPresent:   true,
		Chunks:         7,
		Documents:      []string{"a.pdf"},
		Sessions:       1,
		DiskUsageBytes: &disk,
		Variant:        "paper",
		Model:          "gemini-2.5-flash",
		ChunkSize:      1000,
		ChunkOverlap:   200,
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, st, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"index_present:    true", "chunks:           7", "  - a.pdf", "disk_usage_bytes: 4096", "variant:          paper", "chunk_overlap:    200"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
	if strings.Contains(out, "embedding_model") {
		t.Errorf("empty fields should be omitted:\n%s", out)
	}
}

func TestWriteStatus_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStatus(&buf, &models.Status{Documents: []string{}}, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.Status
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.IndexPresent || decoded.DiskUsageBytes != nil {
		t.Errorf("decoded: %+v", decoded)
	}
}
