// Package extract provides text extraction from uploaded documents.
package extract

import (
	"path/filepath"
	"strings"
)

// MIMETypePDF is the only accepted upload type.
const MIMETypePDF = "application/pdf"

// Extractor extracts per-page plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Pages returns the text of each page of a PDF, in page order.
// Encrypted, corrupt, and non-PDF content yields an error.
func (e *Extractor) Pages(content []byte) ([]string, error) {
	return extractPDFPages(content)
}

// IsPDF reports whether an upload is a PDF, by MIME type when given and by
// file extension otherwise.
func IsPDF(name, mimeType string) bool {
	if mimeType != "" {
		mt := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
		return mt == MIMETypePDF
	}
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// JoinPages concatenates per-page text into one document text, pages separated by a newline.
func JoinPages(pages []string) string {
	return strings.Join(pages, "\n")
}
