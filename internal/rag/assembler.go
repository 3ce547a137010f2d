// Package rag routes questions to grounded or direct prompts and keeps per-session history.
package rag

import (
	"strings"

	"github.com/hyperjump/docqa/internal/models"
)

// Assemble joins chunk texts in search order, separated by a blank line. When
// sourceAware is set each text is prefixed with a "[From: <source>]" line.
func Assemble(chunks []models.Chunk, sourceAware bool) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if sourceAware {
			parts = append(parts, "[From: "+c.Source+"]\n"+c.Text)
			continue
		}
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n\n")
}

// Sources returns the distinct chunk sources, first occurrence first.
func Sources(chunks []models.Chunk) []string {
	seen := make(map[string]bool, len(chunks))
	var out []string
	for _, c := range chunks {
		if c.Source == "" || seen[c.Source] {
			continue
		}
		seen[c.Source] = true
		out = append(out, c.Source)
	}
	return out
}
