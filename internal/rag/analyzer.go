package rag

import (
	"context"
	"strings"
	"time"

	"github.com/hyperjump/docqa/internal/llm"
	"github.com/hyperjump/docqa/pkg/utils"
)

// DefaultExtractionChars is how much of a document is sent for analysis.
const DefaultExtractionChars = 8000

// Analyzer extracts structured metadata from a newly ingested paper.
type Analyzer struct {
	generator llm.Generator
	template  string
	maxChars  int
	timeout   time.Duration
}

// NewAnalyzer returns an analyzer using template, which must contain {content}.
// A non-positive maxChars uses DefaultExtractionChars.
func NewAnalyzer(generator llm.Generator, template string, maxChars int, timeout time.Duration) *Analyzer {
	if maxChars <= 0 {
		maxChars = DefaultExtractionChars
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Analyzer{generator: generator, template: template, maxChars: maxChars, timeout: timeout}
}

// Analyze sends the first maxChars characters of rawText to the generator. It
// never fails: a generator error becomes an explanatory message.
func (a *Analyzer) Analyze(ctx context.Context, rawText string) string {
	prompt := fill(a.template, map[string]string{"content": utils.Prefix(rawText, a.maxChars)})
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	out, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return "Could not extract information: " + err.Error()
	}
	return strings.TrimSpace(out)
}
