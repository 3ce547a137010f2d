package rag

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/docqa/internal/llm"
	"github.com/hyperjump/docqa/internal/models"
)

// Defaults for routing.
const (
	DefaultTopK    = 4
	DefaultTimeout = 120 * time.Second
)

// Index is the part of the vector index the router reads.
type Index interface {
	IsPresent() bool
	Search(ctx context.Context, query string, k int) ([]models.Chunk, error)
}

// Router decides between a grounded and a direct prompt and calls the generator.
type Router struct {
	index        Index
	generator    llm.Generator
	prompts      Prompts
	topK         int
	historyTurns int
	timeout      time.Duration
	logger       *zap.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithPrompts sets the deployment wording.
func WithPrompts(p Prompts) RouterOption {
	return func(r *Router) { r.prompts = p }
}

// WithTopK sets how many chunks are retrieved for a grounded prompt.
func WithTopK(k int) RouterOption {
	return func(r *Router) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithHistoryTurns sets how many prior turns are rendered into the prompt.
func WithHistoryTurns(n int) RouterOption {
	return func(r *Router) {
		if n >= 0 {
			r.historyTurns = n
		}
	}
}

// WithTimeout bounds each collaborator call made while routing.
func WithTimeout(d time.Duration) RouterOption {
	return func(r *Router) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets a logger for routing decisions.
func WithLogger(l *zap.Logger) RouterOption {
	return func(r *Router) { r.logger = l }
}

// NewRouter creates a router over index and generator. Prompts default to the legal deployment.
func NewRouter(index Index, generator llm.Generator, opts ...RouterOption) *Router {
	r := &Router{
		index:        index,
		generator:    generator,
		prompts:      LegalPrompts,
		topK:         DefaultTopK,
		historyTurns: DefaultHistoryTurns,
		timeout:      DefaultTimeout,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prompt is a constructed request to the generator.
type Prompt struct {
	Text     string
	Grounded bool
	Chunks   []models.Chunk
}

// BuildPrompt constructs the prompt for query. When the index is present it
// retrieves the top chunks and builds a grounded prompt; otherwise it builds a
// direct prompt without searching. Prior turns are included only when history
// is non-empty.
func (r *Router) BuildPrompt(ctx context.Context, query string, history *History) (*Prompt, error) {
	p := &Prompt{}
	var body string
	if r.index != nil && r.index.IsPresent() {
		sctx, cancel := context.WithTimeout(ctx, r.timeout)
		chunks, err := r.index.Search(sctx, query, r.topK)
		cancel()
		if err != nil {
			return nil, err
		}
		p.Grounded = true
		p.Chunks = chunks
		body = fill(r.prompts.Grounded, map[string]string{
			"context":  Assemble(chunks, true),
			"question": query,
		})
	} else {
		body = fill(r.prompts.Direct, map[string]string{"question": query})
	}

	var sb strings.Builder
	sb.WriteString(r.prompts.System)
	if history != nil {
		if prior := history.Render(r.historyTurns); prior != "" {
			sb.WriteString("\n\nPrevious conversation:\n")
			sb.WriteString(prior)
		}
	}
	sb.WriteString("\n\n")
	sb.WriteString(body)
	p.Text = sb.String()
	return p, nil
}

// Route answers query. On success the exchange is recorded in history. A
// retrieval failure returns *models.EmbeddingError and a generation failure
// returns *models.GenerationError; in both cases history is left unchanged.
func (r *Router) Route(ctx context.Context, query string, history *History) (*models.Answer, error) {
	p, err := r.BuildPrompt(ctx, query, history)
	if err != nil {
		var embErr *models.EmbeddingError
		if !errors.As(err, &embErr) {
			err = &models.EmbeddingError{Op: "search", Err: err}
		}
		return nil, err
	}
	r.logger.Debug("routing query",
		zap.Bool("grounded", p.Grounded),
		zap.Int("chunks", len(p.Chunks)),
		zap.Int("prompt_chars", len(p.Text)))

	gctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	text, err := r.generator.Generate(gctx, p.Text)
	if err != nil {
		return nil, &models.GenerationError{Err: err}
	}
	if history != nil {
		history.Record(query, text)
	}
	return &models.Answer{
		Text:     text,
		Grounded: p.Grounded,
		Sources:  Sources(p.Chunks),
	}, nil
}
