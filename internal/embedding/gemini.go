package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hyperjump/docqa/pkg/utils"
)

// Default Gemini embedding settings.
const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "text-embedding-004"
	DefaultTimeout       = 30 * time.Second

	// maxBatchSize is the largest request list batchEmbedContents accepts.
	maxBatchSize = 100

	taskQuery    = "RETRIEVAL_QUERY"
	taskDocument = "RETRIEVAL_DOCUMENT"
)

// GeminiConfig configures a GeminiEmbedder.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// Dimensions, when set, is checked against every returned vector.
	Dimensions int
	// RequestsPerSecond throttles outgoing requests; zero means unlimited.
	RequestsPerSecond float64
}

// GeminiEmbedder calls the Gemini embedContent and batchEmbedContents endpoints.
type GeminiEmbedder struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	limiter    *rate.Limiter
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type embedRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"taskType,omitempty"`
}

type embedValues struct {
	Values []float64 `json:"values"`
}

type embedResponse struct {
	Embedding embedValues `json:"embedding"`
}

type batchEmbedRequest struct {
	Requests []embedRequest `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []embedValues `json:"embeddings"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGeminiEmbedder creates an embedder for the Gemini API.
func NewGeminiEmbedder(cfg GeminiConfig) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini embedder: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &GeminiEmbedder{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      strings.TrimPrefix(cfg.Model, "models/"),
		dimensions: cfg.Dimensions,
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

// Embed embeds a query.
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := g.request(text, taskQuery)
	var resp embedResponse
	if err := g.post(ctx, "embedContent", req, &resp); err != nil {
		return nil, err
	}
	return g.vector(resp.Embedding.Values)
}

// EmbedBatch embeds document texts, splitting them into API-sized batches.
func (g *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(texts))
		body := batchEmbedRequest{Requests: make([]embedRequest, 0, end-start)}
		for _, text := range texts[start:end] {
			body.Requests = append(body.Requests, g.request(text, taskDocument))
		}
		var resp batchEmbedResponse
		if err := g.post(ctx, "batchEmbedContents", body, &resp); err != nil {
			return nil, err
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("gemini embedder: expected %d embeddings, got %d", end-start, len(resp.Embeddings))
		}
		for _, e := range resp.Embeddings {
			v, err := g.vector(e.Values)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// Dimensions returns the configured dimension, or 0 when it is learned from responses.
func (g *GeminiEmbedder) Dimensions() int {
	return g.dimensions
}

// Close releases idle connections.
func (g *GeminiEmbedder) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

func (g *GeminiEmbedder) request(text, task string) embedRequest {
	return embedRequest{
		Model:    "models/" + g.model,
		Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
		TaskType: task,
	}
}

func (g *GeminiEmbedder) vector(values []float64) ([]float32, error) {
	if len(values) == 0 {
		return nil, errors.New("gemini embedder: empty embedding in response")
	}
	if g.dimensions > 0 && len(values) != g.dimensions {
		return nil, fmt.Errorf("gemini embedder: expected %d dimensions, got %d", g.dimensions, len(values))
	}
	v := utils.Float64sToFloat32s(values)
	utils.NormalizeL2(v)
	return v, nil
}

func (g *GeminiEmbedder) post(ctx context.Context, method string, body, out any) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("gemini embedder: %w", err)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("gemini embedder: marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/models/%s:%s", g.baseURL, g.model, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("gemini embedder: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini embedder: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gemini embedder: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini embedder: %s (status %d)", apiErr.Error.Message, resp.StatusCode)
		}
		return fmt.Errorf("gemini embedder: status %d: %s", resp.StatusCode, utils.Truncate(string(data), 200))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("gemini embedder: decode response: %w", err)
	}
	return nil
}
