package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc, dims int) *GeminiEmbedder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g, err := NewGeminiEmbedder(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL, Dimensions: dims})
	require.NoError(t, err)
	return g
}

func TestNewGeminiEmbedder_RequiresKey(t *testing.T) {
	_, err := NewGeminiEmbedder(GeminiConfig{})
	assert.Error(t, err)
}

func TestGeminiEmbedder_Embed(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/text-embedding-004:embedContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "models/text-embedding-004", req.Model)
		assert.Equal(t, taskQuery, req.TaskType)
		assert.Equal(t, "what is it", req.Content.Parts[0].Text)
		_, _ = w.Write([]byte(`{"embedding":{"values":[3,4]}}`))
	}, 2)

	v, err := g.Embed(context.Background(), "what is it")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, v, 1e-6)
}

func TestGeminiEmbedder_EmbedBatchSplits(t *testing.T) {
	var (
		mu    sync.Mutex
		sizes []int
	)
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/text-embedding-004:batchEmbedContents", r.URL.Path)
		var req batchEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		sizes = append(sizes, len(req.Requests))
		mu.Unlock()
		resp := batchEmbedResponse{}
		for _, rq := range req.Requests {
			assert.Equal(t, taskDocument, rq.TaskType)
			resp.Embeddings = append(resp.Embeddings, embedValues{Values: []float64{1, 0}})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}, 0)

	texts := make([]string, maxBatchSize+5)
	for i := range texts {
		texts[i] = "chunk"
	}
	vecs, err := g.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vecs, len(texts))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{maxBatchSize, 5}, sizes)
}

func TestGeminiEmbedder_APIError(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}, 0)

	_, err := g.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestGeminiEmbedder_DimensionMismatch(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":{"values":[1,2,3]}}`))
	}, 768)

	_, err := g.Embed(context.Background(), "x")
	assert.ErrorContains(t, err, "expected 768 dimensions")
}

func TestGeminiEmbedder_BatchCountMismatch(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[]}`))
	}, 0)

	_, err := g.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}
