package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Input, 2)

		_ = json.NewEncoder(w).Encode(embedResponse{
			Embeddings: [][]float64{{1, 0}, {0, 1}},
		})
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL, Dimensions: 2})

	got, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float32{1, 0}, got[0])
	assert.Equal(t, []float32{0, 1}, got[1])
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(embedResponse{
			Embeddings: [][]float64{{1, 0}},
		})
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	assert.Error(t, err)
}

func TestEmbed_UsesBatchEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(embedResponse{
			Embeddings: [][]float64{{0.5, -0.5}},
		})
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	got, err := svc.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.5}, got)
}

func TestDefaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
}
