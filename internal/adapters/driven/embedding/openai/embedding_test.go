package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearcite/clearcite-cli/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *SimilarityService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc, err := NewSimilarityService(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func TestNewSimilarityService_RequiresAPIKey(t *testing.T) {
	_, err := NewSimilarityService(Config{})
	assert.Error(t, err)
}

func TestScores_CosinePerText(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Input, 3) // query + 2 texts

		// Query along x; first text identical, second orthogonal.
		w.Write([]byte(`{"data":[
			{"index":0,"embedding":[1,0]},
			{"index":2,"embedding":[0,1]},
			{"index":1,"embedding":[2,0]}
		]}`))
	})

	scores, err := svc.Scores(context.Background(), "query", []string{"same", "orthogonal"})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.InDelta(t, 1.0, scores[0], 1e-9)
	assert.InDelta(t, 0.0, scores[1], 1e-9)
}

func TestScores_EmptyTexts(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	scores, err := svc.Scores(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestScores_FailureIsSemanticUnavailable(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	})
	_, err := svc.Scores(context.Background(), "query", []string{"text"})
	assert.ErrorIs(t, err, domain.ErrSemanticUnavailable)
}

func TestScores_IncompleteBatchIsSemanticUnavailable(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"index":0,"embedding":[1,0]}]}`))
	})
	_, err := svc.Scores(context.Background(), "query", []string{"text"})
	assert.ErrorIs(t, err, domain.ErrSemanticUnavailable)
}

func TestCosine_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, cosine([]float64{1, 2}, []float64{1}))
	assert.Equal(t, 0.0, cosine([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, cosine(nil, nil))
}
