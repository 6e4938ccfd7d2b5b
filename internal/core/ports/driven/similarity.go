package driven

import "context"

// SimilarityService scores texts against a query by semantic similarity.
// This is an optional collaborator - when nil or failing, ranking degrades
// gracefully to lexical-only scoring.
//
// Implementations may include:
//   - OpenAI embeddings + cosine similarity
//   - Local embedding models
type SimilarityService interface {
	// Scores returns one similarity score per text, aligned with texts.
	// A domain.ErrSemanticUnavailable (possibly wrapped) signals graceful
	// degradation rather than a hard failure.
	Scores(ctx context.Context, query string, texts []string) ([]float64, error)
}
