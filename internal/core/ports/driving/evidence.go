// Package driving provides interfaces for primary adapters (CLI, MCP) to
// invoke core services.
package driving

import (
	"context"

	"github.com/clearcite/clearcite-cli/internal/core/domain"
)

// EvidenceService exposes the retrieval-ranking pipeline.
type EvidenceService interface {
	// Search returns matching document IDs for a query term.
	Search(ctx context.Context, term string, limit int) ([]string, error)

	// Retrieve returns assembled records (metadata + abstracts) for a term.
	// Returns domain.ErrNoAbstracts when no record carries an abstract.
	Retrieve(ctx context.Context, term string, limit int) ([]domain.Record, error)

	// SelectEvidence runs the end-to-end pipeline: search, fetch, chunk,
	// rank, top-k selection and reference dedup. Returns domain.ErrNoEvidence
	// when a fully successful fetch grounds nothing.
	SelectEvidence(ctx context.Context, term string, opts domain.SelectOptions) (*domain.EvidenceSet, error)
}

// AnswerService synthesizes a citation-checked answer from selected evidence.
type AnswerService interface {
	// Answer retrieves evidence for term and answers question against it.
	// A request that cannot be grounded returns the insufficient-evidence
	// sentinel answer, not an error.
	Answer(ctx context.Context, question, term string, opts domain.SelectOptions) (*domain.GroundedAnswer, error)
}
