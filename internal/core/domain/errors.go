package domain

import "errors"

// Domain errors represent business outcomes, distinct from infrastructure
// failures. Callers branch on these instead of catching generic errors.
var (
	// ErrNoEvidence indicates the pipeline completed successfully but found
	// zero IDs, abstracts and qualifying sections. It is a sentinel outcome,
	// not a fetch failure.
	ErrNoEvidence = errors.New("no evidence found")

	// ErrNoAbstracts indicates records were retrieved but none carries an
	// abstract usable for grounding.
	ErrNoAbstracts = errors.New("no abstracts available for grounding")

	// ErrInvalidInput indicates malformed or invalid request parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSemanticUnavailable indicates the similarity collaborator is not
	// configured or failed; ranking degrades to lexical-only.
	ErrSemanticUnavailable = errors.New("semantic similarity unavailable")

	// ErrSynthesisUnavailable indicates the synthesis collaborator is not
	// configured.
	ErrSynthesisUnavailable = errors.New("synthesis service unavailable")
)
