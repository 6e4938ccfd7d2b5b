package driven

import (
	"context"

	"github.com/clearcite/clearcite-cli/internal/core/domain"
)

// SynthesisService produces a grounded answer from a question and an ordered
// list of evidence chunks. Replies are schema-guarded by the implementation
// but citation contracts are validated by the caller; implementations must
// not be trusted to only cite supplied evidence.
type SynthesisService interface {
	// Synthesize answers the question using only the given evidence.
	Synthesize(ctx context.Context, question string, evidence []domain.ScoredChunk) (*domain.SynthesisResult, error)
}
