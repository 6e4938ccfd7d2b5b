package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clearcite/clearcite-cli/internal/core/domain"
	"github.com/clearcite/clearcite-cli/internal/core/ports/driven"
	"github.com/clearcite/clearcite-cli/internal/core/ports/driving"
	"github.com/clearcite/clearcite-cli/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService turns selected evidence into a citation-checked answer.
// Grounding failures are outcomes, not errors: an unanswerable question
// yields the insufficient-evidence sentinel with a note explaining why.
type AnswerService struct {
	evidence  driving.EvidenceService
	synthesis driven.SynthesisService
}

// NewAnswerService creates an answer service.
func NewAnswerService(evidence driving.EvidenceService, synthesis driven.SynthesisService) *AnswerService {
	return &AnswerService{
		evidence:  evidence,
		synthesis: synthesis,
	}
}

// Answer retrieves evidence for term and synthesizes a grounded answer to
// question. Every returned citation carries a quote verified to be a
// verbatim substring of evidence the model was actually shown.
func (s *AnswerService) Answer(ctx context.Context, question, term string, opts domain.SelectOptions) (*domain.GroundedAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if s.synthesis == nil {
		return nil, domain.ErrSynthesisUnavailable
	}

	set, err := s.evidence.SelectEvidence(ctx, term, opts)
	if err != nil {
		if errors.Is(err, domain.ErrNoEvidence) {
			return domain.NoEvidenceAnswer("No literature hits or groundable text for the query."), nil
		}
		return nil, err
	}

	result, err := s.synthesis.Synthesize(ctx, question, set.Chunks)
	if err != nil {
		logger.Warn("synthesis failed: %v", err)
		out := domain.NoEvidenceAnswer("Synthesis call failed: " + err.Error())
		out.UsedSemantic = set.UsedSemantic
		out.References = set.References
		return out, nil
	}

	citations, dropped := validateCitations(result.Citations, set.Chunks)
	notes := result.Notes
	if dropped > 0 {
		logger.Warn("dropped %d citation(s) failing the grounding contract", dropped)
		if notes != "" {
			notes += " "
		}
		notes += "Some citations were removed because they did not quote the supplied evidence."
	}

	answer := result.Answer
	if answer == "" {
		answer = domain.InsufficientEvidence
	}

	return &domain.GroundedAnswer{
		UsedSemantic: set.UsedSemantic,
		Answer:       answer,
		Citations:    citations,
		Notes:        notes,
		References:   set.References,
	}, nil
}

// validateCitations keeps only citations that satisfy the grounding
// contract: a non-empty quote that is a verbatim substring of a supplied
// evidence chunk belonging to the cited document. PMCID prefixes are
// normalized to the numeric form before matching.
func validateCitations(citations []domain.Citation, evidence []domain.ScoredChunk) ([]domain.Citation, int) {
	kept := make([]domain.Citation, 0, len(citations))
	dropped := 0
	for _, c := range citations {
		c.PMID = strings.TrimSpace(c.PMID)
		c.PMCID = normalizePMCID(c.PMCID)
		c.Quote = strings.TrimSpace(c.Quote)
		if c.Quote == "" || (c.PMID == "" && c.PMCID == "") {
			dropped++
			continue
		}
		if !quoteGrounded(c, evidence) {
			dropped++
			continue
		}
		kept = append(kept, c)
	}
	return kept, dropped
}

// quoteGrounded reports whether the citation's quote appears verbatim in a
// chunk of the cited document.
func quoteGrounded(c domain.Citation, evidence []domain.ScoredChunk) bool {
	for _, ch := range evidence {
		matchesID := (c.PMID != "" && ch.PMID == c.PMID) ||
			(c.PMCID != "" && ch.PMCID == c.PMCID)
		if matchesID && strings.Contains(ch.Text, c.Quote) {
			return true
		}
	}
	return false
}

// normalizePMCID strips a case-insensitive "PMC" prefix, keeping the
// numeric identifier.
func normalizePMCID(pmcid string) string {
	pmcid = strings.TrimSpace(pmcid)
	if len(pmcid) >= 3 && strings.EqualFold(pmcid[:3], "PMC") {
		return pmcid[3:]
	}
	return pmcid
}
