package cli

import (
	"context"

	"github.com/clearcite/clearcite-cli/internal/core/domain"
)

// mockEvidenceService returns canned results and records the arguments of
// the last call so tests can assert flag mapping.
type mockEvidenceService struct {
	searchErr   error
	retrieveErr error
	selectErr   error

	lastTerm  string
	lastLimit int
	lastOpts  domain.SelectOptions
}

func (m *mockEvidenceService) Search(_ context.Context, term string, limit int) ([]string, error) {
	m.lastTerm = term
	m.lastLimit = limit
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return []string{"12345678", "23456789"}, nil
}

func (m *mockEvidenceService) Retrieve(_ context.Context, term string, limit int) ([]domain.Record, error) {
	m.lastTerm = term
	m.lastLimit = limit
	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	return []domain.Record{{
		PMID:     "12345678",
		Title:    "Statin therapy and cardiovascular outcomes",
		Journal:  "Test Journal of Medicine",
		PubDate:  "2023 Jan",
		Year:     2023,
		DOI:      "10.1000/tjm.2023.001",
		PubTypes: []string{"Randomized Controlled Trial"},
		Abstract: "Statin therapy reduced mortality in trial participants.",
	}}, nil
}

func (m *mockEvidenceService) SelectEvidence(_ context.Context, term string, opts domain.SelectOptions) (*domain.EvidenceSet, error) {
	m.lastTerm = term
	m.lastOpts = opts
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	return &domain.EvidenceSet{
		Query:        term,
		UsedSemantic: true,
		Chunks: []domain.ScoredChunk{{
			EvidenceChunk: domain.EvidenceChunk{
				Source:    domain.SourceAbstract,
				PMID:      "12345678",
				Section:   domain.AbstractSection,
				Title:     "Statin therapy and cardiovascular outcomes",
				StudyType: "RCT",
				Year:      2023,
				ChunkID:   "12345678-abs-0",
				Text:      "Statin therapy reduced mortality in trial participants.",
			},
			Score: 0.91,
		}},
		References: []domain.Reference{{
			PMID:  "12345678",
			Title: "Statin therapy and cardiovascular outcomes",
			URL:   "https://pubmed.ncbi.nlm.nih.gov/12345678/",
		}},
	}, nil
}

// mockAnswerService returns a canned grounded answer.
type mockAnswerService struct {
	err error

	lastQuestion string
	lastTerm     string
	lastOpts     domain.SelectOptions
}

func (m *mockAnswerService) Answer(_ context.Context, question, term string, opts domain.SelectOptions) (*domain.GroundedAnswer, error) {
	m.lastQuestion = question
	m.lastTerm = term
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return &domain.GroundedAnswer{
		UsedSemantic: true,
		Answer:       "Statins reduce cardiovascular mortality.",
		Citations: []domain.Citation{{
			PMID:  "12345678",
			Quote: "reduced mortality in trial participants",
		}},
		References: []domain.Reference{{
			PMID:  "12345678",
			Title: "Statin therapy and cardiovascular outcomes",
			URL:   "https://pubmed.ncbi.nlm.nih.gov/12345678/",
		}},
	}, nil
}

// setupTestServices swaps the wired services for mocks and returns a cleanup
// function restoring the originals.
func setupTestServices() (*mockEvidenceService, *mockAnswerService, func()) {
	oldEvidence := evidenceService
	oldAnswer := answerService

	evidence := &mockEvidenceService{}
	answer := &mockAnswerService{}
	evidenceService = evidence
	answerService = answer

	return evidence, answer, func() {
		evidenceService = oldEvidence
		answerService = oldAnswer
	}
}
