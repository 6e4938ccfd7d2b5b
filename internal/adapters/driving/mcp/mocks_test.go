package mcp

import (
	"context"

	"github.com/clearcite/clearcite-cli/internal/core/domain"
)

// mockEvidence implements driving.EvidenceService for testing.
type mockEvidence struct {
	pmids   []string
	records []domain.Record
	set     *domain.EvidenceSet
	err     error

	gotTerm string
	gotOpts domain.SelectOptions
}

func (m *mockEvidence) Search(_ context.Context, term string, _ int) ([]string, error) {
	m.gotTerm = term
	return m.pmids, m.err
}

func (m *mockEvidence) Retrieve(_ context.Context, term string, _ int) ([]domain.Record, error) {
	m.gotTerm = term
	return m.records, m.err
}

func (m *mockEvidence) SelectEvidence(_ context.Context, term string, opts domain.SelectOptions) (*domain.EvidenceSet, error) {
	m.gotTerm = term
	m.gotOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.set, nil
}

// mockAnswer implements driving.AnswerService for testing.
type mockAnswer struct {
	answer *domain.GroundedAnswer
	err    error

	gotQuestion string
	gotTerm     string
}

func (m *mockAnswer) Answer(_ context.Context, question, term string, _ domain.SelectOptions) (*domain.GroundedAnswer, error) {
	m.gotQuestion = question
	m.gotTerm = term
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}
