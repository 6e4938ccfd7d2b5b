package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clearcite/clearcite-cli/internal/core/domain"
)

// RankingParams are the shared tuning knobs for evidence selection. Zero
// values take the pipeline defaults.
type RankingParams struct {
	Limit           int      `json:"limit,omitempty" jsonschema:"maximum number of PubMed records to retrieve (default 20)"`
	TopK            int      `json:"top_k,omitempty" jsonschema:"number of evidence chunks to keep (default 8)"`
	Alpha           float64  `json:"alpha,omitempty" jsonschema:"weight of semantic similarity in hybrid scoring, 0..1 (default 0.5)"`
	NoSemantic      bool     `json:"no_semantic,omitempty" jsonschema:"disable semantic similarity scoring"`
	FreshnessWeight float64  `json:"freshness_weight,omitempty" jsonschema:"blend weight for recency, 0..1 (default 0.3)"`
	HalfLifeYears   float64  `json:"half_life_years,omitempty" jsonschema:"recency decay half-life in years (default 5)"`
	PreferTypes     []string `json:"prefer_types,omitempty" jsonschema:"study types to up-weight, e.g. RCT, Meta-analysis"`
	NoFullText      bool     `json:"no_fulltext,omitempty" jsonschema:"skip open-access PMC full text"`
	IncludeSections []string `json:"include_sections,omitempty" jsonschema:"full-text sections to include (default Results, Methods, Discussion)"`
}

// toOptions maps the tool parameters onto pipeline options.
func (p RankingParams) toOptions() domain.SelectOptions {
	opts := domain.DefaultSelectOptions()
	if p.Limit > 0 {
		opts.Limit = p.Limit
	}
	if p.TopK > 0 {
		opts.TopK = p.TopK
	}
	if p.Alpha > 0 {
		opts.Alpha = p.Alpha
	}
	opts.UseSemantic = !p.NoSemantic
	if p.FreshnessWeight > 0 {
		opts.FreshnessWeight = p.FreshnessWeight
	}
	if p.HalfLifeYears > 0 {
		opts.HalfLifeYears = p.HalfLifeYears
	}
	opts.PreferTypes = p.PreferTypes
	opts.WantFullText = !p.NoFullText
	if len(p.IncludeSections) > 0 {
		opts.IncludeSections = p.IncludeSections
	}
	return opts
}

// SearchInput is the input schema for the pubmed_search tool.
type SearchInput struct {
	Term  string `json:"term" jsonschema:"PubMed query, field tags like [tiab] allowed"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of PMIDs to return (default 20)"`
}

// SearchOutput is the output schema for the pubmed_search tool.
type SearchOutput struct {
	Count int      `json:"count"`
	PMIDs []string `json:"pmids"`
}

// SelectInput is the input schema for the select_evidence tool.
type SelectInput struct {
	Term string `json:"term" jsonschema:"PubMed query to ground the evidence in"`
	RankingParams
}

// SelectOutput is the output schema for the select_evidence tool.
type SelectOutput struct {
	Query        string               `json:"query"`
	UsedSemantic bool                 `json:"used_semantic"`
	Chunks       []domain.ScoredChunk `json:"chunks"`
	References   []domain.Reference   `json:"references"`
}

// AnswerInput is the input schema for the grounded_answer tool.
type AnswerInput struct {
	Question string `json:"question" jsonschema:"the question to answer using the retrieved evidence only"`
	Term     string `json:"term" jsonschema:"PubMed query used to retrieve the evidence"`
	RankingParams
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "pubmed_search",
		Description: "Search PubMed and return matching PMIDs ordered by relevance",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "select_evidence",
		Description: "Retrieve, chunk and rank PubMed/PMC evidence for a query, returning the top chunks with references",
	}, s.handleSelect)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "grounded_answer",
			Description: "Answer a question using only retrieved PubMed/PMC evidence, with verified citations",
		}, s.handleAnswer)
	}
}

// handleSearch handles the pubmed_search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	pmids, err := s.ports.Evidence.Search(ctx, input.Term, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, SearchOutput{Count: len(pmids), PMIDs: pmids}, nil
}

// handleSelect handles the select_evidence tool invocation. A query that
// grounds nothing yields an empty evidence set rather than a tool error.
func (s *Server) handleSelect(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SelectInput,
) (*mcp.CallToolResult, SelectOutput, error) {
	set, err := s.ports.Evidence.SelectEvidence(ctx, input.Term, input.toOptions())
	if err != nil {
		if errors.Is(err, domain.ErrNoEvidence) {
			return nil, SelectOutput{
				Query:      input.Term,
				Chunks:     []domain.ScoredChunk{},
				References: []domain.Reference{},
			}, nil
		}
		return nil, SelectOutput{}, err
	}
	return nil, SelectOutput{
		Query:        set.Query,
		UsedSemantic: set.UsedSemantic,
		Chunks:       set.Chunks,
		References:   set.References,
	}, nil
}

// handleAnswer handles the grounded_answer tool invocation.
func (s *Server) handleAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerInput,
) (*mcp.CallToolResult, domain.GroundedAnswer, error) {
	answer, err := s.ports.Answer.Answer(ctx, input.Question, input.Term, input.toOptions())
	if err != nil {
		return nil, domain.GroundedAnswer{}, err
	}
	return nil, *answer, nil
}
