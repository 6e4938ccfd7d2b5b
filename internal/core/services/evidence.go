package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/clearcite/clearcite-cli/internal/core/domain"
	"github.com/clearcite/clearcite-cli/internal/core/ports/driven"
	"github.com/clearcite/clearcite-cli/internal/core/ports/driving"
	"github.com/clearcite/clearcite-cli/internal/logger"
	"github.com/clearcite/clearcite-cli/internal/rank"
	"github.com/clearcite/clearcite-cli/internal/textproc"
)

// MaxSearchLimit caps how many records one retrieval may pull.
const MaxSearchLimit = 100

const relevanceSort = "relevance"

// Ensure EvidenceService implements the interface.
var _ driving.EvidenceService = (*EvidenceService)(nil)

// EvidenceService runs the retrieval-ranking pipeline: search, metadata and
// text fetches, chunking, hybrid ranking and top-k evidence selection.
type EvidenceService struct {
	source     driven.LiteratureSource
	similarity driven.SimilarityService // optional, may be nil
}

// NewEvidenceService creates an evidence service. The similarity service is
// optional (can be nil); without it ranking is lexical-only.
func NewEvidenceService(source driven.LiteratureSource, similarity driven.SimilarityService) *EvidenceService {
	return &EvidenceService{
		source:     source,
		similarity: similarity,
	}
}

// Search returns PMIDs matching term, most relevant first.
func (s *EvidenceService) Search(ctx context.Context, term string, limit int) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: empty search term", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	return s.source.Search(ctx, term, limit, relevanceSort)
}

// Retrieve returns assembled records (metadata merged with abstracts) for a
// term. When records exist but none carries an abstract it returns
// domain.ErrNoAbstracts, since such a corpus cannot ground anything.
func (s *EvidenceService) Retrieve(ctx context.Context, term string, limit int) ([]domain.Record, error) {
	pmids, err := s.Search(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	if len(pmids) == 0 {
		return []domain.Record{}, nil
	}

	meta, abstracts, err := s.fetchRecordParts(ctx, pmids)
	if err != nil {
		return nil, err
	}
	records := domain.AssembleRecords(pmids, meta, abstracts)

	any := false
	for _, r := range records {
		if r.Abstract != "" {
			any = true
			break
		}
	}
	if !any {
		return nil, domain.ErrNoAbstracts
	}
	return records, nil
}

// SelectEvidence runs the end-to-end pipeline and returns the top-k scored
// evidence chunks with de-duplicated references. A successful run that
// grounds nothing returns domain.ErrNoEvidence.
func (s *EvidenceService) SelectEvidence(ctx context.Context, term string, opts domain.SelectOptions) (*domain.EvidenceSet, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: empty search term", domain.ErrInvalidInput)
	}
	opts = opts.Normalize()
	if opts.Limit > MaxSearchLimit {
		opts.Limit = MaxSearchLimit
	}

	trace := uuid.NewString()[:8]
	logger.Section("Evidence Selection")
	logger.Debug("[%s] term=%q limit=%d topK=%d alpha=%.2f fulltext=%t",
		trace, term, opts.Limit, opts.TopK, opts.Alpha, opts.WantFullText)

	pmids, err := s.source.Search(ctx, term, opts.Limit, relevanceSort)
	if err != nil {
		return nil, err
	}
	if len(pmids) == 0 {
		logger.Debug("[%s] no search hits", trace)
		return nil, domain.ErrNoEvidence
	}
	logger.Debug("[%s] %d search hits", trace, len(pmids))

	// Metadata, abstracts and full-text links are independent; fetch them
	// concurrently. A failed link lookup only loses the optional full-text
	// enrichment, so it degrades instead of failing the pipeline.
	var (
		meta      map[string]domain.ArticleMeta
		abstracts map[string]string
		links     map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		meta, err = s.source.Summary(gctx, pmids)
		return err
	})
	g.Go(func() error {
		var err error
		abstracts, err = s.source.Abstracts(gctx, pmids)
		return err
	})
	if opts.WantFullText {
		g.Go(func() error {
			var err error
			links, err = s.source.FullTextLinks(gctx, pmids)
			if err != nil {
				logger.Warn("[%s] full-text link lookup failed, continuing without full text: %v", trace, err)
				links = nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	records := domain.AssembleRecords(pmids, meta, abstracts)

	nowYear := opts.NowYear
	if nowYear == 0 {
		nowYear = time.Now().UTC().Year()
	}

	corpus, chunks := s.buildCorpus(ctx, trace, records, links, opts)
	if len(corpus) == 0 {
		logger.Debug("[%s] nothing to ground", trace)
		return nil, domain.ErrNoEvidence
	}
	logger.Debug("[%s] corpus of %d chunks", trace, len(corpus))

	// Hybrid content score, optionally semantic.
	var semantic []float64
	usedSemantic := false
	if opts.UseSemantic && s.similarity != nil {
		semantic, err = s.similarity.Scores(ctx, term, corpus)
		if err != nil {
			logger.Warn("[%s] semantic scoring unavailable, lexical only: %v", trace, err)
			semantic = nil
		} else {
			usedSemantic = true
		}
	}
	scores := rank.HybridScores(term, corpus, semantic, opts.Alpha)

	// Freshness blend, then study-type and section boosts.
	fresh := make([]float64, len(chunks))
	for i, ch := range chunks {
		fresh[i] = rank.Freshness(ch.Year, nowYear, opts.HalfLifeYears)
	}
	scores = rank.BlendFreshness(scores, fresh, opts.FreshnessWeight)
	for i, ch := range chunks {
		scores[i] *= domain.PreferenceBoost(ch.StudyType, opts.PreferTypes) * domain.SectionBoost(ch.Section)
	}

	top := rank.TopK(scores, opts.TopK)
	selected := make([]domain.ScoredChunk, 0, len(top))
	for _, i := range top {
		selected = append(selected, domain.ScoredChunk{EvidenceChunk: chunks[i], Score: scores[i]})
	}
	logger.Debug("[%s] selected %d chunks (semantic=%t)", trace, len(selected), usedSemantic)

	return &domain.EvidenceSet{
		Query:        term,
		UsedSemantic: usedSemantic,
		Chunks:       selected,
		References:   uniqueReferences(selected),
	}, nil
}

// fetchRecordParts pulls summary metadata and abstracts concurrently.
func (s *EvidenceService) fetchRecordParts(ctx context.Context, pmids []string) (map[string]domain.ArticleMeta, map[string]string, error) {
	var (
		meta      map[string]domain.ArticleMeta
		abstracts map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		meta, err = s.source.Summary(gctx, pmids)
		return err
	})
	g.Go(func() error {
		var err error
		abstracts, err = s.source.Abstracts(gctx, pmids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return meta, abstracts, nil
}

// buildCorpus chunks the abstracts and any wanted full-text sections into an
// aligned (texts, metadata) pair. Chunk metadata stays index-aligned with
// the corpus throughout ranking.
func (s *EvidenceService) buildCorpus(
	ctx context.Context,
	trace string,
	records []domain.Record,
	links map[string]string,
	opts domain.SelectOptions,
) ([]string, []domain.EvidenceChunk) {
	var corpus []string
	var chunks []domain.EvidenceChunk

	// Abstract chunks.
	for _, r := range records {
		if r.Abstract == "" {
			continue
		}
		stype := domain.ClassifyStudyType(r.PubTypes, r.Title)
		for idx, part := range textproc.ChunkByChars(r.Abstract, opts.ChunkChars, opts.Overlap) {
			corpus = append(corpus, part.Text)
			chunks = append(chunks, domain.EvidenceChunk{
				Source:    domain.SourceAbstract,
				PMID:      r.PMID,
				Section:   domain.AbstractSection,
				Title:     r.Title,
				Journal:   r.Journal,
				PubDate:   r.PubDate,
				Year:      r.Year,
				PubTypes:  r.PubTypes,
				StudyType: stype,
				DOI:       r.DOI,
				ChunkID:   fmt.Sprintf("%s-abs-%d", r.PMID, idx),
				Text:      part.Text,
			})
		}
	}

	// Full-text section chunks, for records with an open-access link.
	if len(links) == 0 {
		return corpus, chunks
	}
	var pmcids []string
	seen := map[string]struct{}{}
	for _, r := range records {
		pmcid, ok := links[r.PMID]
		if !ok || pmcid == "" {
			continue
		}
		if _, dup := seen[pmcid]; dup {
			continue
		}
		seen[pmcid] = struct{}{}
		pmcids = append(pmcids, pmcid)
	}
	if len(pmcids) == 0 {
		return corpus, chunks
	}

	sections, err := s.source.FullTextSections(ctx, pmcids)
	if err != nil {
		logger.Warn("[%s] full-text fetch failed, continuing with abstracts only: %v", trace, err)
		return corpus, chunks
	}

	for _, r := range records {
		pmcid := links[r.PMID]
		if pmcid == "" {
			continue
		}
		secTexts := sections[pmcid]
		if len(secTexts) == 0 {
			continue
		}
		stype := domain.ClassifyStudyType(r.PubTypes, r.Title)
		for _, secName := range opts.IncludeSections {
			secText, ok := secTexts[secName]
			if !ok || secText == "" {
				continue
			}
			for idx, part := range textproc.ChunkByChars(secText, opts.ChunkChars, opts.Overlap) {
				corpus = append(corpus, part.Text)
				chunks = append(chunks, domain.EvidenceChunk{
					Source:    domain.SourceFullText,
					PMID:      r.PMID,
					PMCID:     pmcid,
					Section:   secName,
					Title:     r.Title,
					Journal:   r.Journal,
					PubDate:   r.PubDate,
					Year:      r.Year,
					PubTypes:  r.PubTypes,
					StudyType: stype,
					DOI:       r.DOI,
					ChunkID:   fmt.Sprintf("%s-%s-%d", pmcid, secName, idx),
					Text:      part.Text,
				})
			}
		}
	}
	return corpus, chunks
}

// uniqueReferences de-duplicates the selected chunks into reference entries
// keyed by (pmid, pmcid), first seen first, with canonical lookup URLs.
func uniqueReferences(chunks []domain.ScoredChunk) []domain.Reference {
	type key struct{ pmid, pmcid string }
	seen := map[key]struct{}{}
	refs := make([]domain.Reference, 0, len(chunks))
	for _, ch := range chunks {
		k := key{ch.PMID, ch.PMCID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		ref := domain.Reference{
			PMID:  ch.PMID,
			PMCID: ch.PMCID,
			Title: ch.Title,
		}
		if ch.PMID != "" {
			ref.URL = fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", ch.PMID)
		}
		if ch.PMCID != "" {
			ref.PMCURL = fmt.Sprintf("https://www.ncbi.nlm.nih.gov/pmc/articles/PMC%s/", ch.PMCID)
		}
		refs = append(refs, ref)
	}
	return refs
}
