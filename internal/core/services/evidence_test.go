package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearcite/clearcite-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockSource implements driven.LiteratureSource for testing.
type mockSource struct {
	pmids     []string
	meta      map[string]domain.ArticleMeta
	abstracts map[string]string
	links     map[string]string
	sections  domain.SectionMap

	searchErr    error
	summaryErr   error
	abstractsErr error
	linksErr     error
	sectionsErr  error

	sectionCalls int
}

func (m *mockSource) Search(_ context.Context, _ string, limit int, _ string) ([]string, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit < len(m.pmids) {
		return m.pmids[:limit], nil
	}
	return m.pmids, nil
}

func (m *mockSource) Summary(_ context.Context, _ []string) (map[string]domain.ArticleMeta, error) {
	return m.meta, m.summaryErr
}

func (m *mockSource) Abstracts(_ context.Context, _ []string) (map[string]string, error) {
	return m.abstracts, m.abstractsErr
}

func (m *mockSource) FullTextLinks(_ context.Context, _ []string) (map[string]string, error) {
	return m.links, m.linksErr
}

func (m *mockSource) FullTextSections(_ context.Context, _ []string) (domain.SectionMap, error) {
	m.sectionCalls++
	return m.sections, m.sectionsErr
}

// mockSimilarity implements driven.SimilarityService for testing.
type mockSimilarity struct {
	scores []float64
	err    error
	calls  int
}

func (m *mockSimilarity) Scores(_ context.Context, _ string, texts []string) ([]float64, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.scores != nil {
		return m.scores, nil
	}
	return make([]float64, len(texts)), nil
}

func twoRecordSource() *mockSource {
	return &mockSource{
		pmids: []string{"100", "200"},
		meta: map[string]domain.ArticleMeta{
			"100": {Title: "Statins and mortality", FullJournalName: "J Cardio", PubDate: "2023 Jan", PubTypes: []string{"Randomized Controlled Trial"}},
			"200": {Title: "A narrative on statins", Source: "J Rev", PubDate: "2010 Jun", PubTypes: []string{"Review"}},
		},
		abstracts: map[string]string{
			"100": "Statins reduced mortality in trial participants.",
			"200": "We narratively review statin usage over decades.",
		},
	}
}

// --- Tests ---

func TestSearch_ValidatesTerm(t *testing.T) {
	svc := NewEvidenceService(twoRecordSource(), nil)
	_, err := svc.Search(context.Background(), "   ", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_ClampsLimit(t *testing.T) {
	src := &mockSource{pmids: []string{"1"}}
	svc := NewEvidenceService(src, nil)
	got, err := svc.Search(context.Background(), "x", 5000)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, got)
}

func TestRetrieve_AssemblesRecords(t *testing.T) {
	svc := NewEvidenceService(twoRecordSource(), nil)
	records, err := svc.Retrieve(context.Background(), "statins", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "100", records[0].PMID)
	assert.Equal(t, "J Cardio", records[0].Journal)
	assert.Equal(t, 2023, records[0].Year)
	assert.Contains(t, records[0].Abstract, "reduced mortality")
	assert.Equal(t, "J Rev", records[1].Journal) // source fallback
}

func TestRetrieve_NoHitsIsEmptyNotError(t *testing.T) {
	svc := NewEvidenceService(&mockSource{}, nil)
	records, err := svc.Retrieve(context.Background(), "nothing", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRetrieve_AllAbstractsMissing(t *testing.T) {
	src := twoRecordSource()
	src.abstracts = map[string]string{}
	svc := NewEvidenceService(src, nil)
	_, err := svc.Retrieve(context.Background(), "statins", 10)
	assert.ErrorIs(t, err, domain.ErrNoAbstracts)
}

func TestSelectEvidence_NoHits(t *testing.T) {
	svc := NewEvidenceService(&mockSource{}, nil)
	_, err := svc.SelectEvidence(context.Background(), "nothing", domain.SelectOptions{})
	assert.ErrorIs(t, err, domain.ErrNoEvidence)
}

func TestSelectEvidence_AbstractPipeline(t *testing.T) {
	svc := NewEvidenceService(twoRecordSource(), nil)
	opts := domain.DefaultSelectOptions()
	opts.WantFullText = false
	opts.UseSemantic = false

	set, err := svc.SelectEvidence(context.Background(), "statins mortality", opts)
	require.NoError(t, err)
	assert.False(t, set.UsedSemantic)
	require.Len(t, set.Chunks, 2)

	ids := []string{set.Chunks[0].ChunkID, set.Chunks[1].ChunkID}
	assert.Contains(t, ids, "100-abs-0")
	assert.Contains(t, ids, "200-abs-0")
	for _, ch := range set.Chunks {
		assert.Equal(t, domain.SourceAbstract, ch.Source)
		assert.Equal(t, domain.AbstractSection, ch.Section)
	}

	require.Len(t, set.References, 2)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/100/", set.References[0].URL)
	assert.Empty(t, set.References[0].PMCURL)
}

func TestSelectEvidence_FullTextMergedAndFiltered(t *testing.T) {
	src := twoRecordSource()
	src.links = map[string]string{"100": "900100"}
	src.sections = domain.SectionMap{
		"900100": {
			"Results":          "Statins reduced mortality significantly in the trial arm.",
			"Acknowledgements": "never fetched",
			"Discussion":       "These statin findings align with prior mortality work.",
		},
	}
	svc := NewEvidenceService(src, nil)
	opts := domain.DefaultSelectOptions()
	opts.UseSemantic = false
	opts.IncludeSections = []string{"results"} // canonicalised to "Results"

	set, err := svc.SelectEvidence(context.Background(), "statins mortality", opts)
	require.NoError(t, err)

	var fullText []domain.ScoredChunk
	for _, ch := range set.Chunks {
		if ch.Source == domain.SourceFullText {
			fullText = append(fullText, ch)
		}
	}
	require.Len(t, fullText, 1)
	assert.Equal(t, "900100-Results-0", fullText[0].ChunkID)
	assert.Equal(t, "900100", fullText[0].PMCID)
	assert.Equal(t, "RCT", fullText[0].StudyType)

	var ref *domain.Reference
	for i := range set.References {
		if set.References[i].PMCID == "900100" {
			ref = &set.References[i]
		}
	}
	require.NotNil(t, ref)
	assert.Equal(t, "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC900100/", ref.PMCURL)
}

func TestSelectEvidence_FullTextFailureDegrades(t *testing.T) {
	src := twoRecordSource()
	src.linksErr = errors.New("elink down")
	svc := NewEvidenceService(src, nil)
	opts := domain.DefaultSelectOptions()
	opts.UseSemantic = false

	set, err := svc.SelectEvidence(context.Background(), "statins", opts)
	require.NoError(t, err)
	for _, ch := range set.Chunks {
		assert.Equal(t, domain.SourceAbstract, ch.Source)
	}

	src2 := twoRecordSource()
	src2.links = map[string]string{"100": "900100"}
	src2.sectionsErr = errors.New("efetch down")
	svc2 := NewEvidenceService(src2, nil)
	set2, err := svc2.SelectEvidence(context.Background(), "statins", opts)
	require.NoError(t, err)
	assert.NotEmpty(t, set2.Chunks)
}

func TestSelectEvidence_SemanticDegradation(t *testing.T) {
	sim := &mockSimilarity{err: domain.ErrSemanticUnavailable}
	svc := NewEvidenceService(twoRecordSource(), sim)
	opts := domain.DefaultSelectOptions()
	opts.WantFullText = false

	set, err := svc.SelectEvidence(context.Background(), "statins", opts)
	require.NoError(t, err)
	assert.False(t, set.UsedSemantic)
	assert.Equal(t, 1, sim.calls)
	assert.NotEmpty(t, set.Chunks)
}

func TestSelectEvidence_SemanticUsedWhenAvailable(t *testing.T) {
	sim := &mockSimilarity{scores: []float64{0.1, 0.9}}
	svc := NewEvidenceService(twoRecordSource(), sim)
	opts := domain.DefaultSelectOptions()
	opts.WantFullText = false
	opts.Alpha = 1 // semantic only
	opts.FreshnessWeight = 0

	set, err := svc.SelectEvidence(context.Background(), "statins", opts)
	require.NoError(t, err)
	assert.True(t, set.UsedSemantic)
	assert.Equal(t, "200", set.Chunks[0].PMID)
}

func TestSelectEvidence_PreferredTypeWins(t *testing.T) {
	// Records 100 and 200 tie lexically; the preference boost breaks the tie.
	src := &mockSource{
		pmids: []string{"100", "200", "300"},
		meta: map[string]domain.ArticleMeta{
			"100": {Title: "Trial A", PubDate: "2023 Jan", PubTypes: []string{"Randomized Controlled Trial"}},
			"200": {Title: "Review B", PubDate: "2023 Jan", PubTypes: []string{"Review"}},
			"300": {Title: "Off topic", PubDate: "2023 Jan"},
		},
		abstracts: map[string]string{
			"100": "Statins reduced mortality overall.",
			"200": "Statins reduced mortality overall.",
			"300": "Aspirin dosing in headaches.",
		},
	}
	svc := NewEvidenceService(src, nil)
	opts := domain.DefaultSelectOptions()
	opts.WantFullText = false
	opts.UseSemantic = false
	opts.FreshnessWeight = 0
	opts.PreferTypes = []string{"review"}

	set, err := svc.SelectEvidence(context.Background(), "statins mortality", opts)
	require.NoError(t, err)
	assert.Equal(t, "200", set.Chunks[0].PMID)
	assert.Equal(t, "Review", set.Chunks[0].StudyType)
}

func TestSelectEvidence_TopKRespected(t *testing.T) {
	svc := NewEvidenceService(twoRecordSource(), nil)
	opts := domain.DefaultSelectOptions()
	opts.WantFullText = false
	opts.UseSemantic = false
	opts.TopK = 1

	set, err := svc.SelectEvidence(context.Background(), "statins", opts)
	require.NoError(t, err)
	assert.Len(t, set.Chunks, 1)
}

func TestSelectEvidence_FetchFailurePropagates(t *testing.T) {
	src := twoRecordSource()
	src.summaryErr = errors.New("esummary exploded")
	svc := NewEvidenceService(src, nil)
	_, err := svc.SelectEvidence(context.Background(), "statins", domain.SelectOptions{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoEvidence)
}
