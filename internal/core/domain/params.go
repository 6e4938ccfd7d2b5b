package domain

import "strings"

// Default retrieval and ranking parameters.
const (
	DefaultLimit           = 20
	DefaultChunkChars      = 1200
	DefaultOverlap         = 120
	DefaultTopK            = 8
	DefaultAlpha           = 0.5
	DefaultFreshnessWeight = 0.3
	DefaultHalfLifeYears   = 5.0
)

// DefaultSections are the full-text sections included when the caller does
// not narrow the selection.
var DefaultSections = []string{"Results", "Methods", "Discussion"}

// SelectOptions configures the end-to-end evidence selection pipeline.
// Zero values fall back to defaults via Normalize.
type SelectOptions struct {
	// Limit is the maximum number of records to retrieve.
	Limit int

	// ChunkChars is the approximate character budget per chunk.
	ChunkChars int

	// Overlap is the soft character overlap between consecutive chunks.
	Overlap int

	// TopK is the number of evidence chunks to keep.
	TopK int

	// Alpha weighs semantic similarity in the hybrid blend (0 = lexical only).
	Alpha float64

	// UseSemantic enables the semantic similarity collaborator when available.
	UseSemantic bool

	// FreshnessWeight blends recency into the content score (0..1).
	FreshnessWeight float64

	// HalfLifeYears is the recency decay half-life.
	HalfLifeYears float64

	// PreferTypes up-weights chunks whose study type matches (case-insensitive).
	PreferTypes []string

	// WantFullText also retrieves open-access full text when available.
	WantFullText bool

	// IncludeSections filters full-text sections; names are canonicalised to
	// leading-capital form.
	IncludeSections []string

	// NowYear anchors freshness decay; 0 means the current UTC year.
	NowYear int
}

// DefaultSelectOptions returns the pipeline defaults.
func DefaultSelectOptions() SelectOptions {
	return SelectOptions{
		Limit:           DefaultLimit,
		ChunkChars:      DefaultChunkChars,
		Overlap:         DefaultOverlap,
		TopK:            DefaultTopK,
		Alpha:           DefaultAlpha,
		UseSemantic:     true,
		FreshnessWeight: DefaultFreshnessWeight,
		HalfLifeYears:   DefaultHalfLifeYears,
		WantFullText:    true,
		IncludeSections: DefaultSections,
	}
}

// Normalize fills unset fields with defaults and canonicalises section names.
func (o SelectOptions) Normalize() SelectOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.ChunkChars <= 0 {
		o.ChunkChars = DefaultChunkChars
	}
	if o.Overlap < 0 {
		o.Overlap = DefaultOverlap
	}
	if o.TopK < 1 {
		o.TopK = DefaultTopK
	}
	if o.Alpha < 0 {
		o.Alpha = 0
	}
	if o.Alpha > 1 {
		o.Alpha = 1
	}
	if o.HalfLifeYears <= 0 {
		o.HalfLifeYears = DefaultHalfLifeYears
	}
	if len(o.IncludeSections) == 0 {
		o.IncludeSections = DefaultSections
	}
	o.IncludeSections = CanonicalSections(o.IncludeSections)
	return o
}

// CanonicalSections trims and capitalises section names ("results" ->
// "Results"), dropping empties.
func CanonicalSections(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		out = append(out, strings.ToUpper(n[:1])+strings.ToLower(n[1:]))
	}
	return out
}

// EvidenceSet is the result of the end-to-end selection operation.
type EvidenceSet struct {
	Query        string        `json:"query"`
	UsedSemantic bool          `json:"used_semantic"`
	Chunks       []ScoredChunk `json:"chunks"`
	References   []Reference   `json:"references"`
}
