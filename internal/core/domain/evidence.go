package domain

import "strings"

// SourceKind identifies where an evidence chunk came from.
type SourceKind string

// Evidence sources.
const (
	SourceAbstract SourceKind = "pubmed"
	SourceFullText SourceKind = "pmc"
)

// AbstractSection is the pseudo-section name for abstract-derived chunks.
const AbstractSection = "Abstract"

// StudyTypeUnspecified is the fallback evidence label.
const StudyTypeUnspecified = "Unspecified"

// EvidenceChunk is a text fragment enriched with its bibliographic
// provenance. The assembler keeps a slice of these index-aligned with the
// raw chunk corpus throughout ranking.
type EvidenceChunk struct {
	Source    SourceKind `json:"source"`
	PMID      string     `json:"pmid"`
	PMCID     string     `json:"pmcid,omitempty"` // numeric, no "PMC" prefix
	Section   string     `json:"section"`
	Title     string     `json:"title"`
	Journal   string     `json:"journal"`
	PubDate   string     `json:"pubdate"`
	Year      int        `json:"year,omitempty"`
	PubTypes  []string   `json:"pubtypes,omitempty"`
	StudyType string     `json:"study_type"`
	DOI       string     `json:"doi,omitempty"`
	ChunkID   string     `json:"chunk_id"`
	Text      string     `json:"text"`
}

// ScoredChunk is an EvidenceChunk with its final ranking score.
// Produced only at ranking time.
type ScoredChunk struct {
	EvidenceChunk
	Score float64 `json:"score"`
}

// Reference is a de-duplicated pointer to a source document with canonical
// lookup URLs.
type Reference struct {
	PMID   string `json:"pmid"`
	PMCID  string `json:"pmcid"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	PMCURL string `json:"pmc_url"`
}

// canonStudyTypes maps raw publication type tags to concise evidence labels.
var canonStudyTypes = map[string]string{
	"Randomized Controlled Trial": "RCT",
	"Clinical Trial":              "Clinical trial",
	"Meta-Analysis":               "Meta-analysis",
	"Systematic Review":           "Systematic review",
	"Review":                      "Review",
	"Cohort Studies":              "Cohort",
	"Case-Control Studies":        "Case-control",
	"Cross-Sectional Studies":     "Cross-sectional",
	"Comparative Study":           "Comparative",
	"Observational Study":         "Observational",
	"Multicenter Study":           "Multicenter",
	"Letter":                      "Letter",
	"Editorial":                   "Editorial",
}

// studyTypePriority orders labels from strongest to weakest evidence; the
// first present label wins when a document carries several.
var studyTypePriority = []string{
	"RCT", "Meta-analysis", "Systematic review", "Cohort", "Case-control",
	"Cross-sectional", "Clinical trial", "Observational", "Comparative",
	"Multicenter", "Review", "Editorial", "Letter",
}

// SectionWeights up-weights high-signal full-text sections during ranking.
// Unlisted sections weigh 1.0.
var SectionWeights = map[string]float64{
	"Results":     1.20,
	"Methods":     1.10,
	"Discussion":  1.05,
	"Conclusion":  1.05,
	"Limitations": 1.05,
}

// PreferredTypeBoost is the multiplier applied to chunks whose study type is
// in the caller's preferred set.
const PreferredTypeBoost = 1.2

// ClassifyStudyType maps raw publication type tags (plus title hints) to one
// concise evidence label, picking the highest-priority match when several
// apply. Unmatched documents are labelled Unspecified.
func ClassifyStudyType(pubTypes []string, title string) string {
	found := make(map[string]struct{})
	for _, pt := range pubTypes {
		if label, ok := canonStudyTypes[pt]; ok {
			found[label] = struct{}{}
		}
	}

	tl := strings.ToLower(title)
	if strings.Contains(tl, "systematic review") {
		found["Systematic review"] = struct{}{}
	}
	if strings.Contains(tl, "meta-analysis") || strings.Contains(tl, "meta analysis") {
		found["Meta-analysis"] = struct{}{}
	}

	for _, label := range studyTypePriority {
		if _, ok := found[label]; ok {
			return label
		}
	}
	return StudyTypeUnspecified
}

// PreferenceBoost returns the multiplicative boost for a study type given a
// caller-supplied preferred set, matched case-insensitively.
func PreferenceBoost(studyType string, preferred []string) float64 {
	if len(preferred) == 0 {
		return 1.0
	}
	want := strings.ToLower(studyType)
	for _, p := range preferred {
		if strings.ToLower(strings.TrimSpace(p)) == want {
			return PreferredTypeBoost
		}
	}
	return 1.0
}

// SectionBoost returns the fixed ranking weight for a section name.
func SectionBoost(section string) float64 {
	if w, ok := SectionWeights[section]; ok {
		return w
	}
	return 1.0
}
