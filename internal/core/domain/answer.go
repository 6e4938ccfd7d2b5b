package domain

// InsufficientEvidence is the sentinel answer returned when a question
// cannot be grounded in the retrieved evidence.
const InsufficientEvidence = "insufficient_evidence"

// Citation points a claim to a specific document and carries a quote that
// must be a verbatim substring of the cited evidence snippet.
type Citation struct {
	PMID  string `json:"pmid"`
	PMCID string `json:"pmcid"` // numeric, no "PMC" prefix
	Quote string `json:"quote"`
}

// SynthesisResult is the raw reply of the synthesis collaborator, before
// citation validation.
type SynthesisResult struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	Notes     string     `json:"notes"`
}

// GroundedAnswer is the validated result of the answer operation.
type GroundedAnswer struct {
	UsedSemantic bool        `json:"used_semantic"`
	Answer       string      `json:"answer"`
	Citations    []Citation  `json:"citations"`
	Notes        string      `json:"notes"`
	References   []Reference `json:"references"`
}

// NoEvidenceAnswer builds the well-formed sentinel answer with an
// explanatory note.
func NoEvidenceAnswer(note string) *GroundedAnswer {
	return &GroundedAnswer{
		Answer:     InsufficientEvidence,
		Citations:  []Citation{},
		Notes:      note,
		References: []Reference{},
	}
}
