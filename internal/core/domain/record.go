package domain

import (
	"regexp"
	"strings"
)

// yearPattern matches a plausible 4-digit publication year.
var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ArticleMeta holds the summary fields returned by the metadata source for
// one document. Absent fields stay zero-valued.
type ArticleMeta struct {
	Title           string
	FullJournalName string
	Source          string
	PubDate         string
	EPubDate        string
	ELocationID     string
	PubTypes        []string
}

// Record is a normalised bibliographic record: summary metadata merged with
// the document's abstract. Records are immutable after assembly.
type Record struct {
	PMID     string
	Title    string
	Journal  string
	PubDate  string
	Year     int // 0 when unknown
	DOI      string
	PubTypes []string
	Abstract string
}

// SectionMap maps a full-text document id to its named section texts.
type SectionMap map[string]map[string]string

// ParseYear extracts a 4-digit year from a publication date string.
// Returns 0 when no year is found.
func ParseYear(s string) int {
	m := yearPattern.FindString(s)
	if m == "" {
		return 0
	}
	year := 0
	for _, r := range m {
		year = year*10 + int(r-'0')
	}
	return year
}

// AssembleRecords merges summary metadata and abstracts into one Record per
// id, preserving the input id order. Missing metadata or abstracts yield
// empty fields rather than errors.
func AssembleRecords(pmids []string, meta map[string]ArticleMeta, abstracts map[string]string) []Record {
	records := make([]Record, 0, len(pmids))
	for _, pmid := range pmids {
		m := meta[pmid]

		journal := m.FullJournalName
		if journal == "" {
			journal = m.Source
		}
		pubdate := m.PubDate
		if pubdate == "" {
			pubdate = m.EPubDate
		}
		doi := ""
		if m.ELocationID != "" {
			doi = strings.ReplaceAll(m.ELocationID, "doi: ", "")
		}

		records = append(records, Record{
			PMID:     pmid,
			Title:    m.Title,
			Journal:  journal,
			PubDate:  pubdate,
			Year:     ParseYear(pubdate),
			DOI:      doi,
			PubTypes: m.PubTypes,
			Abstract: abstracts[pmid],
		})
	}
	return records
}
