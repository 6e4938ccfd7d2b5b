package entrez

import "strings"

// ParseAbstracts extracts abstract text per PMID from PubMed EFetch XML.
// Multiple AbstractText segments under an article's Abstract element are
// joined with newlines. Articles without a PMID are skipped; articles
// without abstract text map to "".
func ParseAbstracts(xmlText string) map[string]string {
	out := map[string]string{}
	if strings.TrimSpace(xmlText) == "" {
		return out
	}
	root := parseTree(xmlText)
	for _, art := range root.find("PubmedArticle") {
		pmid := art.firstText("PMID")
		if pmid == "" {
			continue
		}
		var segments []string
		for _, abs := range art.find("Abstract") {
			for _, seg := range abs.childrenNamed("AbstractText") {
				segments = append(segments, strings.TrimSpace(seg.text()))
			}
		}
		out[pmid] = strings.TrimSpace(strings.Join(segments, "\n"))
	}
	return out
}
