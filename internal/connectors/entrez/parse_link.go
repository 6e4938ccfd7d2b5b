package entrez

import "strings"

// ParseFullTextLinks extracts PMID to PMCID mappings from ELink XML for
// the pubmed_pmc link set. PMCIDs are the numeric part only, without a
// "PMC" prefix.
func ParseFullTextLinks(xmlText string) map[string]string {
	out := map[string]string{}
	if strings.TrimSpace(xmlText) == "" {
		return out
	}
	root := parseTree(xmlText)
	for _, ls := range root.find("LinkSet") {
		pmid := ""
		for _, idList := range ls.find("IdList") {
			pmid = idList.firstText("Id")
			if pmid != "" {
				break
			}
		}
		if pmid == "" {
			continue
		}
	dbs:
		for _, db := range ls.find("LinkSetDb") {
			if db.firstText("LinkName") != "pubmed_pmc" {
				continue
			}
			for _, link := range db.find("Link") {
				if pmcid := link.firstText("Id"); pmcid != "" {
					out[pmid] = pmcid
					break dbs
				}
			}
		}
	}
	return out
}
