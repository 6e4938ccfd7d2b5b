package entrez

import (
	"regexp"
	"strings"
)

// wantedSections are the high-signal section names recognised in PMC
// full text, matched against sec-type attributes and section titles.
var wantedSections = []string{"results", "methods", "discussion", "conclusion", "limitations"}

var pmcidPattern = regexp.MustCompile(`(?i)PMC?(\d+)`)

// ParseSections extracts high-signal sections per article from PMC NXML.
// The result maps numeric PMCIDs (no "PMC" prefix) to section name to
// text, with section names capitalised ("Results", "Methods", ...).
// Articles whose PMCID cannot be identified are skipped, as are sections
// with no paragraph text.
func ParseSections(xmlText string) map[string]map[string]string {
	out := map[string]map[string]string{}
	if strings.TrimSpace(xmlText) == "" {
		return out
	}
	root := parseTree(xmlText)
	for _, art := range root.find("article") {
		pmcid := articlePMCID(art)
		if pmcid == "" {
			continue
		}

		buckets := map[string][]string{}
		for _, sec := range art.find("sec") {
			paraText := strings.TrimSpace(strings.Join(textFragmentsWithin(sec, "p"), " "))
			if paraText == "" {
				continue
			}

			secType := strings.ToLower(strings.TrimSpace(sec.attr("sec-type")))
			titleText := strings.ToLower(strings.Join(textFragmentsWithin(sec, "title"), " "))

			chosen := ""
			if containsWanted(secType) {
				chosen = secType
			} else {
				for _, w := range wantedSections {
					if strings.Contains(titleText, w) {
						chosen = w
						break
					}
				}
			}
			if chosen != "" {
				name := capitalize(chosen)
				buckets[name] = append(buckets[name], paraText)
			}
		}

		if len(buckets) == 0 {
			continue
		}
		realized := map[string]string{}
		for name, paras := range buckets {
			realized[name] = strings.TrimSpace(strings.Join(paras, "\n"))
		}
		out[pmcid] = realized
	}
	return out
}

// articlePMCID identifies an article's numeric PMCID. It prefers an
// article-id element whose pub-id-type is "pmcid" (case-insensitive),
// then falls back to any article-id, and finally any id element, whose
// text matches a PMC identifier pattern.
func articlePMCID(art *xmlNode) string {
	for _, id := range art.find("article-id") {
		if strings.EqualFold(strings.TrimSpace(id.attr("pub-id-type")), "pmcid") {
			pmcid := strings.TrimSpace(id.text())
			if pmcid == "" {
				continue
			}
			if len(pmcid) >= 3 && strings.EqualFold(pmcid[:3], "PMC") {
				pmcid = pmcid[3:]
			}
			return pmcid
		}
	}
	for _, local := range []string{"article-id", "id"} {
		for _, id := range art.find(local) {
			if m := pmcidPattern.FindStringSubmatch(strings.TrimSpace(id.text())); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

// textFragmentsWithin collects the trimmed, non-empty character data
// fragments appearing inside any descendant element with the given local
// name. Each fragment is counted once even when such elements nest.
func textFragmentsWithin(n *xmlNode, local string) []string {
	var out []string
	var walk func(node *xmlNode, inside bool)
	walk = func(node *xmlNode, inside bool) {
		if node.name == "" {
			if inside {
				if s := strings.TrimSpace(node.chardata); s != "" {
					out = append(out, s)
				}
			}
			return
		}
		inside = inside || node.name == local
		for _, c := range node.children {
			walk(c, inside)
		}
	}
	for _, c := range n.children {
		walk(c, false)
	}
	return out
}

func containsWanted(s string) bool {
	for _, w := range wantedSections {
		if s == w {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
