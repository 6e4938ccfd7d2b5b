package entrez

import "strings"

// Key identifies one cached E-utilities response. Keys compare by value:
// two keys are equal iff every component matches. ID lists are canonicalised
// to a comma-joined string so the struct stays comparable.
type Key struct {
	// Kind is the call kind ("esearch", "esummary", ...).
	Kind string

	// Term is the search term (esearch only).
	Term string

	// Limit is the maximum result count (esearch only).
	Limit int

	// Sort is the result ordering (esearch only).
	Sort string

	// IDs is the comma-joined, order-preserving ID list (ID-based calls).
	IDs string

	// Keyed records whether an API key was attached, so keyed and unkeyed
	// responses never alias.
	Keyed bool
}

func searchKey(term string, limit int, sort string, keyed bool) Key {
	return Key{Kind: kindSearch, Term: term, Limit: limit, Sort: sort, Keyed: keyed}
}

func idsKey(kind string, ids []string, keyed bool) Key {
	return Key{Kind: kind, IDs: strings.Join(ids, ","), Keyed: keyed}
}
