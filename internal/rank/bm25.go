// Package rank implements the hybrid scoring engine: BM25 lexical relevance,
// optional semantic blending, recency decay and stable top-k selection.
package rank

import (
	"math"

	"github.com/clearcite/clearcite-cli/internal/textproc"
)

// BM25 parameters. k1 controls term-frequency saturation, b controls
// document-length normalisation.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// BM25Scores scores each document in docs against query using BM25 with the
// default parameters. An empty corpus yields an empty slice.
func BM25Scores(query string, docs []string) []float64 {
	return bm25(query, docs, DefaultK1, DefaultB)
}

func bm25(query string, docs []string, k1, b float64) []float64 {
	qTokens := textproc.TokenizeLower(query)
	docTokens := make([][]string, len(docs))
	for i, d := range docs {
		docTokens[i] = textproc.TokenizeLower(d)
	}

	n := len(docTokens)
	if n == 0 {
		return []float64{}
	}

	totalLen := 0
	for _, dt := range docTokens {
		totalLen += len(dt)
	}
	avgLen := float64(totalLen) / float64(n)

	// Document frequencies over distinct terms per document.
	df := make(map[string]int)
	for _, dt := range docTokens {
		seen := make(map[string]struct{}, len(dt))
		for _, tok := range dt {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// idf with a +1 inside the log to keep scores non-negative.
	idf := func(term string) float64 {
		d := float64(df[term])
		return math.Log((float64(n)-d+0.5)/(d+0.5) + 1.0)
	}

	scores := make([]float64, n)
	for i, dt := range docTokens {
		tf := make(map[string]int, len(dt))
		for _, tok := range dt {
			tf[tok]++
		}
		denomBase := k1 * (1 - b + b*float64(len(dt))/math.Max(avgLen, 1e-9))

		s := 0.0
		for _, term := range qTokens {
			f, ok := tf[term]
			if !ok {
				continue
			}
			freq := float64(f)
			s += idf(term) * (freq * (k1 + 1)) / (freq + denomBase)
		}
		scores[i] = s
	}
	return scores
}
