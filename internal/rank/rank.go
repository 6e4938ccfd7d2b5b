package rank

import (
	"math"
	"sort"
	"time"
)

// DefaultHalfLife is the recency decay half-life in years.
const DefaultHalfLife = 5.0

// neutralFreshness is assigned when a document's year is unknown.
const neutralFreshness = 0.5

// epsilon below which a score range is treated as degenerate.
const epsilon = 1e-12

// MinMax scales scores to [0,1]. If all values are equal (within epsilon)
// every value maps to 0.
func MinMax(scores []float64) []float64 {
	if len(scores) == 0 {
		return scores
	}
	lo, hi := scores[0], scores[0]
	for _, v := range scores[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]float64, len(scores))
	if hi-lo < epsilon {
		return out
	}
	for i, v := range scores {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// HybridScores combines BM25 lexical relevance with optional semantic
// similarity scores via a min-max normalised convex combination.
// alpha weighs the semantic side; with nil semantic scores the result is the
// normalised lexical score alone.
func HybridScores(query string, docs []string, semantic []float64, alpha float64) []float64 {
	lexical := MinMax(BM25Scores(query, docs))
	if semantic == nil {
		return lexical
	}
	semNorm := MinMax(semantic)
	out := make([]float64, len(lexical))
	for i := range out {
		out[i] = alpha*semNorm[i] + (1-alpha)*lexical[i]
	}
	return out
}

// Freshness returns an exponential recency score in (0,1]: 1.0 at age zero,
// 0.5 after one half-life. Unknown years (year <= 0) score the neutral 0.5.
func Freshness(year, nowYear int, halfLifeYears float64) float64 {
	if year <= 0 {
		return neutralFreshness
	}
	if nowYear <= 0 {
		nowYear = time.Now().UTC().Year()
	}
	age := math.Max(0, float64(nowYear-year))
	return math.Exp2(-age / math.Max(halfLifeYears, 0.1))
}

// BlendFreshness combines content scores with freshness scores, each min-max
// normalised independently, weighted by w in [0,1] on the freshness side.
func BlendFreshness(content, freshness []float64, w float64) []float64 {
	c := MinMax(content)
	f := MinMax(freshness)
	w = math.Max(0, math.Min(1, w))
	out := make([]float64, len(c))
	for i := range out {
		out[i] = (1-w)*c[i] + w*f[i]
	}
	return out
}

// TopK returns the indices of the k highest scores in descending order.
// Ties keep original corpus order. k is clamped to [1, len(scores)].
func TopK(scores []float64, k int) []int {
	if len(scores) == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	if k > len(scores) {
		k = len(scores)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order[:k]
}
