package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeWhitespace("  a\t b \n c  "))
	assert.Equal(t, "", NormalizeWhitespace("   "))
	assert.Equal(t, "", NormalizeWhitespace(""))
}

func TestSplitSentences(t *testing.T) {
	s := "Alpha beats beta. Gamma is neutral! Delta? Epsilon continues. Zeta ends."
	sents := SplitSentences(s)
	require.GreaterOrEqual(t, len(sents), 4)
	assert.Equal(t, "Alpha beats beta.", sents[0])
	assert.Equal(t, "Gamma is neutral!", sents[1])
	assert.Equal(t, "Delta?", sents[2])
}

func TestSplitSentences_Empty(t *testing.T) {
	assert.Empty(t, SplitSentences(""))
	assert.Empty(t, SplitSentences("  \n "))
}

func TestSplitSentences_NoTerminator(t *testing.T) {
	sents := SplitSentences("no terminator here")
	require.Len(t, sents, 1)
	assert.Equal(t, "no terminator here", sents[0])
}

func TestTokenizeLower(t *testing.T) {
	tokens := TokenizeLower("Cats Purr, softly!")
	assert.Equal(t, []string{"cats", "purr", "softly"}, tokens)
	assert.Empty(t, TokenizeLower(""))
}

func TestChunkByChars_Empty(t *testing.T) {
	assert.Empty(t, ChunkByChars("", 100, 10))
}

func TestChunkByChars_SingleChunk(t *testing.T) {
	chunks := ChunkByChars("One sentence. Two sentence.", 200, 20)
	require.Len(t, chunks, 1)
	assert.Equal(t, "One sentence. Two sentence.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len(chunks[0].Text), chunks[0].End)
}

func TestChunkByChars_RespectsBudget(t *testing.T) {
	s := "Alpha beats beta. Gamma is neutral! Delta? Epsilon continues. Zeta ends."
	chunks := ChunkByChars(s, 40, 8)
	require.GreaterOrEqual(t, len(chunks), 2)
	// Every sentence here fits the budget, so no chunk may exceed it.
	for i, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 40, "chunk %d over budget: %q", i, c.Text)
	}
}

func TestChunkByChars_Overlap(t *testing.T) {
	s := "Alpha beats beta. Gamma is neutral! Delta? Epsilon continues. Zeta ends."
	overlap := 8
	chunks := ChunkByChars(s, 40, overlap)
	require.GreaterOrEqual(t, len(chunks), 2)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		if len(prev) > overlap {
			tail := prev[len(prev)-overlap:]
			assert.True(t, strings.HasPrefix(chunks[i].Text, tail),
				"chunk %d should start with the previous chunk's tail", i)
		}
	}
}

func TestChunkByChars_ZeroOverlap(t *testing.T) {
	s := "Alpha beats beta. Gamma is neutral! Delta? Epsilon continues."
	chunks := ChunkByChars(s, 30, 0)
	require.GreaterOrEqual(t, len(chunks), 2)
	joined := ""
	for _, c := range chunks {
		joined += c.Text + " "
	}
	assert.Contains(t, joined, "Alpha beats beta.")
	assert.Contains(t, joined, "Epsilon continues.")
}

func TestChunkByChars_OversizedSentence(t *testing.T) {
	long := strings.Repeat("word ", 40) + "end."
	chunks := ChunkByChars("Short one. "+long, 50, 10)
	require.GreaterOrEqual(t, len(chunks), 2)

	found := false
	for _, c := range chunks {
		if strings.Contains(c.Text, "end.") {
			found = true
		}
	}
	assert.True(t, found, "over-length sentence must not be dropped")
}

func TestChunkByChars_Deterministic(t *testing.T) {
	s := "Alpha beats beta. Gamma is neutral! Delta? Epsilon continues. Zeta ends."
	a := ChunkByChars(s, 40, 8)
	b := ChunkByChars(s, 40, 8)
	assert.Equal(t, a, b)
}
