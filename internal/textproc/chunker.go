package textproc

import "strings"

// DefaultMaxChars is the default character budget per chunk.
const DefaultMaxChars = 1200

// DefaultOverlap is the default soft overlap carried between chunks.
const DefaultOverlap = 120

// Chunk is a sentence-aligned fragment of a source text.
// Start and End are character offsets into the original text, consistent
// with the overlap carried over from the previous chunk.
type Chunk struct {
	Text  string
	Start int
	End   int
}

// ChunkByChars splits text into sentence-aligned chunks of at most maxChars
// characters with a soft overlap between consecutive chunks. A single
// sentence longer than maxChars still becomes its own chunk. Output is
// deterministic; empty input yields no chunks.
func ChunkByChars(text string, maxChars, overlap int) []Chunk {
	if text == "" {
		return nil
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 {
		overlap = 0
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []Chunk
	var cur []string
	curLen := 0
	start := 0
	pos := 0

	flush := func() {
		chunkText := strings.TrimSpace(strings.Join(cur, " "))
		chunks = append(chunks, Chunk{
			Text:  chunkText,
			Start: start,
			End:   start + len(chunkText),
		})
		// Carry a tail of the closed chunk to preserve context continuity.
		tail := ""
		if overlap > 0 && len(chunkText) > overlap {
			tail = chunkText[len(chunkText)-overlap:]
		}
		if tail != "" {
			cur = []string{tail}
		} else {
			cur = nil
		}
		curLen = len(tail)
		start = pos - len(tail)
	}

	for _, s := range sentences {
		sLen := len(s) + 1 // account for an intervening space
		if len(cur) > 0 && curLen+sLen > maxChars {
			flush()
		}
		cur = append(cur, s)
		curLen += sLen
		pos += sLen
	}

	if len(cur) > 0 {
		chunkText := strings.TrimSpace(strings.Join(cur, " "))
		if chunkText != "" {
			chunks = append(chunks, Chunk{
				Text:  chunkText,
				Start: start,
				End:   start + len(chunkText),
			})
		}
	}

	return chunks
}
