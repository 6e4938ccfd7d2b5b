// Package textproc provides text normalisation, sentence splitting,
// tokenisation and sentence-aligned chunking for the evidence pipeline.
package textproc

import (
	"regexp"
	"strings"
)

var (
	sentenceSplit = regexp.MustCompile(`([.!?])\s+`)
	wordPattern   = regexp.MustCompile(`\b\w+\b`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// NormalizeWhitespace collapses runs of whitespace and trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// SplitSentences splits text on sentence-ending punctuation followed by
// whitespace. It performs no cross-sentence merging; that is left to the
// chunker.
func SplitSentences(text string) []string {
	text = NormalizeWhitespace(text)
	if text == "" {
		return nil
	}

	// Keep the terminator with its sentence by replacing the split point
	// with a marker after the punctuation.
	marked := sentenceSplit.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// TokenizeLower returns the lowercased word tokens of s, for lexical scoring.
func TokenizeLower(s string) []string {
	matches := wordPattern.FindAllString(s, -1)
	tokens := make([]string, len(matches))
	for i, m := range matches {
		tokens[i] = strings.ToLower(m)
	}
	return tokens
}
