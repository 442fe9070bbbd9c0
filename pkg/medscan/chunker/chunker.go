// Package chunker splits long text into pieces small enough for a
// bounded-context recognizer.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the fallback chunk size in characters, sized for a
// BERT-family model's input window.
const DefaultMaxChars = 4000

// Split cuts text into chunks of at most maxChars characters, preferring
// sentence boundaries. Within each window the cut lands on the last "."
// when one exists after the window start; otherwise the window is cut hard
// at maxChars. The terminator itself is consumed, not emitted, so joining
// chunks with "." restores the input wherever a sentence cut was used.
//
// Text that already fits in one window is returned as a single chunk.
// Whitespace-only text yields no chunks.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= maxChars {
		return []string{text}
	}

	var chunks []string
	s := 0
	for s < len(text) {
		e := s + maxChars
		if e > len(text) {
			e = len(text)
		} else {
			// Keep hard cuts off the middle of a rune.
			for e > s && !utf8.RuneStart(text[e]) {
				e--
			}
		}
		cut := strings.LastIndex(text[s:e], ".")
		step := 1
		if cut <= 0 {
			// No terminator after the window start: hard cut. The
			// dropped character is the whole rune at the cut.
			cut = e
			_, step = utf8.DecodeRuneInString(text[cut:])
		} else {
			cut += s
		}
		chunks = append(chunks, text[s:cut])
		s = cut + step
	}
	return chunks
}
