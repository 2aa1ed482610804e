// Package chunker cuts long texts into bounded pieces: chunks for the
// translation backends and the context passage handed to the models.
package chunker

import (
	"strings"
	"unicode"
)

// DefaultChunkSize keeps requests under the 5000-character limit of the
// free Google endpoint.
const DefaultChunkSize = 4500

// Truncate returns at most maxRunes runes from the start of text.
func Truncate(text string, maxRunes int) string {
	if maxRunes <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == maxRunes {
			return text[:i]
		}
		n++
	}
	return text
}

// Chunk splits text into pieces of at most maxRunes runes, preferring in
// order a paragraph break, the end of a sentence, then any whitespace.
// Pieces are trimmed and empty pieces are dropped. maxRunes <= 0 disables
// splitting.
func Chunk(text string, maxRunes int) []string {
	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return []string{text}
	}

	var chunks []string
	for len(runes) > maxRunes {
		cut := splitPoint(runes[:maxRunes])
		if piece := strings.TrimSpace(string(runes[:cut])); piece != "" {
			chunks = append(chunks, piece)
		}
		runes = []rune(strings.TrimSpace(string(runes[cut:])))
	}
	if piece := strings.TrimSpace(string(runes)); piece != "" {
		chunks = append(chunks, piece)
	}
	return chunks
}

// splitPoint returns the rune count to consume from window.
func splitPoint(window []rune) int {
	for i := len(window) - 2; i > 0; i-- {
		if window[i] == '\n' && window[i+1] == '\n' {
			return i + 2
		}
	}
	for i := len(window) - 2; i > 0; i-- {
		switch window[i] {
		case '.', '!', '?', '。':
			if unicode.IsSpace(window[i+1]) {
				return i + 1
			}
		}
	}
	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i
		}
	}
	return len(window)
}
