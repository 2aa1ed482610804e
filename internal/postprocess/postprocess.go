// Package postprocess removes common LLM artifacts from generated text.
//
// It runs on every answer returned by the generation backend and on the
// output of the Ollama translation backend before either is used.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean strips reasoning blocks, leading preambles and outer quotes from
// text, normalises line endings and returns the trimmed result.
func Clean(text string) string {
	text = NormalizeNewlines(text)
	text = stripReasoning(text)
	text = stripPreamble(text)
	text = unquote(text)
	return strings.TrimSpace(text)
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// TokenCount is the number of whitespace-delimited tokens in text.
func TokenCount(text string) int {
	return len(strings.Fields(text))
}

// RE2 has no backreferences, so every tag pair is spelled out.
var reasoningRe = regexp.MustCompile(
	`(?is)<think>.*?</think>|<thinking>.*?</thinking>|<reasoning>.*?</reasoning>`,
)

// A model cut off mid-thought leaves an unclosed tag; drop everything after it.
var openReasoningRe = regexp.MustCompile(`(?is)(?:<think>|<thinking>|<reasoning>).*$`)

func stripReasoning(text string) string {
	text = reasoningRe.ReplaceAllString(text, "")
	text = openReasoningRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Preambles must sit at the very start and end with a colon.
var preamblePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]?\s*here(?:'s| is| are)(?: the| my)? (?:answers?|response|translation|translated text)\s*:`),
	regexp.MustCompile(`(?i)^here(?:'s| is| are)(?: the| my)? (?:answers?|response|translation|translated text)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:translation|translated text)\s*:`),
}

func stripPreamble(text string) string {
	for _, re := range preamblePatterns {
		if loc := re.FindStringIndex(text); loc != nil {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

var quotePairs = [][2]rune{
	{'"', '"'},
	{'«', '»'},
	{'“', '”'},
}

func unquote(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	inner := string(runes[1 : n-1])
	for _, p := range quotePairs {
		if runes[0] == p[0] && runes[n-1] == p[1] && !strings.ContainsRune(inner, p[1]) {
			return strings.TrimSpace(inner)
		}
	}
	return text
}
