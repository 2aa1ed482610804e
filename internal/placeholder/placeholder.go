// Package placeholder shields spans that must survive translation verbatim
// (statute citations, URLs, inline code and HTML tags) behind numbered
// markers such as [[0]], and puts them back afterwards.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Applied in order; earlier patterns claim their spans first.
var protected = []*regexp.Regexp{
	regexp.MustCompile("`[^`\n]+`"),
	regexp.MustCompile(`https?://[^\s)\]]+`),
	regexp.MustCompile(`</?[a-zA-Z][^<>]*>`),
	regexp.MustCompile(`§+\s*\d+(?:[.(]\w+\)?)*`),
}

var markerRe = regexp.MustCompile(`\[\[(\d+)\]\]`)

func marker(i int) string { return fmt.Sprintf("[[%d]]", i) }

// Protect returns text with protected spans replaced by markers, and the
// spans in marker order.
func Protect(text string) (string, []string) {
	var spans []string
	for _, re := range protected {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			spans = append(spans, m)
			return marker(len(spans) - 1)
		})
	}
	return text, spans
}

// Restore replaces markers with their spans. Unknown markers are left alone.
func Restore(text string, spans []string) string {
	if len(spans) == 0 {
		return text
	}
	return markerRe.ReplaceAllStringFunc(text, func(m string) string {
		idx, err := strconv.Atoi(markerRe.FindStringSubmatch(m)[1])
		if err != nil || idx >= len(spans) {
			return m
		}
		return spans[idx]
	})
}

// Missing lists the indices of markers that are absent from text.
func Missing(text string, spans []string) []int {
	var missing []int
	for i := range spans {
		if !strings.Contains(text, marker(i)) {
			missing = append(missing, i)
		}
	}
	return missing
}

// Hint is appended to LLM translation prompts when markers are present.
func Hint() string {
	return "Keep every [[n]] marker exactly as written. Do not translate or remove them."
}
