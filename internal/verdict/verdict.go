// Package verdict picks the more informative of two answers with a lexical
// heuristic: legal keyword hits plus word count.
package verdict

import "strings"

const (
	PrimaryLabel   = "LLaMA 3"
	SecondaryLabel = "Gemma"
)

// Keywords are counted as case-insensitive substrings, so "sentenced"
// also counts as a hit for "sentence".
var Keywords = []string{"must", "shall", "liable", "verdict", "judgment", "convicted", "sentence", "acquitted"}

// Weight is the heuristic score of one answer.
func Weight(text string) int {
	lower := strings.ToLower(text)
	hits := 0
	for _, k := range Keywords {
		hits += strings.Count(lower, k)
	}
	return hits + len(strings.Fields(text))
}

// Select returns the label of the higher-weighted answer. Ties go to the
// first answer.
func Select(a, b string) string {
	return SelectLabels(a, b, PrimaryLabel, SecondaryLabel)
}

// SelectLabels is Select with caller-provided labels.
func SelectLabels(a, b, labelA, labelB string) string {
	if Weight(a) >= Weight(b) {
		return labelA
	}
	return labelB
}
