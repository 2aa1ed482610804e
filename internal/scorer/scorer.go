// Package scorer measures how much two answers agree using TF-IDF cosine
// similarity, with the vectorizer fitted on just the two texts.
package scorer

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Tokens are runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases text and splits it into terms.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Score returns the similarity of a and b as a percentage in [0, 100],
// rounded to two decimals. Identical texts score 100; texts sharing no
// terms score 0.
func Score(a, b string) float64 {
	if a == b {
		return 100
	}
	sim := Cosine(Tokenize(a), Tokenize(b))
	return Round2(sim * 100)
}

// Round2 rounds x to two decimals from its exact binary value, ties to even,
// so 0.125 becomes 0.12 and 2.675 (stored just below) becomes 2.67.
func Round2(x float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// Cosine computes the cosine similarity of the TF-IDF vectors of two token
// lists. IDF is smoothed: idf(t) = ln((1+n)/(1+df(t))) + 1 with n = 2, and
// each vector is L2-normalised.
func Cosine(a, b []string) float64 {
	tfA := termFrequencies(a)
	tfB := termFrequencies(b)
	if len(tfA) == 0 || len(tfB) == 0 {
		return 0
	}

	idf := func(term string) float64 {
		df := 0
		if tfA[term] > 0 {
			df++
		}
		if tfB[term] > 0 {
			df++
		}
		return math.Log(3/float64(1+df)) + 1
	}

	// Summing in a fixed term order keeps the score reproducible and
	// symmetric in its arguments.
	terms := make([]string, 0, len(tfA)+len(tfB))
	for term := range tfA {
		terms = append(terms, term)
	}
	for term := range tfB {
		if _, ok := tfA[term]; !ok {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	var dot, normA, normB float64
	for _, term := range terms {
		w := idf(term)
		wa := float64(tfA[term]) * w
		wb := float64(tfB[term]) * w
		dot += wa * wb
		normA += wa * wa
		normB += wb * wb
	}
	if dot == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		sim = 1
	}
	return sim
}

func termFrequencies(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}
