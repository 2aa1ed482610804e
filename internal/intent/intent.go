// Package intent recognises an explicit output-language request in a
// free-text question, such as "please answer in French" or "en español".
package intent

import (
	"regexp"
	"strings"
)

// Rule maps one language code to the phrasings that request it.
type Rule struct {
	Code     string
	Patterns []*regexp.Regexp
}

// Table is scanned in order; the first matching rule wins.
type Table []Rule

// Go's \b only understands ASCII word characters, so phrases written in
// non-Latin scripts are matched without boundaries.
var DefaultTable = Table{
	rule("en", `\bin english\b`, `\ben anglais\b`, `\ben inglés\b`, `\bauf englisch\b`, `англійською`, `по-английски`, `на английском`, `अंग्रेज़ी में`, `अंग्रेजी में`),
	rule("fr", `\bin french\b`, `\ben français\b`, `\ben francais\b`, `\ben francés\b`, `\bauf französisch\b`, `французькою`, `по-французски`, `на французском`),
	rule("es", `\bin spanish\b`, `\ben español\b`, `\ben espanol\b`, `\ben espagnol\b`, `\bauf spanisch\b`, `іспанською`, `по-испански`, `на испанском`),
	rule("de", `\bin german\b`, `\bauf deutsch\b`, `\ben allemand\b`, `\ben alemán\b`, `німецькою`, `по-немецки`, `на немецком`),
	rule("it", `\bin italian\b`, `\bin italiano\b`, `\ben italien\b`, `\ben italiano\b`, `\bauf italienisch\b`),
	rule("pt", `\bin portuguese\b`, `\bem português\b`, `\ben portugais\b`, `\ben portugués\b`),
	rule("uk", `\bin ukrainian\b`, `українською`, `по-украински`, `на украинском`, `\ben ukrainien\b`),
	rule("ru", `\bin russian\b`, `по-русски`, `на русском`, `російською`, `\ben russe\b`),
	rule("pl", `\bin polish\b`, `\bpo polsku\b`, `польською`),
	rule("hi", `\bin hindi\b`, `हिंदी में`, `हिन्दी में`),
	rule("zh", `\bin chinese\b`, `用中文`, `中文回答`),
	rule("ja", `\bin japanese\b`, `日本語で`),
	rule("ar", `\bin arabic\b`, `بالعربية`, `باللغة العربية`),
}

func rule(code string, patterns ...string) Rule {
	r := Rule{Code: code, Patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		r.Patterns = append(r.Patterns, regexp.MustCompile(p))
	}
	return r
}

// Extract returns the first requested language code found in prompt.
func (t Table) Extract(prompt string) (string, bool) {
	text := strings.ToLower(prompt)
	for _, r := range t {
		for _, p := range r.Patterns {
			if p.MatchString(text) {
				return r.Code, true
			}
		}
	}
	return "", false
}

// ExtractRequestedLanguage applies DefaultTable.
func ExtractRequestedLanguage(prompt string) (string, bool) {
	return DefaultTable.Extract(prompt)
}
