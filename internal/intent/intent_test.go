package intent

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRequestedLanguage(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
		wantOK bool
	}{
		{"english phrasing for french", "Please answer in French", "fr", true},
		{"french phrasing", "Expliquez la décision en français s'il vous plaît", "fr", true},
		{"spanish phrasing for french", "Responde en francés", "fr", true},
		{"spanish", "¿Quién es responsable? Responde en español", "es", true},
		{"german", "Bitte antworten Sie auf Deutsch", "de", true},
		{"ukrainian cyrillic", "Відповідай українською, будь ласка", "uk", true},
		{"hindi", "कृपया हिंदी में उत्तर दें", "hi", true},
		{"uppercase", "ANSWER IN SPANISH", "es", true},
		{"no request", "what is liability here?", "", false},
		{"word inside another word", "what is the linguistic frenchness of it", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractRequestedLanguage(tt.prompt)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTable_FirstMatchWins(t *testing.T) {
	table := Table{
		{Code: "aa", Patterns: []*regexp.Regexp{regexp.MustCompile(`alpha`)}},
		{Code: "bb", Patterns: []*regexp.Regexp{regexp.MustCompile(`alpha`), regexp.MustCompile(`beta`)}},
	}

	got, ok := table.Extract("alpha and beta")
	assert.True(t, ok)
	assert.Equal(t, "aa", got)

	got, ok = table.Extract("only beta")
	assert.True(t, ok)
	assert.Equal(t, "bb", got)
}
