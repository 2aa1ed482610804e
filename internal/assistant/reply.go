package assistant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/valpere/legalease/internal"
	"github.com/valpere/legalease/internal/markdown"
)

// Reply is everything produced for one question.
type Reply struct {
	Question     string `json:"question"`
	QueryLang    string `json:"query_lang"`
	TargetLang   string `json:"target_lang"`
	EnglishQuery string `json:"english_query"`

	// Primary and Secondary carry the display text, already in TargetLang.
	Primary   internal.ModelAnswer `json:"primary"`
	Secondary internal.ModelAnswer `json:"secondary"`

	// RawPrimary and RawSecondary are the answers before output-language
	// enforcement; the verdict is computed from them.
	RawPrimary   string `json:"-"`
	RawSecondary string `json:"-"`

	Verdict internal.Verdict `json:"verdict"`
	Notices []string         `json:"notices,omitempty"`
}

// FormatScore prints a score the way it is shown to users: two decimals at
// most and always at least one, e.g. "60.3" or "100.0".
func FormatScore(score float64) string {
	s := strconv.FormatFloat(score, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ScoreLine is the reliability line of the composite reply.
func (r *Reply) ScoreLine() string {
	return fmt.Sprintf("Reliability Score: %s%%", FormatScore(r.Verdict.Score))
}

// JudgmentLine is the verdict line of the composite reply.
func (r *Reply) JudgmentLine() string {
	return fmt.Sprintf("Final Judgment: %s's answer is more informative and reliable.", r.Verdict.Winner)
}

// Markdown renders the composite reply: the primary answer, the comparison
// answer, the reliability score and the verdict.
func (r *Reply) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#### %s Answer:\n\n", r.Primary.Label)
	b.WriteString(markdown.FormatAnswer(r.Primary.Text))
	b.WriteString("\n\n---\n\n")
	fmt.Fprintf(&b, "#### %s's Comparison Answer:\n\n", r.Secondary.Label)
	b.WriteString(markdown.FormatAnswer(r.Secondary.Text))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "### %s\n\n", r.ScoreLine())
	fmt.Fprintf(&b, "### %s", r.JudgmentLine())
	for _, n := range r.Notices {
		fmt.Fprintf(&b, "\n\n> %s", n)
	}
	return b.String()
}

// HTML is Markdown rendered for the web page.
func (r *Reply) HTML() string {
	return markdown.ToHTML([]byte(r.Markdown()))
}
