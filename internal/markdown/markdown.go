// Package markdown formats model answers as Markdown and renders them as
// HTML for the web page.
package markdown

import (
	"strings"
	"unicode"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// FormatAnswer trims every line, bolds numbered points such as "1." or "2)"
// and ends each line with two spaces so Markdown keeps the line breaks.
func FormatAnswer(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if isNumberedPoint(line) {
			lines[i] = "**" + line + "**  "
		} else {
			lines[i] = line + "  "
		}
	}
	return strings.Join(lines, "\n")
}

func isNumberedPoint(line string) bool {
	r := []rune(line)
	return len(r) >= 2 && unicode.IsDigit(r[0]) && (r[1] == '.' || r[1] == ')')
}

// ToHTML renders Markdown. Raw HTML in the input is dropped.
func ToHTML(md []byte) string {
	opts := html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML,
	}
	renderer := html.NewRenderer(opts)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	return string(markdown.Render(p.Parse(md), renderer))
}
