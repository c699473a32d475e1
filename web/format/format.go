package format

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// PaperHTML renders the stored paper text as an HTML preview. The
// generator emits plain paragraphs with section-name lines; those lines
// are promoted to markdown headings first so the preview gets real
// structure.
func PaperHTML(paperText string) string {
	md := promoteSectionHeadings(paperText)

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}

var previewHeadings = []string{
	"Abstract", "Introduction", "Literature Review", "Methodology",
	"Discussion", "Conclusion", "References", "Participants", "Measures",
	"Procedure", "Data Analysis", "Ethical Considerations",
}

func promoteSectionHeadings(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, h := range previewHeadings {
			if strings.EqualFold(trimmed, h) {
				lines[i] = "## " + trimmed
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// PreprocessAssistantText normalizes generation output before storing it:
// curly quotes flattened so downstream rendering measures consistently.
func PreprocessAssistantText(text string) string {
	if text == "" {
		return text
	}
	return strings.NewReplacer(
		"“", "\"",
		"”", "\"",
		"‘", "'",
		"’", "'",
	).Replace(text)
}
