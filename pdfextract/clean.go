package pdfextract

import (
	"regexp"
	"strings"
)

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)

	// Poorly-segmented PDFs drop the spaces between words. These repair a
	// few unambiguous boundaries: lowercase/uppercase, sentence
	// punctuation followed by a letter, and digit/letter seams.
	caseBoundary  = regexp.MustCompile(`([a-z])([A-Z])`)
	punctBoundary = regexp.MustCompile(`([.,;:!?])([A-Za-z])`)
	digitToLetter = regexp.MustCompile(`(\d)([A-Za-z])`)
	letterToDigit = regexp.MustCompile(`([A-Za-z])(\d)`)
)

// CleanText normalizes extracted PDF text: consistent line endings,
// collapsed whitespace, repaired word boundaries, and a hard character
// cap so one huge document cannot swamp the generation context.
func CleanText(text string, maxChars int) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n\n")

	text = caseBoundary.ReplaceAllString(text, "$1 $2")
	text = punctBoundary.ReplaceAllString(text, "$1 $2")
	text = digitToLetter.ReplaceAllString(text, "$1 $2")
	text = letterToDigit.ReplaceAllString(text, "$1 $2")

	text = strings.TrimSpace(text)

	if maxChars > 0 && len(text) > maxChars {
		text = text[:maxChars]
	}
	return text
}
