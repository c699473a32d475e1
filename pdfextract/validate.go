package pdfextract

import (
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
)

const (
	minValidTokens = 5
	minValidRatio  = 0.30
)

var (
	pageMarker   = regexp.MustCompile(`(?m)^--- Page \d+ ---$`)
	pageArtifact = regexp.MustCompile(`(?i)\bpage\s+\d+(\s+of\s+\d+)?\b`)
	dateArtifact = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	bareNumber   = regexp.MustCompile(`^\d+([.,]\d+)*$`)
	wordShape    = regexp.MustCompile(`^[A-Za-z]+(['-][A-Za-z]+)*$`)
	hasAlphanum  = regexp.MustCompile(`[A-Za-z0-9]`)
)

// IsValidExtraction applies the word-shape confidence heuristic used to
// flag garbled extraction (typically scanned PDFs run through a bad text
// layer). Page markers, dates and bare numbers are stripped first; the
// remaining tokens must contain at least minValidTokens word-shaped
// tokens making up at least minValidRatio of the total.
func IsValidExtraction(text string) bool {
	stripped := pageMarker.ReplaceAllString(text, " ")
	stripped = pageArtifact.ReplaceAllString(stripped, " ")
	stripped = dateArtifact.ReplaceAllString(stripped, " ")

	var tokens []string
	doc, err := prose.NewDocument(stripped,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err == nil {
		for _, tok := range doc.Tokens() {
			tokens = append(tokens, tok.Text)
		}
	} else {
		tokens = strings.Fields(stripped)
	}

	total := 0
	valid := 0
	for _, tok := range tokens {
		if !hasAlphanum.MatchString(tok) {
			continue // punctuation-only token
		}
		if bareNumber.MatchString(tok) {
			continue // page numbers, figures, years
		}
		total++
		if len(tok) >= 2 && wordShape.MatchString(tok) {
			valid++
		}
	}

	if valid < minValidTokens || total == 0 {
		return false
	}
	return float64(valid)/float64(total) >= minValidRatio
}
