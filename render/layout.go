package render

import (
	"regexp"
	"strings"
)

// Style identifies how a laid-out line is drawn.
type Style int

const (
	StyleTitle Style = iota
	StyleAuthor
	StyleHeading
	StyleBody
)

// Line is one positioned line of text on a page. Y is the baseline
// offset from the top of the page in layout units.
type Line struct {
	Text     string
	Style    Style
	Centered bool
	Y        float64
}

// Page is one fixed-size page of positioned lines.
type Page struct {
	Lines []Line
}

// Metrics are the fixed layout constants. All distances are in
// millimeters on an A4 page; font sizes are in points.
type Metrics struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64

	TitleSize   float64
	AuthorSize  float64
	HeadingSize float64
	BodySize    float64

	TitleLineHeight   float64
	AuthorLineHeight  float64
	HeadingLineHeight float64
	BodyLineHeight    float64

	HeadingSpaceBefore float64
	HeadingSpaceAfter  float64
	ParagraphSpace     float64
}

// DefaultMetrics is the layout used for the downloadable paper.
var DefaultMetrics = Metrics{
	PageWidth:  210,
	PageHeight: 297,
	Margin:     20,

	TitleSize:   18,
	AuthorSize:  12,
	HeadingSize: 13,
	BodySize:    11,

	TitleLineHeight:   10,
	AuthorLineHeight:  7,
	HeadingLineHeight: 8,
	BodyLineHeight:    6,

	HeadingSpaceBefore: 4,
	HeadingSpaceAfter:  2,
	ParagraphSpace:     3,
}

// MeasureFunc reports the rendered width of text at a style's font size,
// in the same units as the page metrics. Injected so the layout pass is a
// pure function testable without a PDF backend.
type MeasureFunc func(text string, style Style) float64

// sectionHeadings are the paragraph strings treated as headings, matched
// case-insensitively against the whole trimmed paragraph.
var sectionHeadings = map[string]bool{
	"abstract":               true,
	"introduction":           true,
	"literature review":      true,
	"methodology":            true,
	"discussion":             true,
	"conclusion":             true,
	"references":             true,
	"participants":           true,
	"measures":               true,
	"procedure":              true,
	"data analysis":          true,
	"ethical considerations": true,
}

var blankLineSplit = regexp.MustCompile(`\n[ \t]*\n`)

type layoutState int

const (
	expectingTitle layoutState = iota
	expectingAuthorOrBody
	inBody
)

// layouter carries the running cursor through one layout pass.
type layouter struct {
	m       Metrics
	measure MeasureFunc
	pages   []Page
	cursor  float64
}

// LayoutDocument converts structured paper text into positioned pages.
// The first paragraph is always the title, whatever it contains;
// paragraphs prefixed "author:" are centered author lines; paragraphs
// matching a known section name become headings; everything else is
// greedily word-wrapped body text. Deterministic for a given text and
// measurer.
func LayoutDocument(text string, m Metrics, measure MeasureFunc) []Page {
	l := &layouter{m: m, measure: measure, cursor: m.Margin}
	l.pages = []Page{{}}

	paragraphs := splitParagraphs(text)
	state := expectingTitle

	for _, para := range paragraphs {
		switch state {
		case expectingTitle:
			l.emitWrapped(para, StyleTitle, true, m.TitleLineHeight)
			l.advance(m.ParagraphSpace)
			state = expectingAuthorOrBody

		case expectingAuthorOrBody:
			if isAuthorLine(para) {
				l.emitWrapped(para, StyleAuthor, true, m.AuthorLineHeight)
				l.advance(m.ParagraphSpace)
				continue
			}
			state = inBody
			fallthrough

		case inBody:
			if sectionHeadings[strings.ToLower(strings.TrimSpace(para))] {
				l.advance(m.HeadingSpaceBefore)
				l.emitLine(strings.TrimSpace(para), StyleHeading, false, m.HeadingLineHeight)
				l.advance(m.HeadingSpaceAfter)
				continue
			}
			l.emitWrapped(para, StyleBody, false, m.BodyLineHeight)
			l.advance(m.ParagraphSpace)
		}
	}

	return l.pages
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range blankLineSplit.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			// Inner single newlines are soft wraps from the generator.
			out = append(out, strings.Join(strings.Fields(p), " "))
		}
	}
	return out
}

func isAuthorLine(para string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(para)), "author:")
}

// emitWrapped greedily packs words into lines bounded by the printable
// width. The page-break check runs per line, so one long paragraph can
// span pages mid-sentence.
func (l *layouter) emitWrapped(para string, style Style, centered bool, lineHeight float64) {
	printable := l.m.PageWidth - 2*l.m.Margin
	words := strings.Fields(para)
	if len(words) == 0 {
		return
	}

	line := words[0]
	for _, word := range words[1:] {
		candidate := line + " " + word
		if l.measure(candidate, style) > printable {
			l.emitLine(line, style, centered, lineHeight)
			line = word
			continue
		}
		line = candidate
	}
	l.emitLine(line, style, centered, lineHeight)
}

// emitLine places one line at the cursor, breaking to a new page when the
// line would cross the bottom margin.
func (l *layouter) emitLine(text string, style Style, centered bool, lineHeight float64) {
	if l.cursor+lineHeight > l.m.PageHeight-l.m.Margin {
		l.pages = append(l.pages, Page{})
		l.cursor = l.m.Margin
	}
	l.cursor += lineHeight
	page := &l.pages[len(l.pages)-1]
	page.Lines = append(page.Lines, Line{
		Text:     text,
		Style:    style,
		Centered: centered,
		Y:        l.cursor,
	})
}

// advance moves the cursor without emitting a line. Spacing never forces
// a page break on its own; the next line's check handles overflow.
func (l *layouter) advance(space float64) {
	l.cursor += space
}
