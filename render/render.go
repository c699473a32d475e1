package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// fontFor maps a layout style to font family, style flags and size.
func fontFor(m Metrics, style Style) (family, flags string, size float64) {
	switch style {
	case StyleTitle:
		return "Helvetica", "B", m.TitleSize
	case StyleAuthor:
		return "Helvetica", "I", m.AuthorSize
	case StyleHeading:
		return "Helvetica", "B", m.HeadingSize
	default:
		return "Helvetica", "", m.BodySize
	}
}

// Document renders structured paper text into a paginated PDF byte
// stream. Layout is computed first as a pure pass, then replayed onto the
// PDF backend, so the same text always yields the same pages.
func Document(text string) ([]byte, error) {
	m := DefaultMetrics

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	// Reproducible bytes for a given input text: a fixed creation date and
	// sorted catalog emission (the font dictionaries are otherwise written
	// in map-iteration order).
	pdf.SetCreationDate(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	pdf.SetCatalogSort(true)

	measure := func(s string, style Style) float64 {
		family, flags, size := fontFor(m, style)
		pdf.SetFont(family, flags, size)
		return pdf.GetStringWidth(s)
	}

	pages := LayoutDocument(text, m, measure)
	for _, page := range pages {
		pdf.AddPage()
		for _, line := range page.Lines {
			family, flags, size := fontFor(m, line.Style)
			pdf.SetFont(family, flags, size)
			x := m.Margin
			if line.Centered {
				x = (m.PageWidth - pdf.GetStringWidth(line.Text)) / 2
				if x < m.Margin {
					x = m.Margin
				}
			}
			pdf.Text(x, line.Y, line.Text)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is the content-disposition name for a conversation's paper.
func Filename(chatID string) string {
	return fmt.Sprintf("research-paper-%s.pdf", chatID)
}
