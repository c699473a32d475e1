package pdfextract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// BatchResult aggregates a multi-document extraction run. Text holds one
// labeled block per document, success or failure, in input order.
type BatchResult struct {
	Text       string
	Succeeded  int
	Failed     int
	TotalChars int
}

// ExtractBatch processes document URLs strictly sequentially with a fixed
// delay between documents, bounding peak memory and keeping the source
// host's rate limits happy. A failed document is reported inside its own
// labeled block and never aborts the rest of the batch.
func (e *Extractor) ExtractBatch(ctx context.Context, urls []string) (*BatchResult, error) {
	batch := &BatchResult{}
	var sb strings.Builder

	for i, documentURL := range urls {
		if i > 0 && e.cfg.PDFBatchDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.cfg.PDFBatchDelay):
			}
		}

		name := documentName(documentURL)
		fmt.Fprintf(&sb, "=== PDF %d: %s ===\n", i+1, name)

		res, err := e.Extract(ctx, documentURL)
		if err != nil {
			batch.Failed++
			fmt.Fprintf(&sb, "[extraction failed: %v]\n\n", err)
			e.logger.Warn("Document extraction failed in batch",
				zap.String("url", documentURL),
				zap.Error(err))
			continue
		}

		batch.Succeeded++
		batch.TotalChars += res.Characters
		if res.LowConfidence {
			sb.WriteString("[warning: low-confidence extraction, text may be garbled]\n")
		}
		sb.WriteString(res.Text)
		sb.WriteString("\n\n")
	}

	batch.Text = sb.String()
	e.logger.Info("Document batch extraction completed",
		zap.Int("documents", len(urls)),
		zap.Int("succeeded", batch.Succeeded),
		zap.Int("failed", batch.Failed),
		zap.Int("total_chars", batch.TotalChars))
	return batch, nil
}
