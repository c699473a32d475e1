package synthesis

import (
	"context"
	"fmt"
	"strings"

	apperrors "paper-agent/errors"
	"paper-agent/genclient"
	"paper-agent/pdfextract"

	"go.uber.org/zap"
)

// Generator is the text-generation dependency.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts genclient.Options) (string, error)
}

// DocumentExtractor supplies the text of the conversation's attached
// documents.
type DocumentExtractor interface {
	ExtractBatch(ctx context.Context, urls []string) (*pdfextract.BatchResult, error)
}

// Synthesizer turns a conversation into a structured research paper and
// persists it. One generation call per request: an upstream failure is
// surfaced to the caller, never silently retried, so a costly generation
// is never duplicated.
type Synthesizer struct {
	assembler *Assembler
	store     Store
	generator Generator
	extractor DocumentExtractor
	logger    *zap.Logger
}

func NewSynthesizer(assembler *Assembler, store Store, generator Generator, extractor DocumentExtractor, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		assembler: assembler,
		store:     store,
		generator: generator,
		extractor: extractor,
		logger:    logger,
	}
}

// SynthesizeResearchPaper assembles the conversation's full history plus
// any attached-document text, submits it under the fixed paper contract,
// and upserts the result keyed by chatID. Re-running always replaces the
// stored paper, never duplicates it.
func (s *Synthesizer) SynthesizeResearchPaper(ctx context.Context, chatID, ownerEmail, authorName string) (string, error) {
	conv, err := s.store.FetchConversation(ctx, chatID, ownerEmail)
	if err != nil {
		return "", err
	}

	bc := s.assembler.FromConversation(conv, FullHistory)

	if len(conv.DocumentRefs) > 0 && s.extractor != nil {
		batch, err := s.extractor.ExtractBatch(ctx, conv.DocumentRefs)
		if err != nil {
			return "", fmt.Errorf("extract attached documents: %w", err)
		}
		bc.AddDocumentText(batch.Text)
		s.logger.Info("Attached documents included in synthesis context",
			zap.String("chat_id", chatID),
			zap.Int("succeeded", batch.Succeeded),
			zap.Int("failed", batch.Failed),
			zap.Int("document_chars", bc.FromDocuments))
	}

	prompt := BuildPaperPrompt(bc.Text, authorName)
	s.logger.Info("Synthesizing research paper",
		zap.String("chat_id", chatID),
		zap.Int("turns", bc.TurnCount),
		zap.Int("context_chars", bc.Characters))

	paper, err := s.generator.Generate(ctx, prompt, genclient.Options{})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(paper) == "" {
		return "", fmt.Errorf("%w: synthesized paper is empty", apperrors.ErrInvalidGenerationOutput)
	}

	if err := s.store.UpsertGeneratedPaper(ctx, chatID, paper); err != nil {
		return "", apperrors.WrapError(err, "store generated paper")
	}
	return paper, nil
}
