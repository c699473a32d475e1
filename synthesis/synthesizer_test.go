package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "paper-agent/errors"
	"paper-agent/genclient"
	"paper-agent/web/types"

	"go.uber.org/zap"
)

type fakeStore struct {
	conv    *types.Conversation
	papers  map[string]string
	upserts int
}

func newFakeStore(conv *types.Conversation) *fakeStore {
	return &fakeStore{conv: conv, papers: make(map[string]string)}
}

func (s *fakeStore) FetchConversation(_ context.Context, chatID, _ string) (*types.Conversation, error) {
	if s.conv == nil || s.conv.ChatID != chatID {
		return nil, apperrors.ErrNotFound
	}
	return s.conv, nil
}

func (s *fakeStore) UpsertGeneratedPaper(_ context.Context, chatID, text string) error {
	s.papers[chatID] = text
	s.upserts++
	return nil
}

type fakeGenerator struct {
	output     string
	err        error
	lastPrompt string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, _ genclient.Options) (string, error) {
	g.lastPrompt = prompt
	return g.output, g.err
}

const cannedPaper = `Entanglement as a Resource: A Survey

Author: Jane Doe

Abstract

This paper surveys quantum entanglement as discussed in the conversation.

Introduction

Entanglement binds particle states across arbitrary distances.

Literature Review

Prior work from Bell onward establishes the field.

Methodology

The conversation transcript was analyzed thematically.

Discussion

Implications for communication and computation are considered.

Conclusion

Entanglement remains the defining non-classical resource.

References

[1] J. S. Bell, Physics 1, 195 (1964).`

func newTestSynthesizer(store Store, gen Generator) *Synthesizer {
	assembler := NewAssembler(store, 6)
	return NewSynthesizer(assembler, store, gen, nil, zap.NewNop())
}

func TestSynthesizePromptContract(t *testing.T) {
	store := newFakeStore(conversationWith(
		[]string{"Summarize quantum entanglement", "Entanglement correlates distant particles."}, nil))
	gen := &fakeGenerator{output: cannedPaper}
	s := newTestSynthesizer(store, gen)

	paper, err := s.SynthesizeResearchPaper(context.Background(), "chat-1", "user@example.org", "Jane Doe")
	if err != nil {
		t.Fatalf("SynthesizeResearchPaper() error = %v", err)
	}

	if !strings.Contains(gen.lastPrompt, "Author: Jane Doe") {
		t.Error("prompt does not carry the author name verbatim")
	}
	for _, section := range RequiredSections {
		if !strings.Contains(gen.lastPrompt, section) {
			t.Errorf("prompt missing required section %q", section)
		}
	}
	if !strings.Contains(gen.lastPrompt, "Summarize quantum entanglement") {
		t.Error("prompt missing conversation context")
	}

	if !strings.Contains(paper, "Jane Doe") {
		t.Error("paper missing author name")
	}
	for _, section := range RequiredSections {
		if !strings.Contains(paper, section) {
			t.Errorf("paper missing section heading %q", section)
		}
	}
}

func TestSynthesizeUpsertIsIdempotent(t *testing.T) {
	store := newFakeStore(conversationWith([]string{"q", "a"}, nil))
	gen := &fakeGenerator{output: cannedPaper}
	s := newTestSynthesizer(store, gen)

	for i := 0; i < 2; i++ {
		if _, err := s.SynthesizeResearchPaper(context.Background(), "chat-1", "", "Jane Doe"); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if store.papers["chat-1"] != cannedPaper {
		t.Error("stored paper is not the generated text")
	}
	if store.upserts != 2 {
		t.Errorf("upserts = %d, want 2", store.upserts)
	}
	// The stored value replaces, never appends.
	if len(store.papers["chat-1"]) != len(cannedPaper) {
		t.Error("repeated synthesis duplicated the stored paper")
	}
}

func TestSynthesizeSurfacesGenerationFailure(t *testing.T) {
	store := newFakeStore(conversationWith([]string{"q"}, nil))
	gen := &fakeGenerator{err: apperrors.ErrContentFiltered}
	s := newTestSynthesizer(store, gen)

	_, err := s.SynthesizeResearchPaper(context.Background(), "chat-1", "", "Jane Doe")
	if !errors.Is(err, apperrors.ErrContentFiltered) {
		t.Errorf("error = %v, want ErrContentFiltered", err)
	}
	if store.upserts != 0 {
		t.Error("failed synthesis must not write to the store")
	}
}

func TestSynthesizeRejectsEmptyOutput(t *testing.T) {
	store := newFakeStore(conversationWith([]string{"q"}, nil))
	gen := &fakeGenerator{output: "   \n  "}
	s := newTestSynthesizer(store, gen)

	_, err := s.SynthesizeResearchPaper(context.Background(), "chat-1", "", "Jane Doe")
	if !errors.Is(err, apperrors.ErrInvalidGenerationOutput) {
		t.Errorf("error = %v, want ErrInvalidGenerationOutput", err)
	}
}

func TestSynthesizeUnknownConversation(t *testing.T) {
	store := newFakeStore(nil)
	s := newTestSynthesizer(store, &fakeGenerator{output: cannedPaper})

	_, err := s.SynthesizeResearchPaper(context.Background(), "missing", "", "Jane Doe")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
