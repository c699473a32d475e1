package synthesis

import (
	"context"
	"fmt"
	"strings"

	"paper-agent/web/types"
)

// Mode selects how much history the assembler keeps. The interactive
// assistant favors recency and a small prompt; paper synthesis favors
// completeness and takes everything.
type Mode int

const (
	// RecentWindow bounds the context to the most recent turns.
	RecentWindow Mode = iota
	// FullHistory keeps every turn.
	FullHistory
)

// BoundedContext is the merged, role-tagged transcript plus metadata
// about where it came from.
type BoundedContext struct {
	Text          string
	TurnCount     int
	Characters    int
	FromText      int // segments contributed by the typed-chat channel
	FromVoice     int // segments contributed by the voice channel
	FromDocuments int // characters contributed by attached-document extraction
}

// AddDocumentText merges attached-document text into the context and
// records its contribution in the source breakdown.
func (bc *BoundedContext) AddDocumentText(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	bc.Text += "\nAttached document text:\n" + text
	bc.Characters = len(bc.Text)
	bc.FromDocuments = len(text)
}

// Store is the subset of the persistence gateway the assembler reads.
type Store interface {
	FetchConversation(ctx context.Context, chatID, ownerEmail string) (*types.Conversation, error)
	UpsertGeneratedPaper(ctx context.Context, chatID, text string) error
}

// Assembler merges the typed-chat and voice channels of one conversation
// into a single ordered transcript. Text turns always come first, voice
// pairs after, each channel in its own original order; the channels are
// never interleaved by wall-clock time.
type Assembler struct {
	store        Store
	recentWindow int
}

func NewAssembler(store Store, recentWindow int) *Assembler {
	if recentWindow <= 0 {
		recentWindow = 6
	}
	return &Assembler{store: store, recentWindow: recentWindow}
}

// Assemble reads the conversation and returns its bounded context.
func (a *Assembler) Assemble(ctx context.Context, chatID, ownerEmail string, mode Mode) (*BoundedContext, error) {
	conv, err := a.store.FetchConversation(ctx, chatID, ownerEmail)
	if err != nil {
		return nil, err
	}
	return a.FromConversation(conv, mode), nil
}

// FromConversation assembles the context from an already-loaded
// conversation. Pure function of the record and the mode.
func (a *Assembler) FromConversation(conv *types.Conversation, mode Mode) *BoundedContext {
	type segment struct {
		text      string
		fromVoice bool
	}

	var segments []segment
	for i, utterance := range conv.TextTurns {
		role := "User"
		if i%2 == 1 {
			role = "Assistant"
		}
		segments = append(segments, segment{text: tagUtterance(role, utterance)})
	}
	for _, pair := range conv.VoiceTurns {
		text := tagUtterance("User", pair.UserUtterance) + "\n" +
			tagUtterance("Assistant", pair.AssistantUtterance)
		segments = append(segments, segment{text: text, fromVoice: true})
	}

	if mode == RecentWindow && len(segments) > a.recentWindow {
		segments = segments[len(segments)-a.recentWindow:]
	}

	bc := &BoundedContext{TurnCount: len(segments)}
	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(seg.text)
		sb.WriteString("\n")
		if seg.fromVoice {
			bc.FromVoice++
		} else {
			bc.FromText++
		}
	}
	bc.Text = sb.String()
	bc.Characters = len(bc.Text)
	return bc
}

// tagUtterance normalizes the role prefix so the transcript is uniformly
// tagged regardless of which channel the turn came from.
func tagUtterance(role, utterance string) string {
	trimmed := strings.TrimSpace(utterance)
	for _, prefix := range []string{"User:", "Assistant:", "user:", "assistant:"} {
		if strings.HasPrefix(trimmed, prefix) {
			trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
			break
		}
	}
	return fmt.Sprintf("%s: %s", role, trimmed)
}
