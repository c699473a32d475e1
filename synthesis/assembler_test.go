package synthesis

import (
	"strings"
	"testing"

	"paper-agent/web/types"
)

func conversationWith(textTurns []string, voicePairs []types.VoicePair) *types.Conversation {
	return &types.Conversation{
		ChatID:     "chat-1",
		OwnerEmail: "user@example.org",
		TextTurns:  textTurns,
		VoiceTurns: voicePairs,
	}
}

func TestFullHistoryContainsEveryTurnSegment(t *testing.T) {
	textTurns := []string{"q1", "a1", "q2", "a2", "q3"}
	voicePairs := []types.VoicePair{
		{UserUtterance: "v-q1", AssistantUtterance: "v-a1"},
		{UserUtterance: "v-q2", AssistantUtterance: "v-a2"},
	}
	a := NewAssembler(nil, 6)
	bc := a.FromConversation(conversationWith(textTurns, voicePairs), FullHistory)

	wantSegments := len(textTurns) + len(voicePairs)
	if bc.TurnCount != wantSegments {
		t.Errorf("TurnCount = %d, want %d", bc.TurnCount, wantSegments)
	}
	if bc.FromText != len(textTurns) || bc.FromVoice != len(voicePairs) {
		t.Errorf("breakdown text=%d voice=%d, want %d/%d",
			bc.FromText, bc.FromVoice, len(textTurns), len(voicePairs))
	}

	// Text turns must all appear before the first voice turn.
	lastText := strings.LastIndex(bc.Text, "q3")
	firstVoice := strings.Index(bc.Text, "v-q1")
	if lastText == -1 || firstVoice == -1 || lastText > firstVoice {
		t.Errorf("voice turns interleaved with text turns:\n%s", bc.Text)
	}
}

func TestRolePrefixAlternationAndNormalization(t *testing.T) {
	turns := []string{"User: already tagged", "assistant: lowercase tag", "untagged"}
	a := NewAssembler(nil, 6)
	bc := a.FromConversation(conversationWith(turns, nil), FullHistory)

	lines := strings.Split(strings.TrimSpace(bc.Text), "\n")
	want := []string{
		"User: already tagged",
		"Assistant: lowercase tag",
		"User: untagged",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), bc.Text)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRecentWindowBoundsSegments(t *testing.T) {
	var turns []string
	for i := 0; i < 20; i++ {
		turns = append(turns, "turn")
	}
	a := NewAssembler(nil, 6)
	bc := a.FromConversation(conversationWith(turns, nil), RecentWindow)
	if bc.TurnCount != 6 {
		t.Errorf("TurnCount = %d, want 6", bc.TurnCount)
	}

	full := a.FromConversation(conversationWith(turns, nil), FullHistory)
	if full.TurnCount != 20 {
		t.Errorf("full history TurnCount = %d, want 20", full.TurnCount)
	}
}

func TestRecentWindowKeepsMostRecent(t *testing.T) {
	turns := []string{"oldest", "a", "b", "c", "d", "e", "f", "newest"}
	a := NewAssembler(nil, 6)
	bc := a.FromConversation(conversationWith(turns, nil), RecentWindow)
	if strings.Contains(bc.Text, "oldest") {
		t.Error("recent window retained the oldest turn")
	}
	if !strings.Contains(bc.Text, "newest") {
		t.Error("recent window dropped the newest turn")
	}
}

func TestEmptyConversationAssemblesEmptyContext(t *testing.T) {
	a := NewAssembler(nil, 6)
	bc := a.FromConversation(conversationWith(nil, nil), FullHistory)
	if bc.TurnCount != 0 || strings.TrimSpace(bc.Text) != "" {
		t.Errorf("empty conversation produced %d turns, text %q", bc.TurnCount, bc.Text)
	}
}

func TestAddDocumentTextExtendsBreakdown(t *testing.T) {
	a := NewAssembler(nil, 6)
	bc := a.FromConversation(conversationWith([]string{"q1", "a1"}, nil), FullHistory)

	docText := "=== PDF 1: paper.pdf ===\nExtracted body of the attached paper."
	bc.AddDocumentText(docText)

	if !strings.Contains(bc.Text, "Attached document text:") {
		t.Error("document block missing from context text")
	}
	if !strings.Contains(bc.Text, "Extracted body of the attached paper.") {
		t.Error("document content missing from context text")
	}
	if bc.FromDocuments != len(docText) {
		t.Errorf("FromDocuments = %d, want %d", bc.FromDocuments, len(docText))
	}
	if bc.Characters != len(bc.Text) {
		t.Errorf("Characters = %d, want %d", bc.Characters, len(bc.Text))
	}

	before := bc.Text
	bc.AddDocumentText("")
	if bc.Text != before {
		t.Error("empty document text must not change the context")
	}
}
