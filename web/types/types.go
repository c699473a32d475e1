package types

import "time"

// VoicePair is one user/assistant exchange contributed by the voice channel.
type VoicePair struct {
	UserUtterance      string `json:"userUtterance"`
	AssistantUtterance string `json:"assistantUtterance"`
}

// Conversation is one chat session and its derived document state,
// stored in the DB keyed by ChatID.
type Conversation struct {
	ChatID         string
	OwnerEmail     string
	TextTurns      []string // alternating utterances: even index user, odd assistant
	VoiceTurns     []VoicePair
	DocumentRefs   []string
	GeneratedPaper string
	LastUpdatedAt  time.Time
}

// SearchResult is one hit returned by the web-search service.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}
