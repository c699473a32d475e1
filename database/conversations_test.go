package database

import (
	"testing"

	"paper-agent/web/types"
)

func TestSplitTurnLog(t *testing.T) {
	tests := []struct {
		name string
		log  string
		want []string
	}{
		{
			name: "empty_log",
			log:  "",
			want: nil,
		},
		{
			name: "whitespace_only",
			log:  "   ",
			want: nil,
		},
		{
			name: "single_turn",
			log:  "Summarize quantum entanglement",
			want: []string{"Summarize quantum entanglement"},
		},
		{
			name: "alternating_turns",
			log:  "What is entropy?||Entropy measures disorder.||Give an example||Melting ice.",
			want: []string{"What is entropy?", "Entropy measures disorder.", "Give an example", "Melting ice."},
		},
		{
			name: "turns_are_trimmed",
			log:  " hello || there ",
			want: []string{"hello", "there"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTurnLog(tt.log)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitTurnLog() returned %d turns, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("turn %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitJoinRoundTrip(t *testing.T) {
	turns := []string{"first", "second", "third"}
	got := SplitTurnLog(JoinTurnLog(turns))
	if len(got) != len(turns) {
		t.Fatalf("round trip returned %d turns, want %d", len(got), len(turns))
	}
	for i := range turns {
		if got[i] != turns[i] {
			t.Errorf("turn %d = %q, want %q", i, got[i], turns[i])
		}
	}
}

func TestDedupeVoicePairs(t *testing.T) {
	a := types.VoicePair{UserUtterance: "hi", AssistantUtterance: "hello"}
	b := types.VoicePair{UserUtterance: "how are you", AssistantUtterance: "well"}
	c := types.VoicePair{UserUtterance: "bye", AssistantUtterance: "goodbye"}

	tests := []struct {
		name     string
		existing []types.VoicePair
		incoming []types.VoicePair
		want     int
	}{
		{
			name:     "all_new",
			existing: nil,
			incoming: []types.VoicePair{a, b},
			want:     2,
		},
		{
			name:     "overlapping_delta",
			existing: []types.VoicePair{a, b},
			incoming: []types.VoicePair{b, c},
			want:     1,
		},
		{
			name:     "fully_duplicate",
			existing: []types.VoicePair{a, b, c},
			incoming: []types.VoicePair{a, b, c},
			want:     0,
		},
		{
			name:     "duplicate_within_incoming",
			existing: nil,
			incoming: []types.VoicePair{a, a, b},
			want:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fresh := DedupeVoicePairs(tt.existing, tt.incoming)
			if len(fresh) != tt.want {
				t.Errorf("DedupeVoicePairs() added %d pairs, want %d", len(fresh), tt.want)
			}
		})
	}
}

func TestDedupeVoicePairsPreservesOrder(t *testing.T) {
	incoming := []types.VoicePair{
		{UserUtterance: "one", AssistantUtterance: "1"},
		{UserUtterance: "two", AssistantUtterance: "2"},
		{UserUtterance: "three", AssistantUtterance: "3"},
	}
	fresh := DedupeVoicePairs(nil, incoming)
	for i := range incoming {
		if fresh[i] != incoming[i] {
			t.Errorf("pair %d out of order: got %+v", i, fresh[i])
		}
	}
}
