package pdfextract

import (
	"strings"
	"testing"
)

func TestIsValidExtraction(t *testing.T) {
	prose := `Quantum entanglement is a physical phenomenon that occurs when a
group of particles are generated, interact, or share spatial proximity in a
way such that the quantum state of each particle of the group cannot be
described independently of the state of the others, including when the
particles are separated by a large distance.`

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "ordinary_english_prose",
			text: prose,
			want: true,
		},
		{
			name: "empty_text",
			text: "",
			want: false,
		},
		{
			name: "too_few_tokens",
			text: "just four small words",
			want: false,
		},
		{
			name: "garbled_character_soup",
			text: "x1 q9 zz3 8fj 2kq 9lp w0x 4tn v7 1aa b2c d3e f4g h5i",
			want: false,
		},
		{
			name: "page_artifacts_only",
			text: "--- Page 1 --- Page 2 of 10 01/02/2023 42 117 3.14",
			want: false,
		},
		{
			name: "prose_with_artifacts_still_valid",
			text: "--- Page 1 ---\nPage 1 of 3\n" + prose,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidExtraction(tt.text)
			if got != tt.want {
				t.Errorf("IsValidExtraction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidExtractionLongProse(t *testing.T) {
	// 50+ word document must always pass.
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 10)
	if !IsValidExtraction(text) {
		t.Error("IsValidExtraction() = false for ordinary repeated prose")
	}
}
