package google

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitIntoChunks(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		limit  int
		chunks int
	}{
		{"empty", "", 10, 0},
		{"short", "hello", 10, 1},
		{"exact", strings.Repeat("a", 10), 10, 1},
		{"split", strings.Repeat("a", 25), 10, 3},
		{"multibyte", strings.Repeat("é", 12), 5, 6},
		{"mixed", "aé" + strings.Repeat("€", 3), 4, 4},
		{"wide rune", "€€", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitIntoChunks(tt.text, tt.limit)
			if len(got) != tt.chunks {
				t.Fatalf("chunks = %d, want %d", len(got), tt.chunks)
			}
			if strings.Join(got, "") != tt.text {
				t.Error("chunks do not reassemble the input")
			}
			for _, c := range got {
				if !utf8.ValidString(c) {
					t.Errorf("chunk %q splits a UTF-8 sequence", c)
				}
				if len(c) > tt.limit && utf8.RuneCountInString(c) > 1 {
					t.Errorf("chunk has %d bytes, limit %d", len(c), tt.limit)
				}
			}
		})
	}
}

func TestLanguageOf(t *testing.T) {
	tests := []struct {
		voice    string
		expected string
	}{
		{"en-GB-Neural2-A", "en-GB"},
		{"de-DE-Chirp3-HD-Charon", "de-DE"},
		{"custom", "en-US"},
		{"", "en-US"},
	}
	for _, tt := range tests {
		if got := languageOf(tt.voice, "en-US"); got != tt.expected {
			t.Errorf("languageOf(%q) = %q, want %q", tt.voice, got, tt.expected)
		}
	}
}
