package text

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Hello world", "Hello world"},
		{"empty", "", ""},
		{"whitespace", "  Hello \n\t world  ", "Hello world"},
		{"tags become spaces", "<p>First</p><p>Second</p>", "First Second"},
		{"inline markup", "A <b>bold</b> move", "A bold move"},
		{"entities", "Fish &amp; chips", "Fish & chips"},
		{"script dropped", "Before<script>alert(1)</script>After", "Before After"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
