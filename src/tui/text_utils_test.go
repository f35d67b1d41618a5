package tui

import "testing"

func TestVisualWidth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "ascii", input: "hello", want: 5},
		{name: "empty", input: "", want: 0},
		{name: "wide characters", input: "日本", want: 4},
		{name: "mixed", input: "a日b", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VisualWidth(tt.input); got != tt.want {
				t.Errorf("VisualWidth(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		ellipsis bool
		want     string
	}{
		{name: "fits untouched", input: "short", maxLen: 10, ellipsis: true, want: "short"},
		{name: "truncated with ellipsis", input: "a very long string", maxLen: 10, ellipsis: true, want: "a very ..."},
		{name: "truncated without ellipsis", input: "a very long string", maxLen: 6, ellipsis: false, want: "a very"},
		{name: "zero width", input: "anything", maxLen: 0, ellipsis: true, want: ""},
		{name: "tiny width skips ellipsis", input: "abcdef", maxLen: 3, ellipsis: true, want: "abc"},
		{name: "trims whitespace", input: "  padded  ", maxLen: 10, ellipsis: false, want: "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxLen, tt.ellipsis); got != tt.want {
				t.Errorf("Truncate(%q, %d, %v) = %q, want %q", tt.input, tt.maxLen, tt.ellipsis, got, tt.want)
			}
		})
	}
}

func TestTruncateAndPad(t *testing.T) {
	got := TruncateAndPad("ab", 5, false)
	if got != "ab   " {
		t.Errorf("TruncateAndPad() = %q", got)
	}
	if w := VisualWidth(TruncateAndPad("日本語テキスト", 6, true)); w != 6 {
		t.Errorf("padded width = %d, want 6", w)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "strips ansi", input: "\x1b[31mred\x1b[0m text", want: "red text"},
		{name: "collapses newlines", input: "line1\nline2\r\nline3", want: "line1 line2 line3"},
		{name: "plain passthrough", input: "plain", want: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
