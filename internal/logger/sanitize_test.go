package logger

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{"empty", "", 10, ""},
		{"plain", "hello", 10, "hello"},
		{"control characters removed", "a\x00b\x1bc", 10, "abc"},
		{"newlines kept", "a\nb", 10, "a\nb"},
		{"invalid utf8 dropped", "ok\xff", 10, "ok"},
		{"truncated", "abcdefgh", 4, "abcd..."},
		{"truncation respects rune boundaries", "ééé", 3, "é..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeString(tt.input, tt.maxLength); got != tt.want {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.input, tt.maxLength, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	t.Parallel()

	got := SanitizeFileName("note\nINFO fake entry.txt")
	if strings.Contains(got, "\n") {
		t.Errorf("Expected newline to be removed, got %q", got)
	}

	long := strings.Repeat("a", MaxFileNameLength+10)
	if got := SanitizeFileName(long); len(got) != MaxFileNameLength+3 {
		t.Errorf("Expected truncation to %d bytes plus ellipsis, got %d", MaxFileNameLength, len(got))
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError(nil); got != "" {
		t.Errorf("Expected empty string for nil error, got %q", got)
	}
	if got := SanitizeError(errors.New("boom\x07")); got != "boom" {
		t.Errorf("Expected control character to be stripped, got %q", got)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatJSON, FormatConsole, ""} {
		l, err := New(format, true)
		if err != nil {
			t.Fatalf("New(%q) returned error: %v", format, err)
		}
		if l == nil {
			t.Fatalf("New(%q) returned nil logger", format)
		}
	}
	if _, err := New("xml", false); err == nil {
		t.Error("Expected error for unknown format")
	}
	if OrNop(nil) == nil {
		t.Error("Expected OrNop to return a logger")
	}
}
