package model

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestMessagePreview_ShortBodyUnchanged(t *testing.T) {
	t.Parallel()

	if got := MessagePreview("  see you at eight  "); got != "see you at eight" {
		t.Errorf("expected trimmed body, got %q", got)
	}
}

func TestMessagePreview_TruncatesLongBody(t *testing.T) {
	t.Parallel()

	got := MessagePreview(strings.Repeat("a", MaxLastMessagePreviewLength+40))
	if len(got) != MaxLastMessagePreviewLength {
		t.Errorf("expected %d bytes, got %d", MaxLastMessagePreviewLength, len(got))
	}
}

func TestTruncateRunesafe_KeepsValidUTF8(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
	}{
		{"ascii", strings.Repeat("x", 50), 10},
		{"two-byte runes", strings.Repeat("é", 50), 11},
		{"three-byte runes", strings.Repeat("游", 50), 10},
		{"four-byte runes", strings.Repeat("🎲", 50), 10},
		{"cut inside last rune", "abc🎲", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TruncateRunesafe(tt.in, tt.max)
			if len(got) > tt.max {
				t.Errorf("result is %d bytes, max %d", len(got), tt.max)
			}
			if !utf8.ValidString(got) {
				t.Errorf("result is not valid UTF-8: %q", got)
			}
			if !strings.HasPrefix(tt.in, got) {
				t.Errorf("result %q is not a prefix of the input", got)
			}
		})
	}
}

func TestTruncateRunesafe_NoTruncationNeeded(t *testing.T) {
	t.Parallel()

	if got := TruncateRunesafe("short", 100); got != "short" {
		t.Errorf("expected input unchanged, got %q", got)
	}
}
