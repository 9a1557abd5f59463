package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestContextWindowPlainASCII(t *testing.T) {
	if got := contextWindow("hello world", 6, 11, 3); got != "lo world" {
		t.Errorf("window = %q, want %q", got, "lo world")
	}
}

func TestContextWindowSnapsToRuneBoundaries(t *testing.T) {
	text := strings.Repeat("é", 15) + "a@b.com" + strings.Repeat("é", 15)

	got := contextWindow(text, 30, 37, 5)
	if !utf8.ValidString(got) {
		t.Errorf("window %q is not valid UTF-8", got)
	}
	if !strings.Contains(got, "a@b.com") {
		t.Errorf("window %q does not contain the match", got)
	}
}
