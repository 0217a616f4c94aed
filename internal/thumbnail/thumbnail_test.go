package thumbnail

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildImagePromptKeepsFullPromptForDalle3(t *testing.T) {
	title := strings.Repeat("Long Title ", 20)
	prompt := buildImagePrompt(title, "dall-e-3")

	if !strings.Contains(prompt, title) {
		t.Fatal("dall-e-3 prompt was truncated")
	}
}

func TestBuildImagePromptCapsDalle2Prompt(t *testing.T) {
	prompt := buildImagePrompt(strings.Repeat("Saving Money ", 10), "dall-e-2")

	if got := utf8.RuneCountInString(prompt); got != 100 {
		t.Fatalf("prompt = %d runes, want 100", got)
	}
	if !strings.HasSuffix(prompt, "...") {
		t.Fatal("capped prompt missing ellipsis")
	}
}

func TestBuildImagePromptCapsDalle2PromptOnRuneBoundary(t *testing.T) {
	prompt := buildImagePrompt(strings.Repeat("é", 120), "dall-e-2")

	if !utf8.ValidString(prompt) {
		t.Fatalf("prompt contains invalid UTF-8: %q", prompt)
	}
	if got := utf8.RuneCountInString(prompt); got != 100 {
		t.Fatalf("prompt = %d runes, want 100", got)
	}
}

func TestEscapeDrawtext(t *testing.T) {
	got := escapeDrawtext("Don't: stop")
	want := "Don\\'t\\: stop"
	if got != want {
		t.Fatalf("escapeDrawtext = %q, want %q", got, want)
	}
}
