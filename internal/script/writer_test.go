package script

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shorts-pipeline/internal/config"
	"shorts-pipeline/internal/idea"
)

func testIdea() *idea.Idea {
	return &idea.Idea{
		Title:       "Why Compound Interest Wins",
		Description: "The eighth wonder explained fast.",
		KeyPoints:   []string{"Show the math behind it", "Reveal the long game"},
		Keywords:    []string{"finance", "shorts"},
	}
}

func TestWriteFallbackWithoutAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	w := New(config.Default())
	workDir := t.TempDir()

	res, err := w.Write(context.Background(), testIdea(), workDir)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, tag := range []string{"[TEXT]", "[VISUAL]", "[NARRATOR]"} {
		if !strings.Contains(res.Content, tag) {
			t.Errorf("fallback script missing %s section", tag)
		}
	}
	if !strings.Contains(res.Content, "Why Compound Interest Wins") {
		t.Error("fallback script missing the idea title")
	}
	if res.Narration == "" {
		t.Error("no narration extracted from fallback script")
	}
	if strings.Contains(res.Narration, "[NARRATOR]") {
		t.Error("narration still carries script tags")
	}

	if res.Path != filepath.Join(workDir, "script.txt") {
		t.Fatalf("path = %q", res.Path)
	}
	saved, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("read saved script: %v", err)
	}
	if string(saved) != res.Content {
		t.Error("saved script differs from returned content")
	}
}

func TestWriteFallbackTruncatesLongOverlays(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	best := testIdea()
	best.KeyPoints = []string{"This key point runs far past the overlay budget"}

	w := New(config.Default())
	res, err := w.Write(context.Background(), best, t.TempDir())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(res.Content, "...") {
		t.Error("long overlay not truncated")
	}
}

func TestWriteUsesChatAPIWhenAvailable(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	scriptText := "[TEXT] Hook\n\n[NARRATOR] The spoken opening line.\n\n[NARRATOR] And the close."
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": scriptText}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	w := New(config.Default())
	w.chatURL = srv.URL

	res, err := w.Write(context.Background(), testIdea(), t.TempDir())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if res.Content != scriptText {
		t.Fatalf("content = %q", res.Content)
	}
	if res.Narration != "The spoken opening line. And the close." {
		t.Fatalf("narration = %q", res.Narration)
	}
}

func TestWriteFallsBackWhenAllModelsFail(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Script.Models = []string{"gpt-3.5-turbo"}
	cfg.Script.RetryAttempts = 1

	w := New(cfg)
	w.chatURL = srv.URL

	res, err := w.Write(context.Background(), testIdea(), t.TempDir())
	if err != nil {
		t.Fatalf("write must not fail when the API is down: %v", err)
	}
	if !strings.Contains(res.Content, "[NARRATOR]") {
		t.Fatal("fallback script not produced")
	}
}

func TestExtractNarration(t *testing.T) {
	content := "[TEXT] Title card\n[NARRATOR] First line.\n[VISUAL] B-roll\n[NARRATOR] Second line."
	got := ExtractNarration(content)
	if got != "First line. Second line." {
		t.Fatalf("narration = %q", got)
	}
}

func TestExtractNarrationFallsBackToPlainLines(t *testing.T) {
	content := "Line one.\n\nLine two.\nLine three."
	got := ExtractNarration(content)
	if got != "Line one. Line two. Line three." {
		t.Fatalf("narration = %q", got)
	}
}

func TestExtractNarrationCapsFallbackLines(t *testing.T) {
	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, "line")
	}
	got := ExtractNarration(strings.Join(lines, "\n"))
	if n := len(strings.Fields(got)); n != 20 {
		t.Fatalf("fallback kept %d lines, want 20", n)
	}
}
