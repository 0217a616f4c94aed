package narration

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shorts-pipeline/internal/config"
)

func TestSplitIntoChunksShortTextIsOneChunk(t *testing.T) {
	chunks := splitIntoChunks("Just one short line.", 4000)
	if len(chunks) != 1 || chunks[0] != "Just one short line." {
		t.Fatalf("chunks = %v", chunks)
	}
}

func TestSplitIntoChunksEmpty(t *testing.T) {
	if chunks := splitIntoChunks("", 4000); chunks != nil {
		t.Fatalf("chunks = %v, want nil", chunks)
	}
}

func TestSplitIntoChunksPrefersSentenceBoundaries(t *testing.T) {
	text := "First sentence here. Second sentence here. Third sentence here."
	chunks := splitIntoChunks(text, 45)

	if len(chunks) < 2 {
		t.Fatalf("text not split: %v", chunks)
	}
	for _, c := range chunks {
		if len(c) > 45 {
			t.Errorf("chunk over budget (%d): %q", len(c), c)
		}
		if !strings.HasSuffix(c, ".") {
			t.Errorf("chunk not ending on a sentence: %q", c)
		}
	}
}

func TestSplitIntoChunksHandlesOversizedSentence(t *testing.T) {
	text := strings.Repeat("word ", 40) + "end. Short tail."
	chunks := splitIntoChunks(text, 50)

	if len(chunks) < 2 {
		t.Fatalf("oversized sentence not split: %v", chunks)
	}
	for _, c := range chunks {
		if len(c) > 50 {
			t.Errorf("chunk over budget (%d): %q", len(c), c)
		}
		if c == "" {
			t.Error("empty chunk produced")
		}
	}

	joined := strings.Join(chunks, " ")
	for _, want := range []string{"end.", "Short tail."} {
		if !strings.Contains(joined, want) {
			t.Errorf("content lost during split: missing %q", want)
		}
	}
}

func TestSplitIntoChunksNoContentLoss(t *testing.T) {
	text := "Alpha one. Beta two! Gamma three? Delta four."
	chunks := splitIntoChunks(text, 20)

	joined := strings.Join(chunks, " ")
	for _, word := range []string{"Alpha", "Beta", "Gamma", "Delta"} {
		if !strings.Contains(joined, word) {
			t.Errorf("missing %q in %v", word, chunks)
		}
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "")

	g := New(config.Default())
	if _, err := g.Generate(context.Background(), "some narration", t.TempDir()); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestGenerateRejectsEmptyText(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "key")

	g := New(config.Default())
	if _, err := g.Generate(context.Background(), "   ", t.TempDir()); err == nil {
		t.Fatal("expected error for empty narration text")
	}
}

func TestGenerateWritesAudioFile(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "key")

	audio := bytes.Repeat([]byte{0xFF}, 2000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("xi-api-key"); got != "key" {
			t.Errorf("xi-api-key = %q", got)
		}
		if !strings.Contains(r.URL.Path, "/v1/text-to-speech/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write(audio)
	}))
	defer srv.Close()

	g := New(config.Default())
	g.baseURL = srv.URL

	workDir := t.TempDir()
	outFile, err := g.Generate(context.Background(), "A short narration line.", workDir)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if outFile != filepath.Join(workDir, "narration.mp3") {
		t.Fatalf("outFile = %q", outFile)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(data, audio) {
		t.Fatalf("audio mismatch: %d bytes written", len(data))
	}
}

func TestGenerateSavesPartialAudio(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "key")

	audio := bytes.Repeat([]byte{0xFF}, 2000)
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// First chunk fails on every retry; the rest succeed.
		if calls <= 3 {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		w.Write(audio)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Narration.MaxChunkChars = 30

	g := New(cfg)
	g.baseURL = srv.URL

	text := "First bit of narration here. Second bit of narration too."
	outFile, err := g.Generate(context.Background(), text, t.TempDir())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) != len(audio) {
		t.Fatalf("partial audio = %d bytes, want %d", len(data), len(audio))
	}
}

func TestGenerateRejectsTinyAudio(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "key")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not really audio"))
	}))
	defer srv.Close()

	g := New(config.Default())
	g.baseURL = srv.URL

	if _, err := g.Generate(context.Background(), "Some narration.", t.TempDir()); err == nil {
		t.Fatal("expected failure for undersized audio response")
	}
}
