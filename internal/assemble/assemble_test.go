package assemble

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"shorts-pipeline/internal/config"
)

func TestAssembleRejectsEmptyClipList(t *testing.T) {
	a := New(config.Default())
	_, err := a.Assemble(context.Background(), "audio.mp3", nil, t.TempDir())
	if err == nil {
		t.Fatal("expected error for empty clip list")
	}
}

func TestAssembleRejectsMissingAudio(t *testing.T) {
	a := New(config.Default())
	workDir := t.TempDir()

	_, err := a.Assemble(context.Background(), filepath.Join(workDir, "missing.mp3"), []string{"clip.mp4"}, workDir)
	if err == nil {
		t.Fatal("expected error for missing audio file")
	}
}

func TestAssembleRejectsTinyAudio(t *testing.T) {
	a := New(config.Default())
	workDir := t.TempDir()

	audio := filepath.Join(workDir, "tiny.mp3")
	if err := os.WriteFile(audio, bytes.Repeat([]byte{0}, 100), 0644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	_, err := a.Assemble(context.Background(), audio, []string{"clip.mp4"}, workDir)
	if err == nil {
		t.Fatal("expected error for undersized audio file")
	}
}
