package pipeline

import (
	"context"
	"errors"
	"testing"

	"shorts-pipeline/internal/config"
	"shorts-pipeline/internal/idea"
	"shorts-pipeline/internal/script"
)

type stubStages struct {
	calls []string

	ideasErr     bool
	scriptErr    error
	narrationErr error
	footageErr   error
	thumbErr     error
	assembleErr  error
	uploadErr    error
}

func (s *stubStages) Generate(ctx context.Context, niche string, count int, trending []string) []idea.Idea {
	s.calls = append(s.calls, "ideas")
	if s.ideasErr {
		return nil
	}
	return []idea.Idea{{
		Title:     "Why Saving Early Matters",
		KeyPoints: []string{"Show the math", "Reveal the habit"},
		Keywords:  []string{"finance", "shorts"},
	}}
}

func (s *stubStages) Write(ctx context.Context, best *idea.Idea, workDir string) (*script.Result, error) {
	s.calls = append(s.calls, "script")
	if s.scriptErr != nil {
		return nil, s.scriptErr
	}
	return &script.Result{Content: "content", Narration: "narration text"}, nil
}

func (s *stubStages) narrate(ctx context.Context, text, workDir string) (string, error) {
	s.calls = append(s.calls, "narration")
	if s.narrationErr != nil {
		return "", s.narrationErr
	}
	return workDir + "/narration.mp3", nil
}

func (s *stubStages) Fetch(ctx context.Context, best *idea.Idea, niche, workDir string) ([]string, error) {
	s.calls = append(s.calls, "footage")
	if s.footageErr != nil {
		return nil, s.footageErr
	}
	return []string{workDir + "/clip_1.mp4"}, nil
}

func (s *stubStages) Create(ctx context.Context, best *idea.Idea, workDir string) (string, error) {
	s.calls = append(s.calls, "thumbnail")
	if s.thumbErr != nil {
		return "", s.thumbErr
	}
	return workDir + "/thumbnail.png", nil
}

func (s *stubStages) Assemble(ctx context.Context, audioFile string, clips []string, workDir string) (string, error) {
	s.calls = append(s.calls, "assembly")
	if s.assembleErr != nil {
		return "", s.assembleErr
	}
	return workDir + "/final.mp4", nil
}

func (s *stubStages) Upload(ctx context.Context, videoFile string, best *idea.Idea, thumbnailPath string) (string, error) {
	s.calls = append(s.calls, "upload")
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return "yt_abc123", nil
}

// narratorFunc adapts a function to the Narrator interface.
type narratorFunc func(ctx context.Context, text, workDir string) (string, error)

func (f narratorFunc) Generate(ctx context.Context, text, workDir string) (string, error) {
	return f(ctx, text, workDir)
}

func newTestRunner(t *testing.T, s *stubStages) *Runner {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Output = t.TempDir()
	return NewRunner(cfg, s, nil, s, narratorFunc(s.narrate), s, s, s, s, nil)
}

func stageOf(t *testing.T, err error) string {
	t.Helper()
	var se *StageError
	if !errors.As(err, &se) {
		t.Fatalf("error is not a stage error: %v", err)
	}
	return se.Stage
}

func TestRunOneHappyPath(t *testing.T) {
	s := &stubStages{}
	r := newTestRunner(t, s)

	if err := r.RunOne(context.Background(), "finance"); err != nil {
		t.Fatalf("run one: %v", err)
	}

	want := []string{"ideas", "script", "narration", "footage", "thumbnail", "assembly", "upload"}
	if len(s.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", s.calls, want)
	}
	for i := range want {
		if s.calls[i] != want[i] {
			t.Fatalf("stage order: calls = %v, want %v", s.calls, want)
		}
	}
}

func TestRunOneEmptyIdeaBatchFails(t *testing.T) {
	s := &stubStages{ideasErr: true}
	r := newTestRunner(t, s)

	err := r.RunOne(context.Background(), "finance")
	if got := stageOf(t, err); got != "ideas" {
		t.Fatalf("stage = %q, want ideas", got)
	}
	if len(s.calls) != 1 {
		t.Fatalf("later stages ran after idea failure: %v", s.calls)
	}
}

func TestRunOneRequiredStageFailureAborts(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*stubStages)
		stage string
	}{
		{"script", func(s *stubStages) { s.scriptErr = errors.New("boom") }, "script"},
		{"narration", func(s *stubStages) { s.narrationErr = errors.New("boom") }, "narration"},
		{"footage", func(s *stubStages) { s.footageErr = errors.New("boom") }, "footage"},
		{"assembly", func(s *stubStages) { s.assembleErr = errors.New("boom") }, "assembly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubStages{}
			tt.setup(s)
			r := newTestRunner(t, s)

			err := r.RunOne(context.Background(), "finance")
			if got := stageOf(t, err); got != tt.stage {
				t.Fatalf("stage = %q, want %q", got, tt.stage)
			}
			for _, c := range s.calls {
				if c == "upload" {
					t.Fatalf("upload ran after %s failure: %v", tt.stage, s.calls)
				}
			}
		})
	}
}

func TestRunOneThumbnailFailureIsTolerated(t *testing.T) {
	s := &stubStages{thumbErr: errors.New("image API down")}
	r := newTestRunner(t, s)

	if err := r.RunOne(context.Background(), "finance"); err != nil {
		t.Fatalf("thumbnail failure aborted the run: %v", err)
	}

	ran := map[string]bool{}
	for _, c := range s.calls {
		ran[c] = true
	}
	if !ran["assembly"] || !ran["upload"] {
		t.Fatalf("later stages skipped: %v", s.calls)
	}
}

func TestRunOneUploadFailureIsTolerated(t *testing.T) {
	s := &stubStages{uploadErr: errors.New("quota exceeded")}
	r := newTestRunner(t, s)

	if err := r.RunOne(context.Background(), "finance"); err != nil {
		t.Fatalf("upload failure aborted the run: %v", err)
	}
}

func TestRunOneSkipsUploadWhenDisabled(t *testing.T) {
	s := &stubStages{}
	cfg := config.Default()
	cfg.Paths.Output = t.TempDir()
	cfg.Upload.Auto = false
	r := NewRunner(cfg, s, nil, s, narratorFunc(s.narrate), s, s, s, s, nil)

	if err := r.RunOne(context.Background(), "finance"); err != nil {
		t.Fatalf("run one: %v", err)
	}
	for _, c := range s.calls {
		if c == "upload" {
			t.Fatalf("upload ran with auto upload disabled: %v", s.calls)
		}
	}
}

func TestStageErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &StageError{Stage: "footage", Err: inner}

	if !errors.Is(err, inner) {
		t.Fatal("stage error does not unwrap to its cause")
	}
	if err.Error() != "footage stage: boom" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Why Saving Early Matters", "Why_Saving_Early_Matters"},
		{"What?! The $ecret...", "What_The_ecret"},
		{"???", "short"},
		{"", "short"},
	}
	for _, tt := range tests {
		if got := SanitizeTitle(tt.in); got != tt.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
