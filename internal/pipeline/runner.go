package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"shorts-pipeline/internal/config"
	"shorts-pipeline/internal/history"
	"shorts-pipeline/internal/idea"
	"shorts-pipeline/internal/script"
)

// StageError is a failure of one named pipeline stage. The job worker
// records it and moves on to the next iteration.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Collaborator interfaces, one per stage. Each stage only starts once
// its predecessor's artifact exists.
type (
	IdeaSource interface {
		Generate(ctx context.Context, niche string, count int, trending []string) []idea.Idea
	}
	TrendSource interface {
		Top(ctx context.Context, niche string, n int) ([]string, error)
	}
	ScriptWriter interface {
		Write(ctx context.Context, best *idea.Idea, workDir string) (*script.Result, error)
	}
	Narrator interface {
		Generate(ctx context.Context, text, workDir string) (string, error)
	}
	FootageFetcher interface {
		Fetch(ctx context.Context, best *idea.Idea, niche, workDir string) ([]string, error)
	}
	Thumbnailer interface {
		Create(ctx context.Context, best *idea.Idea, workDir string) (string, error)
	}
	Assembler interface {
		Assemble(ctx context.Context, audioFile string, clips []string, workDir string) (string, error)
	}
	Uploader interface {
		Upload(ctx context.Context, videoFile string, best *idea.Idea, thumbnailPath string) (string, error)
	}
)

// Runner drives the ordered stages that produce one short. Thumbnail
// and upload are optional stages: their failures are logged and the
// artifact survives. Everything else aborts the iteration.
type Runner struct {
	cfg       *config.Config
	ideas     IdeaSource
	trends    TrendSource
	scripts   ScriptWriter
	narration Narrator
	footage   FootageFetcher
	thumbs    Thumbnailer
	assembler Assembler
	uploader  Uploader
	store     *history.Store
}

// NewRunner wires the pipeline. trends and uploader may be nil; their
// stages are then skipped.
func NewRunner(cfg *config.Config, ideas IdeaSource, trends TrendSource, scripts ScriptWriter,
	narration Narrator, footage FootageFetcher, thumbs Thumbnailer,
	assembler Assembler, uploader Uploader, store *history.Store) *Runner {
	return &Runner{
		cfg:       cfg,
		ideas:     ideas,
		trends:    trends,
		scripts:   scripts,
		narration: narration,
		footage:   footage,
		thumbs:    thumbs,
		assembler: assembler,
		uploader:  uploader,
		store:     store,
	}
}

// RunOne produces a single artifact for the niche.
func (r *Runner) RunOne(ctx context.Context, niche string) error {
	var trending []string
	if r.trends != nil {
		titles, err := r.trends.Top(ctx, niche, r.cfg.Ideas.TrendingPosts)
		if err != nil {
			log.Printf("[pipeline] ⚠️  Trend lookup failed: %v — continuing without trends", err)
		} else {
			trending = titles
		}
	}

	batch := r.ideas.Generate(ctx, niche, r.cfg.Ideas.BatchSize, trending)
	if len(batch) == 0 {
		return &StageError{Stage: "ideas", Err: fmt.Errorf("no ideas generated")}
	}

	best := idea.SelectBest(batch, niche)
	log.Printf("[pipeline] Selected idea: %q", best.Title)

	workDir := filepath.Join(r.cfg.Paths.Output, SanitizeTitle(best.Title))
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return &StageError{Stage: "ideas", Err: fmt.Errorf("create work dir: %w", err)}
	}

	scriptRes, err := r.scripts.Write(ctx, best, workDir)
	if err != nil {
		return &StageError{Stage: "script", Err: err}
	}

	audioFile, err := r.narration.Generate(ctx, scriptRes.Narration, workDir)
	if err != nil {
		return &StageError{Stage: "narration", Err: err}
	}

	clips, err := r.footage.Fetch(ctx, best, niche, workDir)
	if err != nil {
		return &StageError{Stage: "footage", Err: err}
	}

	thumbnailPath := ""
	if path, err := r.thumbs.Create(ctx, best, workDir); err != nil {
		log.Printf("[pipeline] ⚠️  Thumbnail failed: %v — continuing without one", err)
	} else {
		thumbnailPath = path
	}

	videoFile, err := r.assembler.Assemble(ctx, audioFile, clips, workDir)
	if err != nil {
		return &StageError{Stage: "assembly", Err: err}
	}

	videoID := "local_only"
	if r.uploader != nil && r.cfg.Upload.Auto {
		id, err := r.uploader.Upload(ctx, videoFile, best, thumbnailPath)
		if err != nil {
			log.Printf("[pipeline] ⚠️  Upload failed: %v — video kept locally", err)
		} else {
			videoID = id
		}
	}

	if r.store != nil {
		err := r.store.Record(history.Video{
			VideoID:  videoID,
			Title:    best.Title,
			Niche:    niche,
			Keywords: history.JoinKeywords(best.Keywords),
			FilePath: videoFile,
		})
		if err != nil {
			log.Printf("[pipeline] ⚠️  Could not record video: %v", err)
		}
	}

	log.Printf("[pipeline] ✅ Short complete: %s", videoFile)
	return nil
}

var unsafeTitleChars = regexp.MustCompile(`[^a-zA-Z0-9 _-]`)

// SanitizeTitle turns an idea title into a filesystem-safe directory
// name. Identical sanitized titles across concurrent jobs resolve to
// last-writer-wins on disk.
func SanitizeTitle(title string) string {
	safe := unsafeTitleChars.ReplaceAllString(title, "")
	safe = strings.TrimSpace(safe)
	safe = strings.ReplaceAll(safe, " ", "_")
	if safe == "" {
		safe = "short"
	}
	if len(safe) > 80 {
		safe = safe[:80]
	}
	return safe
}
