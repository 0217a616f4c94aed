package assemble

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"shorts-pipeline/internal/config"
)

// Assembler combines narration audio and stock clips into one vertical
// video. Clips are standardized to the target resolution, joined with
// the concat demuxer (filtergraph fallback), and muxed with the audio
// capped at the platform's duration limit. A failed mux gets one
// alternate assembly attempt before the stage gives up.
type Assembler struct {
	cfg *config.Config
}

// New creates a new Assembler.
func New(cfg *config.Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// Assemble produces the final video in workDir and returns its path.
func (a *Assembler) Assemble(ctx context.Context, audioFile string, clips []string, workDir string) (string, error) {
	if len(clips) == 0 {
		return "", fmt.Errorf("no video clips provided")
	}
	if fi, err := os.Stat(audioFile); err != nil {
		return "", fmt.Errorf("audio file missing: %w", err)
	} else if fi.Size() < 1000 {
		return "", fmt.Errorf("audio file suspiciously small (%d bytes)", fi.Size())
	}

	standardized, err := a.standardize(ctx, clips, workDir)
	if err != nil {
		return "", err
	}

	concatFile := filepath.Join(workDir, "concat.mp4")
	if err := a.concat(ctx, standardized, workDir, concatFile); err != nil {
		return "", err
	}

	audioDur, err := probeDuration(ctx, audioFile)
	if err != nil {
		log.Printf("[assemble] ⚠️  Could not probe audio duration: %v — assuming %ds", err, a.cfg.Video.MaxDurationSec)
		audioDur = float64(a.cfg.Video.MaxDurationSec)
	}

	maxDur := float64(a.cfg.Video.MaxDurationSec)
	if audioDur > maxDur {
		log.Printf("[assemble] Audio (%.1fs) exceeds the %.0fs limit, truncating", audioDur, maxDur)
		truncated := filepath.Join(workDir, "audio_truncated.mp3")
		cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
			"-i", audioFile,
			"-t", strconv.Itoa(a.cfg.Video.MaxDurationSec),
			"-c:a", "aac",
			truncated,
		)
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err == nil {
			audioFile = truncated
		} else {
			log.Printf("[assemble] ⚠️  Audio truncation failed: %v — relying on final cut", err)
		}
		audioDur = maxDur
	}
	if audioDur < 1 {
		return "", fmt.Errorf("audio duration too short (%.2fs)", audioDur)
	}

	videoSrc := concatFile
	if videoDur, err := probeDuration(ctx, concatFile); err == nil && videoDur < audioDur {
		extended, err := a.extend(ctx, concatFile, workDir, videoDur, audioDur)
		if err != nil {
			log.Printf("[assemble] ⚠️  Could not extend video: %v — using concatenated video", err)
		} else {
			videoSrc = extended
		}
	}

	finalOutput := filepath.Join(workDir, "short.mp4")
	if err := a.mux(ctx, videoSrc, audioFile, audioDur, finalOutput); err != nil {
		log.Printf("[assemble] ⚠️  Primary assembly failed: %v — trying alternate method", err)
		return a.alternate(ctx, concatFile, audioFile, workDir)
	}

	if dur, err := probeDuration(ctx, finalOutput); err == nil && dur < 1 {
		log.Printf("[assemble] ⚠️  Final video too short (%.2fs) — trying alternate method", dur)
		return a.alternate(ctx, concatFile, audioFile, workDir)
	}

	log.Printf("[assemble] ✅ Final video: %s", finalOutput)
	return finalOutput, nil
}

// standardize re-encodes every clip to the vertical target resolution,
// padding rather than cropping. A clip that fails both the full and the
// simplified conversion is skipped.
func (a *Assembler) standardize(ctx context.Context, clips []string, workDir string) ([]string, error) {
	scale := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		a.cfg.Video.Width, a.cfg.Video.Height, a.cfg.Video.Width, a.cfg.Video.Height,
	)

	var standardized []string
	for i, clip := range clips {
		out := filepath.Join(workDir, fmt.Sprintf("std_clip_%d.mp4", i))
		log.Printf("[assemble] Standardizing clip %d/%d...", i+1, len(clips))

		cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
			"-i", clip,
			"-vf", scale,
			"-c:v", "libx264", "-preset", "medium", "-crf", "23",
			"-pix_fmt", "yuv420p",
			out,
		)
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			log.Printf("[assemble] ⚠️  Clip %d standardization failed: %v — trying simpler conversion", i+1, err)
			cmd = exec.CommandContext(ctx, "ffmpeg", "-y",
				"-i", clip,
				"-vf", scale,
				"-c:v", "libx264",
				out,
			)
			cmd.Stderr = os.Stderr
			if err := cmd.Run(); err != nil {
				log.Printf("[assemble] ⚠️  Clip %d skipped: %v", i+1, err)
				continue
			}
		}
		standardized = append(standardized, out)
	}

	if len(standardized) == 0 {
		return nil, fmt.Errorf("no clips could be standardized")
	}
	return standardized, nil
}

// concat joins the standardized clips, preferring the concat demuxer
// and falling back to a filtergraph.
func (a *Assembler) concat(ctx context.Context, clips []string, workDir, outFile string) error {
	listFile := filepath.Join(workDir, "clips_list.txt")
	var lines []string
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			abs = clip
		}
		lines = append(lines, fmt.Sprintf("file '%s'", abs))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat", "-safe", "0",
		"-i", listFile,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		outFile,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err == nil {
		return nil
	}

	log.Println("[assemble] Concat demuxer failed, trying filtergraph...")

	args := []string{"-y"}
	var filterParts []string
	for i, clip := range clips {
		args = append(args, "-i", clip)
		filterParts = append(filterParts, fmt.Sprintf("[%d:v]", i))
	}
	filterComplex := strings.Join(filterParts, "") + fmt.Sprintf("concat=n=%d:v=1:a=0[outv]", len(clips))
	args = append(args,
		"-filter_complex", filterComplex,
		"-map", "[outv]",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		outFile,
	)

	cmd = exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("concatenate clips: %w", err)
	}
	return nil
}

// extend loops the concatenated video until it covers the audio.
func (a *Assembler) extend(ctx context.Context, videoFile, workDir string, videoDur, audioDur float64) (string, error) {
	loops := int(audioDur/videoDur) + 1
	log.Printf("[assemble] Video (%.1fs) shorter than audio (%.1fs), looping %d times", videoDur, audioDur, loops)

	out := filepath.Join(workDir, "extended.mp4")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-stream_loop", strconv.Itoa(loops),
		"-i", videoFile,
		"-c", "copy",
		"-t", fmt.Sprintf("%.3f", audioDur+1),
		out,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return out, nil
}

func (a *Assembler) mux(ctx context.Context, videoFile, audioFile string, audioDur float64, outFile string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", videoFile,
		"-i", audioFile,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		"-t", fmt.Sprintf("%.3f", audioDur),
		outFile,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mux video with audio: %w", err)
	}
	if _, err := os.Stat(outFile); err != nil {
		return fmt.Errorf("final video not created: %w", err)
	}
	return nil
}

// alternate re-encodes while looping in a single pass, then muxes. The
// last resort before the stage fails.
func (a *Assembler) alternate(ctx context.Context, videoFile, audioFile, workDir string) (string, error) {
	log.Println("[assemble] Using alternate assembly method...")

	audioDur, err := probeDuration(ctx, audioFile)
	if err != nil || audioDur > float64(a.cfg.Video.MaxDurationSec) {
		audioDur = float64(a.cfg.Video.MaxDurationSec)
	}

	scale := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		a.cfg.Video.Width, a.cfg.Video.Height, a.cfg.Video.Width, a.cfg.Video.Height,
	)
	// Assume roughly 15s of source video when sizing the loop count.
	loops := int(audioDur/15) + 1

	extended := filepath.Join(workDir, "alt_extended.mp4")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-stream_loop", strconv.Itoa(loops),
		"-i", videoFile,
		"-c:v", "libx264",
		"-t", fmt.Sprintf("%.3f", audioDur+2),
		"-vf", scale,
		extended,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("alternate assembly extend: %w", err)
	}

	outFile := filepath.Join(workDir, "short_alt.mp4")
	if err := a.mux(ctx, extended, audioFile, audioDur, outFile); err != nil {
		return "", fmt.Errorf("alternate assembly: %w", err)
	}

	if fi, err := os.Stat(outFile); err != nil || fi.Size() < 10000 {
		return "", fmt.Errorf("alternate assembly produced an invalid file")
	}

	log.Printf("[assemble] ✅ Alternate method succeeded: %s", outFile)
	return outFile, nil
}

// probeDuration reads a media file's duration in seconds via ffprobe.
func probeDuration(ctx context.Context, path string) (float64, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
}
