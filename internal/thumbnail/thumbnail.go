package thumbnail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"shorts-pipeline/internal/config"
	"shorts-pipeline/internal/idea"
)

const defaultImageURL = "https://api.openai.com/v1/images/generations"

// Creator produces a vertical thumbnail for an idea. The image API is
// tried first; a generated placeholder frame is the fallback, so a
// thumbnail is always available.
type Creator struct {
	cfg        *config.Config
	httpClient *http.Client
	imageURL   string
}

// New creates a new thumbnail Creator.
func New(cfg *config.Config) *Creator {
	return &Creator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		imageURL:   defaultImageURL,
	}
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Create generates and saves a thumbnail image for the idea.
func (c *Creator) Create(ctx context.Context, best *idea.Idea, workDir string) (string, error) {
	outFile := filepath.Join(workDir, "thumbnail.png")

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("[thumbnail] No API key set, creating placeholder thumbnail")
		return c.placeholder(ctx, best.Title, outFile)
	}

	for _, model := range []string{"dall-e-3", "dall-e-2"} {
		imageData, err := c.generate(ctx, apiKey, model, best.Title)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Printf("[thumbnail] ⚠️  %s failed: %v", model, err)
			continue
		}
		if err := os.WriteFile(outFile, imageData, 0644); err != nil {
			return "", fmt.Errorf("save thumbnail: %w", err)
		}
		log.Printf("[thumbnail] ✅ Thumbnail saved: %s", outFile)
		return outFile, nil
	}

	log.Println("[thumbnail] Image API failed, creating placeholder thumbnail")
	return c.placeholder(ctx, best.Title, outFile)
}

func (c *Creator) generate(ctx context.Context, apiKey, model, title string) ([]byte, error) {
	prompt := buildImagePrompt(title, model)

	size := "1024x1792"
	if model == "dall-e-2" {
		size = "1024x1024"
	}

	reqBody := imageRequest{Model: model, Prompt: prompt, N: 1, Size: size}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.imageURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image API returned HTTP %d", resp.StatusCode)
	}

	var imgResp imageResponse
	if err := json.Unmarshal(respBytes, &imgResp); err != nil {
		return nil, fmt.Errorf("parse image response: %w", err)
	}
	if imgResp.Error != nil {
		return nil, fmt.Errorf("image error: %s", imgResp.Error.Message)
	}
	if len(imgResp.Data) == 0 || imgResp.Data[0].URL == "" {
		return nil, fmt.Errorf("image API returned no image")
	}

	return c.downloadImage(ctx, imgResp.Data[0].URL)
}

func (c *Creator) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) < 100 {
		return nil, fmt.Errorf("image response too small (%d bytes)", len(data))
	}
	return data, nil
}

// placeholder renders a dark vertical frame with the title as an
// overlay.
func (c *Creator) placeholder(ctx context.Context, title, outFile string) (string, error) {
	source := fmt.Sprintf("color=c=0x1a1a2e:s=%dx%d:d=1", c.cfg.Video.Width, c.cfg.Video.Height)
	drawtext := fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white:fontsize=48:box=1:boxcolor=black@0.5:boxborderw=20:x=(w-text_w)/2:y=(h-text_h)/2",
		escapeDrawtext(title),
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "lavfi",
		"-i", source,
		"-vf", drawtext,
		"-frames:v", "1",
		outFile,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg placeholder: %w", err)
	}

	log.Printf("[thumbnail] ✅ Placeholder thumbnail saved: %s", outFile)
	return outFile, nil
}

func buildImagePrompt(title, model string) string {
	base := fmt.Sprintf("YouTube Shorts thumbnail for: %s.", title)
	style := "Vertical format 9:16 ratio, bright colors, simple bold text, perfect for mobile viewing."

	prompt := base + " " + style
	if model == "dall-e-2" {
		if runes := []rune(prompt); len(runes) > 100 {
			prompt = string(runes[:97]) + "..."
		}
	}
	return prompt
}

func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, ":", "\\:")
	return s
}
