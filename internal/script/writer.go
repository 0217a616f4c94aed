package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shorts-pipeline/internal/config"
	"shorts-pipeline/internal/idea"
)

const defaultChatURL = "https://api.openai.com/v1/chat/completions"

// Writer generates a short vertical-video script for an idea. The chat
// API is preferred; a deterministic template script is the fallback, so
// script generation never fails outright.
type Writer struct {
	cfg        *config.Config
	httpClient *http.Client
	chatURL    string
}

// New creates a new script Writer.
func New(cfg *config.Config) *Writer {
	return &Writer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		chatURL:    defaultChatURL,
	}
}

// Result is a produced script and the narration text extracted from it.
type Result struct {
	Content   string
	Narration string
	Path      string
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Write generates and saves a script for the idea.
func (w *Writer) Write(ctx context.Context, best *idea.Idea, workDir string) (*Result, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("[script] No API key set, using fallback script")
		return w.fallback(best, workDir)
	}

	prompt := buildScriptPrompt(best, w.cfg.Script.Style, w.cfg.Script.Audience)

	for _, model := range w.cfg.Script.Models {
		for attempt := 1; attempt <= w.cfg.Script.RetryAttempts; attempt++ {
			content, err := w.requestScript(ctx, apiKey, model, prompt)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Printf("[script] %s attempt %d failed: %v", model, attempt, err)
				continue
			}
			return w.save(best, content, workDir)
		}
	}

	log.Println("[script] ⚠️  All API attempts failed, using fallback script")
	return w.fallback(best, workDir)
}

func (w *Writer) requestScript(ctx context.Context, apiKey, model, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: w.cfg.Script.Temperature,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.chatURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API returned HTTP %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("chat error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}

func (w *Writer) save(best *idea.Idea, content, workDir string) (*Result, error) {
	path := filepath.Join(workDir, "script.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("save script: %w", err)
	}

	log.Printf("[script] ✅ Script saved: %s", path)
	return &Result{
		Content:   content,
		Narration: ExtractNarration(content),
		Path:      path,
	}, nil
}

// fallback builds a minimal hook/points/call-to-action script from the
// idea itself.
func (w *Writer) fallback(best *idea.Idea, workDir string) (*Result, error) {
	firstKeyword := "tips"
	if len(best.Keywords) > 0 {
		firstKeyword = best.Keywords[0]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[TEXT] %s\n\n", best.Title)
	fmt.Fprintf(&sb, "[VISUAL] Eye-catching intro related to %s\n\n", firstKeyword)
	fmt.Fprintf(&sb, "[NARRATOR] Did you know this about %s? In just 30 seconds, I'll show you the key insight.\n", best.Title)

	points := best.KeyPoints
	if len(points) > 2 {
		points = points[:2]
	}
	for _, point := range points {
		overlay := point
		if runes := []rune(overlay); len(runes) >= 20 {
			overlay = string(runes[:17]) + "..."
		}
		fmt.Fprintf(&sb, "\n[TEXT] %s\n\n", strings.ToUpper(overlay))
		fmt.Fprintf(&sb, "[VISUAL] Show %s\n\n", strings.ToLower(point))
		fmt.Fprintf(&sb, "[NARRATOR] %s. This is crucial because it directly affects your results.\n", point)
	}

	fmt.Fprintf(&sb, "\n[TEXT] Follow for more %s!\n\n", firstKeyword)
	sb.WriteString("[VISUAL] Your channel handle or logo\n\n")
	fmt.Fprintf(&sb, "[NARRATOR] If you found this helpful, like and follow for more quick %s just like this!\n", firstKeyword)

	return w.save(best, sb.String(), workDir)
}

func buildScriptPrompt(best *idea.Idea, style, audience string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a concise YouTube Shorts script for a vertical video titled: %q\n\n", best.Title)
	fmt.Fprintf(&sb, "Description: %s\n\n", best.Description)
	fmt.Fprintf(&sb, "Key points to cover (briefly): %s\n\n", strings.Join(best.KeyPoints, ", "))
	sb.WriteString(`IMPORTANT REQUIREMENTS:
1. The script MUST be VERY SHORT (30-60 seconds when spoken)
2. Start with an attention-grabbing hook in the first 3 seconds
3. Focus on just 1-2 key points maximum
4. End with a clear call to action
5. Use short, punchy sentences optimized for vertical video format
6. Include visual cues for what should be shown on screen

Format the script with:
- [TEXT]: On-screen text overlays
- [VISUAL]: Visual elements to show
- [NARRATOR]: Spoken parts

`)
	fmt.Fprintf(&sb, "The tone should be %s and targeted at a %s audience.\n", style, audience)
	sb.WriteString("Remember this is for YouTube Shorts - it must be fast-paced, engaging, and get to the point immediately.")
	return sb.String()
}

// ExtractNarration pulls the spoken lines out of a tagged script. When
// no [NARRATOR] tags are present, the first 20 non-empty lines serve as
// a fallback.
func ExtractNarration(content string) string {
	var narrator []string
	for _, line := range strings.Split(content, "\n") {
		if _, after, found := strings.Cut(line, "[NARRATOR]"); found {
			narrator = append(narrator, strings.TrimSpace(after))
		}
	}
	if len(narrator) > 0 {
		return strings.Join(narrator, " ")
	}

	var fallback []string
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			fallback = append(fallback, trimmed)
			if len(fallback) == 20 {
				break
			}
		}
	}
	return strings.Join(fallback, " ")
}
