package narration

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
	"regexp"
	"strings"
	"time"

	"shorts-pipeline/internal/config"
)

const defaultTTSBaseURL = "https://api.elevenlabs.io"

// Generator converts narration text to speech. Long text is split on
// sentence boundaries into chunks below the per-call character ceiling
// and the audio is concatenated in order.
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
	baseURL    string
}

// New creates a new narration Generator.
func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    defaultTTSBaseURL,
	}
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Generate produces one audio file for the narration text. Partial
// audio is saved rather than discarded when some chunks fail, as long
// as at least one succeeded.
func (g *Generator) Generate(ctx context.Context, text, workDir string) (string, error) {
	apiKey := os.Getenv("ELEVENLABS_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("ELEVENLABS_API_KEY not set")
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty narration text")
	}

	chunks := splitIntoChunks(text, g.cfg.Narration.MaxChunkChars)
	log.Printf("[narration] Generating voice for %d chars in %d chunk(s)", len(text), len(chunks))

	var combined bytes.Buffer
	generated := 0
	for i, chunk := range chunks {
		audio, err := g.generateChunk(ctx, apiKey, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Printf("[narration] ⚠️  Chunk %d/%d failed: %v", i+1, len(chunks), err)
			continue
		}
		combined.Write(audio)
		generated++
	}

	if generated == 0 {
		return "", fmt.Errorf("all %d narration chunks failed", len(chunks))
	}
	if generated < len(chunks) {
		log.Printf("[narration] ⚠️  Saving partial audio (%d/%d chunks)", generated, len(chunks))
	}

	outFile := filepath.Join(workDir, "narration.mp3")
	if err := os.WriteFile(outFile, combined.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("save narration: %w", err)
	}

	log.Printf("[narration] ✅ Narration saved: %s (%d bytes)", outFile, combined.Len())
	return outFile, nil
}

func (g *Generator) generateChunk(ctx context.Context, apiKey, chunk string) ([]byte, error) {
	reqBody := ttsRequest{
		Text:    chunk,
		ModelID: "eleven_monolingual_v1",
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", g.baseURL, g.cfg.Narration.VoiceID)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		audio, err := g.post(ctx, url, apiKey, bodyBytes)
		if err == nil {
			return audio, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, err
		}
		log.Printf("[narration] TTS attempt %d failed: %v — retrying...", attempt, err)
		time.Sleep(2 * time.Second)
	}
	return nil, lastErr
}

func (g *Generator) post(ctx context.Context, url, apiKey string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS API returned HTTP %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	// A valid MP3 chunk is never this small.
	if len(audio) < 1000 {
		return nil, fmt.Errorf("audio response too small (%d bytes)", len(audio))
	}
	return audio, nil
}

var sentenceBoundary = regexp.MustCompile(`(?:[.!?])\s+`)

// splitIntoChunks splits text into pieces no longer than maxLen,
// preferring sentence boundaries and falling back to word boundaries
// for oversized sentences.
func splitIntoChunks(text string, maxLen int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	var current string

	for _, sentence := range splitSentences(text) {
		if len(current)+len(sentence)+1 > maxLen {
			if current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
				current = ""
			}
			if len(sentence) > maxLen {
				parts, rest := splitWords(sentence, maxLen)
				chunks = append(chunks, parts...)
				current = rest
				continue
			}
			current = sentence
			continue
		}
		if current != "" {
			current += " " + sentence
		} else {
			current = sentence
		}
	}

	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// splitSentences splits on sentence-ending punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		// loc[0] is the punctuation mark; keep it.
		sentences = append(sentences, text[last:loc[0]+1])
		last = loc[1]
	}
	if last < len(text) {
		sentences = append(sentences, text[last:])
	}
	return sentences
}

// splitWords chops an oversized sentence at word boundaries. The final
// under-budget remainder is returned separately so the caller can merge
// it with following sentences.
func splitWords(sentence string, maxLen int) ([]string, string) {
	var chunks []string
	var current string

	for _, word := range strings.Fields(sentence) {
		if len(current)+len(word)+1 > maxLen {
			if current != "" {
				chunks = append(chunks, current)
			}
			current = word
			continue
		}
		if current != "" {
			current += " " + word
		} else {
			current = word
		}
	}
	return chunks, current
}
