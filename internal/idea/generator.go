package idea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"shorts-pipeline/internal/config"
)

const defaultChatURL = "https://api.openai.com/v1/chat/completions"

// Generator produces platform-fit content ideas for a niche. It prefers
// the chat API and silently tops up any shortfall from the template
// pools, so it never fails outright.
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
	chatURL    string
	rng        *rand.Rand
}

// New creates a new idea Generator.
func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		chatURL:    defaultChatURL,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
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

// rawIdea tolerates the malformed shapes the chat API produces: key
// points or keywords may arrive as a comma-joined string instead of a
// list, and any field other than title may be missing.
type rawIdea struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	KeyPoints   looseList `json:"key_points"`
	Keywords    looseList `json:"keywords"`
}

// looseList unmarshals either a JSON array of strings or a single
// comma-joined string.
type looseList []string

func (l *looseList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	for _, part := range strings.Split(joined, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			*l = append(*l, trimmed)
		}
	}
	return nil
}

// Generate returns up to count normalized, deduplicated ideas for the
// niche. trending is an optional list of topical post titles folded
// into the generation prompt. A result shorter than count means the
// pools were exhausted; callers must tolerate that.
func (g *Generator) Generate(ctx context.Context, niche string, count int, trending []string) []Idea {
	var accepted []Idea

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey != "" {
		for _, model := range g.cfg.Ideas.Models {
			remaining := count - len(accepted)
			if remaining <= 0 {
				break
			}

			fetched, err := g.fetchIdeas(ctx, apiKey, model, niche, remaining, trending)
			if err != nil {
				log.Printf("[idea] %s generation failed: %v", model, err)
				continue
			}
			for _, cand := range fetched {
				if !isDuplicate(cand, accepted) {
					accepted = append(accepted, cand)
				}
			}
			log.Printf("[idea] %s contributed %d ideas (%d/%d)", model, len(fetched), len(accepted), count)
		}
	} else {
		log.Println("[idea] no API key set, using template generation only")
	}

	if shortfall := count - len(accepted); shortfall > 0 {
		for _, cand := range templateIdeas(niche, shortfall, g.rng) {
			if !isDuplicate(cand, accepted) {
				accepted = append(accepted, cand)
			}
		}
	}

	accepted = diversify(accepted, niche, g.rng)
	for i := range accepted {
		accepted[i].Normalize(g.rng)
	}

	if len(accepted) > count {
		accepted = accepted[:count]
	}
	log.Printf("[idea] ✅ Generated %d ideas for niche %q", len(accepted), niche)
	return accepted
}

func (g *Generator) fetchIdeas(ctx context.Context, apiKey, model, niche string, count int, trending []string) ([]Idea, error) {
	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "user", Content: buildIdeaPrompt(niche, count, trending)},
		},
		Temperature: g.cfg.Ideas.Temperature,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.chatURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat API returned HTTP %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return nil, fmt.Errorf("parse chat response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("chat error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("chat API returned no choices")
	}

	content := cleanJSON(chatResp.Choices[0].Message.Content)

	var raws []rawIdea
	if err := json.Unmarshal([]byte(content), &raws); err != nil {
		raws = extractIdeasFromText(content)
		if len(raws) == 0 {
			return nil, fmt.Errorf("no parseable ideas in response")
		}
		log.Printf("[idea] recovered %d ideas from malformed %s response", len(raws), model)
	}

	ideas := make([]Idea, 0, len(raws))
	for _, raw := range raws {
		if raw.Title == "" {
			continue
		}
		ideas = append(ideas, g.repair(raw, niche))
	}
	return ideas, nil
}

// repair fills in any fields the chat API omitted, from the same pools
// the template path uses.
func (g *Generator) repair(raw rawIdea, niche string) Idea {
	out := Idea{
		Title:       formatTitle(raw.Title),
		Description: raw.Description,
		KeyPoints:   raw.KeyPoints,
		Keywords:    raw.Keywords,
	}
	if out.Description == "" {
		out.Description = templateDescription(niche, g.rng)
	}
	if len(out.KeyPoints) == 0 {
		out.KeyPoints = templateKeyPoints(niche, g.rng)
	}
	if len(out.Keywords) == 0 {
		out.Keywords = templateKeywords(out.Title, niche, g.rng)
	}
	return out
}

func buildIdeaPrompt(niche string, count int, trending []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generate %d YouTube Shorts content ideas for the niche %q.\n\n", count, niche))
	sb.WriteString("Each idea must work as a vertical video under 60 seconds: a catchy hook title under 50 characters, a one-line description under 100 characters, 2-3 brief key points, and 4-8 lowercase keywords including \"shorts\".\n\n")

	if len(trending) > 0 {
		sb.WriteString("Currently trending discussions in this niche:\n")
		for _, t := range trending {
			sb.WriteString("- " + t + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`Respond with ONLY a JSON array, no markdown and no explanation. Each element: {"title": "...", "description": "...", "key_points": ["..."], "keywords": ["..."]}`)
	return sb.String()
}

var (
	jsonArrayPattern  = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*?\}`)
)

// extractIdeasFromText opportunistically pulls idea-shaped JSON out of
// a response that carries extra prose around it.
func extractIdeasFromText(text string) []rawIdea {
	var ideas []rawIdea

	for _, match := range jsonArrayPattern.FindAllString(text, -1) {
		var parsed []rawIdea
		if err := json.Unmarshal([]byte(match), &parsed); err == nil {
			ideas = append(ideas, parsed...)
		}
	}
	if len(ideas) > 0 {
		return ideas
	}

	for _, match := range jsonObjectPattern.FindAllString(text, -1) {
		var parsed rawIdea
		if err := json.Unmarshal([]byte(match), &parsed); err == nil && parsed.Title != "" {
			ideas = append(ideas, parsed)
		}
	}
	return ideas
}

// diversify sorts the merged batch by title, drops near-duplicates
// across sources, and repairs any idea still missing fields.
func diversify(ideas []Idea, niche string, rng *rand.Rand) []Idea {
	if len(ideas) == 0 {
		return nil
	}

	sorted := append([]Idea{}, ideas...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Title < sorted[j].Title })

	var kept []Idea
	for _, cand := range sorted {
		if isDuplicate(cand, kept) {
			continue
		}
		if cand.Description == "" {
			cand.Description = templateDescription(niche, rng)
		}
		if len(cand.KeyPoints) == 0 {
			cand.KeyPoints = templateKeyPoints(niche, rng)
		}
		if len(cand.Keywords) == 0 {
			cand.Keywords = templateKeywords(cand.Title, niche, rng)
		}
		cand.Title = formatTitle(cand.Title)
		kept = append(kept, cand)
	}
	return kept
}

// cleanJSON strips markdown fences if the model wraps its response in ```json ... ```
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
