package idea

import (
	"math/rand"
	"strings"
)

// Idea is a structured content proposal consumed by the downstream
// pipeline stages.
type Idea struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	KeyPoints   []string `json:"key_points"`
	Keywords    []string `json:"keywords"`
}

const (
	titleBudget       = 50
	titleTruncateAt   = 46
	descriptionBudget = 100

	// Titles that share more than this fraction of words with an
	// already-accepted title are rejected as duplicates.
	duplicateThreshold = 0.7
)

// hookSignals mark a title as having an attention hook.
var hookSignals = []string{"?", "how", "why", "this", "secret", "try"}

// shortsMarkers are keyword values that count as a short-form platform tag.
var shortsMarkers = []string{"shorts", "shortsvideo", "shortsyoutube", "tiktok", "reels"}

var hookPrefixes = []string{
	"Did you know this secret? ",
	"Did you know this trick? ",
	"Did you know this hack? ",
	"Try this now: ",
	"Try this today: ",
	"Try this immediately: ",
	"You've been doing it wrong: ",
	"You've been doing this wrong: ",
}

// Normalize enforces the platform-fit invariants on a single idea:
// title within budget, at most 3 key points, short description, a
// short-form keyword marker, and a hook signal in the title.
func (i *Idea) Normalize(rng *rand.Rand) {
	if len(i.Title) > titleBudget {
		i.Title = truncateTitleByWords(i.Title)
	}

	if !hasShortsMarker(i.Keywords) {
		i.Keywords = append(i.Keywords, "shorts")
	}

	if len(i.KeyPoints) > 3 {
		i.KeyPoints = i.KeyPoints[:3]
	}

	if len(i.Description) > descriptionBudget {
		i.Description = truncateRunes(i.Description, 97) + "..."
	}

	if !hasHook(i.Title) {
		i.Title = hookPrefixes[rng.Intn(len(hookPrefixes))] + i.Title
		if len(i.Title) > titleBudget {
			i.Title = truncateRunes(i.Title, 47) + "..."
		}
	}
}

// truncateRunes cuts s after at most n runes, never mid-rune.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// truncateTitleByWords keeps whole words up to the truncation budget and
// appends an ellipsis.
func truncateTitleByWords(title string) string {
	var b strings.Builder
	for _, word := range strings.Fields(title) {
		candidate := word
		if b.Len() > 0 {
			candidate = " " + word
		}
		if b.Len()+len(candidate) > titleTruncateAt {
			break
		}
		b.WriteString(candidate)
	}
	return b.String() + "..."
}

func hasHook(title string) bool {
	lower := strings.ToLower(title)
	for _, h := range hookSignals {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

func hasShortsMarker(keywords []string) bool {
	for _, kw := range keywords {
		for _, marker := range shortsMarkers {
			if strings.EqualFold(kw, marker) {
				return true
			}
		}
	}
	return false
}

// titleSimilarity is the word-set intersection size divided by the
// smaller set's size.
func titleSimilarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	common := 0
	for w := range wordsA {
		if wordsB[w] {
			common++
		}
	}

	smaller := len(wordsA)
	if len(wordsB) < smaller {
		smaller = len(wordsB)
	}
	return float64(common) / float64(smaller)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}

// isDuplicate reports whether candidate's title overlaps any accepted
// idea's title beyond the duplicate threshold.
func isDuplicate(candidate Idea, accepted []Idea) bool {
	for _, existing := range accepted {
		if titleSimilarity(candidate.Title, existing.Title) > duplicateThreshold {
			return true
		}
	}
	return false
}

// formatTitle applies title casing, leaving small connective words lower.
func formatTitle(title string) string {
	lowercaseWords := map[string]bool{
		"a": true, "an": true, "the": true, "and": true, "but": true,
		"or": true, "for": true, "nor": true, "on": true, "at": true,
		"to": true, "from": true, "by": true, "in": true, "of": true,
	}

	words := strings.Fields(title)
	if len(words) == 0 {
		return ""
	}

	for i, w := range words {
		first := i == 0
		last := i == len(words)-1
		if first || last || !lowercaseWords[strings.ToLower(w)] {
			words[i] = capitalize(w)
		} else {
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}
