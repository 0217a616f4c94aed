package idea

import "strings"

// Scoring heuristics. The point values are fixed defaults, not tuned
// precision requirements.
var scoringHooks = []string{"?", "how", "why", "this", "secret", "hack", "try", "!"}

var powerWords = []string{
	"ultimate", "secret", "shocking", "proven", "powerful",
	"revealed", "strategy", "fast", "quick",
}

var scoringShortsKeywords = []string{"shorts", "shortsvideo", "tiktok", "trending", "viral"}

// SelectBest picks the highest-scoring idea from a batch. Ties are
// broken by input order. An empty batch yields nil; a single-element
// batch is returned without scoring.
func SelectBest(ideas []Idea, niche string) *Idea {
	if len(ideas) == 0 {
		return nil
	}
	if len(ideas) == 1 {
		return &ideas[0]
	}

	best := 0
	bestScore := Score(ideas[0], niche)
	for i := 1; i < len(ideas); i++ {
		if s := Score(ideas[i], niche); s > bestScore {
			best, bestScore = i, s
		}
	}
	return &ideas[best]
}

// Score rates one idea's fitness for short-form video.
func Score(i Idea, niche string) float64 {
	var score float64
	lowerTitle := strings.ToLower(i.Title)

	// Title length: 30-45 characters is the ideal band.
	switch {
	case len(i.Title) >= 30 && len(i.Title) <= 45:
		score += 3
	case len(i.Title) <= 50:
		score += 2
	}

	for _, hook := range scoringHooks {
		if strings.Contains(lowerTitle, hook) {
			score += 2
			break
		}
	}

	for _, word := range powerWords {
		if strings.Contains(lowerTitle, word) {
			score++
		}
	}

	switch {
	case len(i.KeyPoints) >= 2 && len(i.KeyPoints) <= 3:
		score += 3
	case len(i.KeyPoints) == 4:
		score += 1
	}

	if len(i.KeyPoints) > 0 {
		total := 0
		for _, p := range i.KeyPoints {
			total += len(p)
		}
		avg := float64(total) / float64(len(i.KeyPoints))
		if avg >= 10 && avg <= 40 {
			score += 2
		}
	}

	for _, marker := range scoringShortsKeywords {
		if keywordContains(i.Keywords, marker) {
			score += 2
			break
		}
	}

	switch {
	case len(i.Description) <= 80:
		score += 3
	case len(i.Description) <= 100:
		score += 1
	}

	var relevance float64
	for _, word := range strings.Fields(strings.ToLower(niche)) {
		if strings.Contains(lowerTitle, word) {
			relevance++
		}
		for _, kp := range i.KeyPoints {
			if strings.Contains(strings.ToLower(kp), word) {
				relevance += 0.5
				break
			}
		}
	}
	if relevance > 3 {
		relevance = 3
	}
	score += relevance

	return score
}

func keywordContains(keywords []string, marker string) bool {
	for _, kw := range keywords {
		if strings.Contains(strings.ToLower(kw), marker) {
			return true
		}
	}
	return false
}
