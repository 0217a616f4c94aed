package idea

import (
	"fmt"
	"math/rand"
	"strings"
)

// Title template pools. The generic pool applies to every niche; the
// per-niche pools are added on top when the niche matches a keyword
// family.
var genericTemplates = []string{
	"{n} {adj} {niche} Tips in 60 Seconds",
	"Did You Know This About {niche}?",
	"Why Your {niche} Strategy Is Wrong",
	"This {niche} Hack Will Surprise You",
	"{verb} Your {niche} in Seconds",
	"The {niche} Secret No One Tells You",
	"{niche} Myth Busted!",
	"Try This {niche} Trick Today",
	"You're Doing {niche} Wrong! Here's Why",
	"The {adj} Truth About {niche}",
	"How to {verb} Your {niche} Today",
	"The {adj} {niche} Guide You Need",
	"What No One Tells You About {niche}",
	"{niche} Facts That Will Blow Your Mind",
	"Stop Making These {niche} Mistakes",
	"The Most {adj} {niche} Tips Ever",
	"{niche} Hacks You Can't Miss",
	"Transform Your {niche} with This One Trick",
	"I Tried This {niche} Method and...",
	"Why Most {niche} Advice Fails",
	"One {niche} Secret That Changed Everything",
	"The Fastest Way to {verb} Your {niche}",
	"Never Do This With Your {niche}",
	"This {niche} Trick Saved Me Hours",
	"{n} Seconds to Better {niche} Results",
}

var financeTemplates = []string{
	"The {niche} Rule Nobody Follows",
	"This {niche} Mistake Costs You Money",
	"How To {verb} Your {niche} Today",
	"Save Money With This {niche} Trick",
	"{n} Seconds To Better {niche} Results",
	"The {niche} Strategy Millionaires Use",
	"Double Your {niche} Returns With This",
	"The {niche} Trick Banks Don't Want You To Know",
	"How I Fixed My {niche} In One Day",
	"{niche} Red Flags You're Ignoring",
	"The {adj} {niche} Strategy for Beginners",
	"Why Your {niche} Is Failing (And How to Fix It)",
	"Passive {niche} Secrets Revealed",
	"The {n} {niche} Rules You Must Follow",
	"The Only {niche} Advice You'll Ever Need",
	"This One {niche} Mistake Could Cost You Thousands",
	"How to {verb} Your {niche} Portfolio in Minutes",
	"I Tried This {niche} Hack and Made $500",
	"The Easiest Way to {verb} Your {niche}",
	"The {niche} Secret Wall Street Doesn't Share",
}

var techTemplates = []string{
	"This {niche} Shortcut Will Save You Hours",
	"The {niche} Feature You Never Knew Existed",
	"Try This {niche} Setting Right Now",
	"Update Your {niche} Settings Immediately",
	"The Future of {niche} Is Already Here",
	"Hidden {niche} Features You Need To Try",
	"This {niche} Trick Makes Everything Faster",
	"The {niche} Hack Developers Don't Tell You",
	"Why Your {niche} Setup Is Wrong",
	"{niche} Settings That Will Change Your Life",
	"The Secret {niche} Menu You Didn't Know About",
	"One {niche} Setting That Changes Everything",
	"Make Your {niche} 10x Faster With This",
	"The {adj} {niche} Shortcut Everyone Missed",
	"How To Enable Hidden {niche} Features",
	"The {adj} {niche} Feature Nobody Uses",
	"I Found a Secret {niche} Code That Does This",
	"Your {niche} Has a Built-in Tool You Never Noticed",
	"The {niche} Algorithm Explained in 60 Seconds",
	"Unlock Advanced {niche} Features With This Trick",
}

var healthTemplates = []string{
	"This {niche} Habit Will Transform Your Body",
	"The {adj} {niche} Routine You Need to Try",
	"{n} Second {niche} Exercise That Works",
	"The {niche} Mistake Ruining Your Progress",
	"How I {verb} My {niche} In Just One Week",
	"The {niche} Secret Fitness Pros Use",
	"Try This {niche} Hack for Instant Results",
	"The Only {niche} Move You Need To Know",
	"Your {niche} Routine Is Wrong - Here's Why",
	"The {niche} Myth That's Holding You Back",
	"I Tried This {niche} Trick for 7 Days...",
	"The Morning {niche} Habit That Changed Everything",
	"This One {niche} Move Targets All Muscles",
	"Why Most {niche} Advice Is Actually Harmful",
	"How to {verb} Your {niche} Without Equipment",
}

var foodTemplates = []string{
	"The {adj} {niche} Recipe Under 60 Seconds",
	"This {niche} Hack Will Change How You Cook",
	"Never Make This {niche} Mistake Again",
	"The {niche} Secret Chefs Don't Tell You",
	"Try This {niche} Trick For Perfect Results",
	"How To {verb} Your {niche} In Seconds",
	"The Only {niche} Technique You Need",
	"{n} {niche} Tips That Will Blow Your Mind",
	"This {niche} Shortcut Saves Hours",
	"The {niche} Hack That Changed My Cooking",
	"I Tried This Viral {niche} Hack...",
	"The Easiest Way to {verb} {niche} Ever",
	"The {niche} Method Professional Chefs Use",
	"Turn Boring {niche} Into Amazing In Seconds",
	"The {adj} {niche} Recipe With Only 3 Ingredients",
}

// Placeholder fill pools.
var templateElements = map[string][]string{
	"n": {"3", "5", "7", "10", "These", "Top", "Best", "Secret", "Quick", "Proven", "Essential", "Simple"},
	"adj": {"Secret", "Quick", "Game-Changing", "Hidden", "Shocking", "Amazing", "Incredible",
		"Mind-Blowing", "Powerful", "Effective", "Simple", "Easy", "Ultimate", "Essential",
		"Surprising", "Unbelievable", "Proven", "Brilliant", "Perfect", "Instant"},
	"verb": {"Transform", "Boost", "Hack", "Upgrade", "Fix", "Master", "Improve", "Optimize",
		"Revolutionize", "Supercharge", "Simplify", "Accelerate", "Enhance", "Perfect",
		"Maximize", "Double", "Unlock", "Elevate", "Streamline", "Conquer"},
}

// nicheFamilies maps a keyword family to its extra template pool.
var nicheFamilies = []struct {
	terms     []string
	templates []string
}{
	{[]string{"finance", "money", "invest", "trading", "crypto", "wealth"}, financeTemplates},
	{[]string{"tech", "technology", "software", "digital", "ai", "programming"}, techTemplates},
	{[]string{"health", "fitness", "exercise", "workout", "diet"}, healthTemplates},
	{[]string{"food", "cooking", "recipe", "baking", "kitchen"}, foodTemplates},
}

var descriptionTemplates = []string{
	"Quick %s tip that most people miss. Watch until the end!",
	"This %s hack could save you time and money. #shorts",
	"The %s secret professionals don't want you to know!",
	"Transform your approach to %s in just 60 seconds!",
	"You won't believe this %s fact! Follow for more tips.",
	"This %s trick will change everything. Must try!",
	"Learn this %s technique in under 60 seconds!",
	"The %s hack everyone needs to know. Game-changer!",
	"I wish I knew this %s tip sooner. Don't make my mistake!",
	"This %s method is going viral for a reason. Try it now!",
	"Secret %s strategy revealed in this quick video!",
	"Most people get %s wrong. Here's what to do instead.",
	"I tested this %s hack for a week. The results shocked me!",
	"This %s shortcut saves me hours every week.",
	"The %s tip that changed my life. Not clickbait!",
}

var pointStarters = []string{
	"Show the problem",
	"Reveal the solution",
	"Demonstrate the benefit",
	"Compare before/after",
	"Share a surprising fact",
	"Ask a provocative question",
	"Call to action",
	"Highlight common mistake",
	"Show quick implementation",
	"Explain return on investment",
	"Show side-by-side comparison",
	"Reveal insider secret",
	"Share personal experience",
	"Show transformation process",
	"Provide actionable tip",
}

var extraKeywords = []string{
	"tiktok", "viral", "trending", "learning", "quicktips", "howto",
	"tutorial", "hack", "tip", "trick", "advice", "quick", "easy",
}

var stopWords = map[string]bool{
	"the": true, "to": true, "a": true, "an": true, "in": true, "on": true,
	"for": true, "of": true, "and": true, "that": true, "with": true, "how": true,
}

// maxResampleFactor bounds how many candidates the template loop will
// draw before giving up on reaching the requested count.
const maxResampleFactor = 20

// templateIdeas synthesizes count deduplicated ideas for the niche from
// the template pools. It may return fewer than count if the pools
// cannot yield enough sufficiently distinct titles.
func templateIdeas(niche string, count int, rng *rand.Rand) []Idea {
	pool := templatePool(niche)

	var ideas []Idea
	for attempts := 0; len(ideas) < count && attempts < count*maxResampleFactor; attempts++ {
		title := fillTemplate(pool[rng.Intn(len(pool))], niche, rng)
		candidate := Idea{
			Title:       title,
			Description: templateDescription(niche, rng),
			KeyPoints:   templateKeyPoints(niche, rng),
			Keywords:    templateKeywords(title, niche, rng),
		}
		if !isDuplicate(candidate, ideas) {
			ideas = append(ideas, candidate)
		}
	}
	return ideas
}

func templatePool(niche string) []string {
	lower := strings.ToLower(niche)
	pool := genericTemplates
	for _, family := range nicheFamilies {
		for _, term := range family.terms {
			if strings.Contains(lower, term) {
				return append(append([]string{}, pool...), family.templates...)
			}
		}
	}
	return pool
}

func fillTemplate(template, niche string, rng *rand.Rand) string {
	title := template
	for key, values := range templateElements {
		placeholder := "{" + key + "}"
		if strings.Contains(title, placeholder) {
			title = strings.ReplaceAll(title, placeholder, values[rng.Intn(len(values))])
		}
	}
	return strings.ReplaceAll(title, "{niche}", niche)
}

func templateDescription(niche string, rng *rand.Rand) string {
	return fmt.Sprintf(descriptionTemplates[rng.Intn(len(descriptionTemplates))], niche)
}

func templateKeyPoints(niche string, rng *rand.Rand) []string {
	n := 2 + rng.Intn(2)
	points := make([]string, 0, n)
	for _, i := range rng.Perm(len(pointStarters))[:n] {
		points = append(points, fmt.Sprintf("%s about %s", pointStarters[i], niche))
	}
	return points
}

// templateKeywords derives 5-8 keywords from the title words plus the
// fixed short-form pools.
func templateKeywords(title, niche string, rng *rand.Rand) []string {
	candidates := []string{strings.ToLower(niche), "shorts", "shortsvideo"}

	cleaned := strings.NewReplacer(":", "", "-", " ").Replace(title)
	for _, w := range strings.Fields(cleaned) {
		lower := strings.ToLower(w)
		if !stopWords[lower] && len(lower) > 3 {
			candidates = append(candidates, lower)
		}
	}
	candidates = append(candidates, extraKeywords...)

	want := 5 + rng.Intn(4)
	if want > len(candidates) {
		want = len(candidates)
	}

	var keywords []string
	seen := make(map[string]bool)
	for _, i := range rng.Perm(len(candidates)) {
		if len(keywords) == want {
			break
		}
		if !seen[candidates[i]] {
			seen[candidates[i]] = true
			keywords = append(keywords, candidates[i])
		}
	}
	return keywords
}
