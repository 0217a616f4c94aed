package idea

import "testing"

func strongIdea() Idea {
	return Idea{
		// 36 chars, hook word, power word, niche word.
		Title:       "The Secret Money Habit That Works",
		Description: "A short punchy description under eighty characters.",
		KeyPoints:   []string{"Show the money mistake", "Reveal the better habit"},
		Keywords:    []string{"money", "shorts"},
	}
}

func TestSelectBestEmptyBatch(t *testing.T) {
	if got := SelectBest(nil, "money"); got != nil {
		t.Fatalf("empty batch returned %+v", got)
	}
}

func TestSelectBestSingleIdeaUnconditional(t *testing.T) {
	ideas := []Idea{{Title: ""}}
	got := SelectBest(ideas, "money")
	if got != &ideas[0] {
		t.Fatal("single-element batch must be returned without scoring")
	}
}

func TestSelectBestPrefersStrongerIdea(t *testing.T) {
	weak := Idea{
		Title:       "An Extremely Long And Rambling Title That Goes Way Past Any Sensible Length",
		Description: string(make([]byte, 120)),
		KeyPoints:   []string{"a", "b", "c", "d", "e"},
		Keywords:    []string{"misc"},
	}
	ideas := []Idea{weak, strongIdea()}

	got := SelectBest(ideas, "money")
	if got != &ideas[1] {
		t.Fatalf("selected %q", got.Title)
	}
}

func TestSelectBestTieGoesToFirst(t *testing.T) {
	ideas := []Idea{strongIdea(), strongIdea()}
	got := SelectBest(ideas, "money")
	if got != &ideas[0] {
		t.Fatal("tie not broken by input order")
	}
}

func TestScoreTitleLengthBands(t *testing.T) {
	base := Idea{}

	ideal := base
	ideal.Title = "Exactly Thirty Characters Here"
	acceptable := base
	acceptable.Title = "Tiny"
	over := base
	over.Title = "A Title Running Far Beyond Fifty Characters Without Stopping At All"

	if Score(ideal, "") <= Score(acceptable, "") {
		t.Error("30-45 char title not favored over short title")
	}
	if Score(acceptable, "") <= Score(over, "") {
		t.Error("under-50 title not favored over over-budget title")
	}
}

func TestScoreHookCountsOnce(t *testing.T) {
	one := Idea{Title: "zzz bbb how"}
	two := Idea{Title: "zzz bbb how why"}

	if Score(one, "") != Score(two, "") {
		t.Error("multiple hook words must not stack")
	}
}

func TestScorePowerWordsStack(t *testing.T) {
	one := Idea{Title: "how the proven zzzz aaaa bbbb cc"}
	two := Idea{Title: "how the proven secret aaaa bbbb"}

	if Score(two, "") <= Score(one, "") {
		t.Error("second power word added no score")
	}
}

func TestScoreKeyPointBands(t *testing.T) {
	mk := func(points ...string) Idea {
		return Idea{KeyPoints: points}
	}

	twoThree := Score(mk("aaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbb"), "")
	four := Score(mk("aaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbb", "ccccccccccccccc", "ddddddddddddddd"), "")
	five := Score(mk("a", "b", "c", "d", "e"), "")

	if twoThree <= four {
		t.Error("2-3 key points not favored over 4")
	}
	if four <= five {
		t.Error("4 key points not favored over 5")
	}
}

func TestScoreNicheRelevanceCapped(t *testing.T) {
	i := Idea{
		Title:     "alpha beta gamma delta epsilon zeta eta",
		KeyPoints: []string{"alpha beta gamma delta epsilon zeta eta"},
	}
	withNiche := Score(i, "alpha beta gamma delta epsilon zeta eta")
	without := Score(i, "")

	if withNiche-without != 3 {
		t.Errorf("relevance bonus = %v, want capped at 3", withNiche-without)
	}
}

func TestScoreShortsKeyword(t *testing.T) {
	with := Idea{Keywords: []string{"shorts"}}
	without := Idea{Keywords: []string{"misc"}}

	if Score(with, "")-Score(without, "") != 2 {
		t.Error("short-form keyword bonus missing")
	}
}

func TestScoreDescriptionBands(t *testing.T) {
	short := Idea{Description: "brief"}
	mid := Idea{Description: string(make([]byte, 90))}
	long := Idea{Description: string(make([]byte, 150))}

	if Score(short, "") <= Score(mid, "") {
		t.Error("<=80 char description not favored over <=100")
	}
	if Score(mid, "") <= Score(long, "") {
		t.Error("<=100 char description not favored over longer")
	}
}
