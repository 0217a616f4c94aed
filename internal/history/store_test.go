package history

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndTotal(t *testing.T) {
	s := newTestStore(t)

	total, err := s.Total()
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 0 {
		t.Fatalf("fresh store total = %d, want 0", total)
	}

	for i := 0; i < 3; i++ {
		err := s.Record(Video{
			VideoID:  "local_only",
			Title:    "Why Compound Interest Wins",
			Niche:    "finance",
			Keywords: JoinKeywords([]string{"finance", "shorts"}),
			FilePath: "output/why_compound_interest_wins/final.mp4",
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	total, err = s.Total()
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
}

func TestCountSince(t *testing.T) {
	s := newTestStore(t)

	now := time.Now().UTC()
	old := Video{VideoID: "a", Title: "t", Niche: "n", CreatedAt: now.Add(-48 * time.Hour)}
	fresh := Video{VideoID: "b", Title: "t", Niche: "n", CreatedAt: now}

	if err := s.Record(old); err != nil {
		t.Fatalf("record old: %v", err)
	}
	if err := s.Record(fresh); err != nil {
		t.Fatalf("record fresh: %v", err)
	}

	n, err := s.CountSince(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("count since: %v", err)
	}
	if n != 1 {
		t.Fatalf("count since = %d, want 1", n)
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		v := Video{
			VideoID:   "local_only",
			Title:     "t",
			Niche:     "n",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Record(v); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	videos, err := s.Recent(3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(videos) != 3 {
		t.Fatalf("got %d videos, want 3", len(videos))
	}
	for i := 1; i < len(videos); i++ {
		if videos[i].CreatedAt.After(videos[i-1].CreatedAt) {
			t.Fatalf("videos not newest-first: %v then %v", videos[i-1].CreatedAt, videos[i].CreatedAt)
		}
	}
}

func TestRecentEmpty(t *testing.T) {
	s := newTestStore(t)

	videos, err := s.Recent(8)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(videos) != 0 {
		t.Fatalf("got %d videos from empty store", len(videos))
	}
}

func TestRecordDefaultsCreatedAt(t *testing.T) {
	s := newTestStore(t)

	before := time.Now().UTC().Add(-time.Second)
	if err := s.Record(Video{VideoID: "v", Title: "t", Niche: "n"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	videos, err := s.Recent(1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("got %d videos, want 1", len(videos))
	}
	if videos[0].CreatedAt.Before(before) {
		t.Fatalf("created_at not defaulted: %v", videos[0].CreatedAt)
	}
}

func TestJoinKeywords(t *testing.T) {
	if got := JoinKeywords([]string{"a", "b", "c"}); got != "a,b,c" {
		t.Fatalf("JoinKeywords = %q", got)
	}
	if got := JoinKeywords(nil); got != "" {
		t.Fatalf("JoinKeywords(nil) = %q", got)
	}
}
