package analogs

import (
	"testing"
	"time"

	"StockAnalog/internal/domain/models"
)

var base = time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC)

func cand(daysAgo int, score float64) models.MatchCandidate {
	return models.MatchCandidate{Date: base.AddDate(0, 0, -daysAgo), ChangePct: 5, Score: score}
}

func TestRankEmpty(t *testing.T) {
	got := Rank(DefaultConfig(), nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestRankOneDayApartCollapses(t *testing.T) {
	got := Rank(DefaultConfig(), []models.MatchCandidate{cand(60, 0.3), cand(61, 0.1)})
	if len(got) != 1 {
		t.Fatalf("expected 1 representative, got %d", len(got))
	}
	if got[0].Score != 0.1 {
		t.Fatalf("expected best score kept, got %v", got[0].Score)
	}
}

func TestRankTenDaysApartKept(t *testing.T) {
	got := Rank(DefaultConfig(), []models.MatchCandidate{cand(60, 0.3), cand(70, 0.1)})
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
}

func TestRankTransitiveChain(t *testing.T) {
	// 60, 62, 64, 66 are each 2 days from the previous one: a single cluster.
	in := []models.MatchCandidate{cand(66, 0.9), cand(60, 0.5), cand(64, 0.2), cand(62, 0.7), cand(100, 0.4)}
	got := Rank(DefaultConfig(), in)
	if len(got) != 2 {
		t.Fatalf("expected 2 clusters, got %d: %+v", len(got), got)
	}
	if got[0].Score != 0.2 || got[1].Score != 0.4 {
		t.Fatalf("unexpected representatives: %+v", got)
	}
}

func TestRankBoundAndOrder(t *testing.T) {
	var in []models.MatchCandidate
	for i := 0; i < 10; i++ {
		in = append(in, cand(40+i*5, float64(10-i)/10))
	}
	got := Rank(DefaultConfig(), in)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score > got[i].Score {
			t.Fatalf("results not sorted: %+v", got)
		}
	}
	if got[0].Score != 0.1 {
		t.Fatalf("best match must come first, got %v", got[0].Score)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	in := []models.MatchCandidate{cand(90, 0.2), cand(30, 0.1)}
	_ = Rank(DefaultConfig(), in)
	if in[0].Score != 0.2 || in[1].Score != 0.1 {
		t.Fatalf("input reordered: %+v", in)
	}
}

func TestDayDistance(t *testing.T) {
	a := base
	if d := DayDistance(a, a.Add(47*time.Hour)); d != 1 {
		t.Fatalf("47h should be 1 whole day, got %d", d)
	}
	if d := DayDistance(a.AddDate(0, 0, 3), a); d != 3 {
		t.Fatalf("expected 3, got %d", d)
	}
	if DayDistance(a, a.AddDate(0, 0, -2)) != DayDistance(a.AddDate(0, 0, -2), a) {
		t.Fatalf("distance must ignore order")
	}
}
