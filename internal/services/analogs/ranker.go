package analogs

import (
	"sort"

	"StockAnalog/internal/domain/models"
)

// Rank collapses candidates that cluster within DedupDays of each other,
// keeps the best-scoring member of each cluster and returns at most
// MaxResults of them ordered by ascending score.
//
// Clustering is transitive: a chain of near-adjacent dates forms one cluster.
func Rank(cfg Config, candidates []models.MatchCandidate) []models.MatchCandidate {
	if len(candidates) == 0 {
		return []models.MatchCandidate{}
	}

	byDate := make([]models.MatchCandidate, len(candidates))
	copy(byDate, candidates)
	sort.SliceStable(byDate, func(i, j int) bool { return byDate[i].Date.Before(byDate[j].Date) })

	reps := make([]models.MatchCandidate, 0, len(byDate))
	best := byDate[0]
	prev := byDate[0].Date
	for _, c := range byDate[1:] {
		if DayDistance(c.Date, prev) > cfg.DedupDays {
			reps = append(reps, best)
			best = c
		} else if c.Score < best.Score {
			best = c
		}
		prev = c.Date
	}
	reps = append(reps, best)

	sort.SliceStable(reps, func(i, j int) bool {
		if reps[i].Score != reps[j].Score {
			return reps[i].Score < reps[j].Score
		}
		return reps[i].Date.After(reps[j].Date)
	})
	if len(reps) > cfg.MaxResults {
		reps = reps[:cfg.MaxResults]
	}
	return reps
}
