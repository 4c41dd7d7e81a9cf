package repository

import (
	"context"
	"sort"

	"taskboard/internal/search/domain"
)

// SearchRepository stores the search index.
type SearchRepository interface {
	// ReplaceForTask swaps every entry of a task for the given ones
	ReplaceForTask(ctx context.Context, taskID string, entries []*domain.Entry) error
	DeleteByTask(ctx context.Context, taskID string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
	// Search ranks the owner's tasks against query, best first, at most limit hits
	Search(ctx context.Context, ownerID, query string, limit int) ([]domain.Hit, error)
}

// rank keeps the best entry score per task and orders tasks by it.
func rank(scores map[string]float64, limit int) []domain.Hit {
	hits := make([]domain.Hit, 0, len(scores))
	for taskID, score := range scores {
		hits = append(hits, domain.Hit{TaskID: taskID, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].TaskID < hits[j].TaskID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
