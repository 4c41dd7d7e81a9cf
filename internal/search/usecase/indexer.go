package usecase

import (
	"context"
	"strings"
	"time"

	"taskboard/internal/search/domain"
	"taskboard/internal/search/repository"
	taskdomain "taskboard/internal/task/domain"

	"github.com/google/uuid"
)

// DefaultLimit caps the number of ranked tasks one query returns.
const DefaultLimit = 100

// Indexer maintains the search index for tasks and answers queries against it.
type Indexer struct {
	repo repository.SearchRepository
}

func NewIndexer(repo repository.SearchRepository) *Indexer {
	return &Indexer{repo: repo}
}

// IndexTask rebuilds the entries of one task: one for the task itself and
// one per subtask.
func (i *Indexer) IndexTask(ctx context.Context, task *taskdomain.Task) error {
	now := time.Now().UTC()
	entries := make([]*domain.Entry, 0, len(task.Subtasks)+1)
	entries = append(entries, &domain.Entry{
		ID:        uuid.New().String(),
		OwnerID:   task.CreatedBy,
		TaskID:    task.ID,
		Title:     task.Title,
		Content:   task.Description,
		CreatedAt: now,
	})
	for _, st := range task.Subtasks {
		entries = append(entries, &domain.Entry{
			ID:        uuid.New().String(),
			OwnerID:   task.CreatedBy,
			TaskID:    task.ID,
			SubtaskID: st.ID,
			Title:     st.Title,
			Content:   task.Title,
			CreatedAt: now,
		})
	}
	return i.repo.ReplaceForTask(ctx, task.ID, entries)
}

func (i *Indexer) RemoveTask(ctx context.Context, taskID string) error {
	return i.repo.DeleteByTask(ctx, taskID)
}

// RemoveOwner drops every entry of one user.
func (i *Indexer) RemoveOwner(ctx context.Context, ownerID string) error {
	return i.repo.DeleteByOwner(ctx, ownerID)
}

// Search returns the ids of the owner's best matching tasks, best match
// first, at most DefaultLimit of them. A blank query matches nothing.
func (i *Indexer) Search(ctx context.Context, ownerID, query string) ([]string, error) {
	return i.search(ctx, ownerID, query, DefaultLimit)
}

// Matches is Search without the cap, for callers that page the result
// themselves and need an exact total.
func (i *Indexer) Matches(ctx context.Context, ownerID, query string) ([]string, error) {
	return i.search(ctx, ownerID, query, 0)
}

func (i *Indexer) search(ctx context.Context, ownerID, query string, limit int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}, nil
	}
	hits, err := i.repo.Search(ctx, ownerID, query, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(hits))
	for n, h := range hits {
		ids[n] = h.TaskID
	}
	return ids, nil
}
