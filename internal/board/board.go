// Package board keeps the client-side view of a user's tasks split into the
// three status columns, with optimistic card moves.
package board

import (
	"context"
	"fmt"
	"sync"

	"taskboard/internal/task/domain"
)

// Mover persists a status change; *client.Client satisfies it.
type Mover interface {
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) (*domain.Task, error)
}

// Move records where a card came from so it can be put back.
type Move struct {
	TaskID    string
	From      domain.TaskStatus
	FromIndex int
	To        domain.TaskStatus
}

type Board struct {
	mu      sync.RWMutex
	columns map[domain.TaskStatus][]*domain.Task
}

// New partitions tasks by status. Tasks with an unknown status land in Pending.
func New(tasks []*domain.Task) *Board {
	b := &Board{}
	b.Reset(tasks)
	return b
}

// Reset replaces the whole board, keeping the given order within each column.
func (b *Board) Reset(tasks []*domain.Task) {
	columns := make(map[domain.TaskStatus][]*domain.Task, len(domain.Statuses))
	for _, s := range domain.Statuses {
		columns[s] = []*domain.Task{}
	}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		s := columnFor(t.Status)
		columns[s] = append(columns[s], t)
	}
	b.mu.Lock()
	b.columns = columns
	b.mu.Unlock()
}

func columnFor(s domain.TaskStatus) domain.TaskStatus {
	if parsed, ok := domain.ParseStatus(string(s)); ok {
		return parsed
	}
	return domain.TaskStatusPending
}

// Column returns a copy of one column's cards.
func (b *Board) Column(s domain.TaskStatus) []*domain.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	col := b.columns[s]
	out := make([]*domain.Task, len(col))
	copy(out, col)
	return out
}

// Find locates a card; ok is false when it is not on the board.
func (b *Board) Find(id string) (task *domain.Task, status domain.TaskStatus, index int, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.find(id)
}

func (b *Board) find(id string) (*domain.Task, domain.TaskStatus, int, bool) {
	for _, s := range domain.Statuses {
		for i, t := range b.columns[s] {
			if t.ID == id {
				return t, s, i, true
			}
		}
	}
	return nil, "", -1, false
}

// Apply moves a card to the top of column to without talking to the server.
// Moving a card onto its own column is a no-op and returns a nil Move.
func (b *Board) Apply(id string, to domain.TaskStatus) (*Move, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	task, from, index, ok := b.find(id)
	if !ok {
		return nil, fmt.Errorf("task %s is not on the board", id)
	}
	if from == to {
		return nil, nil
	}

	b.columns[from] = removeAt(b.columns[from], index)
	moved := *task
	moved.Status = to
	b.columns[to] = append([]*domain.Task{&moved}, b.columns[to]...)
	return &Move{TaskID: id, From: from, FromIndex: index, To: to}, nil
}

// Rollback undoes an Apply, putting the card back at its old position.
func (b *Board) Rollback(m *Move) {
	if m == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	task, current, index, ok := b.find(m.TaskID)
	if !ok {
		return
	}
	b.columns[current] = removeAt(b.columns[current], index)
	restored := *task
	restored.Status = m.From
	b.columns[m.From] = insertAt(b.columns[m.From], m.FromIndex, &restored)
}

// Commit persists a move made by Apply. When the server refuses, the card
// goes back where it was and the error is returned; otherwise the server's
// copy replaces the card. A nil move is a no-op.
func (b *Board) Commit(ctx context.Context, mover Mover, m *Move) (*domain.Task, error) {
	if m == nil {
		return nil, nil
	}
	saved, err := mover.UpdateStatus(ctx, m.TaskID, m.To)
	if err != nil {
		b.Rollback(m)
		return nil, err
	}
	b.Upsert(saved)
	return saved, nil
}

// Upsert puts the server's copy of a task in place, moving it if its status
// changed. New tasks go to the top of their column.
func (b *Board) Upsert(task *domain.Task) {
	if task == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	to := columnFor(task.Status)
	if _, from, index, ok := b.find(task.ID); ok {
		if from == to {
			b.columns[from][index] = task
			return
		}
		b.columns[from] = removeAt(b.columns[from], index)
	}
	b.columns[to] = append([]*domain.Task{task}, b.columns[to]...)
}

// Remove drops a card; it reports whether the card was on the board.
func (b *Board) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, from, index, ok := b.find(id)
	if !ok {
		return false
	}
	b.columns[from] = removeAt(b.columns[from], index)
	return true
}

// Counts aggregates the board for the chart view.
func (b *Board) Counts() domain.StatusCounts {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var c domain.StatusCounts
	for _, s := range domain.Statuses {
		c.Add(s, int64(len(b.columns[s])))
	}
	return c
}

func removeAt(col []*domain.Task, i int) []*domain.Task {
	out := make([]*domain.Task, 0, len(col)-1)
	out = append(out, col[:i]...)
	return append(out, col[i+1:]...)
}

func insertAt(col []*domain.Task, i int, t *domain.Task) []*domain.Task {
	if i < 0 || i > len(col) {
		i = len(col)
	}
	out := make([]*domain.Task, 0, len(col)+1)
	out = append(out, col[:i]...)
	out = append(out, t)
	return append(out, col[i:]...)
}
