package board

import (
	"context"
	"errors"
	"testing"

	"taskboard/internal/task/domain"
)

type fakeMover struct {
	err   error
	calls int
}

func (f *fakeMover) UpdateStatus(_ context.Context, id string, status domain.TaskStatus) (*domain.Task, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Task{ID: id, Title: "saved " + id, Status: status}, nil
}

func sample() []*domain.Task {
	return []*domain.Task{
		{ID: "a", Status: domain.TaskStatusPending},
		{ID: "b", Status: domain.TaskStatusPending},
		{ID: "c", Status: domain.TaskStatusInProgress},
		{ID: "d", Status: domain.TaskStatusCompleted},
		{ID: "e", Status: "in_progress"},
	}
}

func ids(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewPartitions(t *testing.T) {
	b := New(sample())
	tests := []struct {
		status domain.TaskStatus
		want   []string
	}{
		{domain.TaskStatusPending, []string{"a", "b"}},
		{domain.TaskStatusInProgress, []string{"c", "e"}},
		{domain.TaskStatusCompleted, []string{"d"}},
	}
	for _, tt := range tests {
		if got := ids(b.Column(tt.status)); !equal(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.status, got, tt.want)
		}
	}
	c := b.Counts()
	if c.Pending != 2 || c.InProgress != 2 || c.Completed != 1 || c.Total != 5 {
		t.Errorf("counts = %+v", c)
	}
}

// move is what the board model does: Apply right away, Commit later.
func move(b *Board, mover Mover, id string, to domain.TaskStatus) (*domain.Task, error) {
	m, err := b.Apply(id, to)
	if err != nil {
		return nil, err
	}
	return b.Commit(context.Background(), mover, m)
}

func TestCommit(t *testing.T) {
	t.Run("success keeps the server copy", func(t *testing.T) {
		b := New(sample())
		m := &fakeMover{}
		got, err := move(b, m, "b", domain.TaskStatusCompleted)
		if err != nil {
			t.Fatalf("Commit: %v", err)
		}
		if got.Title != "saved b" {
			t.Errorf("returned %+v", got)
		}
		if ids := ids(b.Column(domain.TaskStatusCompleted)); !equal(ids, []string{"b", "d"}) {
			t.Errorf("completed = %v", ids)
		}
		if task, _, _, _ := b.Find("b"); task.Title != "saved b" {
			t.Errorf("board card not replaced: %+v", task)
		}
	})

	t.Run("failure rolls back to the old position", func(t *testing.T) {
		b := New(sample())
		m := &fakeMover{err: errors.New("server down")}
		if _, err := move(b, m, "a", domain.TaskStatusInProgress); err == nil {
			t.Fatal("expected error")
		}
		if got := ids(b.Column(domain.TaskStatusPending)); !equal(got, []string{"a", "b"}) {
			t.Errorf("pending = %v", got)
		}
		if got := ids(b.Column(domain.TaskStatusInProgress)); !equal(got, []string{"c", "e"}) {
			t.Errorf("in progress = %v", got)
		}
		task, status, _, _ := b.Find("a")
		if status != domain.TaskStatusPending || task.Status != domain.TaskStatusPending {
			t.Errorf("status after rollback = %s/%s", status, task.Status)
		}
	})

	t.Run("same column does not call the server", func(t *testing.T) {
		b := New(sample())
		m := &fakeMover{}
		if _, err := move(b, m, "c", domain.TaskStatusInProgress); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		if m.calls != 0 {
			t.Errorf("calls = %d", m.calls)
		}
	})

	t.Run("unknown card", func(t *testing.T) {
		b := New(sample())
		if _, err := move(b, &fakeMover{}, "zzz", domain.TaskStatusCompleted); err == nil {
			t.Error("expected error")
		}
	})
}

func TestUpsertAndRemove(t *testing.T) {
	b := New(sample())
	b.Upsert(&domain.Task{ID: "new", Status: domain.TaskStatusCompleted})
	b.Upsert(&domain.Task{ID: "a", Title: "renamed", Status: domain.TaskStatusPending})
	b.Upsert(&domain.Task{ID: "c", Status: domain.TaskStatusCompleted})

	if got := ids(b.Column(domain.TaskStatusCompleted)); !equal(got, []string{"c", "new", "d"}) {
		t.Errorf("completed = %v", got)
	}
	if task, _, index, _ := b.Find("a"); task.Title != "renamed" || index != 0 {
		t.Errorf("a = %+v at %d", task, index)
	}
	if !b.Remove("b") || b.Remove("b") {
		t.Error("Remove should succeed once")
	}
	if c := b.Counts(); c.Total != 5 {
		t.Errorf("total = %d", c.Total)
	}
}
