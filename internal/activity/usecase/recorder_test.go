package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"taskboard/internal/activity/domain"
	"taskboard/internal/activity/repository"
	"taskboard/pkg/database"
)

type recordingPublisher struct {
	published []*domain.Activity
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, a *domain.Activity) error {
	p.published = append(p.published, a)
	return p.err
}

type failingRepo struct{}

func (failingRepo) Append(context.Context, *domain.Activity) error {
	return errors.New("disk full")
}

func (failingRepo) ListByTask(context.Context, string, string) ([]*domain.Activity, error) {
	return nil, nil
}

func newRecorder(t *testing.T, pub Publisher) *Recorder {
	t.Helper()
	db, err := database.NewSQLiteConnection(filepath.Join(t.TempDir(), "activity.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	repo, err := repository.NewGormActivityRepository(db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	r := NewRecorder(repo, pub)
	r.async = false
	return r
}

func TestRecorder_RecordAndList(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	r := newRecorder(t, pub)

	base := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	r.Record(ctx, "t1", "alice", domain.ActionTaskCreated, "", "", "")
	r.Record(ctx, "t1", "alice", domain.ActionStatusChanged, "status", "pending", "completed")
	r.Record(ctx, "t2", "alice", domain.ActionTaskCreated, "", "", "")

	got, err := r.ListByTask(ctx, "alice", "t1")
	if err != nil {
		t.Fatalf("ListByTask: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Action != domain.ActionStatusChanged || got[0].OldValue != "pending" || got[0].NewValue != "completed" {
		t.Errorf("newest record first, got %+v", got[0])
	}
	if len(pub.published) != 3 {
		t.Errorf("expected every record published, got %d", len(pub.published))
	}

	other, err := r.ListByTask(ctx, "bob", "t1")
	if err != nil {
		t.Fatalf("ListByTask: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("records leaked to another user: %d", len(other))
	}
}

func TestRecorder_FailuresAreSwallowed(t *testing.T) {
	t.Run("append failure skips publish", func(t *testing.T) {
		pub := &recordingPublisher{}
		r := NewRecorder(failingRepo{}, pub)
		r.async = false
		r.Record(context.Background(), "t1", "alice", domain.ActionTaskDeleted, "", "", "")
		if len(pub.published) != 0 {
			t.Errorf("nothing should be published when append fails")
		}
	})

	t.Run("publish failure is only logged", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("topic gone")}
		r := newRecorder(t, pub)
		r.Record(context.Background(), "t1", "alice", domain.ActionTaskCreated, "", "", "")
		got, _ := r.ListByTask(context.Background(), "alice", "t1")
		if len(got) != 1 {
			t.Errorf("record should persist even if publish fails")
		}
	})
}
