package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"taskboard/internal/search/repository"
	taskdomain "taskboard/internal/task/domain"
	"taskboard/pkg/database"
)

func newIndexer(t *testing.T) *Indexer {
	t.Helper()
	db, err := database.NewSQLiteConnection(filepath.Join(t.TempDir(), "search.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	repo, err := repository.NewGormSearchRepository(db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewIndexer(repo)
}

func TestIndexer(t *testing.T) {
	ctx := context.Background()
	idx := newIndexer(t)

	tasks := []*taskdomain.Task{
		{ID: "t-report", CreatedBy: "alice", Title: "Quarterly report", Description: "numbers for finance"},
		{ID: "t-trip", CreatedBy: "alice", Title: "Plan trip", Subtasks: []taskdomain.Subtask{{ID: "s1", Title: "book hotel near the reporting venue"}}},
		{ID: "t-groceries", CreatedBy: "alice", Title: "Groceries", Description: "milk, eggs"},
		{ID: "t-bob", CreatedBy: "bob", Title: "Report for bob"},
	}
	for _, task := range tasks {
		if err := idx.IndexTask(ctx, task); err != nil {
			t.Fatalf("IndexTask: %v", err)
		}
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"title hit ranks above subtask hit", "report", []string{"t-report", "t-trip"}},
		{"typo tolerated", "grocerys", []string{"t-groceries"}},
		{"content hit", "finance", []string{"t-report"}},
		{"no hit", "dentist", []string{}},
		{"blank query", "   ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.Search(ctx, "alice", tt.query)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
					break
				}
			}
		})
	}

	t.Run("reindex replaces old entries", func(t *testing.T) {
		tasks[2].Title = "Pharmacy"
		tasks[2].Description = ""
		if err := idx.IndexTask(ctx, tasks[2]); err != nil {
			t.Fatalf("IndexTask: %v", err)
		}
		got, _ := idx.Search(ctx, "alice", "groceries")
		if len(got) != 0 {
			t.Errorf("stale entry still matches: %v", got)
		}
	})

	t.Run("removed task disappears", func(t *testing.T) {
		if err := idx.RemoveTask(ctx, "t-report"); err != nil {
			t.Fatalf("RemoveTask: %v", err)
		}
		got, _ := idx.Search(ctx, "alice", "finance")
		if len(got) != 0 {
			t.Errorf("removed task still found: %v", got)
		}
	})
}

func TestIndexerMatchesIsUncapped(t *testing.T) {
	ctx := context.Background()
	idx := newIndexer(t)
	n := DefaultLimit + 20
	for i := 0; i < n; i++ {
		task := &taskdomain.Task{ID: fmt.Sprintf("t%03d", i), CreatedBy: "alice", Title: fmt.Sprintf("invoice %d", i)}
		if err := idx.IndexTask(ctx, task); err != nil {
			t.Fatalf("IndexTask: %v", err)
		}
	}

	ranked, err := idx.Search(ctx, "alice", "invoice")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(ranked) != DefaultLimit {
		t.Errorf("Search returned %d, want the %d cap", len(ranked), DefaultLimit)
	}
	all, err := idx.Matches(ctx, "alice", "invoice")
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if len(all) != n {
		t.Errorf("Matches returned %d, want %d", len(all), n)
	}
}
