package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	activitydomain "taskboard/internal/activity/domain"
	searchrepo "taskboard/internal/search/repository"
	searchusecase "taskboard/internal/search/usecase"
	"taskboard/internal/task/domain"
	"taskboard/internal/task/dto"
	"taskboard/internal/task/repository"
	"taskboard/pkg/database"
	"taskboard/pkg/validation"
)

type fakeRecorder struct {
	mu      sync.Mutex
	records []*activitydomain.Activity
}

func (f *fakeRecorder) Record(_ context.Context, taskID, userID string, action activitydomain.Action, field, oldValue, newValue string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, &activitydomain.Activity{
		TaskID: taskID, UserID: userID, Action: action, Field: field, OldValue: oldValue, NewValue: newValue,
	})
}

func (f *fakeRecorder) ListByTask(_ context.Context, userID, taskID string) ([]*activitydomain.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*activitydomain.Activity
	for i := len(f.records) - 1; i >= 0; i-- {
		if r := f.records[i]; r.TaskID == taskID && r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecorder) actions() []activitydomain.Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]activitydomain.Action, len(f.records))
	for i, r := range f.records {
		out[i] = r.Action
	}
	return out
}

var fixedNow = time.Date(2030, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestUsecase(t *testing.T) (*taskUsecase, *fakeRecorder) {
	t.Helper()
	db, err := database.NewSQLiteConnection(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	tasks, err := repository.NewGormTaskRepository(db)
	if err != nil {
		t.Fatalf("migrate tasks: %v", err)
	}
	index, err := searchrepo.NewGormSearchRepository(db)
	if err != nil {
		t.Fatalf("migrate search: %v", err)
	}
	rec := &fakeRecorder{}
	u := NewTaskUsecase(tasks, searchusecase.NewIndexer(index), rec).(*taskUsecase)
	u.now = func() time.Time { return fixedNow }
	return u, rec
}

func strPtr(s string) *string { return &s }

func isValidation(err error) bool {
	var ve *validation.Error
	return errors.As(err, &ve)
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()
	u, rec := newTestUsecase(t)

	t.Run("defaults and round trip", func(t *testing.T) {
		task, err := u.CreateTask(ctx, "alice", &dto.CreateTaskRequest{
			Title:    "  Write report ",
			DueDate:  strPtr("2030-03-12"),
			Subtasks: []dto.SubtaskInput{{Title: "outline"}, {Title: "draft", Status: "completed"}},
		})
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		if task.Title != "Write report" || task.Status != domain.TaskStatusPending || task.Priority != domain.PriorityMedium {
			t.Errorf("unexpected defaults: %+v", task)
		}
		if len(task.Subtasks) != 2 || task.Subtasks[0].Status != domain.SubtaskPending || task.Subtasks[1].Status != domain.SubtaskCompleted {
			t.Errorf("unexpected subtasks: %+v", task.Subtasks)
		}

		got, err := u.GetTask(ctx, "alice", task.ID)
		if err != nil {
			t.Fatalf("GetTask: %v", err)
		}
		want := time.Date(2030, 3, 12, 0, 0, 0, 0, time.UTC)
		if got.DueDate == nil || !got.DueDate.Equal(want) {
			t.Errorf("due date = %v, want %v", got.DueDate, want)
		}
		if _, err := u.GetTask(ctx, "bob", task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Errorf("other user should get ErrTaskNotFound, got %v", err)
		}
	})

	t.Run("today is allowed", func(t *testing.T) {
		if _, err := u.CreateTask(ctx, "alice", &dto.CreateTaskRequest{Title: "Today", DueDate: strPtr("2030-03-10")}); err != nil {
			t.Errorf("due today should be accepted: %v", err)
		}
	})

	invalid := []struct {
		name string
		req  dto.CreateTaskRequest
	}{
		{"blank title", dto.CreateTaskRequest{Title: "   "}},
		{"unknown status", dto.CreateTaskRequest{Title: "x", Status: "done"}},
		{"unknown priority", dto.CreateTaskRequest{Title: "x", Priority: "urgent"}},
		{"past due date", dto.CreateTaskRequest{Title: "x", DueDate: strPtr("2030-03-09")}},
		{"garbage due date", dto.CreateTaskRequest{Title: "x", DueDate: strPtr("next week")}},
		{"blank subtask", dto.CreateTaskRequest{Title: "x", Subtasks: []dto.SubtaskInput{{Title: ""}}}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := u.CreateTask(ctx, "alice", &req); !isValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	if got := rec.actions(); len(got) != 2 || got[0] != activitydomain.ActionTaskCreated {
		t.Errorf("expected two task_created records, got %v", got)
	}
}

func TestUpdateStatusOnlyTouchesStatus(t *testing.T) {
	ctx := context.Background()
	u, rec := newTestUsecase(t)

	task, err := u.CreateTask(ctx, "alice", &dto.CreateTaskRequest{
		Title: "Move me", Priority: "high", Description: "keep", Subtasks: []dto.SubtaskInput{{Title: "a"}},
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	moved, err := u.UpdateStatus(ctx, "alice", task.ID, "in_progress")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if moved.Status != domain.TaskStatusInProgress {
		t.Errorf("status = %q", moved.Status)
	}
	if moved.Title != task.Title || moved.Priority != task.Priority || moved.Description != task.Description || len(moved.Subtasks) != 1 {
		t.Errorf("move changed other fields: %+v", moved)
	}

	if _, err := u.UpdateStatus(ctx, "bob", task.ID, "completed"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("non-owner move: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := u.UpdateStatus(ctx, "alice", task.ID, "archived"); !isValidation(err) {
		t.Errorf("bad status: expected validation error, got %v", err)
	}

	got, _ := u.GetTask(ctx, "alice", task.ID)
	if got.Status != domain.TaskStatusInProgress {
		t.Errorf("failed moves must leave the task unchanged, status = %q", got.Status)
	}

	last := rec.records[len(rec.records)-1]
	if last.Action != activitydomain.ActionStatusChanged || last.OldValue != "pending" || last.NewValue != "inprogress" {
		t.Errorf("unexpected status activity %+v", last)
	}
}

func TestPatchTask(t *testing.T) {
	ctx := context.Background()
	u, rec := newTestUsecase(t)

	task, err := u.CreateTask(ctx, "alice", &dto.CreateTaskRequest{
		Title:    "Plan",
		DueDate:  strPtr("2030-04-01"),
		Subtasks: []dto.SubtaskInput{{Title: "one"}, {Title: "two"}},
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	keep := task.Subtasks[0]
	rec.records = nil

	patched, err := u.PatchTask(ctx, "alice", task.ID, &dto.PatchTaskRequest{
		Title:   strPtr("Plan v2"),
		DueDate: dto.OptionalString{Set: true},
		Subtasks: &[]dto.SubtaskInput{
			{ID: keep.ID, Title: "one", Status: "completed"},
			{Title: "three"},
		},
	})
	if err != nil {
		t.Fatalf("PatchTask: %v", err)
	}
	if patched.Title != "Plan v2" || patched.DueDate != nil || patched.Priority != domain.PriorityMedium {
		t.Errorf("unexpected patch result %+v", patched)
	}
	if len(patched.Subtasks) != 2 || patched.Subtasks[0].ID != keep.ID || patched.Subtasks[0].Status != domain.SubtaskCompleted {
		t.Errorf("subtask identity not kept: %+v", patched.Subtasks)
	}

	want := map[activitydomain.Action]int{
		activitydomain.ActionTaskUpdated:    2, // title, dueDate
		activitydomain.ActionSubtaskUpdated: 1,
		activitydomain.ActionSubtaskAdded:   1,
		activitydomain.ActionSubtaskRemoved: 1,
	}
	got := map[activitydomain.Action]int{}
	for _, a := range rec.actions() {
		got[a]++
	}
	for action, n := range want {
		if got[action] != n {
			t.Errorf("%s recorded %d times, want %d (all: %v)", action, got[action], n, rec.actions())
		}
	}

	t.Run("past due date allowed on edit", func(t *testing.T) {
		if _, err := u.PatchTask(ctx, "alice", task.ID, &dto.PatchTaskRequest{DueDate: dto.OptionalString{Set: true, Value: strPtr("2020-01-01")}}); err != nil {
			t.Errorf("edit with an old due date should pass: %v", err)
		}
	})

	t.Run("other owner", func(t *testing.T) {
		if _, err := u.PatchTask(ctx, "bob", task.ID, &dto.PatchTaskRequest{Title: strPtr("hijack")}); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Errorf("expected ErrTaskNotFound, got %v", err)
		}
		got, _ := u.GetTask(ctx, "alice", task.ID)
		if got.Title != "Plan v2" {
			t.Errorf("task changed by non-owner: %q", got.Title)
		}
	})
}

func TestDueDateChangeRearmsReminder(t *testing.T) {
	ctx := context.Background()
	u, _ := newTestUsecase(t)

	task, err := u.CreateTask(ctx, "alice", &dto.CreateTaskRequest{Title: "Dentist", DueDate: strPtr("2030-03-11")})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := u.taskRepo.MarkReminderSent(ctx, task.ID); err != nil {
		t.Fatalf("MarkReminderSent: %v", err)
	}

	if _, err := u.PatchTask(ctx, "alice", task.ID, &dto.PatchTaskRequest{Description: strPtr("bring card")}); err != nil {
		t.Fatalf("PatchTask: %v", err)
	}
	got, _ := u.GetTask(ctx, "alice", task.ID)
	if !got.ReminderSent {
		t.Errorf("unrelated edit should not re-arm the reminder")
	}

	if _, err := u.PatchTask(ctx, "alice", task.ID, &dto.PatchTaskRequest{DueDate: dto.OptionalString{Set: true, Value: strPtr("2030-03-20")}}); err != nil {
		t.Fatalf("PatchTask: %v", err)
	}
	got, _ = u.GetTask(ctx, "alice", task.ID)
	if got.ReminderSent {
		t.Errorf("new due date should re-arm the reminder")
	}
}

func TestSubtasks(t *testing.T) {
	ctx := context.Background()
	u, _ := newTestUsecase(t)

	task, err := u.CreateTask(ctx, "alice", &dto.CreateTaskRequest{Title: "Groceries"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	withSub, err := u.AddSubtask(ctx, "alice", task.ID, &dto.CreateSubtaskRequest{Title: "milk"})
	if err != nil {
		t.Fatalf("AddSubtask: %v", err)
	}
	if len(withSub.Subtasks) != 1 || withSub.Subtasks[0].Status != domain.SubtaskPending {
		t.Fatalf("unexpected subtasks %+v", withSub.Subtasks)
	}
	subID := withSub.Subtasks[0].ID

	updated, err := u.UpdateSubtask(ctx, "alice", task.ID, subID, &dto.PatchSubtaskRequest{Status: strPtr("completed")})
	if err != nil {
		t.Fatalf("UpdateSubtask: %v", err)
	}
	if updated.Subtasks[0].Status != domain.SubtaskCompleted || updated.Subtasks[0].Title != "milk" {
		t.Errorf("unexpected subtask %+v", updated.Subtasks[0])
	}

	if _, err := u.UpdateSubtask(ctx, "alice", task.ID, "nope", &dto.PatchSubtaskRequest{Title: strPtr("x")}); !errors.Is(err, domain.ErrSubtaskNotFound) {
		t.Errorf("expected ErrSubtaskNotFound, got %v", err)
	}
	if _, err := u.AddSubtask(ctx, "bob", task.ID, &dto.CreateSubtaskRequest{Title: "x"}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}

	removed, err := u.RemoveSubtask(ctx, "alice", task.ID, subID)
	if err != nil {
		t.Fatalf("RemoveSubtask: %v", err)
	}
	if len(removed.Subtasks) != 0 {
		t.Errorf("subtask not removed: %+v", removed.Subtasks)
	}
	if _, err := u.RemoveSubtask(ctx, "alice", task.ID, subID); !errors.Is(err, domain.ErrSubtaskNotFound) {
		t.Errorf("second removal: expected ErrSubtaskNotFound, got %v", err)
	}
}

func TestListSearchAndDelete(t *testing.T) {
	ctx := context.Background()
	u, _ := newTestUsecase(t)

	mk := func(title, due string) *domain.Task {
		req := &dto.CreateTaskRequest{Title: title}
		if due != "" {
			req.DueDate = strPtr(due)
		}
		task, err := u.CreateTask(ctx, "alice", req)
		if err != nil {
			t.Fatalf("CreateTask(%s): %v", title, err)
		}
		return task
	}
	report := mk("Quarterly report", "2030-03-15")
	mk("Team offsite", "2030-03-20")
	mk("Report expenses", "")

	t.Run("date range with bare end date covers the day", func(t *testing.T) {
		tasks, total, err := u.ListTasks(ctx, "alice", dto.ListQuery{StartDate: "2030-03-15", EndDate: "2030-03-15"})
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if total != 1 || tasks[0].ID != report.ID {
			t.Errorf("expected only the report, got %d tasks", total)
		}
	})

	t.Run("search filter", func(t *testing.T) {
		tasks, total, err := u.ListTasks(ctx, "alice", dto.ListQuery{Search: "report"})
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if total != 2 || len(tasks) != 2 {
			t.Errorf("expected 2 matches, got %d", total)
		}
	})

	t.Run("bad dates", func(t *testing.T) {
		if _, _, err := u.ListTasks(ctx, "alice", dto.ListQuery{StartDate: "yesterday"}); !isValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
		if _, _, err := u.ListTasks(ctx, "alice", dto.ListQuery{StartDate: "2030-03-20", EndDate: "2030-03-01"}); !isValidation(err) {
			t.Errorf("expected validation error for inverted range, got %v", err)
		}
	})

	t.Run("ranked search", func(t *testing.T) {
		if _, err := u.Search(ctx, "alice", " "); !isValidation(err) {
			t.Errorf("blank query: expected validation error, got %v", err)
		}
		found, err := u.Search(ctx, "alice", "offsit")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(found) != 1 || found[0].Title != "Team offsite" {
			t.Errorf("unexpected search result %+v", found)
		}
		none, _ := u.Search(ctx, "bob", "report")
		if len(none) != 0 {
			t.Errorf("search leaked other owner's tasks")
		}
	})

	t.Run("delete removes from list and search", func(t *testing.T) {
		if err := u.DeleteTask(ctx, "bob", report.ID); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Errorf("non-owner delete: expected ErrTaskNotFound, got %v", err)
		}
		if err := u.DeleteTask(ctx, "alice", report.ID); err != nil {
			t.Fatalf("DeleteTask: %v", err)
		}
		_, total, _ := u.ListTasks(ctx, "alice", dto.ListQuery{})
		if total != 2 {
			t.Errorf("expected 2 tasks after delete, got %d", total)
		}
		found, _ := u.Search(ctx, "alice", "quarterly")
		if len(found) != 0 {
			t.Errorf("deleted task still searchable")
		}
	})

	t.Run("stats", func(t *testing.T) {
		counts, err := u.Stats(ctx, "alice")
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if counts.Total != 2 || counts.Pending != 2 {
			t.Errorf("unexpected counts %+v", counts)
		}
	})
}

func TestListSearchTotalIsExact(t *testing.T) {
	ctx := context.Background()
	u, _ := newTestUsecase(t)

	n := searchusecase.DefaultLimit + 5
	for i := 0; i < n; i++ {
		if _, err := u.CreateTask(ctx, "alice", &dto.CreateTaskRequest{Title: fmt.Sprintf("invoice %d", i)}); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}

	tasks, total, err := u.ListTasks(ctx, "alice", dto.ListQuery{Search: "invoice", Limit: 10})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if total != int64(n) {
		t.Errorf("total = %d, want %d", total, n)
	}
	if len(tasks) != 10 {
		t.Errorf("page has %d tasks, want 10", len(tasks))
	}
}

func TestRemoveOwner(t *testing.T) {
	ctx := context.Background()
	u, _ := newTestUsecase(t)

	for _, owner := range []string{"alice", "alice", "bob"} {
		if _, err := u.CreateTask(ctx, owner, &dto.CreateTaskRequest{Title: "budget review"}); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}
	if err := u.RemoveOwner(ctx, "alice"); err != nil {
		t.Fatalf("RemoveOwner: %v", err)
	}

	if _, total, _ := u.ListTasks(ctx, "alice", dto.ListQuery{}); total != 0 {
		t.Errorf("alice still has %d tasks", total)
	}
	if ids, _ := u.indexer.Matches(ctx, "alice", "budget"); len(ids) != 0 {
		t.Errorf("alice still has index entries: %v", ids)
	}
	if _, total, _ := u.ListTasks(ctx, "bob", dto.ListQuery{Search: "budget"}); total != 1 {
		t.Errorf("bob's task should survive, total = %d", total)
	}
}

func TestListActivity(t *testing.T) {
	ctx := context.Background()
	u, _ := newTestUsecase(t)

	task, err := u.CreateTask(ctx, "alice", &dto.CreateTaskRequest{Title: "Audit me"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := u.UpdateStatus(ctx, "alice", task.ID, "completed"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	activities, err := u.ListActivity(ctx, "alice", task.ID)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(activities) != 2 || activities[0].Action != activitydomain.ActionStatusChanged {
		t.Errorf("expected newest first, got %+v", activities)
	}
	if _, err := u.ListActivity(ctx, "bob", task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("non-owner: expected ErrTaskNotFound, got %v", err)
	}
}
