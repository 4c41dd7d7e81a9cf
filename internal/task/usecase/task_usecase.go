package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	activitydomain "taskboard/internal/activity/domain"
	"taskboard/internal/task/domain"
	"taskboard/internal/task/dto"
	"taskboard/internal/task/repository"
	"taskboard/pkg/logging"
	"taskboard/pkg/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	dateLayout      = "2006-01-02"
)

// taskUsecase implements TaskUsecase interface
type taskUsecase struct {
	taskRepo repository.TaskRepository
	indexer  Indexer
	activity ActivityRecorder
	log      *logrus.Entry
	now      func() time.Time
}

// NewTaskUsecase creates a new instance of taskUsecase
func NewTaskUsecase(taskRepo repository.TaskRepository, indexer Indexer, activity ActivityRecorder) TaskUsecase {
	return &taskUsecase{
		taskRepo: taskRepo,
		indexer:  indexer,
		activity: activity,
		log:      logging.For("tasks"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *taskUsecase) ListTasks(ctx context.Context, userID string, q dto.ListQuery) ([]*domain.Task, int64, error) {
	filter := domain.ListFilter{Limit: q.Limit, Offset: q.Offset}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if q.Status != "" {
		status, ok := domain.ParseStatus(q.Status)
		if !ok {
			return nil, 0, validation.Errorf("status", "must be one of pending, inprogress, completed")
		}
		filter.Status = &status
	}

	if q.StartDate != "" {
		from, _, err := parseDate(q.StartDate)
		if err != nil {
			return nil, 0, validation.Errorf("startDate", "expected YYYY-MM-DD or an RFC3339 timestamp")
		}
		filter.DueFrom = &from
	}
	if q.EndDate != "" {
		until, dateOnly, err := parseDate(q.EndDate)
		if err != nil {
			return nil, 0, validation.Errorf("endDate", "expected YYYY-MM-DD or an RFC3339 timestamp")
		}
		if dateOnly {
			// a bare date covers the whole day
			until = until.Add(24*time.Hour - time.Nanosecond)
		}
		filter.DueUntil = &until
	}
	if filter.DueFrom != nil && filter.DueUntil != nil && filter.DueUntil.Before(*filter.DueFrom) {
		return nil, 0, validation.Errorf("endDate", "must not be before startDate")
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		// every match, so total and paging stay exact
		ids, err := u.indexer.Matches(ctx, userID, search)
		if err != nil {
			return nil, 0, err
		}
		filter.IDs = ids
	}

	return u.taskRepo.List(ctx, userID, filter)
}

func (u *taskUsecase) GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	return u.taskRepo.FindOwned(ctx, userID, taskID)
}

func (u *taskUsecase) CreateTask(ctx context.Context, userID string, req *dto.CreateTaskRequest) (*domain.Task, error) {
	now := u.now()
	task := &domain.Task{
		ID:        uuid.New().String(),
		CreatedBy: userID,
		CreatedAt: now,
	}
	if err := u.applyFull(task, req, now); err != nil {
		return nil, err
	}
	if task.DueDate != nil && task.DueDate.Before(startOfDay(now)) {
		return nil, validation.Errorf("dueDate", "must be today or later")
	}

	if err := u.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	u.reindex(ctx, task)
	u.activity.Record(ctx, task.ID, userID, activitydomain.ActionTaskCreated, "", "", task.Title)
	return task, nil
}

func (u *taskUsecase) ReplaceTask(ctx context.Context, userID, taskID string, req *dto.CreateTaskRequest) (*domain.Task, error) {
	before, err := u.taskRepo.FindOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	after := clone(before)
	if err := u.applyFull(after, req, u.now()); err != nil {
		return nil, err
	}
	return u.save(ctx, userID, before, after)
}

func (u *taskUsecase) PatchTask(ctx context.Context, userID, taskID string, req *dto.PatchTaskRequest) (*domain.Task, error) {
	before, err := u.taskRepo.FindOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	after := clone(before)
	if req.Title != nil {
		title, err := requireTitle("title", *req.Title)
		if err != nil {
			return nil, err
		}
		after.Title = title
	}
	if req.Description != nil {
		after.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		status, ok := domain.ParseStatus(*req.Status)
		if !ok {
			return nil, validation.Errorf("status", "must be one of pending, inprogress, completed")
		}
		after.Status = status
	}
	if req.Priority != nil {
		priority, ok := domain.ParsePriority(*req.Priority)
		if !ok {
			return nil, validation.Errorf("priority", "must be one of low, medium, high")
		}
		after.Priority = priority
	}
	if req.DueDate.Set {
		due, err := parseDueDate(req.DueDate.Value)
		if err != nil {
			return nil, err
		}
		after.DueDate = due
	}
	if req.Subtasks != nil {
		subtasks, err := mergeSubtasks(before.Subtasks, *req.Subtasks, u.now())
		if err != nil {
			return nil, err
		}
		after.Subtasks = subtasks
	}
	return u.save(ctx, userID, before, after)
}

func (u *taskUsecase) UpdateStatus(ctx context.Context, userID, taskID, status string) (*domain.Task, error) {
	next, ok := domain.ParseStatus(status)
	if !ok {
		return nil, validation.Errorf("status", "must be one of pending, inprogress, completed")
	}
	before, err := u.taskRepo.FindOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task, err := u.taskRepo.UpdateStatus(ctx, userID, taskID, next)
	if err != nil {
		return nil, err
	}
	if before.Status != next {
		u.activity.Record(ctx, taskID, userID, activitydomain.ActionStatusChanged, "status", string(before.Status), string(next))
	}
	return task, nil
}

func (u *taskUsecase) DeleteTask(ctx context.Context, userID, taskID string) error {
	task, err := u.taskRepo.FindOwned(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if err := u.taskRepo.Delete(ctx, userID, taskID); err != nil {
		return err
	}
	if err := u.indexer.RemoveTask(ctx, taskID); err != nil {
		u.log.WithField("task", taskID).Warnf("failed to drop search entries: %v", err)
	}
	u.activity.Record(ctx, taskID, userID, activitydomain.ActionTaskDeleted, "", task.Title, "")
	return nil
}

func (u *taskUsecase) RemoveOwner(ctx context.Context, userID string) error {
	if err := u.indexer.RemoveOwner(ctx, userID); err != nil {
		return err
	}
	n, err := u.taskRepo.DeleteByOwner(ctx, userID)
	if err != nil {
		return err
	}
	u.log.WithField("user", userID).Infof("deleted %d tasks of removed user", n)
	return nil
}

func (u *taskUsecase) AddSubtask(ctx context.Context, userID, taskID string, req *dto.CreateSubtaskRequest) (*domain.Task, error) {
	title, err := requireTitle("title", req.Title)
	if err != nil {
		return nil, err
	}
	status := domain.SubtaskPending
	if req.Status != "" {
		s, ok := domain.ParseSubtaskStatus(req.Status)
		if !ok {
			return nil, validation.Errorf("status", "must be one of pending, completed")
		}
		status = s
	}

	task, err := u.taskRepo.FindOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	now := u.now()
	subtask := domain.Subtask{
		ID:        uuid.New().String(),
		Title:     title,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	task.Subtasks = append(task.Subtasks, subtask)
	if err := u.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	u.reindex(ctx, task)
	u.activity.Record(ctx, taskID, userID, activitydomain.ActionSubtaskAdded, subtaskField(subtask.ID, ""), "", title)
	return task, nil
}

func (u *taskUsecase) UpdateSubtask(ctx context.Context, userID, taskID, subtaskID string, req *dto.PatchSubtaskRequest) (*domain.Task, error) {
	before, err := u.taskRepo.FindOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	after := clone(before)
	subtask := after.Subtask(subtaskID)
	if subtask == nil {
		return nil, domain.ErrSubtaskNotFound
	}

	if req.Title != nil {
		title, err := requireTitle("title", *req.Title)
		if err != nil {
			return nil, err
		}
		subtask.Title = title
	}
	if req.Status != nil {
		status, ok := domain.ParseSubtaskStatus(*req.Status)
		if !ok {
			return nil, validation.Errorf("status", "must be one of pending, completed")
		}
		subtask.Status = status
	}
	subtask.UpdatedAt = u.now()
	return u.save(ctx, userID, before, after)
}

func (u *taskUsecase) RemoveSubtask(ctx context.Context, userID, taskID, subtaskID string) (*domain.Task, error) {
	before, err := u.taskRepo.FindOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	after := clone(before)
	if !after.RemoveSubtask(subtaskID) {
		return nil, domain.ErrSubtaskNotFound
	}
	return u.save(ctx, userID, before, after)
}

func (u *taskUsecase) ListActivity(ctx context.Context, userID, taskID string) ([]*activitydomain.Activity, error) {
	activities, err := u.activity.ListByTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		// nothing recorded by this user: only an owned task gets an empty list
		if _, err := u.taskRepo.FindOwned(ctx, userID, taskID); err != nil {
			return nil, err
		}
	}
	return activities, nil
}

func (u *taskUsecase) Stats(ctx context.Context, userID string) (domain.StatusCounts, error) {
	return u.taskRepo.CountByStatus(ctx, userID)
}

func (u *taskUsecase) Search(ctx context.Context, userID, query string) ([]*domain.Task, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validation.Errorf("q", "search query is required")
	}
	ids, err := u.indexer.Search(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	tasks, _, err := u.taskRepo.List(ctx, userID, domain.ListFilter{IDs: ids})
	if err != nil {
		return nil, err
	}

	// restore rank order
	byID := make(map[string]*domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	ranked := make([]*domain.Task, 0, len(tasks))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ranked = append(ranked, t)
		}
	}
	return ranked, nil
}

// save persists after, keeps the index current and records one activity per
// changed field.
func (u *taskUsecase) save(ctx context.Context, userID string, before, after *domain.Task) (*domain.Task, error) {
	if !sameDue(before.DueDate, after.DueDate) {
		// a new due date deserves a new reminder
		after.ReminderSent = false
	}
	if err := u.taskRepo.Update(ctx, after); err != nil {
		return nil, err
	}
	u.reindex(ctx, after)
	u.recordChanges(ctx, userID, before, after)
	return after, nil
}

func (u *taskUsecase) reindex(ctx context.Context, task *domain.Task) {
	if err := u.indexer.IndexTask(ctx, task); err != nil {
		u.log.WithField("task", task.ID).Warnf("failed to index task: %v", err)
	}
}

func (u *taskUsecase) recordChanges(ctx context.Context, userID string, before, after *domain.Task) {
	record := func(action activitydomain.Action, field, oldValue, newValue string) {
		u.activity.Record(ctx, after.ID, userID, action, field, oldValue, newValue)
	}

	if before.Title != after.Title {
		record(activitydomain.ActionTaskUpdated, "title", before.Title, after.Title)
	}
	if before.Description != after.Description {
		record(activitydomain.ActionTaskUpdated, "description", before.Description, after.Description)
	}
	if before.Priority != after.Priority {
		record(activitydomain.ActionTaskUpdated, "priority", string(before.Priority), string(after.Priority))
	}
	if !sameDue(before.DueDate, after.DueDate) {
		record(activitydomain.ActionTaskUpdated, "dueDate", formatDue(before.DueDate), formatDue(after.DueDate))
	}
	if before.Status != after.Status {
		record(activitydomain.ActionStatusChanged, "status", string(before.Status), string(after.Status))
	}

	for _, st := range after.Subtasks {
		prev := before.Subtask(st.ID)
		if prev == nil {
			record(activitydomain.ActionSubtaskAdded, subtaskField(st.ID, ""), "", st.Title)
			continue
		}
		if prev.Title != st.Title {
			record(activitydomain.ActionSubtaskUpdated, subtaskField(st.ID, "title"), prev.Title, st.Title)
		}
		if prev.Status != st.Status {
			record(activitydomain.ActionSubtaskUpdated, subtaskField(st.ID, "status"), string(prev.Status), string(st.Status))
		}
	}
	for _, st := range before.Subtasks {
		if after.Subtask(st.ID) == nil {
			record(activitydomain.ActionSubtaskRemoved, subtaskField(st.ID, ""), st.Title, "")
		}
	}
}

// applyFull sets every editable field from a create or replace body.
func (u *taskUsecase) applyFull(task *domain.Task, req *dto.CreateTaskRequest, now time.Time) error {
	title, err := requireTitle("title", req.Title)
	if err != nil {
		return err
	}

	status := domain.TaskStatusPending
	if req.Status != "" {
		s, ok := domain.ParseStatus(req.Status)
		if !ok {
			return validation.Errorf("status", "must be one of pending, inprogress, completed")
		}
		status = s
	}

	priority := domain.PriorityMedium
	if req.Priority != "" {
		p, ok := domain.ParsePriority(req.Priority)
		if !ok {
			return validation.Errorf("priority", "must be one of low, medium, high")
		}
		priority = p
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return err
	}

	subtasks, err := mergeSubtasks(task.Subtasks, req.Subtasks, now)
	if err != nil {
		return err
	}

	task.Title = title
	task.Description = strings.TrimSpace(req.Description)
	task.Status = status
	task.Priority = priority
	task.DueDate = due
	task.Subtasks = subtasks
	return nil
}

// mergeSubtasks builds the new ordered list. Inputs whose id matches an
// existing subtask keep its id and creation time.
func mergeSubtasks(existing []domain.Subtask, in []dto.SubtaskInput, now time.Time) ([]domain.Subtask, error) {
	out := make([]domain.Subtask, 0, len(in))
	seen := make(map[string]bool, len(in))

	for i, s := range in {
		title, err := requireTitle(fmt.Sprintf("subtasks[%d].title", i), s.Title)
		if err != nil {
			return nil, err
		}
		var status domain.SubtaskStatus
		if s.Status != "" {
			st, ok := domain.ParseSubtaskStatus(s.Status)
			if !ok {
				return nil, validation.Errorf(fmt.Sprintf("subtasks[%d].status", i), "must be one of pending, completed")
			}
			status = st
		}

		if prev := findSubtask(existing, s.ID); prev != nil && !seen[s.ID] {
			seen[s.ID] = true
			st := *prev
			if status == "" {
				status = st.Status
			}
			if st.Title != title || st.Status != status {
				st.Title = title
				st.Status = status
				st.UpdatedAt = now
			}
			out = append(out, st)
			continue
		}

		if status == "" {
			status = domain.SubtaskPending
		}
		out = append(out, domain.Subtask{
			ID:        uuid.New().String(),
			Title:     title,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return out, nil
}

func findSubtask(subtasks []domain.Subtask, id string) *domain.Subtask {
	if id == "" {
		return nil
	}
	for i := range subtasks {
		if subtasks[i].ID == id {
			return &subtasks[i]
		}
	}
	return nil
}

func requireTitle(field, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", validation.Errorf(field, "is required")
	}
	return title, nil
}

// parseDueDate accepts YYYY-MM-DD or RFC3339; nil or "" clears the date.
func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	due, _, err := parseDate(strings.TrimSpace(*raw))
	if err != nil {
		return nil, validation.Errorf("dueDate", "expected YYYY-MM-DD or an RFC3339 timestamp")
	}
	return &due, nil
}

// parseDate reports whether s was a bare date so range ends can cover the day.
func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDue(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func formatDue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func subtaskField(id, field string) string {
	if field == "" {
		return "subtasks[" + id + "]"
	}
	return "subtasks[" + id + "]." + field
}

func clone(t *domain.Task) *domain.Task {
	c := *t
	c.Subtasks = append([]domain.Subtask(nil), t.Subtasks...)
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	return &c
}
