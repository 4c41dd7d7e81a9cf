package usecase

import (
	"context"

	activitydomain "taskboard/internal/activity/domain"
	"taskboard/internal/task/domain"
	"taskboard/internal/task/dto"
)

// TaskUsecase defines the task business logic. Every operation is scoped to
// the owner in userID; tasks of other users behave as if they did not exist.
type TaskUsecase interface {
	ListTasks(ctx context.Context, userID string, q dto.ListQuery) ([]*domain.Task, int64, error)
	GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error)
	CreateTask(ctx context.Context, userID string, req *dto.CreateTaskRequest) (*domain.Task, error)

	// ReplaceTask overwrites every editable field (PUT)
	ReplaceTask(ctx context.Context, userID, taskID string, req *dto.CreateTaskRequest) (*domain.Task, error)

	// PatchTask changes only the fields present in req
	PatchTask(ctx context.Context, userID, taskID string, req *dto.PatchTaskRequest) (*domain.Task, error)

	// UpdateStatus is the board move: it writes status and nothing else
	UpdateStatus(ctx context.Context, userID, taskID, status string) (*domain.Task, error)

	DeleteTask(ctx context.Context, userID, taskID string) error

	AddSubtask(ctx context.Context, userID, taskID string, req *dto.CreateSubtaskRequest) (*domain.Task, error)
	UpdateSubtask(ctx context.Context, userID, taskID, subtaskID string, req *dto.PatchSubtaskRequest) (*domain.Task, error)
	RemoveSubtask(ctx context.Context, userID, taskID, subtaskID string) (*domain.Task, error)

	ListActivity(ctx context.Context, userID, taskID string) ([]*activitydomain.Activity, error)
	Stats(ctx context.Context, userID string) (domain.StatusCounts, error)

	// Search ranks the owner's tasks against a free-text query
	Search(ctx context.Context, userID, query string) ([]*domain.Task, error)

	// RemoveOwner deletes every task of a user together with its index entries
	RemoveOwner(ctx context.Context, userID string) error
}

// Indexer keeps the search index in step with task writes.
type Indexer interface {
	IndexTask(ctx context.Context, task *domain.Task) error
	RemoveTask(ctx context.Context, taskID string) error
	RemoveOwner(ctx context.Context, ownerID string) error
	Search(ctx context.Context, ownerID, query string) ([]string, error)
	Matches(ctx context.Context, ownerID, query string) ([]string, error)
}

// ActivityRecorder appends audit records; Record never fails the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, taskID, userID string, action activitydomain.Action, field, oldValue, newValue string)
	ListByTask(ctx context.Context, userID, taskID string) ([]*activitydomain.Activity, error)
}
