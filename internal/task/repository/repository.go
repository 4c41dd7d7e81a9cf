package repository

import (
	"context"
	"time"

	"taskboard/internal/task/domain"
)

// TaskRepository defines the interface for task data access. Every lookup
// that takes an owner matches on both id and owner, so tasks of other users
// surface as domain.ErrTaskNotFound.
type TaskRepository interface {
	// Create stores a new task with its embedded subtasks
	Create(ctx context.Context, task *domain.Task) error

	// FindOwned finds a task by id for its owner
	FindOwned(ctx context.Context, ownerID, id string) (*domain.Task, error)

	// List returns one page of the owner's tasks and the total matching the filter
	List(ctx context.Context, ownerID string, filter domain.ListFilter) ([]*domain.Task, int64, error)

	// Update overwrites every mutable field; CreatedBy and CreatedAt are never written
	Update(ctx context.Context, task *domain.Task) error

	// UpdateStatus overwrites only the status (the board move)
	UpdateStatus(ctx context.Context, ownerID, id string, status domain.TaskStatus) (*domain.Task, error)

	// Delete deletes an owned task
	Delete(ctx context.Context, ownerID, id string) error

	// DeleteByOwner deletes every task of one user and returns how many went
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)

	// CountByStatus aggregates the owner's tasks per status
	CountByStatus(ctx context.Context, ownerID string) (domain.StatusCounts, error)

	// FindDueForReminder finds unfinished, not yet reminded tasks due at or before the given time
	FindDueForReminder(ctx context.Context, before time.Time) ([]*domain.Task, error)

	// MarkReminderSent marks a task's reminder as sent
	MarkReminderSent(ctx context.Context, id string) error
}
