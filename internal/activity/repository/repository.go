package repository

import (
	"context"

	"taskboard/internal/activity/domain"
)

// ActivityRepository stores the audit log. There is no update or delete.
type ActivityRepository interface {
	Append(ctx context.Context, activity *domain.Activity) error
	// ListByTask returns the task's records for the given user, newest first
	ListByTask(ctx context.Context, userID, taskID string) ([]*domain.Activity, error)
}
