package usecase

import (
	"context"
	"time"

	"taskboard/internal/activity/domain"
	"taskboard/internal/activity/repository"
	"taskboard/pkg/logging"

	"github.com/sirupsen/logrus"
)

const publishTimeout = 10 * time.Second

// Publisher forwards recorded activities to an external topic.
type Publisher interface {
	Publish(ctx context.Context, activity *domain.Activity) error
}

// Recorder appends audit records on behalf of the task usecase. Failures are
// logged and never returned, so auditing cannot fail a user operation.
type Recorder struct {
	repo      repository.ActivityRepository
	publisher Publisher
	log       *logrus.Entry
	now       func() time.Time
	// async is false in tests so publishing finishes before Record returns
	async bool
}

// NewRecorder creates a Recorder. publisher may be nil.
func NewRecorder(repo repository.ActivityRepository, publisher Publisher) *Recorder {
	return &Recorder{
		repo:      repo,
		publisher: publisher,
		log:       logging.For("activity"),
		now:       func() time.Time { return time.Now().UTC() },
		async:     true,
	}
}

// Record appends one activity. Field, old and new may be empty.
func (r *Recorder) Record(ctx context.Context, taskID, userID string, action domain.Action, field, oldValue, newValue string) {
	activity := &domain.Activity{
		TaskID:    taskID,
		UserID:    userID,
		Action:    action,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		CreatedAt: r.now(),
	}
	if err := r.repo.Append(ctx, activity); err != nil {
		r.log.WithFields(logrus.Fields{"task": taskID, "action": action}).Warnf("failed to append activity: %v", err)
		return
	}
	if r.publisher == nil {
		return
	}
	if r.async {
		go r.publish(activity)
		return
	}
	r.publish(activity)
}

func (r *Recorder) publish(activity *domain.Activity) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.publisher.Publish(ctx, activity); err != nil {
		r.log.WithField("activity", activity.ID).Warnf("failed to publish activity: %v", err)
	}
}

// ListByTask returns the task's audit trail, newest first.
func (r *Recorder) ListByTask(ctx context.Context, userID, taskID string) ([]*domain.Activity, error) {
	return r.repo.ListByTask(ctx, userID, taskID)
}
