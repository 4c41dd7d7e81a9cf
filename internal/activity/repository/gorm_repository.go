package repository

import (
	"context"
	"time"

	"taskboard/internal/activity/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormActivityRepository struct {
	db *gorm.DB
}

func NewGormActivityRepository(db *gorm.DB) (ActivityRepository, error) {
	if err := db.AutoMigrate(&domain.Activity{}); err != nil {
		return nil, err
	}
	return &gormActivityRepository{db: db}, nil
}

func (r *gormActivityRepository) Append(ctx context.Context, activity *domain.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *gormActivityRepository) ListByTask(ctx context.Context, userID, taskID string) ([]*domain.Activity, error) {
	activities := []*domain.Activity{}
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Order("created_at DESC").
		Find(&activities).Error
	return activities, err
}
