package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/task/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormTaskRepository implements TaskRepository using GORM
type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository migrates the task table and returns the repository.
func NewGormTaskRepository(db *gorm.DB) (TaskRepository, error) {
	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return nil, err
	}
	return &gormTaskRepository{db: db}, nil
}

func (r *gormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	task.UpdatedAt = task.CreatedAt
	if task.Subtasks == nil {
		task.Subtasks = []domain.Subtask{}
	}
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *gormTaskRepository) FindOwned(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).Where("id = ? AND created_by = ?", id, ownerID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskRepository) List(ctx context.Context, ownerID string, filter domain.ListFilter) ([]*domain.Task, int64, error) {
	tasks := []*domain.Task{}
	var total int64

	if filter.IDs != nil && len(filter.IDs) == 0 {
		return tasks, 0, nil
	}

	query := r.db.WithContext(ctx).Model(&domain.Task{}).Where("created_by = ?", ownerID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.IDs != nil {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", filter.DueFrom.UTC())
	}
	if filter.DueUntil != nil {
		query = query.Where("due_date <= ?", filter.DueUntil.UTC())
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// due_date ascending with undated tasks last, then newest first
	query = query.Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date ASC, created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	err := query.Find(&tasks).Error
	return tasks, total, err
}

func (r *gormTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()
	if task.Subtasks == nil {
		task.Subtasks = []domain.Subtask{}
	}
	res := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ? AND created_by = ?", task.ID, task.CreatedBy).
		Select("title", "description", "status", "priority", "due_date", "subtasks", "reminder_sent", "updated_at").
		Updates(task)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *gormTaskRepository) UpdateStatus(ctx context.Context, ownerID, id string, status domain.TaskStatus) (*domain.Task, error) {
	res := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ? AND created_by = ?", id, ownerID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrTaskNotFound
	}
	return r.FindOwned(ctx, ownerID, id)
}

func (r *gormTaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND created_by = ?", id, ownerID).Delete(&domain.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *gormTaskRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_by = ?", ownerID).Delete(&domain.Task{})
	return res.RowsAffected, res.Error
}

func (r *gormTaskRepository) CountByStatus(ctx context.Context, ownerID string) (domain.StatusCounts, error) {
	var rows []struct {
		Status domain.TaskStatus
		Count  int64
	}
	var counts domain.StatusCounts
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Select("status, COUNT(*) AS count").
		Where("created_by = ?", ownerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return counts, err
	}
	for _, row := range rows {
		counts.Add(row.Status, row.Count)
	}
	return counts, nil
}

func (r *gormTaskRepository) FindDueForReminder(ctx context.Context, before time.Time) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date <= ? AND reminder_sent = ? AND status <> ?",
			before.UTC(), false, domain.TaskStatusCompleted).
		Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) MarkReminderSent(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"reminder_sent": true,
			"updated_at":    time.Now().UTC(),
		}).Error
}
