package repository

import (
	"context"

	"taskboard/internal/search/domain"
	"taskboard/pkg/fuzzy"

	"gorm.io/gorm"
)

// gormSearchRepository keeps entries in a table and ranks them in process
// with typo-tolerant scoring, since the SQL backends share no full-text syntax.
type gormSearchRepository struct {
	db *gorm.DB
}

func NewGormSearchRepository(db *gorm.DB) (SearchRepository, error) {
	if err := db.AutoMigrate(&domain.Entry{}); err != nil {
		return nil, err
	}
	return &gormSearchRepository{db: db}, nil
}

func (r *gormSearchRepository) ReplaceForTask(ctx context.Context, taskID string, entries []*domain.Entry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&domain.Entry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

func (r *gormSearchRepository) DeleteByTask(ctx context.Context, taskID string) error {
	return r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&domain.Entry{}).Error
}

func (r *gormSearchRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&domain.Entry{}).Error
}

func (r *gormSearchRepository) Search(ctx context.Context, ownerID, query string, limit int) ([]domain.Hit, error) {
	var entries []domain.Entry
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&entries).Error; err != nil {
		return nil, err
	}

	scores := make(map[string]float64)
	for _, e := range entries {
		score := fuzzy.Score(query, e.Title, e.Content)
		if score > scores[e.TaskID] {
			scores[e.TaskID] = score
		}
	}
	return rank(scores, limit), nil
}
