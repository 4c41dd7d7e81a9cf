package repository

import (
	"context"
	"time"

	authdomain "taskboard/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormDeviceTokenRepository struct {
	db *gorm.DB
}

func NewGormDeviceTokenRepository(db *gorm.DB) (DeviceTokenRepository, error) {
	if err := db.AutoMigrate(&authdomain.DeviceToken{}); err != nil {
		return nil, err
	}
	return &gormDeviceTokenRepository{db: db}, nil
}

// SaveToken saves or updates a device token for a user (atomic upsert)
func (r *gormDeviceTokenRepository) SaveToken(ctx context.Context, userID, token, deviceInfo string) error {
	now := time.Now().UTC()
	deviceToken := &authdomain.DeviceToken{
		ID:         uuid.New().String(),
		UserID:     userID,
		Token:      token,
		DeviceInfo: deviceInfo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// INSERT ... ON CONFLICT (token) DO UPDATE, so a device that changes hands follows the new user
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "device_info", "updated_at"}),
	}).Create(deviceToken).Error
}

func (r *gormDeviceTokenRepository) GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.DeviceToken, error) {
	var tokens []authdomain.DeviceToken
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *gormDeviceTokenRepository) DeleteToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&authdomain.DeviceToken{}).Error
}

func (r *gormDeviceTokenRepository) DeleteTokensByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&authdomain.DeviceToken{}).Error
}
