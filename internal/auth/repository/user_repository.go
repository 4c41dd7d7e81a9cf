package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	authdomain "taskboard/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormUserRepository implements UserRepository with GORM
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository migrates the user tables and returns the repository.
func NewGormUserRepository(db *gorm.DB) (UserRepository, error) {
	if err := db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}); err != nil {
		return nil, err
	}
	return &gormUserRepository{db: db}, nil
}

func (r *gormUserRepository) Create(ctx context.Context, user *authdomain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	err := r.db.WithContext(ctx).Create(user).Error
	if isUniqueViolation(err) {
		return authdomain.ErrEmailTaken
	}
	return err
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authdomain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	var user authdomain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authdomain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) List(ctx context.Context) ([]*authdomain.User, error) {
	var users []*authdomain.User
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *gormUserRepository) Update(ctx context.Context, user *authdomain.User) error {
	user.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&authdomain.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"name":       user.Name,
		"email":      user.Email,
		"password":   user.Password,
		"image":      user.Image,
		"role":       user.Role,
		"updated_at": user.UpdatedAt,
	})
	if isUniqueViolation(res.Error) {
		return authdomain.ErrEmailTaken
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return authdomain.ErrUserNotFound
	}
	return nil
}

func (r *gormUserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&authdomain.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return authdomain.ErrUserNotFound
		}
		return tx.Where("user_id = ?", id).Delete(&authdomain.RefreshToken{}).Error
	})
}

func (r *gormUserRepository) SaveRefreshToken(ctx context.Context, token *authdomain.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *gormUserRepository) FindRefreshToken(ctx context.Context, token string) (*authdomain.RefreshToken, error) {
	var refreshToken authdomain.RefreshToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&refreshToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &refreshToken, nil
}

func (r *gormUserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&authdomain.RefreshToken{}).Error
}

func (r *gormUserRepository) DeleteRefreshTokensByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&authdomain.RefreshToken{}).Error
}

func (r *gormUserRepository) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) error {
	return r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&authdomain.RefreshToken{}).Error
}

// isUniqueViolation covers postgres (23505) and sqlite wording.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") || strings.Contains(msg, "23505")
}
