package repository

import (
	"context"
	"time"

	authdomain "taskboard/internal/auth/domain"

	"golang.org/x/crypto/bcrypt"
)

// UserRepository stores users and their refresh tokens. Finders return
// authdomain.ErrUserNotFound when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *authdomain.User) error
	FindByEmail(ctx context.Context, email string) (*authdomain.User, error)
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
	List(ctx context.Context) ([]*authdomain.User, error)
	Update(ctx context.Context, user *authdomain.User) error
	Delete(ctx context.Context, id string) error

	SaveRefreshToken(ctx context.Context, token *authdomain.RefreshToken) error
	// FindRefreshToken returns nil, nil for unknown tokens.
	FindRefreshToken(ctx context.Context, token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteRefreshTokensByUser(ctx context.Context, userID string) error
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) error
}

// DeviceTokenRepository stores push-notification device tokens.
type DeviceTokenRepository interface {
	SaveToken(ctx context.Context, userID, token, deviceInfo string) error
	GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.DeviceToken, error)
	DeleteToken(ctx context.Context, token string) error
	DeleteTokensByUserID(ctx context.Context, userID string) error
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with a hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
