package domain

import (
	"errors"
	"time"
)

// Role gates the admin-only user endpoints.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrDeviceNotFound     = errors.New("device not registered")
)

type User struct {
	ID        string    `json:"id" gorm:"primaryKey" bson:"_id"`
	Name      string    `json:"name" gorm:"not null" bson:"name"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null" bson:"email"`
	Password  string    `json:"-" gorm:"not null" bson:"password"` // Never return password in JSON
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	Role      Role      `json:"role" gorm:"default:user" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type RefreshToken struct {
	Token     string    `json:"token" gorm:"primaryKey" bson:"_id"`
	UserID    string    `json:"userId" gorm:"index;not null" bson:"userId"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
}

// DeviceToken is a push-notification registration for one of a user's devices.
type DeviceToken struct {
	ID         string    `json:"id" gorm:"primaryKey" bson:"_id"`
	UserID     string    `json:"userId" gorm:"index;not null" bson:"userId"`
	Token      string    `json:"-" gorm:"uniqueIndex;not null" bson:"token"` // Don't expose token in JSON
	DeviceInfo string    `json:"deviceInfo" bson:"deviceInfo"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}
