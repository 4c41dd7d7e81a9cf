package dto

import authdomain "taskboard/internal/auth/domain"

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type TokenResponse struct {
	Token        string           `json:"token"`
	RefreshToken string           `json:"refreshToken"`
	User         *authdomain.User `json:"user"`
}

// CreateUserRequest is the admin create path; unlike signup it may set a role.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
	Image    string `json:"image"`
}

// UpdateUserRequest serves both PUT and PATCH; nil fields are left alone.
type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Role     *string `json:"role" binding:"omitempty,oneof=user admin"`
	Image    *string `json:"image"`
}

type RegisterDeviceRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"deviceInfo"`
}
