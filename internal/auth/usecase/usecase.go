package usecase

import (
	"context"

	authdomain "taskboard/internal/auth/domain"
	authdto "taskboard/internal/auth/dto"
)

// AuthUsecase defines the interface for authentication and user management
type AuthUsecase interface {
	Signup(ctx context.Context, req *authdto.SignupRequest) (*authdto.TokenResponse, error)
	Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*authdto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error

	// ValidateToken checks signature and expiry of an access token.
	ValidateToken(tokenString string) (*Claims, error)

	Me(ctx context.Context, userID string) (*authdomain.User, error)

	// Admin-style user management
	ListUsers(ctx context.Context) ([]*authdomain.User, error)
	GetUser(ctx context.Context, id string) (*authdomain.User, error)
	CreateUser(ctx context.Context, req *authdto.CreateUserRequest) (*authdomain.User, error)
	UpdateUser(ctx context.Context, id string, req *authdto.UpdateUserRequest) (*authdomain.User, error)
	DeleteUser(ctx context.Context, id string) error

	RegisterDevice(ctx context.Context, userID string, req *authdto.RegisterDeviceRequest) error
	UnregisterDevice(ctx context.Context, userID, token string) error
}
