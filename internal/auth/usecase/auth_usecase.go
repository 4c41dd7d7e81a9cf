package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	authdomain "taskboard/internal/auth/domain"
	authdto "taskboard/internal/auth/dto"
	"taskboard/internal/auth/repository"
	"taskboard/pkg/config"
	"taskboard/pkg/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are carried by access and refresh tokens. Subject is the user id.
type Claims struct {
	Role authdomain.Role `json:"role,omitempty"`
	// Kind separates access from refresh tokens so one cannot stand in for the other.
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// OwnedData removes what a user owns outside the auth tables.
type OwnedData interface {
	RemoveOwner(ctx context.Context, userID string) error
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo   repository.UserRepository
	deviceRepo repository.DeviceTokenRepository
	owned      OwnedData
	config     *config.Config
	now        func() time.Time
}

// NewAuthUsecase creates a new instance of authUsecase. owned may be nil.
func NewAuthUsecase(userRepo repository.UserRepository, deviceRepo repository.DeviceTokenRepository, owned OwnedData, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo:   userRepo,
		deviceRepo: deviceRepo,
		owned:      owned,
		config:     cfg,
		now:        time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *authUsecase) Signup(ctx context.Context, req *authdto.SignupRequest) (*authdto.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	role := authdomain.RoleUser
	if u.config.BootstrapAdminEmail != "" && email == normalizeEmail(u.config.BootstrapAdminEmail) {
		role = authdomain.RoleAdmin
	}

	user, err := u.createUser(ctx, strings.TrimSpace(req.Name), email, req.Password, role, "")
	if err != nil {
		return nil, err
	}
	return u.generateTokens(ctx, user)
}

func (u *authUsecase) createUser(ctx context.Context, name, email, password string, role authdomain.Role, image string) (*authdomain.User, error) {
	_, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, authdomain.ErrEmailTaken
	}
	if !errors.Is(err, authdomain.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := repository.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &authdomain.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     role,
		Image:    image,
	}
	// the unique index still catches a concurrent signup with the same email
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, authdomain.ErrUserNotFound) {
		return nil, authdomain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !repository.CheckPasswordHash(req.Password, user.Password) {
		return nil, authdomain.ErrInvalidCredentials
	}

	return u.generateTokens(ctx, user)
}

func (u *authUsecase) RefreshToken(ctx context.Context, refreshToken string) (*authdto.TokenResponse, error) {
	claims, err := u.parse(refreshToken, kindRefresh)
	if err != nil {
		return nil, err
	}

	storedToken, err := u.userRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if storedToken == nil || storedToken.ExpiresAt.Before(u.now()) {
		return nil, authdomain.ErrInvalidToken
	}

	user, err := u.userRepo.FindByID(ctx, claims.Subject)
	if errors.Is(err, authdomain.ErrUserNotFound) {
		return nil, authdomain.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	// rotate: the presented token is single use
	if err := u.userRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return u.generateTokens(ctx, user)
}

func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	return u.userRepo.DeleteRefreshToken(ctx, refreshToken)
}

func (u *authUsecase) generateTokens(ctx context.Context, user *authdomain.User) (*authdto.TokenResponse, error) {
	now := u.now()

	accessToken, err := u.sign(user, kindAccess, now, u.config.JWTAccessExpiry)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.sign(user, kindRefresh, now, u.config.JWTRefreshExpiry)
	if err != nil {
		return nil, err
	}

	// housekeeping only; a failure here must not block the login
	_ = u.userRepo.DeleteExpiredRefreshTokens(ctx, now)

	refreshTokenEntity := &authdomain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(u.config.JWTRefreshExpiry),
	}
	if err := u.userRepo.SaveRefreshToken(ctx, refreshTokenEntity); err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (u *authUsecase) sign(user *authdomain.User, kind string, now time.Time, ttl time.Duration) (string, error) {
	claims := &Claims{
		Role: user.Role,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) parse(tokenString, kind string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(u.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, authdomain.ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" || claims.Kind != kind {
		return nil, authdomain.ErrInvalidToken
	}
	return claims, nil
}

func (u *authUsecase) ValidateToken(tokenString string) (*Claims, error) {
	return u.parse(tokenString, kindAccess)
}

func (u *authUsecase) Me(ctx context.Context, userID string) (*authdomain.User, error) {
	return u.userRepo.FindByID(ctx, userID)
}

func (u *authUsecase) ListUsers(ctx context.Context) ([]*authdomain.User, error) {
	return u.userRepo.List(ctx)
}

func (u *authUsecase) GetUser(ctx context.Context, id string) (*authdomain.User, error) {
	return u.userRepo.FindByID(ctx, id)
}

func (u *authUsecase) CreateUser(ctx context.Context, req *authdto.CreateUserRequest) (*authdomain.User, error) {
	role := authdomain.RoleUser
	if req.Role != "" {
		role = authdomain.Role(req.Role)
	}
	return u.createUser(ctx, strings.TrimSpace(req.Name), normalizeEmail(req.Email), req.Password, role, req.Image)
}

func (u *authUsecase) UpdateUser(ctx context.Context, id string, req *authdto.UpdateUserRequest) (*authdomain.User, error) {
	user, err := u.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			other, err := u.userRepo.FindByEmail(ctx, email)
			if err == nil && other.ID != user.ID {
				return nil, authdomain.ErrEmailTaken
			}
			if err != nil && !errors.Is(err, authdomain.ErrUserNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.Image != nil {
		user.Image = *req.Image
	}
	if req.Role != nil {
		role := authdomain.Role(*req.Role)
		if !role.Valid() {
			return nil, validation.Errorf("role", "must be one of user, admin")
		}
		user.Role = role
	}
	passwordChanged := false
	if req.Password != nil {
		hashed, err := repository.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
		passwordChanged = true
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if passwordChanged {
		// existing sessions must log in again with the new password
		if err := u.userRepo.DeleteRefreshTokensByUser(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// DeleteUser removes the account, then its devices and everything it owns.
func (u *authUsecase) DeleteUser(ctx context.Context, id string) error {
	if err := u.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	if u.deviceRepo != nil {
		if err := u.deviceRepo.DeleteTokensByUserID(ctx, id); err != nil {
			return err
		}
	}
	if u.owned != nil {
		return u.owned.RemoveOwner(ctx, id)
	}
	return nil
}

func (u *authUsecase) RegisterDevice(ctx context.Context, userID string, req *authdto.RegisterDeviceRequest) error {
	if u.deviceRepo == nil {
		return errors.New("device registration is not available")
	}
	return u.deviceRepo.SaveToken(ctx, userID, req.Token, req.DeviceInfo)
}

func (u *authUsecase) UnregisterDevice(ctx context.Context, userID, token string) error {
	if u.deviceRepo == nil {
		return nil
	}
	tokens, err := u.deviceRepo.GetTokensByUserID(ctx, userID)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		if t.Token == token {
			return u.deviceRepo.DeleteToken(ctx, token)
		}
	}
	return authdomain.ErrDeviceNotFound
}
