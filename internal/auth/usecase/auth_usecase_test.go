package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	authdomain "taskboard/internal/auth/domain"
	authdto "taskboard/internal/auth/dto"
	"taskboard/internal/auth/repository"
	"taskboard/pkg/config"
	"taskboard/pkg/database"
)

func newTestUsecase(t *testing.T) *authUsecase {
	t.Helper()
	db, err := database.NewSQLiteConnection(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	users, err := repository.NewGormUserRepository(db)
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	devices, err := repository.NewGormDeviceTokenRepository(db)
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	cfg := &config.Config{
		JWTSecret:           "test-secret",
		JWTAccessExpiry:     time.Hour,
		JWTRefreshExpiry:    24 * time.Hour,
		BootstrapAdminEmail: "Root@Example.com",
	}
	return NewAuthUsecase(users, devices, nil, cfg).(*authUsecase)
}

func TestSignupAndLogin(t *testing.T) {
	u := newTestUsecase(t)
	ctx := context.Background()

	resp, err := u.Signup(ctx, &authdto.SignupRequest{Name: " Ann ", Email: "Ann@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if resp.User.Email != "ann@example.com" || resp.User.Name != "Ann" || resp.User.Role != authdomain.RoleUser {
		t.Errorf("user = %+v", resp.User)
	}
	if resp.Token == "" || resp.RefreshToken == "" || resp.Token == resp.RefreshToken {
		t.Error("expected distinct access and refresh tokens")
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := u.Signup(ctx, &authdto.SignupRequest{Name: "Other", Email: "ann@example.com", Password: "secret2"})
		if !errors.Is(err, authdomain.ErrEmailTaken) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("bootstrap admin", func(t *testing.T) {
		resp, err := u.Signup(ctx, &authdto.SignupRequest{Name: "Root", Email: "root@example.com", Password: "secret1"})
		if err != nil {
			t.Fatalf("Signup: %v", err)
		}
		if !resp.User.IsAdmin() {
			t.Errorf("role = %s", resp.User.Role)
		}
	})

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "ANN@example.com", "secret1", nil},
		{"wrong password", "ann@example.com", "nope", authdomain.ErrInvalidCredentials},
		{"unknown email", "bob@example.com", "secret1", authdomain.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run("login "+tt.name, func(t *testing.T) {
			_, err := u.Login(ctx, &authdto.LoginRequest{Email: tt.email, Password: tt.password})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	u := newTestUsecase(t)
	ctx := context.Background()
	resp, err := u.Signup(ctx, &authdto.SignupRequest{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	t.Run("access token validates", func(t *testing.T) {
		claims, err := u.ValidateToken(resp.Token)
		if err != nil {
			t.Fatalf("ValidateToken: %v", err)
		}
		if claims.Subject != resp.User.ID || claims.Role != authdomain.RoleUser {
			t.Errorf("claims = %+v", claims)
		}
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		if _, err := u.ValidateToken(resp.RefreshToken); !errors.Is(err, authdomain.ErrInvalidToken) {
			t.Errorf("got %v", err)
		}
		if _, err := u.RefreshToken(ctx, resp.Token); !errors.Is(err, authdomain.ErrInvalidToken) {
			t.Errorf("access token accepted as refresh: %v", err)
		}
	})

	t.Run("refresh rotates", func(t *testing.T) {
		next, err := u.RefreshToken(ctx, resp.RefreshToken)
		if err != nil {
			t.Fatalf("RefreshToken: %v", err)
		}
		if _, err := u.RefreshToken(ctx, resp.RefreshToken); !errors.Is(err, authdomain.ErrInvalidToken) {
			t.Errorf("reused refresh token: %v", err)
		}
		if err := u.Logout(ctx, next.RefreshToken); err != nil {
			t.Fatalf("Logout: %v", err)
		}
		if _, err := u.RefreshToken(ctx, next.RefreshToken); !errors.Is(err, authdomain.ErrInvalidToken) {
			t.Errorf("refresh after logout: %v", err)
		}
	})

	t.Run("expired access token", func(t *testing.T) {
		u.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { u.now = time.Now }()
		if _, err := u.ValidateToken(resp.Token); !errors.Is(err, authdomain.ErrInvalidToken) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("garbage and wrong secret", func(t *testing.T) {
		if _, err := u.ValidateToken("not-a-jwt"); !errors.Is(err, authdomain.ErrInvalidToken) {
			t.Errorf("got %v", err)
		}
		other := *u
		other.config = &config.Config{JWTSecret: "other", JWTAccessExpiry: time.Hour, JWTRefreshExpiry: time.Hour}
		if _, err := other.ValidateToken(resp.Token); !errors.Is(err, authdomain.ErrInvalidToken) {
			t.Errorf("got %v", err)
		}
	})
}

type ownedRecorder struct{ removed []string }

func (o *ownedRecorder) RemoveOwner(_ context.Context, userID string) error {
	o.removed = append(o.removed, userID)
	return nil
}

func TestDeleteUserRemovesOwnedData(t *testing.T) {
	u := newTestUsecase(t)
	owned := &ownedRecorder{}
	u.owned = owned
	ctx := context.Background()

	resp, err := u.Signup(ctx, &authdto.SignupRequest{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if err := u.DeleteUser(ctx, resp.User.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if len(owned.removed) != 1 || owned.removed[0] != resp.User.ID {
		t.Errorf("removed owners = %v", owned.removed)
	}

	if err := u.DeleteUser(ctx, resp.User.ID); !errors.Is(err, authdomain.ErrUserNotFound) {
		t.Errorf("second delete: got %v", err)
	}
	if len(owned.removed) != 1 {
		t.Error("owned data removed for a user that no longer exists")
	}
}
