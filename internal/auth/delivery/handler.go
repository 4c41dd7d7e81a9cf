package delivery

import (
	"errors"
	"net/http"

	authdomain "taskboard/internal/auth/domain"
	authdto "taskboard/internal/auth/dto"
	"taskboard/internal/auth/usecase"
	"taskboard/pkg/validation"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves the /users endpoints.
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthHandler(authUsecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

func respondError(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, authdomain.ErrInvalidCredentials), errors.Is(err, authdomain.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, authdomain.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, authdomain.ErrUserNotFound), errors.Is(err, authdomain.ErrDeviceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Signup registers a new account and logs it in
// POST /users/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req authdto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authUsecase.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login issues a token pair
// POST /users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req authdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authUsecase.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshToken rotates a refresh token
// POST /users/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req authdto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authUsecase.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout revokes a refresh token
// POST /users/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req authdto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authUsecase.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user
// GET /users/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUsecase.Me(c.Request.Context(), c.GetString(ContextUserID))
	if errors.Is(err, authdomain.ErrUserNotFound) {
		// token outlived its account
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RegisterDevice stores a push-notification token for reminders
// POST /users/me/devices
func (h *AuthHandler) RegisterDevice(c *gin.Context) {
	var req authdto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authUsecase.RegisterDevice(c.Request.Context(), c.GetString(ContextUserID), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Device registered"})
}

// UnregisterDevice removes a push-notification token
// DELETE /users/me/devices/:token
func (h *AuthHandler) UnregisterDevice(c *gin.Context) {
	if err := h.authUsecase.UnregisterDevice(c.Request.Context(), c.GetString(ContextUserID), c.Param("token")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device unregistered"})
}

// ListUsers GET /users (admin)
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authUsecase.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if users == nil {
		users = []*authdomain.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser GET /users/:id (admin)
func (h *AuthHandler) GetUser(c *gin.Context) {
	user, err := h.authUsecase.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// CreateUser POST /users (admin)
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req authdto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authUsecase.CreateUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User " + user.Name + " added successfully", "user": user})
}

// UpdateUser PUT|PATCH /users/:id (admin)
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	var req authdto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if c.Request.Method == http.MethodPut && (req.Name == nil || req.Email == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and email are required"})
		return
	}

	user, err := h.authUsecase.UpdateUser(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": user})
}

// DeleteUser DELETE /users/:id (admin)
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	if err := h.authUsecase.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
