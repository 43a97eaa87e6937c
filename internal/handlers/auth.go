package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thewebvalue/task-management-api/internal/dto"
	"github.com/thewebvalue/task-management-api/internal/models"
	"github.com/thewebvalue/task-management-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login verifies credentials and returns a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if !bindJSON(c, &req, "Valid email and password are required") {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "An error occurred during login")
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Message:      "Login successful",
		User:         dto.ToUserDTO(*result.User),
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

// CreateUser creates an account. Admin only; the route is also mounted under /admin.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	type CreateUserRequest struct {
		Email    string      `json:"email" binding:"required,email"`
		Password string      `json:"password" binding:"required"`
		FullName string      `json:"full_name" binding:"required"`
		Role     models.Role `json:"role" binding:"required"`
	}

	var req CreateUserRequest
	if !bindJSON(c, &req, "Email, password, full_name and role are required") {
		return
	}

	user, err := h.authService.CreateUser(c.Request.Context(), identity, services.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err, "An error occurred while creating the user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    dto.ToUserDTO(*user),
	})
}

// RefreshToken exchanges a refresh token for a new pair.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	type RefreshRequest struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	var req RefreshRequest
	if !bindJSON(c, &req, "Refresh token is required") {
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err, "An error occurred while refreshing the token")
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// GetProfile returns the authenticated user.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	user, err := h.authService.GetProfile(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err, "An error occurred while fetching the profile")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
