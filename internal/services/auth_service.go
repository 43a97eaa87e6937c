package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/thewebvalue/task-management-api/internal/auth"
	"github.com/thewebvalue/task-management-api/internal/constants"
	"github.com/thewebvalue/task-management-api/internal/models"
	"github.com/thewebvalue/task-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken          = errors.New("user with this email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPasswordTooShort    = fmt.Errorf("password must be at least %d characters long", constants.MinPasswordLength)
	ErrFullNameRequired    = errors.New("full name is required")
	ErrInvalidRole         = errors.New("role must be either admin or employee")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserNoLongerExists  = errors.New("user no longer exists")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	users         repository.UserRepository
	tokens        *auth.TokenService
	allowedDomain string
	logger        *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, allowedDomain string, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:         users,
		tokens:        tokens,
		allowedDomain: allowedDomain,
		logger:        logger,
	}
}

// LoginResult is the authenticated user and a fresh token pair.
type LoginResult struct {
	User   *models.User
	Tokens auth.TokenPair
}

// CreateUserInput represents the required information to create a new user.
type CreateUserInput struct {
	Email    string
	Password string
	FullName string
	Role     models.Role
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = auth.NormalizeEmail(email)
	if err := auth.CheckEmailDomain(email, s.allowedDomain); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{User: user, Tokens: tokens}, nil
}

// CreateUser creates an account. Only admins may call it.
func (s *AuthService) CreateUser(ctx context.Context, identity *auth.Identity, input CreateUserInput) (*models.User, error) {
	if err := auth.Authorize(identity, auth.ActionAdminOnly, auth.Resource{}); err != nil {
		return nil, err
	}
	return s.createUser(ctx, input)
}

// BootstrapAdmin creates an admin account unless one with email already
// exists. It reports whether a user was created.
func (s *AuthService) BootstrapAdmin(ctx context.Context, email, password, fullName string) (bool, error) {
	_, err := s.users.FindByEmail(ctx, auth.NormalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check bootstrap admin: %w", err)
	}

	user, err := s.createUser(ctx, CreateUserInput{
		Email:    email,
		Password: password,
		FullName: fullName,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return false, err
	}

	s.logger.InfoContext(ctx, "bootstrap admin created", "user_id", user.ID, "email", user.Email)
	return true, nil
}

// Refresh exchanges a refresh token for a new pair. The user is re-read so the
// new tokens carry the current role.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	result := s.tokens.VerifyRefresh(refreshToken)
	if !result.Valid {
		return auth.TokenPair{}, ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, result.Identity.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.TokenPair{}, ErrUserNoLongerExists
		}
		return auth.TokenPair{}, fmt.Errorf("failed to find user: %w", err)
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return tokens, nil
}

// GetProfile returns the stored user behind identity.
func (s *AuthService) GetProfile(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	if identity == nil || identity.ID == 0 {
		return nil, auth.ErrNotAuthenticated
	}

	user, err := s.users.FindByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := auth.NormalizeEmail(input.Email)
	if err := auth.CheckEmailDomain(email, s.allowedDomain); err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, ErrFullNameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         input.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
