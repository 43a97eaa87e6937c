package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/thewebvalue/task-management-api/internal/models"
)

// Identity is the claim set carried by both access and refresh tokens.
type Identity struct {
	ID    uint64      `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// IdentityOf builds the token identity for a stored user.
func IdentityOf(user *models.User) Identity {
	return Identity{ID: user.ID, Email: user.Email, Role: user.Role}
}

type tokenClaims struct {
	Identity
	jwt.RegisteredClaims
}

// TokenPair is returned on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// VerifyResult is the outcome of a token check. Valid and Expired are never
// both true, and Identity is only set when Valid is true.
type VerifyResult struct {
	Valid    bool
	Expired  bool
	Identity *Identity
}

// TokenConfig holds signing secrets and lifetimes for both token kinds.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenService issues and verifies HS256-signed tokens. It holds no state
// beyond its configuration.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenService creates a TokenService. now may be nil to use time.Now.
func NewTokenService(cfg TokenConfig, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           now,
	}
}

// IssuePair signs an access and a refresh token for user.
func (s *TokenService) IssuePair(user *models.User) (TokenPair, error) {
	identity := IdentityOf(user)

	access, err := s.sign(identity, s.accessSecret, s.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.sign(identity, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) VerifyAccess(token string) VerifyResult {
	return s.verify(token, s.accessSecret)
}

func (s *TokenService) VerifyRefresh(token string) VerifyResult {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenService) sign(identity Identity, secret []byte, ttl time.Duration) (string, error) {
	issuedAt := s.now()
	claims := tokenClaims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// verify fails closed: any parse, signature or claim problem yields Valid=false.
// Expired is only reported for tokens whose signature checked out.
func (s *TokenService) verify(token string, secret []byte) VerifyResult {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return VerifyResult{Expired: errors.Is(err, jwt.ErrTokenExpired)}
	}
	if !parsed.Valid || claims.Identity.ID == 0 || !claims.Identity.Role.Valid() {
		return VerifyResult{}
	}

	identity := claims.Identity
	return VerifyResult{Valid: true, Identity: &identity}
}
