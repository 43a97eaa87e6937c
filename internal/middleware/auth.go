package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thewebvalue/task-management-api/internal/auth"
	"github.com/thewebvalue/task-management-api/internal/constants"
	apierrors "github.com/thewebvalue/task-management-api/internal/errors"
)

// RequireAuth checks the bearer access token and stores the caller's identity
func RequireAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apierrors.Unauthorized(c, "Authentication token is required")
			return
		}

		result := tokens.VerifyAccess(token)
		if !result.Valid {
			if result.Expired {
				apierrors.TokenExpired(c)
				return
			}
			apierrors.Unauthorized(c, "Invalid token")
			return
		}

		// Store identity in context for easy access in handlers
		c.Set(constants.ContextKeyIdentity, result.Identity)
		c.Set(constants.ContextKeyUserID, result.Identity.ID)
		c.Next()
	}
}

// RequireAdmin rejects callers whose token does not carry the admin role.
// It must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		if !identity.IsAdmin() {
			apierrors.Forbidden(c, "Admin access required")
			return
		}
		c.Next()
	}
}

// GetIdentity retrieves the authenticated identity from context
func GetIdentity(c *gin.Context) (*auth.Identity, bool) {
	value, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*auth.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
