package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thewebvalue/task-management-api/internal/auth"
	"github.com/thewebvalue/task-management-api/internal/constants"
	"github.com/thewebvalue/task-management-api/internal/models"
	"github.com/thewebvalue/task-management-api/internal/testfixtures"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens(clock *testfixtures.Clock) *auth.TokenService {
	return auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	}, clock.Now)
}

func protectedRouter(tokens *auth.TokenService, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers := append([]gin.HandlerFunc{RequireAuth(tokens)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		identity, _ := GetIdentity(c)
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"email": identity.Email, "user_id": userID})
	})
	router.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequireAuth(t *testing.T) {
	clock := testfixtures.NewClock(time.Time{})
	tokens := newTokens(clock)
	router := protectedRouter(tokens)

	user := &models.User{ID: 7, Email: "bob@company.com", Role: models.RoleEmployee}
	pair, err := tokens.IssuePair(user)
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "bob@company.com", body["email"])
	assert.Equal(t, float64(7), body["user_id"])

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "Authentication token is required"},
		{"wrong scheme", "Basic abc", "Authentication token is required"},
		{"empty bearer", "Bearer ", "Authentication token is required"},
		{"garbage token", "Bearer abc.def.ghi", "Invalid token"},
		{"refresh token", "Bearer " + pair.RefreshToken, "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.message, decode(t, w)["message"])
		})
	}

	clock.Advance(time.Hour)
	w = doRequest(router, "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Token has expired", body["message"])
	assert.Equal(t, "TOKEN_EXPIRED", body["code"])
}

func TestRequireAdmin(t *testing.T) {
	clock := testfixtures.NewClock(time.Time{})
	tokens := newTokens(clock)
	router := protectedRouter(tokens, RequireAdmin())

	employee, err := tokens.IssuePair(&models.User{ID: 2, Email: "e@company.com", Role: models.RoleEmployee})
	require.NoError(t, err)
	admin, err := tokens.IssuePair(&models.User{ID: 1, Email: "a@company.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+employee.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", decode(t, w)["message"])

	w = doRequest(router, "Bearer "+admin.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(2, time.Minute)
	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// another client has its own bucket
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestIPRateLimiter_DisabledAndSweep(t *testing.T) {
	off := NewIPRateLimiter(0, time.Minute)
	for i := 0; i < 10; i++ {
		assert.True(t, off.Allow("1.2.3.4"))
	}

	clock := testfixtures.NewClock(time.Time{})
	limiter := NewIPRateLimiter(1, time.Minute)
	limiter.now = clock.Now

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))

	clock.Advance(2 * time.Minute)
	assert.True(t, limiter.Allow("b"))
	assert.NotContains(t, limiter.clients, "a")
}

func TestRequestLogger(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger(nil))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.ContextKeyRequestID))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(constants.HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderRequestID, "trace-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "trace-123", w.Header().Get(constants.HeaderRequestID))
}
