package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thewebvalue/task-management-api/internal/testfixtures"
)

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "bob@company.com",
		"password": testfixtures.DefaultPassword,
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Login successful", body["message"])
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Bob Builder", user["full_name"])
	assert.NotContains(t, user, "password_hash")

	// the issued token opens protected routes
	w = env.do(http.MethodGet, "/api/auth/profile", body["access_token"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob@company.com", decodeBody(t, w)["email"])
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name    string
		payload map[string]string
		code    int
		message string
	}{
		{"wrong password", map[string]string{"email": "bob@company.com", "password": "nope"}, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown user", map[string]string{"email": "zed@company.com", "password": "whatever"}, http.StatusUnauthorized, "Invalid credentials"},
		{"foreign domain", map[string]string{"email": "bob@gmail.com", "password": "whatever"}, http.StatusBadRequest, "Only company.com email addresses are allowed"},
		{"missing password", map[string]string{"email": "bob@company.com"}, http.StatusBadRequest, "Valid email and password are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/auth/login", "", tt.payload)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.message, decodeBody(t, w)["message"])
		})
	}

	t.Run("binding details", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "INVALID_INPUT", body["code"])
		assert.ElementsMatch(t, []interface{}{
			map[string]interface{}{"field": "Email", "rule": "email"},
			map[string]interface{}{"field": "Password", "rule": "required"},
		}, body["details"])
	})
}

func TestAuthHandler_CreateUser(t *testing.T) {
	env := setupTestEnv(t)
	payload := map[string]string{
		"email":     "dave@company.com",
		"password":  "secret1",
		"full_name": "Dave",
		"role":      "employee",
	}

	w := env.do(http.MethodPost, "/api/auth/users", env.tokenFor(env.bob), payload)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", decodeBody(t, w)["message"])

	w = env.do(http.MethodPost, "/api/auth/users", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/auth/users", env.tokenFor(env.admin), payload)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "User created successfully", body["message"])
	assert.Equal(t, "dave@company.com", body["user"].(map[string]interface{})["email"])

	// same account through the admin alias
	w = env.do(http.MethodPost, "/api/admin/users", env.tokenFor(env.admin), payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User with this email already exists", decodeBody(t, w)["message"])

	payload["email"] = "erin@company.com"
	payload["role"] = "manager"
	w = env.do(http.MethodPost, "/api/admin/users", env.tokenFor(env.admin), payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	env := setupTestEnv(t)
	pair, err := env.tokens.IssuePair(env.bob)
	require.NoError(t, err)

	w := env.do(http.MethodPost, "/api/auth/refresh-token", "", map[string]string{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])

	w = env.do(http.MethodPost, "/api/auth/refresh-token", "", map[string]string{"refresh_token": pair.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired refresh token", decodeBody(t, w)["message"])

	w = env.do(http.MethodPost, "/api/auth/refresh-token", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Refresh token is required", decodeBody(t, w)["message"])
}
