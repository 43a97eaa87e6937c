package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminHandler_RequiresAdmin(t *testing.T) {
	env := setupTestEnv(t)

	for _, path := range []string{"/api/admin/users", "/api/admin/analytics", "/api/admin/export?type=users"} {
		w := env.do(http.MethodGet, path, env.tokenFor(env.bob), nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)

		w = env.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAdminHandler_ListUsers(t *testing.T) {
	env := setupTestEnv(t)
	env.createTask(env.alice, env.bob, env.clock.Now().Add(time.Hour))

	w := env.do(http.MethodGet, "/api/admin/users", env.tokenFor(env.admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	users := decodeBody(t, w)["users"].([]interface{})
	require.Len(t, users, 3)
	for _, u := range users {
		user := u.(map[string]interface{})
		if user["email"] == "bob@company.com" {
			assert.Equal(t, float64(1), user["assigned_tasks_count"])
			assert.Equal(t, float64(0), user["completed_tasks_count"])
		}
	}
}

func TestAdminHandler_PerformanceAndAnalytics(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.tokenFor(env.admin)
	scorePath := fmt.Sprintf("/api/admin/users/%d/performance", env.bob.ID)

	w := env.do(http.MethodPost, scorePath, admin, map[string]interface{}{"score": 150, "month": "2026-05-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Score must be between 0 and 100", decodeBody(t, w)["message"])

	w = env.do(http.MethodPost, scorePath, admin, map[string]interface{}{"score": 80, "month": "2026-09-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/admin/users/999/performance", admin, map[string]interface{}{"score": 80, "month": "2026-05-01"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, score := range []int{70, 88} {
		w = env.do(http.MethodPost, scorePath, admin, map[string]interface{}{"score": score, "month": "2026-05-01", "notes": "review"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	saved := decodeBody(t, w)["performance_score"].(map[string]interface{})
	assert.Equal(t, float64(88), saved["score"])
	assert.Equal(t, "2026-05-01", saved["month"])

	w = env.do(http.MethodGet, fmt.Sprintf("/api/admin/users/%d/analytics", env.bob.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["performance_history"], 1)
	assert.Contains(t, body, "stats")
	assert.Equal(t, "bob@company.com", body["user"].(map[string]interface{})["email"])

	w = env.do(http.MethodGet, "/api/admin/analytics", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, float64(3), body["user_statistics"].(map[string]interface{})["total_users"])
	top := body["top_performers"].([]interface{})
	require.NotEmpty(t, top)
	assert.Equal(t, "Bob Builder", top[0].(map[string]interface{})["full_name"])
}

func TestAdminHandler_PerformanceHistoryOwnerOrAdmin(t *testing.T) {
	env := setupTestEnv(t)
	path := fmt.Sprintf("/api/users/%d/performance", env.bob.ID)

	w := env.do(http.MethodGet, path, env.tokenFor(env.bob), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, path, env.tokenFor(env.admin), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, path, env.tokenFor(env.alice), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminHandler_Export(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.tokenFor(env.admin)
	env.createTask(env.alice, env.bob, env.clock.Now().Add(time.Hour))

	w := env.do(http.MethodGet, "/api/admin/export?type=tasks", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "tasks", body["type"])
	assert.Len(t, body["data"], 1)

	w = env.do(http.MethodGet, "/api/admin/export?type=users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["data"], 3)

	w = env.do(http.MethodGet, "/api/admin/export?type=performance", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w)["data"])

	w = env.do(http.MethodGet, "/api/admin/export?type=salaries", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid export type", decodeBody(t, w)["message"])

	w = env.do(http.MethodGet, "/api/admin/export?type=tasks&startDate=2026-06-10&endDate=2026-06-01", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
