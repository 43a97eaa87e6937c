package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thewebvalue/task-management-api/internal/config"
	"github.com/thewebvalue/task-management-api/internal/handlers"
)

func TestRun_ReturnsConfigError(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported DB_DRIVER "oracle"`)
}

func TestNewRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("RATE_LIMIT_REQUESTS", "0")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := newRouter(config.Load(), logger, handlers.Services{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
