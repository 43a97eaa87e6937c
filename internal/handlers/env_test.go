package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/thewebvalue/task-management-api/internal/auth"
	"github.com/thewebvalue/task-management-api/internal/integrations"
	"github.com/thewebvalue/task-management-api/internal/models"
	"github.com/thewebvalue/task-management-api/internal/repository"
	"github.com/thewebvalue/task-management-api/internal/services"
	"github.com/thewebvalue/task-management-api/internal/testfixtures"
	"gorm.io/gorm"
)

type testEnv struct {
	t        *testing.T
	db       *gorm.DB
	clock    *testfixtures.Clock
	tokens   *auth.TokenService
	google   *testfixtures.FakeCalendar
	notifier *testfixtures.FakeNotifier
	router   *gin.Engine

	admin *models.User
	alice *models.User
	bob   *models.User
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testfixtures.OpenSQLite(t)
	store := repository.NewStore(db)
	clock := testfixtures.NewClock(time.Time{})
	tokens := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  "handler-access",
		RefreshSecret: "handler-refresh",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}, clock.Now)
	google := testfixtures.NewFakeCalendar(models.CalendarProviderGoogle)
	notifier := testfixtures.NewFakeNotifier()

	svc := Services{
		Tokens: tokens,
		Auth:   services.NewAuthService(store.Users(), tokens, "company.com", nil),
		Tasks: services.NewTaskService(services.TaskServiceDeps{
			Store:     store,
			Calendars: integrations.NewCalendarSet(google),
			Notifier:  notifier,
			Now:       clock.Now,
		}),
		Admin: services.NewAdminService(store, clock.Now),
	}

	router := gin.New()
	router.GET("/health", Health)
	RegisterRoutes(router.Group("/api"), svc)

	return &testEnv{
		t:        t,
		db:       db,
		clock:    clock,
		tokens:   tokens,
		google:   google,
		notifier: notifier,
		router:   router,
		admin:    testfixtures.CreateUser(t, db, "admin@company.com", "Admin", models.RoleAdmin),
		alice:    testfixtures.CreateUser(t, db, "alice@company.com", "Alice Manager", models.RoleEmployee),
		bob:      testfixtures.CreateUser(t, db, "bob@company.com", "Bob Builder", models.RoleEmployee),
	}
}

// tokenFor issues an access token for user.
func (e *testEnv) tokenFor(user *models.User) string {
	e.t.Helper()
	pair, err := e.tokens.IssuePair(user)
	require.NoError(e.t, err)
	return pair.AccessToken
}

// do sends a JSON request through the router. token may be empty.
func (e *testEnv) do(method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	e.t.Helper()

	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(e.t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// createTask creates a task through the API and returns its ID.
func (e *testEnv) createTask(by, to *models.User, deadline time.Time) uint64 {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/tasks", e.tokenFor(by), map[string]interface{}{
		"title":       "Prepare quarterly report",
		"assigned_to": to.ID,
		"deadline":    deadline.Format(time.RFC3339),
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	task := decodeBody(e.t, w)["task"].(map[string]interface{})
	return uint64(task["id"].(float64))
}
