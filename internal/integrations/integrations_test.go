package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thewebvalue/task-management-api/internal/models"
)

var testDeadline = time.Date(2026, 7, 1, 15, 0, 0, 0, time.UTC)

func testTask() *models.Task {
	return &models.Task{
		ID:          7,
		Title:       "Quarterly report",
		Description: "Compile the Q2 numbers",
		Deadline:    testDeadline,
		Status:      models.TaskStatusNotStarted,
		Notes:       "Use the new template",
		UpdatedAt:   testDeadline.Add(-time.Hour),
	}
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

func recordingServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &rec.Body))
		}
		mu.Lock()
		requests = append(requests, rec)
		mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestGoogleCalendar_CreateEvent(t *testing.T) {
	srv, requests := recordingServer(t, http.StatusOK, `{"id":"g-123"}`)
	cal := NewGoogleCalendarWithClient(srv.Client(), srv.URL, "")

	id, err := cal.CreateEvent(context.Background(), EventForTask(testTask(), "bob@company.com"))
	require.NoError(t, err)
	assert.Equal(t, "g-123", id)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/calendars/primary/events", req.Path)
	assert.Equal(t, "sendUpdates=all", req.Query)
	assert.Equal(t, "Quarterly report", req.Body["summary"])
	assert.Equal(t, "2026-07-01T15:00:00Z", req.Body["start"].(map[string]any)["dateTime"])
	assert.Equal(t, "2026-07-01T16:00:00Z", req.Body["end"].(map[string]any)["dateTime"])
	attendees := req.Body["attendees"].([]any)
	assert.Equal(t, "bob@company.com", attendees[0].(map[string]any)["email"])
}

func TestGoogleCalendar_UpdateAndDelete(t *testing.T) {
	srv, requests := recordingServer(t, http.StatusOK, `{}`)
	cal := NewGoogleCalendarWithClient(srv.Client(), srv.URL, "team@group.calendar.google.com")

	title := "[COMPLETED] Quarterly report"
	require.NoError(t, cal.UpdateEvent(context.Background(), "g-123", CalendarEventUpdate{Title: &title}))
	require.NoError(t, cal.DeleteEvent(context.Background(), "g-123"))

	require.Len(t, *requests, 2)
	assert.Equal(t, http.MethodPatch, (*requests)[0].Method)
	assert.Equal(t, "/calendars/team@group.calendar.google.com/events/g-123", (*requests)[0].Path)
	assert.Equal(t, title, (*requests)[0].Body["summary"])
	assert.NotContains(t, (*requests)[0].Body, "start")
	assert.Equal(t, http.MethodDelete, (*requests)[1].Method)
}

func TestGoogleCalendar_DeleteGoneIsSuccess(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusGone, `{"error":"deleted"}`)
	cal := NewGoogleCalendarWithClient(srv.Client(), srv.URL, "primary")

	assert.NoError(t, cal.DeleteEvent(context.Background(), "g-1"))
}

func TestGoogleCalendar_ErrorStatus(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusForbidden, `{"error":"quota"}`)
	cal := NewGoogleCalendarWithClient(srv.Client(), srv.URL, "primary")

	_, err := cal.CreateEvent(context.Background(), EventForTask(testTask(), "bob@company.com"))
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusForbidden, perr.StatusCode)
	assert.Equal(t, models.CalendarProviderGoogle, perr.Provider)
}

func TestMicrosoftCalendar_CreateEvent(t *testing.T) {
	srv, requests := recordingServer(t, http.StatusCreated, `{"id":"ms-9"}`)
	cal := NewMicrosoftCalendarWithClient(srv.Client(), srv.URL)

	id, err := cal.CreateEvent(context.Background(), EventForTask(testTask(), "bob@company.com"))
	require.NoError(t, err)
	assert.Equal(t, "ms-9", id)

	req := (*requests)[0]
	assert.Equal(t, "/me/events", req.Path)
	assert.Equal(t, "Quarterly report", req.Body["subject"])
	assert.Equal(t, "2026-07-01T15:00:00", req.Body["start"].(map[string]any)["dateTime"])
	assert.Equal(t, true, req.Body["isReminderOn"])
	attendee := req.Body["attendees"].([]any)[0].(map[string]any)
	assert.Equal(t, "required", attendee["type"])
}

func TestMicrosoftCalendar_MissingIDIsError(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusCreated, `{}`)
	cal := NewMicrosoftCalendarWithClient(srv.Client(), srv.URL)

	_, err := cal.CreateEvent(context.Background(), EventForTask(testTask(), ""))
	assert.Error(t, err)
}

type stubCalendar struct {
	provider string
	id       string
	err      error
	delay    time.Duration
	calls    atomic.Int32
	updated  map[string]CalendarEventUpdate
	mu       sync.Mutex
}

func (s *stubCalendar) Provider() string { return s.provider }

func (s *stubCalendar) CreateEvent(ctx context.Context, _ CalendarEvent) (string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.id, s.err
}

func (s *stubCalendar) UpdateEvent(_ context.Context, id string, update CalendarEventUpdate) error {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updated == nil {
		s.updated = map[string]CalendarEventUpdate{}
	}
	s.updated[id] = update
	return s.err
}

func (s *stubCalendar) DeleteEvent(context.Context, string) error {
	s.calls.Add(1)
	return s.err
}

func TestCalendarSet_CreateEventsIsolatesFailures(t *testing.T) {
	google := &stubCalendar{provider: models.CalendarProviderGoogle, id: "g-1"}
	microsoft := &stubCalendar{provider: models.CalendarProviderMicrosoft, err: errors.New("graph down")}
	set := NewCalendarSet(google, nil, microsoft)

	assert.Equal(t, []string{"google", "microsoft"}, set.Providers())

	results := set.CreateEvents(context.Background(), EventForTask(testTask(), "bob@company.com"))
	require.Len(t, results, 2)
	assert.Equal(t, ProviderResult{Provider: "google", ExternalID: "g-1"}, results[0])
	assert.Equal(t, "microsoft", results[1].Provider)
	assert.EqualError(t, results[1].Err, "graph down")
}

func TestCalendarSet_UpdateOnlyLinkedProviders(t *testing.T) {
	google := &stubCalendar{provider: models.CalendarProviderGoogle}
	microsoft := &stubCalendar{provider: models.CalendarProviderMicrosoft}
	set := NewCalendarSet(google, microsoft)

	title := "renamed"
	results := set.UpdateEvents(context.Background(), map[string]string{"microsoft": "ms-1"}, CalendarEventUpdate{Title: &title})

	require.Len(t, results, 1)
	assert.Equal(t, "ms-1", results[0].ExternalID)
	assert.Equal(t, int32(0), google.calls.Load())
	assert.Equal(t, &title, microsoft.updated["ms-1"].Title)
}

func TestCalendarSet_Empty(t *testing.T) {
	var set *CalendarSet
	assert.True(t, set.Empty())
	assert.Nil(t, set.CreateEvents(context.Background(), CalendarEvent{}))
	assert.Empty(t, NewCalendarSet().DeleteEvents(context.Background(), map[string]string{"google": "x"}))
}

func TestResilientCalendar_Timeout(t *testing.T) {
	slow := &stubCalendar{provider: "google", id: "late", delay: 500 * time.Millisecond}
	cal := NewResilientCalendar(slow, ResilienceConfig{Timeout: 20 * time.Millisecond, FailureThreshold: 3})

	start := time.Now()
	_, err := cal.CreateEvent(context.Background(), CalendarEvent{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestResilientCalendar_BreakerOpens(t *testing.T) {
	failing := &stubCalendar{provider: "microsoft", err: errors.New("503")}
	cal := NewResilientCalendar(failing, ResilienceConfig{
		Timeout:          time.Second,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
	})

	for i := 0; i < 2; i++ {
		_, err := cal.CreateEvent(context.Background(), CalendarEvent{})
		assert.EqualError(t, err, "503")
	}

	_, err := cal.CreateEvent(context.Background(), CalendarEvent{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), failing.calls.Load())
	assert.Equal(t, "microsoft", cal.Provider())
}

type stubNotifier struct {
	err   error
	calls int
}

func (s *stubNotifier) Send(context.Context, NotificationKind, *models.Task, *models.User, *models.User) error {
	s.calls++
	return s.err
}

func TestResilientNotifier_PassesThrough(t *testing.T) {
	inner := &stubNotifier{}
	n := NewResilientNotifier(inner, ResilienceConfig{Timeout: time.Second})

	require.NoError(t, n.Send(context.Background(), NotificationAssignment, testTask(), &models.User{}, nil))
	assert.Equal(t, 1, inner.calls)
}

func TestComposeNotification(t *testing.T) {
	bob := &models.User{FullName: "Bob Builder", Email: "bob@company.com"}
	alice := &models.User{FullName: "Alice <Admin>", Email: "alice@company.com"}

	subject, body, err := ComposeNotification(NotificationAssignment, testTask(), bob, alice)
	require.NoError(t, err)
	assert.Equal(t, "New Task Assigned: Quarterly report", subject)
	assert.Contains(t, body, "Hello Bob Builder")
	assert.Contains(t, body, "by Alice &lt;Admin&gt;")
	assert.Contains(t, body, "Use the new template")
	assert.Contains(t, body, "Wed, 01 Jul 2026 15:00:00 UTC")

	subject, body, err = ComposeNotification(NotificationReminder, testTask(), bob, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(subject, "Task Reminder"))
	assert.Contains(t, body, "NOT_STARTED")

	subject, body, err = ComposeNotification(NotificationStatusUpdate, testTask(), alice, bob)
	require.NoError(t, err)
	assert.Equal(t, "Task Status Update: Quarterly report", subject)
	assert.Contains(t, body, "Bob Builder has updated")

	_, _, err = ComposeNotification("fax", testTask(), bob, nil)
	assert.Error(t, err)
	_, _, err = ComposeNotification(NotificationAssignment, testTask(), nil, nil)
	assert.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(nil)
	assert.NoError(t, n.Send(context.Background(), NotificationReminder, testTask(), &models.User{Email: "bob@company.com"}, nil))
}
