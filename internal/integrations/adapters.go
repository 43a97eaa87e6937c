// Package integrations holds the boundary adapters for third-party calendars
// and email delivery. Callers treat every adapter call as best-effort.
package integrations

import (
	"context"
	"time"

	"github.com/thewebvalue/task-management-api/internal/models"
)

// CalendarEvent is the provider-neutral shape of an event to create.
type CalendarEvent struct {
	Title         string
	Description   string
	Start         time.Time
	End           time.Time
	AttendeeEmail string
}

// CalendarEventUpdate carries the fields to patch. Nil fields are left untouched.
type CalendarEventUpdate struct {
	Title       *string
	Description *string
	Start       *time.Time
	End         *time.Time
}

// CalendarAdapter creates and maintains events in a single external calendar.
type CalendarAdapter interface {
	Provider() string
	CreateEvent(ctx context.Context, event CalendarEvent) (string, error)
	UpdateEvent(ctx context.Context, externalID string, update CalendarEventUpdate) error
	DeleteEvent(ctx context.Context, externalID string) error
}

type NotificationKind string

const (
	NotificationAssignment   NotificationKind = "assignment"
	NotificationReminder     NotificationKind = "reminder"
	NotificationStatusUpdate NotificationKind = "status_update"
)

// Notifier delivers a task notification to recipient. actor is the user whose
// action caused it and may be nil for system-initiated reminders.
type Notifier interface {
	Send(ctx context.Context, kind NotificationKind, task *models.Task, recipient, actor *models.User) error
}

// EventDuration is the length of calendar events created for task deadlines.
const EventDuration = time.Hour

// EventForTask builds the calendar event for a task deadline.
func EventForTask(task *models.Task, attendeeEmail string) CalendarEvent {
	return CalendarEvent{
		Title:         task.Title,
		Description:   task.Description,
		Start:         task.Deadline,
		End:           task.Deadline.Add(EventDuration),
		AttendeeEmail: attendeeEmail,
	}
}
