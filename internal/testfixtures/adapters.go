package testfixtures

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thewebvalue/task-management-api/internal/integrations"
	"github.com/thewebvalue/task-management-api/internal/models"
)

// ErrAdapterDown is the default failure returned by fakes set to fail.
var ErrAdapterDown = errors.New("adapter unavailable")

// FakeCalendar is an in-memory CalendarAdapter. Failures and latency are
// configurable per instance.
type FakeCalendar struct {
	ProviderName string
	Delay        time.Duration

	mu      sync.Mutex
	err     error
	nextID  int
	events  map[string]integrations.CalendarEvent
	created int
	updates map[string][]integrations.CalendarEventUpdate
	deleted []string
}

func NewFakeCalendar(provider string) *FakeCalendar {
	return &FakeCalendar{
		ProviderName: provider,
		events:       make(map[string]integrations.CalendarEvent),
		updates:      make(map[string][]integrations.CalendarEventUpdate),
	}
}

// Fail makes every later call return err. A nil err restores success.
func (f *FakeCalendar) Fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *FakeCalendar) Provider() string {
	return f.ProviderName
}

func (f *FakeCalendar) CreateEvent(ctx context.Context, event integrations.CalendarEvent) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	if f.err != nil {
		return "", f.err
	}
	f.nextID++
	id := fmt.Sprintf("%s-%d", f.ProviderName, f.nextID)
	f.events[id] = event
	return id, nil
}

func (f *FakeCalendar) UpdateEvent(ctx context.Context, externalID string, update integrations.CalendarEventUpdate) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[externalID] = append(f.updates[externalID], update)
	return f.err
}

func (f *FakeCalendar) DeleteEvent(ctx context.Context, externalID string) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, externalID)
	if f.err != nil {
		return f.err
	}
	delete(f.events, externalID)
	return nil
}

func (f *FakeCalendar) wait(ctx context.Context) error {
	if f.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(f.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CreateCalls counts CreateEvent invocations, failed ones included.
func (f *FakeCalendar) CreateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

// Event returns the stored event for id.
func (f *FakeCalendar) Event(id string) (integrations.CalendarEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[id]
	return ev, ok
}

func (f *FakeCalendar) Updates(id string) []integrations.CalendarEventUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]integrations.CalendarEventUpdate(nil), f.updates[id]...)
}

func (f *FakeCalendar) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// SentNotification records one Send call.
type SentNotification struct {
	Kind      integrations.NotificationKind
	TaskID    uint64
	Status    models.TaskStatus
	Recipient string
	Actor     string
}

// FakeNotifier records notifications instead of delivering them.
type FakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []SentNotification
}

func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{}
}

// Fail makes every later Send return err. Calls are still recorded.
func (f *FakeNotifier) Fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *FakeNotifier) Send(_ context.Context, kind integrations.NotificationKind, task *models.Task, recipient, actor *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := SentNotification{Kind: kind, TaskID: task.ID, Status: task.Status, Recipient: recipient.Email}
	if actor != nil {
		n.Actor = actor.Email
	}
	f.sent = append(f.sent, n)
	return f.err
}

func (f *FakeNotifier) Sent() []SentNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentNotification(nil), f.sent...)
}
