package integrations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/thewebvalue/task-management-api/internal/models"
)

// ResilienceConfig bounds every adapter call with a timeout and trips a
// circuit breaker after consecutive failures.
type ResilienceConfig struct {
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
	Logger           *slog.Logger
}

func newBreaker(name string, cfg ResilienceConfig) *gobreaker.CircuitBreaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("adapter circuit breaker changed state",
				"adapter", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

// guardedCall runs fn through breaker with a deadline. The caller is released
// when the deadline passes even if fn ignores its context.
func guardedCall(ctx context.Context, breaker *gobreaker.CircuitBreaker, timeout time.Duration, fn func(context.Context) (any, error)) (any, error) {
	return breaker.Execute(func() (interface{}, error) {
		if timeout <= 0 {
			return fn(ctx)
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		type outcome struct {
			value any
			err   error
		}
		done := make(chan outcome, 1)
		go func() {
			v, err := fn(callCtx)
			done <- outcome{value: v, err: err}
		}()

		select {
		case out := <-done:
			return out.value, out.err
		case <-callCtx.Done():
			return nil, fmt.Errorf("%s: %w", breaker.Name(), callCtx.Err())
		}
	})
}

type resilientCalendar struct {
	inner   CalendarAdapter
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

// NewResilientCalendar wraps inner with a timeout and circuit breaker.
func NewResilientCalendar(inner CalendarAdapter, cfg ResilienceConfig) CalendarAdapter {
	return &resilientCalendar{
		inner:   inner,
		breaker: newBreaker("calendar."+inner.Provider(), cfg),
		timeout: cfg.Timeout,
	}
}

func (r *resilientCalendar) Provider() string {
	return r.inner.Provider()
}

func (r *resilientCalendar) CreateEvent(ctx context.Context, event CalendarEvent) (string, error) {
	out, err := guardedCall(ctx, r.breaker, r.timeout, func(ctx context.Context) (any, error) {
		return r.inner.CreateEvent(ctx, event)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (r *resilientCalendar) UpdateEvent(ctx context.Context, externalID string, update CalendarEventUpdate) error {
	_, err := guardedCall(ctx, r.breaker, r.timeout, func(ctx context.Context) (any, error) {
		return nil, r.inner.UpdateEvent(ctx, externalID, update)
	})
	return err
}

func (r *resilientCalendar) DeleteEvent(ctx context.Context, externalID string) error {
	_, err := guardedCall(ctx, r.breaker, r.timeout, func(ctx context.Context) (any, error) {
		return nil, r.inner.DeleteEvent(ctx, externalID)
	})
	return err
}

type resilientNotifier struct {
	inner   Notifier
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

// NewResilientNotifier wraps inner with a timeout and circuit breaker.
func NewResilientNotifier(inner Notifier, cfg ResilienceConfig) Notifier {
	return &resilientNotifier{
		inner:   inner,
		breaker: newBreaker("notifier", cfg),
		timeout: cfg.Timeout,
	}
}

func (r *resilientNotifier) Send(ctx context.Context, kind NotificationKind, task *models.Task, recipient, actor *models.User) error {
	_, err := guardedCall(ctx, r.breaker, r.timeout, func(ctx context.Context) (any, error) {
		return nil, r.inner.Send(ctx, kind, task, recipient, actor)
	})
	return err
}
