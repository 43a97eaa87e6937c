package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ReminderScheduler periodically emails assignees of tasks whose deadline is
// within the lookahead window. Each run starts where the previous window ended,
// so a task is reminded at most once per process.
type ReminderScheduler struct {
	tasks     *TaskService
	interval  time.Duration
	lookahead time.Duration
	logger    *slog.Logger

	mu   sync.Mutex
	edge time.Time
}

func NewReminderScheduler(tasks *TaskService, interval, lookahead time.Duration, logger *slog.Logger) *ReminderScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderScheduler{
		tasks:     tasks,
		interval:  interval,
		lookahead: lookahead,
		logger:    logger,
	}
}

// Tick sends the reminders due since the previous tick.
func (r *ReminderScheduler) Tick(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from := r.tasks.now().UTC()
	to := from.Add(r.lookahead)
	if r.edge.After(from) {
		from = r.edge
	}
	if !to.After(from) {
		return 0, nil
	}

	sent, err := r.tasks.SendReminders(ctx, from, to)
	if err != nil {
		return 0, err
	}
	r.edge = to
	return sent, nil
}

// Run ticks every interval until ctx is cancelled.
func (r *ReminderScheduler) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *ReminderScheduler) runOnce(ctx context.Context) {
	sent, err := r.Tick(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "reminder run failed", "error", err)
		return
	}
	if sent > 0 {
		r.logger.InfoContext(ctx, "deadline reminders sent", "count", sent)
	}
}
