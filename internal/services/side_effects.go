package services

import (
	"context"
	"log/slog"

	"github.com/thewebvalue/task-management-api/internal/integrations"
)

// SideEffect reports the outcome of one best-effort adapter call made after
// (or alongside) a committed database change. A failed side effect never
// fails the operation that triggered it.
type SideEffect struct {
	Name      string `json:"name"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

func newSideEffect(name string, err error) SideEffect {
	effect := SideEffect{Name: name, Succeeded: err == nil}
	if err != nil {
		effect.Error = err.Error()
	}
	return effect
}

func calendarEffects(action string, results []integrations.ProviderResult) []SideEffect {
	effects := make([]SideEffect, 0, len(results))
	for _, r := range results {
		effects = append(effects, newSideEffect("calendar."+r.Provider+"."+action, r.Err))
	}
	return effects
}

// EffectSink receives side-effect outcomes for observability.
type EffectSink interface {
	Record(ctx context.Context, operation string, taskID uint64, effects []SideEffect)
}

// LogSink writes side-effect outcomes to a structured logger. Failures are
// logged at warn level, successes at debug.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(ctx context.Context, operation string, taskID uint64, effects []SideEffect) {
	for _, e := range effects {
		if e.Succeeded {
			s.logger.DebugContext(ctx, "side effect succeeded",
				"operation", operation,
				"task_id", taskID,
				"effect", e.Name,
			)
			continue
		}
		s.logger.WarnContext(ctx, "side effect failed",
			"operation", operation,
			"task_id", taskID,
			"effect", e.Name,
			"error", e.Error,
		)
	}
}
