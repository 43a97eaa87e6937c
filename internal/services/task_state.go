package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/thewebvalue/task-management-api/internal/models"
)

var ErrInvalidStatus = errors.New("invalid task status")

// TaskStateMachine validates status writes. Every enumerated status is
// reachable from every other, COMPLETED included; only values outside the
// enumeration are rejected.
type TaskStateMachine struct{}

// Validate rejects statuses outside the enumeration.
func (TaskStateMachine) Validate(to models.TaskStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	return nil
}

// Transition sets task's status and stamps UpdatedAt with at. It returns the
// previous status. task is left untouched on error.
func (m TaskStateMachine) Transition(task *models.Task, to models.TaskStatus, at time.Time) (models.TaskStatus, error) {
	if err := m.Validate(to); err != nil {
		return "", err
	}
	from := task.Status
	task.Status = to
	task.UpdatedAt = at
	return from, nil
}
