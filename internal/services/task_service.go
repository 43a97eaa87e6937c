package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/thewebvalue/task-management-api/internal/auth"
	"github.com/thewebvalue/task-management-api/internal/constants"
	"github.com/thewebvalue/task-management-api/internal/integrations"
	"github.com/thewebvalue/task-management-api/internal/models"
	"github.com/thewebvalue/task-management-api/internal/repository"
	"github.com/thewebvalue/task-management-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrAssigneeNotFound  = errors.New("assigned user not found")
	ErrTitleRequired     = errors.New("task title is required")
	ErrTitleTooLong      = fmt.Errorf("task title must be at most %d characters", constants.MaxTitleLength)
	ErrNotesTooLong      = fmt.Errorf("notes must be at most %d characters", constants.MaxNotesLength)
	ErrDeadlineRequired  = errors.New("valid deadline date is required")
	ErrDeadlineInPast    = errors.New("deadline cannot be in the past")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	ErrInvalidDateFilter = errors.New("end date must be after start date")
)

// completedTitlePrefix marks calendar events of completed tasks.
const completedTitlePrefix = "[COMPLETED] "

// TaskService orchestrates task writes with their calendar and email side
// effects. Database changes are atomic; adapter calls are best-effort and
// reported as SideEffects.
type TaskService struct {
	store     repository.Store
	calendars *integrations.CalendarSet
	notifier  integrations.Notifier
	sink      EffectSink
	states    TaskStateMachine
	now       func() time.Time
	logger    *slog.Logger
}

// TaskServiceDeps captures the collaborators of a TaskService. Only Store is
// required.
type TaskServiceDeps struct {
	Store     repository.Store
	Calendars *integrations.CalendarSet
	Notifier  integrations.Notifier
	Sink      EffectSink
	Now       func() time.Time
	Logger    *slog.Logger
}

func NewTaskService(deps TaskServiceDeps) *TaskService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &TaskService{
		store:     deps.Store,
		calendars: deps.Calendars,
		notifier:  deps.Notifier,
		sink:      deps.Sink,
		now:       deps.Now,
		logger:    logger,
	}
	if s.notifier == nil {
		s.notifier = integrations.NewLogNotifier(logger)
	}
	if s.sink == nil {
		s.sink = NewLogSink(logger)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// TaskResult is a committed task together with the outcome of every side
// effect attempted for it.
type TaskResult struct {
	Task        *models.Task
	SideEffects []SideEffect
}

type CreateTaskInput struct {
	Title       string
	Description string
	AssignedTo  uint64
	Deadline    time.Time
	Notes       string
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Deadline    *time.Time
	Notes       *string
}

type ListTasksInput struct {
	Status     *models.TaskStatus
	Deadline   utils.DateRange
	Pagination utils.PaginationParams
}

// CreateTask inserts the task and, in the same transaction, links the calendar
// events created for it. Calendar failures leave the task without a link; a
// database failure rolls everything back. The assignee is emailed after commit.
func (s *TaskService) CreateTask(ctx context.Context, identity *auth.Identity, input CreateTaskInput) (*TaskResult, error) {
	if identity == nil || identity.ID == 0 {
		return nil, auth.ErrNotAuthenticated
	}

	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	notes, err := validateNotes(input.Notes)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if input.Deadline.IsZero() {
		return nil, ErrDeadlineRequired
	}
	if input.Deadline.Before(now) {
		return nil, ErrDeadlineInPast
	}

	creator, err := s.loadUser(ctx, identity.ID, ErrUserNoLongerExists)
	if err != nil {
		return nil, err
	}
	assignee, err := s.loadUser(ctx, input.AssignedTo, ErrAssigneeNotFound)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		AssignedBy:  creator.ID,
		AssignedTo:  assignee.ID,
		Deadline:    input.Deadline.UTC(),
		Status:      models.TaskStatusNotStarted,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	effects := []SideEffect{}
	var externalIDs map[string]string
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Tasks().Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		results := s.calendars.CreateEvents(ctx, integrations.EventForTask(task, assignee.Email))
		effects = append(effects, calendarEffects("create", results)...)

		link := calendarLink(task.ID, results)
		if link == nil {
			return nil
		}
		externalIDs = link.EventIDs()
		if err := tx.CalendarEvents().Create(ctx, link); err != nil {
			return fmt.Errorf("failed to link calendar events: %w", err)
		}
		task.CalendarEvent = link
		return nil
	})
	if err != nil {
		if len(externalIDs) > 0 {
			s.discardEvents(ctx, task.ID, externalIDs)
		}
		return nil, err
	}

	task.Assigner = *creator
	task.Assignee = *assignee
	effects = append(effects, s.notify(ctx, integrations.NotificationAssignment, task, assignee, creator))

	s.sink.Record(ctx, "task.create", task.ID, effects)
	return &TaskResult{Task: task, SideEffects: effects}, nil
}

// UpdateStatus loads the task, checks that identity may move it, validates the
// status and writes it with a fresh updated_at. The creator is emailed and, on
// completion, linked calendar events are retitled. Both happen after commit.
func (s *TaskService) UpdateStatus(ctx context.Context, identity *auth.Identity, taskID uint64, status models.TaskStatus) (*TaskResult, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := auth.Authorize(identity, auth.ActionUpdateTaskStatus, auth.TaskResource(task.AssignedBy, task.AssignedTo)); err != nil {
		return nil, err
	}

	updated := *task
	previous, err := s.states.Transition(&updated, status, s.now().UTC())
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		return tx.Tasks().UpdateStatus(ctx, updated.ID, updated.Status, updated.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	task = &updated

	effects := []SideEffect{}
	if task.Status == models.TaskStatusCompleted && previous != models.TaskStatusCompleted && task.CalendarEvent != nil {
		title := completedTitlePrefix + task.Title
		results := s.calendars.UpdateEvents(ctx, task.CalendarEvent.EventIDs(), integrations.CalendarEventUpdate{Title: &title})
		effects = append(effects, calendarEffects("update", results)...)
	}
	if task.AssignedBy != identity.ID {
		effects = append(effects, s.notify(ctx, integrations.NotificationStatusUpdate, task, &task.Assigner, s.actor(ctx, identity, task)))
	}

	s.sink.Record(ctx, "task.update_status", task.ID, effects)
	return &TaskResult{Task: task, SideEffects: effects}, nil
}

// GetTask returns the task if identity may read it. Tasks the identity may not
// see are reported as not found.
func (s *TaskService) GetTask(ctx context.Context, identity *auth.Identity, taskID uint64) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := auth.Authorize(identity, auth.ActionReadTask, auth.TaskResource(task.AssignedBy, task.AssignedTo)); err != nil {
		if errors.Is(err, auth.ErrForbidden) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListTasks returns the tasks identity created or was assigned, soonest deadline first.
func (s *TaskService) ListTasks(ctx context.Context, identity *auth.Identity, input ListTasksInput) ([]models.Task, int64, error) {
	if identity == nil || identity.ID == 0 {
		return nil, 0, auth.ErrNotAuthenticated
	}
	if input.Status != nil {
		if err := s.states.Validate(*input.Status); err != nil {
			return nil, 0, err
		}
	}
	if input.Deadline.From != nil && input.Deadline.To != nil && input.Deadline.To.Before(*input.Deadline.From) {
		return nil, 0, ErrInvalidDateFilter
	}

	filter := repository.TaskFilter{
		ParticipantID: &identity.ID,
		Status:        input.Status,
		DeadlineFrom:  input.Deadline.From,
		DeadlineTo:    input.Deadline.To,
		Pagination:    input.Pagination,
	}

	tasks, total, err := s.store.Tasks().List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// UpdateTask edits title, description, deadline or notes. Only the creator or
// an admin may edit. Linked calendar events follow the edit best-effort.
func (s *TaskService) UpdateTask(ctx context.Context, identity *auth.Identity, taskID uint64, input UpdateTaskInput) (*TaskResult, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := auth.Authorize(identity, auth.ActionUpdateTask, auth.TaskResource(task.AssignedBy, task.AssignedTo)); err != nil {
		return nil, err
	}

	if input.Title == nil && input.Description == nil && input.Deadline == nil && input.Notes == nil {
		return nil, ErrNoFieldsToUpdate
	}

	updated := *task
	var calendarUpdate integrations.CalendarEventUpdate
	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		updated.Title = title
		calendarUpdate.Title = &updated.Title
	}
	if input.Description != nil {
		updated.Description = strings.TrimSpace(*input.Description)
		calendarUpdate.Description = &updated.Description
	}
	if input.Notes != nil {
		notes, err := validateNotes(*input.Notes)
		if err != nil {
			return nil, err
		}
		updated.Notes = notes
	}
	if input.Deadline != nil {
		if input.Deadline.Before(s.now()) {
			return nil, ErrDeadlineInPast
		}
		start := input.Deadline.UTC()
		end := start.Add(integrations.EventDuration)
		updated.Deadline = start
		calendarUpdate.Start = &start
		calendarUpdate.End = &end
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		return tx.Tasks().Update(ctx, &updated)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	task = &updated

	effects := []SideEffect{}
	touchesCalendar := calendarUpdate.Title != nil || calendarUpdate.Description != nil || calendarUpdate.Start != nil
	if touchesCalendar && task.CalendarEvent != nil {
		results := s.calendars.UpdateEvents(ctx, task.CalendarEvent.EventIDs(), calendarUpdate)
		effects = append(effects, calendarEffects("update", results)...)
	}

	s.sink.Record(ctx, "task.update", task.ID, effects)
	return &TaskResult{Task: task, SideEffects: effects}, nil
}

// DeleteTask soft deletes the task and drops its calendar link in one
// transaction, then removes the external events best-effort.
func (s *TaskService) DeleteTask(ctx context.Context, identity *auth.Identity, taskID uint64) ([]SideEffect, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := auth.Authorize(identity, auth.ActionDeleteTask, auth.TaskResource(task.AssignedBy, task.AssignedTo)); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.CalendarEvents().DeleteByTaskID(ctx, task.ID); err != nil {
			return err
		}
		return tx.Tasks().Delete(ctx, task.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}

	effects := []SideEffect{}
	if task.CalendarEvent != nil {
		results := s.calendars.DeleteEvents(ctx, task.CalendarEvent.EventIDs())
		effects = append(effects, calendarEffects("delete", results)...)
	}

	s.sink.Record(ctx, "task.delete", task.ID, effects)
	return effects, nil
}

// SendReminders emails the assignee of every open task due in [from, to). It
// returns how many reminders were delivered.
func (s *TaskService) SendReminders(ctx context.Context, from, to time.Time) (int, error) {
	tasks, err := s.store.Tasks().ListDueBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to list tasks due soon: %w", err)
	}

	sent := 0
	for i := range tasks {
		task := &tasks[i]
		effect := s.notify(ctx, integrations.NotificationReminder, task, &task.Assignee, nil)
		s.sink.Record(ctx, "task.reminder", task.ID, []SideEffect{effect})
		if effect.Succeeded {
			sent++
		}
	}
	return sent, nil
}

func (s *TaskService) findTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, taskID, "Assigner", "Assignee", "CalendarEvent")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) loadUser(ctx context.Context, id uint64, notFound error) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// actor resolves the user behind identity for notification text. It returns
// nil when the user cannot be loaded.
func (s *TaskService) actor(ctx context.Context, identity *auth.Identity, task *models.Task) *models.User {
	if identity.ID == task.AssignedTo {
		return &task.Assignee
	}
	user, err := s.store.Users().FindByID(ctx, identity.ID)
	if err != nil {
		return nil
	}
	return user
}

func (s *TaskService) notify(ctx context.Context, kind integrations.NotificationKind, task *models.Task, recipient, actor *models.User) SideEffect {
	err := s.notifier.Send(ctx, kind, task, recipient, actor)
	return newSideEffect("email."+string(kind), err)
}

// discardEvents deletes external events whose link row was rolled back.
func (s *TaskService) discardEvents(ctx context.Context, taskID uint64, ids map[string]string) {
	for _, r := range s.calendars.DeleteEvents(ctx, ids) {
		if r.Err != nil {
			s.logger.WarnContext(ctx, "failed to discard orphaned calendar event",
				"task_id", taskID,
				"provider", r.Provider,
				"event_id", r.ExternalID,
				"error", r.Err,
			)
		}
	}
}

// calendarLink builds the link row from the providers that succeeded, or nil
// when none did.
func calendarLink(taskID uint64, results []integrations.ProviderResult) *models.CalendarEvent {
	link := &models.CalendarEvent{TaskID: taskID}
	linked := false
	for _, r := range results {
		if r.Err != nil || r.ExternalID == "" {
			continue
		}
		id := r.ExternalID
		switch r.Provider {
		case models.CalendarProviderGoogle:
			link.GoogleEventID = &id
			linked = true
		case models.CalendarProviderMicrosoft:
			link.MicrosoftEventID = &id
			linked = true
		}
	}
	if !linked {
		return nil
	}
	return link
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

// validateNotes trims notes and enforces the length limit in characters.
func validateNotes(notes string) (string, error) {
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > constants.MaxNotesLength {
		return "", ErrNotesTooLong
	}
	return notes, nil
}
