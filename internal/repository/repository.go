package repository

import (
	"context"
	"time"

	"github.com/thewebvalue/task-management-api/internal/models"
	"github.com/thewebvalue/task-management-api/internal/utils"
)

// Store is the unit of work handed to services. Repositories obtained from the
// Store passed to Transaction's callback share that transaction.
type Store interface {
	Users() UserRepository
	Tasks() TaskRepository
	CalendarEvents() CalendarEventRepository
	Performance() PerformanceRepository
	Analytics() AnalyticsRepository

	// Transaction runs fn atomically. Returning an error from fn rolls back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// ListWithTaskCounts lists all users, newest first, with assigned and completed task counts
	ListWithTaskCounts(ctx context.Context) ([]UserTaskCounts, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update writes the editable fields of a task
	Update(ctx context.Context, task *models.Task) error

	// UpdateStatus writes status and updated_at together
	UpdateStatus(ctx context.Context, id uint64, status models.TaskStatus, at time.Time) error

	// Delete soft deletes a task
	Delete(ctx context.Context, id uint64) error

	// ListDueBetween lists open tasks whose deadline falls in [from, to)
	ListDueBetween(ctx context.Context, from, to time.Time) ([]models.Task, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	// ParticipantID matches tasks the user either created or was assigned
	ParticipantID *uint64
	AssignedTo    *uint64
	Status        *models.TaskStatus
	DeadlineFrom  *time.Time
	DeadlineTo    *time.Time
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	// NewestFirst orders by created_at descending instead of deadline ascending
	NewestFirst bool
	Pagination  utils.PaginationParams
}

// CalendarEventRepository defines the interface for task calendar links
type CalendarEventRepository interface {
	Create(ctx context.Context, link *models.CalendarEvent) error
	FindByTaskID(ctx context.Context, taskID uint64) (*models.CalendarEvent, error)
	DeleteByTaskID(ctx context.Context, taskID uint64) error
}

// PerformanceRepository defines the interface for monthly performance scores
type PerformanceRepository interface {
	// Upsert inserts the score or updates score and notes of the existing
	// (user, month) row, then reloads score from the store.
	Upsert(ctx context.Context, score *models.PerformanceScore) error

	// ListByUser returns up to limit scores, most recent month first
	ListByUser(ctx context.Context, userID uint64, limit int) ([]models.PerformanceScore, error)
}

// AnalyticsRepository runs the read-only aggregate queries behind the admin views
type AnalyticsRepository interface {
	UserTaskStats(ctx context.Context, userID uint64) (TaskStats, error)
	SystemTaskStats(ctx context.Context) (TaskStats, error)
	UserStats(ctx context.Context) (UserStats, error)
	TopPerformers(ctx context.Context, limit int) ([]TopPerformer, error)
	ExportPerformance(ctx context.Context, from, to *time.Time) ([]PerformanceExportRow, error)
}

// UserTaskCounts is a user row with its task counters
type UserTaskCounts struct {
	ID                  uint64      `json:"id"`
	Email               string      `json:"email"`
	FullName            string      `json:"full_name"`
	Role                models.Role `json:"role"`
	CreatedAt           time.Time   `json:"created_at"`
	AssignedTasksCount  int64       `json:"assigned_tasks_count"`
	CompletedTasksCount int64       `json:"completed_tasks_count"`
}

// TaskStats aggregates task counts by status
type TaskStats struct {
	TotalTasks            int64 `json:"total_tasks"`
	CompletedTasks        int64 `json:"completed_tasks"`
	InProgressTasks       int64 `json:"in_progress_tasks"`
	NotStartedTasks       int64 `json:"not_started_tasks"`
	OverdueCompletedTasks int64 `json:"overdue_completed_tasks"`
}

// UserStats aggregates user counts by role
type UserStats struct {
	TotalUsers    int64 `json:"total_users"`
	AdminCount    int64 `json:"admin_count"`
	EmployeeCount int64 `json:"employee_count"`
}

// TopPerformer ranks an employee by average performance score
type TopPerformer struct {
	ID                  uint64   `json:"id"`
	FullName            string   `json:"full_name"`
	TotalTasks          int64    `json:"total_tasks"`
	OnTimeCompletions   int64    `json:"on_time_completions"`
	AvgPerformanceScore *float64 `json:"avg_performance_score"`
}

// PerformanceExportRow is one line of the performance export
type PerformanceExportRow struct {
	FullName string    `json:"full_name"`
	Score    int       `json:"score"`
	Month    time.Time `json:"month"`
	Notes    string    `json:"notes"`
}
