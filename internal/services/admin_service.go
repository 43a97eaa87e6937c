package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/thewebvalue/task-management-api/internal/auth"
	"github.com/thewebvalue/task-management-api/internal/constants"
	"github.com/thewebvalue/task-management-api/internal/models"
	"github.com/thewebvalue/task-management-api/internal/repository"
	"github.com/thewebvalue/task-management-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrScoreOutOfRange   = fmt.Errorf("score must be between %d and %d", constants.MinScore, constants.MaxScore)
	ErrMonthRequired     = errors.New("valid month date is required")
	ErrMonthInFuture     = errors.New("performance score month cannot be in the future")
	ErrInvalidExportType = errors.New("invalid export type")
)

type ExportType string

const (
	ExportTasks       ExportType = "tasks"
	ExportUsers       ExportType = "users"
	ExportPerformance ExportType = "performance"
)

// AdminService serves the admin analytics, scoring and export views.
type AdminService struct {
	store repository.Store
	now   func() time.Time
}

func NewAdminService(store repository.Store, now func() time.Time) *AdminService {
	if now == nil {
		now = time.Now
	}
	return &AdminService{store: store, now: now}
}

// UserAnalytics is a user's task statistics with recent history.
type UserAnalytics struct {
	User               *models.User
	Stats              repository.TaskStats
	PerformanceHistory []models.PerformanceScore
	RecentTasks        []models.Task
}

// SystemAnalytics summarizes every task and user.
type SystemAnalytics struct {
	Tasks         repository.TaskStats
	Users         repository.UserStats
	TopPerformers []repository.TopPerformer
}

type UpsertScoreInput struct {
	Score int
	Month time.Time
	Notes string
}

type ExportInput struct {
	Type  ExportType
	Range utils.DateRange
}

// ExportResult holds the rows of the requested export. Only the field matching
// Type is populated.
type ExportResult struct {
	Type        ExportType
	Tasks       []models.Task
	Users       []repository.UserTaskCounts
	Performance []repository.PerformanceExportRow
}

func (s *AdminService) ListUsers(ctx context.Context) ([]repository.UserTaskCounts, error) {
	users, err := s.store.Users().ListWithTaskCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UserAnalytics returns task counters, the last twelve scores and the five
// most recently created tasks assigned to userID.
func (s *AdminService) UserAnalytics(ctx context.Context, userID uint64) (*UserAnalytics, error) {
	user, err := s.findUser(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.store.Analytics().UserTaskStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task statistics: %w", err)
	}

	history, err := s.store.Performance().ListByUser(ctx, userID, constants.PerformanceHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load performance history: %w", err)
	}

	recent, _, err := s.store.Tasks().List(ctx, repository.TaskFilter{
		AssignedTo:  &userID,
		NewestFirst: true,
		Pagination:  utils.PaginationParams{Page: 1, Limit: constants.RecentTasksLimit},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent tasks: %w", err)
	}

	return &UserAnalytics{
		User:               user,
		Stats:              stats,
		PerformanceHistory: history,
		RecentTasks:        recent,
	}, nil
}

// UpsertPerformanceScore records the score for the month containing
// input.Month, replacing any score already recorded for that month.
func (s *AdminService) UpsertPerformanceScore(ctx context.Context, userID uint64, input UpsertScoreInput) (*models.PerformanceScore, error) {
	if input.Score < constants.MinScore || input.Score > constants.MaxScore {
		return nil, ErrScoreOutOfRange
	}
	if input.Month.IsZero() {
		return nil, ErrMonthRequired
	}
	if input.Month.After(s.now()) {
		return nil, ErrMonthInFuture
	}
	notes, err := validateNotes(input.Notes)
	if err != nil {
		return nil, err
	}

	score := &models.PerformanceScore{
		UserID: userID,
		Score:  input.Score,
		Month:  models.MonthStart(input.Month),
		Notes:  notes,
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := s.findUser(ctx, tx, userID); err != nil {
			return err
		}
		return tx.Performance().Upsert(ctx, score)
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save performance score: %w", err)
	}
	return score, nil
}

// GetPerformanceHistory returns a user's recent scores to that user or an admin.
func (s *AdminService) GetPerformanceHistory(ctx context.Context, identity *auth.Identity, userID uint64) ([]models.PerformanceScore, error) {
	if err := auth.Authorize(identity, auth.ActionReadUserResource, auth.UserResource(userID)); err != nil {
		return nil, err
	}
	if _, err := s.findUser(ctx, s.store, userID); err != nil {
		return nil, err
	}

	scores, err := s.store.Performance().ListByUser(ctx, userID, constants.PerformanceHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load performance history: %w", err)
	}
	return scores, nil
}

func (s *AdminService) SystemAnalytics(ctx context.Context) (*SystemAnalytics, error) {
	tasks, err := s.store.Analytics().SystemTaskStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load task statistics: %w", err)
	}

	users, err := s.store.Analytics().UserStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load user statistics: %w", err)
	}

	top, err := s.store.Analytics().TopPerformers(ctx, constants.TopPerformersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top performers: %w", err)
	}
	for i := range top {
		if avg := top[i].AvgPerformanceScore; avg != nil {
			rounded := math.Round(*avg*100) / 100
			top[i].AvgPerformanceScore = &rounded
		}
	}

	return &SystemAnalytics{Tasks: tasks, Users: users, TopPerformers: top}, nil
}

// Export returns the rows of one export type. Tasks are bounded by creation
// date and performance scores by month; users are never bounded.
func (s *AdminService) Export(ctx context.Context, input ExportInput) (*ExportResult, error) {
	if input.Range.From != nil && input.Range.To != nil && input.Range.To.Before(*input.Range.From) {
		return nil, ErrInvalidDateFilter
	}

	result := &ExportResult{Type: input.Type}
	switch input.Type {
	case ExportTasks:
		tasks, _, err := s.store.Tasks().List(ctx, repository.TaskFilter{
			CreatedFrom: input.Range.From,
			CreatedTo:   input.Range.To,
			NewestFirst: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to export tasks: %w", err)
		}
		result.Tasks = tasks
	case ExportUsers:
		users, err := s.store.Users().ListWithTaskCounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to export users: %w", err)
		}
		result.Users = users
	case ExportPerformance:
		rows, err := s.store.Analytics().ExportPerformance(ctx, input.Range.From, input.Range.To)
		if err != nil {
			return nil, fmt.Errorf("failed to export performance: %w", err)
		}
		result.Performance = rows
	default:
		return nil, ErrInvalidExportType
	}
	return result, nil
}

func (s *AdminService) findUser(ctx context.Context, store repository.Store, userID uint64) (*models.User, error) {
	user, err := store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
