package dto

import (
	"time"

	"github.com/thewebvalue/task-management-api/internal/models"
	"github.com/thewebvalue/task-management-api/internal/repository"
	"github.com/thewebvalue/task-management-api/internal/services"
)

// PerformanceScoreDTO represents one monthly score
type PerformanceScoreDTO struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Score     int       `json:"score"`
	Month     string    `json:"month"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserAnalyticsResponse is the per-user analytics view
type UserAnalyticsResponse struct {
	User               UserDTO               `json:"user"`
	Stats              repository.TaskStats  `json:"stats"`
	PerformanceHistory []PerformanceScoreDTO `json:"performance_history"`
	RecentTasks        []TaskDTO             `json:"recent_tasks"`
}

// SystemAnalyticsResponse is the system-wide analytics view
type SystemAnalyticsResponse struct {
	TaskStatistics repository.TaskStats      `json:"task_statistics"`
	UserStatistics repository.UserStats      `json:"user_statistics"`
	TopPerformers  []repository.TopPerformer `json:"top_performers"`
}

// PerformanceExportDTO is one row of the performance export
type PerformanceExportDTO struct {
	FullName string `json:"full_name"`
	Score    int    `json:"score"`
	Month    string `json:"month"`
	Notes    string `json:"notes"`
}

func ToPerformanceScoreDTO(score models.PerformanceScore) PerformanceScoreDTO {
	return PerformanceScoreDTO{
		ID:        score.ID,
		UserID:    score.UserID,
		Score:     score.Score,
		Month:     formatMonth(score.Month),
		Notes:     score.Notes,
		CreatedAt: score.CreatedAt,
		UpdatedAt: score.UpdatedAt,
	}
}

func ToPerformanceScoreDTOs(scores []models.PerformanceScore) []PerformanceScoreDTO {
	items := make([]PerformanceScoreDTO, len(scores))
	for i, score := range scores {
		items[i] = ToPerformanceScoreDTO(score)
	}
	return items
}

func ToUserAnalyticsResponse(a *services.UserAnalytics) UserAnalyticsResponse {
	return UserAnalyticsResponse{
		User:               ToUserDTO(*a.User),
		Stats:              a.Stats,
		PerformanceHistory: ToPerformanceScoreDTOs(a.PerformanceHistory),
		RecentTasks:        ToTaskDTOs(a.RecentTasks),
	}
}

func ToSystemAnalyticsResponse(a *services.SystemAnalytics) SystemAnalyticsResponse {
	top := a.TopPerformers
	if top == nil {
		top = []repository.TopPerformer{}
	}
	return SystemAnalyticsResponse{
		TaskStatistics: a.Tasks,
		UserStatistics: a.Users,
		TopPerformers:  top,
	}
}

// ToExportRows returns the populated row set of an export.
func ToExportRows(result *services.ExportResult) interface{} {
	switch result.Type {
	case services.ExportTasks:
		return ToTaskDTOs(result.Tasks)
	case services.ExportUsers:
		if result.Users == nil {
			return []repository.UserTaskCounts{}
		}
		return result.Users
	default:
		rows := make([]PerformanceExportDTO, len(result.Performance))
		for i, row := range result.Performance {
			rows[i] = PerformanceExportDTO{
				FullName: row.FullName,
				Score:    row.Score,
				Month:    formatMonth(row.Month),
				Notes:    row.Notes,
			}
		}
		return rows
	}
}

func formatMonth(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
