package repository

import (
	"context"
	"time"

	"github.com/thewebvalue/task-management-api/internal/models"
	"gorm.io/gorm"
)

// GormAnalyticsRepository is a GORM implementation of AnalyticsRepository
type GormAnalyticsRepository struct {
	db *gorm.DB
}

const taskStatsSelect = "COUNT(*) AS total_tasks, " +
	"COUNT(CASE WHEN status = 'COMPLETED' THEN 1 END) AS completed_tasks, " +
	"COUNT(CASE WHEN status = 'IN_PROGRESS' THEN 1 END) AS in_progress_tasks, " +
	"COUNT(CASE WHEN status = 'NOT_STARTED' THEN 1 END) AS not_started_tasks, " +
	"COUNT(CASE WHEN status = 'COMPLETED' AND deadline < updated_at THEN 1 END) AS overdue_completed_tasks"

// UserTaskStats aggregates the tasks assigned to userID
func (r *GormAnalyticsRepository) UserTaskStats(ctx context.Context, userID uint64) (TaskStats, error) {
	var stats TaskStats
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Select(taskStatsSelect).
		Where("assigned_to = ?", userID).
		Scan(&stats).Error
	return stats, err
}

// SystemTaskStats aggregates every live task
func (r *GormAnalyticsRepository) SystemTaskStats(ctx context.Context) (TaskStats, error) {
	var stats TaskStats
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Select(taskStatsSelect).
		Scan(&stats).Error
	return stats, err
}

func (r *GormAnalyticsRepository) UserStats(ctx context.Context) (UserStats, error) {
	var stats UserStats
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("COUNT(*) AS total_users, "+
			"COUNT(CASE WHEN role = ? THEN 1 END) AS admin_count, "+
			"COUNT(CASE WHEN role = ? THEN 1 END) AS employee_count", models.RoleAdmin, models.RoleEmployee).
		Scan(&stats).Error
	return stats, err
}

// TopPerformers ranks employees by average score, unscored employees last.
// Counters come from correlated subqueries so tasks and scores never multiply each other.
func (r *GormAnalyticsRepository) TopPerformers(ctx context.Context, limit int) ([]TopPerformer, error) {
	db := r.db.WithContext(ctx)

	totalTasks := db.Model(&models.Task{}).
		Select("COUNT(*)").
		Where("tasks.assigned_to = users.id")
	onTime := db.Model(&models.Task{}).
		Select("COUNT(*)").
		Where("tasks.assigned_to = users.id").
		Where("tasks.status = ? AND tasks.deadline >= tasks.updated_at", models.TaskStatusCompleted)
	avgScore := db.Model(&models.PerformanceScore{}).
		Select("AVG(performance_scores.score)").
		Where("performance_scores.user_id = users.id")

	ranked := db.Model(&models.User{}).
		Select("users.id, users.full_name, (?) AS total_tasks, (?) AS on_time_completions, (?) AS avg_performance_score",
			totalTasks, onTime, avgScore).
		Where("users.role = ?", models.RoleEmployee)

	var rows []TopPerformer
	err := db.Table("(?) AS ranked", ranked).
		Order("CASE WHEN avg_performance_score IS NULL THEN 1 ELSE 0 END").
		Order("avg_performance_score DESC").
		Order("id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExportPerformance lists scores joined with user names, optionally bounded by month
func (r *GormAnalyticsRepository) ExportPerformance(ctx context.Context, from, to *time.Time) ([]PerformanceExportRow, error) {
	query := r.db.WithContext(ctx).
		Table("performance_scores").
		Select("users.full_name, performance_scores.score, performance_scores.month, performance_scores.notes").
		Joins("JOIN users ON users.id = performance_scores.user_id")
	if from != nil {
		query = query.Where("performance_scores.month >= ?", *from)
	}
	if to != nil {
		query = query.Where("performance_scores.month <= ?", *to)
	}

	var rows []PerformanceExportRow
	if err := query.Order("performance_scores.month DESC").Order("users.full_name ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
