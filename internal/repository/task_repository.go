package repository

import (
	"context"
	"time"

	"github.com/thewebvalue/task-management-api/internal/database"
	"github.com/thewebvalue/task-management-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	if filter.ParticipantID != nil {
		query = query.Where("tasks.assigned_to = ? OR tasks.assigned_by = ?", *filter.ParticipantID, *filter.ParticipantID)
	}
	if filter.AssignedTo != nil {
		query = query.Where("tasks.assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.DeadlineFrom != nil {
		query = query.Where("tasks.deadline >= ?", *filter.DeadlineFrom)
	}
	if filter.DeadlineTo != nil {
		query = query.Where("tasks.deadline <= ?", *filter.DeadlineTo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("tasks.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("tasks.created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.NewestFirst {
		listQuery = listQuery.Order("tasks.created_at DESC").Order("tasks.id DESC")
	} else {
		listQuery = listQuery.Order("tasks.deadline ASC").Order("tasks.id ASC")
	}

	var tasks []models.Task
	err := listQuery.
		Scopes(database.Paginate(filter.Pagination)).
		Preload("Assigner").
		Preload("Assignee").
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update writes title, description, deadline and notes. updated_at is left
// alone; only UpdateStatus moves it.
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", task.ID).
		UpdateColumns(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"deadline":    task.Deadline,
			"notes":       task.Notes,
		}).Error
}

// UpdateStatus stamps status and updated_at in a single statement
func (r *GormTaskRepository) UpdateStatus(ctx context.Context, id uint64, status models.TaskStatus, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"status":     status,
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListDueBetween lists tasks that are not completed and due in [from, to)
func (r *GormTaskRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("status <> ?", models.TaskStatusCompleted).
		Where("deadline >= ? AND deadline < ?", from, to).
		Order("deadline ASC").
		Preload("Assignee").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
