package repository

import (
	"context"

	"github.com/thewebvalue/task-management-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListWithTaskCounts lists users with the number of tasks assigned to and completed by each
func (r *GormUserRepository) ListWithTaskCounts(ctx context.Context) ([]UserTaskCounts, error) {
	var rows []UserTaskCounts
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.id, users.email, users.full_name, users.role, users.created_at, "+
			"COUNT(tasks.id) AS assigned_tasks_count, "+
			"COUNT(CASE WHEN tasks.status = ? THEN 1 END) AS completed_tasks_count", models.TaskStatusCompleted).
		Joins("LEFT JOIN tasks ON tasks.assigned_to = users.id AND tasks.deleted_at IS NULL").
		Group("users.id, users.email, users.full_name, users.role, users.created_at").
		Order("users.created_at DESC, users.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
