package repository

import (
	"context"

	"github.com/thewebvalue/task-management-api/internal/models"
	"gorm.io/gorm"
)

// GormCalendarEventRepository is a GORM implementation of CalendarEventRepository
type GormCalendarEventRepository struct {
	db *gorm.DB
}

func (r *GormCalendarEventRepository) Create(ctx context.Context, link *models.CalendarEvent) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *GormCalendarEventRepository) FindByTaskID(ctx context.Context, taskID uint64) (*models.CalendarEvent, error) {
	var link models.CalendarEvent
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// DeleteByTaskID removes the link row. A missing row is not an error.
func (r *GormCalendarEventRepository) DeleteByTaskID(ctx context.Context, taskID uint64) error {
	return r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&models.CalendarEvent{}).Error
}
