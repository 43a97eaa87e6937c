package repository

import (
	"context"

	"github.com/thewebvalue/task-management-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPerformanceRepository is a GORM implementation of PerformanceRepository
type GormPerformanceRepository struct {
	db *gorm.DB
}

// Upsert relies on the unique (user_id, month) index
func (r *GormPerformanceRepository) Upsert(ctx context.Context, score *models.PerformanceScore) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "notes", "updated_at"}),
		}).
		Create(score).Error
	if err != nil {
		return err
	}

	// the generated ID is unreliable when the insert turned into an update
	return r.db.WithContext(ctx).
		Where("user_id = ? AND month = ?", score.UserID, score.Month).
		First(score).Error
}

func (r *GormPerformanceRepository) ListByUser(ctx context.Context, userID uint64, limit int) ([]models.PerformanceScore, error) {
	var scores []models.PerformanceScore
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("month DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}
