package repository

import (
	"context"

	"gorm.io/gorm"
)

// GormStore is a GORM implementation of Store
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a Store backed by db
func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository {
	return &GormUserRepository{db: s.db}
}

func (s *GormStore) Tasks() TaskRepository {
	return &GormTaskRepository{db: s.db}
}

func (s *GormStore) CalendarEvents() CalendarEventRepository {
	return &GormCalendarEventRepository{db: s.db}
}

func (s *GormStore) Performance() PerformanceRepository {
	return &GormPerformanceRepository{db: s.db}
}

func (s *GormStore) Analytics() AnalyticsRepository {
	return &GormAnalyticsRepository{db: s.db}
}

// Transaction runs fn inside a database transaction
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
