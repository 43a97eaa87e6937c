package database

import (
	"fmt"
	"log/slog"

	"github.com/thewebvalue/task-management-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns and adds
// the composite indexes used by task listing and analytics.
func Migrate(db *gorm.DB) error {
	slog.Info("Running database migrations...")
	err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.PerformanceScore{},
		&models.CalendarEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	slog.Info("Database migrations completed")
	return nil
}

// AddIndexes adds performance-critical composite indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Listing a user's own tasks ordered by deadline
		{"tasks", "idx_tasks_assigned_to_deadline", "assigned_to, deadline"},
		{"tasks", "idx_tasks_assigned_by_deadline", "assigned_by, deadline"},

		// Per-user status aggregation
		{"tasks", "idx_tasks_assigned_to_status", "assigned_to, status"},

		// Export by creation date
		{"tasks", "idx_tasks_created_at", "created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			slog.Debug("Index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("Created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
