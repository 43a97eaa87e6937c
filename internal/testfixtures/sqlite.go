package testfixtures

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thewebvalue/task-management-api/internal/auth"
	"github.com/thewebvalue/task-management-api/internal/database"
	"github.com/thewebvalue/task-management-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultPassword is the password of every user created by CreateUser.
const DefaultPassword = "password123"

// OpenSQLite returns a migrated in-memory database private to the test.
func OpenSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.NewGormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with DefaultPassword.
func CreateUser(t *testing.T, db *gorm.DB, email, fullName string, role models.Role) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(DefaultPassword)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
