package repository

import (
	"context"
	"testing"

	"framez/internal/database"
	"framez/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB returns a migrated in-memory SQLite database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func seedPost(t *testing.T, db *gorm.DB, userID string, createdAt int64) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:    userID,
		FullName:  "Test User",
		Caption:   "caption",
		Media:     []models.MediaItem{{Type: models.MediaTypeImage, URL: "https://cdn.example.com/a.webp"}},
		CreatedAt: createdAt,
	}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), post))
	return post
}
