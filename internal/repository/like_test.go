package repository

import (
	"context"
	"testing"

	"framez/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_ToggleTwiceRestoresState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	post := seedPost(t, db, "author", 100)

	liked, likes, err := repo.Toggle(ctx, post.ID, "fan")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, likes)

	exists, err := repo.Exists(ctx, post.ID, "fan")
	require.NoError(t, err)
	assert.True(t, exists)

	liked, likes, err = repo.Toggle(ctx, post.ID, "fan")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, likes)

	exists, err = repo.Exists(ctx, post.ID, "fan")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLikeRepository_CountsPerUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	post := seedPost(t, db, "author", 100)

	for _, user := range []string{"a", "b", "c"} {
		_, _, err := repo.Toggle(ctx, post.ID, user)
		require.NoError(t, err)
	}
	_, likes, err := repo.Toggle(ctx, post.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, likes)

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)
}

func TestLikeRepository_ToggleMissingPost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)

	_, _, err := repo.Toggle(context.Background(), 404, "fan")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestLikeRepository_ToggleInsertIgnoresConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "posts" WHERE "posts"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(`DELETE FROM "likes" WHERE user_id = \$1 AND post_id = \$2`).
		WithArgs("fan", 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// a concurrent toggle already inserted the row: nothing is returned
	mock.ExpectQuery(`INSERT INTO "likes" .* ON CONFLICT DO NOTHING RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT "id","likes" FROM "posts" WHERE "posts"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "likes"}).AddRow(7, 3))
	mock.ExpectCommit()

	liked, likes, err := repo.Toggle(context.Background(), 7, "fan")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 3, likes)
	// no UPDATE of the counter was issued
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository_ToggleInsertBumpsCounter(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "posts" WHERE "posts"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(`DELETE FROM "likes"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO "likes" .* ON CONFLICT DO NOTHING RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(`UPDATE "posts" SET "likes"=likes \+ \$1 WHERE id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT "id","likes" FROM "posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "likes"}).AddRow(7, 4))
	mock.ExpectCommit()

	liked, likes, err := repo.Toggle(context.Background(), 7, "fan")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 4, likes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
