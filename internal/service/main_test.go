package service

import (
	"context"
	"errors"
	"testing"

	"framez/internal/models"
	"framez/internal/repository"
	"framez/internal/testutil"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	posts    *PostService
	comments *CommentService
	events   *testutil.EventRecorder
	postRepo repository.PostRepository
}

func newTestEnv(t *testing.T, rdb *redis.Client, opts PostServiceOptions) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	postRepo := repository.NewPostRepository(db)
	events := &testutil.EventRecorder{}
	return &testEnv{
		db:       db,
		posts:    NewPostService(postRepo, repository.NewLikeRepository(db), rdb, events, opts),
		comments: NewCommentService(repository.NewCommentRepository(db), postRepo, events),
		events:   events,
		postRepo: postRepo,
	}
}

func (e *testEnv) createPost(t *testing.T, userID, caption string) *models.Post {
	t.Helper()
	post, err := e.posts.CreatePost(context.Background(), CreatePostInput{
		UserID:   userID,
		FullName: "Author " + userID,
		Avatar:   models.DefaultAvatarBase + userID,
		Caption:  caption,
		Media:    []models.MediaItem{{Type: models.MediaTypeImage, URL: "https://cdn.example.com/p.webp"}},
	})
	require.NoError(t, err)
	return post
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}
