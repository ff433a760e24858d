package seed

import (
	"context"
	"testing"

	"framez/internal/models"
	"framez/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_CountersMatchRows(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, 42)

	res, err := s.Seed(context.Background(), Options{
		NumUsers:           3,
		NumPosts:           8,
		MaxCommentsPerPost: 2,
		LikeProbability:    0.5,
		RepostProbability:  0.5,
	})
	require.NoError(t, err)
	require.Len(t, res.Users, 3)
	require.Len(t, res.Posts, 8)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 3, users)

	var originals, reposts, comments, likes int64
	require.NoError(t, db.Model(&models.Post{}).Where("is_repost = ?", false).Count(&originals).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("is_repost = ?", true).Count(&reposts).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	assert.EqualValues(t, 8, originals)
	assert.EqualValues(t, res.Reposts, reposts)
	assert.EqualValues(t, res.Comments, comments)
	assert.EqualValues(t, res.Likes, likes)

	var posts []models.Post
	require.NoError(t, db.Where("is_repost = ?", false).Find(&posts).Error)
	for _, p := range posts {
		var likeRows, repostRows int64
		require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", p.ID).Count(&likeRows).Error)
		require.NoError(t, db.Model(&models.Post{}).Where("original_post_id = ?", p.ID).Count(&repostRows).Error)
		assert.EqualValues(t, likeRows, p.Likes, "likes of post %d", p.ID)
		assert.EqualValues(t, repostRows, p.Reposts, "reposts of post %d", p.ID)
	}
}

func TestSeed_AccountsCanSignIn(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, 7)

	res, err := s.Seed(context.Background(), Options{NumUsers: 1})
	require.NoError(t, err)
	require.Len(t, res.Users, 1)
	assert.Empty(t, res.Posts)

	session, err := s.identity.SignIn(context.Background(), res.Users[0].Email, DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, res.Users[0].ID, session.User.ID)
}

func TestSeed_CleanRemovesPreviousRun(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, 1)
	ctx := context.Background()

	_, err := s.Seed(ctx, Options{NumUsers: 2, NumPosts: 3, MaxCommentsPerPost: 1, LikeProbability: 1})
	require.NoError(t, err)

	_, err = s.Seed(ctx, Options{NumUsers: 1, NumPosts: 1, Clean: true})
	require.NoError(t, err)

	var users, posts, likes int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 1, posts)
	assert.Zero(t, likes)
}

func TestFakeName(t *testing.T) {
	assert.Equal(t, "Jo", fakeName("J"))
	assert.Equal(t, "Ann", fakeName("Ann"))
}
