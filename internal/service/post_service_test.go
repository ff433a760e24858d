package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"framez/internal/models"
	"framez/internal/notifications"
	"framez/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})

	post, err := env.posts.CreatePost(context.Background(), CreatePostInput{
		UserID:   "user-1",
		FullName: "Jane Doe",
		Caption:  "hi",
		Media:    []models.MediaItem{{Type: models.MediaTypeImage, URL: "https://cdn.example.com/a.webp"}},
	})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, 0, post.Likes)
	assert.Equal(t, 0, post.Reposts)
	assert.NotZero(t, post.CreatedAt)
	assert.False(t, post.IsRepost)

	stored, err := env.posts.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", stored.Caption)
	require.Len(t, stored.Media, 1)
	assert.Equal(t, "https://cdn.example.com/a.webp", stored.Media[0].URL)

	assert.Equal(t, []string{notifications.EventPostCreated}, env.events.Types())
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})
	ctx := context.Background()

	_, err := env.posts.CreatePost(ctx, CreatePostInput{UserID: "user-1", Caption: strings.Repeat("a", 2201)})
	appErr := assertAppError(t, err, models.CodeValidation)
	assert.Equal(t, "Caption must be 2200 characters or less", appErr.Message)
	assert.Equal(t, "Caption must be 2200 characters or less", appErr.Fields["caption"])

	tooMany := make([]models.MediaItem, 11)
	for i := range tooMany {
		tooMany[i] = models.MediaItem{Type: models.MediaTypeImage, URL: fmt.Sprintf("https://cdn.example.com/%d.webp", i)}
	}
	_, err = env.posts.CreatePost(ctx, CreatePostInput{UserID: "user-1", Caption: "ok", Media: tooMany})
	appErr = assertAppError(t, err, models.CodeValidation)
	assert.Equal(t, "Maximum 10 media items allowed", appErr.Fields["media"])

	_, err = env.posts.CreatePost(ctx, CreatePostInput{Caption: "ok"})
	assertAppError(t, err, models.CodeUnauthorized)

	assert.Empty(t, env.events.Types())
}

func TestCreatePostWithoutMedia(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})

	post, err := env.posts.CreatePost(context.Background(), CreatePostInput{UserID: "user-1", Caption: "text only"})
	require.NoError(t, err)
	assert.NotNil(t, post.Media)
	assert.Empty(t, post.Media)
}

func TestGetFeedPagination(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})
	ctx := context.Background()

	var created []*models.Post
	for i := 0; i < 11; i++ {
		created = append(created, env.createPost(t, "user-1", fmt.Sprintf("post %d", i)))
	}

	page, err := env.posts.GetFeed(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 10)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, created[10].ID, page.Posts[0].ID)

	rest, err := env.posts.GetFeed(ctx, *page.NextCursor, 10)
	require.NoError(t, err)
	require.Len(t, rest.Posts, 1)
	assert.Equal(t, created[0].ID, rest.Posts[0].ID)
	assert.False(t, rest.HasMore)
	assert.Nil(t, rest.NextCursor)

	seen := map[uint]bool{}
	for _, p := range append(page.Posts, rest.Posts...) {
		assert.False(t, seen[p.ID], "post %d returned twice", p.ID)
		seen[p.ID] = true
	}
	assert.Len(t, seen, 11)
}

func TestGetFeedSinglePage(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})
	for i := 0; i < 10; i++ {
		env.createPost(t, "user-1", "post")
	}

	page, err := env.posts.GetFeed(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 10)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextCursor)
}

func TestGetFeedEmptyAndInvalidCursor(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})
	ctx := context.Background()

	page, err := env.posts.GetFeed(ctx, "", 0)
	require.NoError(t, err)
	assert.NotNil(t, page.Posts)
	assert.Empty(t, page.Posts)

	_, err = env.posts.GetFeed(ctx, "not-a-cursor", 10)
	assertAppError(t, err, models.CodeValidation)
}

func TestNormalizeLimit(t *testing.T) {
	s := NewPostService(nil, nil, nil, nil, PostServiceOptions{DefaultPageSize: 20})
	assert.Equal(t, 20, s.normalizeLimit(0))
	assert.Equal(t, 20, s.normalizeLimit(-3))
	assert.Equal(t, 7, s.normalizeLimit(7))
	assert.Equal(t, MaxFeedLimit, s.normalizeLimit(500))

	s = NewPostService(nil, nil, nil, nil, PostServiceOptions{})
	assert.Equal(t, DefaultFeedLimit, s.normalizeLimit(0))
}

func TestGetFeedFirstPageCache(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	env := newTestEnv(t, rdb, PostServiceOptions{FeedCacheTTL: time.Minute})
	ctx := context.Background()

	env.createPost(t, "user-1", "first")

	page, err := env.posts.GetFeed(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.True(t, mr.Exists("feed:v1:first:10"))

	// a write that bypasses the service is not visible until the cache is invalidated
	require.NoError(t, env.postRepo.Create(ctx, &models.Post{UserID: "user-2", FullName: "B", Caption: "direct"}))
	page, err = env.posts.GetFeed(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)

	env.createPost(t, "user-1", "second")
	page, err = env.posts.GetFeed(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 3)
	assert.True(t, mr.Exists("feed:v2:first:10"))
}

func TestGetUserPosts(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})
	ctx := context.Background()

	first := env.createPost(t, "user-1", "one")
	env.createPost(t, "user-2", "other")
	second := env.createPost(t, "user-1", "two")

	posts, err := env.posts.GetUserPosts(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)

	posts, err = env.posts.GetUserPosts(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	_, err = env.posts.GetUserPosts(ctx, " ")
	assertAppError(t, err, models.CodeValidation)
}

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})
	ctx := context.Background()
	post := env.createPost(t, "author", "like me")

	res, err := env.posts.ToggleLike(ctx, post.ID, "fan")
	require.NoError(t, err)
	assert.Equal(t, &LikeResult{Liked: true, Likes: 1}, res)

	liked, err := env.posts.CheckUserLike(ctx, post.ID, "fan")
	require.NoError(t, err)
	assert.True(t, liked)

	res, err = env.posts.ToggleLike(ctx, post.ID, "fan")
	require.NoError(t, err)
	assert.Equal(t, &LikeResult{Liked: false, Likes: 0}, res)

	liked, err = env.posts.CheckUserLike(ctx, post.ID, "fan")
	require.NoError(t, err)
	assert.False(t, liked)

	stored, err := env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Likes)

	ev, ok := env.events.Last()
	require.True(t, ok)
	assert.Equal(t, notifications.EventPostReactionUpdated, ev.Type)
}

func TestToggleLikeMissingPost(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})

	_, err := env.posts.ToggleLike(context.Background(), 999, "fan")
	assertAppError(t, err, models.CodeNotFound)

	_, err = env.posts.ToggleLike(context.Background(), 1, "")
	assertAppError(t, err, models.CodeUnauthorized)
}

func TestRepost(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})
	ctx := context.Background()
	original := env.createPost(t, "author", "original caption")

	repost, err := env.posts.Repost(ctx, RepostInput{
		OriginalPostID: original.ID,
		UserID:         "sharer",
		FullName:       "Sharer",
		Avatar:         "https://cdn.example.com/sharer.webp",
	})
	require.NoError(t, err)
	assert.True(t, repost.IsRepost)
	require.NotNil(t, repost.OriginalPostID)
	assert.Equal(t, original.ID, *repost.OriginalPostID)
	assert.Equal(t, "original caption", repost.Caption)
	assert.Equal(t, original.Media, repost.Media)
	assert.Equal(t, "author", repost.OriginalUserID)
	assert.Equal(t, original.FullName, repost.OriginalFullName)
	assert.Equal(t, original.UserAvatar, repost.OriginalAvatar)
	assert.Equal(t, 0, repost.Likes)

	_, err = env.posts.Repost(ctx, RepostInput{OriginalPostID: original.ID, UserID: "sharer", FullName: "Sharer"})
	assertAppError(t, err, models.CodeAlreadyReposted)

	stored, err := env.posts.GetPost(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Reposts)

	posts, err := env.posts.GetUserPosts(ctx, "sharer")
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	assert.Equal(t, []string{notifications.EventPostCreated, notifications.EventPostReposted}, env.events.Types())
}

func TestRepostOfRepostTargetsOriginal(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})
	ctx := context.Background()
	original := env.createPost(t, "author", "root")

	first, err := env.posts.Repost(ctx, RepostInput{OriginalPostID: original.ID, UserID: "a", FullName: "A"})
	require.NoError(t, err)

	second, err := env.posts.Repost(ctx, RepostInput{OriginalPostID: first.ID, UserID: "b", FullName: "B"})
	require.NoError(t, err)
	require.NotNil(t, second.OriginalPostID)
	assert.Equal(t, original.ID, *second.OriginalPostID)
	assert.Equal(t, "author", second.OriginalUserID)

	stored, err := env.posts.GetPost(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Reposts)
}

func TestRepostMissingPost(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})

	_, err := env.posts.Repost(context.Background(), RepostInput{OriginalPostID: 404, UserID: "a"})
	assertAppError(t, err, models.CodeNotFound)
}

func TestDeleteRepost(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})
	ctx := context.Background()
	original := env.createPost(t, "author", "root")

	repost, err := env.posts.Repost(ctx, RepostInput{OriginalPostID: original.ID, UserID: "sharer", FullName: "S"})
	require.NoError(t, err)

	err = env.posts.DeleteRepost(ctx, original.ID, "author")
	assertAppError(t, err, models.CodeValidation)

	err = env.posts.DeleteRepost(ctx, repost.ID, "someone-else")
	assertAppError(t, err, models.CodeForbidden)

	require.NoError(t, env.posts.DeleteRepost(ctx, repost.ID, "sharer"))

	_, err = env.posts.GetPost(ctx, repost.ID)
	assertAppError(t, err, models.CodeNotFound)

	stored, err := env.posts.GetPost(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Reposts)

	// the user may share the post again once the repost is gone
	_, err = env.posts.Repost(ctx, RepostInput{OriginalPostID: original.ID, UserID: "sharer", FullName: "S"})
	require.NoError(t, err)
}

func TestDeletePostCascades(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})
	ctx := context.Background()
	post := env.createPost(t, "author", "doomed")

	_, err := env.comments.AddComment(ctx, AddCommentInput{PostID: post.ID, UserID: "fan", FullName: "Fan", Text: "nice"})
	require.NoError(t, err)
	_, err = env.posts.ToggleLike(ctx, post.ID, "fan")
	require.NoError(t, err)

	err = env.posts.DeletePost(ctx, post.ID, "fan")
	assertAppError(t, err, models.CodeForbidden)

	require.NoError(t, env.posts.DeletePost(ctx, post.ID, "author"))

	comments, err := env.comments.GetComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	liked, err := env.posts.CheckUserLike(ctx, post.ID, "fan")
	require.NoError(t, err)
	assert.False(t, liked)

	err = env.posts.DeletePost(ctx, post.ID, "author")
	assertAppError(t, err, models.CodeNotFound)

	ev, ok := env.events.Last()
	require.True(t, ok)
	assert.Equal(t, notifications.EventPostDeleted, ev.Type)
}

func TestDeletePostOfRepostDecrementsOriginal(t *testing.T) {
	env := newTestEnv(t, nil, PostServiceOptions{})
	ctx := context.Background()
	original := env.createPost(t, "author", "root")

	repost, err := env.posts.Repost(ctx, RepostInput{OriginalPostID: original.ID, UserID: "sharer", FullName: "S"})
	require.NoError(t, err)

	require.NoError(t, env.posts.DeletePost(ctx, repost.ID, "sharer"))

	stored, err := env.posts.GetPost(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Reposts)
}
