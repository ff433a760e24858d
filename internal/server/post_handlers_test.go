package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"framez/internal/models"
	"framez/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPost(t *testing.T, s *testApp, token, caption string) models.Post {
	t.Helper()
	var post models.Post
	status := doJSON(t, s.app, http.MethodPost, "/api/posts", token, map[string]any{
		"caption": caption,
		"media":   []models.MediaItem{{Type: models.MediaTypeImage, URL: "https://cdn.example.com/p.webp"}},
	}, &post)
	require.Equal(t, http.StatusCreated, status)
	return post
}

func TestPostLifecycle(t *testing.T) {
	env := newTestApp(t)
	author := signUp(t, env.app, "Alice", "alice@example.com")
	fan := signUp(t, env.app, "Bob", "bob@example.com")

	post := createPost(t, env, author.Token, "hi")
	assert.Equal(t, 0, post.Likes)
	assert.Equal(t, author.User.ID, post.UserID)
	assert.Equal(t, "Alice Tester", post.FullName)
	assert.Equal(t, models.DefaultAvatarBase+author.User.ID, post.UserAvatar)

	var tooLong errorBody
	status := doJSON(t, env.app, http.MethodPost, "/api/posts", author.Token,
		map[string]any{"caption": strings.Repeat("a", 2201)}, &tooLong)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Caption must be 2200 characters or less", tooLong.Fields["caption"])

	assert.Equal(t, http.StatusUnauthorized,
		doJSON(t, env.app, http.MethodPost, "/api/posts", "", map[string]any{"caption": "anon"}, nil))

	var like service.LikeResult
	status = doJSON(t, env.app, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", post.ID), fan.Token, nil, &like)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, service.LikeResult{Liked: true, Likes: 1}, like)

	var check struct {
		Liked bool `json:"liked"`
	}
	doJSON(t, env.app, http.MethodGet, fmt.Sprintf("/api/posts/%d/likes/%s", post.ID, fan.User.ID), "", nil, &check)
	assert.True(t, check.Liked)

	var comment models.Comment
	status = doJSON(t, env.app, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID), fan.Token,
		AddCommentRequest{Text: "lovely"}, &comment)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Bob Tester", comment.FullName)

	var comments []models.Comment
	doJSON(t, env.app, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", post.ID), "", nil, &comments)
	assert.Len(t, comments, 1)

	var forbidden errorBody
	status = doJSON(t, env.app, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), fan.Token, nil, &forbidden)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeForbidden, forbidden.Code)

	assert.Equal(t, http.StatusNoContent,
		doJSON(t, env.app, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), author.Token, nil, nil))

	assert.Equal(t, http.StatusNotFound,
		doJSON(t, env.app, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil, nil))

	comments = nil
	doJSON(t, env.app, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", post.ID), "", nil, &comments)
	assert.Empty(t, comments)

	doJSON(t, env.app, http.MethodGet, fmt.Sprintf("/api/posts/%d/likes/%s", post.ID, fan.User.ID), "", nil, &check)
	assert.False(t, check.Liked)
}

func TestGetFeedEndpoint(t *testing.T) {
	env := newTestApp(t)
	author := signUp(t, env.app, "Alice", "alice@example.com")
	for i := 0; i < 11; i++ {
		createPost(t, env, author.Token, fmt.Sprintf("post %d", i))
	}

	var page service.FeedPage
	require.Equal(t, http.StatusOK, doJSON(t, env.app, http.MethodGet, "/api/posts?limit=10", "", nil, &page))
	assert.Len(t, page.Posts, 10)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.NextCursor)

	var rest service.FeedPage
	require.Equal(t, http.StatusOK,
		doJSON(t, env.app, http.MethodGet, "/api/posts?limit=10&cursor="+*page.NextCursor, "", nil, &rest))
	assert.Len(t, rest.Posts, 1)
	assert.False(t, rest.HasMore)
	assert.Nil(t, rest.NextCursor)

	var invalid errorBody
	assert.Equal(t, http.StatusBadRequest,
		doJSON(t, env.app, http.MethodGet, "/api/posts?cursor=abc", "", nil, &invalid))
	assert.Equal(t, models.CodeValidation, invalid.Code)

	var mine []models.Post
	require.Equal(t, http.StatusOK,
		doJSON(t, env.app, http.MethodGet, "/api/users/"+author.User.ID+"/posts", "", nil, &mine))
	assert.Len(t, mine, 11)
}

func TestRepostEndpoints(t *testing.T) {
	env := newTestApp(t)
	author := signUp(t, env.app, "Alice", "alice@example.com")
	sharer := signUp(t, env.app, "Bob", "bob@example.com")
	post := createPost(t, env, author.Token, "worth sharing")

	var repost models.Post
	status := doJSON(t, env.app, http.MethodPost, fmt.Sprintf("/api/posts/%d/repost", post.ID), sharer.Token, nil, &repost)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, repost.IsRepost)
	assert.Equal(t, "Alice Tester", repost.OriginalFullName)
	assert.Equal(t, "Bob Tester", repost.FullName)

	var dup errorBody
	status = doJSON(t, env.app, http.MethodPost, fmt.Sprintf("/api/posts/%d/repost", post.ID), sharer.Token, nil, &dup)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.CodeAlreadyReposted, dup.Code)

	var original models.Post
	doJSON(t, env.app, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil, &original)
	assert.Equal(t, 1, original.Reposts)

	assert.Equal(t, http.StatusNotFound,
		doJSON(t, env.app, http.MethodPost, "/api/posts/9999/repost", sharer.Token, nil, nil))
	assert.Equal(t, http.StatusBadRequest,
		doJSON(t, env.app, http.MethodDelete, fmt.Sprintf("/api/reposts/%d", post.ID), author.Token, nil, nil))
	assert.Equal(t, http.StatusForbidden,
		doJSON(t, env.app, http.MethodDelete, fmt.Sprintf("/api/reposts/%d", repost.ID), author.Token, nil, nil))
	assert.Equal(t, http.StatusNoContent,
		doJSON(t, env.app, http.MethodDelete, fmt.Sprintf("/api/reposts/%d", repost.ID), sharer.Token, nil, nil))

	doJSON(t, env.app, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil, &original)
	assert.Equal(t, 0, original.Reposts)
}

func TestInvalidPostID(t *testing.T) {
	env := newTestApp(t)

	var body errorBody
	assert.Equal(t, http.StatusBadRequest, doJSON(t, env.app, http.MethodGet, "/api/posts/abc", "", nil, &body))
	assert.Equal(t, "Invalid ID", body.Error)
}
