package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"framez/internal/models"
	"framez/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadMedia(t *testing.T) {
	env := newTestApp(t)
	user := signUp(t, env.app, "Alice", "alice@example.com")

	var item models.MediaItem
	status := doUpload(t, env.app, http.MethodPost, "/api/media", user.Token, "file", testutil.PNG(t, 600, 300), &item)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, models.MediaTypeImage, item.Type)
	assert.True(t, strings.HasPrefix(item.URL, "/media/"), item.URL)
	assert.True(t, strings.HasSuffix(item.URL, ".webp"), item.URL)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, item.URL, nil), -1)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var bad errorBody
	status = doUpload(t, env.app, http.MethodPost, "/api/media", user.Token, "file", []byte("not an image"), &bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, bad.Code)

	status = doUpload(t, env.app, http.MethodPost, "/api/media", user.Token, "wrong_field", testutil.PNG(t, 10, 10), &bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No file uploaded", bad.Error)
}

func TestProfileImage(t *testing.T) {
	env := newTestApp(t)
	user := signUp(t, env.app, "Alice", "alice@example.com")

	var me UserResponse
	status := doUpload(t, env.app, http.MethodPut, "/api/users/me/image", user.Token, "image", testutil.PNG(t, 64, 64), &me)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.HasPrefix(me.ImageURL, "/media/"))
	assert.Equal(t, me.ImageURL, me.AvatarURL)

	// new posts pick up the profile image
	post := createPost(t, env, user.Token, "with avatar")
	assert.Equal(t, me.ImageURL, post.UserAvatar)

	require.Equal(t, http.StatusOK, doJSON(t, env.app, http.MethodDelete, "/api/users/me/image", user.Token, nil, &me))
	assert.Empty(t, me.ImageURL)
	assert.Equal(t, models.DefaultAvatarBase+user.User.ID, me.AvatarURL)
}
