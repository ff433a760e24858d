package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"framez/internal/config"
	"framez/internal/identity"
	"framez/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testSecret = "server-test-secret-at-least-32-characters"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:             "0",
		Env:              "test",
		JWTSecret:        testSecret,
		JWTTTLHours:      1,
		MediaUploadDir:   t.TempDir(),
		MediaBaseURL:     "/media",
		MediaMaxUploadMB: 2,
		MediaMaxEdge:     256,
		FeedPageSize:     10,
	}
}

func newTestServer(t *testing.T, rdb *redis.Client) (*Server, *fiber.App) {
	t.Helper()
	s, err := NewServerWithDeps(testConfig(t), testutil.NewSQLiteDB(t), rdb)
	require.NoError(t, err)
	return s, s.App()
}

type testApp struct {
	server *Server
	app    *fiber.App
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	s, app := newTestServer(t, nil)
	return &testApp{server: s, app: app}
}

// doJSON sends a JSON request and decodes the response body into out when non-nil.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func doUpload(t *testing.T, app *fiber.App, method, path, token, field string, content []byte, out any) int {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, "upload.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func signUp(t *testing.T, app *fiber.App, first, email string) identity.Session {
	t.Helper()
	var session identity.Session
	status := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", identity.SignUpInput{
		FirstName:       first,
		LastName:        "Tester",
		Email:           email,
		Password:        "SecurePass12",
		ConfirmPassword: "SecurePass12",
	}, &session)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, session.Token)
	return session
}

type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}
