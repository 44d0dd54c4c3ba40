package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ripple/internal/config"
	"ripple/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "StrongPass12!@"

type apiTest struct {
	app *fiber.App
	srv *Server
	mr  *miniredis.Miniredis
}

func newAPITest(t *testing.T) *apiTest {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret: "test-secret-key-12345678901234567890123456789012",
		Port:      "0",
		RedisURL:  mr.Addr(),
		Env:       "test",
	}
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)

	return &apiTest{app: app, srv: srv, mr: mr}
}

// do sends a JSON request through the app and decodes the response body.
func (a *apiTest) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

// signup registers a user and returns the auth token and user ID.
func (a *apiTest) signup(t *testing.T, username string) (string, uint) {
	t.Helper()
	status, body := a.do(t, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, status, "signup body: %v", body)
	token := body["token"].(string)
	user := body["user"].(map[string]any)
	return token, uint(user["id"].(float64))
}

func TestAPI_SignupAndLogin(t *testing.T) {
	a := newAPITest(t)

	token, _ := a.signup(t, "alice")
	require.NotEmpty(t, token)

	// Duplicate email is a conflict.
	status, _ := a.do(t, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body := a.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, _ = a.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_FeedRequiresAuth(t *testing.T) {
	a := newAPITest(t)

	status, _ := a.do(t, http.MethodGet, "/api/feed", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = a.do(t, http.MethodGet, "/api/feed", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_PostFanoutAndFeed(t *testing.T) {
	a := newAPITest(t)

	aliceToken, aliceID := a.signup(t, "alice")
	bobToken, _ := a.signup(t, "bob")

	// Bob follows Alice.
	status, body := a.do(t, http.MethodPost,
		fmt.Sprintf("/api/users/%d/follow", aliceID), bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "FOLLOWED_SUCCESSFULLY", body["status"])

	// Alice posts.
	status, body = a.do(t, http.MethodPost, "/api/posts/", aliceToken, fiber.Map{
		"text": "hello from alice",
	})
	require.Equal(t, http.StatusCreated, status, "create post body: %v", body)
	post := body["post"].(map[string]any)
	postID := uint(post["id"].(float64))

	// Bob's feed carries the post.
	status, body = a.do(t, http.MethodGet, "/api/feed", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "FEED_FETCHED", body["status"])
	edges := body["edges"].([]any)
	require.Len(t, edges, 1)
	edge := edges[0].(map[string]any)
	assert.Equal(t, float64(postID), edge["id"])
	assert.Nil(t, body["next_cursor"])

	// Bob likes it; the like count is reflected publicly.
	status, body = a.do(t, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/like", postID), bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "LIKED_SUCCESSFULLY", body["status"])
	assert.Equal(t, float64(1), body["like_count"])

	// Second like is an idempotent status, not an error.
	status, body = a.do(t, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/like", postID), bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ALREADY_LIKED", body["status"])

	status, body = a.do(t, http.MethodGet,
		fmt.Sprintf("/api/posts/%d/likes/count", postID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["like_count"])
}

func TestAPI_EmptyFeed(t *testing.T) {
	a := newAPITest(t)
	token, _ := a.signup(t, "loner")

	status, body := a.do(t, http.MethodGet, "/api/feed", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "EMPTY_FEED", body["status"])
	assert.Empty(t, body["edges"])
}

func TestAPI_InvalidCursor(t *testing.T) {
	a := newAPITest(t)
	token, _ := a.signup(t, "alice")

	status, body := a.do(t, http.MethodGet, "/api/feed?cursor=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestAPI_DeletePostOwnership(t *testing.T) {
	a := newAPITest(t)

	aliceToken, _ := a.signup(t, "alice")
	bobToken, _ := a.signup(t, "bob")

	status, body := a.do(t, http.MethodPost, "/api/posts/", aliceToken, fiber.Map{
		"text": "mine",
	})
	require.Equal(t, http.StatusCreated, status)
	postID := uint(body["post"].(map[string]any)["id"].(float64))

	// Bob cannot delete Alice's post.
	status, _ = a.do(t, http.MethodDelete,
		fmt.Sprintf("/api/posts/%d", postID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Alice can.
	status, body = a.do(t, http.MethodDelete,
		fmt.Sprintf("/api/posts/%d", postID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "POST_DELETED_SUCCESSFULLY", body["status"])

	status, _ = a.do(t, http.MethodGet,
		fmt.Sprintf("/api/posts/%d", postID), "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_CacheDownYields503(t *testing.T) {
	a := newAPITest(t)
	token, _ := a.signup(t, "alice")

	status, body := a.do(t, http.MethodPost, "/api/posts/", token, fiber.Map{
		"text": "before the outage",
	})
	require.Equal(t, http.StatusCreated, status)
	postID := uint(body["post"].(map[string]any)["id"].(float64))

	a.mr.Close()

	status, body = a.do(t, http.MethodGet, "/api/feed", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "CACHE_UNAVAILABLE", body["code"])

	// Mutations that fan out degrade the same way instead of reporting success.
	status, body = a.do(t, http.MethodPost, "/api/posts/", token, fiber.Map{
		"text": "during the outage",
	})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "CACHE_UNAVAILABLE", body["code"])

	status, body = a.do(t, http.MethodDelete,
		fmt.Sprintf("/api/posts/%d", postID), token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "CACHE_UNAVAILABLE", body["code"])
}

func TestAPI_LogoutBlacklistsToken(t *testing.T) {
	a := newAPITest(t)
	token, _ := a.signup(t, "alice")

	status, body := a.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "LOGGED_OUT", body["status"])

	status, _ = a.do(t, http.MethodGet, "/api/feed", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_ReadinessTracksRedis(t *testing.T) {
	a := newAPITest(t)

	status, body := a.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	a.mr.Close()

	status, body = a.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", body["status"])
}
