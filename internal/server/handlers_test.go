package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"warbler/internal/featureflags"
	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	_, app := newTestApp(t, false)

	alice := signupVia(t, app, "alice")
	assert.NotEmpty(t, alice.Token)
	assert.Equal(t, "alice", alice.User.Username)

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"username": "alice", "email": "x@test.com", "password": "password",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), models.CodeConstraintViolation)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"username": "bob", "email": "not-an-email", "password": "password",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "alice", "password": "password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "\"password\"")

	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFollowEndpoints(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	_, app := newTestApp(t, false)
	alice := signupVia(t, app, "alice")
	bob := signupVia(t, app, "bob")

	resp, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/follow/%d", bob.User.ID), "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/follow/%d", alice.User.ID), alice.Token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/follow/%d", bob.User.ID), alice.Token, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/follow/%d", bob.User.ID), alice.Token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d/following", alice.User.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var following []models.User
	require.NoError(t, json.Unmarshal(body, &following))
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)

	resp, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d", bob.User.ID), alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile struct {
		FollowerCount int64 `json:"follower_count"`
		IsFollowing   *bool `json:"is_following"`
	}
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.Equal(t, int64(1), profile.FollowerCount)
	require.NotNil(t, profile.IsFollowing)
	assert.True(t, *profile.IsFollowing)

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/users/stop-following/%d", bob.User.ID), alice.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/users/abc/followers", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/users/999/followers", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMessageEndpoints(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	_, app := newTestApp(t, false)
	alice := signupVia(t, app, "alice")
	bob := signupVia(t, app, "bob")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/messages", alice.Token, fiber.Map{"text": strings.Repeat("x", 141)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/messages", alice.Token, fiber.Map{"text": "Hello"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var msg models.Message
	require.NoError(t, json.Unmarshal(body, &msg))
	msgPath := fmt.Sprintf("/api/messages/%d", msg.ID)

	resp, _ = doJSON(t, app, http.MethodPost, msgPath+"/like", alice.Token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, msgPath+"/like", bob.Token, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d/likes", bob.User.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Hello")

	resp, _ = doJSON(t, app, http.MethodPost, msgPath+"/delete", bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, msgPath, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/feed", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Hello")

	resp, _ = doJSON(t, app, http.MethodPost, msgPath+"/delete", alice.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, msgPath, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d/likes", bob.User.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "Hello")
}

func TestProfileAndAccountEndpoints(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	_, app := newTestApp(t, false)
	alice := signupVia(t, app, "alice")
	signupVia(t, app, "bob")

	resp, _ := doJSON(t, app, http.MethodPatch, "/api/users/profile", alice.Token, fiber.Map{
		"password": "wrong", "bio": "hi",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPatch, "/api/users/profile", alice.Token, fiber.Map{
		"password": "password", "username": "bob",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPatch, "/api/users/profile", alice.Token, fiber.Map{
		"password": "password", "bio": "Hello there", "location": "Oakland",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Hello there")

	resp, body = doJSON(t, app, http.MethodGet, "/api/users?q=ali", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []models.User
	require.NoError(t, json.Unmarshal(body, &users))
	require.Len(t, users, 1)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/users/delete", alice.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d", alice.User.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMembersOnlyReads(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	_, app := newTestApp(t, true)
	alice := signupVia(t, app, "alice")
	path := fmt.Sprintf("/api/users/%d/followers", alice.User.ID)

	resp, _ := doJSON(t, app, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, path, alice.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	_, app := newTestApp(t, false)
	resp, body := doJSON(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")

	resp, _ = doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFeatureFlags(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	s, app := newTestApp(t, false)
	s.flags = featureflags.Parse("like_notifications=off")
	alice := signupVia(t, app, "alice")

	resp, body := doJSON(t, app, http.MethodGet, "/api/feature-flags", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Evaluated map[string]bool `json:"evaluated"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, map[string]bool{"like_notifications": false}, out.Evaluated)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/feature-flags", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
