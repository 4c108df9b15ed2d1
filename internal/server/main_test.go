package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"warbler/internal/config"
	"warbler/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key-12345678901234567890123456789012"

func newTestApp(t *testing.T, membersOnly bool) (*Server, *fiber.App) {
	t.Helper()
	cfg := &config.Config{
		Env:              "test",
		JWTSecret:        testJWTSecret,
		BcryptCost:       4,
		MembersOnlyReads: membersOnly,
	}
	s, err := NewServerWithDeps(cfg, testutil.NewTestDB(t), nil)
	require.NoError(t, err)
	return s, s.App()
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, data
}

type signedUp struct {
	Token string `json:"token"`
	User  struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
}

func signupVia(t *testing.T, app *fiber.App, username string) signedUp {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"username": username,
		"email":    username + "@test.com",
		"password": "password",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var out signedUp
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}
