package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"warbler/internal/config"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/policy"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIdentity is a testify mock of IdentityCore.
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) Signup(ctx context.Context, in service.SignupInput) (*models.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockIdentity) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockIdentity) UpdateProfile(ctx context.Context, in service.UpdateProfileInput) (*models.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockIdentity) Delete(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockIdentity) GetUser(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockIdentity) ListUsers(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, query, limit, offset)
	u, _ := args.Get(0).([]models.User)
	return u, args.Error(1)
}

func (m *MockIdentity) Profile(ctx context.Context, id uint) (*service.Profile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*service.Profile)
	return p, args.Error(1)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err    error
		status int
	}{
		{models.NewValidationError("bad"), http.StatusBadRequest},
		{models.NewConstraintViolationError("dup", nil), http.StatusConflict},
		{models.NewInvalidOperationError("self"), http.StatusUnprocessableEntity},
		{models.NewUnauthorizedError("nope"), http.StatusForbidden},
		{models.NewNotFoundError("User", 1), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusFor(tt.err), tt.err.Error())
	}
}

func TestLogin_StorageFailureIsInternalError(t *testing.T) {
	identity := new(MockIdentity)
	s := &Server{config: &config.Config{JWTSecret: testJWTSecret}, identity: identity}

	app := fiber.New()
	app.Post("/login", s.Login)

	identity.On("Authenticate", mock.Anything, "alice", "password").
		Return(nil, models.NewInternalError(errors.New("connection refused")))

	resp, body := doJSON(t, app, http.MethodPost, "/login", "", fiber.Map{"username": "alice", "password": "password"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "connection refused")
	identity.AssertExpectations(t)
}

func TestListUsers_PassesQueryAndPagination(t *testing.T) {
	identity := new(MockIdentity)
	s := &Server{config: &config.Config{}, identity: identity, policy: policy.New(false)}

	app := fiber.New()
	app.Get("/users", s.ListUsers)

	identity.On("ListUsers", mock.Anything, "al", 100, 5).
		Return([]models.User{{ID: 1, Username: "alice"}}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users?q=al&limit=500&offset=5", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	identity.AssertExpectations(t)
}

func TestAuthorize_AnonymousDenialIs401(t *testing.T) {
	middleware.InitMiddleware(&config.Config{JWTSecret: testJWTSecret})
	s := &Server{policy: policy.New(true)}

	app := fiber.New()
	app.Get("/x", middleware.AuthOptional, func(c *fiber.Ctx) error {
		if err := s.authorize(c, policy.ViewProfile, policy.Target{OwnerID: 1}); err != nil {
			return nil
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
