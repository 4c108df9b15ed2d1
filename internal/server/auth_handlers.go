package server

import (
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
)

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		ImageURL string `json:"image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.identity.Signup(c.UserContext(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return RespondWithError(c, err)
	}

	token, err := middleware.IssueToken(s.config.JWTSecret, user.ID, user.Username)
	if err != nil {
		return RespondWithError(c, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.identity.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return RespondWithError(c, err)
	}
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
			Error: "Invalid credentials",
			Code:  models.CodeUnauthorized,
		})
	}

	token, err := middleware.IssueToken(s.config.JWTSecret, user.ID, user.Username)
	if err != nil {
		return RespondWithError(c, models.NewInternalError(err))
	}
	return c.JSON(authResponse{Token: token, User: user})
}
