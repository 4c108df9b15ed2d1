package server

import (
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// CreateMessage handles POST /api/messages
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	me, _ := middleware.UserID(c)
	if err := s.authorize(c, policy.PostMessage, policy.Target{OwnerID: me}); err != nil {
		return nil
	}

	msg, err := s.messages.Create(c.UserContext(), me, req.Text)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetMessage handles GET /api/messages/:id
func (s *Server) GetMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.authorize(c, policy.ViewMessage, policy.Target{}); err != nil {
		return nil
	}
	msg, err := s.messages.Get(c.UserContext(), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(msg)
}

// DeleteMessage handles POST /api/messages/:id/delete. Ownership is decided
// inside the core transaction.
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	me, _ := middleware.UserID(c)
	if err := s.messages.Delete(c.UserContext(), id, me); err != nil {
		return RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeMessage handles POST /api/messages/:id/like
func (s *Server) LikeMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	me, _ := middleware.UserID(c)
	if err := s.likes.Like(c.UserContext(), me, id); err != nil {
		return RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"liked": true})
}

// UnlikeMessage handles POST /api/messages/:id/unlike
func (s *Server) UnlikeMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	me, _ := middleware.UserID(c)
	if err := s.authorize(c, policy.Unlike, policy.Target{}); err != nil {
		return nil
	}
	if err := s.likes.Unlike(c.UserContext(), me, id); err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"liked": false})
}

// GetFeed handles GET /api/feed
func (s *Server) GetFeed(c *fiber.Ctx) error {
	me, _ := middleware.UserID(c)
	page := parsePagination(c, 100)
	messages, err := s.messages.Feed(c.UserContext(), me, page.Limit)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(messages)
}
