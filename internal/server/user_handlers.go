package server

import (
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/policy"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
)

type profileResponse struct {
	*service.Profile
	IsFollowing *bool `json:"is_following,omitempty"`
}

// ListUsers handles GET /api/users?q=
func (s *Server) ListUsers(c *fiber.Ctx) error {
	if err := s.authorize(c, policy.ViewProfile, policy.Target{}); err != nil {
		return nil
	}
	page := parsePagination(c, 50)
	users, err := s.identity.ListUsers(c.UserContext(), c.Query("q"), page.Limit, page.Offset)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.authorize(c, policy.ViewProfile, policy.Target{OwnerID: id}); err != nil {
		return nil
	}

	profile, err := s.identity.Profile(c.UserContext(), id)
	if err != nil {
		return RespondWithError(c, err)
	}

	resp := profileResponse{Profile: profile}
	if me, ok := middleware.UserID(c); ok && me != id {
		following, err := s.follows.IsFollowing(c.UserContext(), me, id)
		if err != nil {
			return RespondWithError(c, err)
		}
		resp.IsFollowing = &following
	}
	return c.JSON(resp)
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.authorize(c, policy.ViewFollowing, policy.Target{OwnerID: id}); err != nil {
		return nil
	}
	users, err := s.follows.FollowingOf(c.UserContext(), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(users)
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.authorize(c, policy.ViewFollowers, policy.Target{OwnerID: id}); err != nil {
		return nil
	}
	users, err := s.follows.FollowersOf(c.UserContext(), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(users)
}

// GetLikes handles GET /api/users/:id/likes
func (s *Server) GetLikes(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.authorize(c, policy.ViewLikes, policy.Target{OwnerID: id}); err != nil {
		return nil
	}
	messages, err := s.likes.LikedMessagesOf(c.UserContext(), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(messages)
}

// GetUserMessages handles GET /api/users/:id/messages
func (s *Server) GetUserMessages(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.authorize(c, policy.ViewProfile, policy.Target{OwnerID: id}); err != nil {
		return nil
	}
	page := parsePagination(c, 100)
	messages, err := s.messages.ListByUser(c.UserContext(), id, page.Limit)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(messages)
}

// Follow handles POST /api/users/follow/:id
func (s *Server) Follow(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.authorize(c, policy.Follow, policy.Target{OwnerID: id}); err != nil {
		return nil
	}
	me, _ := middleware.UserID(c)
	if err := s.follows.Follow(c.UserContext(), me, id); err != nil {
		return RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"following": true})
}

// StopFollowing handles POST /api/users/stop-following/:id
func (s *Server) StopFollowing(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.authorize(c, policy.Unfollow, policy.Target{OwnerID: id}); err != nil {
		return nil
	}
	me, _ := middleware.UserID(c)
	if err := s.follows.Unfollow(c.UserContext(), me, id); err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"following": false})
}

// UpdateProfile handles PATCH /api/users/profile
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		Password       string  `json:"password"`
		Username       *string `json:"username"`
		Email          *string `json:"email"`
		ImageURL       *string `json:"image_url"`
		HeaderImageURL *string `json:"header_image_url"`
		Bio            *string `json:"bio"`
		Location       *string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	me, _ := middleware.UserID(c)
	if err := s.authorize(c, policy.EditProfile, policy.Target{OwnerID: me}); err != nil {
		return nil
	}

	user, err := s.identity.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:          me,
		CurrentPassword: req.Password,
		Username:        req.Username,
		Email:           req.Email,
		ImageURL:        req.ImageURL,
		HeaderImageURL:  req.HeaderImageURL,
		Bio:             req.Bio,
		Location:        req.Location,
	})
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(user)
}

// DeleteAccount handles POST /api/users/delete
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	me, _ := middleware.UserID(c)
	if err := s.authorize(c, policy.DeleteProfile, policy.Target{OwnerID: me}); err != nil {
		return nil
	}
	if err := s.identity.Delete(c.UserContext(), me); err != nil {
		return RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
