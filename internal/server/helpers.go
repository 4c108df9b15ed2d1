package server

import (
	"errors"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const maxPaginationLimit = 100

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch models.Code(err) {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeConstraintViolation:
		return fiber.StatusConflict
	case models.CodeInvalidOperation:
		return fiber.StatusUnprocessableEntity
	case models.CodeUnauthorized:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes err as a JSON error body with the mapped status.
// Internal errors are logged and their cause is not exposed.
func RespondWithError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	body := models.ErrorResponse{Code: models.Code(err)}

	var appErr *models.AppError
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed", "path", c.Path(), "error", err)
		body.Error = "Internal server error"
	} else if errors.As(err, &appErr) {
		body.Error = appErr.Message
	} else {
		body.Error = err.Error()
	}
	return c.Status(status).JSON(body)
}

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = RespondWithError(c, models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

func actorOf(c *fiber.Ctx) policy.Actor {
	if uid, ok := middleware.UserID(c); ok {
		return policy.Authenticated(uid)
	}
	return policy.Anonymous()
}

// authorize runs the access policy for the caller. A denial for a missing
// session is written as 401; other denials use the error's mapped status.
func (s *Server) authorize(c *fiber.Ctx, action policy.Action, target policy.Target) error {
	actor := actorOf(c)
	err := s.policy.Check(actor, action, target)
	if err == nil {
		return nil
	}
	if !actor.IsAuthenticated() {
		_ = c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
			Error: "Authentication required",
			Code:  models.CodeUnauthorized,
		})
		return errResponseWritten
	}
	_ = RespondWithError(c, err)
	return errResponseWritten
}
