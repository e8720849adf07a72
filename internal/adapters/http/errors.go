package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fieldops/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`            // Error code: bad_request, not_found, invalid_coordinate, etc.
	Message   string `json:"message"`         // Human-readable message
	Field     string `json:"field,omitempty"` // Rejected field, for validation errors
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errUnauthorized returns a 401 error.
func errUnauthorized(c *fiber.Ctx, msg string) error {
	return newError(c, 401, "unauthorized", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// errFrom maps a service error onto the matching HTTP response.
func errFrom(c *fiber.Ctx, err error) error {
	var fe *domain.FieldError
	switch {
	case errors.As(err, &fe):
		reqID, _ := c.Locals("requestid").(string)
		return c.Status(400).JSON(APIError{
			Status:    400,
			Code:      "validation_error",
			Message:   fe.Message,
			Field:     fe.Field,
			RequestID: reqID,
		})
	case errors.Is(err, domain.ErrInvalidCoordinate):
		return newError(c, 422, "invalid_coordinate", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrSetLocation):
		LoggerFromCtx(c.UserContext()).Error("set location failed", "path", c.Path(), "error", err)
		return newError(c, 500, "set_location_failed", domain.ErrSetLocation.Error())
	case errors.Is(err, domain.ErrConflict):
		return errConflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return newError(c, 409, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrValidation):
		return newError(c, 400, "validation_error", err.Error())
	}
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}
