// Package httperr maps domain errors onto API responses.
package httperr

import (
	"errors"

	"github.com/ahmedkatalov/fowWorkProject/app/database"
	"github.com/ahmedkatalov/fowWorkProject/app/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Status picks the HTTP status for err.
func Status(err error) int {
	var fe services.FieldErrors
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fiber.StatusBadRequest
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, services.ErrDuplicateClient):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrCommentRequired),
		errors.Is(err, services.ErrUnknownStatus),
		errors.Is(err, services.ErrInvalidPayment):
		return fiber.StatusBadRequest
	case errors.Is(err, database.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// JSON writes err in the API error shape. Server errors are logged and their
// details withheld.
func JSON(c *fiber.Ctx, logger *zap.Logger, err error) error {
	code := Status(err)
	body := fiber.Map{"success": false, "code": code, "error": err.Error()}

	var fe services.FieldErrors
	if errors.As(err, &fe) {
		body["error"] = "validation failed"
		body["fields"] = fe
	}
	if code == fiber.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		body["error"] = "internal error"
	}
	return c.Status(code).JSON(body)
}
