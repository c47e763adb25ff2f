package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ekuzmina/foodgram-go/internal/types"
)

// FieldErrorResponse sends a 400 with the field-keyed validation report as
// the body, matching the shape {"field": ["message", ...], ...}.
func FieldErrorResponse(c *fiber.Ctx, errs types.FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(errs)
}

// ConflictResponse sends a 400 with an {"errors": reason} body. Used for
// duplicate toggle-add, missing toggle-remove and self-subscription.
func ConflictResponse(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"errors": reason,
	})
}

// BadRequestResponse sends a 400 with a detail message.
func BadRequestResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"detail": message,
	})
}

// UnauthorizedResponse sends a 401 detail body.
func UnauthorizedResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"detail": "authentication credentials were not provided",
	})
}

// ForbiddenResponse sends a 403 detail body.
func ForbiddenResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"detail": "you do not have permission to perform this action",
	})
}

// NotFoundResponse sends a 404 detail body.
func NotFoundResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"detail": "not found",
	})
}

// ErrorResponseStruct defines the schema for detail error responses
type ErrorResponseStruct struct {
	Detail string `json:"detail"`
}

// ConflictResponseStruct defines the schema for conflict error responses
type ConflictResponseStruct struct {
	Errors string `json:"errors"`
}
