package services

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"majordomo-backend/apperrors"
)

// respondError writes a domain error in the wire shape the frontend expects:
// {"detail": {"code", "message", "details"}}. Anything that is not an
// AppError is treated as an internal failure.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(fiber.Map{"detail": appErr})
	}
	log.Printf("❌ Internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

// currentUserID reads the authenticated user set by the auth middleware.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// currentHomeID reads the authenticated user's home set by the auth middleware.
func currentHomeID(c *fiber.Ctx) string {
	id, _ := c.Locals("home_id").(string)
	return id
}
