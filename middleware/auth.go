package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"majordomo-backend/apperrors"
	"majordomo-backend/utils"
)

// RequireAuth validates the Bearer token and attaches the caller's identity
// to the request as the user_id and home_id locals. Every route except
// health, login, home create/join and the uploads static mount sits behind it.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return unauthorized(c, apperrors.New(apperrors.CodeMissingToken).
				WithMessage("Missing authorization header"))
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return unauthorized(c, apperrors.New(apperrors.CodeInvalidToken).
				WithMessage("Invalid authorization header"))
		}

		claims, err := utils.VerifyAccessToken(parts[1])
		if err != nil {
			return unauthorized(c, apperrors.New(apperrors.CodeInvalidToken).
				WithMessage("Invalid or expired token"))
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("home_id", claims.HomeID)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, appErr *apperrors.AppError) error {
	return c.Status(appErr.Status).JSON(fiber.Map{"detail": appErr})
}
