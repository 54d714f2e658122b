package handlers

import (
	"github.com/gofiber/fiber/v2"

	"majordomo-backend/middleware"
	"majordomo-backend/services"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService) {
	auth := app.Group("/api/auth")

	// 🔓 Public: logging in is how you get a token in the first place.
	auth.Post("/login", middleware.LoginRateLimit(), authService.Login)

	// Dev convenience; the handler itself refuses in production.
	auth.Get("/dev/token", authService.DevToken)
}
