package handlers

import (
	"github.com/gofiber/fiber/v2"

	"majordomo-backend/middleware"
	"majordomo-backend/services"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	users := app.Group("/api/users", middleware.RequireAuth())

	// /me before /:id, fiber matches in registration order.
	users.Get("/me", userService.GetMe)
	users.Get("", userService.ListUsers)
	users.Get("/:id", userService.GetUser)

	users.Post("/:id/xp", userService.GrantXP)
	users.Post("/:id/gold", userService.GrantGold)
	users.Post("/:id/avatar", userService.UploadAvatar)

	users.Put("/:id", userService.UpdateUser)
	users.Delete("/:id", userService.DeleteUser)
}
