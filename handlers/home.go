package handlers

import (
	"github.com/gofiber/fiber/v2"

	"majordomo-backend/middleware"
	"majordomo-backend/services"
)

func SetupHomeRoutes(app *fiber.App, homeService *services.HomeService) {
	// 🔓 Public: creating a home and joining one precede having a token.
	app.Post("/api/homes", homeService.CreateHome)
	app.Post("/api/homes/:id/join", homeService.JoinHome)

	// 🔐 Everything else requires a member token.
	secured := app.Group("/api/homes", middleware.RequireAuth())
	secured.Get("", homeService.ListHomes)
	secured.Get("/:id", homeService.GetHome)
	secured.Get("/:id/users", homeService.HomeUsers)
	secured.Delete("/:id", homeService.DeleteHome)
}
