package handlers

import (
	"github.com/gofiber/fiber/v2"

	"majordomo-backend/middleware"
	"majordomo-backend/services"
)

func SetupRewardRoutes(app *fiber.App, shopService *services.ShopService) {
	rewards := app.Group("/api/rewards", middleware.RequireAuth())

	rewards.Get("/user/:userID/claims", shopService.GetUserClaims)

	rewards.Get("", shopService.ListRewards)
	rewards.Post("", shopService.CreateReward)
	rewards.Get("/:id", shopService.GetReward)
	rewards.Delete("/:id", shopService.DeleteReward)
	rewards.Post("/:id/claim", shopService.ClaimReward)
}
