package handlers

import (
	"github.com/gofiber/fiber/v2"

	"majordomo-backend/middleware"
	"majordomo-backend/services"
)

func SetupBountyRoutes(app *fiber.App, bountyService *services.BountyService) {
	bounty := app.Group("/api/bounty", middleware.RequireAuth())

	bounty.Get("/today", bountyService.GetTodayBounty)
	bounty.Post("/refresh", bountyService.RefreshBounty)
	bounty.Get("/check/:templateID", bountyService.CheckBounty)
}
