package handlers

import (
	"github.com/gofiber/fiber/v2"

	"majordomo-backend/middleware"
	"majordomo-backend/services"
)

func SetupAchievementRoutes(app *fiber.App, achievementService *services.AchievementService) {
	achievements := app.Group("/api/achievements", middleware.RequireAuth())

	achievements.Get("/me", achievementService.GetMyAchievements)
	achievements.Get("/users/:userID", achievementService.GetUserAchievements)
	achievements.Post("/users/:userID/check", achievementService.RunCheck)

	achievements.Get("", achievementService.ListAchievements)
	achievements.Post("", achievementService.CreateAchievement)
	achievements.Get("/:id", achievementService.GetAchievement)
	achievements.Delete("/:id", achievementService.DeleteAchievement)
	achievements.Post("/:id/award/:userID", achievementService.AwardAchievement)
}
