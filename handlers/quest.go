package handlers

import (
	"github.com/gofiber/fiber/v2"

	"majordomo-backend/middleware"
	"majordomo-backend/services"
)

func SetupQuestRoutes(app *fiber.App, questService *services.QuestService, templateService *services.TemplateService) {
	quests := app.Group("/api/quests", middleware.RequireAuth())

	// Template routes first: "templates" must not be swallowed by /:id.
	quests.Get("/templates", templateService.ListTemplates)
	quests.Post("/templates", templateService.CreateTemplate)
	quests.Get("/templates/:id", templateService.GetTemplate)
	quests.Put("/templates/:id", templateService.UpdateTemplate)
	quests.Delete("/templates/:id", templateService.DeleteTemplate)
	quests.Post("/templates/:id/generate-instance", templateService.GenerateInstance)

	// Other literal paths that would otherwise match /:id.
	quests.Post("/standalone", questService.CreateStandaloneQuest)
	quests.Post("/check-corruption", questService.CheckCorruption)
	quests.Get("/user/:userID", questService.GetUserQuests)

	quests.Get("", questService.ListQuests)
	quests.Post("", questService.CreateQuest)
	quests.Get("/:id", questService.GetQuest)
	quests.Put("/:id", questService.UpdateQuest)
	quests.Delete("/:id", questService.DeleteQuest)
	quests.Post("/:id/complete", questService.CompleteQuest)
	quests.Post("/:id/convert-to-template", questService.ConvertToTemplate)

	// Hardware buttons and voice assistants hit this one.
	triggers := app.Group("/api/triggers", middleware.RequireAuth())
	triggers.Post("/quest/:templateID", questService.TriggerQuest)
}
