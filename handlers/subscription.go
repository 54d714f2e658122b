package handlers

import (
	"github.com/gofiber/fiber/v2"

	"majordomo-backend/middleware"
	"majordomo-backend/services"
)

func SetupSubscriptionRoutes(app *fiber.App, subscriptionService *services.SubscriptionService) {
	subs := app.Group("/api/subscriptions", middleware.RequireAuth())

	subs.Get("/upcoming", subscriptionService.ListUpcoming)

	subs.Get("", subscriptionService.ListSubscriptions)
	subs.Post("", subscriptionService.CreateSubscription)
	subs.Get("/:id", subscriptionService.GetSubscription)
	subs.Patch("/:id", subscriptionService.UpdateSubscription)
	subs.Delete("/:id", subscriptionService.DeleteSubscription)
}
