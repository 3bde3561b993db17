package routes

import (
	"github.com/edulisthq/institute_listing/handlers"
	"github.com/edulisthq/institute_listing/middleware"
	"github.com/gofiber/fiber/v2"
)

func SubscriptionRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// The gateway authenticates itself with the webhook signature, not a JWT.
	api.Post("/subscriptions/webhook", handlers.HandleListingWebhook)

	subscriptions := api.Group("/subscriptions", middleware.Protected(), middleware.InstitutionRequired())
	subscriptions.Post("/order", handlers.CreateListingOrder)
	subscriptions.Get("/verify", handlers.VerifyListingPayment)
}
