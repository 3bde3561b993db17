package routes

import (
	"github.com/edulisthq/institute_listing/handlers"
	"github.com/edulisthq/institute_listing/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/coupons", handlers.CreateCoupon)
	admin.Get("/coupons", handlers.ListCoupons)
	admin.Patch("/coupons/:couponId/deactivate", handlers.DeactivateCoupon)
}
