package routes

import (
	"github.com/edulisthq/institute_listing/handlers"
	"github.com/edulisthq/institute_listing/middleware"
	"github.com/gofiber/fiber/v2"
)

func CourseRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	courses := api.Group("/courses", middleware.Protected(), middleware.InstitutionRequired())
	courses.Post("", handlers.CreateCourse)
	courses.Get("/me", handlers.GetMyCourses)
	courses.Get("/:courseId", handlers.GetCourse)
}
