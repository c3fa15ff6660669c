package courseRoutes

import (
	controllers "erudio/controllers/course"
	"erudio/middleware"
	validators "erudio/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupInstructorRoutes sets up course management routes for instructors
func SetupInstructorRoutes(app *fiber.App) {
	instructorGroup := app.Group("/instructor", middleware.JWTMiddleware, middleware.InstructorOnly)

	instructorGroup.Post("/course", validators.CreateCourse(), controllers.CreateCourse)
	instructorGroup.Put("/course/:id", validators.CourseID(), validators.UpdateCourse(), controllers.UpdateCourse)

	instructorGroup.Post("/course/:id/module", validators.CourseID(), validators.CreateModule(), controllers.CreateModule)
	instructorGroup.Post("/course/:id/modules/reorder", validators.CourseID(), validators.Reorder(), controllers.ReorderModules)

	instructorGroup.Post("/module/:moduleId/lesson", validators.ModuleID(), validators.CreateLesson(), controllers.CreateLesson)
	instructorGroup.Post("/module/:moduleId/lessons/reorder", validators.ModuleID(), validators.Reorder(), controllers.ReorderLessons)
}
