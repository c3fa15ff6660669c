package courseRoutes

import (
	controllers "erudio/controllers/course"
	"erudio/middleware"
	validators "erudio/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Catalog
	courseGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/:slug", middleware.JWTMiddleware, validators.CourseSlug(), controllers.GetCourseDetails)

	// Free enrollment
	courseGroup.Post("/:slug/enroll", middleware.JWTMiddleware, validators.CourseSlug(), controllers.EnrollFree)

	// Learning
	courseGroup.Get("/:slug/lesson/:lessonSlug", middleware.JWTMiddleware, validators.LessonParams(), controllers.GetLesson)
	courseGroup.Get("/:slug/progress", middleware.JWTMiddleware, validators.CourseSlug(), controllers.GetCourseProgress)

	lessonGroup := app.Group("/lesson")
	lessonGroup.Post("/:id/complete", middleware.JWTMiddleware, validators.LessonID(), controllers.MarkLessonComplete)

	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetMyEnrollments)
}
