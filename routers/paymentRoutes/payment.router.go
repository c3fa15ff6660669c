package paymentRoutes

import (
	paymentController "erudio/controllers/payment"
	"erudio/middleware"
	validators "erudio/validators/payment"

	"github.com/gofiber/fiber/v2"
)

// SetupPaymentRoutes sets up checkout and verification routes
func SetupPaymentRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")
	courseGroup.Post("/:slug/pay", middleware.JWTMiddleware, validators.CourseSlug(), paymentController.InitiateCoursePayment)

	planGroup := app.Group("/plan")
	planGroup.Post("/:id/subscribe", middleware.JWTMiddleware, validators.PlanID(), paymentController.InitiateTeamSubscription)

	paymentGroup := app.Group("/payment")
	paymentGroup.Get("/verify", middleware.JWTMiddleware, validators.VerifyReference(), paymentController.VerifyPayment)
}
