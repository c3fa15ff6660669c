package authRoutes

import (
	authController "erudio/controllers/auth"
	validators "erudio/validators/auth"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes sets up registration, verification and login routes
func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", validators.Signup(), authController.Signup)
	authGroup.Get("/verify/:token", authController.VerifyEmail)
	authGroup.Post("/login", validators.Login(), authController.Login)
	authGroup.Post("/set-password", validators.SetPassword(), authController.SetPassword)
}
