package teamRoutes

import (
	teamController "erudio/controllers/team"
	"erudio/middleware"
	validators "erudio/validators/team"

	"github.com/gofiber/fiber/v2"
)

// SetupTeamRoutes sets up team and plan routes
func SetupTeamRoutes(app *fiber.App) {
	planGroup := app.Group("/plan")
	planGroup.Get("/list", middleware.JWTMiddleware, teamController.GetPlans)

	teamGroup := app.Group("/team")
	teamGroup.Get("/", middleware.JWTMiddleware, teamController.GetTeam)
	teamGroup.Post("/member", middleware.JWTMiddleware, validators.AddMember(), teamController.AddMember)
	teamGroup.Delete("/member/:id", middleware.JWTMiddleware, validators.MemberID(), teamController.RemoveMember)
}
