package main

import (
	"erudio/config"
	"erudio/database"
	authRoutes "erudio/routers/authRoutes"
	courseRoutes "erudio/routers/courseRoutes"
	paymentRoutes "erudio/routers/paymentRoutes"
	teamRoutes "erudio/routers/teamRoutes"
	"erudio/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"log"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	utils.StartEventDispatcher()
	utils.InitializeTeamScheduler()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupInstructorRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)
	teamRoutes.SetupTeamRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
