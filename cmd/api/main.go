package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"github.com/TigerK9/CSCI-432-Final/internal/config"
	"github.com/TigerK9/CSCI-432-Final/internal/database"
	"github.com/TigerK9/CSCI-432-Final/internal/handlers"
	"github.com/TigerK9/CSCI-432-Final/internal/middleware"
	"github.com/TigerK9/CSCI-432-Final/internal/motion"
	"github.com/TigerK9/CSCI-432-Final/internal/routes"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := config.Load()
	middleware.Configure(cfg.JWTSecret)

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	handlers.Motions = motion.NewEngine(
		database.NewMotionStore(database.DB),
		motion.SystemClock{},
		cfg.VotingWindow,
	)

	app := fiber.New()
	app.Use(cors.New())

	routes.Setup(app)

	log.Printf("Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
