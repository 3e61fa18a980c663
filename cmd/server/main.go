package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/annfsu/internal/apperrors"
	"github.com/example/annfsu/internal/config"
	"github.com/example/annfsu/internal/database"
	"github.com/example/annfsu/internal/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	if err := database.SeedSuperAdmin(db, cfg); err != nil {
		log.Printf("super admin seed failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "ANNFSU Backend",
		ErrorHandler: apperrors.Handler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	routes.Register(app, db, cfg)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
