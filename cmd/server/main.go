package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/botica/internal/config"
	"github.com/example/botica/internal/database"
	"github.com/example/botica/internal/routes"
	"github.com/example/botica/internal/ws"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName: "Botica Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	hub := ws.NewHub(db)
	routes.Register(app, db, cfg, hub)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
