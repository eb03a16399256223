package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"dealerdesk/config"
	"dealerdesk/middleware"
	"dealerdesk/realtime"
	"dealerdesk/routes"
	"dealerdesk/utils"
	"dealerdesk/worker"
)

func main() {
	logger := log.New(os.Stdout, "DEALERDESK: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	automation := utils.NewAutomationClient(config.AppConfig.Automation)
	hub := realtime.NewHub(log.New(os.Stdout, "REALTIME: ", log.LstdFlags))

	// Start the webhook backstop worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	backstop := worker.NewBackstopWorker(config.DB, automation, log.New(os.Stdout, "BACKSTOP: ", log.LstdFlags), config.AppConfig.BackstopInterval)
	go backstop.Start(ctx)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Setup routes
	routes.SetupRoutes(app, config.DB, automation, hub)

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
