package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"dealerdesk/config"
	controller "dealerdesk/controllers"
	"dealerdesk/middleware"
	"dealerdesk/realtime"
	"dealerdesk/utils"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", controller.GetCurrentUser)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, automation *utils.AutomationClient, hub *realtime.Hub) {
	leadController := controller.NewLeadController(db, log.New(os.Stdout, "LEAD: ", log.LstdFlags), automation, hub)
	pipelineController := controller.NewPipelineController(db, log.New(os.Stdout, "PIPELINE: ", log.LstdFlags), hub)
	campaignController := controller.NewCampaignController(db, log.New(os.Stdout, "CAMPAIGN: ", log.LstdFlags))
	conversationController := controller.NewConversationController(db, log.New(os.Stdout, "CONVO: ", log.LstdFlags), automation, hub)
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))
	adminController := controller.NewAdminController(db, log.New(os.Stdout, "ADMIN: ", log.LstdFlags))
	webhookController := controller.NewWebhookController(db, log.New(os.Stdout, "WEBHOOK: ", log.LstdFlags), hub)

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", dashboardController.GetDashboardStats)
	dashboard.Get("/message-volume", dashboardController.GetMessageVolume)

	// Lead routes
	lead := api.Group("/leads")
	lead.Post("/", leadController.CreateLead)
	lead.Get("/", leadController.GetLeads)
	lead.Get("/check-phone", leadController.CheckPhone)
	lead.Get("/export", leadController.ExportLeads)
	lead.Get("/pool", leadController.GetLeadPool)
	lead.Post("/send-first-message", middleware.BulkSendRateLimiter(), leadController.SendFirstMessage)
	lead.Post("/import/validate", leadController.ValidateImport)
	lead.Post("/import", leadController.ImportLeads)
	lead.Get("/:id", leadController.GetLead)
	lead.Put("/:id", leadController.UpdateLead)
	lead.Put("/:id/stage", leadController.UpdateLeadStage)
	lead.Post("/:id/claim", leadController.ClaimLead)
	lead.Delete("/:id", middleware.AdminOnly(), leadController.DeleteLead)

	// Pipeline stage routes; reads for everyone, mutation is admin only
	pipeline := api.Group("/pipeline/stages")
	pipeline.Get("/", pipelineController.GetStages)
	pipeline.Post("/", middleware.AdminOnly(), pipelineController.CreateStage)
	pipeline.Put("/:id", middleware.AdminOnly(), pipelineController.UpdateStage)
	pipeline.Delete("/:id", middleware.AdminOnly(), pipelineController.DeleteStage)

	// Tag campaign routes; catalog and reads for everyone, CRUD admin only
	campaign := api.Group("/campaigns")
	campaign.Get("/catalog", campaignController.GetCatalog)
	campaign.Get("/", campaignController.GetCampaigns)
	campaign.Get("/:id", campaignController.GetCampaign)
	campaign.Post("/", middleware.AdminOnly(), campaignController.CreateCampaign)
	campaign.Put("/:id", middleware.AdminOnly(), campaignController.UpdateCampaign)
	campaign.Delete("/:id", middleware.AdminOnly(), campaignController.DeleteCampaign)

	// Conversation routes
	conversation := api.Group("/conversations")
	conversation.Get("/", conversationController.GetConversations)
	conversation.Get("/:id", conversationController.GetConversation)
	conversation.Post("/:id/messages", conversationController.SendMessage)
	conversation.Put("/:id/read", conversationController.MarkRead)
	conversation.Post("/:id/take-over", conversationController.TakeOver)
	conversation.Post("/:id/call", conversationController.InitiateCall)

	// Settings
	settings := api.Group("/settings")
	settings.Get("/preferences", controller.GetPreferences)
	settings.Put("/preferences", controller.UpdatePreferences)

	// Admin user management
	admin := api.Group("/admin", middleware.AdminOnly())
	admin.Get("/users", adminController.GetUsers)
	admin.Post("/users", adminController.CreateUser)
	admin.Put("/users/:id", adminController.UpdateUserRole)
	admin.Delete("/users/:id", adminController.DeleteUser)

	// Inbound provider callbacks; shared-token auth, no JWT
	webhooks := app.Group("/webhooks", middleware.WebhookAuth(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	webhooks.Post("/sms/status", webhookController.DeliveryStatus)
	webhooks.Post("/sms/inbound", webhookController.InboundSMS)
	webhooks.Post("/handoff", webhookController.Handoff)

	// Realtime invalidation feed
	app.Get("/api/v1/realtime", websocket.New(hub.Handler()))

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, automation *utils.AutomationClient, hub *realtime.Hub) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "environment": config.AppConfig.Environment})
	})

	SetupAuthRoutes(app, db)
	SetupAPIRoutes(app, db, automation, hub)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
