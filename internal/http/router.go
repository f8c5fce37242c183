package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/tripkit/ops-backend/internal/config"
	"github.com/tripkit/ops-backend/internal/http/handlers"
	"github.com/tripkit/ops-backend/internal/middleware"
	"github.com/tripkit/ops-backend/internal/rbac"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	contentHandler *handlers.ContentHandler,
	mutationHandler *handlers.MutationHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/token", authHandler.Token)

	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	manageContent := middleware.RequirePermission(rbac.PermManageContent)
	viewMutations := middleware.RequirePermission(rbac.PermViewMutations)
	rollbackMutations := middleware.RequirePermission(rbac.PermRollbackMutations)

	// Content library
	protected.Post("/content-items", manageContent, contentHandler.CreateContentItem)
	protected.Get("/content-items", manageContent, contentHandler.ListContentItems)
	protected.Get("/content-items/:id", manageContent, contentHandler.GetContentItem)
	protected.Put("/content-items/:id", manageContent, contentHandler.UpdateContentItem)
	protected.Delete("/content-items/:id", manageContent, contentHandler.DeleteContentItem)

	protected.Post("/captions", manageContent, contentHandler.CreateCaption)
	protected.Get("/captions", manageContent, contentHandler.ListCaptions)
	protected.Get("/captions/:id", manageContent, contentHandler.GetCaption)
	protected.Put("/captions/:id", manageContent, contentHandler.UpdateCaption)
	protected.Delete("/captions/:id", manageContent, contentHandler.DeleteCaption)

	protected.Post("/tools", manageContent, contentHandler.CreateTool)
	protected.Get("/tools", manageContent, contentHandler.ListTools)
	protected.Get("/tools/:id", manageContent, contentHandler.GetTool)
	protected.Put("/tools/:id", manageContent, contentHandler.UpdateTool)
	protected.Delete("/tools/:id", manageContent, contentHandler.DeleteTool)

	// Mutation log (audit feed)
	protected.Get("/mutations", viewMutations, mutationHandler.ListMutations)
	protected.Get("/mutations/:id", viewMutations, mutationHandler.GetMutation)

	// Rollback (admin only). The batch route is registered before the
	// parameterized one so "rollback" is never parsed as an entry id.
	protected.Post("/mutations/rollback", rollbackMutations, mutationHandler.RollbackBatch)
	protected.Post("/mutations/:id/rollback", rollbackMutations, mutationHandler.Rollback)

	// WebSocket audit feed
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
