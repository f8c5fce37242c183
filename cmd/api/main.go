package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/tripkit/ops-backend/internal/config"
	"github.com/tripkit/ops-backend/internal/db"
	"github.com/tripkit/ops-backend/internal/events"
	apphttp "github.com/tripkit/ops-backend/internal/http"
	"github.com/tripkit/ops-backend/internal/http/handlers"
	"github.com/tripkit/ops-backend/internal/models"
	"github.com/tripkit/ops-backend/internal/repositories"
	"github.com/tripkit/ops-backend/internal/rollback"
	"github.com/tripkit/ops-backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	contentRepo := repositories.NewContentItemRepo(pool)
	captionRepo := repositories.NewCaptionRepo(pool)
	toolRepo := repositories.NewToolRepo(pool)
	mutationRepo := repositories.NewMutationLogRepo(pool)

	// Rollback engine: one snapshot store per collection, registered once.
	registry := rollback.NewRegistry(map[string]rollback.CollectionStore{
		models.CollectionContentItems: repositories.NewSnapshotStore(pool, "content_items", repositories.ContentItemColumns),
		models.CollectionCaptions:     repositories.NewSnapshotStore(pool, "captions", repositories.CaptionColumns),
		models.CollectionTools:        repositories.NewSnapshotStore(pool, "tools", repositories.ToolColumns),
	})
	executor := rollback.NewExecutor(registry, mutationRepo, log)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	contentService := services.NewContentService(contentRepo, captionRepo, toolRepo, mutationRepo, rdb, publisher, cfg, log)
	rollbackService := services.NewRollbackService(mutationRepo, executor, rdb, publisher, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, log)
	contentHandler := handlers.NewContentHandler(contentService, log)
	mutationHandler := handlers.NewMutationHandler(rollbackService, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, contentHandler, mutationHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting ops API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
