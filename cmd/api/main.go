package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/civigo/citizen-portal/internal/api/http"
	"github.com/civigo/citizen-portal/internal/api/http/handlers"
	"github.com/civigo/citizen-portal/internal/auth"
	"github.com/civigo/citizen-portal/internal/config"
	"github.com/civigo/citizen-portal/internal/events"
	"github.com/civigo/citizen-portal/internal/observability"
	"github.com/civigo/citizen-portal/internal/persistence"
	"github.com/civigo/citizen-portal/internal/repository"
	"github.com/civigo/citizen-portal/internal/service"
	"github.com/civigo/citizen-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	sectorRepo := repository.NewSectorRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	queueRepo := repository.NewQueueRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	board := service.NewNowServingBoard(redis)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	catalogService := service.NewCatalogService(sectorRepo, serviceRepo)
	queueService := service.NewQueueService(service.QueueDependencies{
		QueueRepo:   queueRepo,
		ServiceRepo: serviceRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
		Board:       board,
	})
	notificationService := service.NewNotificationService(notificationRepo, dispatcher, logger)
	analyticsService := service.NewAnalyticsService(queueRepo, board)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Queue:          handlers.NewQueueHandler(queueService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
