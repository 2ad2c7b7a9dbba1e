package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/fieldops/field-report-service/internal/api/http"
	"github.com/fieldops/field-report-service/internal/api/http/handlers"
	"github.com/fieldops/field-report-service/internal/auth"
	"github.com/fieldops/field-report-service/internal/config"
	"github.com/fieldops/field-report-service/internal/events"
	"github.com/fieldops/field-report-service/internal/observability"
	"github.com/fieldops/field-report-service/internal/persistence"
	"github.com/fieldops/field-report-service/internal/repository"
	"github.com/fieldops/field-report-service/internal/repository/memory"
	"github.com/fieldops/field-report-service/internal/service"
	"github.com/fieldops/field-report-service/internal/storage"
	"github.com/fieldops/field-report-service/internal/worker"
)

type repositories struct {
	users      repository.UserRepository
	complaints repository.ComplaintRepository
	reports    repository.ServiceReportRepository
	feedback   repository.FeedbackRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(pg, logger)

	location, err := cfg.Feed.Location()
	if err != nil {
		logger.Fatal("invalid feed timezone", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	badges := service.NewBadgeCache(redis.Client, cfg.Feed.BadgeCacheTTL(), logger)
	signer := storage.NewURLSigner(cfg.Storage.BaseURL, cfg.Storage.SigningSecret, cfg.Storage.URLTTL())
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	authService := service.NewAuthService(cfg.Auth, repos.users, tokens, logger)
	submissionService := service.NewSubmissionService(service.SubmissionDependencies{
		ComplaintRepo:     repos.complaints,
		ServiceReportRepo: repos.reports,
		FeedbackRepo:      repos.feedback,
		Dispatcher:        dispatcher,
		Badges:            badges,
		Metrics:           metrics,
		Logger:            logger,
		AllowRetransition: cfg.Review.AllowRetransition,
	})
	feedService := service.NewFeedService(service.FeedDependencies{
		ComplaintRepo:     repos.complaints,
		ServiceReportRepo: repos.reports,
		FeedbackRepo:      repos.feedback,
		UserRepo:          repos.users,
		URLs:              signer,
		Badges:            badges,
		Location:          location,
		Logger:            logger,
	})
	directoryService := service.NewDirectoryService(repos.users)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(auth.NewResolver(tokens, repos.users))

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Submissions:    handlers.NewSubmissionsHandler(submissionService),
		Feed:           handlers.NewFeedHandler(feedService, directoryService),
		Uploads:        handlers.NewUploadsHandler(signer),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

// buildRepositories falls back to the in-memory store when no database is configured.
func buildRepositories(pg *persistence.Postgres, logger *zap.Logger) repositories {
	if !pg.Enabled() {
		logger.Warn("using in-memory repositories; data is lost on restart")
		store := memory.NewStore(nil)
		return repositories{
			users:      store.Users(),
			complaints: store.Complaints(),
			reports:    store.ServiceReports(),
			feedback:   store.Feedback(),
		}
	}
	pool := pg.PoolHandle()
	return repositories{
		users:      repository.NewUserRepository(pool),
		complaints: repository.NewComplaintRepository(pool),
		reports:    repository.NewServiceReportRepository(pool),
		feedback:   repository.NewFeedbackRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
