package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/smart-faculty/auth-service/internal/api/http"
	"github.com/smart-faculty/auth-service/internal/api/http/handlers"
	"github.com/smart-faculty/auth-service/internal/auth"
	"github.com/smart-faculty/auth-service/internal/clients"
	"github.com/smart-faculty/auth-service/internal/config"
	"github.com/smart-faculty/auth-service/internal/events"
	"github.com/smart-faculty/auth-service/internal/observability"
	"github.com/smart-faculty/auth-service/internal/persistence"
	"github.com/smart-faculty/auth-service/internal/repository"
	"github.com/smart-faculty/auth-service/internal/service"
)

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

	metrics := observability.NewMetrics("auth_service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	principalRepo := repository.NewPrincipalRepository(pg.PoolHandle())
	revocationCache := repository.NewRevocationCache(redis.Client)

	profiles := clients.NewUserServiceClient(cfg.Services.UserServiceURL, cfg.Services.Timeout(), logger)
	notifier := clients.NewNotificationClient(
		cfg.Services.NotificationServiceURL,
		cfg.Services.Timeout(),
		clients.WithRateLimit(cfg.Services.NotifyRatePerSecond, cfg.Services.NotifyBurst),
	)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, notifier, metrics, logger)
	notificationService.RegisterHandlers()

	authService, err := service.NewAuthService(*cfg, service.AuthDependencies{
		Principals: principalRepo,
		Cache:      revocationCache,
		Profiles:   profiles,
		Mailer:     notifier,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}

	app := httptransport.NewApp(*cfg, logger, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth: handlers.NewAuthHandler(authService, handlers.CookieConfig{
			Secure: cfg.Auth.CookieSecure,
			MaxAge: cfg.Auth.RefreshTTL(),
		}),
		Password:       handlers.NewPasswordHandler(authService),
		Users:          handlers.NewUsersHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(cfg.App.ShutdownTimeout()); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	notificationService.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
