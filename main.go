package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/user-admin-service/internal/config"
	"github.com/SAP-F-2025/user-admin-service/internal/events"
	"github.com/SAP-F-2025/user-admin-service/internal/handlers"
	"github.com/SAP-F-2025/user-admin-service/internal/repositories/casdoor"
	"github.com/SAP-F-2025/user-admin-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/user-admin-service/internal/services"
	"github.com/SAP-F-2025/user-admin-service/internal/utils"
	"github.com/SAP-F-2025/user-admin-service/internal/validator"
	"github.com/SAP-F-2025/user-admin-service/pkg"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "user-admin-service",
		Short:        "Administrative backend for managing users and roles",
		SilenceUsage: true,
		RunE:         func(cmd *cobra.Command, _ []string) error { return serve() },
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default)",
		RunE:  func(cmd *cobra.Command, _ []string) error { return serve() },
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users and archive_users tables",
		RunE:  func(cmd *cobra.Command, _ []string) error { return migrate() },
	})

	return root
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}

func migrate() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if err := postgres.AutoMigrate(db); err != nil {
		return err
	}

	logger.Info("Migration completed")
	return nil
}

func serve() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := newLogger(cfg)
	logger := utils.NewSlogLogger(slogLogger)
	logger.Info("Configuration loaded", "config", cfg.String())

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}

	// Redis is optional; caching is skipped without it
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis, continuing without cache", "error", err)
			redisClient = nil
		}
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		Backend:     cfg.Backend,
	})
	if err := repoManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	publisher, err := events.NewEventPublisher(cfg.Events.KafkaBrokers, slogLogger)
	if err != nil {
		return err
	}

	serviceManager := services.NewServiceManager(repoManager, publisher, slogLogger, validator.New())
	if err := serviceManager.Initialize(context.Background()); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	tokenClient, err := casdoor.NewAdminClient(cfg.Backend)
	if err != nil {
		return err
	}
	repo := repoManager.GetRepository()
	authMiddleware := handlers.NewCasdoorAuthMiddleware(tokenClient, repo.User(), repo.Archive())
	handlerManager := handlers.NewHandlerManager(serviceManager, logger, authMiddleware)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Closes the publisher, database and Redis
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	logger.Info("Server exited")
	return nil
}
