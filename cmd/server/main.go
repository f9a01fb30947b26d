package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/page-comments-api/internal/api"
	"github.com/page-comments-api/internal/config"
	"github.com/page-comments-api/internal/database"
	"github.com/page-comments-api/internal/namespace"
	"github.com/page-comments-api/internal/notify"
	"github.com/page-comments-api/internal/repository"
	"github.com/page-comments-api/internal/service"
	"github.com/page-comments-api/internal/spam"
	"github.com/page-comments-api/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting page comments API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.NewWithOptions(logger.Options{
		Level:      cfg.Log.Level,
		Pretty:     cfg.Log.Format == "pretty" || os.Getenv("ENV") == "development",
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set, authenticated endpoints will reject every request")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	repos := repository.New(db)

	checker, err := spam.NewFromConfig(cfg.Spam, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load spam filter")
	}

	deps := service.Dependencies{
		Namespaces: namespace.New(cfg.Comments),
		Spam:       checker,
	}
	if cfg.Redis.URL != "" {
		queue, err := notify.NewRedisQueue(cfg.Redis.URL, cfg.Redis.NotifyKey)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to notification queue")
		}
		defer queue.Close()
		deps.Notifier = queue
		log.Info().Str("key", cfg.Redis.NotifyKey).Msg("Notifications queued to Redis")
	}

	services := service.NewServices(repos, deps, cfg, log)

	// Start background job processor
	go services.Job.StartProcessor(context.Background())
	log.Info().Msg("Background job processor started")

	router := api.NewRouter(services, cfg, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	services.Job.StopProcessor()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
