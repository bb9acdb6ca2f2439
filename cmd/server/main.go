package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/cesargomez89/chartpulse/internal/app"
	"github.com/cesargomez89/chartpulse/internal/config"
	"github.com/cesargomez89/chartpulse/internal/handlers"
	"github.com/cesargomez89/chartpulse/internal/logger"
	"github.com/cesargomez89/chartpulse/internal/scheduler"
	"github.com/cesargomez89/chartpulse/internal/spotify"
	"github.com/cesargomez89/chartpulse/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	loc, err := cfg.Location()
	if err != nil {
		appLogger.Error("Failed to load timezone", "error", err)
		os.Exit(1)
	}

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Spotify client and services
	spotifyClient := spotify.NewClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret, appLogger)
	ingestService := app.NewIngestionService(db, spotifyClient, cfg.PlaylistIDs, loc, appLogger)
	chartService := app.NewChartService(db)
	analyticsService := app.NewAnalyticsService(db, loc)
	searchService := app.NewSearchService(spotifyClient, appLogger)

	// Initialize Scheduler
	if cfg.SchedulerEnabled {
		sched := scheduler.New(ingestService, cfg.Markets, cfg.SnapshotHour, cfg.SnapshotMinute, loc, appLogger)
		sched.Start()
		defer sched.Stop()
	}

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Routes
	h := handlers.NewHandler(ingestService, chartService, analyticsService, searchService, cfg.AdminKey, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exiting")
}
