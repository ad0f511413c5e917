package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelior/calex/internal/api"
	"github.com/avelior/calex/internal/auth"
	"github.com/avelior/calex/internal/config"
	"github.com/avelior/calex/internal/export"
	"github.com/avelior/calex/internal/hubspot"
	"github.com/avelior/calex/internal/pipeline"
	"github.com/avelior/calex/internal/progress"
	"github.com/avelior/calex/internal/scheduler"
	"github.com/avelior/calex/internal/storage"
	"github.com/avelior/calex/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Str("range_start", cfg.RangeStart.Format("2006-01-02")).
		Str("range_end", cfg.RangeEnd.Format("2006-01-02")).
		Int("workers", cfg.Workers).
		Msg("starting calex exporter")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create progress hub
	hub := progress.NewHub(log.Logger)
	go hub.Run()

	// Create HubSpot client
	client := hubspot.NewClient(cfg.HubSpotBaseURL, cfg.HubSpotToken, cfg.PageLimit, log.Logger)

	// Create run history store
	runStore, err := storage.NewRunStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize run store")
	}

	// Create dataset uploader and sink
	uploader, err := storage.NewUploader(ctx, cfg.ExportBucket, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize uploader")
	}
	sink := export.NewDatasetSink(cfg.ExportDir, uploader, log.Logger)

	// Create pipeline
	pipe := pipeline.New(cfg, client, client, sink, runStore, hub, log.Logger)

	// Create export handler
	exportHandler := api.NewExportHandler(pipe, runStore, log.Logger)

	// Create progress websocket handler
	wsHandler := progress.NewHandler(hub, log.Logger)

	// Start scheduler if an interval is configured
	if cfg.Interval > 0 {
		sched := scheduler.NewScheduler(pipe, cfg.Interval, log.Logger)
		go sched.Start(ctx)
	}

	// Kick off an initial run
	if cfg.RunOnStart {
		if err := pipe.StartBackground(ctx); err != nil {
			log.Error().Err(err).Msg("initial export run failed to start")
		}
	}

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)

	// Protected control routes
	r.Route("/internal", func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Post("/run", exportHandler.TriggerRun)
		r.Get("/run/stats", exportHandler.GetStats)
		r.Get("/run/history", exportHandler.GetHistory)
	})

	// Progress stream
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Get("/ws", wsHandler.ServeHTTP)
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop scheduler and any in-flight run
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"calex-exporter"}`)
}
