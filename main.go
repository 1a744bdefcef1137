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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	appLogger "github.com/rawi-ai/rawi-guide/app/logger"
	"github.com/rawi-ai/rawi-guide/app/observability/metrics"
	"github.com/rawi-ai/rawi-guide/config"
	"github.com/rawi-ai/rawi-guide/internal/api/auth"
	"github.com/rawi-ai/rawi-guide/internal/api/chat"
	generativeAI "github.com/rawi-ai/rawi-guide/internal/api/generative_ai"
	"github.com/rawi-ai/rawi-guide/internal/api/landmark"
	"github.com/rawi-ai/rawi-guide/internal/api/memory"
	"github.com/rawi-ai/rawi-guide/internal/api/stats"
	"github.com/rawi-ai/rawi-guide/internal/cache"
	"github.com/rawi-ai/rawi-guide/internal/resolver"
	"github.com/rawi-ai/rawi-guide/internal/router"
	"github.com/rawi-ai/rawi-guide/internal/session"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics.InitAppMetrics()

	// --- Local cache setup ---
	store, err := cache.Open(cfg.Cache.Path, logger)
	if err != nil {
		logger.Error("Failed to open local cache", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	// --- Data resolution ---
	remote := landmark.NewSupabaseRecordStore(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Supabase.Table, logger)
	coll, tier := resolver.New(remote, store, logger).Resolve(ctx)

	state := session.NewState(logger)
	state.SetDataTier(tier)

	// --- AI client. A missing key degrades chat to offline replies. ---
	var generator chat.Generator
	aiClient, err := generativeAI.NewAIClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		logger.Warn("AI client unavailable, chat runs in offline mode", slog.Any("error", err))
	} else {
		generator = aiClient
	}

	// --- Dependency injection ---
	landmarkService := landmark.NewService(coll, remote, store, logger)
	landmarkHandler := landmark.NewHandler(landmarkService, state, logger)

	chatService := chat.NewService(generator, landmarkService, state, logger)
	chatHandler := chat.NewHandler(chatService, logger)

	memoryService := memory.NewService(store, landmarkService, state, logger)
	memoryHandler := memory.NewHandler(memoryService, logger)

	statsService := stats.NewService(landmarkService, logger)
	statsHandler := stats.NewHandler(statsService, logger)

	authService := auth.NewService(cfg, logger)
	authHandler := auth.NewHandler(authService, logger)

	sessionHandler := session.NewHandler(state, logger)

	// --- Router Setup ---
	routerConfig := &router.Config{
		AuthHandler:            authHandler,
		LandmarkHandler:        landmarkHandler,
		ChatHandler:            chatHandler,
		MemoryHandler:          memoryHandler,
		StatsHandler:           statsHandler,
		SessionHandler:         sessionHandler,
		AuthenticateMiddleware: auth.Authenticate(logger, cfg.JWT.SecretKey),
	}
	mainRouter := router.SetupRouter(routerConfig)

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(60 * time.Second))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", mainRouter)

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server",
			slog.String("address", serverAddress),
			slog.String("tier", string(tier)))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
