// Salescoach - sales training conversation simulator server
package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ovasilenko/salescoach/internal/api"
	"github.com/ovasilenko/salescoach/internal/config"
	"github.com/ovasilenko/salescoach/internal/identity"
	"github.com/ovasilenko/salescoach/internal/live"
	"github.com/ovasilenko/salescoach/internal/llm"
	"github.com/ovasilenko/salescoach/internal/middleware"
	"github.com/ovasilenko/salescoach/internal/narration"
	"github.com/ovasilenko/salescoach/internal/persona"
	"github.com/ovasilenko/salescoach/internal/session"
	"github.com/ovasilenko/salescoach/internal/sim"
	"github.com/ovasilenko/salescoach/internal/store"
)

const (
	rateLimitRequests = 20
	rateLimitWindow   = time.Minute
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	catalog, err := persona.NewCatalog()
	if err != nil {
		slog.Error("Failed to load persona catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("Persona catalog loaded", "count", len(catalog.List()))

	// Pick the LLM provider: Gemini when credentials are present, otherwise
	// the offline canned-response provider keeps the simulator usable.
	var provider llm.Provider
	aiEnabled := false
	if cfg.Gemini.APIKey != "" {
		gemini, err := llm.NewGeminiProvider(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
		if err != nil {
			slog.Warn("Failed to initialize Gemini provider, falling back to offline responses", "error", err)
			provider = llm.NewOfflineProvider()
		} else {
			provider = gemini
			aiEnabled = true
			slog.Info("Gemini provider initialized", "model", cfg.Gemini.Model)
		}
	} else {
		provider = llm.NewOfflineProvider()
		slog.Info("AI disabled (GEMINI_API_KEY not set), using offline provider")
	}

	hub := live.NewHub(logger)

	var narrator narration.Narrator = narration.Noop{}
	if cfg.IsDevelopment() {
		narrator = narration.Logging{Logger: logger}
	}

	orch := sim.NewOrchestrator(provider, narrator, hub, rand.NewPCG(rand.Uint64(), rand.Uint64()), logger)
	sessions := session.NewManager(catalog, orch, repo, logger)

	rateLimiter := api.NewRateLimiter(rateLimitRequests, rateLimitWindow)
	baseHandler := api.NewHandler(sessions, catalog, repo, hub, rateLimiter, cfg.MaxHistoryPerUser, cfg.IsDevelopment())
	healthHandler := api.NewHealthHandler(baseHandler, aiEnabled)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	// The configured frontend origin gets a credentialed CORS grant so the
	// identity cookie works cross-origin. Everything else is wildcard-only.
	corsOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		corsOrigins = append(corsOrigins, cfg.FrontendURL)
	}
	r.Use(middleware.CORS(corsOrigins))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	healthHandler.RegisterHealth(r)
	baseHandler.RegisterRoutes(r)

	// SSE turn streams need long-lived writes, so no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions.StartTTLWorker(ctx, cfg.SessionTTL)
	slog.Info("TTL worker started", "session_ttl", cfg.SessionTTL)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
