// Trivial - leveled quiz game over Telegram
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/trivialuned/trivial-bot/internal/api"
	"github.com/trivialuned/trivial-bot/internal/config"
	"github.com/trivialuned/trivial-bot/internal/game"
	"github.com/trivialuned/trivial-bot/internal/store"
	"github.com/trivialuned/trivial-bot/internal/telegram"
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

	slog.Info("Starting bot", "db_path", cfg.DBPath, "health_port", cfg.HealthPort)

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

	botAPI, err := telegram.NewAPI(cfg.BotToken, cfg.Debug)
	if err != nil {
		slog.Error("Failed to authorise Telegram bot", "error", err)
		os.Exit(1)
	}

	// Initialize the quiz engine.
	sessions := game.NewSessionStore()
	loader := game.NewQuestionLoader(repo)
	messenger := telegram.NewMessenger(botAPI)
	engine := game.NewEngine(sessions, repo, loader, messenger)

	bot := telegram.NewBot(botAPI, engine, repo, messenger, cfg.PollTimeout)

	// Operational HTTP surface.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	api.NewHealthHandler(repo).RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HealthPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Health server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Health server failed", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		bot.Run(ctx)
	}()
	slog.Info("Bot polling for updates")

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Health server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Bot stopped successfully")
}
