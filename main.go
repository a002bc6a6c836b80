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

	"github.com/msomdec/taskflow/internal/config"
	"github.com/msomdec/taskflow/internal/handler"
	"github.com/msomdec/taskflow/internal/metrics"
	"github.com/msomdec/taskflow/internal/repository/sqlite"
	"github.com/msomdec/taskflow/internal/service"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DatabasePath, sqlite.WithStoreTimeout(cfg.StoreTimeout))
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "path", cfg.DatabasePath)

	m := metrics.New()
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(db.Users(), tokens, cfg.BcryptCost)
	taskService := service.NewTaskService(db.Tasks(), m)

	authLimiter := service.NewKeyedLimiter(cfg.AuthRatePerSec, cfg.AuthRateBurst)
	defer authLimiter.Close()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Auth:        authService,
		Tokens:      tokens,
		Tasks:       taskService,
		DB:          db,
		AuthLimiter: authLimiter,
		Metrics:     m.Handler(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.Chain(mux, m.Instrument, handler.NewCORS(cfg.AllowedOrigins())),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
