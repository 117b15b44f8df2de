package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whatsurv/cmd/app"
	"whatsurv/internal/config"
	handlers "whatsurv/internal/handler"
	"whatsurv/internal/middleware"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()
	app.SetupLogger(cfg.Log)

	if cfg.JWTSecretKey == "" {
		slog.Error("JWT_SECRET_KEY is not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	application, err := app.New(startCtx, cfg)
	cancel()
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	handlerChain := middleware.Chain(
		handlers.NewRouter(application.Handlers),
		middleware.AuthMiddleware(application.Services.Auth),
		middleware.CORSMiddleware,
		middleware.LoggingMiddleware,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           handlerChain,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server started",
			"addr", server.Addr,
			"database", cfg.DocStore.Database,
			"counter_mode", cfg.CounterMode,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown", "error", err)
	}
	application.Close(shutdownCtx)
	slog.Info("server stopped")
}
