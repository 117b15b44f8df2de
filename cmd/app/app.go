package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"whatsurv/internal/config"
	"whatsurv/internal/database"
	"whatsurv/internal/docstore"
	handlers "whatsurv/internal/handler"
	"whatsurv/internal/repository"
	"whatsurv/internal/service"
	"whatsurv/internal/storage"
)

type App struct {
	Store    *docstore.Store
	ReportDB *database.DB
	Repo     *repository.Repository
	Services *service.Service
	Handlers *handlers.Handlers
}

// SetupLogger installs the process-wide slog logger.
func SetupLogger(cfg config.Log) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// connection document store
	store, err := docstore.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// connection reporting DB, nil when disabled
	reportDB, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		store.Close(ctx)
		return nil, err
	}

	var sqlDB *sqlx.DB
	if reportDB != nil {
		sqlDB = reportDB.DB
	}

	// connection MinIO
	var images storage.Storage
	if cfg.MinIO.Enabled {
		minioClient, err := storage.NewMinIOClient(ctx, cfg)
		if err != nil {
			reportDB.CloseDB()
			store.Close(ctx)
			return nil, fmt.Errorf("не удалось инициализировать MinIO: %w", err)
		}
		images = minioClient
	} else {
		slog.Info("image storage disabled")
	}

	// enabling dependencies
	repo := repository.NewRepository(store, sqlDB, cfg)
	services := service.NewService(repo, cfg, images)

	checks := map[string]handlers.HealthChecker{"docstore": store}
	if reportDB != nil {
		checks["reportdb"] = reportDB
	}

	return &App{
		Store:    store,
		ReportDB: reportDB,
		Repo:     repo,
		Services: services,
		Handlers: handlers.NewHandlers(services, cfg, checks),
	}, nil
}

func (a *App) Close(ctx context.Context) {
	if err := a.ReportDB.CloseDB(); err != nil {
		slog.Warn("failed to close reporting database", "error", err)
	}
	if err := a.Store.Close(ctx); err != nil {
		slog.Warn("failed to close document store", "error", err)
	}
}
