// Package database connects to the optional Postgres reporting sink.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"whatsurv/internal/config"
)

type DB struct {
	*sqlx.DB
}

func connString(cfg config.ReportDB) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DbHOST,
		cfg.DbPORT,
		cfg.DbUSER,
		cfg.DbPASSWORD,
		cfg.DbNAME,
		cfg.DbSSLMODE,
	)
}

// ConnectDB returns nil without error when reporting is disabled.
func ConnectDB(ctx context.Context, cfg *config.Config) (*DB, error) {
	if !cfg.ReportDB.Enabled {
		slog.Info("reporting database disabled")
		return nil, nil
	}

	slog.Info("connecting to reporting database", "host", cfg.ReportDB.DbHOST, "dbname", cfg.ReportDB.DbNAME)

	db, err := sqlx.ConnectContext(ctx, "postgres", connString(cfg.ReportDB))
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к БД отчетов: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	dbStruct := &DB{db}

	if err := dbStruct.RunMigrations(ctx, cfg.ReportDB.Migrations); err != nil {
		slog.Warn("failed to apply reporting migrations", "error", err)
	}

	if err := dbStruct.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("проверка БД отчетов не пройдена: %w", err)
	}

	return dbStruct, nil
}

func (db *DB) CloseDB() error {
	if db == nil {
		return nil
	}
	return db.DB.Close()
}

func (db *DB) RunMigrations(ctx context.Context, migrationFilePath string) error {
	migrationSQL, err := os.ReadFile(migrationFilePath)
	if err != nil {
		return fmt.Errorf("ошибка при чтении файла миграций %s: %w", migrationFilePath, err)
	}

	slog.Info("applying migrations", "file", migrationFilePath)

	if _, err := db.ExecContext(ctx, string(migrationSQL)); err != nil {
		return fmt.Errorf("ошибка при выполнении миграций: %w", err)
	}

	return nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("подключение к БД не инициализировано")
	}

	return db.PingContext(ctx)
}
