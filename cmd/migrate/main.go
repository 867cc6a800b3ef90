package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"bookstore-service/internal/config"
	"bookstore-service/internal/database"
	"bookstore-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry.InitLogger(os.Stderr, cfg.LogLevel)
	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.DSN(), 1)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	var now time.Time
	if err := pool.QueryRow(ctx, "SELECT NOW()").Scan(&now); err != nil {
		slog.Error("query failed", "error", err)
		os.Exit(1)
	}

	slog.Info("migrations complete", "database_time", now, "database", cfg.DBName, "user", cfg.User)
}
