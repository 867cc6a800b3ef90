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

	"bookstore-service/internal/api/handlers"
	"bookstore-service/internal/auth"
	"bookstore-service/internal/config"
	"bookstore-service/internal/database"
	"bookstore-service/internal/repository"
	"bookstore-service/internal/repository/memory"
	"bookstore-service/internal/service"
	"bookstore-service/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateAuth(); err != nil {
		return err
	}

	telemetry.InitLogger(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	catalog := service.NewCatalogService(store)
	orders := service.NewOrderService(store)
	accounts := service.NewAccountService(store, tokens, cfg.BcryptCost)

	if cfg.AdminEmail != "" {
		if err := accounts.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPass); err != nil {
			return err
		}
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Books:  handlers.NewBookHandler(catalog),
		Orders: handlers.NewOrderHandler(orders),
		Auth:   handlers.NewAuthHandler(accounts),
		Tokens: tokens,
		Store:  store,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	if cfg.StorageDriver == config.DriverMemory {
		slog.Warn("using in-memory storage, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	pool, err := database.Connect(ctx, cfg.DSN(), cfg.MaxConns)
	if err != nil {
		return nil, nil, err
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	return repository.NewPostgresStore(pool), pool.Close, nil
}
