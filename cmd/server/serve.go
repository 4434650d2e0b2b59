package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"umarket/internal/app/config"
	"umarket/internal/app/di"
	"umarket/internal/app/router"
	"umarket/internal/platform/db"
	infraredis "umarket/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)
	if err := di.RegisterValidators(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}

	stores, err := openStores(cfg)
	if err != nil {
		return err
	}

	// Redis（任意）
	rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}
	stores = di.WithCache(stores, rdb, cfg)

	engine := router.NewRouter(di.NewHandlers(stores), router.Options{
		JWTSecret:      cfg.SupabaseJWTSecret,
		AllowedOrigins: cfg.AllowedOrigins(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "store_driver", cfg.StoreDriver, "version", Version)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStores は STORE_DRIVER に応じてリポジトリを組み立てます。
func openStores(cfg *config.Config) (di.Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		gdb, err := db.Open(cfg.Database(), cfg.RunMigrations, di.Models()...)
		if err != nil {
			return di.Stores{}, fmt.Errorf("open database: %w", err)
		}
		return di.NewGormStores(gdb, cfg), nil
	default:
		return di.NewSupabaseStores(di.NewSupabaseClient(cfg)), nil
	}
}
