package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mohammadpnp/client-import/internal/bootstrap"
	"github.com/mohammadpnp/client-import/internal/config"
	"github.com/mohammadpnp/client-import/internal/infrastructure/db"
	"github.com/mohammadpnp/client-import/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("client import api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DBMigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
			return err
		}
	}

	gdb, pool, err := db.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	infra, closeOptional, err := bootstrap.ConnectOptional(cfg, bootstrap.Infrastructure{DB: gdb, Pool: pool}, logger)
	defer closeOptional()
	if err != nil {
		return err
	}

	server := bootstrap.NewHTTPServer(cfg, infra, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("client import api listening", zap.String("port", cfg.Port))
		if err := server.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
