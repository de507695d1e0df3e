package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mohammadpnp/client-import/internal/bootstrap"
	"github.com/mohammadpnp/client-import/internal/config"
	"github.com/mohammadpnp/client-import/internal/infrastructure/db"
	"github.com/mohammadpnp/client-import/internal/infrastructure/file"
	"github.com/mohammadpnp/client-import/internal/platform/logging"
)

// environment carries what the commands need so tests can swap the database
// backed use cases for fakes.
type environment struct {
	stdout   io.Writer
	source   *file.LocalSource
	maxRows  int
	useCases func(ctx context.Context) (bootstrap.UseCases, func(), error)
}

func newEnvironment() *environment {
	env := &environment{stdout: os.Stdout}
	cfg, cfgErr := config.Load()
	env.source = file.NewLocalSource(cfg.Import.BaseDir)
	env.maxRows = cfg.Import.MaxRows

	env.useCases = func(ctx context.Context) (bootstrap.UseCases, func(), error) {
		if cfgErr != nil {
			return bootstrap.UseCases{}, nil, cfgErr
		}
		if err := cfg.Validate(); err != nil {
			return bootstrap.UseCases{}, nil, err
		}

		logger, err := logging.NewLogger(cfg.LogLevel)
		if err != nil {
			return bootstrap.UseCases{}, nil, err
		}

		gdb, pool, err := db.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return bootstrap.UseCases{}, nil, err
		}
		infra, closeOptional, err := bootstrap.ConnectOptional(cfg, bootstrap.Infrastructure{DB: gdb, Pool: pool}, logger)
		cleanup := func() {
			closeOptional()
			pool.Close()
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
			_ = logger.Sync()
		}
		if err != nil {
			cleanup()
			return bootstrap.UseCases{}, nil, err
		}

		useCases := bootstrap.NewUseCases(infra, cfg, logger.With(zap.String("source", "clientctl")))
		return useCases, cleanup, nil
	}
	return env
}

func newRootCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "clientctl",
		Short:        "Preview, simulate and import client batch files",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newPreviewCmd(env),
		newSimulateCmd(env),
		newImportCmd(env),
	)
	return cmd
}
