package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pravnik-mk/compliance-engine/internal/config"
	"github.com/pravnik-mk/compliance-engine/internal/storage"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "compliance-engine",
		Short:         "Legal compliance assessment engine for Macedonian companies",
		SilenceUsage: true,
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newCatalogsCmd())
	cmd.AddCommand(newClientsCmd())
	return cmd
}

// loadConfig reads the environment and installs the JSON logger at the configured level
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))

	return cfg, nil
}

// openStore connects the configured assessment store. Postgres schemas are
// migrated before the pool is handed out; SQLite migrates itself on open.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (storage.Repository, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		slog.Info("opening sqlite store", "path", cfg.SQLitePath)
		repo, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverPostgres:
		applied, err := storage.MigrateFromDSN(ctx, cfg.DSN, cfg.MigrationsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		slog.Info("database migrations complete", "applied", applied)

		repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
			DSN:          cfg.DSN,
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
		})
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}
