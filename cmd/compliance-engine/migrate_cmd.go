package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/pravnik-mk/compliance-engine/internal/config"
	"github.com/pravnik-mk/compliance-engine/internal/storage"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending assessment store migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			switch cfg.Database.Driver {
			case config.DriverPostgres:
				applied, err := storage.MigrateFromDSN(ctx, cfg.Database.DSN, cfg.Database.MigrationsDir)
				if err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				slog.Info("migrations complete", "driver", cfg.Database.Driver, "applied", applied)
			case config.DriverSQLite:
				repo, err := storage.OpenSQLite(ctx, cfg.Database.SQLitePath)
				if err != nil {
					return err
				}
				slog.Info("migrations complete", "driver", cfg.Database.Driver, "path", cfg.Database.SQLitePath)
				return repo.Close()
			}
			return nil
		},
	}
}
