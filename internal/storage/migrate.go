package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pravnik-mk/compliance-engine/internal/storage/migrations"
)

// PostgresMigrations returns the migration source for PostgreSQL: the given
// directory when set, otherwise the migrations compiled into the binary
func PostgresMigrations(dir string) (fs.FS, string) {
	if strings.TrimSpace(dir) != "" {
		return os.DirFS(dir), "."
	}
	return migrations.Postgres, "postgres"
}

// RunMigrations executes all pending .sql migrations found under root in fsys
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, root string) (int, error) {
	// Ensure migrations table exists
	if err := createMigrationsTable(ctx, pool); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := getAppliedMigrations(ctx, pool)
	if err != nil {
		return 0, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	pending, err := listMigrations(fsys, root)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, migration := range pending {
		if applied[migration] {
			slog.Debug("migration already applied", "migration", migration)
			continue
		}

		slog.Info("applying migration", "migration", migration)

		content, err := fs.ReadFile(fsys, path.Join(root, migration))
		if err != nil {
			return count, fmt.Errorf("failed to read migration %s: %w", migration, err)
		}

		// One transaction per file so a failed migration leaves no partial schema
		tx, err := pool.Begin(ctx)
		if err != nil {
			return count, fmt.Errorf("failed to begin transaction for %s: %w", migration, err)
		}

		if _, err := tx.Exec(ctx, string(content)); err != nil {
			_ = tx.Rollback(ctx)
			return count, fmt.Errorf("failed to execute migration %s: %w", migration, err)
		}

		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, migration); err != nil {
			_ = tx.Rollback(ctx)
			return count, fmt.Errorf("failed to record migration %s: %w", migration, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return count, fmt.Errorf("failed to commit migration %s: %w", migration, err)
		}

		count++
		slog.Info("migration applied successfully", "migration", migration)
	}

	return count, nil
}

// listMigrations returns the .sql file names under root, in apply order
func listMigrations(fsys fs.FS, root string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// createMigrationsTable creates the schema_migrations table if it doesn't exist
func createMigrationsTable(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`
	_, err := pool.Exec(ctx, query)
	return err
}

// getAppliedMigrations returns a set of applied migration names
func getAppliedMigrations(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}

	return applied, rows.Err()
}

// MigrateFromDSN connects to PostgreSQL and applies pending migrations from
// dir, or from the embedded set when dir is empty
func MigrateFromDSN(ctx context.Context, dsn, dir string) (int, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	fsys, root := PostgresMigrations(dir)
	return RunMigrations(ctx, pool, fsys, root)
}
