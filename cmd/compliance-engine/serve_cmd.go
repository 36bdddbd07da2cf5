package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pravnik-mk/compliance-engine/internal/api"
	"github.com/pravnik-mk/compliance-engine/internal/assessment"
	"github.com/pravnik-mk/compliance-engine/internal/cache"
	"github.com/pravnik-mk/compliance-engine/internal/catalog"
	"github.com/pravnik-mk/compliance-engine/internal/config"
	"github.com/pravnik-mk/compliance-engine/internal/health"
	"github.com/pravnik-mk/compliance-engine/internal/metrics"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the assessment HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	slog.Info("starting compliance-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"storage", cfg.Database.Driver,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	repo, err := openStore(initCtx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open assessment store: %w", err)
	}
	defer repo.Close()
	slog.Info("assessment store connected")

	registry := health.NewRegistry(2 * time.Second)
	registry.Register("store", health.CheckerFunc(repo.Ping))

	var assessmentCache cache.AssessmentCache = cache.Nop{}
	if cfg.Redis.Address != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			return fmt.Errorf("failed to connect assessment cache: %w", err)
		}
		defer redisCache.Close()

		assessmentCache = redisCache
		registry.Register("cache", redisCache)
	}

	loader := catalog.NewLoader()
	if err := loader.LoadBuiltin(); err != nil {
		return fmt.Errorf("failed to load built-in catalogs: %w", err)
	}

	var reloader *catalog.Reloader
	if cfg.Catalogs.Dir != "" {
		n, err := loader.LoadFromDir(cfg.Catalogs.Dir)
		if err != nil {
			slog.Warn("failed to load catalogs from dir", "dir", cfg.Catalogs.Dir, "error", err)
		} else {
			slog.Info("published catalogs loaded", "dir", cfg.Catalogs.Dir, "count", n)
		}
		reloader = catalog.NewReloader(loader, cfg.Catalogs.Dir, cfg.Catalogs.ReloadInterval)
	}
	metrics.SetCatalogsLoaded(len(loader.List()))

	manager := assessment.NewManager(loader, repo, assessmentCache)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if reloader != nil {
		reloader.Start(ctx)
	}

	server, err := api.NewServer(cfg.Server, manager, loader, registry, repo)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:         server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("HTTP server error: %w", err)
	}

	slog.Info("shutting down gracefully...")

	// Stop background workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("compliance-engine stopped")
	return nil
}
