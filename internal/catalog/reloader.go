package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/pravnik-mk/compliance-engine/internal/metrics"
)

// Reloader periodically rescans a catalog directory so newly published
// catalog versions become available without a restart
type Reloader struct {
	loader   *Loader
	dir      string
	interval time.Duration
}

// NewReloader creates a new reload worker
func NewReloader(loader *Loader, dir string, interval time.Duration) *Reloader {
	if interval <= 0 {
		interval = time.Minute
	}

	return &Reloader{
		loader:   loader,
		dir:      dir,
		interval: interval,
	}
}

// Start begins the reload worker in a goroutine
func (r *Reloader) Start(ctx context.Context) {
	go r.run(ctx)
}

// run is the main loop for the reload worker
func (r *Reloader) run(ctx context.Context) {
	slog.Info("catalog reloader started", "dir", r.dir, "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("catalog reloader stopped")
			return
		case <-ticker.C:
			r.Reload()
		}
	}
}

// Reload rescans the directory once and returns the number of new catalogs
func (r *Reloader) Reload() int {
	slog.Debug("running catalog reload cycle", "dir", r.dir)

	n, err := r.loader.LoadFromDir(r.dir)
	if err != nil {
		slog.Error("failed to reload catalogs", "dir", r.dir, "error", err)
		return 0
	}

	if n > 0 {
		slog.Info("new catalog versions loaded", "count", n)
		metrics.SetCatalogsLoaded(len(r.loader.List()))
	}
	return n
}
