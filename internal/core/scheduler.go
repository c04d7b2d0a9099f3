package core

// scheduler.go purges the import history on a schedule.
//
// Each run deletes entries older than the retention in batches until a batch
// comes back short, so a large backlog never holds one long transaction. A
// failed run is logged and retried at the next tick.

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonMunkholm/codeimport/internal/config"
	db "github.com/JonMunkholm/codeimport/internal/database"
)

// Defaults for zero HistoryConfig fields.
const (
	DefaultHistoryRetentionDays = 365
	DefaultHistoryBatchSize     = 5000
	DefaultHistoryInterval      = 24 * time.Hour
)

// maxPurgeBatches caps one run; the remainder waits for the next tick.
const maxPurgeBatches = 100

func historyDefaults(cfg config.HistoryConfig) config.HistoryConfig {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultHistoryRetentionDays
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultHistoryBatchSize
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultHistoryInterval
	}
	return cfg
}

// StartHistoryScheduler purges old import history immediately, then every
// CheckInterval, until ctx is cancelled. It blocks; run it in a goroutine.
func (s *Service) StartHistoryScheduler(ctx context.Context, cfg config.HistoryConfig) {
	cfg = historyDefaults(cfg)
	slog.Info("history scheduler started",
		"retention_days", cfg.RetentionDays,
		"batch_size", cfg.BatchSize,
		"interval", cfg.CheckInterval,
	)

	s.runHistoryPurge(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("history scheduler stopped")
			return
		case <-ticker.C:
			s.runHistoryPurge(ctx, cfg)
		}
	}
}

func (s *Service) runHistoryPurge(ctx context.Context, cfg config.HistoryConfig) {
	start := time.Now()
	purged, err := purgeInBatches(ctx, cfg, func(ctx context.Context) (int64, error) {
		return db.New(s.pool).PurgeImports(ctx, int32(cfg.RetentionDays), int32(cfg.BatchSize))
	})
	if err != nil {
		slog.Error("history purge failed", "error", err, "entries_purged", purged)
		return
	}
	slog.Info("history purge completed",
		"entries_purged", purged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// purgeInBatches calls purge until it removes fewer than a full batch, ctx
// ends, or maxPurgeBatches is reached. It returns the total removed.
func purgeInBatches(ctx context.Context, cfg config.HistoryConfig, purge func(context.Context) (int64, error)) (int64, error) {
	var total int64
	for i := 0; i < maxPurgeBatches; i++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := purge(ctx)
		total += n
		if err != nil {
			return total, err
		}
		if n < int64(cfg.BatchSize) {
			break
		}
	}
	return total, nil
}
