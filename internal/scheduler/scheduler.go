// Package scheduler runs the batch on a fixed interval until its context
// is cancelled.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/valmer/pricetracker/internal/tracker"
)

// BatchRunner is the orchestrator slice the loop invokes each tick.
type BatchRunner interface {
	RunBatch(ctx context.Context) (tracker.Summary, error)
}

// Config controls the loop cadence and the per-run wall-clock budget.
type Config struct {
	Interval   time.Duration
	RunTimeout time.Duration
}

// Run executes one batch immediately, then one per interval, blocking until
// ctx is cancelled. Each run gets its own timeout so a stalled batch cannot
// eat the next slot.
func Run(ctx context.Context, runner BatchRunner, cfg Config, logger *zap.Logger) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 10 * time.Minute
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	logger.Info("scheduler started",
		zap.Duration("interval", cfg.Interval),
		zap.Duration("run_timeout", cfg.RunTimeout))

	runOnce(ctx, runner, cfg.RunTimeout, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			runOnce(ctx, runner, cfg.RunTimeout, logger)
		}
	}
}

func runOnce(ctx context.Context, runner BatchRunner, timeout time.Duration, logger *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	summary, err := runner.RunBatch(runCtx)
	if err != nil {
		logger.Error("batch run aborted", zap.Error(err))
		return
	}
	logger.Info("batch run summary",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("alerts_sent", summary.AlertsSent))
}
