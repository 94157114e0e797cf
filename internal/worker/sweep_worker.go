package worker

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drops records older than its TTL.
type Sweeper interface {
	Sweep(now time.Time) int
}

// SweepWorker evicts expired idempotency records on a fixed interval so keys
// that are never read again do not pile up between requests.
type SweepWorker struct {
	store    Sweeper
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewSweepWorker(store Sweeper, interval time.Duration, logger *slog.Logger) *SweepWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepWorker{
		store:    store,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// Start blocks until ctx is cancelled.
func (w *SweepWorker) Start(ctx context.Context) {
	w.logger.Info("sweep worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sweep worker stopping")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SweepWorker) sweep() {
	if removed := w.store.Sweep(w.now()); removed > 0 {
		w.logger.Debug("expired idempotency records removed", "removed", removed)
	}
}
