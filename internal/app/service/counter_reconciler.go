package service

import (
	"context"
	"time"

	apprepository "github.com/sifan077/PowerQR/internal/app/repository"
	"go.uber.org/zap"
)

// CounterReconciler periodically rewrites the Redis scan counters from the
// authoritative scan table, repairing drift from dropped notifications.
type CounterReconciler struct {
	logger   *zap.Logger
	stats    apprepository.ScanStatsRepository
	counters apprepository.ScanCounterRepository
	interval time.Duration
	stopChan chan struct{}
}

// NewCounterReconciler creates a new counter reconciler.
func NewCounterReconciler(logger *zap.Logger, stats apprepository.ScanStatsRepository, counters apprepository.ScanCounterRepository, interval time.Duration) *CounterReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CounterReconciler{
		logger:   logger,
		stats:    stats,
		counters: counters,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs one reconciliation immediately and then on every interval.
func (r *CounterReconciler) Start() {
	go r.run()
}

// Stop stops the periodic reconciliation.
func (r *CounterReconciler) Stop() {
	close(r.stopChan)
}

func (r *CounterReconciler) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Reconcile(context.Background())
	for {
		select {
		case <-ticker.C:
			r.Reconcile(context.Background())
		case <-r.stopChan:
			r.logger.Info("counter reconciler stopped")
			return
		}
	}
}

// Reconcile performs one pass.
func (r *CounterReconciler) Reconcile(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()

	counts, err := r.stats.CountsByQRCode(ctx)
	if err != nil {
		r.logger.Error("failed to load scan counts", zap.Error(err))
		return
	}

	if err := r.counters.Replace(ctx, counts); err != nil {
		r.logger.Error("failed to replace scan counters", zap.Error(err))
		return
	}

	if len(counts) > 0 {
		r.logger.Info("scan counters reconciled", zap.Int("codes", len(counts)))
	}
}
