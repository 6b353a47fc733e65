package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/joshwa2003/hr-helpdesk/internal/config"
	"github.com/joshwa2003/hr-helpdesk/internal/observability"
	"github.com/joshwa2003/hr-helpdesk/internal/service"
)

// EscalationWorker runs the SLA breach sweep on a fixed interval. The sweep
// is single-threaded and idempotent, so a missed or repeated tick is
// harmless.
type EscalationWorker struct {
	escalations *service.EscalationService
	metrics     *observability.Metrics
	logger      *zap.Logger
	interval    time.Duration
}

// NewEscalationWorker builds the worker.
func NewEscalationWorker(escalations *service.EscalationService, metrics *observability.Metrics, logger *zap.Logger, cfg config.SweepConfig) *EscalationWorker {
	return &EscalationWorker{
		escalations: escalations,
		metrics:     metrics,
		logger:      logger,
		interval:    cfg.Interval(),
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (w *EscalationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("escalation sweep started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("escalation sweep stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *EscalationWorker) sweep(ctx context.Context) {
	result, err := w.escalations.SweepEscalations(ctx)
	if err != nil {
		w.logger.Error("escalation sweep run failed", zap.Error(err))
		return
	}
	w.metrics.RecordSweep(result.Checked, result.Escalated, result.Failed)
	if result.Escalated > 0 || result.Failed > 0 {
		w.logger.Info("escalation sweep finished",
			zap.Int("checked", result.Checked),
			zap.Int("escalated", result.Escalated),
			zap.Int("failed", result.Failed))
	}
}
