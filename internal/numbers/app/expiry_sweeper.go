package app

import (
	"context"
	"log/slog"
	"time"
)

// ExpirySweeper periodically flips overdue active numbers to expired. The
// sweep is a correctness backstop: reads already normalize expiry, the
// sweeper just makes the flip durable without waiting for a read.
type ExpirySweeper struct {
	lifecycle *LifecycleService
	interval  time.Duration
	logger    *slog.Logger
}

func NewExpirySweeper(lifecycle *LifecycleService, interval time.Duration, logger *slog.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		lifecycle: lifecycle,
		interval:  interval,
		logger:    logger.With("service", "expiry_sweeper"),
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *ExpirySweeper) Run(ctx context.Context) {
	s.logger.Info("Expiry sweeper started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Expiry sweeper stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			if _, err := s.lifecycle.ExpireDue(ctx); err != nil {
				s.logger.ErrorContext(ctx, "Expiry sweep failed", "error", err)
			}
		}
	}
}
