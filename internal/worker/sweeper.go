package worker

import (
	"context"
	"time"

	"benchboard/internal/log"
	"benchboard/internal/store"
)

// Sweeper periodically enforces the retention window on the durable tier
// and drops expired entries from the memory tier.
type Sweeper struct {
	store    *store.Store
	interval time.Duration
	logger   *log.Logger
}

func NewSweeper(st *store.Store, interval time.Duration, logger *log.Logger) *Sweeper {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Sweeper{
		store:    st,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentSweeper),
	}
}

// Run sweeps on the configured interval until ctx is cancelled. The first
// sweep happens immediately so a long interval does not delay retention
// after a restart.
func (s *Sweeper) Run(ctx context.Context) error {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "sweeper stopped", log.FieldOperation, log.OpShutdown)
			return ctx.Err()
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed := s.store.CleanupOldData(ctx)
	expired := s.store.CleanExpired()
	if removed || expired > 0 {
		s.logger.InfoContext(ctx, "sweep completed",
			log.FieldOperation, log.OpCleanup,
			"durable_removed", removed,
			"memory_expired", expired)
	}
}
