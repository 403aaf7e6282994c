package workers

import (
	"chat-poll/contract"
	"chat-poll/observability"
	"context"
	"log/slog"
	"time"
)

// PresenceSweeperWorker periodically evicts participants whose last heartbeat
// is older than the idle threshold. Each eviction appends a leave status
// message to the log in the same write as the removal.
type PresenceSweeperWorker struct {
	log          *slog.Logger
	participants contract.IParticipantRepository
	clock        contract.IClock
	metrics      *observability.Metrics
	interval     time.Duration
	idle         time.Duration
}

func NewPresenceSweeperWorker(
	log *slog.Logger,
	participants contract.IParticipantRepository,
	clock contract.IClock,
	metrics *observability.Metrics,
	interval, idle time.Duration,
) *PresenceSweeperWorker {
	return &PresenceSweeperWorker{
		log:          log,
		participants: participants,
		clock:        clock,
		metrics:      metrics,
		interval:     interval,
		idle:         idle,
	}
}

// Run sweeps once per interval until ctx is canceled.
// A failed sweep is logged and the next tick runs as usual.
func (w *PresenceSweeperWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping presence sweeper")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.SweepOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.log.Error("Presence sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce runs a single eviction pass and returns the evicted names.
func (w *PresenceSweeperWorker) SweepOnce(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	evicted, err := w.participants.EvictStale(w.clock.Now(), w.idle)
	if w.metrics != nil {
		w.metrics.ObserveSweep(time.Since(start), len(evicted), err)
	}
	if err != nil {
		return nil, err
	}
	if len(evicted) > 0 {
		w.log.Info("Evicted idle participants", "count", len(evicted), "names", evicted)
	}
	return evicted, nil
}
