// Package runtime wires the background workers of the chat server.
// It owns their lifecycle without containing business logic or domain rules.
package runtime

import (
	"chat-poll/contract"
	"chat-poll/runtime/workers"
	"context"
	"log/slog"
	"sync"
)

type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	sweeper    *workers.PresenceSweeperWorker
	started    bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, sweeper *workers.PresenceSweeperWorker) *Orchestrator {
	return &Orchestrator{
		log:        log,
		supervisor: supervisor,
		sweeper:    sweeper,
	}
}

// Start runs one sweep right away so that participants left over from a
// previous run are evicted, then hands the sweeper to the supervisor.
// It blocks until ctx is canceled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return nil
	}
	o.started = true
	o.mu.Unlock()

	if evicted, err := o.sweeper.SweepOnce(ctx); err != nil {
		// The periodic sweeper retries on its own schedule
		o.log.Warn("Initial presence sweep failed", "error", err)
	} else if len(evicted) > 0 {
		o.log.Info("Evicted participants left over from a previous run", "count", len(evicted))
	}

	o.supervisor.Add(o.sweeper)

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// Stop cancels the supervised context. Start returns once every worker is done.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
