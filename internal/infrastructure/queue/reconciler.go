// Package queue runs the background reconciliation of orphaned remote
// accounts: remote accounts that were created while the matching local
// insert failed.
package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/matchpoint/chat-backend/internal/api/metrics"
	"github.com/matchpoint/chat-backend/internal/core/ports"
)

const (
	defaultInterval    = time.Minute
	defaultBatchSize   = 32
	defaultMaxAttempts = 5
)

// Reconciler drains the orphan outbox on a ticker: for each pending entry
// it deletes the remote account through the sync orchestrator and removes
// the entry. Entries keep their attempt count; after maxAttempts they are
// left for manual inspection.
type Reconciler struct {
	outbox      ports.OutboxRepository
	sync        ports.SyncService
	interval    time.Duration
	batchSize   int
	maxAttempts int
	log         zerolog.Logger
}

// NewReconciler creates a Reconciler. Zero-valued tuning parameters fall
// back to defaults.
func NewReconciler(outbox ports.OutboxRepository, sync ports.SyncService, interval time.Duration, log zerolog.Logger) *Reconciler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Reconciler{
		outbox:      outbox,
		sync:        sync,
		interval:    interval,
		batchSize:   defaultBatchSize,
		maxAttempts: defaultMaxAttempts,
		log:         log,
	}
}

// Start launches the reconciliation loop. It stops when ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	go r.run(ctx)
}

func (r *Reconciler) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

// runOnce processes one batch of pending orphans.
func (r *Reconciler) runOnce(ctx context.Context) {
	orphans, err := r.outbox.Pending(ctx, r.maxAttempts, r.batchSize)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to load pending orphans")
		return
	}

	for _, orphan := range orphans {
		if err := r.outbox.RecordAttempt(ctx, orphan.ID); err != nil {
			r.log.Warn().Err(err).Str("orphan_id", orphan.ID).Msg("failed to record cleanup attempt")
		}

		if err := r.sync.DeprovisionAccount(ctx, orphan.RemoteID, orphan.Login, orphan.SecretEnc); err != nil {
			r.log.Error().Err(err).
				Int64("remote_id", orphan.RemoteID).
				Int("attempts", orphan.Attempts+1).
				Msg("orphan cleanup failed")
			continue
		}

		if err := r.outbox.MarkResolved(ctx, orphan.ID); err != nil {
			r.log.Error().Err(err).Str("orphan_id", orphan.ID).Msg("failed to mark orphan resolved")
			continue
		}

		metrics.OrphansResolvedTotal.Inc()
		r.log.Info().Int64("remote_id", orphan.RemoteID).Msg("orphaned remote account cleaned up")
	}
}
