package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const sweepBatchSize = 100

type orphanSweeper interface {
	SweepOrphans(ctx context.Context, olderThan time.Duration, batch int) (int, error)
}

// MediaSweepWorker removes uploaded images that no product ever referenced.
type MediaSweepWorker struct {
	sweeper   orphanSweeper
	interval  time.Duration
	olderThan time.Duration
}

// NewMediaSweepWorker constructs a MediaSweepWorker.
func NewMediaSweepWorker(sweeper orphanSweeper, interval, olderThan time.Duration) *MediaSweepWorker {
	return &MediaSweepWorker{
		sweeper:   sweeper,
		interval:  interval,
		olderThan: olderThan,
	}
}

// Start begins the sweep loop and listens for context cancellation.
func (w *MediaSweepWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		log.Info().Msg("Media sweep worker disabled")
		return
	}
	log.Info().Dur("interval", w.interval).Dur("older_than", w.olderThan).Msg("Starting media sweep worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Media sweep worker stopped")
			return
		}
	}
}

func (w *MediaSweepWorker) run(ctx context.Context) {
	removed, err := w.sweeper.SweepOrphans(ctx, w.olderThan, sweepBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sweep orphaned media")
		return
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Orphaned media swept")
	}
}
