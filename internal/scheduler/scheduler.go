package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/venturedigest/venturedigest/internal/store"
	"github.com/venturedigest/venturedigest/pkg/curate"
	"github.com/venturedigest/venturedigest/pkg/deliver"
)

// Scheduler runs the daily curation pass and ships the result.
type Scheduler struct {
	store    store.Store
	pipeline *curate.Pipeline
	delivery *deliver.Manager
	interval time.Duration
}

// New creates a new scheduler.
func New(s store.Store, pipeline *curate.Pipeline, delivery *deliver.Manager, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		store:    s,
		pipeline: pipeline,
		delivery: delivery,
		interval: interval,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled. The
// first pass runs immediately on start.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Msg("scheduler running")
	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	digest, err := s.pipeline.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("curation run failed")
		return
	}

	if err := s.store.SaveDigest(ctx, digest); err != nil {
		log.Warn().Err(err).Msg("digest archive failed")
	}

	if !s.delivery.HasDeliverers() {
		return
	}
	if err := s.delivery.Broadcast(ctx, digest); err != nil {
		log.Error().Err(err).Msg("digest delivery failed")
		return
	}
	log.Info().Int("items", digest.ItemCount).Msg("digest delivered")
}
