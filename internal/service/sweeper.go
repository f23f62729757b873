package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/domain"
	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/store"
)

// SweeperConfig holds the presence sweeper timings.
type SweeperConfig struct {
	Interval           time.Duration
	StalenessThreshold time.Duration
}

// Sweeper periodically evicts participants whose heartbeat went stale and
// records a departure status message for each one.
type Sweeper struct {
	participants store.ParticipantStore
	messages     store.MessageStore
	config       SweeperConfig
	logger       zerolog.Logger
	now          func() time.Time

	done chan struct{}
}

// NewSweeper creates a sweeper over the given stores.
func NewSweeper(participants store.ParticipantStore, messages store.MessageStore, cfg SweeperConfig, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		participants: participants,
		messages:     messages,
		config:       cfg,
		logger:       logger,
		now:          time.Now,
		done:         make(chan struct{}),
	}
}

// Run executes sweep ticks until ctx is cancelled. Call in a goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.logger.Info().
		Dur("interval", s.config.Interval).
		Dur("staleness_threshold", s.config.StalenessThreshold).
		Msg("presence sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("presence sweeper stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Done is closed once Run has returned.
func (s *Sweeper) Done() <-chan struct{} {
	return s.done
}

// Tick runs one sweep pass. Departure messages for the evicted
// participants are appended concurrently but the tick waits for all of
// them; a single failed append is logged and never blocks the others.
func (s *Sweeper) Tick(ctx context.Context) {
	cutoff := s.now().Add(-s.config.StalenessThreshold)

	evicted, err := s.participants.SweepStale(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep failed")
		return
	}
	if len(evicted) == 0 {
		return
	}

	var g errgroup.Group
	for _, p := range evicted {
		p := p
		g.Go(func() error {
			_, err := s.messages.Append(ctx, domain.Message{
				From: p.Name,
				To:   domain.RecipientEveryone,
				Text: domain.StatusLeft,
				Type: domain.TypeStatus,
			})
			if err != nil {
				s.logger.Error().Err(err).Str("participant", p.Name).
					Msg("failed to record departure")
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn().Int("evicted", len(evicted)).
			Msg("sweep finished with failed departure records")
		return
	}

	s.logger.Info().Int("evicted", len(evicted)).Msg("evicted stale participants")
}
