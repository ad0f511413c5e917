package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/avelior/calex/internal/pipeline"
	"github.com/rs/zerolog"
)

// Runner starts an export run
type Runner interface {
	Run(ctx context.Context) (*pipeline.RunSummary, error)
}

// Scheduler periodically triggers export runs
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   zerolog.Logger
}

// NewScheduler creates a new Scheduler
func NewScheduler(runner Runner, interval time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Start triggers runs on every tick until the context is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return

		case <-ticker.C:
			if _, err := s.runner.Run(ctx); err != nil {
				if errors.Is(err, pipeline.ErrRunInProgress) {
					s.logger.Debug().Msg("skipping tick, export already running")
					continue
				}
				s.logger.Error().Err(err).Msg("scheduled export failed")
			}
		}
	}
}
