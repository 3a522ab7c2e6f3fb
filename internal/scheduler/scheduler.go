package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Pipeline is one full import-generate-publish pass.
type Pipeline interface {
	Run(ctx context.Context) error
}

// Scheduler loops the pipeline at a fixed interval until the context is
// cancelled. Each run gets its own timeout.
type Scheduler struct {
	pipeline   Pipeline
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewScheduler(pipeline Pipeline, interval, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pipeline:   pipeline,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	if err := s.pipeline.Run(runCtx); err != nil {
		s.logger.Error("pipeline run failed", "error", err)
	}
}
