package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"DailyBrief/internal/ports"
)

// Scheduler wires the cron driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring ingestion.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler. A failed run is
// logged and the next trigger is awaited; a day without any feed text is
// skipped quietly.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		issue, err := s.pipeline.ProcessDay(ctx, trigger)
		switch {
		case errors.Is(err, ErrNoInput):
			s.logger.Info("scheduled ingestion skipped, no feed text", "trigger", trigger.Format(time.RFC3339))
		case err != nil:
			s.logger.Error("scheduled ingestion failed", "trigger", trigger.Format(time.RFC3339), "error", err)
		default:
			s.logger.Debug("scheduled ingestion done", "date", issue.Date, "status", issue.Status)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
