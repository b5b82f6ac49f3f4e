package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Scheduler wraps gocron scheduler for managing periodic tasks.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(_ context.Context) error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleEvery runs fn every interval. A run still in progress when the
// next one is due delays it instead of overlapping. Returns the job ID.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, fn func()) (string, error) {
	if interval <= 0 {
		return "", ferrors.ValidationError("interval must be > 0").
			WithContext("job", name).Build()
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic job %s: %w", name, err)
	}
	return job.ID().String(), nil
}
