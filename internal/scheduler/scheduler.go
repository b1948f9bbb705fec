package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Refresher is what the scheduler refreshes on every tick.
type Refresher interface {
	RefreshAll(ctx context.Context) int
}

// Scheduler periodically re-runs the last search of every open dashboard.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler.
func New(target Refresher, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the refresh job. A non-positive interval disables it.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: auto-refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: auto-refresh started", zap.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) runOnce() {
	// Bounded so a stuck provider cannot pin the job forever.
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	n := s.target.RefreshAll(ctx)
	s.logger.Debug("scheduler: refresh completed", zap.Int("sessions", n))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

var _ Refresher = (*weather.Registry)(nil)
