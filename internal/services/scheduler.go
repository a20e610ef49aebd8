package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"enrollapi/internal/infrastructure"
)

// Scheduler re-warms the dashboard cache on a fixed interval so the
// first request after a TTL expiry never pays the pipeline cost.
type Scheduler struct {
	logger    *slog.Logger
	scheduler *gocron.Scheduler
	service   *DashboardService
	interval  time.Duration
}

// NewScheduler creates the re-warm scheduler. A zero or negative
// interval disables it; Start becomes a no-op.
func NewScheduler(logger *slog.Logger, service *DashboardService, interval time.Duration) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		logger:    infrastructure.WithComponent(logger, "scheduler"),
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
	}
}

// Start begins the periodic refresh in a background goroutine. The first
// run fires immediately so the cache is warm before the server accepts
// traffic.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduled refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).StartImmediately().Do(func() {
		ctx := infrastructure.EnsureTraceID(context.Background())
		start := time.Now()
		if _, err := s.service.Refresh(ctx, "scheduled"); err != nil {
			s.logger.ErrorContext(ctx, "scheduled refresh failed",
				slog.String("error", err.Error()))
			return
		}
		s.logger.InfoContext(ctx, "scheduled refresh completed",
			slog.String("duration", time.Since(start).String()))
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduled refresh started",
		slog.String("interval", s.interval.String()))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
