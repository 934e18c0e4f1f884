package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/gag-stock-relay/internal/relay"
)

// defaultInterval is used when the configured interval is not positive.
const defaultInterval = 5 * time.Minute

// Runner is the relay operation run on every tick.
type Runner interface {
	Run(ctx context.Context) (relay.RunRecord, error)
}

// Scheduler periodically runs the relay.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	runner     Runner
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger
}

// New creates a new Scheduler. runTimeout bounds a whole run; 0 means no bound.
func New(interval, runTimeout time.Duration, runner Runner, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		runner:     runner,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// Start schedules the periodic job, running it immediately once, and starts
// the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.tick)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: started", slog.Duration("interval", s.interval))
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) tick() {
	s.logger.Debug("scheduler: running relay job")

	ctx := context.Background()
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	// Run already logs and notifies; the error only matters to the run record.
	if _, err := s.runner.Run(ctx); err != nil {
		s.logger.Warn("scheduler: relay job failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("scheduler: completed relay job")
}
