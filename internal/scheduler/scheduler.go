package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultInterval is used when a non-positive interval is requested.
const DefaultInterval = 15 * time.Minute

// Fetcher is the part of weather.Service the scheduler drives.
type Fetcher interface {
	Run(ctx context.Context, providerName, location string, date *time.Time) (weather.Record, error)
}

// Job describes one periodic lookup.
type Job struct {
	Provider string
	Location string
	Interval time.Duration
	Timeout  time.Duration

	// OnResult receives every outcome, in schedule order.
	OnResult func(weather.Record, error)
}

// Scheduler periodically fetches weather data for a single location.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Fetcher
	job       Job
}

// New creates a new Scheduler.
func New(job Job, service Fetcher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if job.Interval <= 0 {
		job.Interval = DefaultInterval
	}
	return &Scheduler{
		scheduler: s,
		service:   service,
		job:       job,
	}
}

// Start schedules the job and starts the underlying scheduler. The first run
// happens immediately.
func (s *Scheduler) Start() error {
	if s.job.Location == "" {
		return errors.New("scheduler: no location configured")
	}

	seconds := int(s.job.Interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}

	_, err := s.scheduler.Every(seconds).Seconds().Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) runOnce() {
	log := logger.GetLogger()
	log.Debugw("scheduler: running weather fetch job", "location", s.job.Location)

	ctx := context.Background()
	if s.job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.job.Timeout)
		defer cancel()
	}

	rec, err := s.service.Run(ctx, s.job.Provider, s.job.Location, nil)
	if err != nil {
		log.Debugw("scheduler: fetch failed", "location", s.job.Location, "error", err)
	}
	if s.job.OnResult != nil {
		s.job.OnResult(rec, err)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
