package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"groomosphere-backend/internal/jobs"
	"groomosphere-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a scheduler for the given jobs. It fails if any cron spec does
// not parse.
func NewScheduler(toSchedule []jobs.Job) (*Scheduler, error) {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{cron: c}
	if err := s.registerJobs(toSchedule); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers the jobs with the cron scheduler
func (s *Scheduler) registerJobs(toSchedule []jobs.Job) error {
	for _, j := range toSchedule {
		run := j.Run
		if _, err := s.cron.AddFunc(j.Spec, func() { run() }); err != nil {
			logger.Error("Failed to register job", "job", j.Name, "spec", j.Spec, "error", err)
			return fmt.Errorf("register %s: %w", j.Name, err)
		}
		logger.Debug("Registered job", "job", j.Name, "spec", j.Spec)
	}

	logger.Info("All cron jobs registered successfully", "count", len(toSchedule))
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs to finish
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// NextRun returns when the earliest job fires next. Zero before Start.
func (s *Scheduler) NextRun() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}
