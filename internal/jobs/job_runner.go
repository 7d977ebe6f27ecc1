package jobs

import (
	"context"
	"time"

	"groomosphere-backend/internal/config"
	"groomosphere-backend/internal/logger"
	"groomosphere-backend/internal/service"
)

const jobTimeout = 5 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Barber service.BarberService
	Admin  service.AdminService
	Rating service.RatingAggregator
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery. It reports whether the job
// ran to completion without error.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			ok = false
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	if err := jobFunc(ctx); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return false
	}
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
	return true
}

// Job is a named unit of scheduled work.
type Job struct {
	Name string
	Spec string
	Run  func() bool
}

// IndexJobs maintain state local to an API server process and must run inside it.
func (jr *JobRunner) IndexJobs() []Job {
	return []Job{
		{Name: "refresh-geo-index", Spec: jr.config.Scheduler.RefreshGeoIndex, Run: jr.RefreshGeoIndex},
	}
}

// StoreJobs write to the store and run once per deployment.
func (jr *JobRunner) StoreJobs() []Job {
	return []Job{
		{Name: "reset-monthly-earnings", Spec: jr.config.Scheduler.ResetMonthlyEarnings, Run: jr.ResetMonthlyEarnings},
		{Name: "recompute-ratings", Spec: jr.config.Scheduler.RecomputeRatings, Run: jr.RecomputeRatings},
	}
}
