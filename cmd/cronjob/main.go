package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"groomosphere-backend/internal/config"
	"groomosphere-backend/internal/jobs"
	"groomosphere-backend/internal/logger"
	"groomosphere-backend/internal/repository/postgres"
	"groomosphere-backend/internal/scheduler"
	"groomosphere-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'reset-monthly-earnings')")
	flag.Parse()

	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Groomosphere cronjob runner...", "log_level", cfg.Log.Level)

	// Jobs only make sense against the shared database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(context.Background()); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	// This process serves no matching, so admin changes need no geo index. Each API
	// server refreshes its own.
	jobRunner := jobs.NewJobRunner(&jobs.Services{
		Admin:  service.NewAdminService(store.Barbers(), store.Bookings(), nil),
		Rating: service.NewRatingAggregator(store.Barbers()),
	}, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !runJobOnce(jobRunner, *runOnce) {
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner.StoreJobs())
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "next_run", cronScheduler.NextRun())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and reports whether it succeeded
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	for _, j := range jobRunner.StoreJobs() {
		if j.Name == jobName {
			return j.Run()
		}
	}

	logger.Error("Unknown job name", "job", jobName)
	fmt.Printf("Available jobs:\n")
	for _, j := range jobRunner.StoreJobs() {
		fmt.Printf("  - %s\n", j.Name)
	}
	return false
}
