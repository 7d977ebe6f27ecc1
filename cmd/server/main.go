package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	httpapi "groomosphere-backend/internal/api/http"
	"groomosphere-backend/internal/config"
	"groomosphere-backend/internal/geo"
	"groomosphere-backend/internal/jobs"
	"groomosphere-backend/internal/logger"
	"groomosphere-backend/internal/mq"
	"groomosphere-backend/internal/repository"
	"groomosphere-backend/internal/repository/memory"
	"groomosphere-backend/internal/repository/postgres"
	"groomosphere-backend/internal/scheduler"
	"groomosphere-backend/internal/security"
	"groomosphere-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Groomosphere backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "storage", cfg.Storage.Type, "payment", cfg.Payment.Type)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	// Initialize Payment Processor
	var payments service.PaymentProcessor
	switch cfg.Payment.Type {
	case "amqp":
		publisher, err := mq.NewPublisher(cfg.Payment.AMQPURL, cfg.Payment.Exchange)
		if err != nil {
			logger.Error("Failed to connect to message broker", "error", err)
			log.Fatalf("Failed to connect to message broker: %v", err)
		}
		defer publisher.Close()
		payments = service.NewAMQPPaymentProcessor(publisher, cfg.Payment.RoutingKey)
	default:
		logger.Info("Using log payment processor")
		payments = service.NewLogPaymentProcessor()
	}

	// Initialize Services
	index := geo.NewIndex()
	bookingSvc := service.NewBookingService(store.Bookings(), store.Barbers(), payments, service.BookingOptions{
		CommissionRate: func() float64 { return cfg.Booking.CommissionRate },
		MaxRetries:     cfg.Booking.MaxRetries,
		Index:          index,
	})
	barberSvc := service.NewBarberService(store.Barbers(), store.Bookings(), index, cfg.Matching.DefaultRadiusKm)
	matchingSvc := service.NewMatchingService(index, service.MatchingOptions{
		DefaultRadiusKm: cfg.Matching.DefaultRadiusKm,
		MaxRadiusKm:     cfg.Matching.MaxRadiusKm,
		MaxResults:      cfg.Matching.MaxResults,
	})
	adminSvc := service.NewAdminService(store.Barbers(), store.Bookings(), index)

	n, err := barberSvc.RefreshIndex(ctx)
	if err != nil {
		logger.Error("Failed to load geo index", "error", err)
		log.Fatalf("Failed to load geo index: %v", err)
	}
	logger.Info("Geo index loaded", "barbers", n)

	// The geo index is process-local, so its refresh runs here rather than in cmd/cronjob.
	// The in-memory store is unreachable from cmd/cronjob, so its store jobs run here too.
	jobRunner := jobs.NewJobRunner(&jobs.Services{
		Barber: barberSvc,
		Admin:  adminSvc,
		Rating: service.NewRatingAggregator(store.Barbers()),
	}, cfg)
	scheduled := jobRunner.IndexJobs()
	if cfg.Storage.Type == "memory" {
		scheduled = append(scheduled, jobRunner.StoreJobs()...)
	}
	cronScheduler, err := scheduler.NewScheduler(scheduled)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// Initialize HTTP handlers
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	router := httpapi.NewRouter(httpapi.Handlers{
		Bookings: httpapi.NewBookingHandler(bookingSvc),
		Barbers:  httpapi.NewBarberHandler(barberSvc, matchingSvc),
		Admin:    httpapi.NewAdminHandler(adminSvc),
		Store:    store,
	}, httpapi.NewAuthMiddleware(tokenManager))

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.Storage.Type == "memory" {
		logger.Warn("Using in-memory store; data is lost on restart")
		return memory.NewStore(), nil
	}

	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Database schema applied")
	}
	return postgres.NewStore(db), nil
}
