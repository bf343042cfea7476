package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/Bukenyae/medical-rentals-sub002/internal/config"
	"github.com/Bukenyae/medical-rentals-sub002/internal/jobs"
	"github.com/Bukenyae/medical-rentals-sub002/internal/logger"
	"github.com/Bukenyae/medical-rentals-sub002/internal/processor"
	"github.com/Bukenyae/medical-rentals-sub002/internal/repository/postgres"
	"github.com/Bukenyae/medical-rentals-sub002/internal/scheduler"
	"github.com/Bukenyae/medical-rentals-sub002/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'cancel-stale-drafts', 'all-nightly')")
	flag.Parse()

	// Load .env if present, then configuration (env overrides YAML)
	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting booking cronjob runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Payment Processor
	var proc processor.Client
	if cfg.Payments.Provider == "stripe" {
		proc = processor.NewStripeClient(cfg.Payments.SecretKey)
	} else {
		logger.Info("Using mock payment processor")
		proc = processor.NewMockClient()
	}

	// Initialize Services
	emailSvc := service.NewEmailService(
		cfg.Email.APIKey,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
	)
	paymentSvc := service.NewPaymentService(
		store.BookingRepository,
		store.PaymentRepository,
		store.PropertyRepository,
		store.UserRepository,
		proc,
		emailSvc,
	)

	jobServices := &jobs.Services{
		Email:   emailSvc,
		Payment: paymentSvc,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "cancel-stale-drafts":
		jobRunner.CancelStaleDrafts()
	case "release-overdue-holds":
		jobRunner.ReleaseOverdueHolds()
	case "send-payment-reminders":
		jobRunner.SendPaymentReminders()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - cancel-stale-drafts\n")
		fmt.Printf("  - release-overdue-holds\n")
		fmt.Printf("  - send-payment-reminders\n")
		fmt.Printf("  - all-nightly\n")
		os.Exit(1)
	}
}
