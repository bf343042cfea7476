package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	httpapi "github.com/Bukenyae/medical-rentals-sub002/internal/api/http"
	"github.com/Bukenyae/medical-rentals-sub002/internal/config"
	"github.com/Bukenyae/medical-rentals-sub002/internal/logger"
	"github.com/Bukenyae/medical-rentals-sub002/internal/processor"
	"github.com/Bukenyae/medical-rentals-sub002/internal/repository/postgres"
	"github.com/Bukenyae/medical-rentals-sub002/internal/security"
	"github.com/Bukenyae/medical-rentals-sub002/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load .env if present, then configuration (env overrides YAML)
	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting booking engine...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Payments configuration", "provider", cfg.Payments.Provider)

	// Initialize Database
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

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Payment Processor
	var (
		proc     processor.Client
		verifier processor.EventVerifier
	)
	switch cfg.Payments.Provider {
	case "stripe":
		proc = processor.NewStripeClient(cfg.Payments.SecretKey)
		verifier = processor.NewStripeVerifier(cfg.Payments.WebhookSecret)
	default:
		logger.Info("Using mock payment processor")
		proc = processor.NewMockClient()
		verifier = processor.InsecureVerifier{}
	}

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.Email.APIKey,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
	)

	// Initialize Services
	paymentSvc := service.NewPaymentService(
		store.BookingRepository,
		store.PaymentRepository,
		store.PropertyRepository,
		store.UserRepository,
		proc,
		emailSvc,
	)
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.PaymentRepository,
		store.PropertyRepository,
		store.UserRepository,
		store.NotificationRepository,
		paymentSvc,
		emailSvc,
	)
	webhookSvc := service.NewWebhookService(
		verifier,
		store.BookingRepository,
		store.PaymentRepository,
		store.PropertyRepository,
		store.UserRepository,
		emailSvc,
	)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	// Set up HTTP server
	router := httpapi.NewRouter(tokenManager, bookingSvc, paymentSvc, webhookSvc, noteSvc)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
