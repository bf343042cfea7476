package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	Payments  PaymentsConfig  `yaml:"payments"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Booking   BookingConfig   `yaml:"booking"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// EmailConfig contains SendGrid settings
type EmailConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// PaymentsConfig contains payment processor settings. Provider "mock"
// swaps in the in-memory processor for local development and tests.
type PaymentsConfig struct {
	Provider      string `yaml:"provider"` // "stripe" or "mock"
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BookingConfig contains lifecycle policy knobs
type BookingConfig struct {
	// StaleDraftDays is the age after which an untouched DRAFT is
	// cancelled by the nightly sweep.
	StaleDraftDays int `yaml:"stale_draft_days"`
	// HoldAutoReleaseDays is how long after checkout an uncaptured
	// deposit hold may linger before the sweep releases it.
	HoldAutoReleaseDays int `yaml:"hold_auto_release_days"`
	// PaymentReminderHours is how long a booking sits in
	// AWAITING_PAYMENT before the guest is nudged.
	PaymentReminderHours int `yaml:"payment_reminder_hours"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	CancelStaleDrafts    string `yaml:"cancel_stale_drafts"`
	ReleaseOverdueHolds  string `yaml:"release_overdue_holds"`
	SendPaymentReminders string `yaml:"send_payment_reminders"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.APIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.FromEmail = val
	}
	if val := os.Getenv("EMAIL_FROM_NAME"); val != "" {
		c.Email.FromName = val
	}

	// Payments
	if val := os.Getenv("PAYMENT_PROVIDER"); val != "" {
		c.Payments.Provider = val
	}
	if val := os.Getenv("STRIPE_SECRET_KEY"); val != "" {
		c.Payments.SecretKey = val
	}
	if val := os.Getenv("STRIPE_WEBHOOK_SECRET"); val != "" {
		c.Payments.WebhookSecret = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Payments validation
	switch c.Payments.Provider {
	case "", "mock":
		c.Payments.Provider = "mock"
	case "stripe":
		if c.Payments.SecretKey == "" {
			return fmt.Errorf("stripe secret key is required")
		}
		if c.Payments.WebhookSecret == "" {
			return fmt.Errorf("stripe webhook secret is required")
		}
	default:
		return fmt.Errorf("unknown payment provider: %s", c.Payments.Provider)
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Booking policy defaults
	if c.Booking.StaleDraftDays <= 0 {
		c.Booking.StaleDraftDays = 7
	}
	if c.Booking.HoldAutoReleaseDays <= 0 {
		c.Booking.HoldAutoReleaseDays = 7
	}
	if c.Booking.PaymentReminderHours <= 0 {
		c.Booking.PaymentReminderHours = 24
	}

	// Scheduler defaults
	if c.Scheduler.CancelStaleDrafts == "" {
		c.Scheduler.CancelStaleDrafts = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.ReleaseOverdueHolds == "" {
		c.Scheduler.ReleaseOverdueHolds = "0 0 3 * * *" // 3 AM UTC
	}
	if c.Scheduler.SendPaymentReminders == "" {
		c.Scheduler.SendPaymentReminders = "0 0 9 * * *" // 9 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
