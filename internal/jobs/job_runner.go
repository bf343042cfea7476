package jobs

import (
	"github.com/Bukenyae/medical-rentals-sub002/internal/config"
	"github.com/Bukenyae/medical-rentals-sub002/internal/logger"
	"github.com/Bukenyae/medical-rentals-sub002/internal/repository/postgres"
	"github.com/Bukenyae/medical-rentals-sub002/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store    *postgres.Store
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email   service.EmailService
	Payment service.PaymentService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store *postgres.Store, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:    store,
		services: services,
		config:   cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.CancelStaleDrafts()
	jr.ReleaseOverdueHolds()
	jr.SendPaymentReminders()
}
