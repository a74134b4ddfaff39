package jobs

import (
	"barangay-asset-backend/internal/cart"
	"barangay-asset-backend/internal/config"
	"barangay-asset-backend/internal/logger"
	"barangay-asset-backend/internal/repository"
	"barangay-asset-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	requestRepo repository.RequestRepository
	noteRepo    repository.NotificationRepository
	cartStore   *cart.Store
	emailSvc    service.EmailService
	config      *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(
	requestRepo repository.RequestRepository,
	noteRepo repository.NotificationRepository,
	cartStore *cart.Store,
	emailSvc service.EmailService,
	cfg *config.Config,
) *JobRunner {
	return &JobRunner{
		requestRepo: requestRepo,
		noteRepo:    noteRepo,
		cartStore:   cartStore,
		emailSvc:    emailSvc,
		config:      cfg,
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
	jr.SendOverdueReminders()
	jr.PurgeStaleCarts()
}
