package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"barangay-asset-backend/internal/cart"
	"barangay-asset-backend/internal/config"
	"barangay-asset-backend/internal/jobs"
	"barangay-asset-backend/internal/logger"
	"barangay-asset-backend/internal/repository/postgres"
	"barangay-asset-backend/internal/service"
)

// The scheduler itself lives inside the server process because the cart
// purge needs the server's in-memory carts. This binary exists for
// operators to run the database-backed jobs by hand.
func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "all-nightly", "Job to run (e.g., 'send-overdue-reminders', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Barangay Asset Job Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	emailService := service.NewEmailService(
		cfg.SMTP.Host,
		fmt.Sprintf("%d", cfg.SMTP.Port),
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	// This process has no live carts; the purge job is a no-op here.
	jobRunner := jobs.NewJobRunner(
		store.RequestRepository,
		store.NotificationRepository,
		cart.NewStore(store.AssetRepository),
		emailService,
		cfg,
	)

	logger.Info("Running job once", "job", *runOnce)
	runJobOnce(jobRunner, *runOnce)
	logger.Info("Job execution completed", "job", *runOnce)
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "send-overdue-reminders":
		jobRunner.SendOverdueReminders()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
	}
}
