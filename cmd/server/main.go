package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "barangay-asset-backend/internal/api/http"
	"barangay-asset-backend/internal/cart"
	"barangay-asset-backend/internal/config"
	"barangay-asset-backend/internal/jobs"
	"barangay-asset-backend/internal/logger"
	"barangay-asset-backend/internal/repository/postgres"
	"barangay-asset-backend/internal/scheduler"
	"barangay-asset-backend/internal/security"
	"barangay-asset-backend/internal/service"
	"barangay-asset-backend/internal/stock"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Env file is optional; real deployments inject variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Barangay Asset Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
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

	// Initialize Repositories and the stock ledger
	store := postgres.NewStore(db)
	ledger := stock.NewPostgresLedger(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.SMTP.Host,
		fmt.Sprintf("%d", cfg.SMTP.Port),
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	// Initialize Services
	assetSvc := service.NewAssetService(store.AssetRepository)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	requestSvc := service.NewRequestService(
		store.RequestRepository,
		store.AssetRepository,
		store.ProofRepository,
		store.NotificationRepository,
		ledger,
		emailSvc,
		cfg.Policy.StaffEmail,
		cfg.CancellationWindow(),
	)

	// Initialize the server-side cart
	cartStore := cart.NewStore(store.AssetRepository)

	// The stale-cart purge must run in this process since carts live in
	// server memory; the overdue reminder rides along on the same runner.
	jobRunner := jobs.NewJobRunner(store.RequestRepository, store.NotificationRepository, cartStore, emailSvc, cfg)
	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// Initialize HTTP API
	handler := httpapi.NewHandler(cartStore, requestSvc, assetSvc, noteSvc, tokenManager, cfg.DueSoonHorizon())

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
