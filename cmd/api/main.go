package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fenstra-as/jobflow-api/docs"
	"github.com/fenstra-as/jobflow-api/internal/auth"
	"github.com/fenstra-as/jobflow-api/internal/config"
	"github.com/fenstra-as/jobflow-api/internal/database"
	"github.com/fenstra-as/jobflow-api/internal/erp"
	"github.com/fenstra-as/jobflow-api/internal/http/handler"
	"github.com/fenstra-as/jobflow-api/internal/http/middleware"
	"github.com/fenstra-as/jobflow-api/internal/http/router"
	"github.com/fenstra-as/jobflow-api/internal/jobs"
	"github.com/fenstra-as/jobflow-api/internal/logger"
	"github.com/fenstra-as/jobflow-api/internal/repository"
	"github.com/fenstra-as/jobflow-api/internal/service"
	"github.com/fenstra-as/jobflow-api/internal/storage"
	"go.uber.org/zap"
)

// @title Fenstra Jobflow API
// @version 1.0
// @description Job lifecycle and stock API for window and door fabrication and service work
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@fenstra.no

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "jobflow-staging.fenstra.no"
	case "production":
		docs.SwaggerInfo.Host = "api.fenstra.no"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage for measurement sheets and technical drawings
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize the ERP connection (optional - feeds the stock catalog sync)
	// This connection is read-only and the app continues without it if not configured
	var erpClient *erp.Client
	if cfg.Erp.Enabled {
		erpClient, err = erp.NewClient(&cfg.Erp, log)
		if err != nil {
			// Log error but don't fail - the ERP feed is optional
			log.Warn("ERP connection failed, continuing without it",
				zap.Error(err),
			)
		} else if erpClient != nil {
			log.Info("ERP connected successfully",
				zap.Int("max_open_conns", cfg.Erp.MaxOpenConns),
				zap.Int("query_timeout_seconds", cfg.Erp.QueryTimeout),
			)
		}
	} else {
		log.Info("ERP not configured, skipping",
			zap.Bool("enabled", cfg.Erp.Enabled),
		)
	}

	// Initialize repositories
	jobRepo := repository.NewJobRepository(db)
	stockRepo := repository.NewStockRepository(db)
	purchaseOrderRepo := repository.NewPurchaseOrderRepository(db)
	jobLogRepo := repository.NewJobLogRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	logService := service.NewJobLogService(jobLogRepo, log)
	notificationService := service.NewNotificationService(notificationRepo, jobRepo, log)
	stockService := service.NewStockService(stockRepo, purchaseOrderRepo, log)
	jobService := service.NewJobService(jobRepo, stockRepo, purchaseOrderRepo, documentRepo, notificationRepo, logService, log)
	fileService := service.NewFileService(documentRepo, jobRepo, logService, fileStorage, log)
	stockSyncService := service.NewStockSyncService(erpClient, stockRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, userRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	jobHandler := handler.NewJobHandler(jobService, logService, log)
	stockHandler := handler.NewStockHandler(stockService, log)
	documentHandler := handler.NewDocumentHandler(fileService, cfg.Storage.MaxUploadSizeMB, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		erpClient,
		authMiddleware,
		rateLimiter,
		jobHandler,
		stockHandler,
		documentHandler,
		notificationHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	wantStockSync := cfg.Erp.Enabled && cfg.Erp.SyncEnabled && erpClient != nil
	if wantStockSync || cfg.Jobs.FollowUpEnabled {
		scheduler = jobs.NewScheduler(log)

		if wantStockSync {
			// runStartupSync=true refreshes the local stock picture immediately
			if err := jobs.RegisterStockSyncJob(
				scheduler,
				stockSyncService,
				log,
				cfg.Erp.SyncCron,
				cfg.Erp.SyncTimeoutDuration(),
				true,
			); err != nil {
				log.Error("Failed to register stock sync job", zap.Error(err))
			} else {
				log.Info("Stock sync job registered",
					zap.String("cron_expr", cfg.Erp.SyncCron),
					zap.Duration("timeout", cfg.Erp.SyncTimeoutDuration()),
				)
			}
		} else {
			log.Info("Stock catalog sync disabled",
				zap.Bool("erp_enabled", cfg.Erp.Enabled),
				zap.Bool("sync_enabled", cfg.Erp.SyncEnabled),
				zap.Bool("erp_client_available", erpClient != nil),
			)
		}

		if cfg.Jobs.FollowUpEnabled {
			if err := jobs.RegisterFollowUpJob(
				scheduler,
				notificationService,
				log,
				cfg.Jobs.FollowUpCron,
				cfg.Jobs.FollowUpTimeoutDuration(),
			); err != nil {
				log.Error("Failed to register follow-up job", zap.Error(err))
			} else {
				log.Info("Follow-up reminder job registered",
					zap.String("cron_expr", cfg.Jobs.FollowUpCron),
				)
			}
		}

		scheduler.Start()
		log.Info("Scheduler started", zap.Strings("jobs", scheduler.GetJobNames()))
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close ERP connection if initialized
		if erpClient != nil {
			if err := erpClient.Close(); err != nil {
				log.Warn("Error closing ERP connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
