package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StockSyncJobName is the name of the supplier stock catalog sync job
const StockSyncJobName = "stock_sync"

// CatalogSyncService defines the interface for syncing the supplier stock catalog.
// This interface allows the job to call the service without importing the service package directly.
type CatalogSyncService interface {
	// SyncCatalog pulls the supplier catalog from the ERP and upserts local stock items.
	// Returns counts for successfully synced and failed items.
	SyncCatalog(ctx context.Context) (synced int, failed int, err error)
}

// StockSyncJob pulls the supplier stock catalog from the ERP and refreshes
// local on-hand quantities.
type StockSyncJob struct {
	syncService CatalogSyncService
	logger      *zap.Logger
	timeout     time.Duration
}

// NewStockSyncJob creates a new stock catalog sync job.
// The timeout controls how long one sync run is allowed to take.
func NewStockSyncJob(syncService CatalogSyncService, logger *zap.Logger, timeout time.Duration) *StockSyncJob {
	return &StockSyncJob{
		syncService: syncService,
		logger:      logger,
		timeout:     timeout,
	}
}

// Run executes the stock catalog sync.
// This is called by the scheduler according to the cron expression.
func (j *StockSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting stock catalog sync job")

	synced, failed, err := j.syncService.SyncCatalog(ctx)
	if err != nil {
		j.logger.Error("stock catalog sync failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("stock catalog sync job completed",
		zap.Int("items_synced", synced),
		zap.Int("items_failed", failed),
		zap.Duration("duration", time.Since(start)))
}

// RegisterStockSyncJob registers the stock catalog sync job with the scheduler.
// The cronExpr should be a valid cron expression with seconds (e.g., "0 0 * * * *" for hourly).
// If runStartupSync is true, one sync runs immediately in a background goroutine
// so the local stock picture is fresh without waiting for the first cron tick.
func RegisterStockSyncJob(scheduler *Scheduler, syncService CatalogSyncService, logger *zap.Logger, cronExpr string, timeout time.Duration, runStartupSync bool) error {
	job := NewStockSyncJob(syncService, logger, timeout)

	if runStartupSync {
		go job.Run()
	}

	return scheduler.AddJob(StockSyncJobName, cronExpr, job.Run)
}
