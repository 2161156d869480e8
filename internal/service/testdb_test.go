package service_test

import (
	"testing"

	"github.com/fenstra-as/jobflow-api/internal/database"
	"github.com/fenstra-as/jobflow-api/internal/repository"
	"github.com/fenstra-as/jobflow-api/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database. A single connection keeps
// the in-memory schema alive for the whole test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// fixture wires the full service layer over one in-memory database so the
// tests exercise the real persistence path, not mocks.
type fixture struct {
	db               *gorm.DB
	jobRepo          *repository.JobRepository
	stockRepo        *repository.StockRepository
	orderRepo        *repository.PurchaseOrderRepository
	notificationRepo *repository.NotificationRepository
	jobs             *service.JobService
	stock            *service.StockService
	notifications    *service.NotificationService
	logs             *service.JobLogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	log := zap.NewNop()

	jobRepo := repository.NewJobRepository(db)
	stockRepo := repository.NewStockRepository(db)
	orderRepo := repository.NewPurchaseOrderRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	logRepo := repository.NewJobLogRepository(db)

	logSvc := service.NewJobLogService(logRepo, log)

	return &fixture{
		db:               db,
		jobRepo:          jobRepo,
		stockRepo:        stockRepo,
		orderRepo:        orderRepo,
		notificationRepo: notificationRepo,
		jobs:             service.NewJobService(jobRepo, stockRepo, orderRepo, docRepo, notificationRepo, logSvc, log),
		stock:            service.NewStockService(stockRepo, orderRepo, log),
		notifications:    service.NewNotificationService(notificationRepo, jobRepo, log),
		logs:             logSvc,
	}
}
