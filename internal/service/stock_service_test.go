package service_test

import (
	"context"
	"testing"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStockService_CreateRejectsDuplicateSKU(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := &domain.CreateStockItemRequest{
		SKU:               "ALU-6060",
		Name:              "Aluminium profile 6060",
		Supplier:          "Nordvik Profiler",
		Unit:              "m",
		OnHand:            80,
		CriticalThreshold: 20,
	}
	dto, err := f.stock.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, float64(80), dto.OnHand)
	assert.Equal(t, float64(80), dto.Available)
	assert.Equal(t, domain.StockHealthy, dto.Health)

	_, err = f.stock.Create(ctx, req)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestStockService_Adjust(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item := seedStockItem(t, f, "PVC-70", 10)

	dto, err := f.stock.Adjust(ctx, item.ID, &domain.AdjustStockRequest{Delta: -4, Note: "stocktake"})
	require.NoError(t, err)
	assert.Equal(t, float64(6), dto.OnHand)

	_, err = f.stock.Adjust(ctx, item.ID, &domain.AdjustStockRequest{Delta: -7})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = f.stock.Adjust(ctx, uuid.New(), &domain.AdjustStockRequest{Delta: 1})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestStockService_HealthOverview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seedStockItem(t, f, "GLS-4MM", 0)  // depleted
	seedStockItem(t, f, "ALU-6060", 5) // critical, threshold 10
	seedStockItem(t, f, "PVC-70", 12)  // low band extends to 15
	seedStockItem(t, f, "SEAL-EPDM", 60)

	overview, err := f.stock.HealthOverview(ctx)
	require.NoError(t, err)

	require.Len(t, overview[domain.StockDepleted], 1)
	assert.Equal(t, "GLS-4MM", overview[domain.StockDepleted][0].SKU)
	require.Len(t, overview[domain.StockCritical], 1)
	assert.Equal(t, "ALU-6060", overview[domain.StockCritical][0].SKU)
	require.Len(t, overview[domain.StockLow], 1)
	assert.Equal(t, "PVC-70", overview[domain.StockLow][0].SKU)
	require.Len(t, overview[domain.StockHealthy], 1)
	assert.Equal(t, "SEAL-EPDM", overview[domain.StockHealthy][0].SKU)
}

func TestStockService_ReceivePurchaseOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job := createJob(t, f, domain.StartMeasureAppointment)
	item := seedStockItem(t, f, "ALU-6060", 3)

	order := &domain.PurchaseOrder{
		JobID:  job.ID,
		Status: domain.PurchaseOrderOpen,
		Lines: domain.PurchaseOrderLineList{{
			StockItemID: item.ID.String(),
			SKU:         item.SKU,
			Name:        item.Name,
			Quantity:    7,
		}},
	}
	require.NoError(t, f.orderRepo.Create(ctx, order))

	dto, err := f.stock.ReceivePurchaseOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderReceived, dto.Status)

	stored, err := f.stockRepo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(10), stored.OnHand)

	_, err = f.stock.ReceivePurchaseOrder(ctx, order.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	open, err := f.orderRepo.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestStockSyncService_DisabledClient(t *testing.T) {
	f := newFixture(t)

	sync := service.NewStockSyncService(nil, f.stockRepo, zap.NewNop())
	synced, failed, err := sync.SyncCatalog(context.Background())
	require.NoError(t, err)
	assert.Zero(t, synced)
	assert.Zero(t, failed)
}
