package service

import (
	"context"
	"fmt"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/erp"
	"github.com/fenstra-as/jobflow-api/internal/repository"
	"go.uber.org/zap"
)

// StockSyncService pulls the supplier catalog from the ERP and mirrors
// on-hand counts into the local stock table. Reserved counts are never
// touched by the sync; they belong to the reservation flow.
type StockSyncService struct {
	erpClient *erp.Client
	stockRepo *repository.StockRepository
	logger    *zap.Logger
}

func NewStockSyncService(erpClient *erp.Client, stockRepo *repository.StockRepository, logger *zap.Logger) *StockSyncService {
	return &StockSyncService{
		erpClient: erpClient,
		stockRepo: stockRepo,
		logger:    logger,
	}
}

// SyncCatalog fetches the ERP catalog and upserts each row by SKU.
// Returns counts for successfully synced and failed rows.
func (s *StockSyncService) SyncCatalog(ctx context.Context) (synced int, failed int, err error) {
	if s.erpClient == nil || !s.erpClient.IsEnabled() {
		s.logger.Debug("ERP sync skipped, client disabled")
		return 0, 0, nil
	}

	items, err := s.erpClient.FetchStockCatalog(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch ERP catalog: %w", err)
	}

	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.SKU
		}
		row := &domain.StockItem{
			SKU:      item.SKU,
			Name:     name,
			Supplier: item.Supplier,
			OnHand:   item.OnHand,
		}
		if upsertErr := s.stockRepo.UpsertOnHandBySKU(ctx, row); upsertErr != nil {
			s.logger.Warn("failed to upsert catalog row",
				zap.String("sku", item.SKU),
				zap.Error(upsertErr))
			failed++
			continue
		}
		synced++
	}

	s.logger.Info("ERP catalog sync completed",
		zap.Int("synced", synced),
		zap.Int("failed", failed))
	return synced, failed, nil
}
