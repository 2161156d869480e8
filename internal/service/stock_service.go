package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/mapper"
	"github.com/fenstra-as/jobflow-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StockService manages the material catalog: item CRUD, quantity
// adjustments, purchase order receipts, and the health overview.
type StockService struct {
	stockRepo *repository.StockRepository
	orderRepo *repository.PurchaseOrderRepository
	logger    *zap.Logger
}

func NewStockService(
	stockRepo *repository.StockRepository,
	orderRepo *repository.PurchaseOrderRepository,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		stockRepo: stockRepo,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

func (s *StockService) Create(ctx context.Context, req *domain.CreateStockItemRequest) (*domain.StockItemDTO, error) {
	if existing, err := s.stockRepo.GetBySKU(ctx, req.SKU); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: sku %s already exists", ErrConflict, req.SKU)
	}

	item := &domain.StockItem{
		SKU:               req.SKU,
		Name:              req.Name,
		Color:             req.Color,
		Supplier:          req.Supplier,
		Unit:              req.Unit,
		OnHand:            req.OnHand,
		CriticalThreshold: req.CriticalThreshold,
	}

	if err := s.stockRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create stock item: %w", err)
	}

	dto := mapper.ToStockItemDTO(item)
	return &dto, nil
}

func (s *StockService) GetByID(ctx context.Context, id uuid.UUID) (*domain.StockItemDTO, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToStockItemDTO(item)
	return &dto, nil
}

func (s *StockService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateStockItemRequest) (*domain.StockItemDTO, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Name = req.Name
	item.Color = req.Color
	item.Supplier = req.Supplier
	item.Unit = req.Unit
	item.CriticalThreshold = req.CriticalThreshold

	if err := s.stockRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update stock item: %w", err)
	}

	dto := mapper.ToStockItemDTO(item)
	return &dto, nil
}

// Adjust changes the on-hand quantity by a signed delta, e.g. a goods
// receipt or a stocktake correction. The result may not go negative.
func (s *StockService) Adjust(ctx context.Context, id uuid.UUID, req *domain.AdjustStockRequest) (*domain.StockItemDTO, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.OnHand+req.Delta < 0 {
		return nil, fmt.Errorf("%w: adjustment would drive on-hand below zero", ErrInvalidInput)
	}
	item.OnHand += req.Delta

	if err := s.stockRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to adjust stock item: %w", err)
	}

	dto := mapper.ToStockItemDTO(item)
	return &dto, nil
}

func (s *StockService) List(ctx context.Context, page, pageSize int, filters *repository.StockFilters) (*domain.PaginatedResponse, error) {
	items, total, err := s.stockRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock items: %w", err)
	}

	resp := domain.NewPaginatedResponse(mapper.ToStockItemDTOs(items), total, page, pageSize)
	return &resp, nil
}

// HealthOverview groups the catalog by health class, worst first.
func (s *StockService) HealthOverview(ctx context.Context) (map[domain.StockHealth][]domain.StockItemDTO, error) {
	items, err := s.stockRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock items: %w", err)
	}

	overview := map[domain.StockHealth][]domain.StockItemDTO{
		domain.StockDepleted: {},
		domain.StockCritical: {},
		domain.StockLow:      {},
		domain.StockHealthy:  {},
	}
	for i := range items {
		dto := mapper.ToStockItemDTO(&items[i])
		overview[dto.Health] = append(overview[dto.Health], dto)
	}
	return overview, nil
}

func (s *StockService) ListPurchaseOrdersByJob(ctx context.Context, jobID uuid.UUID) ([]domain.PurchaseOrderDTO, error) {
	orders, err := s.orderRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	dtos := make([]domain.PurchaseOrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToPurchaseOrderDTO(&orders[i])
	}
	return dtos, nil
}

// ReceivePurchaseOrder books the ordered lines into stock: each line's
// quantity lands on the item's on-hand, and the order is marked received.
func (s *StockService) ReceivePurchaseOrder(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrderDTO, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}
	if order.Status == domain.PurchaseOrderReceived {
		return nil, fmt.Errorf("%w: purchase order already received", ErrConflict)
	}

	err = s.stockRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		for _, line := range order.Lines {
			itemID, err := uuid.Parse(line.StockItemID)
			if err != nil {
				s.logger.Warn("purchase order line carries an invalid stock item id",
					zap.String("stockItemId", line.StockItemID))
				continue
			}
			err = tx.WithContext(ctx).Model(&domain.StockItem{}).
				Where("id = ?", itemID).
				Update("on_hand", gorm.Expr("on_hand + ?", line.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to book line into stock: %w", err)
			}
		}
		return tx.WithContext(ctx).Model(&domain.PurchaseOrder{}).
			Where("id = ?", order.ID).
			Update("status", domain.PurchaseOrderReceived).Error
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.PurchaseOrderReceived
	dto := mapper.ToPurchaseOrderDTO(order)
	return &dto, nil
}

func (s *StockService) loadItem(ctx context.Context, id uuid.UUID) (*domain.StockItem, error) {
	item, err := s.stockRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stock item: %w", err)
	}
	return item, nil
}
