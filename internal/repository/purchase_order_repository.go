package repository

import (
	"context"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, order *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// CreateTx creates the order inside an existing transaction, so the order
// and the reservation that raised it commit together.
func (r *PurchaseOrderRepository) CreateTx(ctx context.Context, tx *gorm.DB, order *domain.PurchaseOrder) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	var order domain.PurchaseOrder
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *PurchaseOrderRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.PurchaseOrder, error) {
	var orders []domain.PurchaseOrder
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *PurchaseOrderRepository) ListOpen(ctx context.Context) ([]domain.PurchaseOrder, error) {
	var orders []domain.PurchaseOrder
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.PurchaseOrderOpen).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *PurchaseOrderRepository) MarkReceived(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.PurchaseOrderReceived,
			"updated_at": time.Now(),
		}).Error
}
