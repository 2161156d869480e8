package repository

import (
	"context"
	"strings"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockFilters contains filter options for listing stock items
type StockFilters struct {
	Supplier    *string
	SearchQuery *string
}

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

func (r *StockRepository) Create(ctx context.Context, item *domain.StockItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *StockRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.StockItem, error) {
	var item domain.StockItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *StockRepository) GetBySKU(ctx context.Context, sku string) (*domain.StockItem, error) {
	var item domain.StockItem
	err := r.db.WithContext(ctx).First(&item, "sku = ?", sku).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByIDs loads the items a reservation touches, keyed by id.
func (r *StockRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[string]domain.StockItem, error) {
	var items []domain.StockItem
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]domain.StockItem, len(items))
	for _, item := range items {
		result[item.ID.String()] = item
	}
	return result, nil
}

func (r *StockRepository) Update(ctx context.Context, item *domain.StockItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *StockRepository) List(ctx context.Context, page, pageSize int, filters *StockFilters) ([]domain.StockItem, int64, error) {
	var items []domain.StockItem
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.StockItem{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("name ASC").Find(&items).Error

	return items, total, err
}

// ListAll returns the full catalog, used by the health overview.
func (r *StockRepository) ListAll(ctx context.Context) ([]domain.StockItem, error) {
	var items []domain.StockItem
	err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

// SaveQuantities writes the on-hand and reserved columns produced by a
// reservation. Called inside the reservation transaction with tx as db.
func (r *StockRepository) SaveQuantities(ctx context.Context, tx *gorm.DB, items []domain.StockItem) error {
	for _, item := range items {
		err := tx.WithContext(ctx).Model(&domain.StockItem{}).
			Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"on_hand":    item.OnHand,
				"reserved":   item.Reserved,
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// UpsertOnHandBySKU writes the ERP feed: existing skus get their on-hand
// quantity replaced, unknown skus are inserted.
func (r *StockRepository) UpsertOnHandBySKU(ctx context.Context, item *domain.StockItem) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sku"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"on_hand":    item.OnHand,
			"supplier":   item.Supplier,
			"updated_at": time.Now(),
		}),
	}).Create(item).Error
}

// WithTransaction executes operations within a transaction
func (r *StockRepository) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *StockRepository) applyFilters(query *gorm.DB, filters *StockFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.Supplier != nil {
		query = query.Where("supplier = ?", *filters.Supplier)
	}

	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		searchPattern := "%" + strings.ToLower(*filters.SearchQuery) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", searchPattern, searchPattern)
	}

	return query
}
