package domain

import (
	"github.com/google/uuid"
)

// StockHealth classifies how close an item is to running out.
type StockHealth string

const (
	StockDepleted StockHealth = "depleted"
	StockCritical StockHealth = "critical"
	StockLow      StockHealth = "low"
	StockHealthy  StockHealth = "healthy"
)

// StockItem is a warehouse article (profiles, glass, hardware). Available
// quantity is always derived from OnHand and Reserved, never stored.
type StockItem struct {
	BaseModel
	SKU               string  `gorm:"type:varchar(100);not null;uniqueIndex" json:"sku"`
	Name              string  `gorm:"type:varchar(200);not null" json:"name"`
	Color             string  `gorm:"type:varchar(100)" json:"color,omitempty"`
	Supplier          string  `gorm:"type:varchar(200)" json:"supplier,omitempty"`
	Unit              string  `gorm:"type:varchar(20);not null;default:'pcs'" json:"unit"`
	OnHand            float64 `gorm:"not null;default:0" json:"onHand"`
	Reserved          float64 `gorm:"not null;default:0" json:"reserved"`
	CriticalThreshold float64 `gorm:"not null;default:0" json:"criticalThreshold"`
}

// Available returns max(0, onHand - reserved). Recomputed on every read so
// it can never be cached stale.
func (s *StockItem) Available() float64 {
	avail := s.OnHand - s.Reserved
	if avail < 0 {
		return 0
	}
	return avail
}

// Health classifies the item against its critical threshold. The low band
// extends the threshold by max(5, 25% of the threshold).
func (s *StockItem) Health() StockHealth {
	avail := s.Available()
	if avail <= 0 {
		return StockDepleted
	}
	if avail <= s.CriticalThreshold {
		return StockCritical
	}
	lowBand := 5.0
	if band := s.CriticalThreshold * 0.25; band > lowBand {
		lowBand = band
	}
	if avail <= s.CriticalThreshold+lowBand {
		return StockLow
	}
	return StockHealthy
}

// PurchaseOrderStatus tracks a synthesized backorder purchase order.
type PurchaseOrderStatus string

const (
	PurchaseOrderOpen     PurchaseOrderStatus = "open"
	PurchaseOrderReceived PurchaseOrderStatus = "received"
)

// PurchaseOrderLine is one shortfall line inside a purchase order.
type PurchaseOrderLine struct {
	StockItemID string  `json:"stockItemId"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
}

// PurchaseOrderLineList stores the order's lines as a JSON column.
type PurchaseOrderLineList []PurchaseOrderLine

// PurchaseOrder groups all pending reservation lines of one job into a
// single procurement request.
type PurchaseOrder struct {
	BaseModel
	JobID  uuid.UUID             `gorm:"type:uuid;not null;index" json:"jobId"`
	Status PurchaseOrderStatus   `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	Notes  string                `gorm:"type:text" json:"notes,omitempty"`
	Lines  PurchaseOrderLineList `gorm:"type:jsonb" json:"lines"`
}
