package domain

import (
	"time"

	"github.com/google/uuid"
)

// Response DTOs. Timestamps are serialized as ISO 8601 strings.

type JobDTO struct {
	ID                     uuid.UUID       `json:"id"`
	Title                  string          `json:"title"`
	CustomerID             string          `json:"customerId"`
	Status                 JobStatus       `json:"status"`
	StartType              StartType       `json:"startType"`
	Roles                  []JobRole       `json:"roles,omitempty"`
	Measure                *Measure        `json:"measure,omitempty"`
	Offer                  *Offer          `json:"offer,omitempty"`
	PaymentPlan            *PaymentPlan    `json:"paymentPlan,omitempty"`
	Rejection              *Rejection      `json:"rejection,omitempty"`
	PendingLines           []PendingLine   `json:"pendingLines,omitempty"`
	PendingPurchaseOrderID *string         `json:"pendingPurchaseOrderId,omitempty"`
	Service                *ServiceInfo    `json:"service,omitempty"`
	Finance                *Finance        `json:"finance,omitempty"`
	Assembly               *AssemblyInfo   `json:"assembly,omitempty"`
	Production             *ProductionInfo `json:"production,omitempty"`
	CreatedAt              string          `json:"createdAt"` // ISO 8601
	UpdatedAt              string          `json:"updatedAt"` // ISO 8601
}

// StageViewEntryDTO is one row of the progress rail shown for a job.
type StageViewEntryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"` // done | current | pending
}

// JobDetailDTO carries the job with its computed stage rail. Rejected jobs
// have no rail; the rejection record stands in for it.
type JobDetailDTO struct {
	JobDTO
	Stages []StageViewEntryDTO `json:"stages,omitempty"`
}

// TransitionResultDTO reports a completed transition together with any
// non-blocking warnings the reconciliation produced.
type TransitionResultDTO struct {
	Job      *JobDetailDTO `json:"job"`
	Warnings []string      `json:"warnings,omitempty"`
}

// AgreementClosureDTO summarizes the payment plan reconciliation.
type AgreementClosureDTO struct {
	PlanTotal        float64  `json:"planTotal"`
	ChequeTotal      float64  `json:"chequeTotal"`
	AverageChequeDay int      `json:"averageChequeDay"`
	Warnings         []string `json:"warnings,omitempty"`
}

type StockItemDTO struct {
	ID                uuid.UUID   `json:"id"`
	SKU               string      `json:"sku"`
	Name              string      `json:"name"`
	Color             string      `json:"color,omitempty"`
	Supplier          string      `json:"supplier,omitempty"`
	Unit              string      `json:"unit,omitempty"`
	OnHand            float64     `json:"onHand"`
	Reserved          float64     `json:"reserved"`
	Available         float64     `json:"available"`
	CriticalThreshold float64     `json:"criticalThreshold"`
	Health            StockHealth `json:"health"`
	CreatedAt         string      `json:"createdAt"`
	UpdatedAt         string      `json:"updatedAt"`
}

type PurchaseOrderDTO struct {
	ID        uuid.UUID           `json:"id"`
	JobID     *uuid.UUID          `json:"jobId,omitempty"`
	Status    PurchaseOrderStatus `json:"status"`
	Notes     string              `json:"notes,omitempty"`
	Lines     []PurchaseOrderLine `json:"lines"`
	CreatedAt string              `json:"createdAt"`
	UpdatedAt string              `json:"updatedAt"`
}

type JobLogDTO struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"jobId"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	Meta      JSONMap   `json:"meta,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

type DocumentDTO struct {
	ID          uuid.UUID `json:"id"`
	JobID       uuid.UUID `json:"jobId"`
	Type        string    `json:"type"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	Description string    `json:"description,omitempty"`
	UploadedBy  string    `json:"uploadedBy,omitempty"`
	CreatedAt   string    `json:"createdAt"`
}

type NotificationDTO struct {
	ID        uuid.UUID        `json:"id"`
	Type      NotificationType `json:"type"`
	JobID     *uuid.UUID       `json:"jobId,omitempty"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt string           `json:"createdAt"` // ISO 8601
}

// UnreadCountDTO represents the count of unread notifications
type UnreadCountDTO struct {
	Count int `json:"count"`
}

// API Response wrapper
type APIResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
}

// Request DTOs

type CreateJobRequest struct {
	Title      string    `json:"title" validate:"required,max=200"`
	CustomerID string    `json:"customerId" validate:"required,max=100"`
	StartType  StartType `json:"startType" validate:"required"`
	Roles      []JobRole `json:"roles,omitempty" validate:"dive"`
}

type UpdateJobRequest struct {
	Title string    `json:"title" validate:"required,max=200"`
	Roles []JobRole `json:"roles,omitempty" validate:"dive"`
}

// UpdateMeasureRequest patches the measure record; all fields optional.
type UpdateMeasureRequest struct {
	Note        *string    `json:"note,omitempty" validate:"omitempty,max=2000"`
	Appointment *time.Time `json:"appointment,omitempty"`
	Confirmed   *bool      `json:"confirmed,omitempty"`
	Uploaded    *bool      `json:"uploaded,omitempty"`
	Status      *JobStatus `json:"status,omitempty"`
}

// TransitionRequest moves the job to a target status with no extra payload.
type TransitionRequest struct {
	Status JobStatus `json:"status" validate:"required"`
}

type PriceOfferRequest struct {
	Total      float64            `json:"total" validate:"required,gt=0"`
	RolePrices map[string]float64 `json:"rolePrices,omitempty"`
}

type NegotiateRequest struct {
	RoleDiscounts map[string]float64 `json:"roleDiscounts" validate:"required,min=1"`
}

type ChequeLineRequest struct {
	Amount  float64   `json:"amount" validate:"required,gt=0"`
	DueDate time.Time `json:"dueDate" validate:"required"`
	Bank    string    `json:"bank,omitempty" validate:"max=100"`
	Branch  string    `json:"branch,omitempty" validate:"max=100"`
	Number  string    `json:"number,omitempty" validate:"max=50"`
}

// ApproveAgreementRequest carries the payment plan. ChequeTotal is the
// caller's declared sum and must agree with the cheque lines.
type ApproveAgreementRequest struct {
	Cash          float64             `json:"cash" validate:"gte=0"`
	Card          float64             `json:"card" validate:"gte=0"`
	ChequeLines   []ChequeLineRequest `json:"chequeLines,omitempty" validate:"dive"`
	ChequeTotal   float64             `json:"chequeTotal" validate:"gte=0"`
	AfterDelivery float64             `json:"afterDelivery" validate:"gte=0"`
}

type RejectJobRequest struct {
	Category     RejectionCategory `json:"category" validate:"required"`
	Reason       string            `json:"reason" validate:"required,max=1000"`
	FollowUpDate *time.Time        `json:"followUpDate,omitempty"`
}

type ReservationLineRequest struct {
	StockItemID uuid.UUID `json:"stockItemId" validate:"required"`
	Quantity    float64   `json:"quantity" validate:"required,gt=0"`
}

// ReserveStockRequest reserves (or consumes) material for a job. Notes end
// up on the purchase order raised for any shortfall.
type ReserveStockRequest struct {
	Lines         []ReservationLineRequest `json:"lines" validate:"required,min=1,dive"`
	Consume       bool                     `json:"consume,omitempty"`
	PurchaseNotes string                   `json:"purchaseNotes,omitempty" validate:"max=1000"`
}

type ProductionRequest struct {
	Status        JobStatus  `json:"status" validate:"required"`
	AgreementDate *time.Time `json:"agreementDate,omitempty"`
	Note          string     `json:"note,omitempty" validate:"max=2000"`
}

type ScheduleAssemblyRequest struct {
	Date time.Time `json:"date" validate:"required"`
	Note string    `json:"note,omitempty" validate:"max=2000"`
	Team string    `json:"team,omitempty" validate:"max=200"`
}

type CloseFinanceRequest struct {
	Cash           float64 `json:"cash" validate:"gte=0"`
	Card           float64 `json:"card" validate:"gte=0"`
	Cheque         float64 `json:"cheque" validate:"gte=0"`
	DiscountAmount float64 `json:"discountAmount,omitempty" validate:"gte=0"`
	DiscountNote   string  `json:"discountNote,omitempty" validate:"max=500"`
}

// Service flow request DTOs

type ScheduleServiceRequest struct {
	FixedFee        float64 `json:"fixedFee" validate:"gte=0"`
	Note            string  `json:"note,omitempty" validate:"max=2000"`
	AppointmentDate string  `json:"appointmentDate" validate:"required,max=20"`
	AppointmentTime string  `json:"appointmentTime,omitempty" validate:"max=20"`
}

type CompleteVisitRequest struct {
	WorkNote  string  `json:"workNote" validate:"required,max=2000"`
	Materials string  `json:"materials,omitempty" validate:"max=2000"`
	ExtraCost float64 `json:"extraCost,omitempty" validate:"gte=0"`
}

// ContinueServiceRequest opens a follow-up visit. StartNow skips the
// scheduling step and puts the visit straight in progress.
type ContinueServiceRequest struct {
	AppointmentDate string `json:"appointmentDate,omitempty" validate:"max=20"`
	AppointmentTime string `json:"appointmentTime,omitempty" validate:"max=20"`
	Note            string `json:"note,omitempty" validate:"max=2000"`
	StartNow        bool   `json:"startNow,omitempty"`
}

type CloseServiceRequest struct {
	Cash           float64 `json:"cash" validate:"gte=0"`
	Card           float64 `json:"card" validate:"gte=0"`
	Transfer       float64 `json:"transfer" validate:"gte=0"`
	DiscountAmount float64 `json:"discountAmount,omitempty" validate:"gte=0"`
	DiscountNote   string  `json:"discountNote,omitempty" validate:"max=500"`
}

// Stock request DTOs

type CreateStockItemRequest struct {
	SKU               string  `json:"sku" validate:"required,max=100"`
	Name              string  `json:"name" validate:"required,max=200"`
	Color             string  `json:"color,omitempty" validate:"max=100"`
	Supplier          string  `json:"supplier,omitempty" validate:"max=200"`
	Unit              string  `json:"unit,omitempty" validate:"max=20"`
	OnHand            float64 `json:"onHand" validate:"gte=0"`
	CriticalThreshold float64 `json:"criticalThreshold" validate:"gte=0"`
}

type UpdateStockItemRequest struct {
	Name              string  `json:"name" validate:"required,max=200"`
	Color             string  `json:"color,omitempty" validate:"max=100"`
	Supplier          string  `json:"supplier,omitempty" validate:"max=200"`
	Unit              string  `json:"unit,omitempty" validate:"max=20"`
	CriticalThreshold float64 `json:"criticalThreshold" validate:"gte=0"`
}

// AdjustStockRequest changes the on-hand quantity by a signed delta,
// e.g. a goods receipt or a stocktake correction.
type AdjustStockRequest struct {
	Delta float64 `json:"delta" validate:"required"`
	Note  string  `json:"note,omitempty" validate:"max=500"`
}

// ReceivePurchaseOrderRequest books the ordered lines into stock.
type ReceivePurchaseOrderRequest struct {
	Note string `json:"note,omitempty" validate:"max=500"`
}
