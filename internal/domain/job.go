package domain

import (
	"time"
)

// JobStatus is the fine-grained persisted state of a job. It is the single
// source of truth for which stage the job is in.
type JobStatus string

// Standard flow statuses
const (
	StatusMeasurePending          JobStatus = "MEASURE_PENDING"
	StatusMeasureScheduled        JobStatus = "MEASURE_SCHEDULED"
	StatusMeasureTaken            JobStatus = "MEASURE_TAKEN"
	StatusCustomerMeasurePending  JobStatus = "CUSTOMER_MEASURE_PENDING"
	StatusCustomerMeasureUploaded JobStatus = "CUSTOMER_MEASURE_UPLOADED"
	StatusPricing                 JobStatus = "PRICING"
	StatusOfferSent               JobStatus = "OFFER_SENT"
	StatusOfferReady              JobStatus = "OFFER_READY"
	StatusAgreementInProgress     JobStatus = "AGREEMENT_IN_PROGRESS"
	StatusApprovalPending         JobStatus = "APPROVAL_PENDING"
	StatusAgreementCompleted      JobStatus = "AGREEMENT_COMPLETED"
	StatusStockPending            JobStatus = "STOCK_PENDING"
	StatusReadyForProduction      JobStatus = "READY_FOR_PRODUCTION"
	StatusInProduction            JobStatus = "IN_PRODUCTION"
	StatusOutsourced              JobStatus = "OUTSOURCED"
	StatusReadyForAssembly        JobStatus = "READY_FOR_ASSEMBLY"
	StatusAssemblyScheduled       JobStatus = "ASSEMBLY_SCHEDULED"
	StatusFinancePending          JobStatus = "FINANCE_PENDING"
	StatusClosed                  JobStatus = "CLOSED"

	// StatusRejected is the rejected terminal; it belongs to no stage and is
	// only left through reactivation.
	StatusRejected JobStatus = "REJECTED"
)

// Service flow statuses
const (
	StatusServiceAppointmentPending JobStatus = "SERVICE_APPOINTMENT_PENDING"
	StatusServiceScheduled          JobStatus = "SERVICE_SCHEDULED"
	StatusServiceInProgress         JobStatus = "SERVICE_IN_PROGRESS"
	StatusServiceOngoing            JobStatus = "SERVICE_ONGOING"
	StatusServicePaymentPending     JobStatus = "SERVICE_PAYMENT_PENDING"
	StatusServiceClosed             JobStatus = "SERVICE_CLOSED"
)

// StartType selects which flow a job follows and how the measure stage is
// satisfied.
type StartType string

const (
	StartMeasureAppointment      StartType = "MEASURE_APPOINTMENT"
	StartCustomerSuppliedMeasure StartType = "CUSTOMER_SUPPLIED_MEASURE"
	StartService                 StartType = "SERVICE"
)

func (s StartType) IsValid() bool {
	switch s {
	case StartMeasureAppointment, StartCustomerSuppliedMeasure, StartService:
		return true
	}
	return false
}

// InitialStatus returns the status a freshly created job starts in.
func (s StartType) InitialStatus() JobStatus {
	switch s {
	case StartCustomerSuppliedMeasure:
		return StatusCustomerMeasurePending
	case StartService:
		return StatusServiceAppointmentPending
	default:
		return StatusMeasurePending
	}
}

// RejectionCategory classifies why an offer was turned down.
type RejectionCategory string

const (
	RejectionPriceTooHigh     RejectionCategory = "PRICE_TOO_HIGH"
	RejectionTiming           RejectionCategory = "TIMING"
	RejectionCompetitor       RejectionCategory = "COMPETITOR"
	RejectionProjectCancelled RejectionCategory = "PROJECT_CANCELLED"
	RejectionStillDeciding    RejectionCategory = "STILL_DECIDING"
	RejectionOther            RejectionCategory = "OTHER"
)

func (c RejectionCategory) IsValid() bool {
	switch c {
	case RejectionPriceTooHigh, RejectionTiming, RejectionCompetitor,
		RejectionProjectCancelled, RejectionStillDeciding, RejectionOther:
		return true
	}
	return false
}

// VisitStatus tracks a single service visit.
type VisitStatus string

const (
	VisitScheduled  VisitStatus = "scheduled"
	VisitInProgress VisitStatus = "in_progress"
	VisitCompleted  VisitStatus = "completed"
)

// PaymentStatus marks whether a service job has been settled.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// JobRole is a work-category attached to a job (a trade discipline such as
// aluminium, PVC, glass). Pricing and document requirements are partitioned
// per role.
type JobRole struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Measure holds measurement state for the measure stage.
type Measure struct {
	Note        string     `json:"note,omitempty"`
	Appointment *time.Time `json:"appointment,omitempty"`
	Confirmed   bool       `json:"confirmed"`
	// Uploaded marks a customer-supplied measurement as received.
	Uploaded bool `json:"uploaded,omitempty"`
}

// NegotiationRecord captures one discount round on an offer. Records are
// immutable once appended; the history is append-only.
type NegotiationRecord struct {
	Date          time.Time          `json:"date"`
	OriginalTotal float64            `json:"originalTotal"`
	DiscountTotal float64            `json:"discountTotal"`
	FinalTotal    float64            `json:"finalTotal"`
	RoleDiscounts map[string]float64 `json:"roleDiscounts,omitempty"`
}

// Offer is the priced proposal for a job, optionally broken down per role.
// Invariant: Total equals the sum of RolePrices whenever RolePrices is
// non-empty.
type Offer struct {
	Total              float64             `json:"total"`
	RolePrices         map[string]float64  `json:"rolePrices,omitempty"`
	NotifiedDate       *time.Time          `json:"notifiedDate,omitempty"`
	AgreedDate         *time.Time          `json:"agreedDate,omitempty"`
	NegotiationHistory []NegotiationRecord `json:"negotiationHistory,omitempty"`
	ReactivatedAt      *time.Time          `json:"reactivatedAt,omitempty"`
	ReactivatedFrom    *Rejection          `json:"reactivatedFrom,omitempty"`
}

// ChequeLine is one post-dated cheque within a payment plan.
type ChequeLine struct {
	Amount  float64   `json:"amount"`
	DueDate time.Time `json:"dueDate"`
	Bank    string    `json:"bank,omitempty"`
	Branch  string    `json:"branch,omitempty"`
	Number  string    `json:"number,omitempty"`
}

// PaymentPlan is the payment breakdown agreed at approval time.
type PaymentPlan struct {
	Cash          float64      `json:"cash"`
	Card          float64      `json:"card"`
	ChequeLines   []ChequeLine `json:"chequeLines,omitempty"`
	AfterDelivery float64      `json:"afterDelivery"`
}

// Rejection records why a job reached the rejected terminal. LastOffer
// preserves the offer as it stood so reactivation can restore it.
type Rejection struct {
	Category     RejectionCategory `json:"category"`
	Reason       string            `json:"reason"`
	FollowUpDate *time.Time        `json:"followUpDate,omitempty"`
	Date         time.Time         `json:"date"`
	LastOffer    *Offer            `json:"lastOffer,omitempty"`
}

// PendingLine is the unmet portion of a stock reservation request, tracked
// on the job until resupplied.
type PendingLine struct {
	StockItemID            string  `json:"stockItemId"`
	Name                   string  `json:"name"`
	SKU                    string  `json:"sku"`
	RequestedQty           float64 `json:"requestedQty"`
	AvailableAtRequestTime float64 `json:"availableAtRequestTime"`
	Missing                float64 `json:"missing"`
}

// ServiceVisit is one scheduled or executed maintenance call within a
// service-type job. IDs are 1-based and strictly increasing per job.
type ServiceVisit struct {
	ID              int         `json:"id"`
	AppointmentDate string      `json:"appointmentDate,omitempty"`
	AppointmentTime string      `json:"appointmentTime,omitempty"`
	Note            string      `json:"note,omitempty"`
	VisitedAt       *time.Time  `json:"visitedAt,omitempty"`
	Status          VisitStatus `json:"status"`
	WorkNote        string      `json:"workNote,omitempty"`
	Materials       string      `json:"materials,omitempty"`
	ExtraCost       float64     `json:"extraCost"`
	CompletedAt     *time.Time  `json:"completedAt,omitempty"`
}

// ServicePayments is the settlement breakdown for a service job.
type ServicePayments struct {
	Cash     float64 `json:"cash"`
	Card     float64 `json:"card"`
	Transfer float64 `json:"transfer"`
}

// Discount is a granted reduction with its mandatory justification.
type Discount struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note,omitempty"`
}

// ServiceInfo accumulates on a service-type job over its visits.
type ServiceInfo struct {
	FixedFee       float64          `json:"fixedFee"`
	Note           string           `json:"note,omitempty"`
	Visits         []ServiceVisit   `json:"visits,omitempty"`
	TotalExtraCost float64          `json:"totalExtraCost"`
	TotalCost      float64          `json:"totalCost"`
	Payments       *ServicePayments `json:"payments,omitempty"`
	Discount       *Discount        `json:"discount,omitempty"`
	PaymentStatus  PaymentStatus    `json:"paymentStatus,omitempty"`
	CompletedAt    *time.Time       `json:"completedAt,omitempty"`
}

// FinancePayments is the cash/card/cheque breakdown entered at financial
// closure (after-delivery amounts are settled here).
type FinancePayments struct {
	Cash   float64 `json:"cash"`
	Card   float64 `json:"card"`
	Cheque float64 `json:"cheque"`
}

// Finance records the financial closure of a standard job.
type Finance struct {
	Total    float64          `json:"total"`
	Payments *FinancePayments `json:"payments,omitempty"`
	Discount *Discount        `json:"discount,omitempty"`
	ClosedAt *time.Time       `json:"closedAt,omitempty"`
}

// AssemblyInfo tracks assembly scheduling and completion.
type AssemblyInfo struct {
	Date      *time.Time `json:"date,omitempty"`
	Note      string     `json:"note,omitempty"`
	Team      string     `json:"team,omitempty"`
	Completed bool       `json:"completed"`
}

// ProductionInfo tracks production sub-state, including outsourcing.
type ProductionInfo struct {
	AgreementDate *time.Time `json:"agreementDate,omitempty"`
	Note          string     `json:"note,omitempty"`
}

// Job is a fabrication/installation order or a maintenance service call
// moving through the staged lifecycle. Sub-objects are stored as JSON
// columns; lifecycle operations never mutate a loaded Job, they build a new
// snapshot via the lifecycle package and persist that.
type Job struct {
	BaseModel
	Title      string    `gorm:"type:varchar(200);not null" json:"title"`
	CustomerID string    `gorm:"type:varchar(100);not null;index" json:"customerId"`
	Status     JobStatus `gorm:"type:varchar(50);not null;index" json:"status"`
	StartType  StartType `gorm:"type:varchar(50);not null" json:"startType"`

	Roles        RoleList        `gorm:"type:jsonb" json:"roles,omitempty"`
	Measure      *Measure        `gorm:"type:jsonb" json:"measure,omitempty"`
	Offer        *Offer          `gorm:"type:jsonb" json:"offer,omitempty"`
	PaymentPlan  *PaymentPlan    `gorm:"type:jsonb" json:"paymentPlan,omitempty"`
	Rejection    *Rejection      `gorm:"type:jsonb" json:"rejection,omitempty"`
	PendingLines PendingLineList `gorm:"type:jsonb" json:"pendingPurchaseLines,omitempty"`
	Service      *ServiceInfo    `gorm:"type:jsonb" json:"service,omitempty"`
	Finance      *Finance        `gorm:"type:jsonb" json:"finance,omitempty"`
	Assembly     *AssemblyInfo   `gorm:"type:jsonb" json:"assembly,omitempty"`
	Production   *ProductionInfo `gorm:"type:jsonb" json:"production,omitempty"`

	PendingPurchaseOrderID *string `gorm:"type:uuid" json:"pendingPurchaseOrderId,omitempty"`
}

// IsServiceJob reports whether the job follows the service flow.
func (j *Job) IsServiceJob() bool {
	return j.StartType == StartService
}

// IsClosed reports whether the job has reached a terminal closed status.
// Closed jobs accept no further transitions.
func (j *Job) IsClosed() bool {
	return j.Status == StatusClosed || j.Status == StatusServiceClosed
}

// IsRejected reports whether the job sits in the rejected terminal.
func (j *Job) IsRejected() bool {
	return j.Status == StatusRejected
}
