package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// BeforeCreate assigns the ID client-side so Postgres and the sqlite
// driver used in tests behave the same.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JobLog is one audit entry on a job's timeline. Appends are best-effort:
// a failed append never rolls back the transition that produced it.
type JobLog struct {
	BaseModel
	JobID  uuid.UUID `gorm:"type:uuid;not null;index" json:"jobId"`
	Action string    `gorm:"type:varchar(100);not null" json:"action"`
	Detail string    `gorm:"type:text" json:"detail,omitempty"`
	Meta   JSONMap   `gorm:"type:jsonb" json:"meta,omitempty"`
	Actor  string    `gorm:"type:varchar(200)" json:"actor,omitempty"`
}

// DocumentTypeMeasure and DocumentTypeTechnical build the per-role document
// type tokens the transition validator checks for.
func DocumentTypeMeasure(roleID string) string   { return "measure_" + roleID }
func DocumentTypeTechnical(roleID string) string { return "technical_" + roleID }

// Document is the metadata record for an uploaded drawing or attachment.
// The blob itself lives in storage; Type encodes role + purpose
// (e.g. "measure_alu", "technical_pvc").
type Document struct {
	BaseModel
	JobID       uuid.UUID `gorm:"type:uuid;not null;index" json:"jobId"`
	Type        string    `gorm:"type:varchar(100);not null;index" json:"type"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"fileName"`
	ContentType string    `gorm:"type:varchar(100)" json:"contentType,omitempty"`
	SizeBytes   int64     `gorm:"not null;default:0" json:"sizeBytes"`
	StoragePath string    `gorm:"type:varchar(500);not null" json:"-"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	UploadedBy  string    `gorm:"type:varchar(200)" json:"uploadedBy,omitempty"`
}

// NotificationType classifies in-app notifications.
type NotificationType string

const (
	NotificationFollowUpDue  NotificationType = "follow_up_due"
	NotificationStockPending NotificationType = "stock_pending"
)

// Notification is an in-app reminder, e.g. a rejected job whose follow-up
// date has arrived.
type Notification struct {
	BaseModel
	Type    NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	JobID   *uuid.UUID       `gorm:"type:uuid;index" json:"jobId,omitempty"`
	Title   string           `gorm:"type:varchar(200);not null" json:"title"`
	Message string           `gorm:"type:text" json:"message,omitempty"`
	IsRead  bool             `gorm:"not null;default:false;column:is_read" json:"isRead"`
}

// UserRoleType classifies operator accounts. Roles come from the identity
// provider's role claims.
type UserRoleType string

const (
	RoleAdmin      UserRoleType = "admin"
	RoleOffice     UserRoleType = "office"
	RoleFitter     UserRoleType = "fitter"
	RoleAPIService UserRoleType = "api_service"
)

// User is an operator account resolved from the bearer token.
type User struct {
	BaseModel
	Email       string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	DisplayName string `gorm:"type:varchar(200);not null" json:"displayName"`
	IsActive    bool   `gorm:"not null;default:true;column:is_active" json:"isActive"`
}

// PaginatedResponse wraps list endpoints.
type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// NewPaginatedResponse computes page counts for a list response.
func NewPaginatedResponse(items interface{}, total int64, page, pageSize int) PaginatedResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return PaginatedResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// FormatAmount renders a currency amount for log details and error text.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
