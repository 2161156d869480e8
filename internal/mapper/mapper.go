package mapper

import (
	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/lifecycle"
)

const timeLayout = "2006-01-02T15:04:05Z"

// ToJobDTO converts Job to JobDTO
func ToJobDTO(job *domain.Job) domain.JobDTO {
	return domain.JobDTO{
		ID:                     job.ID,
		Title:                  job.Title,
		CustomerID:             job.CustomerID,
		Status:                 job.Status,
		StartType:              job.StartType,
		Roles:                  job.Roles,
		Measure:                job.Measure,
		Offer:                  job.Offer,
		PaymentPlan:            job.PaymentPlan,
		Rejection:              job.Rejection,
		PendingLines:           job.PendingLines,
		PendingPurchaseOrderID: job.PendingPurchaseOrderID,
		Service:                job.Service,
		Finance:                job.Finance,
		Assembly:               job.Assembly,
		Production:             job.Production,
		CreatedAt:              job.CreatedAt.Format(timeLayout),
		UpdatedAt:              job.UpdatedAt.Format(timeLayout),
	}
}

// ToJobDetailDTO converts Job to JobDetailDTO with its stage rail. Rejected
// jobs carry no rail; the rejection record stands in for it.
func ToJobDetailDTO(job *domain.Job) domain.JobDetailDTO {
	dto := domain.JobDetailDTO{JobDTO: ToJobDTO(job)}

	if !job.IsRejected() {
		if entries, err := lifecycle.StageView(job); err == nil {
			dto.Stages = make([]domain.StageViewEntryDTO, len(entries))
			for i, entry := range entries {
				dto.Stages[i] = domain.StageViewEntryDTO{
					ID:    string(entry.Stage.ID),
					Name:  entry.Stage.Name,
					State: string(entry.State),
				}
			}
		}
	}
	return dto
}

// ToStockItemDTO converts StockItem to StockItemDTO with derived fields
func ToStockItemDTO(item *domain.StockItem) domain.StockItemDTO {
	return domain.StockItemDTO{
		ID:                item.ID,
		SKU:               item.SKU,
		Name:              item.Name,
		Color:             item.Color,
		Supplier:          item.Supplier,
		Unit:              item.Unit,
		OnHand:            item.OnHand,
		Reserved:          item.Reserved,
		Available:         item.Available(),
		CriticalThreshold: item.CriticalThreshold,
		Health:            item.Health(),
		CreatedAt:         item.CreatedAt.Format(timeLayout),
		UpdatedAt:         item.UpdatedAt.Format(timeLayout),
	}
}

// ToPurchaseOrderDTO converts PurchaseOrder to PurchaseOrderDTO
func ToPurchaseOrderDTO(order *domain.PurchaseOrder) domain.PurchaseOrderDTO {
	return domain.PurchaseOrderDTO{
		ID:        order.ID,
		JobID:     &order.JobID,
		Status:    order.Status,
		Notes:     order.Notes,
		Lines:     order.Lines,
		CreatedAt: order.CreatedAt.Format(timeLayout),
		UpdatedAt: order.UpdatedAt.Format(timeLayout),
	}
}

// ToJobLogDTO converts JobLog to JobLogDTO
func ToJobLogDTO(entry *domain.JobLog) domain.JobLogDTO {
	return domain.JobLogDTO{
		ID:        entry.ID,
		JobID:     entry.JobID,
		Action:    entry.Action,
		Detail:    entry.Detail,
		Meta:      entry.Meta,
		Actor:     entry.Actor,
		CreatedAt: entry.CreatedAt.Format(timeLayout),
	}
}

// ToDocumentDTO converts Document to DocumentDTO
func ToDocumentDTO(doc *domain.Document) domain.DocumentDTO {
	return domain.DocumentDTO{
		ID:          doc.ID,
		JobID:       doc.JobID,
		Type:        doc.Type,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		Description: doc.Description,
		UploadedBy:  doc.UploadedBy,
		CreatedAt:   doc.CreatedAt.Format(timeLayout),
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:        notification.ID,
		Type:      notification.Type,
		JobID:     notification.JobID,
		Title:     notification.Title,
		Message:   notification.Message,
		Read:      notification.IsRead,
		CreatedAt: notification.CreatedAt.Format(timeLayout),
	}
}

// ToJobDTOs converts a slice of jobs
func ToJobDTOs(jobs []domain.Job) []domain.JobDTO {
	dtos := make([]domain.JobDTO, len(jobs))
	for i := range jobs {
		dtos[i] = ToJobDTO(&jobs[i])
	}
	return dtos
}

// ToStockItemDTOs converts a slice of stock items
func ToStockItemDTOs(items []domain.StockItem) []domain.StockItemDTO {
	dtos := make([]domain.StockItemDTO, len(items))
	for i := range items {
		dtos[i] = ToStockItemDTO(&items[i])
	}
	return dtos
}
