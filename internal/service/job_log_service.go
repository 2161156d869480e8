package service

import (
	"context"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/mapper"
	"github.com/fenstra-as/jobflow-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Timeline actions recorded after accepted transitions.
const (
	ActionJobCreated            = "job.created"
	ActionStageAdvanced         = "stage.advanced"
	ActionOfferPriced           = "offer.priced"
	ActionOfferNegotiated       = "offer.negotiated"
	ActionOfferRejected         = "offer.rejected"
	ActionOfferReactivated      = "offer.reactivated"
	ActionAgreementApproved     = "agreement.approved"
	ActionStockReserved         = "stock.reserved"
	ActionStockPending          = "stock.pending"
	ActionProductionUpdated     = "production.updated"
	ActionAssemblyScheduled     = "assembly.scheduled"
	ActionAssemblyCompleted     = "assembly.completed"
	ActionFinanceClosed         = "finance.closed"
	ActionServiceScheduled      = "service.scheduled"
	ActionServiceVisitStarted   = "service.visit_started"
	ActionServiceVisitCompleted = "service.visit_completed"
	ActionServiceClosed         = "service.closed"
	ActionDocumentUploaded      = "document.uploaded"
	ActionDocumentDeleted       = "document.deleted"
)

type JobLogService struct {
	logRepo *repository.JobLogRepository
	logger  *zap.Logger
}

func NewJobLogService(logRepo *repository.JobLogRepository, logger *zap.Logger) *JobLogService {
	return &JobLogService{logRepo: logRepo, logger: logger}
}

// Record appends a timeline entry best-effort. Append failures are logged
// at Warn and discarded so they never roll back the transition.
func (s *JobLogService) Record(ctx context.Context, jobID uuid.UUID, action, detail, actor string, meta domain.JSONMap) {
	entry := &domain.JobLog{
		JobID:  jobID,
		Action: action,
		Detail: detail,
		Meta:   meta,
		Actor:  actor,
	}
	if err := s.logRepo.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to append job log entry",
			zap.String("jobId", jobID.String()),
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *JobLogService) ListByJob(ctx context.Context, jobID uuid.UUID, page, pageSize int) (*domain.PaginatedResponse, error) {
	entries, total, err := s.logRepo.ListByJob(ctx, jobID, page, pageSize)
	if err != nil {
		return nil, err
	}

	dtos := make([]domain.JobLogDTO, len(entries))
	for i := range entries {
		dtos[i] = mapper.ToJobLogDTO(&entries[i])
	}

	resp := domain.NewPaginatedResponse(dtos, total, page, pageSize)
	return &resp, nil
}
