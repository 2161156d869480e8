package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/auth"
	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/lifecycle"
	"github.com/fenstra-as/jobflow-api/internal/mapper"
	"github.com/fenstra-as/jobflow-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JobService orchestrates the lifecycle engine: it loads the stored job
// snapshot, runs the pure transition, persists the result, and appends the
// timeline entry. The engine itself never touches the database.
type JobService struct {
	jobRepo          *repository.JobRepository
	stockRepo        *repository.StockRepository
	orderRepo        *repository.PurchaseOrderRepository
	docRepo          *repository.DocumentRepository
	notificationRepo *repository.NotificationRepository
	logSvc           *JobLogService
	logger           *zap.Logger
}

func NewJobService(
	jobRepo *repository.JobRepository,
	stockRepo *repository.StockRepository,
	orderRepo *repository.PurchaseOrderRepository,
	docRepo *repository.DocumentRepository,
	notificationRepo *repository.NotificationRepository,
	logSvc *JobLogService,
	logger *zap.Logger,
) *JobService {
	return &JobService{
		jobRepo:          jobRepo,
		stockRepo:        stockRepo,
		orderRepo:        orderRepo,
		docRepo:          docRepo,
		notificationRepo: notificationRepo,
		logSvc:           logSvc,
		logger:           logger,
	}
}

func (s *JobService) Create(ctx context.Context, req *domain.CreateJobRequest) (*domain.JobDetailDTO, error) {
	if !req.StartType.IsValid() {
		return nil, fmt.Errorf("%w: unknown start type %q", ErrInvalidInput, req.StartType)
	}

	job := &domain.Job{
		Title:      req.Title,
		CustomerID: req.CustomerID,
		StartType:  req.StartType,
		Status:     req.StartType.InitialStatus(),
		Roles:      req.Roles,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.logSvc.Record(ctx, job.ID, ActionJobCreated,
		fmt.Sprintf("job created with start type %s", job.StartType),
		actorFrom(ctx), domain.JSONMap{"status": string(job.Status)})

	dto := mapper.ToJobDetailDTO(job)
	return &dto, nil
}

func (s *JobService) GetByID(ctx context.Context, id uuid.UUID) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToJobDetailDTO(job)
	return &dto, nil
}

func (s *JobService) List(ctx context.Context, page, pageSize int, filters *repository.JobFilters, sortBy repository.JobSortOption) (*domain.PaginatedResponse, error) {
	jobs, total, err := s.jobRepo.List(ctx, page, pageSize, filters, sortBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	resp := domain.NewPaginatedResponse(mapper.ToJobDTOs(jobs), total, page, pageSize)
	return &resp, nil
}

// StageView returns the stage rail for a job. Rejected jobs have no rail.
func (s *JobService) StageView(ctx context.Context, id uuid.UUID) ([]domain.StageViewEntryDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.IsRejected() {
		return nil, fmt.Errorf("%w: rejected jobs have no stage view", ErrConflict)
	}

	entries, err := lifecycle.StageView(job)
	if err != nil {
		return nil, err
	}

	dtos := make([]domain.StageViewEntryDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = domain.StageViewEntryDTO{
			ID:    string(entry.Stage.ID),
			Name:  entry.Stage.Name,
			State: string(entry.State),
		}
	}
	return dtos, nil
}

// Update edits the job header. Closed jobs are immutable.
func (s *JobService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateJobRequest) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.IsClosed() {
		return nil, fmt.Errorf("job %s: %w", id, ErrJobClosed)
	}

	next := job.Clone()
	next.Title = req.Title
	if len(req.Roles) > 0 {
		next.Roles = domain.RoleList(req.Roles)
	}

	return s.persist(ctx, job, next, ActionStageAdvanced, "job updated", nil)
}

func (s *JobService) UpdateMeasure(ctx context.Context, id uuid.UUID, req *domain.UpdateMeasureRequest) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := lifecycle.MeasurePatch{
		Note:      req.Note,
		Confirmed: req.Confirmed,
		Uploaded:  req.Uploaded,
		Status:    req.Status,
	}
	if req.Appointment != nil {
		patch.Appointment = req.Appointment
	}

	next, err := lifecycle.ApplyMeasure(job, patch)
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionStageAdvanced, "measure updated", nil)
}

func (s *JobService) Price(ctx context.Context, id uuid.UUID, req *domain.PriceOfferRequest) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.PriceOffer(job, req.Total, req.RolePrices, time.Now())
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionOfferPriced,
		fmt.Sprintf("offer priced at %s", domain.FormatAmount(req.Total)),
		domain.JSONMap{"total": req.Total})
}

// ApproveOffer accepts the offer without a discount round.
func (s *JobService) ApproveOffer(ctx context.Context, id uuid.UUID) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.ApproveOffer(job, time.Now())
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionStageAdvanced, "offer accepted as priced", nil)
}

func (s *JobService) Negotiate(ctx context.Context, id uuid.UUID, req *domain.NegotiateRequest) (*domain.TransitionResultDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	next, result, err := lifecycle.ApplyNegotiation(job, req.RoleDiscounts, time.Now())
	if err != nil {
		return nil, err
	}

	dto, err := s.persist(ctx, job, next, ActionOfferNegotiated,
		fmt.Sprintf("offer negotiated from %s to %s",
			domain.FormatAmount(result.Record.OriginalTotal),
			domain.FormatAmount(result.Record.FinalTotal)),
		domain.JSONMap{"discountTotal": result.Record.DiscountTotal})
	if err != nil {
		return nil, err
	}
	return &domain.TransitionResultDTO{Job: dto, Warnings: result.Warnings}, nil
}

func (s *JobService) ApproveAgreement(ctx context.Context, id uuid.UUID, req *domain.ApproveAgreementRequest) (*domain.TransitionResultDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	plan := domain.PaymentPlan{
		Cash:          req.Cash,
		Card:          req.Card,
		AfterDelivery: req.AfterDelivery,
	}
	for _, line := range req.ChequeLines {
		plan.ChequeLines = append(plan.ChequeLines, domain.ChequeLine{
			Amount:  line.Amount,
			DueDate: line.DueDate,
			Bank:    line.Bank,
			Branch:  line.Branch,
			Number:  line.Number,
		})
	}

	next, closure, err := lifecycle.ApproveAgreement(job, plan, req.ChequeTotal, time.Now())
	if err != nil {
		return nil, err
	}

	dto, err := s.persist(ctx, job, next, ActionAgreementApproved,
		fmt.Sprintf("payment plan of %s approved", domain.FormatAmount(closure.PlanTotal)),
		domain.JSONMap{"planTotal": closure.PlanTotal, "averageChequeDay": closure.AverageChequeDay})
	if err != nil {
		return nil, err
	}
	return &domain.TransitionResultDTO{Job: dto, Warnings: closure.Warnings}, nil
}

func (s *JobService) Reject(ctx context.Context, id uuid.UUID, req *domain.RejectJobRequest) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.Reject(job, req.Category, req.Reason, req.FollowUpDate, time.Now())
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionOfferRejected,
		fmt.Sprintf("job rejected: %s", req.Category),
		domain.JSONMap{"category": string(req.Category)})
}

func (s *JobService) Reactivate(ctx context.Context, id uuid.UUID) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.Reactivate(job, time.Now())
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionOfferReactivated, "rejected job reactivated", nil)
}

// ReserveStock runs a reservation against the catalog. Stock quantities,
// the synthesized purchase order, and the job snapshot commit together.
func (s *JobService) ReserveStock(ctx context.Context, id uuid.UUID, req *domain.ReserveStockRequest) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(req.Lines))
	lines := make([]lifecycle.ReservationLine, len(req.Lines))
	for i, line := range req.Lines {
		ids[i] = line.StockItemID
		lines[i] = lifecycle.ReservationLine{
			StockItemID: line.StockItemID.String(),
			Quantity:    line.Quantity,
		}
	}

	items, err := s.stockRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock items: %w", err)
	}

	result, err := lifecycle.Reserve(items, lines, req.Consume)
	if err != nil {
		return nil, err
	}

	var next *domain.Job
	err = s.jobRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var orderID *string
		if !result.AllReady {
			order := &domain.PurchaseOrder{
				JobID:  job.ID,
				Status: domain.PurchaseOrderOpen,
				Notes:  req.PurchaseNotes,
				Lines:  result.PurchaseOrderLines,
			}
			if err := s.orderRepo.CreateTx(ctx, tx, order); err != nil {
				return fmt.Errorf("failed to create purchase order: %w", err)
			}
			idStr := order.ID.String()
			orderID = &idStr
		}

		next, err = lifecycle.ApplyReservation(job, result, orderID)
		if err != nil {
			return err
		}

		if err := s.stockRepo.SaveQuantities(ctx, tx, result.UpdatedItems); err != nil {
			return fmt.Errorf("failed to update stock quantities: %w", err)
		}
		return tx.WithContext(ctx).Save(next).Error
	})
	if err != nil {
		return nil, err
	}

	action := ActionStockReserved
	detail := "all lines reserved, job ready for production"
	if !result.AllReady {
		action = ActionStockPending
		detail = fmt.Sprintf("%d line(s) short, purchase order raised", len(result.PendingLines))
	}
	s.logSvc.Record(ctx, job.ID, action, detail, actorFrom(ctx), nil)

	if !result.AllReady && s.notificationRepo != nil {
		jobID := job.ID
		notification := &domain.Notification{
			Type:    domain.NotificationStockPending,
			JobID:   &jobID,
			Title:   "Stock shortage",
			Message: fmt.Sprintf("Job %q is waiting on %d stock line(s)", job.Title, len(result.PendingLines)),
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			s.logger.Warn("failed to create stock pending notification",
				zap.String("jobId", job.ID.String()), zap.Error(err))
		}
	}

	dto := mapper.ToJobDetailDTO(next)
	return &dto, nil
}

func (s *JobService) UpdateProduction(ctx context.Context, id uuid.UUID, req *domain.ProductionRequest) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.ApplyProduction(job, lifecycle.ProductionPatch{
		Status:        req.Status,
		AgreementDate: req.AgreementDate,
		Note:          req.Note,
	})
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionProductionUpdated,
		fmt.Sprintf("production status set to %s", req.Status), nil)
}

func (s *JobService) ScheduleAssembly(ctx context.Context, id uuid.UUID, req *domain.ScheduleAssemblyRequest) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.ScheduleAssembly(job, req.Date, req.Note, req.Team)
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionAssemblyScheduled,
		fmt.Sprintf("assembly scheduled for %s", req.Date.Format("2006-01-02")), nil)
}

func (s *JobService) CompleteAssembly(ctx context.Context, id uuid.UUID) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.CompleteAssembly(job)
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionAssemblyCompleted, "assembly completed", nil)
}

func (s *JobService) CloseFinance(ctx context.Context, id uuid.UUID, req *domain.CloseFinanceRequest) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	payments := domain.FinancePayments{Cash: req.Cash, Card: req.Card, Cheque: req.Cheque}
	var discount *domain.Discount
	if req.DiscountAmount != 0 || req.DiscountNote != "" {
		discount = &domain.Discount{Amount: req.DiscountAmount, Note: req.DiscountNote}
	}

	next, err := lifecycle.CloseFinance(job, payments, discount, time.Now())
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionFinanceClosed, "remaining balance settled, job closed", nil)
}

func (s *JobService) ScheduleService(ctx context.Context, id uuid.UUID, req *domain.ScheduleServiceRequest) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.ScheduleService(job, req.FixedFee, req.Note, req.AppointmentDate, req.AppointmentTime)
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionServiceScheduled,
		fmt.Sprintf("service visit scheduled for %s", req.AppointmentDate), nil)
}

func (s *JobService) StartVisit(ctx context.Context, id uuid.UUID) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.StartVisit(job, time.Now())
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionServiceVisitStarted, "service visit started", nil)
}

func (s *JobService) CompleteVisit(ctx context.Context, id uuid.UUID, req *domain.CompleteVisitRequest) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.CompleteVisit(job, lifecycle.VisitCompletion{
		WorkNote:  req.WorkNote,
		Materials: req.Materials,
		ExtraCost: req.ExtraCost,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionServiceVisitCompleted, "service visit completed", nil)
}

// FinalizeService recomputes the service totals and moves the job into the
// payment stage.
func (s *JobService) FinalizeService(ctx context.Context, id uuid.UUID) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.FinalizeService(job)
	if err != nil {
		return nil, err
	}

	detail := "service work finalized"
	if next.Service != nil {
		detail = fmt.Sprintf("service work finalized, total cost %s", domain.FormatAmount(next.Service.TotalCost))
	}
	return s.persist(ctx, job, next, ActionStageAdvanced, detail, nil)
}

func (s *JobService) ContinueService(ctx context.Context, id uuid.UUID, req *domain.ContinueServiceRequest) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.ContinueService(job, req.AppointmentDate, req.AppointmentTime, req.Note, req.StartNow, time.Now())
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionServiceScheduled, "follow-up service visit opened", nil)
}

func (s *JobService) CloseService(ctx context.Context, id uuid.UUID, req *domain.CloseServiceRequest) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	payments := domain.ServicePayments{Cash: req.Cash, Card: req.Card, Transfer: req.Transfer}
	var discount *domain.Discount
	if req.DiscountAmount != 0 || req.DiscountNote != "" {
		discount = &domain.Discount{Amount: req.DiscountAmount, Note: req.DiscountNote}
	}

	next, err := lifecycle.CloseService(job, payments, discount, time.Now())
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionServiceClosed, "service payment settled, job closed", nil)
}

// Transition moves the job to a target status through the validator's
// gates. Targets behind a document gate get the job's document list.
func (s *JobService) Transition(ctx context.Context, id uuid.UUID, target domain.JobStatus) (*domain.JobDetailDTO, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	var docs []lifecycle.DocumentRef
	if target == domain.StatusPricing {
		stored, err := s.docRepo.ListByJob(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load documents: %w", err)
		}
		docs = make([]lifecycle.DocumentRef, len(stored))
		for i, doc := range stored {
			docs[i] = lifecycle.DocumentRef{Type: doc.Type}
		}
	}

	next, err := lifecycle.FreeTransition(job, target, docs)
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, job, next, ActionStageAdvanced,
		fmt.Sprintf("status changed from %s to %s", job.Status, target), nil)
}

// persist saves the new snapshot and appends the timeline entry for it.
func (s *JobService) persist(ctx context.Context, prev, next *domain.Job, action, detail string, meta domain.JSONMap) (*domain.JobDetailDTO, error) {
	if err := s.jobRepo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	if meta == nil {
		meta = domain.JSONMap{}
	}
	if prev.Status != next.Status {
		meta["from"] = string(prev.Status)
		meta["to"] = string(next.Status)
	}
	s.logSvc.Record(ctx, next.ID, action, detail, actorFrom(ctx), meta)

	dto := mapper.ToJobDetailDTO(next)
	return &dto, nil
}

func (s *JobService) loadJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func actorFrom(ctx context.Context) string {
	if userCtx, ok := auth.FromContext(ctx); ok {
		return userCtx.DisplayName
	}
	return ""
}
