package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/repository"
	"github.com/fenstra-as/jobflow-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobHandler exposes the job lifecycle endpoints. Every transition endpoint
// follows the same shape: parse, validate, call the service, map lifecycle
// violations to 422 and everything unrecognized to 500.
type JobHandler struct {
	jobService *service.JobService
	logService *service.JobLogService
	logger     *zap.Logger
}

func NewJobHandler(jobService *service.JobService, logService *service.JobLogService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		logService: logService,
		logger:     logger,
	}
}

// parseJobID extracts and validates the {id} URL parameter. On failure it
// writes the 400 response and returns false.
func parseJobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *JobHandler) respondLifecycle(w http.ResponseWriter, id uuid.UUID, op string, result interface{}, err error) {
	if err != nil {
		if respondTransitionError(w, err) {
			return
		}
		h.logger.Error("job operation failed",
			zap.String("op", op),
			zap.String("job_id", id.String()),
			zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to "+op)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary List jobs
// @Description List jobs with optional filters
// @Tags Jobs
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by exact status"
// @Param statuses query string false "Filter by comma-separated statuses"
// @Param startType query string false "Filter by start type (MEASURE_APPOINTMENT, CUSTOMER_SUPPLIED_MEASURE, SERVICE)"
// @Param customerId query string false "Filter by customer ID"
// @Param rejected query bool false "Filter by rejection flag"
// @Param createdAfter query string false "Created after date (YYYY-MM-DD)"
// @Param createdBefore query string false "Created before date (YYYY-MM-DD)"
// @Param q query string false "Search in title"
// @Param sort query string false "Sort by (created_desc, created_asc, updated_desc, title_asc)"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs [get]
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}

	filters := &repository.JobFilters{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.JobStatus(s)
		filters.Status = &status
	}
	if ss := r.URL.Query().Get("statuses"); ss != "" {
		for _, part := range strings.Split(ss, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filters.Statuses = append(filters.Statuses, domain.JobStatus(part))
			}
		}
	}
	if st := r.URL.Query().Get("startType"); st != "" {
		startType := domain.StartType(st)
		filters.StartType = &startType
	}
	if cid := r.URL.Query().Get("customerId"); cid != "" {
		filters.CustomerID = &cid
	}
	if rej := r.URL.Query().Get("rejected"); rej != "" {
		if b, err := strconv.ParseBool(rej); err == nil {
			filters.IsRejected = &b
		}
	}
	if ca := r.URL.Query().Get("createdAfter"); ca != "" {
		if t, err := time.Parse("2006-01-02", ca); err == nil {
			filters.CreatedAfter = &t
		}
	}
	if cb := r.URL.Query().Get("createdBefore"); cb != "" {
		if t, err := time.Parse("2006-01-02", cb); err == nil {
			filters.CreatedBefore = &t
		}
	}
	if q := r.URL.Query().Get("q"); q != "" {
		filters.SearchQuery = &q
	}

	sortBy := repository.JobSortByCreatedDesc
	if s := r.URL.Query().Get("sort"); s != "" {
		sortBy = repository.JobSortOption(s)
	}

	result, err := h.jobService.List(r.Context(), page, pageSize, filters, sortBy)
	if err != nil {
		h.logger.Error("failed to list jobs", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Create job
// @Description Create a new job; the start type decides the entry status
// @Tags Jobs
// @Accept json
// @Produce json
// @Param request body domain.CreateJobRequest true "Job data"
// @Success 201 {object} domain.JobDetailDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs [post]
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.Create(r.Context(), &req)
	if err != nil {
		if respondTransitionError(w, err) {
			return
		}
		h.logger.Error("failed to create job", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	w.Header().Set("Location", "/api/v1/jobs/"+job.ID.String())
	respondJSON(w, http.StatusCreated, job)
}

// @Summary Get job
// @Description Get a job by ID with its stage rail
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDetailDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id} [get]
func (h *JobHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}
	job, err := h.jobService.GetByID(r.Context(), id)
	h.respondLifecycle(w, id, "get job", job, err)
}

// @Summary Update job
// @Description Update the job header (title, roles)
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.UpdateJobRequest true "Job data"
// @Success 200 {object} domain.JobDetailDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id} [put]
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.Update(r.Context(), id, &req)
	h.respondLifecycle(w, id, "update job", job, err)
}

// @Summary Stage view
// @Description Get the per-stage progress rail for a job
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {array} domain.StageViewEntryDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/stage-view [get]
func (h *JobHandler) StageView(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}
	entries, err := h.jobService.StageView(r.Context(), id)
	h.respondLifecycle(w, id, "get stage view", entries, err)
}

// @Summary Job timeline
// @Description List the audit timeline entries for a job
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(50)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/logs [get]
func (h *JobHandler) Logs(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 50
	}

	result, err := h.logService.ListByJob(r.Context(), id, page, pageSize)
	h.respondLifecycle(w, id, "list job logs", result, err)
}

// @Summary Update measure
// @Description Patch the measure record; booking an appointment or confirming moves the status
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.UpdateMeasureRequest true "Measure patch"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/measure [put]
func (h *JobHandler) UpdateMeasure(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateMeasureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.UpdateMeasure(r.Context(), id, &req)
	h.respondLifecycle(w, id, "update measure", job, err)
}

// @Summary Price offer
// @Description Set the offer total with its per-role split and send the offer
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.PriceOfferRequest true "Offer pricing"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/price [post]
func (h *JobHandler) Price(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.PriceOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.Price(r.Context(), id, &req)
	h.respondLifecycle(w, id, "price offer", job, err)
}

// @Summary Approve offer
// @Description Customer accepts the sent offer; the job moves to agreement
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/offer/approve [post]
func (h *JobHandler) ApproveOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}
	job, err := h.jobService.ApproveOffer(r.Context(), id)
	h.respondLifecycle(w, id, "approve offer", job, err)
}

// @Summary Negotiate offer
// @Description Apply per-role discounts; the result may carry warnings
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.NegotiateRequest true "Role discounts"
// @Success 200 {object} domain.TransitionResultDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/negotiate [post]
func (h *JobHandler) Negotiate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.NegotiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.jobService.Negotiate(r.Context(), id, &req)
	h.respondLifecycle(w, id, "negotiate offer", result, err)
}

// @Summary Approve agreement
// @Description Close the agreement with a payment plan reconciled against the offer total
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.ApproveAgreementRequest true "Payment plan"
// @Success 200 {object} domain.TransitionResultDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/approve [post]
func (h *JobHandler) ApproveAgreement(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.ApproveAgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.jobService.ApproveAgreement(r.Context(), id, &req)
	h.respondLifecycle(w, id, "approve agreement", result, err)
}

// @Summary Reject job
// @Description Park the job with a categorized rejection and optional follow-up date
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.RejectJobRequest true "Rejection data"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/reject [post]
func (h *JobHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.RejectJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.Reject(r.Context(), id, &req)
	h.respondLifecycle(w, id, "reject job", job, err)
}

// @Summary Reactivate job
// @Description Bring a rejected job back to the offer stage
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/reactivate [post]
func (h *JobHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}
	job, err := h.jobService.Reactivate(r.Context(), id)
	h.respondLifecycle(w, id, "reactivate job", job, err)
}

// @Summary Reserve stock
// @Description Reserve materials for the job; shortfalls open a purchase order
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.ReserveStockRequest true "Reservation lines"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/stock [post]
func (h *JobHandler) ReserveStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.ReserveStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.ReserveStock(r.Context(), id, &req)
	h.respondLifecycle(w, id, "reserve stock", job, err)
}

// @Summary Update production
// @Description Move the job through the production statuses
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.ProductionRequest true "Production update"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/production [post]
func (h *JobHandler) UpdateProduction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.ProductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.UpdateProduction(r.Context(), id, &req)
	h.respondLifecycle(w, id, "update production", job, err)
}

// @Summary Schedule assembly
// @Description Book the assembly date and team
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.ScheduleAssemblyRequest true "Assembly booking"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/assembly/schedule [post]
func (h *JobHandler) ScheduleAssembly(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.ScheduleAssemblyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.ScheduleAssembly(r.Context(), id, &req)
	h.respondLifecycle(w, id, "schedule assembly", job, err)
}

// @Summary Complete assembly
// @Description Mark assembly done; the job moves to financial closure
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/assembly/complete [post]
func (h *JobHandler) CompleteAssembly(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}
	job, err := h.jobService.CompleteAssembly(r.Context(), id)
	h.respondLifecycle(w, id, "complete assembly", job, err)
}

// @Summary Close finance
// @Description Settle the remaining balance and close the job
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.CloseFinanceRequest true "Settlement payments"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/finance/close [post]
func (h *JobHandler) CloseFinance(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.CloseFinanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.CloseFinance(r.Context(), id, &req)
	h.respondLifecycle(w, id, "close finance", job, err)
}

// @Summary Schedule service
// @Description Book a service visit with the agreed call-out fee
// @Tags Service
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.ScheduleServiceRequest true "Service booking"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/service/schedule [post]
func (h *JobHandler) ScheduleService(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.ScheduleServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.ScheduleService(r.Context(), id, &req)
	h.respondLifecycle(w, id, "schedule service", job, err)
}

// @Summary Start service visit
// @Description Mark the scheduled visit as started
// @Tags Service
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/service/visits/start [post]
func (h *JobHandler) StartVisit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}
	job, err := h.jobService.StartVisit(r.Context(), id)
	h.respondLifecycle(w, id, "start service visit", job, err)
}

// @Summary Complete service visit
// @Description Record the work note, materials and extra cost for the visit
// @Tags Service
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.CompleteVisitRequest true "Visit completion"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/service/visits/complete [post]
func (h *JobHandler) CompleteVisit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.CompleteVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.CompleteVisit(r.Context(), id, &req)
	h.respondLifecycle(w, id, "complete service visit", job, err)
}

// @Summary Finalize service work
// @Description Declare the service work done; the job moves to payment collection
// @Tags Service
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/service/finalize [post]
func (h *JobHandler) FinalizeService(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}
	job, err := h.jobService.FinalizeService(r.Context(), id)
	h.respondLifecycle(w, id, "finalize service", job, err)
}

// @Summary Continue service
// @Description Book a follow-up visit when one visit was not enough
// @Tags Service
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.ContinueServiceRequest true "Follow-up booking"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/service/continue [post]
func (h *JobHandler) ContinueService(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.ContinueServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.ContinueService(r.Context(), id, &req)
	h.respondLifecycle(w, id, "continue service", job, err)
}

// @Summary Close service
// @Description Collect the settled payments and close the service job
// @Tags Service
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.CloseServiceRequest true "Settlement payments"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/service/close [post]
func (h *JobHandler) CloseService(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.CloseServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.CloseService(r.Context(), id, &req)
	h.respondLifecycle(w, id, "close service", job, err)
}

// @Summary Free transition
// @Description Move the job to any permitted status, re-running the gate checks
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.TransitionRequest true "Target status"
// @Success 200 {object} domain.JobDetailDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/transition [post]
func (h *JobHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := parseJobID(w, r)
	if !ok {
		return
	}

	var req domain.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.Transition(r.Context(), id, req.Status)
	h.respondLifecycle(w, id, "transition job", job, err)
}
