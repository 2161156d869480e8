package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/repository"
	"github.com/fenstra-as/jobflow-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StockHandler struct {
	stockService *service.StockService
	logger       *zap.Logger
}

func NewStockHandler(stockService *service.StockService, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		logger:       logger,
	}
}

// @Summary List stock items
// @Description List stock items with optional filters
// @Tags Stock
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(50)
// @Param supplier query string false "Filter by supplier"
// @Param q query string false "Search in SKU and name"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stock [get]
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 50
	}

	filters := &repository.StockFilters{}
	if s := r.URL.Query().Get("supplier"); s != "" {
		filters.Supplier = &s
	}
	if q := r.URL.Query().Get("q"); q != "" {
		filters.SearchQuery = &q
	}

	result, err := h.stockService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list stock items", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list stock items")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Create stock item
// @Description Create a new stock item with a unique SKU
// @Tags Stock
// @Accept json
// @Produce json
// @Param request body domain.CreateStockItemRequest true "Stock item data"
// @Success 201 {object} domain.StockItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stock [post]
func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateStockItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.stockService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			respondWithError(w, http.StatusConflict, "A stock item with this SKU already exists")
			return
		}
		h.logger.Error("failed to create stock item", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create stock item")
		return
	}

	w.Header().Set("Location", "/api/v1/stock/"+item.ID.String())
	respondJSON(w, http.StatusCreated, item)
}

// @Summary Get stock item
// @Description Get a stock item by ID with derived availability and health
// @Tags Stock
// @Produce json
// @Param id path string true "Stock item ID"
// @Success 200 {object} domain.StockItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stock/{id} [get]
func (h *StockHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid stock item ID: must be a valid UUID")
		return
	}

	item, err := h.stockService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Stock item not found")
			return
		}
		h.logger.Error("failed to get stock item", zap.Error(err), zap.String("stock_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get stock item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// @Summary Update stock item
// @Description Update a stock item's descriptive fields and critical threshold
// @Tags Stock
// @Accept json
// @Produce json
// @Param id path string true "Stock item ID"
// @Param request body domain.UpdateStockItemRequest true "Stock item data"
// @Success 200 {object} domain.StockItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stock/{id} [put]
func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid stock item ID: must be a valid UUID")
		return
	}

	var req domain.UpdateStockItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.stockService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Stock item not found")
			return
		}
		h.logger.Error("failed to update stock item", zap.Error(err), zap.String("stock_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to update stock item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// @Summary Adjust on-hand count
// @Description Apply a signed delta to the on-hand count, e.g. after a manual count
// @Tags Stock
// @Accept json
// @Produce json
// @Param id path string true "Stock item ID"
// @Param request body domain.AdjustStockRequest true "Adjustment"
// @Success 200 {object} domain.StockItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stock/{id}/adjust [post]
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid stock item ID: must be a valid UUID")
		return
	}

	var req domain.AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.stockService.Adjust(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Stock item not found")
			return
		}
		if errors.Is(err, service.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to adjust stock item", zap.Error(err), zap.String("stock_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to adjust stock item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// @Summary Stock health overview
// @Description Group every stock item into its availability health class
// @Tags Stock
// @Produce json
// @Success 200 {object} map[string][]domain.StockItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stock/health [get]
func (h *StockHandler) HealthOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.stockService.HealthOverview(r.Context())
	if err != nil {
		h.logger.Error("failed to build stock health overview", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to build stock health overview")
		return
	}

	respondJSON(w, http.StatusOK, overview)
}

// @Summary List purchase orders for a job
// @Description List the backorder purchase orders opened for a job's reservations
// @Tags Stock
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {array} domain.PurchaseOrderDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/purchase-orders [get]
func (h *StockHandler) ListPurchaseOrdersByJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
		return
	}

	orders, err := h.stockService.ListPurchaseOrdersByJob(r.Context(), jobID)
	if err != nil {
		h.logger.Error("failed to list purchase orders", zap.Error(err), zap.String("job_id", jobID.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list purchase orders")
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

// @Summary Receive purchase order
// @Description Mark a purchase order received and add its lines to on-hand stock
// @Tags Stock
// @Produce json
// @Param id path string true "Purchase order ID"
// @Success 200 {object} domain.PurchaseOrderDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{id}/receive [post]
func (h *StockHandler) ReceivePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid purchase order ID: must be a valid UUID")
		return
	}

	order, err := h.stockService.ReceivePurchaseOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Purchase order not found")
			return
		}
		if errors.Is(err, service.ErrConflict) {
			respondWithError(w, http.StatusConflict, "Purchase order has already been received")
			return
		}
		h.logger.Error("failed to receive purchase order", zap.Error(err), zap.String("order_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to receive purchase order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}
