package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fenstra-as/jobflow-api/internal/database"
	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/http/handler"
	"github.com/fenstra-as/jobflow-api/internal/repository"
	"github.com/fenstra-as/jobflow-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRouter mounts the job routes over an in-memory database, mirroring
// the production route table without the auth and rate limit layers.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	log := zap.NewNop()
	jobRepo := repository.NewJobRepository(db)
	stockRepo := repository.NewStockRepository(db)
	orderRepo := repository.NewPurchaseOrderRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	logSvc := service.NewJobLogService(repository.NewJobLogRepository(db), log)
	jobService := service.NewJobService(jobRepo, stockRepo, orderRepo, docRepo, notificationRepo, logSvc, log)

	h := handler.NewJobHandler(jobService, logSvc, log)

	r := chi.NewRouter()
	r.Route("/api/v1/jobs", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.Get("/{id}/stage-view", h.StageView)
		r.Get("/{id}/logs", h.Logs)
		r.Post("/{id}/price", h.Price)
		r.Post("/{id}/offer/approve", h.ApproveOffer)
		r.Post("/{id}/approve", h.ApproveAgreement)
		r.Post("/{id}/reject", h.Reject)
		r.Post("/{id}/transition", h.Transition)
	})
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func createJobViaAPI(t *testing.T, r chi.Router) domain.JobDetailDTO {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/jobs", domain.CreateJobRequest{
		Title:      "Brygga 12 facade",
		CustomerID: "CUST-2001",
		StartType:  domain.StartMeasureAppointment,
		Roles:      []domain.JobRole{{ID: "alu", Name: "Aluminium"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dto domain.JobDetailDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

func TestJobHandler_CreateAndGet(t *testing.T) {
	r := newTestRouter(t)

	created := createJobViaAPI(t, r)
	assert.Equal(t, domain.StatusMeasurePending, created.Status)
	assert.NotEmpty(t, created.Stages)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/jobs/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.JobDetailDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Brygga 12 facade", got.Title)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/jobs/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/jobs/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobHandler_CreateValidation(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/jobs", map[string]string{
		"customerId": "CUST-1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Errors, "title")
	assert.Contains(t, apiErr.Errors, "startType")
}

func TestJobHandler_TransitionBlocked(t *testing.T) {
	r := newTestRouter(t)
	job := createJobViaAPI(t, r)
	base := "/api/v1/jobs/" + job.ID.String()

	rec := doJSON(t, r, http.MethodPost, base+"/price", domain.PriceOfferRequest{Total: 60000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodPost, base+"/offer/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Plan total 40000 against a 60000 offer: blocked with the delta.
	rec = doJSON(t, r, http.MethodPost, base+"/approve", domain.ApproveAgreementRequest{Cash: 40000})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "Transition Blocked", apiErr.Title)
	require.Len(t, apiErr.Reasons, 1)
	require.NotNil(t, apiErr.Discrepancy)
	assert.InDelta(t, -20000, *apiErr.Discrepancy, 0.001)
}

func TestJobHandler_RejectAndListFilter(t *testing.T) {
	r := newTestRouter(t)
	job := createJobViaAPI(t, r)
	keep := createJobViaAPI(t, r)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/jobs/"+job.ID.String()+"/reject", domain.RejectJobRequest{
		Category: domain.RejectionCompetitor,
		Reason:   "went with a local carpenter",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodGet, "/api/v1/jobs/?rejected=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page domain.PaginatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)

	rec = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/jobs/?status=%s", domain.StatusMeasurePending), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/jobs/"+keep.ID.String()+"/stage-view", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/jobs/"+job.ID.String()+"/stage-view", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
