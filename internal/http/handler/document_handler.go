package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fenstra-as/jobflow-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentHandler serves drawing and attachment uploads for jobs.
type DocumentHandler struct {
	fileService *service.FileService
	maxUploadMB int64
	logger      *zap.Logger
}

func NewDocumentHandler(fileService *service.FileService, maxUploadMB int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		fileService: fileService,
		maxUploadMB: maxUploadMB,
		logger:      logger,
	}
}

// @Summary Upload document
// @Description Upload a drawing or attachment for a job. The type field encodes role and purpose, e.g. "measure_alu"
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Job ID"
// @Param file formData file true "File to upload"
// @Param type formData string true "Document type, e.g. measure_alu or technical_pvc"
// @Param description formData string false "Optional description"
// @Success 201 {object} domain.DocumentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	docType := r.FormValue("type")
	if docType == "" {
		respondWithError(w, http.StatusBadRequest, "Document type is required")
		return
	}

	doc, err := h.fileService.Upload(r.Context(), jobID, docType, header.Filename,
		header.Header.Get("Content-Type"), file, r.FormValue("description"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Job not found")
			return
		}
		if errors.Is(err, service.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to upload document", zap.Error(err), zap.String("job_id", jobID.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to upload document")
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// @Summary List documents
// @Description List the documents uploaded for a job, newest first
// @Tags Documents
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {array} domain.DocumentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/documents [get]
func (h *DocumentHandler) ListByJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
		return
	}

	docs, err := h.fileService.ListByJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.Error("failed to list documents", zap.Error(err), zap.String("job_id", jobID.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// @Summary Download document
// @Description Stream a document's content
// @Tags Documents
// @Produce application/octet-stream
// @Param docId path string true "Document ID"
// @Success 200
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{docId}/download [get]
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "docId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID: must be a valid UUID")
		return
	}

	reader, filename, contentType, err := h.fileService.Download(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.logger.Error("failed to download document", zap.Error(err), zap.String("document_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to download document")
		return
	}
	defer reader.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.Header().Set("Content-Type", contentType)

	_, _ = io.Copy(w, reader)
}

// @Summary Delete document
// @Description Remove a document and its stored blob
// @Tags Documents
// @Param docId path string true "Document ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{docId} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "docId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID: must be a valid UUID")
		return
	}

	if err := h.fileService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.logger.Error("failed to delete document", zap.Error(err), zap.String("document_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
