package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/mapper"
	"github.com/fenstra-as/jobflow-api/internal/repository"
	"github.com/fenstra-as/jobflow-api/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileService handles drawing and attachment uploads for jobs. The blob
// goes to storage first; the metadata row is created after, with a
// best-effort blob cleanup if the row insert fails.
type FileService struct {
	docRepo *repository.DocumentRepository
	jobRepo *repository.JobRepository
	logSvc  *JobLogService
	storage storage.Storage
	logger  *zap.Logger
}

func NewFileService(
	docRepo *repository.DocumentRepository,
	jobRepo *repository.JobRepository,
	logSvc *JobLogService,
	storage storage.Storage,
	logger *zap.Logger,
) *FileService {
	return &FileService{
		docRepo: docRepo,
		jobRepo: jobRepo,
		logSvc:  logSvc,
		storage: storage,
		logger:  logger,
	}
}

// Upload stores a document blob and its metadata row for a job. docType
// carries role and purpose, e.g. "measure_alu" or "technical_pvc".
func (s *FileService) Upload(ctx context.Context, jobID uuid.UUID, docType, filename, contentType string, data io.Reader, description string) (*domain.DocumentDTO, error) {
	docType = strings.TrimSpace(docType)
	if docType == "" {
		return nil, fmt.Errorf("%w: document type is required", ErrInvalidInput)
	}
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}

	if _, err := s.jobRepo.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	storagePath, size, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	doc := &domain.Document{
		JobID:       jobID,
		Type:        docType,
		FileName:    filename,
		ContentType: contentType,
		SizeBytes:   size,
		StoragePath: storagePath,
		Description: description,
		UploadedBy:  actorFrom(ctx),
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		// Best-effort cleanup of the orphaned blob.
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to cleanup document blob after DB error",
				zap.Error(delErr),
				zap.String("storagePath", storagePath))
		}
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	s.logSvc.Record(ctx, jobID, ActionDocumentUploaded,
		fmt.Sprintf("Document '%s' uploaded", filename),
		actorFrom(ctx),
		domain.JSONMap{"documentId": doc.ID.String(), "type": docType})

	dto := mapper.ToDocumentDTO(doc)
	return &dto, nil
}

// ListByJob returns the document metadata for a job, newest first.
func (s *FileService) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.DocumentDTO, error) {
	if _, err := s.jobRepo.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	docs, err := s.docRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	dtos := make([]domain.DocumentDTO, 0, len(docs))
	for i := range docs {
		dtos = append(dtos, mapper.ToDocumentDTO(&docs[i]))
	}
	return dtos, nil
}

// Download streams a document's content.
// Returns: reader, filename, content-type, error.
func (s *FileService) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, string, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return nil, "", "", fmt.Errorf("failed to get document: %w", err)
	}

	reader, err := s.storage.Download(ctx, doc.StoragePath)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to download document: %w", err)
	}

	return reader, doc.FileName, doc.ContentType, nil
}

// Delete removes a document's metadata row and its blob. A blob delete
// failure is logged and ignored; the row is the source of truth.
func (s *FileService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Warn("failed to delete document blob",
			zap.Error(err),
			zap.String("storagePath", doc.StoragePath),
			zap.String("documentId", id.String()))
	}

	if err := s.docRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}

	s.logSvc.Record(ctx, doc.JobID, ActionDocumentDeleted,
		fmt.Sprintf("Document '%s' deleted", doc.FileName),
		actorFrom(ctx),
		domain.JSONMap{"documentId": id.String(), "type": doc.Type})

	return nil
}
