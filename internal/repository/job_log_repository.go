package repository

import (
	"context"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobLogRepository struct {
	db *gorm.DB
}

func NewJobLogRepository(db *gorm.DB) *JobLogRepository {
	return &JobLogRepository{db: db}
}

func (r *JobLogRepository) Append(ctx context.Context, entry *domain.JobLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *JobLogRepository) ListByJob(ctx context.Context, jobID uuid.UUID, page, pageSize int) ([]domain.JobLog, int64, error) {
	var entries []domain.JobLog
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.JobLog{}).Where("job_id = ?", jobID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&entries).Error

	return entries, total, err
}
