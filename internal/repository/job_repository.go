package repository

import (
	"context"
	"strings"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobFilters contains all filter options for listing jobs
type JobFilters struct {
	Status        *domain.JobStatus
	Statuses      []domain.JobStatus
	StartType     *domain.StartType
	CustomerID    *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	IsRejected    *bool
	SearchQuery   *string
}

// JobSortOption represents available sort options
type JobSortOption string

const (
	JobSortByCreatedDesc JobSortOption = "created_desc"
	JobSortByCreatedAsc  JobSortOption = "created_asc"
	JobSortByUpdatedDesc JobSortOption = "updated_desc"
	JobSortByTitleAsc    JobSortOption = "title_asc"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Save persists a full job snapshot. Transitions replace the row wholesale
// so the stored state always matches one engine output.
func (r *JobRepository) Save(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Job{}, "id = ?", id).Error
}

func (r *JobRepository) List(ctx context.Context, page, pageSize int, filters *JobFilters, sortBy JobSortOption) ([]domain.Job, int64, error) {
	var jobs []domain.Job
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Job{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySorting(query, sortBy)

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&jobs).Error

	return jobs, total, err
}

// GetByStatuses returns all jobs currently in one of the given statuses,
// e.g. every job sitting in the stock stage.
func (r *JobRepository) GetByStatuses(ctx context.Context, statuses []domain.JobStatus) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("updated_at DESC").
		Find(&jobs).Error
	return jobs, err
}

// GetByCustomer returns all jobs for a specific customer
func (r *JobRepository) GetByCustomer(ctx context.Context, customerID string) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

// GetRejectedWithFollowUpDue returns rejected jobs whose follow-up date has
// passed, for the reminder job.
func (r *JobRepository) GetRejectedWithFollowUpDue(ctx context.Context, due time.Time) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.StatusRejected).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}

	// followUpDate lives inside the json rejection column, filter in memory
	result := jobs[:0]
	for _, job := range jobs {
		if job.Rejection != nil && job.Rejection.FollowUpDate != nil && !job.Rejection.FollowUpDate.After(due) {
			result = append(result, job)
		}
	}
	return result, nil
}

// CountByStatus returns job counts grouped by status for dashboards
func (r *JobRepository) CountByStatus(ctx context.Context) (map[domain.JobStatus]int64, error) {
	type statusRow struct {
		Status domain.JobStatus
		Count  int64
	}
	var rows []statusRow
	err := r.db.WithContext(ctx).Model(&domain.Job{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.JobStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// WithTransaction executes operations within a transaction
func (r *JobRepository) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// applyFilters applies all filter criteria to the query
func (r *JobRepository) applyFilters(query *gorm.DB, filters *JobFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if len(filters.Statuses) > 0 {
		query = query.Where("status IN ?", filters.Statuses)
	}

	if filters.StartType != nil {
		query = query.Where("start_type = ?", *filters.StartType)
	}

	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}

	if filters.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filters.CreatedAfter)
	}

	if filters.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filters.CreatedBefore)
	}

	if filters.IsRejected != nil && *filters.IsRejected {
		query = query.Where("status = ?", domain.StatusRejected)
	}

	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		searchPattern := "%" + strings.ToLower(*filters.SearchQuery) + "%"
		query = query.Where("LOWER(title) LIKE ?", searchPattern)
	}

	return query
}

// applySorting applies the sorting option to the query
func (r *JobRepository) applySorting(query *gorm.DB, sortBy JobSortOption) *gorm.DB {
	switch sortBy {
	case JobSortByCreatedAsc:
		return query.Order("created_at ASC")
	case JobSortByUpdatedDesc:
		return query.Order("updated_at DESC")
	case JobSortByTitleAsc:
		return query.Order("title ASC")
	default: // JobSortByCreatedDesc
		return query.Order("created_at DESC")
	}
}
