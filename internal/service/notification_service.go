package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/mapper"
	"github.com/fenstra-as/jobflow-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationService manages in-app reminders. Delivery channels (email,
// SMS) are out of scope; everything stays in the notifications table.
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	jobRepo          *repository.JobRepository
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	jobRepo *repository.JobRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		jobRepo:          jobRepo,
		logger:           logger,
	}
}

func (s *NotificationService) List(ctx context.Context, page, pageSize int, unreadOnly bool) (*domain.PaginatedResponse, error) {
	notifications, total, err := s.notificationRepo.List(ctx, page, pageSize, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = mapper.ToNotificationDTO(&notifications[i])
	}

	resp := domain.NewPaginatedResponse(dtos, total, page, pageSize)
	return &resp, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	if _, err := s.notificationRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get notification: %w", err)
	}
	return s.notificationRepo.MarkAsRead(ctx, id)
}

func (s *NotificationService) CountUnread(ctx context.Context) (int, error) {
	return s.notificationRepo.CountUnread(ctx)
}

// CreateFollowUpReminders scans rejected jobs whose follow-up date has
// arrived and creates one reminder each. Called by the cron job; returns
// the number of reminders created.
func (s *NotificationService) CreateFollowUpReminders(ctx context.Context, now time.Time) (int, error) {
	jobs, err := s.jobRepo.GetRejectedWithFollowUpDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to load rejected jobs: %w", err)
	}

	created := 0
	for i := range jobs {
		job := &jobs[i]
		exists, err := s.notificationRepo.ExistsForJob(ctx, job.ID, domain.NotificationFollowUpDue)
		if err != nil {
			s.logger.Warn("failed to check existing reminder",
				zap.String("jobId", job.ID.String()), zap.Error(err))
			continue
		}
		if exists {
			continue
		}

		jobID := job.ID
		notification := &domain.Notification{
			Type:    domain.NotificationFollowUpDue,
			JobID:   &jobID,
			Title:   "Rejection follow-up due",
			Message: fmt.Sprintf("Follow up on rejected job %q (%s)", job.Title, job.Rejection.Category),
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			s.logger.Warn("failed to create follow-up reminder",
				zap.String("jobId", job.ID.String()), zap.Error(err))
			continue
		}
		created++
	}

	return created, nil
}
