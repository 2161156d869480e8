package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FollowUpJobName is the name of the follow-up reminder job
const FollowUpJobName = "follow_up_reminders"

// FollowUpService defines the interface for generating follow-up reminder notifications.
type FollowUpService interface {
	// CreateFollowUpReminders creates notifications for jobs whose follow-up date
	// has passed without a customer response. Returns the number created.
	CreateFollowUpReminders(ctx context.Context, now time.Time) (int, error)
}

// FollowUpJob scans for offers past their follow-up date and raises reminders.
type FollowUpJob struct {
	notificationService FollowUpService
	logger              *zap.Logger
	timeout             time.Duration
}

// NewFollowUpJob creates a new follow-up reminder job.
func NewFollowUpJob(notificationService FollowUpService, logger *zap.Logger, timeout time.Duration) *FollowUpJob {
	return &FollowUpJob{
		notificationService: notificationService,
		logger:              logger,
		timeout:             timeout,
	}
}

// Run executes the follow-up reminder scan.
// This is called by the scheduler according to the cron expression.
func (j *FollowUpJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	created, err := j.notificationService.CreateFollowUpReminders(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Error("follow-up reminder job failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if created > 0 {
		j.logger.Info("follow-up reminder job completed",
			zap.Int("reminders_created", created),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterFollowUpJob registers the follow-up reminder job with the scheduler.
// The cronExpr should be a valid cron expression with seconds (e.g., "0 0 7 * * *" for daily at 07:00).
func RegisterFollowUpJob(scheduler *Scheduler, notificationService FollowUpService, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewFollowUpJob(notificationService, logger, timeout)
	return scheduler.AddJob(FollowUpJobName, cronExpr, job.Run)
}
