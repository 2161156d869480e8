package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rejectWithFollowUp(t *testing.T, f *fixture, followUp time.Time) *domain.JobDetailDTO {
	t.Helper()
	ctx := context.Background()

	job := createJob(t, f, domain.StartMeasureAppointment)
	_, err := f.jobs.Price(ctx, job.ID, &domain.PriceOfferRequest{Total: 45000})
	require.NoError(t, err)
	dto, err := f.jobs.Reject(ctx, job.ID, &domain.RejectJobRequest{
		Category:     domain.RejectionStillDeciding,
		Reason:       "customer wants to think it over",
		FollowUpDate: &followUp,
	})
	require.NoError(t, err)
	return dto
}

func TestNotificationService_CreateFollowUpReminders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	due := rejectWithFollowUp(t, f, now.AddDate(0, 0, -1))
	rejectWithFollowUp(t, f, now.AddDate(0, 0, 10)) // not due yet

	created, err := f.notifications.CreateFollowUpReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	resp, err := f.notifications.List(ctx, 1, 20, true)
	require.NoError(t, err)
	items, ok := resp.Items.([]domain.NotificationDTO)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, domain.NotificationFollowUpDue, items[0].Type)
	require.NotNil(t, items[0].JobID)
	assert.Equal(t, due.ID, *items[0].JobID)

	// A second run must not duplicate the reminder.
	created, err = f.notifications.CreateFollowUpReminders(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rejectWithFollowUp(t, f, time.Now().AddDate(0, 0, -2))
	_, err := f.notifications.CreateFollowUpReminders(ctx, time.Now())
	require.NoError(t, err)

	count, err := f.notifications.CountUnread(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	resp, err := f.notifications.List(ctx, 1, 20, true)
	require.NoError(t, err)
	items := resp.Items.([]domain.NotificationDTO)
	require.Len(t, items, 1)

	require.NoError(t, f.notifications.MarkAsRead(ctx, items[0].ID))

	count, err = f.notifications.CountUnread(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	err = f.notifications.MarkAsRead(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
