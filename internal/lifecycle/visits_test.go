package lifecycle_test

import (
	"testing"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceJob() *domain.Job {
	return &domain.Job{
		StartType: domain.StartService,
		Status:    domain.StatusServiceAppointmentPending,
	}
}

func TestScheduleService(t *testing.T) {
	t.Run("opens the ledger with the first visit", func(t *testing.T) {
		job := serviceJob()
		next, err := lifecycle.ScheduleService(job, 500, "leaky frame", "2026-03-10", "09:30")
		require.NoError(t, err)

		assert.Equal(t, domain.StatusServiceScheduled, next.Status)
		require.NotNil(t, next.Service)
		assert.InDelta(t, 500, next.Service.FixedFee, 0.001)
		require.Len(t, next.Service.Visits, 1)
		assert.Equal(t, 1, next.Service.Visits[0].ID)
		assert.Equal(t, domain.VisitScheduled, next.Service.Visits[0].Status)
		// input untouched
		assert.Equal(t, domain.StatusServiceAppointmentPending, job.Status)
		assert.Nil(t, job.Service)
	})

	t.Run("standard jobs are refused", func(t *testing.T) {
		job := &domain.Job{StartType: domain.StartMeasureAppointment, Status: domain.StatusMeasurePending}
		_, err := lifecycle.ScheduleService(job, 500, "", "2026-03-10", "")
		assert.Error(t, err)
	})

	t.Run("appointment date is required", func(t *testing.T) {
		_, err := lifecycle.ScheduleService(serviceJob(), 500, "", "", "")
		assert.Error(t, err)
	})
}

func TestVisitProgression(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	scheduled := func(t *testing.T) *domain.Job {
		job, err := lifecycle.ScheduleService(serviceJob(), 500, "", "2026-03-10", "09:30")
		require.NoError(t, err)
		return job
	}

	t.Run("start flips the visit to in progress", func(t *testing.T) {
		job := scheduled(t)
		next, err := lifecycle.StartVisit(job, now)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusServiceInProgress, next.Status)
		v := next.Service.Visits[0]
		assert.Equal(t, domain.VisitInProgress, v.Status)
		require.NotNil(t, v.VisitedAt)
		assert.Equal(t, now, *v.VisitedAt)
	})

	t.Run("start without a scheduled visit fails", func(t *testing.T) {
		job := scheduled(t)
		next, err := lifecycle.StartVisit(job, now)
		require.NoError(t, err)
		_, err = lifecycle.StartVisit(next, now)
		assert.Error(t, err)
	})

	t.Run("completion requires a work note", func(t *testing.T) {
		job := scheduled(t)
		job, err := lifecycle.StartVisit(job, now)
		require.NoError(t, err)

		_, err = lifecycle.CompleteVisit(job, lifecycle.VisitCompletion{}, now)
		assert.Error(t, err)

		done, err := lifecycle.CompleteVisit(job, lifecycle.VisitCompletion{
			WorkNote:  "replaced hinge",
			Materials: "hinge set",
			ExtraCost: 150,
		}, now)
		require.NoError(t, err)
		v := done.Service.Visits[0]
		assert.Equal(t, domain.VisitCompleted, v.Status)
		assert.Equal(t, "replaced hinge", v.WorkNote)
		assert.InDelta(t, 150, v.ExtraCost, 0.001)
		require.NotNil(t, v.CompletedAt)
	})

	t.Run("completed work waits in service ongoing", func(t *testing.T) {
		job := scheduled(t)
		job, err := lifecycle.StartVisit(job, now)
		require.NoError(t, err)
		job, err = lifecycle.CompleteVisit(job, lifecycle.VisitCompletion{WorkNote: "replaced hinge"}, now)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusServiceOngoing, job.Status)

		// both exits remain open from here
		finalized, err := lifecycle.FinalizeService(job)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusServicePaymentPending, finalized.Status)

		continued, err := lifecycle.ContinueService(job, "2026-03-15", "", "", false, now)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusServiceScheduled, continued.Status)
	})
}

func TestFinalizeService(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	completedJob := func(t *testing.T, extraCosts ...float64) *domain.Job {
		job, err := lifecycle.ScheduleService(serviceJob(), 500, "", "2026-03-10", "")
		require.NoError(t, err)
		for i, cost := range extraCosts {
			job, err = lifecycle.StartVisit(job, now)
			require.NoError(t, err)
			job, err = lifecycle.CompleteVisit(job, lifecycle.VisitCompletion{WorkNote: "work", ExtraCost: cost}, now)
			require.NoError(t, err)
			if i < len(extraCosts)-1 {
				job, err = lifecycle.ContinueService(job, "2026-03-12", "10:00", "", false, now)
				require.NoError(t, err)
			}
		}
		return job
	}

	t.Run("totals recomputed from all visits", func(t *testing.T) {
		job := completedJob(t, 150)
		next, err := lifecycle.FinalizeService(job)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusServicePaymentPending, next.Status)
		assert.InDelta(t, 150, next.Service.TotalExtraCost, 0.001)
		assert.InDelta(t, 650, next.Service.TotalCost, 0.001)
	})

	t.Run("in-progress visit blocks finalize", func(t *testing.T) {
		job, err := lifecycle.ScheduleService(serviceJob(), 500, "", "2026-03-10", "")
		require.NoError(t, err)
		job, err = lifecycle.StartVisit(job, now)
		require.NoError(t, err)
		_, err = lifecycle.FinalizeService(job)
		assert.Error(t, err)
	})

	t.Run("multi visit totals", func(t *testing.T) {
		job := completedJob(t, 150, 100)
		next, err := lifecycle.FinalizeService(job)
		require.NoError(t, err)
		assert.InDelta(t, 250, next.Service.TotalExtraCost, 0.001)
		assert.InDelta(t, 750, next.Service.TotalCost, 0.001)
	})
}

func TestContinueService_VisitIDs(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	t.Run("ids are strictly increasing and never reused", func(t *testing.T) {
		job, err := lifecycle.ScheduleService(serviceJob(), 500, "", "2026-03-10", "")
		require.NoError(t, err)

		var seen []int
		for cycle := 0; cycle < 4; cycle++ {
			job, err = lifecycle.StartVisit(job, now)
			require.NoError(t, err)
			job, err = lifecycle.CompleteVisit(job, lifecycle.VisitCompletion{WorkNote: "work"}, now)
			require.NoError(t, err)
			job, err = lifecycle.ContinueService(job, "2026-03-15", "", "follow-up", false, now)
			require.NoError(t, err)
		}
		for _, v := range job.Service.Visits {
			seen = append(seen, v.ID)
		}
		require.Len(t, seen, 5)
		for i := 1; i < len(seen); i++ {
			assert.Greater(t, seen[i], seen[i-1])
		}
	})

	t.Run("start now opens the visit immediately", func(t *testing.T) {
		job, err := lifecycle.ScheduleService(serviceJob(), 500, "", "2026-03-10", "")
		require.NoError(t, err)
		job, err = lifecycle.StartVisit(job, now)
		require.NoError(t, err)
		job, err = lifecycle.CompleteVisit(job, lifecycle.VisitCompletion{WorkNote: "work"}, now)
		require.NoError(t, err)

		next, err := lifecycle.ContinueService(job, "", "", "", true, now)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusServiceInProgress, next.Status)
		last := next.Service.Visits[len(next.Service.Visits)-1]
		assert.Equal(t, domain.VisitInProgress, last.Status)
		require.NotNil(t, last.VisitedAt)
	})

	t.Run("deferred continue goes back to scheduled", func(t *testing.T) {
		job, err := lifecycle.ScheduleService(serviceJob(), 500, "", "2026-03-10", "")
		require.NoError(t, err)
		job, err = lifecycle.StartVisit(job, now)
		require.NoError(t, err)
		job, err = lifecycle.CompleteVisit(job, lifecycle.VisitCompletion{WorkNote: "work"}, now)
		require.NoError(t, err)

		next, err := lifecycle.ContinueService(job, "2026-03-20", "14:00", "", false, now)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusServiceScheduled, next.Status)
	})
}

func TestCloseService(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	paymentPending := func(t *testing.T) *domain.Job {
		job, err := lifecycle.ScheduleService(serviceJob(), 500, "", "2026-03-10", "")
		require.NoError(t, err)
		job, err = lifecycle.StartVisit(job, now)
		require.NoError(t, err)
		job, err = lifecycle.CompleteVisit(job, lifecycle.VisitCompletion{WorkNote: "work", ExtraCost: 150}, now)
		require.NoError(t, err)
		job, err = lifecycle.FinalizeService(job)
		require.NoError(t, err)
		return job
	}

	t.Run("nonzero balance is refused", func(t *testing.T) {
		_, err := lifecycle.CloseService(paymentPending(t), domain.ServicePayments{Cash: 600}, nil, now)
		assert.Error(t, err)
	})

	t.Run("balanced payment closes the job", func(t *testing.T) {
		next, err := lifecycle.CloseService(paymentPending(t),
			domain.ServicePayments{Cash: 600},
			&domain.Discount{Amount: 50, Note: "loyal customer"},
			now)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusServiceClosed, next.Status)
		assert.Equal(t, domain.PaymentPaid, next.Service.PaymentStatus)
		require.NotNil(t, next.Service.CompletedAt)
		assert.True(t, next.IsClosed())
	})

	t.Run("closure only from payment pending", func(t *testing.T) {
		job, err := lifecycle.ScheduleService(serviceJob(), 500, "", "2026-03-10", "")
		require.NoError(t, err)
		_, err = lifecycle.CloseService(job, domain.ServicePayments{Cash: 500}, nil, now)
		assert.Error(t, err)
	})

	t.Run("closed job accepts nothing further", func(t *testing.T) {
		closed, err := lifecycle.CloseService(paymentPending(t),
			domain.ServicePayments{Cash: 650}, nil, now)
		require.NoError(t, err)
		_, err = lifecycle.ContinueService(closed, "2026-04-01", "", "", false, now)
		assert.Error(t, err)
	})
}
