package lifecycle_test

import (
	"testing"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReject(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	offeredJob := func() *domain.Job {
		return &domain.Job{
			StartType: domain.StartMeasureAppointment,
			Status:    domain.StatusOfferSent,
			Offer:     &domain.Offer{Total: 10000, RolePrices: map[string]float64{"alu": 10000}},
		}
	}

	t.Run("preserves the last offer", func(t *testing.T) {
		job := offeredJob()
		followUp := now.AddDate(0, 1, 0)
		next, err := lifecycle.Reject(job, domain.RejectionPriceTooHigh, "went with a cheaper quote", &followUp, now)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusRejected, next.Status)
		require.NotNil(t, next.Rejection)
		assert.Equal(t, domain.RejectionPriceTooHigh, next.Rejection.Category)
		assert.Equal(t, now, next.Rejection.Date)
		require.NotNil(t, next.Rejection.LastOffer)
		assert.InDelta(t, 10000, next.Rejection.LastOffer.Total, 0.001)
		require.NotNil(t, next.Rejection.FollowUpDate)
	})

	t.Run("category and reason are mandatory, reported together", func(t *testing.T) {
		_, err := lifecycle.Reject(offeredJob(), domain.RejectionCategory(""), "", nil, now)
		var ve *lifecycle.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Len(t, ve.Reasons, 2)
	})

	t.Run("already rejected jobs are refused", func(t *testing.T) {
		job := offeredJob()
		next, err := lifecycle.Reject(job, domain.RejectionOther, "no reply", nil, now)
		require.NoError(t, err)
		_, err = lifecycle.Reject(next, domain.RejectionOther, "still no reply", nil, now)
		assert.Error(t, err)
	})
}

func TestReactivate(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	later := now.AddDate(0, 2, 0)

	rejectedJob := func(t *testing.T) *domain.Job {
		job := &domain.Job{
			StartType: domain.StartMeasureAppointment,
			Status:    domain.StatusOfferSent,
			Offer:     &domain.Offer{Total: 10000, RolePrices: map[string]float64{"alu": 10000}},
		}
		next, err := lifecycle.Reject(job, domain.RejectionStillDeciding, "thinking it over", nil, now)
		require.NoError(t, err)
		return next
	}

	t.Run("restores the last offer and clears the rejection", func(t *testing.T) {
		next, err := lifecycle.Reactivate(rejectedJob(t), later)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusOfferSent, next.Status)
		assert.Nil(t, next.Rejection)
		require.NotNil(t, next.Offer)
		assert.InDelta(t, 10000, next.Offer.Total, 0.001)
		require.NotNil(t, next.Offer.ReactivatedAt)
		assert.Equal(t, later, *next.Offer.ReactivatedAt)
		require.NotNil(t, next.Offer.ReactivatedFrom)
		assert.Equal(t, domain.RejectionStillDeciding, next.Offer.ReactivatedFrom.Category)
	})

	t.Run("only rejected jobs reactivate", func(t *testing.T) {
		job := &domain.Job{StartType: domain.StartMeasureAppointment, Status: domain.StatusOfferSent}
		_, err := lifecycle.Reactivate(job, later)
		assert.Error(t, err)
	})

	t.Run("reactivation is the sole backward transition", func(t *testing.T) {
		// A second reactivation on the same job has nothing to undo.
		first, err := lifecycle.Reactivate(rejectedJob(t), later)
		require.NoError(t, err)
		_, err = lifecycle.Reactivate(first, later)
		assert.Error(t, err)
	})
}
