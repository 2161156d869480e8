package lifecycle_test

import (
	"testing"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardJob(status domain.JobStatus) *domain.Job {
	return &domain.Job{
		StartType: domain.StartMeasureAppointment,
		Status:    status,
	}
}

func TestValidateTransition_PricingGate(t *testing.T) {
	t.Run("appointment measure must be confirmed", func(t *testing.T) {
		job := standardJob(domain.StatusMeasureTaken)
		err := lifecycle.ValidateTransition(job, domain.StatusPricing, nil)
		require.Error(t, err)
		var ve *lifecycle.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Len(t, ve.Reasons, 1)

		job.Measure = &domain.Measure{Confirmed: true}
		assert.NoError(t, lifecycle.ValidateTransition(job, domain.StatusPricing, nil))
	})

	t.Run("customer supplied measure needs both drawings per role", func(t *testing.T) {
		job := &domain.Job{
			StartType: domain.StartCustomerSuppliedMeasure,
			Status:    domain.StatusCustomerMeasureUploaded,
			Roles: domain.RoleList{
				{ID: "alu", Name: "Aluminium"},
				{ID: "pvc", Name: "PVC"},
			},
		}

		err := lifecycle.ValidateTransition(job, domain.StatusPricing, nil)
		var ve *lifecycle.ValidationError
		require.ErrorAs(t, err, &ve)
		// Two missing drawings per role, all reported at once.
		assert.Len(t, ve.Reasons, 4)

		docs := []lifecycle.DocumentRef{
			{Type: domain.DocumentTypeMeasure("alu")},
			{Type: domain.DocumentTypeTechnical("alu")},
			{Type: domain.DocumentTypeMeasure("pvc")},
		}
		err = lifecycle.ValidateTransition(job, domain.StatusPricing, docs)
		require.ErrorAs(t, err, &ve)
		require.Len(t, ve.Reasons, 1)
		assert.Contains(t, ve.Reasons[0], "PVC")

		docs = append(docs, lifecycle.DocumentRef{Type: domain.DocumentTypeTechnical("pvc")})
		assert.NoError(t, lifecycle.ValidateTransition(job, domain.StatusPricing, docs))
	})
}

func TestValidateTransition_OfferGate(t *testing.T) {
	t.Run("zero total blocks the offer", func(t *testing.T) {
		job := standardJob(domain.StatusPricing)
		err := lifecycle.ValidateTransition(job, domain.StatusOfferSent, nil)
		assert.Error(t, err)
	})

	t.Run("role price sum satisfies the gate", func(t *testing.T) {
		job := standardJob(domain.StatusPricing)
		job.Offer = &domain.Offer{RolePrices: map[string]float64{"alu": 6000, "pvc": 4000}}
		assert.NoError(t, lifecycle.ValidateTransition(job, domain.StatusOfferSent, nil))
	})

	t.Run("explicit total is the fallback without role prices", func(t *testing.T) {
		job := standardJob(domain.StatusPricing)
		job.Offer = &domain.Offer{Total: 12500}
		assert.NoError(t, lifecycle.ValidateTransition(job, domain.StatusOfferReady, nil))
	})
}

func TestValidateTransition_ApprovalGate(t *testing.T) {
	t.Run("matching plan within tolerance is accepted", func(t *testing.T) {
		job := standardJob(domain.StatusAgreementInProgress)
		job.Offer = &domain.Offer{Total: 10000}
		job.PaymentPlan = &domain.PaymentPlan{
			Cash:          4000,
			Card:          2000,
			ChequeLines:   []domain.ChequeLine{{Amount: 3000}},
			AfterDelivery: 1000,
		}
		assert.NoError(t, lifecycle.ValidateTransition(job, domain.StatusApprovalPending, nil))
	})

	t.Run("mismatch reports the signed difference", func(t *testing.T) {
		job := standardJob(domain.StatusAgreementInProgress)
		job.Offer = &domain.Offer{Total: 10000}
		job.PaymentPlan = &domain.PaymentPlan{Cash: 9000}

		err := lifecycle.ValidateTransition(job, domain.StatusApprovalPending, nil)
		var ve *lifecycle.ValidationError
		require.ErrorAs(t, err, &ve)
		require.NotNil(t, ve.Discrepancy)
		assert.InDelta(t, -1000, *ve.Discrepancy, 0.001)
	})

	t.Run("tolerance boundary", func(t *testing.T) {
		job := standardJob(domain.StatusAgreementInProgress)
		job.Offer = &domain.Offer{Total: 10000}
		job.PaymentPlan = &domain.PaymentPlan{Cash: 10000.01}
		assert.NoError(t, lifecycle.ValidateTransition(job, domain.StatusApprovalPending, nil))

		job.PaymentPlan = &domain.PaymentPlan{Cash: 10000.02}
		assert.Error(t, lifecycle.ValidateTransition(job, domain.StatusApprovalPending, nil))
	})
}

func TestValidateTransition_General(t *testing.T) {
	t.Run("closed jobs accept nothing", func(t *testing.T) {
		job := standardJob(domain.StatusClosed)
		assert.Error(t, lifecycle.ValidateTransition(job, domain.StatusFinancePending, nil))
	})

	t.Run("target outside the flow is a configuration error", func(t *testing.T) {
		job := standardJob(domain.StatusPricing)
		err := lifecycle.ValidateTransition(job, domain.StatusServiceScheduled, nil)
		var unmapped *lifecycle.UnmappedStatusError
		assert.ErrorAs(t, err, &unmapped)
	})

	t.Run("free transitions need no preconditions", func(t *testing.T) {
		job := standardJob(domain.StatusReadyForProduction)
		assert.NoError(t, lifecycle.ValidateTransition(job, domain.StatusInProduction, nil))
		assert.True(t, lifecycle.SkipAdvance(domain.StatusInProduction))
		assert.True(t, lifecycle.SkipAdvance(domain.StatusOutsourced))
		assert.False(t, lifecycle.SkipAdvance(domain.StatusReadyForAssembly))
	})
}

func TestValidateTransition_TerminalGuards(t *testing.T) {
	t.Run("outstanding balance cannot be closed away", func(t *testing.T) {
		job := standardJob(domain.StatusFinancePending)
		job.Offer = &domain.Offer{Total: 10000}

		_, err := lifecycle.FreeTransition(job, domain.StatusClosed, nil)
		var ve *lifecycle.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Reasons[0], "financial closure")
	})

	t.Run("service settlement cannot be skipped", func(t *testing.T) {
		job := &domain.Job{
			StartType: domain.StartService,
			Status:    domain.StatusServicePaymentPending,
			Service:   &domain.ServiceInfo{TotalCost: 650},
		}

		_, err := lifecycle.FreeTransition(job, domain.StatusServiceClosed, nil)
		var ve *lifecycle.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Reasons[0], "service closure")
	})

	t.Run("rejection needs its record", func(t *testing.T) {
		job := standardJob(domain.StatusOfferSent)

		_, err := lifecycle.FreeTransition(job, domain.StatusRejected, nil)
		var ve *lifecycle.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Reasons[0], "category and reason")
	})

	t.Run("rejected jobs only reactivate", func(t *testing.T) {
		job := standardJob(domain.StatusRejected)
		assert.Error(t, lifecycle.ValidateTransition(job, domain.StatusOfferSent, nil))
	})
}

func TestValidateTransition_ForwardOnly(t *testing.T) {
	t.Run("earlier stages are out of reach", func(t *testing.T) {
		job := standardJob(domain.StatusFinancePending)
		job.Measure = &domain.Measure{Confirmed: true}
		job.Offer = &domain.Offer{Total: 10000}

		for _, target := range []domain.JobStatus{
			domain.StatusMeasurePending,
			domain.StatusPricing,
			domain.StatusStockPending,
			domain.StatusAssemblyScheduled,
		} {
			_, err := lifecycle.FreeTransition(job, target, nil)
			var ve *lifecycle.ValidationError
			require.ErrorAs(t, err, &ve, "target %s", target)
			assert.Contains(t, ve.Reasons[0], "backward")
		}
	})

	t.Run("movement within a stage stays open", func(t *testing.T) {
		job := standardJob(domain.StatusOfferSent)
		job.Measure = &domain.Measure{Confirmed: true}
		assert.NoError(t, lifecycle.ValidateTransition(job, domain.StatusPricing, nil))
	})

	t.Run("forward jumps still pass their gates", func(t *testing.T) {
		job := standardJob(domain.StatusStockPending)
		next, err := lifecycle.FreeTransition(job, domain.StatusReadyForProduction, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReadyForProduction, next.Status)
	})
}
