package lifecycle_test

import (
	"testing"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowClassify(t *testing.T) {
	t.Run("standard statuses map to their stage", func(t *testing.T) {
		cases := map[domain.JobStatus]lifecycle.StageID{
			domain.StatusMeasurePending:      lifecycle.StageMeasure,
			domain.StatusCustomerMeasureUploaded: lifecycle.StageMeasure,
			domain.StatusPricing:             lifecycle.StagePricing,
			domain.StatusOfferReady:          lifecycle.StagePricing,
			domain.StatusApprovalPending:     lifecycle.StageAgreement,
			domain.StatusStockPending:        lifecycle.StageStock,
			domain.StatusOutsourced:          lifecycle.StageProduction,
			domain.StatusAssemblyScheduled:   lifecycle.StageAssembly,
			domain.StatusClosed:              lifecycle.StageFinance,
		}
		for status, want := range cases {
			stage, err := lifecycle.StandardFlow.Classify(status)
			require.NoError(t, err, string(status))
			assert.Equal(t, want, stage.ID, string(status))
		}
	})

	t.Run("service statuses map to their stage", func(t *testing.T) {
		stage, err := lifecycle.ServiceFlow.Classify(domain.StatusServiceOngoing)
		require.NoError(t, err)
		assert.Equal(t, lifecycle.StageServiceWork, stage.ID)
	})

	t.Run("unmapped status is a hard error", func(t *testing.T) {
		_, err := lifecycle.StandardFlow.Classify(domain.JobStatus("NO_SUCH_STATUS"))
		require.Error(t, err)
		var unmapped *lifecycle.UnmappedStatusError
		assert.ErrorAs(t, err, &unmapped)
	})

	t.Run("service statuses are not in the standard flow", func(t *testing.T) {
		_, err := lifecycle.StandardFlow.Classify(domain.StatusServiceScheduled)
		assert.Error(t, err)
	})

	t.Run("rejected terminal belongs to no stage", func(t *testing.T) {
		_, err := lifecycle.StandardFlow.Classify(domain.StatusRejected)
		assert.Error(t, err)
	})
}

func TestFlowFor(t *testing.T) {
	assert.Equal(t, lifecycle.ServiceFlow, lifecycle.FlowFor(domain.StartService))
	assert.Equal(t, lifecycle.StandardFlow, lifecycle.FlowFor(domain.StartMeasureAppointment))
	assert.Equal(t, lifecycle.StandardFlow, lifecycle.FlowFor(domain.StartCustomerSuppliedMeasure))
}

func TestStageView(t *testing.T) {
	t.Run("done current pending ordering", func(t *testing.T) {
		job := &domain.Job{
			StartType: domain.StartMeasureAppointment,
			Status:    domain.StatusStockPending,
		}
		view, err := lifecycle.StageView(job)
		require.NoError(t, err)
		require.Len(t, view, 7)

		assert.Equal(t, lifecycle.StageDone, view[0].State)    // measure
		assert.Equal(t, lifecycle.StageDone, view[1].State)    // pricing
		assert.Equal(t, lifecycle.StageDone, view[2].State)    // agreement
		assert.Equal(t, lifecycle.StageCurrent, view[3].State) // stock
		assert.Equal(t, lifecycle.StagePending, view[4].State) // production
		assert.Equal(t, lifecycle.StagePending, view[5].State) // assembly
		assert.Equal(t, lifecycle.StagePending, view[6].State) // finance
	})

	t.Run("first stage on a fresh job", func(t *testing.T) {
		job := &domain.Job{
			StartType: domain.StartService,
			Status:    domain.StatusServiceAppointmentPending,
		}
		view, err := lifecycle.StageView(job)
		require.NoError(t, err)
		require.Len(t, view, 5)
		assert.Equal(t, lifecycle.StageCurrent, view[0].State)
		for _, entry := range view[1:] {
			assert.Equal(t, lifecycle.StagePending, entry.State)
		}
	})

	t.Run("rejected job yields an error, not a default stage", func(t *testing.T) {
		job := &domain.Job{
			StartType: domain.StartMeasureAppointment,
			Status:    domain.StatusRejected,
		}
		_, err := lifecycle.StageView(job)
		assert.Error(t, err)
	})
}

func TestStageIndex(t *testing.T) {
	assert.Equal(t, 0, lifecycle.StandardFlow.StageIndex(lifecycle.StageMeasure))
	assert.Equal(t, 6, lifecycle.StandardFlow.StageIndex(lifecycle.StageFinance))
	assert.Equal(t, -1, lifecycle.StandardFlow.StageIndex(lifecycle.StageServiceWork))
}
