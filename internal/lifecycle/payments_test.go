package lifecycle_test

import (
	"testing"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanArithmetic(t *testing.T) {
	plan := &domain.PaymentPlan{
		Cash: 4000,
		Card: 2000,
		ChequeLines: []domain.ChequeLine{
			{Amount: 1000},
			{Amount: 2000},
		},
		AfterDelivery: 1000,
	}

	assert.InDelta(t, 3000, lifecycle.ChequeTotal(plan), 0.001)
	assert.InDelta(t, 10000, lifecycle.PlanTotal(plan), 0.001)
	assert.Zero(t, lifecycle.PlanTotal(nil))
	assert.Zero(t, lifecycle.ChequeTotal(nil))
}

func TestAverageChequeDays(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("amount weighted mean", func(t *testing.T) {
		lines := []domain.ChequeLine{
			{Amount: 1000, DueDate: now.AddDate(0, 0, 30)},
			{Amount: 3000, DueDate: now.AddDate(0, 0, 90)},
		}
		// (1000*30 + 3000*90) / 4000 = 75
		assert.Equal(t, 75, lifecycle.AverageChequeDays(lines, now))
	})

	t.Run("overdue cheques contribute zero days", func(t *testing.T) {
		lines := []domain.ChequeLine{
			{Amount: 1000, DueDate: now.AddDate(0, 0, -20)},
			{Amount: 1000, DueDate: now.AddDate(0, 0, 40)},
		}
		assert.Equal(t, 20, lifecycle.AverageChequeDays(lines, now))
	})

	t.Run("no cheques", func(t *testing.T) {
		assert.Zero(t, lifecycle.AverageChequeDays(nil, now))
	})

	t.Run("zero amounts", func(t *testing.T) {
		lines := []domain.ChequeLine{{Amount: 0, DueDate: now.AddDate(0, 0, 10)}}
		assert.Zero(t, lifecycle.AverageChequeDays(lines, now))
	})
}

func TestReconcileAgreement(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	offer := &domain.Offer{Total: 10000}

	t.Run("accepted with matching totals", func(t *testing.T) {
		plan := &domain.PaymentPlan{
			Cash:          4000,
			Card:          2000,
			ChequeLines:   []domain.ChequeLine{{Amount: 3000, DueDate: now.AddDate(0, 0, 60)}},
			AfterDelivery: 1000,
		}
		closure, err := lifecycle.ReconcileAgreement(offer, plan, 3000, now)
		require.NoError(t, err)
		assert.InDelta(t, 10000, closure.PlanTotal, 0.001)
		assert.InDelta(t, 3000, closure.ChequeTotal, 0.001)
		assert.Equal(t, 60, closure.AverageChequeDay)
		assert.Empty(t, closure.Warnings)
	})

	t.Run("long cheque maturity carries a warning", func(t *testing.T) {
		plan := &domain.PaymentPlan{
			ChequeLines: []domain.ChequeLine{{Amount: 10000, DueDate: now.AddDate(0, 0, 120)}},
		}
		closure, err := lifecycle.ReconcileAgreement(offer, plan, 10000, now)
		require.NoError(t, err)
		require.Len(t, closure.Warnings, 1)
		assert.Contains(t, closure.Warnings[0], "120")
	})

	t.Run("plan mismatch carries the delta", func(t *testing.T) {
		plan := &domain.PaymentPlan{Cash: 9500}
		_, err := lifecycle.ReconcileAgreement(offer, plan, 0, now)
		var ve *lifecycle.ValidationError
		require.ErrorAs(t, err, &ve)
		require.NotNil(t, ve.Discrepancy)
		assert.InDelta(t, -500, *ve.Discrepancy, 0.001)
	})

	t.Run("declared cheque total must match the lines", func(t *testing.T) {
		plan := &domain.PaymentPlan{
			Cash:        7000,
			ChequeLines: []domain.ChequeLine{{Amount: 3000, DueDate: now}},
		}
		_, err := lifecycle.ReconcileAgreement(offer, plan, 2500, now)
		var ve *lifecycle.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Len(t, ve.Reasons, 1)
	})

	t.Run("both violations reported together", func(t *testing.T) {
		plan := &domain.PaymentPlan{
			Cash:        5000,
			ChequeLines: []domain.ChequeLine{{Amount: 3000, DueDate: now}},
		}
		_, err := lifecycle.ReconcileAgreement(offer, plan, 2500, now)
		var ve *lifecycle.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Len(t, ve.Reasons, 2)
	})
}

func TestReconcileFinance(t *testing.T) {
	offer := &domain.Offer{Total: 10000}
	plan := &domain.PaymentPlan{
		Cash:          4000,
		Card:          2000,
		ChequeLines:   []domain.ChequeLine{{Amount: 3000}},
		AfterDelivery: 1000,
	}

	t.Run("after-delivery settles at closure", func(t *testing.T) {
		// preReceived = 9000 (after-delivery excluded); 1000 remains.
		payments := domain.FinancePayments{Cash: 1000}
		assert.NoError(t, lifecycle.ReconcileFinance(offer, plan, payments, nil))
	})

	t.Run("outstanding balance refuses closure", func(t *testing.T) {
		payments := domain.FinancePayments{Cash: 500}
		err := lifecycle.ReconcileFinance(offer, plan, payments, nil)
		var ve *lifecycle.ValidationError
		require.ErrorAs(t, err, &ve)
		require.NotNil(t, ve.Discrepancy)
		assert.InDelta(t, 500, *ve.Discrepancy, 0.001)
	})

	t.Run("discount closes the gap but needs a note", func(t *testing.T) {
		payments := domain.FinancePayments{Cash: 500}
		err := lifecycle.ReconcileFinance(offer, plan, payments, &domain.Discount{Amount: 500})
		assert.Error(t, err)

		err = lifecycle.ReconcileFinance(offer, plan, payments, &domain.Discount{Amount: 500, Note: "goodwill"})
		assert.NoError(t, err)
	})
}

func TestReconcileService(t *testing.T) {
	svc := &domain.ServiceInfo{FixedFee: 500, TotalCost: 650, TotalExtraCost: 150}

	t.Run("nonzero balance refuses closure", func(t *testing.T) {
		err := lifecycle.ReconcileService(svc, domain.ServicePayments{Cash: 600}, nil)
		var ve *lifecycle.ValidationError
		require.ErrorAs(t, err, &ve)
		require.NotNil(t, ve.Discrepancy)
		assert.InDelta(t, 50, *ve.Discrepancy, 0.001)
	})

	t.Run("discount with note balances to zero", func(t *testing.T) {
		err := lifecycle.ReconcileService(svc,
			domain.ServicePayments{Cash: 600},
			&domain.Discount{Amount: 50, Note: "loyal customer"})
		assert.NoError(t, err)
	})

	t.Run("discount without note is refused", func(t *testing.T) {
		err := lifecycle.ReconcileService(svc,
			domain.ServicePayments{Cash: 600},
			&domain.Discount{Amount: 50})
		assert.Error(t, err)
	})

	t.Run("exact payment closes", func(t *testing.T) {
		err := lifecycle.ReconcileService(svc, domain.ServicePayments{Cash: 400, Card: 200, Transfer: 50}, nil)
		assert.NoError(t, err)
	})
}
