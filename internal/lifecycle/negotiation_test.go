package lifecycle_test

import (
	"testing"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	baseOffer := func() *domain.Offer {
		return &domain.Offer{
			Total:      10000,
			RolePrices: map[string]float64{"alu": 6000, "pvc": 4000},
		}
	}

	t.Run("discount round updates prices and appends a record", func(t *testing.T) {
		offer := baseOffer()
		result, err := lifecycle.Negotiate(offer, map[string]float64{"alu": 500, "pvc": 250}, now)
		require.NoError(t, err)

		assert.InDelta(t, 9250, result.Offer.Total, 0.001)
		assert.InDelta(t, 5500, result.Offer.RolePrices["alu"], 0.001)
		assert.InDelta(t, 3750, result.Offer.RolePrices["pvc"], 0.001)
		require.NotNil(t, result.Offer.AgreedDate)
		assert.Equal(t, now, *result.Offer.AgreedDate)

		require.Len(t, result.Offer.NegotiationHistory, 1)
		rec := result.Offer.NegotiationHistory[0]
		assert.Equal(t, now, rec.Date)
		assert.InDelta(t, 10000, rec.OriginalTotal, 0.001)
		assert.InDelta(t, 750, rec.DiscountTotal, 0.001)
		assert.InDelta(t, 9250, rec.FinalTotal, 0.001)
		assert.Empty(t, result.Warnings)
	})

	t.Run("input offer is untouched", func(t *testing.T) {
		offer := baseOffer()
		_, err := lifecycle.Negotiate(offer, map[string]float64{"alu": 500}, now)
		require.NoError(t, err)
		assert.InDelta(t, 10000, offer.Total, 0.001)
		assert.InDelta(t, 6000, offer.RolePrices["alu"], 0.001)
		assert.Empty(t, offer.NegotiationHistory)
	})

	t.Run("history is append only across rounds", func(t *testing.T) {
		offer := baseOffer()
		first, err := lifecycle.Negotiate(offer, map[string]float64{"alu": 500}, now)
		require.NoError(t, err)
		firstRecord := first.Offer.NegotiationHistory[0]

		second, err := lifecycle.Negotiate(first.Offer, map[string]float64{"pvc": 250}, now.Add(time.Hour))
		require.NoError(t, err)

		require.Len(t, second.Offer.NegotiationHistory, 2)
		assert.Equal(t, firstRecord, second.Offer.NegotiationHistory[0])
		assert.InDelta(t, 9500, second.Offer.NegotiationHistory[1].OriginalTotal, 0.001)
		assert.InDelta(t, 9250, second.Offer.Total, 0.001)
	})

	t.Run("negative resulting price warns instead of clamping", func(t *testing.T) {
		offer := baseOffer()
		result, err := lifecycle.Negotiate(offer, map[string]float64{"pvc": 4500}, now)
		require.NoError(t, err)
		assert.InDelta(t, -500, result.Offer.RolePrices["pvc"], 0.001)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "pvc")
	})

	t.Run("unknown role is refused", func(t *testing.T) {
		_, err := lifecycle.Negotiate(baseOffer(), map[string]float64{"glass": 100}, now)
		assert.Error(t, err)
	})

	t.Run("nil offer is refused", func(t *testing.T) {
		_, err := lifecycle.Negotiate(nil, map[string]float64{"alu": 100}, now)
		assert.Error(t, err)
	})

	t.Run("empty discount map is refused", func(t *testing.T) {
		_, err := lifecycle.Negotiate(baseOffer(), nil, now)
		assert.Error(t, err)
	})
}
