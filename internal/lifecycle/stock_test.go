package lifecycle_test

import (
	"testing"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stockItem(id string, onHand, reserved float64) domain.StockItem {
	item := domain.StockItem{
		SKU:      "SKU-" + id,
		Name:     "Item " + id,
		OnHand:   onHand,
		Reserved: reserved,
	}
	return item
}

func TestReserve_ReadyLines(t *testing.T) {
	t.Run("soft hold increments reserved", func(t *testing.T) {
		items := map[string]domain.StockItem{"a": stockItem("a", 10, 2)}
		result, err := lifecycle.Reserve(items, []lifecycle.ReservationLine{{StockItemID: "a", Quantity: 5}}, false)
		require.NoError(t, err)

		require.Len(t, result.Lines, 1)
		assert.True(t, result.Lines[0].Ready)
		assert.Zero(t, result.Lines[0].Missing)
		assert.True(t, result.AllReady)
		assert.Empty(t, result.PendingLines)
		assert.Empty(t, result.PurchaseOrderLines)

		updated := result.UpdatedItems[0]
		assert.InDelta(t, 10, updated.OnHand, 0.001)
		assert.InDelta(t, 7, updated.Reserved, 0.001)
		assert.InDelta(t, 3, updated.Available(), 0.001)
	})

	t.Run("consume decrements on hand", func(t *testing.T) {
		items := map[string]domain.StockItem{"a": stockItem("a", 10, 2)}
		result, err := lifecycle.Reserve(items, []lifecycle.ReservationLine{{StockItemID: "a", Quantity: 5}}, true)
		require.NoError(t, err)

		updated := result.UpdatedItems[0]
		assert.InDelta(t, 5, updated.OnHand, 0.001)
		assert.InDelta(t, 2, updated.Reserved, 0.001)
		assert.InDelta(t, 3, updated.Available(), 0.001)
	})

	t.Run("input snapshot is untouched", func(t *testing.T) {
		items := map[string]domain.StockItem{"a": stockItem("a", 10, 2)}
		_, err := lifecycle.Reserve(items, []lifecycle.ReservationLine{{StockItemID: "a", Quantity: 5}}, false)
		require.NoError(t, err)
		assert.InDelta(t, 2, items["a"].Reserved, 0.001)
	})
}

func TestReserve_Shortfall(t *testing.T) {
	t.Run("short line holds the available portion", func(t *testing.T) {
		items := map[string]domain.StockItem{"a": stockItem("a", 5, 2)} // available = 3
		result, err := lifecycle.Reserve(items, []lifecycle.ReservationLine{{StockItemID: "a", Quantity: 5}}, false)
		require.NoError(t, err)

		require.Len(t, result.Lines, 1)
		assert.False(t, result.Lines[0].Ready)
		assert.InDelta(t, 2, result.Lines[0].Missing, 0.001)
		assert.False(t, result.AllReady)

		updated := result.UpdatedItems[0]
		assert.InDelta(t, 5, updated.Reserved, 0.001)
		assert.Zero(t, updated.Available())

		require.Len(t, result.PendingLines, 1)
		pending := result.PendingLines[0]
		assert.InDelta(t, 5, pending.RequestedQty, 0.001)
		assert.InDelta(t, 3, pending.AvailableAtRequestTime, 0.001)
		assert.InDelta(t, 2, pending.Missing, 0.001)

		require.Len(t, result.PurchaseOrderLines, 1)
		assert.InDelta(t, 2, result.PurchaseOrderLines[0].Quantity, 0.001)
	})

	t.Run("mixed ready and pending lines", func(t *testing.T) {
		items := map[string]domain.StockItem{
			"a": stockItem("a", 10, 0),
			"b": stockItem("b", 1, 0),
		}
		result, err := lifecycle.Reserve(items, []lifecycle.ReservationLine{
			{StockItemID: "a", Quantity: 4},
			{StockItemID: "b", Quantity: 3},
		}, false)
		require.NoError(t, err)

		assert.False(t, result.AllReady)
		assert.True(t, result.Lines[0].Ready)
		assert.False(t, result.Lines[1].Ready)
		require.Len(t, result.PendingLines, 1)
		assert.Equal(t, "b", result.PendingLines[0].StockItemID)
		assert.InDelta(t, 2, result.PendingLines[0].Missing, 0.001)
	})

	t.Run("available never goes negative", func(t *testing.T) {
		items := map[string]domain.StockItem{"a": stockItem("a", 2, 5)}
		result, err := lifecycle.Reserve(items, []lifecycle.ReservationLine{{StockItemID: "a", Quantity: 1}}, false)
		require.NoError(t, err)
		for _, item := range result.UpdatedItems {
			assert.GreaterOrEqual(t, item.Available(), 0.0)
		}
	})
}

func TestReserve_Validation(t *testing.T) {
	items := map[string]domain.StockItem{"a": stockItem("a", 10, 0)}

	t.Run("empty request", func(t *testing.T) {
		_, err := lifecycle.Reserve(items, nil, false)
		assert.Error(t, err)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := lifecycle.Reserve(items, []lifecycle.ReservationLine{{StockItemID: "zz", Quantity: 1}}, false)
		assert.Error(t, err)
	})

	t.Run("non positive quantity", func(t *testing.T) {
		_, err := lifecycle.Reserve(items, []lifecycle.ReservationLine{{StockItemID: "a", Quantity: 0}}, false)
		assert.Error(t, err)
	})

	t.Run("duplicate line", func(t *testing.T) {
		_, err := lifecycle.Reserve(items, []lifecycle.ReservationLine{
			{StockItemID: "a", Quantity: 1},
			{StockItemID: "a", Quantity: 2},
		}, false)
		assert.Error(t, err)
	})
}

func TestStockHealth(t *testing.T) {
	t.Run("depleted", func(t *testing.T) {
		item := domain.StockItem{OnHand: 3, Reserved: 3, CriticalThreshold: 2}
		assert.Equal(t, domain.StockDepleted, item.Health())
	})

	t.Run("critical", func(t *testing.T) {
		item := domain.StockItem{OnHand: 2, Reserved: 0, CriticalThreshold: 2}
		assert.Equal(t, domain.StockCritical, item.Health())
	})

	t.Run("low band is at least five units wide", func(t *testing.T) {
		item := domain.StockItem{OnHand: 6, Reserved: 0, CriticalThreshold: 2}
		assert.Equal(t, domain.StockLow, item.Health())
	})

	t.Run("healthy", func(t *testing.T) {
		item := domain.StockItem{OnHand: 100, Reserved: 0, CriticalThreshold: 2}
		assert.Equal(t, domain.StockHealthy, item.Health())
	})

	t.Run("wide threshold widens the low band", func(t *testing.T) {
		// critical 40 -> band max(5, 10) = 10, low up to 50
		item := domain.StockItem{OnHand: 50, Reserved: 0, CriticalThreshold: 40}
		assert.Equal(t, domain.StockLow, item.Health())
	})
}
