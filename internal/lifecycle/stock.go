package lifecycle

import (
	"fmt"

	"github.com/fenstra-as/jobflow-api/internal/domain"
)

// ReservationLine is one requested stock line.
type ReservationLine struct {
	StockItemID string
	Quantity    float64
}

// LineOutcome is the per-line result of a reservation attempt.
type LineOutcome struct {
	StockItemID string
	SKU         string
	Name        string
	Quantity    float64
	Ready       bool
	Missing     float64
}

// ReservationResult is the outcome of one reservation pass. UpdatedItems are
// new copies reflecting the reserve/consume mutations; callers persist them
// with atomic per-item writes. PendingLines replace the job's backorder
// list wholesale, so a re-attempt with resolved shortfalls clears it.
type ReservationResult struct {
	Lines        []LineOutcome
	UpdatedItems []domain.StockItem
	PendingLines []domain.PendingLine
	// PurchaseOrderLines groups every pending line for synthesis into a
	// single purchase order; empty when everything was ready.
	PurchaseOrderLines []domain.PurchaseOrderLine
	AllReady           bool
}

// Reserve runs the reservation engine over a point-in-time stock snapshot.
// Ready lines consume onHand when consume is true, otherwise they soft-hold
// via reserved. Short lines hold the available portion and report the
// shortfall. The available quantity is derived, never stored, and can never
// go negative.
func Reserve(items map[string]domain.StockItem, lines []ReservationLine, consume bool) (*ReservationResult, error) {
	if len(lines) == 0 {
		return nil, newValidationError("a stock reservation needs at least one line")
	}

	result := &ReservationResult{AllReady: true}
	seen := make(map[string]bool, len(lines))

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, newValidationError(fmt.Sprintf("requested quantity for item %s must be positive", line.StockItemID))
		}
		if seen[line.StockItemID] {
			return nil, newValidationError(fmt.Sprintf("item %s appears more than once in the request", line.StockItemID))
		}
		seen[line.StockItemID] = true

		item, ok := items[line.StockItemID]
		if !ok {
			return nil, newValidationError(fmt.Sprintf("unknown stock item %s", line.StockItemID))
		}

		available := item.Available()
		outcome := LineOutcome{
			StockItemID: line.StockItemID,
			SKU:         item.SKU,
			Name:        item.Name,
			Quantity:    line.Quantity,
		}

		if line.Quantity <= available {
			outcome.Ready = true
			if consume {
				item.OnHand -= line.Quantity
				if item.OnHand < 0 {
					item.OnHand = 0
				}
			} else {
				item.Reserved += line.Quantity
			}
		} else {
			outcome.Missing = line.Quantity - available
			// Hold whatever is on the shelf; the rest becomes a backorder.
			item.Reserved += available
			result.AllReady = false
			result.PendingLines = append(result.PendingLines, domain.PendingLine{
				StockItemID:            line.StockItemID,
				Name:                   item.Name,
				SKU:                    item.SKU,
				RequestedQty:           line.Quantity,
				AvailableAtRequestTime: available,
				Missing:                outcome.Missing,
			})
			result.PurchaseOrderLines = append(result.PurchaseOrderLines, domain.PurchaseOrderLine{
				StockItemID: line.StockItemID,
				SKU:         item.SKU,
				Name:        item.Name,
				Quantity:    outcome.Missing,
			})
		}

		result.Lines = append(result.Lines, outcome)
		result.UpdatedItems = append(result.UpdatedItems, item)
	}

	return result, nil
}
