package lifecycle

import (
	"fmt"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
)

// NegotiationResult carries the new offer snapshot and the appended record.
// Warnings surface role prices driven negative by the discount; they are
// deliberate-or-bug territory, so the engine reports instead of clamping.
type NegotiationResult struct {
	Offer    *domain.Offer
	Record   domain.NegotiationRecord
	Warnings []string
}

// Negotiate applies one discount round to the offer and appends an immutable
// record to the negotiation history. The returned offer is a new snapshot;
// the input is left untouched.
func Negotiate(offer *domain.Offer, roleDiscounts map[string]float64, now time.Time) (*NegotiationResult, error) {
	if offer == nil {
		return nil, newValidationError("a priced offer is required before negotiation")
	}
	if len(roleDiscounts) == 0 {
		return nil, newValidationError("a negotiation needs at least one role discount")
	}
	for roleID := range roleDiscounts {
		if _, ok := offer.RolePrices[roleID]; !ok {
			return nil, newValidationError(fmt.Sprintf("role %s has no price on the offer", roleID))
		}
	}

	next := offer.Clone()
	if next.RolePrices == nil {
		next.RolePrices = make(map[string]float64)
	}

	var warnings []string
	var discountTotal float64
	for roleID, discount := range roleDiscounts {
		discountTotal += discount
		newPrice := next.RolePrices[roleID] - discount
		next.RolePrices[roleID] = newPrice
		if newPrice < 0 {
			warnings = append(warnings, fmt.Sprintf(
				"discount drives the price for role %s below zero (%s)",
				roleID, domain.FormatAmount(newPrice)))
		}
	}

	record := domain.NegotiationRecord{
		Date:          now,
		OriginalTotal: offer.Total,
		DiscountTotal: discountTotal,
		FinalTotal:    offer.Total - discountTotal,
		RoleDiscounts: cloneDiscounts(roleDiscounts),
	}

	next.Total = record.FinalTotal
	next.NegotiationHistory = append(next.NegotiationHistory, record)
	agreed := now
	next.AgreedDate = &agreed

	return &NegotiationResult{Offer: next, Record: record, Warnings: warnings}, nil
}

func cloneDiscounts(m map[string]float64) map[string]float64 {
	c := make(map[string]float64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
