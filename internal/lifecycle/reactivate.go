package lifecycle

import (
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
)

// Reject moves a job into the rejected terminal, preserving the current
// offer so reactivation can restore it. Category and reason are mandatory.
func Reject(job *domain.Job, category domain.RejectionCategory, reason string, followUp *time.Time, now time.Time) (*domain.Job, error) {
	if job.IsClosed() {
		return nil, newValidationError("job is closed and accepts no further transitions")
	}
	if job.IsRejected() {
		return nil, newValidationError("job is already rejected")
	}

	var reasons []string
	if !category.IsValid() {
		reasons = append(reasons, "a rejection category is required")
	}
	if reason == "" {
		reasons = append(reasons, "a rejection reason is required")
	}
	if len(reasons) > 0 {
		return nil, &ValidationError{Reasons: reasons}
	}

	next := job.Clone()
	next.Rejection = &domain.Rejection{
		Category:     category,
		Reason:       reason,
		FollowUpDate: followUp,
		Date:         now,
		LastOffer:    next.Offer,
	}
	next.Status = domain.StatusRejected
	return next, nil
}

// Reactivate restores a rejected job to the pricing decision stage. The
// last offer comes back with reactivation stamps, the rejection record is
// cleared. This is the single backward transition the state machine allows.
func Reactivate(job *domain.Job, now time.Time) (*domain.Job, error) {
	if !job.IsRejected() {
		return nil, newValidationError("only rejected jobs can be reactivated")
	}

	next := job.Clone()
	rejection := next.Rejection

	var offer *domain.Offer
	if rejection != nil && rejection.LastOffer != nil {
		offer = rejection.LastOffer.Clone()
	} else {
		offer = &domain.Offer{}
	}
	t := now
	offer.ReactivatedAt = &t
	offer.ReactivatedFrom = rejection

	next.Offer = offer
	next.Rejection = nil
	next.Status = domain.StatusOfferSent
	return next, nil
}
