package lifecycle

import (
	"fmt"

	"github.com/fenstra-as/jobflow-api/internal/domain"
)

// ApprovalTolerance is the absolute tolerance, in currency units, allowed
// between the payment plan total and the offer total.
const ApprovalTolerance = 0.01

// DocumentRef is the slice of document metadata the validator needs; the
// document store supplies it read-only.
type DocumentRef struct {
	Type string
}

// HasDocumentType reports whether any supplied document carries the type.
func HasDocumentType(docs []DocumentRef, docType string) bool {
	for _, d := range docs {
		if d.Type == docType {
			return true
		}
	}
	return false
}

// freeTransitions are stage-internal targets with no blocking precondition;
// the flag suppresses automatic stage-advance bookkeeping for intermediate
// sub-statuses.
var freeTransitions = map[domain.JobStatus]bool{
	domain.StatusInProduction: true,
	domain.StatusOutsourced:   true,
}

// SkipAdvance reports whether a target status is an intermediate sub-status
// for which automatic stage advance must be suppressed.
func SkipAdvance(target domain.JobStatus) bool {
	return freeTransitions[target]
}

// ValidateTransition gates a requested status change. It returns nil when
// the transition may proceed, or a ValidationError listing every violated
// rule. No state changes here; callers persist only after acceptance.
//
// Terminal and record-bearing targets are never reachable this way: CLOSED,
// SERVICE_CLOSED and REJECTED require their dedicated operations, which
// reconcile balances or record the rejection. Stages only move forward;
// reactivation is the single backward transition and has its own entry
// point.
//
// docs is the job's current document list from the document store; it is
// only consulted for the pricing gate.
func ValidateTransition(job *domain.Job, target domain.JobStatus, docs []DocumentRef) error {
	if job.IsClosed() {
		return newValidationError("job is closed and accepts no further transitions")
	}
	if job.IsRejected() {
		return newValidationError("rejected jobs can only be reactivated")
	}

	switch target {
	case domain.StatusRejected:
		return newValidationError("an explicit rejection with category and reason is the only route to REJECTED")
	case domain.StatusClosed:
		return newValidationError("financial closure is the only route to CLOSED")
	case domain.StatusServiceClosed:
		return newValidationError("service closure is the only route to SERVICE_CLOSED")
	}

	flow := FlowFor(job.StartType)
	if !flow.Contains(target) {
		return &UnmappedStatusError{Flow: flow.Name, Status: target}
	}

	current, err := flow.Classify(job.Status)
	if err != nil {
		return err
	}
	targetStage, err := flow.Classify(target)
	if err != nil {
		return err
	}
	if flow.StageIndex(targetStage.ID) < flow.StageIndex(current.ID) {
		return newValidationError(fmt.Sprintf(
			"cannot move backward from %s to %s", job.Status, target))
	}

	var reasons []string
	var discrepancy *float64

	switch target {
	case domain.StatusPricing:
		reasons = append(reasons, validatePricingGate(job, docs)...)

	case domain.StatusOfferSent, domain.StatusOfferReady:
		if offerTotal(job) <= 0 {
			reasons = append(reasons, "offer total must be greater than zero before the offer can go out")
		}

	case domain.StatusApprovalPending, domain.StatusAgreementCompleted:
		if job.Offer == nil {
			reasons = append(reasons, "an offer is required before approval")
			break
		}
		planTotal := PlanTotal(job.PaymentPlan)
		delta := planTotal - job.Offer.Total
		if delta > ApprovalTolerance || delta < -ApprovalTolerance {
			reasons = append(reasons, fmt.Sprintf(
				"payment plan total %s does not match offer total %s (difference %+.2f)",
				domain.FormatAmount(planTotal), domain.FormatAmount(job.Offer.Total), delta))
			discrepancy = &delta
		}
	}

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons, Discrepancy: discrepancy}
	}
	return nil
}

// validatePricingGate checks the measure-stage exit conditions. Customer
// supplied measurements require a measurement drawing and a technical
// drawing per role; appointment measurements require confirmation.
func validatePricingGate(job *domain.Job, docs []DocumentRef) []string {
	var reasons []string
	switch job.StartType {
	case domain.StartCustomerSuppliedMeasure:
		for _, role := range job.Roles {
			if !HasDocumentType(docs, domain.DocumentTypeMeasure(role.ID)) {
				reasons = append(reasons, fmt.Sprintf("measurement drawing missing for role %s", role.Name))
			}
			if !HasDocumentType(docs, domain.DocumentTypeTechnical(role.ID)) {
				reasons = append(reasons, fmt.Sprintf("technical drawing missing for role %s", role.Name))
			}
		}
	case domain.StartMeasureAppointment:
		if job.Measure == nil || !job.Measure.Confirmed {
			reasons = append(reasons, "measurement must be confirmed before pricing")
		}
	}
	return reasons
}

// offerTotal returns the sum of role prices, falling back to the explicit
// offer total when no role breakdown exists.
func offerTotal(job *domain.Job) float64 {
	if job.Offer == nil {
		return 0
	}
	if len(job.Offer.RolePrices) == 0 {
		return job.Offer.Total
	}
	var sum float64
	for _, v := range job.Offer.RolePrices {
		sum += v
	}
	return sum
}
