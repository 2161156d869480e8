package lifecycle

import (
	"fmt"
	"math"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
)

// Typed snapshot builders: every transition takes the previous immutable
// snapshot plus an explicit patch and returns a new snapshot. There is no
// partial-object deep merging anywhere in the engine.

// MeasurePatch updates the measure record.
type MeasurePatch struct {
	Note        *string
	Appointment *time.Time
	Confirmed   *bool
	Uploaded    *bool
	// Status optionally moves the job within the measure stage
	// (e.g. MEASURE_SCHEDULED after booking the appointment).
	Status *domain.JobStatus
}

// ApplyMeasure returns a new snapshot with the measure patch applied.
func ApplyMeasure(job *domain.Job, patch MeasurePatch) (*domain.Job, error) {
	if job.IsClosed() {
		return nil, newValidationError("job is closed and accepts no further transitions")
	}

	next := job.Clone()
	if next.Measure == nil {
		next.Measure = &domain.Measure{}
	}
	if patch.Note != nil {
		next.Measure.Note = *patch.Note
	}
	if patch.Appointment != nil {
		t := *patch.Appointment
		next.Measure.Appointment = &t
	}
	if patch.Confirmed != nil {
		next.Measure.Confirmed = *patch.Confirmed
	}
	if patch.Uploaded != nil {
		next.Measure.Uploaded = *patch.Uploaded
	}
	if patch.Status != nil {
		flow := FlowFor(job.StartType)
		stage, err := flow.Classify(*patch.Status)
		if err != nil {
			return nil, err
		}
		if stage.ID != StageMeasure {
			return nil, newValidationError(fmt.Sprintf("%s is not a measure-stage status", *patch.Status))
		}
		next.Status = *patch.Status
	}
	return next, nil
}

// PriceOffer records the priced offer and moves the job to OFFER_SENT.
// When role prices are present their sum must agree with the total.
func PriceOffer(job *domain.Job, total float64, rolePrices map[string]float64, now time.Time) (*domain.Job, error) {
	if job.IsClosed() {
		return nil, newValidationError("job is closed and accepts no further transitions")
	}
	if job.IsServiceJob() {
		return nil, newValidationError("service jobs carry a fixed fee, not an offer")
	}
	if total <= 0 {
		return nil, newValidationError("offer total must be greater than zero")
	}
	if len(rolePrices) > 0 {
		var sum float64
		for _, v := range rolePrices {
			sum += v
		}
		if math.Abs(sum-total) > ApprovalTolerance {
			return nil, newValidationError(fmt.Sprintf(
				"role prices sum to %s but the offer total is %s",
				domain.FormatAmount(sum), domain.FormatAmount(total))).WithDiscrepancy(sum - total)
		}
	}

	next := job.Clone()
	notified := now
	offer := &domain.Offer{
		Total:        total,
		RolePrices:   cloneDiscounts(rolePrices),
		NotifiedDate: &notified,
	}
	if len(rolePrices) == 0 {
		offer.RolePrices = nil
	}
	if job.Offer != nil {
		offer.NegotiationHistory = job.Offer.Clone().NegotiationHistory
	}
	next.Offer = offer
	next.Status = domain.StatusOfferSent
	return next, nil
}

// ApproveOffer accepts the offer as-is (no discount round) and moves the
// job into the agreement stage.
func ApproveOffer(job *domain.Job, now time.Time) (*domain.Job, error) {
	if job.IsClosed() {
		return nil, newValidationError("job is closed and accepts no further transitions")
	}
	if job.Offer == nil || job.Offer.Total <= 0 {
		return nil, newValidationError("a priced offer is required before approval")
	}

	next := job.Clone()
	agreed := now
	next.Offer.AgreedDate = &agreed
	next.Status = domain.StatusAgreementInProgress
	return next, nil
}

// ApplyNegotiation runs one discount round and moves the job into the
// agreement stage with the negotiated offer.
func ApplyNegotiation(job *domain.Job, roleDiscounts map[string]float64, now time.Time) (*domain.Job, *NegotiationResult, error) {
	if job.IsClosed() {
		return nil, nil, newValidationError("job is closed and accepts no further transitions")
	}
	result, err := Negotiate(job.Offer, roleDiscounts, now)
	if err != nil {
		return nil, nil, err
	}
	next := job.Clone()
	next.Offer = result.Offer
	next.Status = domain.StatusAgreementInProgress
	return next, result, nil
}

// ApproveAgreement reconciles the payment plan against the offer and, when
// the totals agree, closes the agreement stage into STOCK_PENDING.
func ApproveAgreement(job *domain.Job, plan domain.PaymentPlan, declaredChequeTotal float64, now time.Time) (*domain.Job, *AgreementClosure, error) {
	if job.IsClosed() {
		return nil, nil, newValidationError("job is closed and accepts no further transitions")
	}
	closure, err := ReconcileAgreement(job.Offer, &plan, declaredChequeTotal, now)
	if err != nil {
		return nil, nil, err
	}

	next := job.Clone()
	next.PaymentPlan = plan.Clone()
	next.Status = domain.StatusStockPending
	return next, closure, nil
}

// ApplyReservation writes a reservation result onto the job. When every
// line is ready the job advances to READY_FOR_PRODUCTION; otherwise it
// stays in STOCK_PENDING with the new backorder list and purchase order.
func ApplyReservation(job *domain.Job, result *ReservationResult, purchaseOrderID *string) (*domain.Job, error) {
	if job.IsClosed() {
		return nil, newValidationError("job is closed and accepts no further transitions")
	}

	next := job.Clone()
	if result.AllReady {
		next.PendingLines = nil
		next.PendingPurchaseOrderID = nil
		next.Status = domain.StatusReadyForProduction
	} else {
		next.PendingLines = append(domain.PendingLineList(nil), result.PendingLines...)
		next.PendingPurchaseOrderID = purchaseOrderID
		next.Status = domain.StatusStockPending
	}
	return next, nil
}

// ProductionPatch moves the job between production sub-statuses.
type ProductionPatch struct {
	Status        domain.JobStatus
	AgreementDate *time.Time
	Note          string
}

// ApplyProduction handles the free production transitions: IN_PRODUCTION,
// OUTSOURCED (with its agreement date), and READY_FOR_ASSEMBLY.
func ApplyProduction(job *domain.Job, patch ProductionPatch) (*domain.Job, error) {
	if job.IsClosed() {
		return nil, newValidationError("job is closed and accepts no further transitions")
	}
	switch patch.Status {
	case domain.StatusInProduction, domain.StatusOutsourced, domain.StatusReadyForAssembly:
	default:
		return nil, newValidationError(fmt.Sprintf("%s is not a production transition", patch.Status))
	}
	if patch.Status == domain.StatusOutsourced && patch.AgreementDate == nil {
		return nil, newValidationError("outsourcing requires an agreement date")
	}

	next := job.Clone()
	if next.Production == nil {
		next.Production = &domain.ProductionInfo{}
	}
	if patch.AgreementDate != nil {
		t := *patch.AgreementDate
		next.Production.AgreementDate = &t
	}
	if patch.Note != "" {
		next.Production.Note = patch.Note
	}
	next.Status = patch.Status
	return next, nil
}

// ScheduleAssembly books the assembly team and moves to ASSEMBLY_SCHEDULED.
func ScheduleAssembly(job *domain.Job, date time.Time, note, team string) (*domain.Job, error) {
	if job.IsClosed() {
		return nil, newValidationError("job is closed and accepts no further transitions")
	}

	next := job.Clone()
	d := date
	next.Assembly = &domain.AssemblyInfo{Date: &d, Note: note, Team: team}
	next.Status = domain.StatusAssemblyScheduled
	return next, nil
}

// CompleteAssembly marks assembly done and hands the job to finance.
func CompleteAssembly(job *domain.Job) (*domain.Job, error) {
	if job.IsClosed() {
		return nil, newValidationError("job is closed and accepts no further transitions")
	}
	if job.Assembly == nil {
		return nil, newValidationError("assembly has not been scheduled")
	}

	next := job.Clone()
	next.Assembly.Completed = true
	next.Status = domain.StatusFinancePending
	return next, nil
}

// CloseFinance settles the remaining balance and closes the job. The
// balance must resolve to zero; a non-zero discount needs a note.
func CloseFinance(job *domain.Job, payments domain.FinancePayments, discount *domain.Discount, now time.Time) (*domain.Job, error) {
	if job.IsClosed() {
		return nil, newValidationError("job is closed and accepts no further transitions")
	}
	if job.Status != domain.StatusFinancePending {
		return nil, newValidationError(fmt.Sprintf("financial closure is only possible from %s", domain.StatusFinancePending))
	}
	if err := ReconcileFinance(job.Offer, job.PaymentPlan, payments, discount); err != nil {
		return nil, err
	}

	next := job.Clone()
	var total float64
	if next.Offer != nil {
		total = next.Offer.Total
	}
	p := payments
	closed := now
	next.Finance = &domain.Finance{
		Total:    total,
		Payments: &p,
		ClosedAt: &closed,
	}
	if discount != nil {
		d := *discount
		next.Finance.Discount = &d
	}
	next.Status = domain.StatusClosed
	return next, nil
}

// FreeTransition moves the job to a target through the validator's gates:
// flow membership, forward-only stage order, and the per-target
// preconditions. Terminal statuses are out of reach here.
func FreeTransition(job *domain.Job, target domain.JobStatus, docs []DocumentRef) (*domain.Job, error) {
	if err := ValidateTransition(job, target, docs); err != nil {
		return nil, err
	}
	next := job.Clone()
	next.Status = target
	return next, nil
}
