package lifecycle

import (
	"fmt"
	"math"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
)

// ChequeAgeWarningDays is the weighted average cheque maturity beyond which
// an agreement closure carries a warning.
const ChequeAgeWarningDays = 90

// ChequeTotal sums the cheque line amounts of a plan.
func ChequeTotal(plan *domain.PaymentPlan) float64 {
	if plan == nil {
		return 0
	}
	var sum float64
	for _, c := range plan.ChequeLines {
		sum += c.Amount
	}
	return sum
}

// PlanTotal is cash + card + cheques + after-delivery.
func PlanTotal(plan *domain.PaymentPlan) float64 {
	if plan == nil {
		return 0
	}
	return plan.Cash + plan.Card + ChequeTotal(plan) + plan.AfterDelivery
}

// AverageChequeDays is the amount-weighted mean of days until each cheque's
// due date, counted from now. Overdue cheques contribute zero days. Returns
// 0 when there are no cheques or the total amount is zero.
func AverageChequeDays(lines []domain.ChequeLine, now time.Time) int {
	var total, weighted float64
	for _, c := range lines {
		days := math.Round(c.DueDate.Sub(now).Hours() / 24)
		if days < 0 {
			days = 0
		}
		total += c.Amount
		weighted += c.Amount * days
	}
	if total <= 0 {
		return 0
	}
	return int(math.Round(weighted / total))
}

// AgreementClosure is the accepted result of reconciling a payment plan
// against the offer at approval time.
type AgreementClosure struct {
	PlanTotal        float64
	ChequeTotal      float64
	AverageChequeDay int
	Warnings         []string
}

// ReconcileAgreement refuses closure unless the plan total matches the offer
// total within tolerance and the caller-declared cheque total agrees with
// the cheque lines. The numeric delta travels with the error.
func ReconcileAgreement(offer *domain.Offer, plan *domain.PaymentPlan, declaredChequeTotal float64, now time.Time) (*AgreementClosure, error) {
	if offer == nil {
		return nil, newValidationError("an offer is required before agreement closure")
	}
	if plan == nil {
		return nil, newValidationError("a payment plan is required before agreement closure")
	}

	chequeTotal := ChequeTotal(plan)
	var reasons []string
	var discrepancy *float64

	if d := declaredChequeTotal - chequeTotal; d > ApprovalTolerance || d < -ApprovalTolerance {
		reasons = append(reasons, fmt.Sprintf(
			"cheque lines sum to %s but %s was declared",
			domain.FormatAmount(chequeTotal), domain.FormatAmount(declaredChequeTotal)))
	}

	planTotal := PlanTotal(plan)
	if d := planTotal - offer.Total; d > ApprovalTolerance || d < -ApprovalTolerance {
		reasons = append(reasons, fmt.Sprintf(
			"payment plan total %s does not match offer total %s (difference %+.2f)",
			domain.FormatAmount(planTotal), domain.FormatAmount(offer.Total), d))
		discrepancy = &d
	}

	if len(reasons) > 0 {
		return nil, &ValidationError{Reasons: reasons, Discrepancy: discrepancy}
	}

	closure := &AgreementClosure{
		PlanTotal:        planTotal,
		ChequeTotal:      chequeTotal,
		AverageChequeDay: AverageChequeDays(plan.ChequeLines, now),
	}
	if closure.AverageChequeDay > ChequeAgeWarningDays {
		closure.Warnings = append(closure.Warnings,
			fmt.Sprintf("average cheque maturity is %d days", closure.AverageChequeDay))
	}
	return closure, nil
}

// FinanceBalance computes the outstanding amount at financial closure.
// preReceived is the approval-time plan's cash+card+cheque (after-delivery
// is settled now, not then); nowReceived is what is entered at closing.
func FinanceBalance(offer *domain.Offer, plan *domain.PaymentPlan, nowReceived domain.FinancePayments, discount float64) float64 {
	var offerTotal float64
	if offer != nil {
		offerTotal = offer.Total
	}
	var preReceived float64
	if plan != nil {
		preReceived = plan.Cash + plan.Card + ChequeTotal(plan)
	}
	received := nowReceived.Cash + nowReceived.Card + nowReceived.Cheque
	return offerTotal - (preReceived + received + discount)
}

// ReconcileFinance refuses financial closure unless the balance is zero.
func ReconcileFinance(offer *domain.Offer, plan *domain.PaymentPlan, payments domain.FinancePayments, discount *domain.Discount) error {
	var discountAmount float64
	if discount != nil {
		discountAmount = discount.Amount
		if discountAmount != 0 && discount.Note == "" {
			return newValidationError("a discount requires a justification note")
		}
	}
	balance := FinanceBalance(offer, plan, payments, discountAmount)
	if balance > ApprovalTolerance || balance < -ApprovalTolerance {
		return newValidationError(fmt.Sprintf(
			"financial closure requires a zero balance, %s remains",
			domain.FormatAmount(balance))).WithDiscrepancy(balance)
	}
	return nil
}

// ServiceBalance computes the outstanding amount on a service job:
// totalCost minus everything received plus discount.
func ServiceBalance(svc *domain.ServiceInfo, payments domain.ServicePayments, discount float64) float64 {
	var totalCost float64
	if svc != nil {
		totalCost = svc.TotalCost
	}
	return totalCost - (payments.Cash + payments.Card + payments.Transfer + discount)
}

// ReconcileService refuses service closure unless the balance is zero; a
// non-zero discount requires a justification note.
func ReconcileService(svc *domain.ServiceInfo, payments domain.ServicePayments, discount *domain.Discount) error {
	var discountAmount float64
	if discount != nil {
		discountAmount = discount.Amount
		if discountAmount != 0 && discount.Note == "" {
			return newValidationError("a discount requires a justification note")
		}
	}
	balance := ServiceBalance(svc, payments, discountAmount)
	if balance > ApprovalTolerance || balance < -ApprovalTolerance {
		return newValidationError(fmt.Sprintf(
			"service closure requires a zero balance, %s remains",
			domain.FormatAmount(balance))).WithDiscrepancy(balance)
	}
	return nil
}
