package lifecycle

import (
	"fmt"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
)

// ScheduleService opens the service ledger on a job: fixed fee, note, and
// the first visit, already scheduled. Returns a new job snapshot in
// SERVICE_SCHEDULED.
func ScheduleService(job *domain.Job, fixedFee float64, note, appointmentDate, appointmentTime string) (*domain.Job, error) {
	if !job.IsServiceJob() {
		return nil, newValidationError("only service jobs can schedule service visits")
	}
	if job.IsClosed() {
		return nil, newValidationError("job is closed and accepts no further transitions")
	}
	if fixedFee < 0 {
		return nil, newValidationError("the fixed fee cannot be negative")
	}
	if appointmentDate == "" {
		return nil, newValidationError("an appointment date is required")
	}

	next := job.Clone()
	next.Service = &domain.ServiceInfo{
		FixedFee: fixedFee,
		Note:     note,
		Visits: []domain.ServiceVisit{{
			ID:              1,
			AppointmentDate: appointmentDate,
			AppointmentTime: appointmentTime,
			Status:          domain.VisitScheduled,
		}},
		PaymentStatus: domain.PaymentPending,
	}
	next.Status = domain.StatusServiceScheduled
	return next, nil
}

// StartVisit stamps the scheduled visit as in progress with the actual
// arrival time and moves the job into SERVICE_IN_PROGRESS.
func StartVisit(job *domain.Job, visitedAt time.Time) (*domain.Job, error) {
	if job.Service == nil {
		return nil, newValidationError("the job has no service ledger")
	}
	if job.IsClosed() {
		return nil, newValidationError("job is closed and accepts no further transitions")
	}

	next := job.Clone()
	idx := findVisitByStatus(next.Service.Visits, domain.VisitScheduled)
	if idx < 0 {
		return nil, newValidationError("no scheduled visit to start")
	}
	v := &next.Service.Visits[idx]
	t := visitedAt
	v.VisitedAt = &t
	v.Status = domain.VisitInProgress
	next.Status = domain.StatusServiceInProgress
	return next, nil
}

// VisitCompletion is the field set recorded when a visit finishes.
type VisitCompletion struct {
	WorkNote  string
	Materials string
	ExtraCost float64
}

// CompleteVisit closes the in-progress visit. The work note is mandatory;
// the extra cost feeds the service totals at finalization. The job moves to
// SERVICE_ONGOING: work is done but not yet finalized, and the caller
// chooses Finalize or Continue next.
func CompleteVisit(job *domain.Job, completion VisitCompletion, now time.Time) (*domain.Job, error) {
	if job.Service == nil {
		return nil, newValidationError("the job has no service ledger")
	}
	if completion.WorkNote == "" {
		return nil, newValidationError("a work note is required to complete a visit")
	}
	if completion.ExtraCost < 0 {
		return nil, newValidationError("extra cost cannot be negative")
	}

	next := job.Clone()
	idx := findVisitByStatus(next.Service.Visits, domain.VisitInProgress)
	if idx < 0 {
		return nil, newValidationError("no visit in progress to complete")
	}
	v := &next.Service.Visits[idx]
	v.WorkNote = completion.WorkNote
	v.Materials = completion.Materials
	v.ExtraCost = completion.ExtraCost
	v.Status = domain.VisitCompleted
	t := now
	v.CompletedAt = &t
	next.Status = domain.StatusServiceOngoing
	return next, nil
}

// FinalizeService recomputes the service totals and moves the job to the
// payment stage.
func FinalizeService(job *domain.Job) (*domain.Job, error) {
	if job.Service == nil {
		return nil, newValidationError("the job has no service ledger")
	}
	if findVisitByStatus(job.Service.Visits, domain.VisitInProgress) >= 0 {
		return nil, newValidationError("a visit is still in progress")
	}

	next := job.Clone()
	var extra float64
	for _, v := range next.Service.Visits {
		extra += v.ExtraCost
	}
	next.Service.TotalExtraCost = extra
	next.Service.TotalCost = next.Service.FixedFee + extra
	next.Status = domain.StatusServicePaymentPending
	return next, nil
}

// ContinueService appends a follow-up visit after a completed one. The new
// visit id is strictly greater than every id ever used on the job, even
// across repeated continue cycles. When startNow is set the visit begins
// immediately; otherwise it waits as scheduled.
func ContinueService(job *domain.Job, appointmentDate, appointmentTime, note string, startNow bool, now time.Time) (*domain.Job, error) {
	if job.Service == nil {
		return nil, newValidationError("the job has no service ledger")
	}
	if job.IsClosed() {
		return nil, newValidationError("job is closed and accepts no further transitions")
	}
	if appointmentDate == "" && !startNow {
		return nil, newValidationError("a follow-up visit needs an appointment date")
	}

	next := job.Clone()
	visit := domain.ServiceVisit{
		ID:              nextVisitID(next.Service.Visits),
		AppointmentDate: appointmentDate,
		AppointmentTime: appointmentTime,
		Note:            note,
		Status:          domain.VisitScheduled,
	}
	if startNow {
		t := now
		visit.VisitedAt = &t
		visit.Status = domain.VisitInProgress
		next.Status = domain.StatusServiceInProgress
	} else {
		next.Status = domain.StatusServiceScheduled
	}
	next.Service.Visits = append(next.Service.Visits, visit)
	return next, nil
}

// CloseService settles the service job. The balance must be zero and a
// non-zero discount needs its justification note.
func CloseService(job *domain.Job, payments domain.ServicePayments, discount *domain.Discount, now time.Time) (*domain.Job, error) {
	if job.Service == nil {
		return nil, newValidationError("the job has no service ledger")
	}
	if job.Status != domain.StatusServicePaymentPending {
		return nil, newValidationError(fmt.Sprintf("service closure is only possible from %s", domain.StatusServicePaymentPending))
	}
	if err := ReconcileService(job.Service, payments, discount); err != nil {
		return nil, err
	}

	next := job.Clone()
	p := payments
	next.Service.Payments = &p
	if discount != nil {
		d := *discount
		next.Service.Discount = &d
	}
	next.Service.PaymentStatus = domain.PaymentPaid
	t := now
	next.Service.CompletedAt = &t
	next.Status = domain.StatusServiceClosed
	return next, nil
}

func findVisitByStatus(visits []domain.ServiceVisit, status domain.VisitStatus) int {
	for i, v := range visits {
		if v.Status == status {
			return i
		}
	}
	return -1
}

// nextVisitID allocates max(existing) + 1 so ids stay monotonic and are
// never reused, regardless of how many continue cycles the job went through.
func nextVisitID(visits []domain.ServiceVisit) int {
	max := 0
	for _, v := range visits {
		if v.ID > max {
			max = v.ID
		}
	}
	return max + 1
}
