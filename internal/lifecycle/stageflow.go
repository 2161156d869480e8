// Package lifecycle implements the job lifecycle and reconciliation engine:
// stage classification, transition gating, payment and stock arithmetic, and
// the negotiation and service-visit ledgers. Everything in this package is a
// pure function over a Job snapshot; persistence and logging live with the
// callers in the service layer.
package lifecycle

import (
	"fmt"

	"github.com/fenstra-as/jobflow-api/internal/domain"
)

// StageID names one phase of a job flow.
type StageID string

// Standard flow stages
const (
	StageMeasure    StageID = "measure"
	StagePricing    StageID = "pricing"
	StageAgreement  StageID = "agreement"
	StageStock      StageID = "stock"
	StageProduction StageID = "production"
	StageAssembly   StageID = "assembly"
	StageFinance    StageID = "finance"
)

// Service flow stages
const (
	StageServiceSchedule StageID = "service_schedule"
	StageServiceStart    StageID = "service_start"
	StageServiceWork     StageID = "service_work"
	StageServicePayment  StageID = "service_payment"
	StageServiceDone     StageID = "service_done"
)

// Stage is one ordered phase owning a non-empty set of statuses. A status
// belongs to exactly one stage of its flow.
type Stage struct {
	ID       StageID
	Name     string
	Statuses []domain.JobStatus
}

// Flow is an ordered stage sequence.
type Flow struct {
	Name   string
	Stages []Stage

	index map[domain.JobStatus]int
}

// StandardFlow is the fabrication flow: measure through financial closure.
var StandardFlow = newFlow("standard", []Stage{
	{ID: StageMeasure, Name: "Measurement", Statuses: []domain.JobStatus{
		domain.StatusMeasurePending,
		domain.StatusMeasureScheduled,
		domain.StatusMeasureTaken,
		domain.StatusCustomerMeasurePending,
		domain.StatusCustomerMeasureUploaded,
	}},
	{ID: StagePricing, Name: "Pricing", Statuses: []domain.JobStatus{
		domain.StatusPricing,
		domain.StatusOfferSent,
		domain.StatusOfferReady,
	}},
	{ID: StageAgreement, Name: "Agreement", Statuses: []domain.JobStatus{
		domain.StatusAgreementInProgress,
		domain.StatusApprovalPending,
		domain.StatusAgreementCompleted,
	}},
	{ID: StageStock, Name: "Stock", Statuses: []domain.JobStatus{
		domain.StatusStockPending,
	}},
	{ID: StageProduction, Name: "Production", Statuses: []domain.JobStatus{
		domain.StatusReadyForProduction,
		domain.StatusInProduction,
		domain.StatusOutsourced,
	}},
	{ID: StageAssembly, Name: "Assembly", Statuses: []domain.JobStatus{
		domain.StatusReadyForAssembly,
		domain.StatusAssemblyScheduled,
	}},
	{ID: StageFinance, Name: "Finance", Statuses: []domain.JobStatus{
		domain.StatusFinancePending,
		domain.StatusClosed,
	}},
})

// ServiceFlow is the short flow for maintenance service calls.
var ServiceFlow = newFlow("service", []Stage{
	{ID: StageServiceSchedule, Name: "Appointment", Statuses: []domain.JobStatus{
		domain.StatusServiceAppointmentPending,
	}},
	{ID: StageServiceStart, Name: "Scheduled", Statuses: []domain.JobStatus{
		domain.StatusServiceScheduled,
	}},
	{ID: StageServiceWork, Name: "Service Work", Statuses: []domain.JobStatus{
		domain.StatusServiceInProgress,
		domain.StatusServiceOngoing,
	}},
	{ID: StageServicePayment, Name: "Payment", Statuses: []domain.JobStatus{
		domain.StatusServicePaymentPending,
	}},
	{ID: StageServiceDone, Name: "Closed", Statuses: []domain.JobStatus{
		domain.StatusServiceClosed,
	}},
})

func newFlow(name string, stages []Stage) *Flow {
	f := &Flow{Name: name, Stages: stages, index: make(map[domain.JobStatus]int)}
	for i, st := range stages {
		if len(st.Statuses) == 0 {
			panic(fmt.Sprintf("lifecycle: flow %s stage %s has no statuses", name, st.ID))
		}
		for _, status := range st.Statuses {
			if _, dup := f.index[status]; dup {
				panic(fmt.Sprintf("lifecycle: flow %s maps status %s to more than one stage", name, status))
			}
			f.index[status] = i
		}
	}
	return f
}

// FlowFor selects the flow a job follows based on its start type.
func FlowFor(startType domain.StartType) *Flow {
	if startType == domain.StartService {
		return ServiceFlow
	}
	return StandardFlow
}

// Classify returns the stage owning the given status. An unmapped status is
// a hard configuration error, never silently defaulted to the first stage.
func (f *Flow) Classify(status domain.JobStatus) (Stage, error) {
	i, ok := f.index[status]
	if !ok {
		return Stage{}, &UnmappedStatusError{Flow: f.Name, Status: status}
	}
	return f.Stages[i], nil
}

// StageIndex returns the position of a stage in the flow, or -1 when the
// stage does not belong to it.
func (f *Flow) StageIndex(id StageID) int {
	for i, st := range f.Stages {
		if st.ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether the status belongs to this flow.
func (f *Flow) Contains(status domain.JobStatus) bool {
	_, ok := f.index[status]
	return ok
}

// StageState is the done/current/pending classification of one stage
// relative to the job's current stage.
type StageState string

const (
	StageDone    StageState = "done"
	StageCurrent StageState = "current"
	StagePending StageState = "pending"
)

// StageViewEntry is one row of the per-stage progress view.
type StageViewEntry struct {
	Stage Stage      `json:"stage"`
	State StageState `json:"state"`
}

// StageView classifies every stage of the job's flow as done, current, or
// pending. The operator's view cursor is a plain index kept by the caller
// and never part of the Job entity; only explicit transitions move Status.
func StageView(job *domain.Job) ([]StageViewEntry, error) {
	flow := FlowFor(job.StartType)
	current, err := flow.Classify(job.Status)
	if err != nil {
		return nil, err
	}
	currentIdx := flow.StageIndex(current.ID)

	view := make([]StageViewEntry, len(flow.Stages))
	for i, st := range flow.Stages {
		state := StageCurrent
		switch {
		case i < currentIdx:
			state = StageDone
		case i > currentIdx:
			state = StagePending
		}
		view[i] = StageViewEntry{Stage: st, State: state}
	}
	return view, nil
}
