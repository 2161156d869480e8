package lifecycle

import (
	"fmt"
	"strings"

	"github.com/fenstra-as/jobflow-api/internal/domain"
)

// UnmappedStatusError reports a status that no stage of the flow owns. This
// is a configuration fault in the flow tables, not a user error.
type UnmappedStatusError struct {
	Flow   string
	Status domain.JobStatus
}

func (e *UnmappedStatusError) Error() string {
	return fmt.Sprintf("status %q is not mapped to any stage of the %s flow", e.Status, e.Flow)
}

// ValidationError blocks a transition before any remote call. Reasons holds
// every violated rule at once, in evaluation order. Discrepancy carries the
// signed numeric delta for reconciliation mismatches.
type ValidationError struct {
	Reasons     []string
	Discrepancy *float64
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

// WithDiscrepancy attaches the signed delta of a reconciliation mismatch.
func (e *ValidationError) WithDiscrepancy(delta float64) *ValidationError {
	e.Discrepancy = &delta
	return e
}

func newValidationError(reasons ...string) *ValidationError {
	return &ValidationError{Reasons: reasons}
}
