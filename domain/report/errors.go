package report

import (
	"errors"

	"maintdesk/domain/shared"
)

var (
	// ErrReportNotFound report not found.
	ErrReportNotFound = errors.New("report not found")

	// ErrOutOfOrderApproval the approver's role does not match the next
	// expected role in the chain.
	ErrOutOfOrderApproval = errors.New("approval out of role order")

	// ErrAlreadyFinalized the report is in a terminal approval state.
	ErrAlreadyFinalized = errors.New("report approval already finalized")

	// ErrNotReworkable content can only change while the report awaits
	// its first approval or after a rejection.
	ErrNotReworkable = errors.New("report is not in a reworkable state")
)

type reportDomainError struct {
	sentinel error
	message  string
	stack    []uintptr
}

func (e *reportDomainError) Error() string   { return e.message }
func (e *reportDomainError) Unwrap() error   { return e.sentinel }
func (e *reportDomainError) Stack() []string { return shared.FormatStack(e.stack) }

// NewReportNotFoundError builds a not-found error with stack.
func NewReportNotFoundError(reportID string) error {
	return &reportDomainError{
		sentinel: ErrReportNotFound,
		message:  "report not found: " + reportID,
		stack:    shared.CaptureStack(3),
	}
}

// NewConcurrentModificationError builds an optimistic lock conflict error.
func NewConcurrentModificationError(reportID string) error {
	return &reportDomainError{
		sentinel: shared.ErrConcurrentModification,
		message:  "report " + reportID + " was modified by another transaction, please retry",
		stack:    shared.CaptureStack(3),
	}
}

// NewOutOfOrderApprovalError names expected vs offered role.
func NewOutOfOrderApprovalError(reportID string, expected, got shared.Role) error {
	return &reportDomainError{
		sentinel: ErrOutOfOrderApproval,
		message:  "report " + reportID + " expects approval by " + string(expected) + ", got " + string(got),
		stack:    shared.CaptureStack(3),
	}
}

// NewAlreadyFinalizedError reports an approval on a terminal report.
func NewAlreadyFinalizedError(reportID string, status Status) error {
	return &reportDomainError{
		sentinel: ErrAlreadyFinalized,
		message:  "report " + reportID + " is already finalized in status " + string(status),
		stack:    shared.CaptureStack(3),
	}
}
