package request

import (
	"errors"

	"maintdesk/domain/shared"
)

// Sentinel errors of the repair request subdomain.
var (
	// ErrRequestNotFound repair request not found.
	ErrRequestNotFound = errors.New("repair request not found")

	// ErrParentCycle the requested parent is the request itself or one of
	// its descendants.
	ErrParentCycle = errors.New("parent request would form a cycle")

	// ErrParentNotFound the named parent request does not exist.
	ErrParentNotFound = errors.New("parent request not found")

	// ErrNotRequester acceptance can only be verified by the requester
	// (or a manager for maintenance-originated requests).
	ErrNotRequester = errors.New("only the requester may verify acceptance")

	// ErrMissingOriginContext the origin context fields do not match the
	// declared origin.
	ErrMissingOriginContext = errors.New("exactly one origin context must be set")

	// ErrFeedbackRating feedback rating must be between 1 and 5.
	ErrFeedbackRating = errors.New("feedback rating must be between 1 and 5")

	// ErrFeedbackBeforeCompletion feedback is only accepted on completed
	// requests.
	ErrFeedbackBeforeCompletion = errors.New("feedback requires a completed request")
)

type requestDomainError struct {
	sentinel error
	message  string
	stack    []uintptr
}

func (e *requestDomainError) Error() string {
	return e.message
}

func (e *requestDomainError) Unwrap() error {
	return e.sentinel
}

func (e *requestDomainError) Stack() []string {
	return shared.FormatStack(e.stack)
}

// NewRequestNotFoundError builds a not-found error with stack.
func NewRequestNotFoundError(requestID string) error {
	return &requestDomainError{
		sentinel: ErrRequestNotFound,
		message:  "repair request not found: " + requestID,
		stack:    shared.CaptureStack(3),
	}
}

// NewConcurrentModificationError builds an optimistic lock conflict error.
func NewConcurrentModificationError(requestID string) error {
	return &requestDomainError{
		sentinel: shared.ErrConcurrentModification,
		message:  "repair request " + requestID + " was modified by another transaction, please retry",
		stack:    shared.CaptureStack(3),
	}
}

// NewParentCycleError builds a parent tree violation error.
func NewParentCycleError(requestID, parentID string) error {
	return &requestDomainError{
		sentinel: ErrParentCycle,
		message:  "request " + requestID + " cannot take " + parentID + " as parent: cycle",
		stack:    shared.CaptureStack(3),
	}
}

// newInvalidTransition wraps the shared transition error with the
// repair_request entity name.
func newInvalidTransition(current, requested Status) error {
	return shared.NewInvalidTransitionError("repair_request", string(current), string(requested))
}
