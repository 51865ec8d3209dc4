/*
Package shared holds the building blocks every subdomain relies on: the
Money value object, domain event contracts, aggregate root contracts and
the error taxonomy of the engine.

Errors are sentinel based so callers can classify with errors.Is(), and
the structured DomainError captures its stack at creation time while
deferring formatting until a log line actually needs it.
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Sentinel errors shared by all subdomains. Subdomain packages layer
// their own, more specific sentinels on top of these.
var (
	// ErrNotFound an entity looked up by id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict a uniqueness or concurrency conflict.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput input validation failed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden the acting role is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition the attempted state change is not permitted
	// from the entity's current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrConcurrentModification the aggregate was modified by another
	// transaction; the unit of work retries a bounded number of times.
	ErrConcurrentModification = errors.New("concurrent modification, please retry")
)

// DomainError carries business context plus the stack of the point the
// error was raised. It supports errors.Is()/errors.As() via Unwrap.
type DomainError struct {
	// Err is the underlying sentinel used for errors.Is().
	Err error

	// Entity names the entity the error occurred on ("repair_request",
	// "invoice", ...).
	Entity string

	// Message is the human readable description.
	Message string

	// Field optionally names the offending field for validation errors.
	Field string

	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Stack formats the captured stack on demand; only log paths pay the cost.
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// CaptureStack captures the current call stack for use by subdomain error
// constructors. skip is usually 3: Callers, CaptureStack, NewXxxError.
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack renders captured frames, filtering runtime internals and
// keeping at most 10 frames.
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) > 10 {
			break
		}
	}
	return result
}

// NewNotFoundError builds a "not found" domain error with stack.
func NewNotFoundError(entity string) error {
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: entity + " not found",
		stack:   CaptureStack(3),
	}
}

// NewConflictError builds a "conflict" domain error.
func NewConflictError(entity, message string) error {
	return &DomainError{
		Err:     ErrConflict,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewValidationError builds a validation domain error for a field.
func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// NewForbiddenError builds a role/permission domain error.
func NewForbiddenError(entity, reason string) error {
	return &DomainError{
		Err:     ErrForbidden,
		Entity:  entity,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// NewInvalidTransitionError builds a state machine violation error
// carrying current and requested status for precise messages.
func NewInvalidTransitionError(entity, current, requested string) error {
	return &DomainError{
		Err:     ErrInvalidTransition,
		Entity:  entity,
		Message: entity + " cannot transition from " + current + " to " + requested,
		stack:   CaptureStack(3),
	}
}

// Stacker is implemented by errors that can provide the stack of their
// creation point; the API layer uses it for logging.
type Stacker interface {
	Stack() []string
}
