package appointment

import (
	"errors"
	"fmt"

	"maintdesk/domain/shared"
)

var (
	// ErrAppointmentNotFound appointment not found.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInsufficientTechnicians fewer technicians supplied than the
	// issue's required headcount.
	ErrInsufficientTechnicians = errors.New("insufficient technicians for appointment")

	// ErrOpenAppointmentExists a request may have at most one open
	// appointment at a time.
	ErrOpenAppointmentExists = errors.New("request already has an open appointment")

	// ErrWorkOrderNotFound no work order for the technician on this
	// appointment.
	ErrWorkOrderNotFound = errors.New("work order not found")

	// ErrDuplicateTechnician a technician can hold only one work order
	// per appointment.
	ErrDuplicateTechnician = errors.New("technician already assigned to appointment")

	// ErrInvalidWindow the appointment window is empty or inverted.
	ErrInvalidWindow = errors.New("appointment end must be after start")
)

type appointmentDomainError struct {
	sentinel error
	message  string
	stack    []uintptr
}

func (e *appointmentDomainError) Error() string   { return e.message }
func (e *appointmentDomainError) Unwrap() error   { return e.sentinel }
func (e *appointmentDomainError) Stack() []string { return shared.FormatStack(e.stack) }

// NewAppointmentNotFoundError builds a not-found error with stack.
func NewAppointmentNotFoundError(appointmentID string) error {
	return &appointmentDomainError{
		sentinel: ErrAppointmentNotFound,
		message:  "appointment not found: " + appointmentID,
		stack:    shared.CaptureStack(3),
	}
}

// NewConcurrentModificationError builds an optimistic lock conflict error.
func NewConcurrentModificationError(appointmentID string) error {
	return &appointmentDomainError{
		sentinel: shared.ErrConcurrentModification,
		message:  "appointment " + appointmentID + " was modified by another transaction, please retry",
		stack:    shared.CaptureStack(3),
	}
}

// NewInsufficientTechniciansError reports supplied vs required headcount.
func NewInsufficientTechniciansError(appointmentID string, supplied, required int) error {
	return &appointmentDomainError{
		sentinel: ErrInsufficientTechnicians,
		message: fmt.Sprintf("appointment %s requires %d technicians, got %d",
			appointmentID, required, supplied),
		stack: shared.CaptureStack(3),
	}
}

func newInvalidTransition(current, requested Status) error {
	return shared.NewInvalidTransitionError("appointment", string(current), string(requested))
}

func newInvalidWorkOrderTransition(current, requested WorkOrderStatus) error {
	return shared.NewInvalidTransitionError("work_order", string(current), string(requested))
}
