package stock

import (
	"errors"
	"fmt"

	"maintdesk/domain/shared"
)

// Sentinel errors of the stock subdomain.
var (
	// ErrAccessoryNotFound accessory not found.
	ErrAccessoryNotFound = errors.New("accessory not found")

	// ErrInsufficientStock an export exceeds the on-hand quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
)

type stockDomainError struct {
	sentinel error
	message  string
	stack    []uintptr
}

func (e *stockDomainError) Error() string {
	return e.message
}

func (e *stockDomainError) Unwrap() error {
	return e.sentinel
}

func (e *stockDomainError) Stack() []string {
	return shared.FormatStack(e.stack)
}

// NewAccessoryNotFoundError builds a not-found error with stack.
func NewAccessoryNotFoundError(accessoryID string) error {
	return &stockDomainError{
		sentinel: ErrAccessoryNotFound,
		message:  "accessory not found: " + accessoryID,
		stack:    shared.CaptureStack(3),
	}
}

// NewInsufficientStockError reports an export that would drive stock
// negative.
func NewInsufficientStockError(accessoryID string, available, requested int) error {
	return &stockDomainError{
		sentinel: ErrInsufficientStock,
		message:  fmt.Sprintf("accessory %s has %d on hand, %d requested", accessoryID, available, requested),
		stack:    shared.CaptureStack(3),
	}
}

// NewConcurrentModificationError builds an optimistic lock conflict error.
func NewConcurrentModificationError(accessoryID string) error {
	return &stockDomainError{
		sentinel: shared.ErrConcurrentModification,
		message:  "accessory " + accessoryID + " was modified by another transaction, please retry",
		stack:    shared.CaptureStack(3),
	}
}
