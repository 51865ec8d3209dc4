package billing

import (
	"errors"
	"fmt"

	"maintdesk/domain/shared"
)

// Sentinel errors of the billing subdomain.
var (
	// ErrInvoiceNotFound invoice not found.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrTransactionNotFound payment transaction not found.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrLinesFrozen line items are immutable once the invoice leaves
	// Draft.
	ErrLinesFrozen = errors.New("invoice lines are frozen after draft")

	// ErrDuplicateLine an accessory may appear at most once per invoice
	// and source type.
	ErrDuplicateLine = errors.New("duplicate accessory line for source type")

	// ErrLineNotFound the named line item does not exist on the invoice.
	ErrLineNotFound = errors.New("invoice line not found")

	// ErrAmountMismatch the stored total diverges from the recomputed
	// line sum. Never silently corrected.
	ErrAmountMismatch = errors.New("invoice total does not match line sum")

	// ErrCurrencyMismatch all lines of an invoice share one currency.
	ErrCurrencyMismatch = errors.New("invoice lines use mixed currencies")

	// ErrPaymentNotExpected success can only be recorded on a pending
	// transaction.
	ErrPaymentNotExpected = errors.New("transaction is not awaiting payment")

	// ErrReportNotApproved settlement requires the owning inspection
	// report's approval chain to have run to completion.
	ErrReportNotApproved = errors.New("inspection report not approved")
)

type billingDomainError struct {
	sentinel error
	message  string
	stack    []uintptr
}

func (e *billingDomainError) Error() string {
	return e.message
}

func (e *billingDomainError) Unwrap() error {
	return e.sentinel
}

func (e *billingDomainError) Stack() []string {
	return shared.FormatStack(e.stack)
}

// NewInvoiceNotFoundError builds a not-found error with stack.
func NewInvoiceNotFoundError(invoiceID string) error {
	return &billingDomainError{
		sentinel: ErrInvoiceNotFound,
		message:  "invoice not found: " + invoiceID,
		stack:    shared.CaptureStack(3),
	}
}

// NewTransactionNotFoundError builds a not-found error with stack.
func NewTransactionNotFoundError(transactionID string) error {
	return &billingDomainError{
		sentinel: ErrTransactionNotFound,
		message:  "transaction not found: " + transactionID,
		stack:    shared.CaptureStack(3),
	}
}

// NewAmountMismatchError reports a stored total that no longer equals
// the recomputed line sum.
func NewAmountMismatchError(invoiceID string, stored, recomputed shared.Money) error {
	return &billingDomainError{
		sentinel: ErrAmountMismatch,
		message: fmt.Sprintf("invoice %s total %d %s does not match line sum %d %s",
			invoiceID, stored.Amount(), stored.Currency(), recomputed.Amount(), recomputed.Currency()),
		stack: shared.CaptureStack(3),
	}
}

// NewConcurrentModificationError builds an optimistic lock conflict error.
func NewConcurrentModificationError(entity, id string) error {
	return &billingDomainError{
		sentinel: shared.ErrConcurrentModification,
		message:  entity + " " + id + " was modified by another transaction, please retry",
		stack:    shared.CaptureStack(3),
	}
}

// newInvalidInvoiceTransition wraps the shared transition error with the
// invoice entity name.
func newInvalidInvoiceTransition(current, requested InvoiceStatus) error {
	return shared.NewInvalidTransitionError("invoice", string(current), string(requested))
}

// newInvalidTransactionTransition wraps the shared transition error with
// the transaction entity name.
func newInvalidTransactionTransition(current, requested TransactionStatus) error {
	return shared.NewInvalidTransitionError("transaction", string(current), string(requested))
}
