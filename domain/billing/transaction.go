package billing

import (
	"fmt"
	"time"

	"maintdesk/domain/shared"

	"github.com/google/uuid"
)

// Transaction is a payment/expense ledger row. Income transactions wait
// for external payment confirmation; expense transactions against the
// operating budget settle immediately.
type Transaction struct {
	id        string
	userID    string
	invoiceID string
	status    TransactionStatus
	provider  string
	direction Direction
	amount    shared.Money

	externalReference string
	createdAt         time.Time
	paidAt            *time.Time

	version int
	events  []shared.DomainEvent
	isNew   bool
}

// NewPendingIncome opens a pending income transaction for a chargeable
// invoice. PaidAt stays nil until payment succeeds.
func NewPendingIncome(userID, invoiceID, provider string, amount shared.Money) (*Transaction, error) {
	return newTransaction(userID, invoiceID, provider, DirectionIncome, TransactionStatusPending, amount)
}

// NewSettledExpense records a non-chargeable settlement as an
// immediately successful expense; no external payment is awaited.
func NewSettledExpense(userID, invoiceID string, amount shared.Money) (*Transaction, error) {
	t, err := newTransaction(userID, invoiceID, "internal", DirectionExpense, TransactionStatusSuccess, amount)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	t.paidAt = &now
	return t, nil
}

func newTransaction(userID, invoiceID, provider string, direction Direction, status TransactionStatus, amount shared.Money) (*Transaction, error) {
	if userID == "" {
		return nil, shared.NewValidationError("transaction", "user_id", "user is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("transaction", "amount", "amount must not be negative")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate transaction ID: %w", err)
	}

	return &Transaction{
		id:        id.String(),
		userID:    userID,
		invoiceID: invoiceID,
		status:    status,
		provider:  provider,
		direction: direction,
		amount:    amount,
		createdAt: time.Now(),
		version:   0,
		events:    make([]shared.DomainEvent, 0),
		isNew:     true,
	}, nil
}

// RecordPayment confirms an external payment: Pending → Success, with
// the provider's reference and the settlement time. PaidAt is non-nil
// exactly when the transaction succeeded.
func (t *Transaction) RecordPayment(externalReference string, paidAt time.Time) error {
	if !CanTransitionTransaction(t.status, TransactionStatusSuccess) {
		return ErrPaymentNotExpected
	}
	t.status = TransactionStatusSuccess
	t.externalReference = externalReference
	t.paidAt = &paidAt
	t.events = append(t.events, NewPaymentRecordedEvent(t.id, t.invoiceID, externalReference))
	return nil
}

// MarkFailed records a payment failure reported by the provider.
func (t *Transaction) MarkFailed(externalReference string) error {
	if !CanTransitionTransaction(t.status, TransactionStatusFailed) {
		return newInvalidTransactionTransition(t.status, TransactionStatusFailed)
	}
	t.status = TransactionStatusFailed
	t.externalReference = externalReference
	return nil
}

// Getters.

func (t *Transaction) ID() string                { return t.id }
func (t *Transaction) UserID() string            { return t.userID }
func (t *Transaction) InvoiceID() string         { return t.invoiceID }
func (t *Transaction) Status() TransactionStatus { return t.status }
func (t *Transaction) Provider() string          { return t.provider }
func (t *Transaction) Direction() Direction      { return t.direction }
func (t *Transaction) Amount() shared.Money      { return t.amount }
func (t *Transaction) ExternalReference() string { return t.externalReference }
func (t *Transaction) CreatedAt() time.Time      { return t.createdAt }
func (t *Transaction) Version() int              { return t.version }

// PaidAt is non-nil exactly when the transaction is Success.
func (t *Transaction) PaidAt() *time.Time {
	if t.paidAt == nil {
		return nil
	}
	p := *t.paidAt
	return &p
}

// Persistence support.

// IsNew reports whether the aggregate has never been persisted.
func (t *Transaction) IsNew() bool { return t.isNew }

// IncrementVersionForSave bumps the optimistic lock version after a
// successful save.
func (t *Transaction) IncrementVersionForSave() {
	t.version++
}

// ClearDirtyTracking resets dirty state after a successful save.
func (t *Transaction) ClearDirtyTracking() {
	t.isNew = false
}

// PullEvents drains recorded domain events.
func (t *Transaction) PullEvents() []shared.DomainEvent {
	events := make([]shared.DomainEvent, len(t.events))
	copy(events, t.events)
	t.events = t.events[:0]
	return events
}

// TransactionReconstructionDTO rebuilds the aggregate from storage;
// repository use only.
type TransactionReconstructionDTO struct {
	ID                string
	UserID            string
	InvoiceID         string
	Status            TransactionStatus
	Provider          string
	Direction         Direction
	Amount            shared.Money
	ExternalReference string
	CreatedAt         time.Time
	PaidAt            *time.Time
	Version           int
}

// RebuildTransaction reconstructs a Transaction from persisted state.
func RebuildTransaction(dto TransactionReconstructionDTO) *Transaction {
	return &Transaction{
		id:                dto.ID,
		userID:            dto.UserID,
		invoiceID:         dto.InvoiceID,
		status:            dto.Status,
		provider:          dto.Provider,
		direction:         dto.Direction,
		amount:            dto.Amount,
		externalReference: dto.ExternalReference,
		createdAt:         dto.CreatedAt,
		paidAt:            dto.PaidAt,
		version:           dto.Version,
	}
}

var _ shared.AggregateRoot = (*Transaction)(nil)
