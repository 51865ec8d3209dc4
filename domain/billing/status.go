package billing

// InvoiceStatus enumerates the invoice settlement lifecycle.
type InvoiceStatus string

const (
	InvoiceStatusDraft           InvoiceStatus = "DRAFT"
	InvoiceStatusApproved        InvoiceStatus = "APPROVED"
	InvoiceStatusAwaitingPayment InvoiceStatus = "AWAITING_PAYMENT"
	InvoiceStatusPaid            InvoiceStatus = "PAID"
	InvoiceStatusCancelled       InvoiceStatus = "CANCELLED"
)

// allowedInvoiceTransitions is the closed transition table. Cancellation
// is legal from Draft only; an invoice is never reopened after Paid.
var allowedInvoiceTransitions = map[InvoiceStatus]map[InvoiceStatus]bool{
	InvoiceStatusDraft: {
		InvoiceStatusApproved:  true,
		InvoiceStatusCancelled: true,
	},
	InvoiceStatusApproved: {
		InvoiceStatusAwaitingPayment: true,
		InvoiceStatusPaid:            true,
	},
	InvoiceStatusAwaitingPayment: {
		InvoiceStatusPaid: true,
	},
	InvoiceStatusPaid:      {},
	InvoiceStatusCancelled: {},
}

// CanTransitionInvoice reports whether from → to is a legal invoice move.
func CanTransitionInvoice(from, to InvoiceStatus) bool {
	return allowedInvoiceTransitions[from][to]
}

// IsTerminal reports whether the status admits no further transition.
func (s InvoiceStatus) IsTerminal() bool {
	return len(allowedInvoiceTransitions[s]) == 0
}

// ParseInvoiceStatus validates a raw status string.
func ParseInvoiceStatus(raw string) (InvoiceStatus, bool) {
	s := InvoiceStatus(raw)
	_, ok := allowedInvoiceTransitions[s]
	return s, ok
}

// InvoiceType distinguishes in-house repair billing from external
// contractor billing.
type InvoiceType string

const (
	InvoiceTypeInternalRepair     InvoiceType = "INTERNAL_REPAIR"
	InvoiceTypeExternalContractor InvoiceType = "EXTERNAL_CONTRACTOR"
)

// ParseInvoiceType validates a raw type string.
func ParseInvoiceType(raw string) (InvoiceType, bool) {
	t := InvoiceType(raw)
	switch t {
	case InvoiceTypeInternalRepair, InvoiceTypeExternalContractor:
		return t, true
	}
	return "", false
}

// SourceType tells the settlement step where an accessory line is
// sourced from: existing stock (exported on finalize) or a purchase
// (imported on finalize).
type SourceType string

const (
	SourceFromStock     SourceType = "FROM_STOCK"
	SourceToBePurchased SourceType = "TO_BE_PURCHASED"
)

// ParseSourceType validates a raw source string.
func ParseSourceType(raw string) (SourceType, bool) {
	s := SourceType(raw)
	switch s {
	case SourceFromStock, SourceToBePurchased:
		return s, true
	}
	return "", false
}

// TransactionStatus enumerates the payment ledger lifecycle.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

var allowedTransactionTransitions = map[TransactionStatus]map[TransactionStatus]bool{
	TransactionStatusPending: {
		TransactionStatusSuccess: true,
		TransactionStatusFailed:  true,
	},
	TransactionStatusSuccess: {},
	TransactionStatusFailed:  {},
}

// CanTransitionTransaction reports whether from → to is a legal move.
func CanTransitionTransaction(from, to TransactionStatus) bool {
	return allowedTransactionTransitions[from][to]
}

// ParseTransactionStatus validates a raw status string.
func ParseTransactionStatus(raw string) (TransactionStatus, bool) {
	s := TransactionStatus(raw)
	_, ok := allowedTransactionTransitions[s]
	return s, ok
}

// Direction tells whether money flows into or out of the operator.
type Direction string

const (
	DirectionIncome  Direction = "INCOME"
	DirectionExpense Direction = "EXPENSE"
)

// ParseDirection validates a raw direction string.
func ParseDirection(raw string) (Direction, bool) {
	d := Direction(raw)
	switch d {
	case DirectionIncome, DirectionExpense:
		return d, true
	}
	return "", false
}
