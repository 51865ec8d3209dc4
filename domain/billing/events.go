package billing

import "maintdesk/domain/shared"

const (
	InvoiceApprovedEventName  = "invoice.approved"
	InvoicePaidEventName      = "invoice.paid"
	InvoiceCancelledEventName = "invoice.cancelled"
	PaymentRecordedEventName  = "transaction.payment_recorded"
)

// InvoiceApprovedEvent is raised when a Draft invoice is finalized.
type InvoiceApprovedEvent struct {
	shared.BaseEvent
}

func NewInvoiceApprovedEvent(invoiceID, requestID string, chargeable bool, amount int64, currency string) *InvoiceApprovedEvent {
	return &InvoiceApprovedEvent{
		BaseEvent: shared.NewBaseEvent(InvoiceApprovedEventName, invoiceID, map[string]any{
			"invoice_id": invoiceID,
			"request_id": requestID,
			"chargeable": chargeable,
			"amount":     amount,
			"currency":   currency,
		}),
	}
}

// InvoicePaidEvent is raised when the invoice settles. The
// reconciliation guard listens for this.
type InvoicePaidEvent struct {
	shared.BaseEvent
}

func NewInvoicePaidEvent(invoiceID, requestID string) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseEvent: shared.NewBaseEvent(InvoicePaidEventName, invoiceID, map[string]any{
			"invoice_id": invoiceID,
			"request_id": requestID,
		}),
	}
}

// InvoiceCancelledEvent is raised when a Draft invoice is aborted.
type InvoiceCancelledEvent struct {
	shared.BaseEvent
}

func NewInvoiceCancelledEvent(invoiceID, requestID, reason string) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseEvent: shared.NewBaseEvent(InvoiceCancelledEventName, invoiceID, map[string]any{
			"invoice_id": invoiceID,
			"request_id": requestID,
			"reason":     reason,
		}),
	}
}

// PaymentRecordedEvent is raised when an external payment confirmation
// lands on a pending transaction.
type PaymentRecordedEvent struct {
	shared.BaseEvent
}

func NewPaymentRecordedEvent(transactionID, invoiceID, externalReference string) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseEvent: shared.NewBaseEvent(PaymentRecordedEventName, transactionID, map[string]any{
			"transaction_id":     transactionID,
			"invoice_id":         invoiceID,
			"external_reference": externalReference,
		}),
	}
}
