package billing

import "context"

// InvoiceRepository persists Invoice aggregates.
type InvoiceRepository interface {
	Save(ctx context.Context, inv *Invoice) error
	FindByID(ctx context.Context, id string) (*Invoice, error)
	FindByRequestID(ctx context.Context, requestID string) ([]*Invoice, error)
	FindByReportID(ctx context.Context, reportID string) (*Invoice, error)
}

// TransactionRepository persists payment Transaction aggregates.
type TransactionRepository interface {
	Save(ctx context.Context, t *Transaction) error
	FindByID(ctx context.Context, id string) (*Transaction, error)
	FindByInvoiceID(ctx context.Context, invoiceID string) ([]*Transaction, error)
}
