package stock

import "context"

// AccessoryRepository persists Accessory aggregates. Save carries the
// optimistic version check that serializes concurrent exports of the
// same accessory.
type AccessoryRepository interface {
	Save(ctx context.Context, a *Accessory) error
	FindByID(ctx context.Context, id string) (*Accessory, error)
	FindAll(ctx context.Context) ([]*Accessory, error)
}

// StockTransactionRepository persists the append-only movement ledger.
type StockTransactionRepository interface {
	Insert(ctx context.Context, tx *StockTransaction) error
	FindByInvoiceID(ctx context.Context, invoiceID string) ([]*StockTransaction, error)
	FindByAccessoryID(ctx context.Context, accessoryID string) ([]*StockTransaction, error)
}
