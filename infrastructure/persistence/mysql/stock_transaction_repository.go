package mysql

import (
	"context"

	"maintdesk/domain/stock"
	"maintdesk/infrastructure/persistence"
	"maintdesk/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// StockTransactionRepository MySQL/GORM implementation of the stock
// movement ledger. Rows are insert-only; corrections are compensating
// entries, never updates.
type StockTransactionRepository struct {
	db *gorm.DB
}

// NewStockTransactionRepository Create stock transaction repository
func NewStockTransactionRepository(db *gorm.DB) *StockTransactionRepository {
	return &StockTransactionRepository{db: db}
}

func (r *StockTransactionRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Insert appends a movement to the ledger.
func (r *StockTransactionRepository) Insert(ctx context.Context, t *stock.StockTransaction) error {
	db := r.getDB(ctx)
	return db.Create(po.FromStockTransactionDomain(t)).Error
}

// FindByInvoiceID lists the movements a settlement produced, oldest
// first.
func (r *StockTransactionRepository) FindByInvoiceID(ctx context.Context, invoiceID string) ([]*stock.StockTransaction, error) {
	return r.findWhere(ctx, "invoice_id = ?", invoiceID)
}

// FindByAccessoryID lists an accessory's movement history, oldest
// first.
func (r *StockTransactionRepository) FindByAccessoryID(ctx context.Context, accessoryID string) ([]*stock.StockTransaction, error) {
	return r.findWhere(ctx, "accessory_id = ?", accessoryID)
}

func (r *StockTransactionRepository) findWhere(ctx context.Context, query string, arg string) ([]*stock.StockTransaction, error) {
	db := r.getDB(ctx)

	var transactionPOs []po.StockTransactionPO
	if err := db.Where(query, arg).
		Order("created_at ASC").
		Find(&transactionPOs).Error; err != nil {
		return nil, err
	}

	transactions := make([]*stock.StockTransaction, len(transactionPOs))
	for i, p := range transactionPOs {
		transactions[i] = p.ToDomain()
	}
	return transactions, nil
}
