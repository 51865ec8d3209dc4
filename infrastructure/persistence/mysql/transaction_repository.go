package mysql

import (
	"context"
	"errors"

	"maintdesk/domain/billing"
	"maintdesk/infrastructure/persistence"
	"maintdesk/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// TransactionRepository MySQL/GORM implementation of the payment
// transaction repository.
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository Create transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Save persists the transaction. Status moves are guarded by the
// optimistic version check; a gateway callback racing a manual update
// loses cleanly.
func (r *TransactionRepository) Save(ctx context.Context, t *billing.Transaction) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.saveWithTx(tx, t)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithTx(tx, t)
	})
}

func (r *TransactionRepository) saveWithTx(tx *gorm.DB, t *billing.Transaction) error {
	transactionPO := po.FromTransactionDomain(t)

	if t.IsNew() {
		if err := tx.Create(transactionPO).Error; err != nil {
			return err
		}
		t.ClearDirtyTracking()
		return nil
	}

	expectedVersion := t.Version()

	result := tx.Model(&po.TransactionPO{}).
		Where("id = ? AND version = ?", t.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"status":             transactionPO.Status,
			"external_reference": transactionPO.ExternalReference,
			"paid_at":            transactionPO.PaidAt,
			"version":            expectedVersion + 1,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&po.TransactionPO{}).Where("id = ?", t.ID()).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return billing.NewTransactionNotFoundError(t.ID())
		}
		return billing.NewConcurrentModificationError("transaction", t.ID())
	}

	t.IncrementVersionForSave()
	t.ClearDirtyTracking()
	return nil
}

// FindByID loads a transaction.
func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*billing.Transaction, error) {
	db := r.getDB(ctx)

	var transactionPO po.TransactionPO
	result := db.First(&transactionPO, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, billing.NewTransactionNotFoundError(id)
		}
		return nil, result.Error
	}

	return transactionPO.ToDomain(), nil
}

// FindByInvoiceID lists the payment attempts recorded against an
// invoice, oldest first.
func (r *TransactionRepository) FindByInvoiceID(ctx context.Context, invoiceID string) ([]*billing.Transaction, error) {
	db := r.getDB(ctx)

	var transactionPOs []po.TransactionPO
	if err := db.Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&transactionPOs).Error; err != nil {
		return nil, err
	}

	transactions := make([]*billing.Transaction, len(transactionPOs))
	for i, p := range transactionPOs {
		transactions[i] = p.ToDomain()
	}
	return transactions, nil
}
