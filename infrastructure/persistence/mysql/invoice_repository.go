package mysql

import (
	"context"
	"errors"

	"maintdesk/domain/billing"
	"maintdesk/infrastructure/persistence"
	"maintdesk/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// InvoiceRepository MySQL/GORM implementation of the invoice
// repository. Line items only change while the invoice is Draft, so
// dirty lines are rewritten wholesale instead of diffed row by row.
type InvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository Create invoice repository
func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Save persists the invoice under an optimistic version check and
// rewrites line rows when they changed since load.
func (r *InvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.saveWithTx(tx, inv)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithTx(tx, inv)
	})
}

func (r *InvoiceRepository) saveWithTx(tx *gorm.DB, inv *billing.Invoice) error {
	invoicePO, accessoryPOs, servicePOs := po.FromInvoiceDomain(inv)

	if inv.IsNew() {
		if err := tx.Create(invoicePO).Error; err != nil {
			return err
		}
		if err := r.insertLines(tx, accessoryPOs, servicePOs); err != nil {
			return err
		}
		inv.ClearDirtyTracking()
		return nil
	}

	expectedVersion := inv.Version()

	result := tx.Model(&po.InvoicePO{}).
		Where("id = ? AND version = ?", inv.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"status":         invoicePO.Status,
			"total_amount":   invoicePO.TotalAmount,
			"total_currency": invoicePO.TotalCurrency,
			"version":        expectedVersion + 1,
			"updated_at":     invoicePO.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&po.InvoicePO{}).Where("id = ?", inv.ID()).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return billing.NewInvoiceNotFoundError(inv.ID())
		}
		return billing.NewConcurrentModificationError("invoice", inv.ID())
	}

	inv.IncrementVersionForSave()

	// Draft-only line edits; replace the full set rather than diffing.
	if inv.LinesDirty() {
		if err := tx.Where("invoice_id = ?", inv.ID()).Delete(&po.InvoiceAccessoryPO{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID()).Delete(&po.InvoiceServicePO{}).Error; err != nil {
			return err
		}
		if err := r.insertLines(tx, accessoryPOs, servicePOs); err != nil {
			return err
		}
	}

	inv.ClearDirtyTracking()
	return nil
}

func (r *InvoiceRepository) insertLines(tx *gorm.DB, accessoryPOs []po.InvoiceAccessoryPO, servicePOs []po.InvoiceServicePO) error {
	if len(accessoryPOs) > 0 {
		if err := tx.Create(&accessoryPOs).Error; err != nil {
			return err
		}
	}
	if len(servicePOs) > 0 {
		if err := tx.Create(&servicePOs).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID loads the invoice with all its line items.
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*billing.Invoice, error) {
	db := r.getDB(ctx)

	var invoicePO po.InvoicePO
	result := db.First(&invoicePO, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, billing.NewInvoiceNotFoundError(id)
		}
		return nil, result.Error
	}

	return r.loadAggregate(db, invoicePO)
}

// FindByRequestID lists invoices raised against a request, oldest
// first.
func (r *InvoiceRepository) FindByRequestID(ctx context.Context, requestID string) ([]*billing.Invoice, error) {
	db := r.getDB(ctx)

	var invoicePOs []po.InvoicePO
	if err := db.Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&invoicePOs).Error; err != nil {
		return nil, err
	}

	invoices := make([]*billing.Invoice, 0, len(invoicePOs))
	for _, p := range invoicePOs {
		inv, err := r.loadAggregate(db, p)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// FindByReportID loads the invoice drafted from an inspection report.
// Each report produces at most one invoice.
func (r *InvoiceRepository) FindByReportID(ctx context.Context, reportID string) (*billing.Invoice, error) {
	db := r.getDB(ctx)

	var invoicePO po.InvoicePO
	result := db.Where("report_id = ?", reportID).First(&invoicePO)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, billing.NewInvoiceNotFoundError(reportID)
		}
		return nil, result.Error
	}

	return r.loadAggregate(db, invoicePO)
}

func (r *InvoiceRepository) loadAggregate(db *gorm.DB, invoicePO po.InvoicePO) (*billing.Invoice, error) {
	var accessoryPOs []po.InvoiceAccessoryPO
	if err := db.Where("invoice_id = ?", invoicePO.ID).Find(&accessoryPOs).Error; err != nil {
		return nil, err
	}

	var servicePOs []po.InvoiceServicePO
	if err := db.Where("invoice_id = ?", invoicePO.ID).Find(&servicePOs).Error; err != nil {
		return nil, err
	}

	return invoicePO.ToDomain(accessoryPOs, servicePOs), nil
}
