package mysql

import (
	"maintdesk/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for every persistence
// object. Intended for development environments only; production
// schemas are managed by migration scripts.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&po.RepairRequestPO{},
		&po.RequestTrackingPO{},
		&po.FeedbackPO{},
		&po.AppointmentPO{},
		&po.WorkOrderPO{},
		&po.AppointmentTrackingPO{},
		&po.ReportPO{},
		&po.ReportApprovalPO{},
		&po.InvoicePO{},
		&po.InvoiceAccessoryPO{},
		&po.InvoiceServicePO{},
		&po.TransactionPO{},
		&po.AccessoryPO{},
		&po.StockTransactionPO{},
		&po.OutboxEventPO{},
	)
}
