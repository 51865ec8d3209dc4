package po

import (
	"time"

	"maintdesk/domain/shared"
	"maintdesk/domain/stock"
)

// AccessoryPO persistence object for the accessories table. Quantity is
// updated under an optimistic version check so concurrent finalizes
// cannot oversell.
type AccessoryPO struct {
	ID            string    `gorm:"primaryKey;size:64"`
	Name          string    `gorm:"size:255;not null"`
	Unit          string    `gorm:"size:30"`
	PriceAmount   int64     `gorm:"not null"`
	PriceCurrency string    `gorm:"size:3;not null"`
	Quantity      int       `gorm:"not null"`
	Version       int       `gorm:"default:0"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (AccessoryPO) TableName() string {
	return "accessories"
}

// StockTransactionPO persistence object for the stock_transactions
// ledger table. Rows are insert-only.
type StockTransactionPO struct {
	ID            string    `gorm:"primaryKey;size:64"`
	AccessoryID   string    `gorm:"size:64;index;not null"`
	Quantity      int       `gorm:"not null"`
	Direction     string    `gorm:"size:10;not null"`
	Status        string    `gorm:"size:20;not null"`
	PriceAmount   int64     `gorm:"not null"`
	PriceCurrency string    `gorm:"size:3;not null"`
	TotalAmount   int64     `gorm:"not null"`
	TotalCurrency string    `gorm:"size:3;not null"`
	CreatorID     string    `gorm:"size:64;not null"`
	ApproverID    string    `gorm:"size:64"`
	InvoiceID     string    `gorm:"size:64;index"`
	TransactionID string    `gorm:"size:64"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (StockTransactionPO) TableName() string {
	return "stock_transactions"
}

// FromAccessoryDomain converts the aggregate to its persistence object.
func FromAccessoryDomain(a *stock.Accessory) *AccessoryPO {
	return &AccessoryPO{
		ID:            a.ID(),
		Name:          a.Name(),
		Unit:          a.Unit(),
		PriceAmount:   a.UnitPrice().Amount(),
		PriceCurrency: a.UnitPrice().Currency(),
		Quantity:      a.Quantity(),
		Version:       a.Version(),
		CreatedAt:     a.CreatedAt(),
		UpdatedAt:     a.UpdatedAt(),
	}
}

// ToDomain converts an accessory persistence object back to the
// aggregate.
func (po *AccessoryPO) ToDomain() *stock.Accessory {
	return stock.RebuildAccessory(stock.AccessoryReconstructionDTO{
		ID:        po.ID,
		Name:      po.Name,
		Unit:      po.Unit,
		UnitPrice: *shared.NewMoney(po.PriceAmount, po.PriceCurrency),
		Quantity:  po.Quantity,
		Version:   po.Version,
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	})
}

// FromStockTransactionDomain converts a ledger row to its persistence
// object.
func FromStockTransactionDomain(t *stock.StockTransaction) *StockTransactionPO {
	return &StockTransactionPO{
		ID:            t.ID(),
		AccessoryID:   t.AccessoryID(),
		Quantity:      t.Quantity(),
		Direction:     string(t.Direction()),
		Status:        string(t.Status()),
		PriceAmount:   t.UnitPrice().Amount(),
		PriceCurrency: t.UnitPrice().Currency(),
		TotalAmount:   t.Total().Amount(),
		TotalCurrency: t.Total().Currency(),
		CreatorID:     t.CreatorID(),
		ApproverID:    t.ApproverID(),
		InvoiceID:     t.InvoiceID(),
		TransactionID: t.TransactionID(),
		CreatedAt:     t.CreatedAt(),
	}
}

// ToDomain converts a ledger persistence object back to the entity.
func (po *StockTransactionPO) ToDomain() *stock.StockTransaction {
	return stock.RebuildStockTransaction(stock.StockTransactionReconstructionDTO{
		ID:            po.ID,
		AccessoryID:   po.AccessoryID,
		Quantity:      po.Quantity,
		Direction:     stock.Direction(po.Direction),
		Status:        stock.TransactionStatus(po.Status),
		UnitPrice:     *shared.NewMoney(po.PriceAmount, po.PriceCurrency),
		Total:         *shared.NewMoney(po.TotalAmount, po.TotalCurrency),
		CreatorID:     po.CreatorID,
		ApproverID:    po.ApproverID,
		InvoiceID:     po.InvoiceID,
		TransactionID: po.TransactionID,
		CreatedAt:     po.CreatedAt,
	})
}
