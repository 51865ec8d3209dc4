package po

import (
	"time"

	"maintdesk/domain/billing"
	"maintdesk/domain/shared"
)

// InvoicePO persistence object for the invoices table.
type InvoicePO struct {
	ID            string    `gorm:"primaryKey;size:64"`
	RequestID     string    `gorm:"size:64;index;not null"`
	ReportID      string    `gorm:"size:64;index;not null"`
	Chargeable    bool      `gorm:"not null"`
	Type          string    `gorm:"size:30;not null"`
	Status        string    `gorm:"size:20;index;not null"`
	TotalAmount   int64     `gorm:"not null"`
	TotalCurrency string    `gorm:"size:3;not null"`
	Version       int       `gorm:"default:0"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (InvoicePO) TableName() string {
	return "invoices"
}

// InvoiceAccessoryPO persistence object for the invoice_accessories
// table. (invoice_id, accessory_id, source_type) is unique when the
// accessory reference is present.
type InvoiceAccessoryPO struct {
	ID            string `gorm:"primaryKey;size:128"`
	InvoiceID     string `gorm:"size:64;index;not null"`
	AccessoryID   string `gorm:"size:64;index"`
	Name          string `gorm:"size:255;not null"`
	Quantity      int    `gorm:"not null"`
	PriceAmount   int64  `gorm:"not null"`
	PriceCurrency string `gorm:"size:3;not null"`
	SourceType    string `gorm:"size:20;not null"`
}

func (InvoiceAccessoryPO) TableName() string {
	return "invoice_accessories"
}

// InvoiceServicePO persistence object for the invoice_services table.
type InvoiceServicePO struct {
	ID            string `gorm:"primaryKey;size:128"`
	InvoiceID     string `gorm:"size:64;index;not null"`
	Name          string `gorm:"size:255;not null"`
	PriceAmount   int64  `gorm:"not null"`
	PriceCurrency string `gorm:"size:3;not null"`
}

func (InvoiceServicePO) TableName() string {
	return "invoice_services"
}

// TransactionPO persistence object for the transactions ledger table.
type TransactionPO struct {
	ID                string     `gorm:"primaryKey;size:64"`
	UserID            string     `gorm:"size:64;index;not null"`
	InvoiceID         string     `gorm:"size:64;index"`
	Status            string     `gorm:"size:20;index;not null"`
	Provider          string     `gorm:"size:50"`
	Direction         string     `gorm:"size:10;not null"`
	Amount            int64      `gorm:"not null"`
	Currency          string     `gorm:"size:3;not null"`
	ExternalReference string     `gorm:"size:128"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	PaidAt            *time.Time `gorm:""`
	Version           int        `gorm:"default:0"`
}

func (TransactionPO) TableName() string {
	return "transactions"
}

// FromInvoiceDomain converts the aggregate to persistence objects. Line
// rows are returned in full; the repository rewrites them while the
// invoice is Draft and never touches them afterwards.
func FromInvoiceDomain(inv *billing.Invoice) (*InvoicePO, []InvoiceAccessoryPO, []InvoiceServicePO) {
	invoicePO := &InvoicePO{
		ID:            inv.ID(),
		RequestID:     inv.RequestID(),
		ReportID:      inv.ReportID(),
		Chargeable:    inv.Chargeable(),
		Type:          string(inv.Type()),
		Status:        string(inv.Status()),
		TotalAmount:   inv.Total().Amount(),
		TotalCurrency: inv.Total().Currency(),
		Version:       inv.Version(),
		CreatedAt:     inv.CreatedAt(),
		UpdatedAt:     inv.UpdatedAt(),
	}

	accessories := inv.AccessoryLines()
	accessoryPOs := make([]InvoiceAccessoryPO, len(accessories))
	for i, l := range accessories {
		accessoryPOs[i] = InvoiceAccessoryPO{
			ID:            l.ID(),
			InvoiceID:     inv.ID(),
			AccessoryID:   l.AccessoryID(),
			Name:          l.Name(),
			Quantity:      l.Quantity(),
			PriceAmount:   l.UnitPrice().Amount(),
			PriceCurrency: l.UnitPrice().Currency(),
			SourceType:    string(l.Source()),
		}
	}

	services := inv.ServiceLines()
	servicePOs := make([]InvoiceServicePO, len(services))
	for i, l := range services {
		servicePOs[i] = InvoiceServicePO{
			ID:            l.ID(),
			InvoiceID:     inv.ID(),
			Name:          l.Name(),
			PriceAmount:   l.Price().Amount(),
			PriceCurrency: l.Price().Currency(),
		}
	}

	return invoicePO, accessoryPOs, servicePOs
}

// ToDomain converts persistence objects back to the aggregate.
func (po *InvoicePO) ToDomain(accessoryPOs []InvoiceAccessoryPO, servicePOs []InvoiceServicePO) *billing.Invoice {
	accessories := make([]billing.AccessoryLine, len(accessoryPOs))
	for i, l := range accessoryPOs {
		accessories[i] = billing.RebuildAccessoryLine(billing.AccessoryLineReconstructionDTO{
			ID:          l.ID,
			AccessoryID: l.AccessoryID,
			Name:        l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   *shared.NewMoney(l.PriceAmount, l.PriceCurrency),
			Source:      billing.SourceType(l.SourceType),
		})
	}

	services := make([]billing.ServiceLine, len(servicePOs))
	for i, l := range servicePOs {
		services[i] = billing.RebuildServiceLine(billing.ServiceLineReconstructionDTO{
			ID:    l.ID,
			Name:  l.Name,
			Price: *shared.NewMoney(l.PriceAmount, l.PriceCurrency),
		})
	}

	return billing.RebuildInvoice(billing.InvoiceReconstructionDTO{
		ID:          po.ID,
		RequestID:   po.RequestID,
		ReportID:    po.ReportID,
		Chargeable:  po.Chargeable,
		Type:        billing.InvoiceType(po.Type),
		Status:      billing.InvoiceStatus(po.Status),
		Total:       *shared.NewMoney(po.TotalAmount, po.TotalCurrency),
		Accessories: accessories,
		Services:    services,
		Version:     po.Version,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	})
}

// FromTransactionDomain converts the aggregate to its persistence
// object.
func FromTransactionDomain(t *billing.Transaction) *TransactionPO {
	return &TransactionPO{
		ID:                t.ID(),
		UserID:            t.UserID(),
		InvoiceID:         t.InvoiceID(),
		Status:            string(t.Status()),
		Provider:          t.Provider(),
		Direction:         string(t.Direction()),
		Amount:            t.Amount().Amount(),
		Currency:          t.Amount().Currency(),
		ExternalReference: t.ExternalReference(),
		CreatedAt:         t.CreatedAt(),
		PaidAt:            t.PaidAt(),
		Version:           t.Version(),
	}
}

// ToDomain converts a transaction persistence object back to the
// aggregate.
func (po *TransactionPO) ToDomain() *billing.Transaction {
	return billing.RebuildTransaction(billing.TransactionReconstructionDTO{
		ID:                po.ID,
		UserID:            po.UserID,
		InvoiceID:         po.InvoiceID,
		Status:            billing.TransactionStatus(po.Status),
		Provider:          po.Provider,
		Direction:         billing.Direction(po.Direction),
		Amount:            *shared.NewMoney(po.Amount, po.Currency),
		ExternalReference: po.ExternalReference,
		CreatedAt:         po.CreatedAt,
		PaidAt:            po.PaidAt,
		Version:           po.Version,
	})
}
