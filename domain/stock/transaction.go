package stock

import (
	"fmt"
	"time"

	"maintdesk/domain/shared"

	"github.com/google/uuid"
)

// Direction of a stock movement.
type Direction string

const (
	DirectionImport Direction = "IMPORT"
	DirectionExport Direction = "EXPORT"
)

// ParseDirection validates a raw direction string.
func ParseDirection(raw string) (Direction, bool) {
	d := Direction(raw)
	switch d {
	case DirectionImport, DirectionExport:
		return d, true
	}
	return "", false
}

// TransactionStatus of a ledger row. Only Approved rows count toward
// the on-hand quantity; rows created through the Accessory aggregate
// are born Approved.
type TransactionStatus string

const (
	TransactionStatusApproved TransactionStatus = "APPROVED"
	TransactionStatusRejected TransactionStatus = "REJECTED"
)

// StockTransaction is one append-only ledger row. Immutable once
// written; the optional invoice and payment references link settlement
// movements back to their origin.
type StockTransaction struct {
	id          string
	accessoryID string
	quantity    int
	direction   Direction
	status      TransactionStatus
	unitPrice   shared.Money
	total       shared.Money

	creatorID  string
	approverID string

	invoiceID     string
	transactionID string

	createdAt time.Time
}

func newStockTransaction(accessoryID string, quantity int, direction Direction, unitPrice shared.Money, creator shared.Actor, invoiceID string) (*StockTransaction, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate stock transaction ID: %w", err)
	}
	total, err := unitPrice.Multiply(quantity)
	if err != nil {
		return nil, err
	}
	return &StockTransaction{
		id:          id.String(),
		accessoryID: accessoryID,
		quantity:    quantity,
		direction:   direction,
		status:      TransactionStatusApproved,
		unitPrice:   unitPrice,
		total:       *total,
		creatorID:   creator.ID,
		approverID:  creator.ID,
		invoiceID:   invoiceID,
		createdAt:   time.Now(),
	}, nil
}

// LinkPayment attaches the payment transaction id once settlement
// creates it.
func (t *StockTransaction) LinkPayment(transactionID string) {
	t.transactionID = transactionID
}

func (t *StockTransaction) ID() string                { return t.id }
func (t *StockTransaction) AccessoryID() string       { return t.accessoryID }
func (t *StockTransaction) Quantity() int             { return t.quantity }
func (t *StockTransaction) Direction() Direction      { return t.direction }
func (t *StockTransaction) Status() TransactionStatus { return t.status }
func (t *StockTransaction) UnitPrice() shared.Money   { return t.unitPrice }
func (t *StockTransaction) Total() shared.Money       { return t.total }
func (t *StockTransaction) CreatorID() string         { return t.creatorID }
func (t *StockTransaction) ApproverID() string        { return t.approverID }
func (t *StockTransaction) InvoiceID() string         { return t.invoiceID }
func (t *StockTransaction) TransactionID() string     { return t.transactionID }
func (t *StockTransaction) CreatedAt() time.Time      { return t.createdAt }

// StockTransactionReconstructionDTO rebuilds one ledger row from
// storage.
type StockTransactionReconstructionDTO struct {
	ID            string
	AccessoryID   string
	Quantity      int
	Direction     Direction
	Status        TransactionStatus
	UnitPrice     shared.Money
	Total         shared.Money
	CreatorID     string
	ApproverID    string
	InvoiceID     string
	TransactionID string
	CreatedAt     time.Time
}

// RebuildStockTransaction reconstructs a StockTransaction from
// persisted state.
func RebuildStockTransaction(dto StockTransactionReconstructionDTO) *StockTransaction {
	return &StockTransaction{
		id:            dto.ID,
		accessoryID:   dto.AccessoryID,
		quantity:      dto.Quantity,
		direction:     dto.Direction,
		status:        dto.Status,
		unitPrice:     dto.UnitPrice,
		total:         dto.Total,
		creatorID:     dto.CreatorID,
		approverID:    dto.ApproverID,
		invoiceID:     dto.InvoiceID,
		transactionID: dto.TransactionID,
		createdAt:     dto.CreatedAt,
	}
}
