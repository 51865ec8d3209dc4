package stock

import (
	"time"

	"maintdesk/domain/shared"
	"maintdesk/domain/stock"
)

type ActorClaims struct {
	ActorID   string `json:"actor_id" binding:"required"`
	ActorRole string `json:"actor_role" binding:"required"`
}

func (c ActorClaims) actor() (shared.Actor, error) {
	role, ok := shared.ParseRole(c.ActorRole)
	if !ok {
		return shared.Actor{}, shared.NewValidationError("actor", "role", "unknown role")
	}
	return shared.Actor{ID: c.ActorID, Role: role}, nil
}

// CreateAccessoryCommand Create accessory DTO
type CreateAccessoryCommand struct {
	Name      string `json:"name" binding:"required"`
	Unit      string `json:"unit"`
	UnitPrice int64  `json:"unit_price" binding:"min=0"`
	Currency  string `json:"currency" binding:"required"`
}

// UpdateAccessoryCommand Update accessory DTO
type UpdateAccessoryCommand struct {
	AccessoryID string `json:"-"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	UnitPrice   *int64 `json:"unit_price"`
	Currency    string `json:"currency"`
}

// AdjustStockCommand Manual stock movement DTO
type AdjustStockCommand struct {
	AccessoryID string `json:"-"`
	Direction   string `json:"direction" binding:"required,oneof=IMPORT EXPORT"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	UnitPrice   *int64 `json:"unit_price"`
	Currency    string `json:"currency"`
	ActorClaims
}

// MoneyResponse Money response DTO
type MoneyResponse struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// AccessoryResponse Accessory response DTO
type AccessoryResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Unit      string        `json:"unit,omitempty"`
	UnitPrice MoneyResponse `json:"unit_price"`
	Quantity  int           `json:"quantity"`
	CreatedAt time.Time     `json:"created_at"`
}

// StockTransactionResponse One ledger movement
type StockTransactionResponse struct {
	ID            string        `json:"id"`
	AccessoryID   string        `json:"accessory_id"`
	Quantity      int           `json:"quantity"`
	Direction     string        `json:"direction"`
	Status        string        `json:"status"`
	UnitPrice     MoneyResponse `json:"unit_price"`
	Total         MoneyResponse `json:"total"`
	CreatorID     string        `json:"creator_id"`
	ApproverID    string        `json:"approver_id,omitempty"`
	InvoiceID     string        `json:"invoice_id,omitempty"`
	TransactionID string        `json:"transaction_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

func toAccessoryResponse(a *stock.Accessory) *AccessoryResponse {
	return &AccessoryResponse{
		ID:        a.ID(),
		Name:      a.Name(),
		Unit:      a.Unit(),
		UnitPrice: MoneyResponse{Amount: a.UnitPrice().Amount(), Currency: a.UnitPrice().Currency()},
		Quantity:  a.Quantity(),
		CreatedAt: a.CreatedAt(),
	}
}

func toStockTransactionResponse(t *stock.StockTransaction) *StockTransactionResponse {
	return &StockTransactionResponse{
		ID:            t.ID(),
		AccessoryID:   t.AccessoryID(),
		Quantity:      t.Quantity(),
		Direction:     string(t.Direction()),
		Status:        string(t.Status()),
		UnitPrice:     MoneyResponse{Amount: t.UnitPrice().Amount(), Currency: t.UnitPrice().Currency()},
		Total:         MoneyResponse{Amount: t.Total().Amount(), Currency: t.Total().Currency()},
		CreatorID:     t.CreatorID(),
		ApproverID:    t.ApproverID(),
		InvoiceID:     t.InvoiceID(),
		TransactionID: t.TransactionID(),
		CreatedAt:     t.CreatedAt(),
	}
}
