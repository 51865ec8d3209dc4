package billing

import (
	"time"

	"maintdesk/domain/billing"
	"maintdesk/domain/shared"
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

// AddAccessoryLineCommand Add accessory line DTO. Name and unit price
// are only honored for free-form lines without a catalogue reference.
type AddAccessoryLineCommand struct {
	InvoiceID   string `json:"-"`
	AccessoryID string `json:"accessory_id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	UnitPrice   int64  `json:"unit_price" binding:"min=0"`
	Currency    string `json:"currency"`
	Source      string `json:"source" binding:"required,oneof=FROM_STOCK TO_BE_PURCHASED"`
}

// AddServiceLineCommand Add service line DTO
type AddServiceLineCommand struct {
	InvoiceID string `json:"-"`
	Name      string `json:"name" binding:"required"`
	Price     int64  `json:"price" binding:"required,min=0"`
	Currency  string `json:"currency" binding:"required"`
}

// FinalizeCommand Settle invoice DTO
type FinalizeCommand struct {
	InvoiceID string `json:"-"`
	ActorClaims
}

// RecordPaymentCommand Payment callback DTO
type RecordPaymentCommand struct {
	TransactionID     string    `json:"-"`
	ExternalReference string    `json:"external_reference" binding:"required"`
	PaidAt            time.Time `json:"paid_at" binding:"required"`
}

// MoneyResponse Money response DTO
type MoneyResponse struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// AccessoryLineResponse Accessory line response DTO
type AccessoryLineResponse struct {
	ID          string        `json:"id"`
	AccessoryID string        `json:"accessory_id,omitempty"`
	Name        string        `json:"name"`
	Quantity    int           `json:"quantity"`
	UnitPrice   MoneyResponse `json:"unit_price"`
	Source      string        `json:"source"`
}

// ServiceLineResponse Service line response DTO
type ServiceLineResponse struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Price MoneyResponse `json:"price"`
}

// InvoiceResponse Invoice response DTO
type InvoiceResponse struct {
	ID             string                  `json:"id"`
	RequestID      string                  `json:"request_id"`
	ReportID       string                  `json:"report_id"`
	Chargeable     bool                    `json:"chargeable"`
	Type           string                  `json:"type"`
	Status         string                  `json:"status"`
	Total          MoneyResponse           `json:"total"`
	AccessoryLines []AccessoryLineResponse `json:"accessory_lines"`
	ServiceLines   []ServiceLineResponse   `json:"service_lines"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// TransactionResponse Payment transaction response DTO
type TransactionResponse struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id"`
	InvoiceID         string        `json:"invoice_id"`
	Status            string        `json:"status"`
	Provider          string        `json:"provider,omitempty"`
	Direction         string        `json:"direction"`
	Amount            MoneyResponse `json:"amount"`
	ExternalReference string        `json:"external_reference,omitempty"`
	PaidAt            *time.Time    `json:"paid_at,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// SettlementResponse Finalize result: the settled invoice plus the
// payment leg it opened
type SettlementResponse struct {
	Invoice     *InvoiceResponse     `json:"invoice"`
	Transaction *TransactionResponse `json:"transaction"`
}

func toMoneyResponse(m shared.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Amount(), Currency: m.Currency()}
}

func toInvoiceResponse(inv *billing.Invoice) *InvoiceResponse {
	accessoryLines := make([]AccessoryLineResponse, len(inv.AccessoryLines()))
	for i, l := range inv.AccessoryLines() {
		accessoryLines[i] = AccessoryLineResponse{
			ID:          l.ID(),
			AccessoryID: l.AccessoryID(),
			Name:        l.Name(),
			Quantity:    l.Quantity(),
			UnitPrice:   toMoneyResponse(l.UnitPrice()),
			Source:      string(l.Source()),
		}
	}

	serviceLines := make([]ServiceLineResponse, len(inv.ServiceLines()))
	for i, l := range inv.ServiceLines() {
		serviceLines[i] = ServiceLineResponse{
			ID:    l.ID(),
			Name:  l.Name(),
			Price: toMoneyResponse(l.Price()),
		}
	}

	return &InvoiceResponse{
		ID:             inv.ID(),
		RequestID:      inv.RequestID(),
		ReportID:       inv.ReportID(),
		Chargeable:     inv.Chargeable(),
		Type:           string(inv.Type()),
		Status:         string(inv.Status()),
		Total:          toMoneyResponse(inv.Total()),
		AccessoryLines: accessoryLines,
		ServiceLines:   serviceLines,
		CreatedAt:      inv.CreatedAt(),
		UpdatedAt:      inv.UpdatedAt(),
	}
}

func toTransactionResponse(t *billing.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                t.ID(),
		UserID:            t.UserID(),
		InvoiceID:         t.InvoiceID(),
		Status:            string(t.Status()),
		Provider:          t.Provider(),
		Direction:         string(t.Direction()),
		Amount:            toMoneyResponse(t.Amount()),
		ExternalReference: t.ExternalReference(),
		PaidAt:            t.PaidAt(),
		CreatedAt:         t.CreatedAt(),
	}
}
