/*
Package stock holds the accessory inventory: the Accessory aggregate
with its on-hand quantity and the append-only Import/Export transaction
ledger. The on-hand quantity is the running sum of approved imports
minus approved exports and never goes negative; exports are validated
against a fresh read inside the same database transaction as the
invoice finalize that requests them.
*/
package stock

import (
	"fmt"
	"time"

	"maintdesk/domain/shared"

	"github.com/google/uuid"
)

// Accessory aggregate root. Quantity changes only through Import and
// Export, each of which yields a ledger row for the caller to persist
// alongside the aggregate.
type Accessory struct {
	id        string
	name      string
	unit      string
	unitPrice shared.Money
	quantity  int

	version   int
	createdAt time.Time
	updatedAt time.Time

	events []shared.DomainEvent
	isNew  bool
}

// NewAccessory registers an accessory with zero stock.
func NewAccessory(name, unit string, unitPrice shared.Money) (*Accessory, error) {
	if name == "" {
		return nil, shared.NewValidationError("accessory", "name", "name is required")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("accessory", "unit_price", "price must not be negative")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate accessory ID: %w", err)
	}

	now := time.Now()
	return &Accessory{
		id:        id.String(),
		name:      name,
		unit:      unit,
		unitPrice: unitPrice,
		quantity:  0,
		version:   0,
		createdAt: now,
		updatedAt: now,
		events:    make([]shared.DomainEvent, 0),
		isNew:     true,
	}, nil
}

// Export decrements on-hand stock and returns the approved ledger row.
// Fails with InsufficientStock when the requested quantity exceeds what
// is on hand; the aggregate is left untouched in that case.
func (a *Accessory) Export(quantity int, creator shared.Actor, invoiceID string) (*StockTransaction, error) {
	if quantity <= 0 {
		return nil, shared.NewValidationError("stock_transaction", "quantity", "quantity must be positive")
	}
	if quantity > a.quantity {
		return nil, NewInsufficientStockError(a.id, a.quantity, quantity)
	}

	tx, err := newStockTransaction(a.id, quantity, DirectionExport, a.unitPrice, creator, invoiceID)
	if err != nil {
		return nil, err
	}
	a.quantity -= quantity
	a.updatedAt = time.Now()
	a.events = append(a.events, NewStockAdjustedEvent(a.id, string(DirectionExport), quantity, a.quantity))
	return tx, nil
}

// Import increments on-hand stock and returns the approved ledger row.
// No shortage check applies.
func (a *Accessory) Import(quantity int, unitPrice shared.Money, creator shared.Actor, invoiceID string) (*StockTransaction, error) {
	if quantity <= 0 {
		return nil, shared.NewValidationError("stock_transaction", "quantity", "quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("stock_transaction", "unit_price", "price must not be negative")
	}

	tx, err := newStockTransaction(a.id, quantity, DirectionImport, unitPrice, creator, invoiceID)
	if err != nil {
		return nil, err
	}
	a.quantity += quantity
	a.updatedAt = time.Now()
	a.events = append(a.events, NewStockAdjustedEvent(a.id, string(DirectionImport), quantity, a.quantity))
	return tx, nil
}

// Rename updates the catalog fields.
func (a *Accessory) Rename(name, unit string) error {
	if name == "" {
		return shared.NewValidationError("accessory", "name", "name is required")
	}
	a.name = name
	a.unit = unit
	a.updatedAt = time.Now()
	return nil
}

// RepriceUnit updates the default unit price used for exports.
func (a *Accessory) RepriceUnit(unitPrice shared.Money) error {
	if unitPrice.IsNegative() {
		return shared.NewValidationError("accessory", "unit_price", "price must not be negative")
	}
	a.unitPrice = unitPrice
	a.updatedAt = time.Now()
	return nil
}

// Getters.

func (a *Accessory) ID() string              { return a.id }
func (a *Accessory) Name() string            { return a.name }
func (a *Accessory) Unit() string            { return a.unit }
func (a *Accessory) UnitPrice() shared.Money { return a.unitPrice }
func (a *Accessory) Quantity() int           { return a.quantity }
func (a *Accessory) Version() int            { return a.version }
func (a *Accessory) CreatedAt() time.Time    { return a.createdAt }
func (a *Accessory) UpdatedAt() time.Time    { return a.updatedAt }

// Persistence support.

// IsNew reports whether the aggregate has never been persisted.
func (a *Accessory) IsNew() bool { return a.isNew }

// IncrementVersionForSave bumps the optimistic lock version after a
// successful save.
func (a *Accessory) IncrementVersionForSave() {
	a.version++
}

// ClearDirtyTracking resets dirty state after a successful save.
func (a *Accessory) ClearDirtyTracking() {
	a.isNew = false
}

// PullEvents drains recorded domain events.
func (a *Accessory) PullEvents() []shared.DomainEvent {
	events := make([]shared.DomainEvent, len(a.events))
	copy(events, a.events)
	a.events = a.events[:0]
	return events
}

// AccessoryReconstructionDTO rebuilds the aggregate from storage;
// repository use only.
type AccessoryReconstructionDTO struct {
	ID        string
	Name      string
	Unit      string
	UnitPrice shared.Money
	Quantity  int
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RebuildAccessory reconstructs an Accessory from persisted state.
func RebuildAccessory(dto AccessoryReconstructionDTO) *Accessory {
	return &Accessory{
		id:        dto.ID,
		name:      dto.Name,
		unit:      dto.Unit,
		unitPrice: dto.UnitPrice,
		quantity:  dto.Quantity,
		version:   dto.Version,
		createdAt: dto.CreatedAt,
		updatedAt: dto.UpdatedAt,
	}
}

var _ shared.AggregateRoot = (*Accessory)(nil)
