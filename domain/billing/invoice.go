/*
Package billing holds the settlement side of the engine: the Invoice
aggregate (accessory and service line items, finalize, payment state)
and the Transaction aggregate (payment/expense ledger rows). Stock
movements created during finalize live in the stock subdomain; the
application layer ties the two together inside one unit of work.
*/
package billing

import (
	"fmt"
	"time"

	"maintdesk/domain/shared"

	"github.com/google/uuid"
)

// Invoice aggregate root. Created in Draft the moment an inspection
// report is submitted so that line items can be assembled while work
// proceeds; finalized only after the report completes its approval
// chain.
type Invoice struct {
	id          string
	requestID   string
	reportID    string
	chargeable  bool
	invoiceType InvoiceType

	status InvoiceStatus
	total  shared.Money

	accessories []AccessoryLine
	services    []ServiceLine

	version   int
	createdAt time.Time
	updatedAt time.Time

	events []shared.DomainEvent

	linesDirty bool
	isNew      bool
}

// AccessoryLine is a priced accessory entry. AccessoryID is empty for
// pure external-contractor charge lines; when present, (accessory,
// source type) is unique within the invoice.
type AccessoryLine struct {
	id          string
	accessoryID string
	name        string
	quantity    int
	unitPrice   shared.Money
	source      SourceType
}

func (l AccessoryLine) ID() string              { return l.id }
func (l AccessoryLine) AccessoryID() string     { return l.accessoryID }
func (l AccessoryLine) Name() string            { return l.name }
func (l AccessoryLine) Quantity() int           { return l.quantity }
func (l AccessoryLine) UnitPrice() shared.Money { return l.unitPrice }
func (l AccessoryLine) Source() SourceType      { return l.source }

// Subtotal is quantity × unit price.
func (l AccessoryLine) Subtotal() (*shared.Money, error) {
	return l.unitPrice.Multiply(l.quantity)
}

// ServiceLine is a flat labor or service fee. No quantity.
type ServiceLine struct {
	id    string
	name  string
	price shared.Money
}

func (l ServiceLine) ID() string          { return l.id }
func (l ServiceLine) Name() string        { return l.name }
func (l ServiceLine) Price() shared.Money { return l.price }

// NewDraft opens a Draft invoice for a request's inspection report.
func NewDraft(requestID, reportID string, chargeable bool, invoiceType InvoiceType) (*Invoice, error) {
	if requestID == "" {
		return nil, shared.NewValidationError("invoice", "request_id", "request is required")
	}
	if reportID == "" {
		return nil, shared.NewValidationError("invoice", "report_id", "report is required")
	}
	if _, ok := ParseInvoiceType(string(invoiceType)); !ok {
		return nil, shared.NewValidationError("invoice", "type", "unknown invoice type")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice ID: %w", err)
	}

	now := time.Now()
	return &Invoice{
		id:          id.String(),
		requestID:   requestID,
		reportID:    reportID,
		chargeable:  chargeable,
		invoiceType: invoiceType,
		status:      InvoiceStatusDraft,
		total:       *shared.Zero(shared.DefaultCurrency),
		version:     0,
		createdAt:   now,
		updatedAt:   now,
		events:      make([]shared.DomainEvent, 0),
		isNew:       true,
	}, nil
}

// AddAccessoryLine appends an accessory line while the invoice is still
// Draft and recomputes the total.
func (i *Invoice) AddAccessoryLine(accessoryID, name string, quantity int, unitPrice shared.Money, source SourceType) error {
	if i.status != InvoiceStatusDraft {
		return ErrLinesFrozen
	}
	if name == "" {
		return shared.NewValidationError("invoice_accessory", "name", "name is required")
	}
	if quantity <= 0 {
		return shared.NewValidationError("invoice_accessory", "quantity", "quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewValidationError("invoice_accessory", "price", "price must not be negative")
	}
	if _, ok := ParseSourceType(string(source)); !ok {
		return shared.NewValidationError("invoice_accessory", "source_type", "unknown source type")
	}
	// Stock-backed lines must name a catalogue accessory; free-form ids
	// are only for lines a contractor supplies.
	if source == SourceFromStock && accessoryID == "" {
		return shared.NewValidationError("invoice_accessory", "accessory_id", "accessory is required for stock-sourced lines")
	}
	if accessoryID != "" {
		for _, l := range i.accessories {
			if l.accessoryID == accessoryID && l.source == source {
				return ErrDuplicateLine
			}
		}
	}

	i.accessories = append(i.accessories, AccessoryLine{
		id:          uuid.NewString(),
		accessoryID: accessoryID,
		name:        name,
		quantity:    quantity,
		unitPrice:   unitPrice,
		source:      source,
	})
	return i.recomputeTotal()
}

// AddServiceLine appends a labor/service fee while the invoice is still
// Draft and recomputes the total.
func (i *Invoice) AddServiceLine(name string, price shared.Money) error {
	if i.status != InvoiceStatusDraft {
		return ErrLinesFrozen
	}
	if name == "" {
		return shared.NewValidationError("invoice_service", "name", "name is required")
	}
	if price.IsNegative() {
		return shared.NewValidationError("invoice_service", "price", "price must not be negative")
	}

	i.services = append(i.services, ServiceLine{
		id:    uuid.NewString(),
		name:  name,
		price: price,
	})
	return i.recomputeTotal()
}

// RemoveAccessoryLine drops a line while the invoice is still Draft.
func (i *Invoice) RemoveAccessoryLine(lineID string) error {
	if i.status != InvoiceStatusDraft {
		return ErrLinesFrozen
	}
	for idx, l := range i.accessories {
		if l.id == lineID {
			i.accessories = append(i.accessories[:idx], i.accessories[idx+1:]...)
			return i.recomputeTotal()
		}
	}
	return ErrLineNotFound
}

// RemoveServiceLine drops a line while the invoice is still Draft.
func (i *Invoice) RemoveServiceLine(lineID string) error {
	if i.status != InvoiceStatusDraft {
		return ErrLinesFrozen
	}
	for idx, l := range i.services {
		if l.id == lineID {
			i.services = append(i.services[:idx], i.services[idx+1:]...)
			return i.recomputeTotal()
		}
	}
	return ErrLineNotFound
}

// recomputeTotal resets the stored total to the line sum. All lines
// must share one currency.
func (i *Invoice) recomputeTotal() error {
	total, err := i.lineSum()
	if err != nil {
		return err
	}
	i.total = *total
	i.updatedAt = time.Now()
	i.linesDirty = true
	return nil
}

func (i *Invoice) lineSum() (*shared.Money, error) {
	total := shared.Zero(shared.DefaultCurrency)
	if len(i.accessories) > 0 {
		total = shared.Zero(i.accessories[0].unitPrice.Currency())
	} else if len(i.services) > 0 {
		total = shared.Zero(i.services[0].price.Currency())
	}
	for _, l := range i.accessories {
		sub, err := l.Subtotal()
		if err != nil {
			return nil, err
		}
		total, err = total.Add(*sub)
		if err != nil {
			return nil, ErrCurrencyMismatch
		}
	}
	for _, l := range i.services {
		var err error
		total, err = total.Add(l.price)
		if err != nil {
			return nil, ErrCurrencyMismatch
		}
	}
	return total, nil
}

// Approve locks the invoice after its inspection report completed the
// approval chain. The stored total is checked against the recomputed
// line sum; a divergence is rejected, never corrected.
func (i *Invoice) Approve() error {
	if !CanTransitionInvoice(i.status, InvoiceStatusApproved) {
		return newInvalidInvoiceTransition(i.status, InvoiceStatusApproved)
	}
	sum, err := i.lineSum()
	if err != nil {
		return err
	}
	if !i.total.Equals(*sum) {
		return NewAmountMismatchError(i.id, i.total, *sum)
	}
	i.status = InvoiceStatusApproved
	i.updatedAt = time.Now()
	i.events = append(i.events, NewInvoiceApprovedEvent(i.id, i.requestID, i.chargeable, i.total.Amount(), i.total.Currency()))
	return nil
}

// MarkAwaitingPayment records that a pending income transaction was
// issued for a chargeable invoice.
func (i *Invoice) MarkAwaitingPayment() error {
	if !CanTransitionInvoice(i.status, InvoiceStatusAwaitingPayment) {
		return newInvalidInvoiceTransition(i.status, InvoiceStatusAwaitingPayment)
	}
	i.status = InvoiceStatusAwaitingPayment
	i.updatedAt = time.Now()
	return nil
}

// MarkPaid settles the invoice, either on payment confirmation or
// immediately for a non-chargeable internal expense.
func (i *Invoice) MarkPaid() error {
	if !CanTransitionInvoice(i.status, InvoiceStatusPaid) {
		return newInvalidInvoiceTransition(i.status, InvoiceStatusPaid)
	}
	i.status = InvoiceStatusPaid
	i.updatedAt = time.Now()
	i.events = append(i.events, NewInvoicePaidEvent(i.id, i.requestID))
	return nil
}

// Cancel aborts a Draft invoice. No stock was committed yet so nothing
// is reversed.
func (i *Invoice) Cancel(reason string) error {
	if !CanTransitionInvoice(i.status, InvoiceStatusCancelled) {
		return newInvalidInvoiceTransition(i.status, InvoiceStatusCancelled)
	}
	i.status = InvoiceStatusCancelled
	i.updatedAt = time.Now()
	i.events = append(i.events, NewInvoiceCancelledEvent(i.id, i.requestID, reason))
	return nil
}

// FromStockLines returns accessory lines to be exported from stock on
// finalize.
func (i *Invoice) FromStockLines() []AccessoryLine {
	return i.linesBySource(SourceFromStock)
}

// ToBePurchasedLines returns accessory lines to be imported on
// finalize.
func (i *Invoice) ToBePurchasedLines() []AccessoryLine {
	return i.linesBySource(SourceToBePurchased)
}

func (i *Invoice) linesBySource(source SourceType) []AccessoryLine {
	lines := make([]AccessoryLine, 0, len(i.accessories))
	for _, l := range i.accessories {
		if l.source == source {
			lines = append(lines, l)
		}
	}
	return lines
}

// Getters.

func (i *Invoice) ID() string            { return i.id }
func (i *Invoice) RequestID() string     { return i.requestID }
func (i *Invoice) ReportID() string      { return i.reportID }
func (i *Invoice) Chargeable() bool      { return i.chargeable }
func (i *Invoice) Type() InvoiceType     { return i.invoiceType }
func (i *Invoice) Status() InvoiceStatus { return i.status }
func (i *Invoice) Total() shared.Money   { return i.total }
func (i *Invoice) Version() int          { return i.version }
func (i *Invoice) CreatedAt() time.Time  { return i.createdAt }
func (i *Invoice) UpdatedAt() time.Time  { return i.updatedAt }

// AccessoryLines returns a copy of the accessory line items.
func (i *Invoice) AccessoryLines() []AccessoryLine {
	lines := make([]AccessoryLine, len(i.accessories))
	copy(lines, i.accessories)
	return lines
}

// ServiceLines returns a copy of the service line items.
func (i *Invoice) ServiceLines() []ServiceLine {
	lines := make([]ServiceLine, len(i.services))
	copy(lines, i.services)
	return lines
}

// Persistence support.

// IsNew reports whether the aggregate has never been persisted.
func (i *Invoice) IsNew() bool { return i.isNew }

// LinesDirty reports whether line items changed since load; the
// repository rewrites all line rows when set (lines only mutate while
// the invoice is Draft).
func (i *Invoice) LinesDirty() bool { return i.linesDirty }

// IncrementVersionForSave bumps the optimistic lock version after a
// successful save.
func (i *Invoice) IncrementVersionForSave() {
	i.version++
}

// ClearDirtyTracking resets dirty state after a successful save.
func (i *Invoice) ClearDirtyTracking() {
	i.linesDirty = false
	i.isNew = false
}

// PullEvents drains recorded domain events.
func (i *Invoice) PullEvents() []shared.DomainEvent {
	events := make([]shared.DomainEvent, len(i.events))
	copy(events, i.events)
	i.events = i.events[:0]
	return events
}

// InvoiceReconstructionDTO rebuilds the aggregate from storage;
// repository use only.
type InvoiceReconstructionDTO struct {
	ID          string
	RequestID   string
	ReportID    string
	Chargeable  bool
	Type        InvoiceType
	Status      InvoiceStatus
	Total       shared.Money
	Accessories []AccessoryLine
	Services    []ServiceLine
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RebuildInvoice reconstructs an Invoice from persisted state.
func RebuildInvoice(dto InvoiceReconstructionDTO) *Invoice {
	return &Invoice{
		id:          dto.ID,
		requestID:   dto.RequestID,
		reportID:    dto.ReportID,
		chargeable:  dto.Chargeable,
		invoiceType: dto.Type,
		status:      dto.Status,
		total:       dto.Total,
		accessories: dto.Accessories,
		services:    dto.Services,
		version:     dto.Version,
		createdAt:   dto.CreatedAt,
		updatedAt:   dto.UpdatedAt,
	}
}

// AccessoryLineReconstructionDTO rebuilds one accessory line from
// storage.
type AccessoryLineReconstructionDTO struct {
	ID          string
	AccessoryID string
	Name        string
	Quantity    int
	UnitPrice   shared.Money
	Source      SourceType
}

// RebuildAccessoryLine reconstructs an AccessoryLine from persisted
// state.
func RebuildAccessoryLine(dto AccessoryLineReconstructionDTO) AccessoryLine {
	return AccessoryLine{
		id:          dto.ID,
		accessoryID: dto.AccessoryID,
		name:        dto.Name,
		quantity:    dto.Quantity,
		unitPrice:   dto.UnitPrice,
		source:      dto.Source,
	}
}

// ServiceLineReconstructionDTO rebuilds one service line from storage.
type ServiceLineReconstructionDTO struct {
	ID    string
	Name  string
	Price shared.Money
}

// RebuildServiceLine reconstructs a ServiceLine from persisted state.
func RebuildServiceLine(dto ServiceLineReconstructionDTO) ServiceLine {
	return ServiceLine{
		id:    dto.ID,
		name:  dto.Name,
		price: dto.Price,
	}
}

var _ shared.AggregateRoot = (*Invoice)(nil)
