package mocks

import (
	"context"
	"sort"
	"sync"

	"maintdesk/domain/billing"
)

// MockInvoiceRepository in-memory invoice repository for testing.
// Reads hand out detached copies and Save enforces the optimistic lock
// version, so a failed settlement leaves the stored invoice untouched
// the way a rolled-back transaction would.
type MockInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]*billing.Invoice
}

// NewMockInvoiceRepository Create mock invoice repository
func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{
		invoices: make(map[string]*billing.Invoice),
	}
}

func copyInvoice(inv *billing.Invoice) *billing.Invoice {
	return billing.RebuildInvoice(billing.InvoiceReconstructionDTO{
		ID:          inv.ID(),
		RequestID:   inv.RequestID(),
		ReportID:    inv.ReportID(),
		Chargeable:  inv.Chargeable(),
		Type:        inv.Type(),
		Status:      inv.Status(),
		Total:       inv.Total(),
		Accessories: inv.AccessoryLines(),
		Services:    inv.ServiceLines(),
		Version:     inv.Version(),
		CreatedAt:   inv.CreatedAt(),
		UpdatedAt:   inv.UpdatedAt(),
	})
}

func (r *MockInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !inv.IsNew() {
		stored, ok := r.invoices[inv.ID()]
		if !ok {
			return billing.NewInvoiceNotFoundError(inv.ID())
		}
		if stored.Version() != inv.Version() {
			return billing.NewConcurrentModificationError("invoice", inv.ID())
		}
		inv.IncrementVersionForSave()
	}
	inv.ClearDirtyTracking()
	r.invoices[inv.ID()] = copyInvoice(inv)
	return nil
}

func (r *MockInvoiceRepository) FindByID(ctx context.Context, id string) (*billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, ok := r.invoices[id]
	if !ok {
		return nil, billing.NewInvoiceNotFoundError(id)
	}
	return copyInvoice(inv), nil
}

func (r *MockInvoiceRepository) FindByRequestID(ctx context.Context, requestID string) ([]*billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*billing.Invoice
	for _, inv := range r.invoices {
		if inv.RequestID() == requestID {
			result = append(result, copyInvoice(inv))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt().Before(result[j].CreatedAt())
	})
	return result, nil
}

func (r *MockInvoiceRepository) FindByReportID(ctx context.Context, reportID string) (*billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, inv := range r.invoices {
		if inv.ReportID() == reportID {
			return copyInvoice(inv), nil
		}
	}
	return nil, billing.NewInvoiceNotFoundError(reportID)
}

var _ billing.InvoiceRepository = (*MockInvoiceRepository)(nil)

// MockTransactionRepository in-memory payment transaction repository
// for testing
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*billing.Transaction
}

// NewMockTransactionRepository Create mock transaction repository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*billing.Transaction),
	}
}

func (r *MockTransactionRepository) Save(ctx context.Context, t *billing.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !t.IsNew() {
		if _, ok := r.transactions[t.ID()]; !ok {
			return billing.NewTransactionNotFoundError(t.ID())
		}
		t.IncrementVersionForSave()
	}
	t.ClearDirtyTracking()
	r.transactions[t.ID()] = t
	return nil
}

func (r *MockTransactionRepository) FindByID(ctx context.Context, id string) (*billing.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.transactions[id]
	if !ok {
		return nil, billing.NewTransactionNotFoundError(id)
	}
	return t, nil
}

func (r *MockTransactionRepository) FindByInvoiceID(ctx context.Context, invoiceID string) ([]*billing.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*billing.Transaction
	for _, t := range r.transactions {
		if t.InvoiceID() == invoiceID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt().Before(result[j].CreatedAt())
	})
	return result, nil
}

var _ billing.TransactionRepository = (*MockTransactionRepository)(nil)
