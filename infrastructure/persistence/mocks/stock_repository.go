package mocks

import (
	"context"
	"sort"
	"sync"

	"maintdesk/domain/shared"
	"maintdesk/domain/stock"
)

// MockAccessoryRepository in-memory accessory catalogue for testing.
// Reads hand out detached copies and Save enforces the optimistic lock
// version, so stale-read races behave as they do against the database.
type MockAccessoryRepository struct {
	mu          sync.RWMutex
	accessories map[string]*stock.Accessory
}

// NewMockAccessoryRepository Create mock accessory repository
func NewMockAccessoryRepository() *MockAccessoryRepository {
	return &MockAccessoryRepository{
		accessories: make(map[string]*stock.Accessory),
	}
}

func copyAccessory(a *stock.Accessory) *stock.Accessory {
	return stock.RebuildAccessory(stock.AccessoryReconstructionDTO{
		ID:        a.ID(),
		Name:      a.Name(),
		Unit:      a.Unit(),
		UnitPrice: a.UnitPrice(),
		Quantity:  a.Quantity(),
		Version:   a.Version(),
		CreatedAt: a.CreatedAt(),
		UpdatedAt: a.UpdatedAt(),
	})
}

func (r *MockAccessoryRepository) Save(ctx context.Context, a *stock.Accessory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !a.IsNew() {
		stored, ok := r.accessories[a.ID()]
		if !ok {
			return stock.NewAccessoryNotFoundError(a.ID())
		}
		if stored.Version() != a.Version() {
			return stock.NewConcurrentModificationError(a.ID())
		}
		a.IncrementVersionForSave()
	}
	a.ClearDirtyTracking()
	r.accessories[a.ID()] = copyAccessory(a)
	return nil
}

func (r *MockAccessoryRepository) FindByID(ctx context.Context, id string) (*stock.Accessory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accessories[id]
	if !ok {
		return nil, stock.NewAccessoryNotFoundError(id)
	}
	return copyAccessory(a), nil
}

func (r *MockAccessoryRepository) FindAll(ctx context.Context) ([]*stock.Accessory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*stock.Accessory, 0, len(r.accessories))
	for _, a := range r.accessories {
		result = append(result, copyAccessory(a))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result, nil
}

// Seed creates a catalogue entry with an initial on-hand quantity and
// returns its identifier.
func (r *MockAccessoryRepository) Seed(name, unit string, price int64, quantity int) (string, error) {
	a, err := stock.NewAccessory(name, unit, *shared.NewMoney(price, "VND"))
	if err != nil {
		return "", err
	}
	if quantity > 0 {
		creator := shared.Actor{ID: "seed", Role: shared.RoleAdmin}
		if _, err := a.Import(quantity, a.UnitPrice(), creator, ""); err != nil {
			return "", err
		}
	}
	if err := r.Save(context.Background(), a); err != nil {
		return "", err
	}
	return a.ID(), nil
}

// Quantity reports the on-hand quantity for an accessory, or -1 when
// it is unknown.
func (r *MockAccessoryRepository) Quantity(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accessories[id]
	if !ok {
		return -1
	}
	return a.Quantity()
}

var _ stock.AccessoryRepository = (*MockAccessoryRepository)(nil)

// MockStockTransactionRepository in-memory movement ledger for testing
type MockStockTransactionRepository struct {
	mu           sync.RWMutex
	transactions []*stock.StockTransaction
}

// NewMockStockTransactionRepository Create mock stock transaction
// repository
func NewMockStockTransactionRepository() *MockStockTransactionRepository {
	return &MockStockTransactionRepository{}
}

func (r *MockStockTransactionRepository) Insert(ctx context.Context, tx *stock.StockTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, tx)
	return nil
}

func (r *MockStockTransactionRepository) FindByInvoiceID(ctx context.Context, invoiceID string) ([]*stock.StockTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*stock.StockTransaction
	for _, tx := range r.transactions {
		if tx.InvoiceID() == invoiceID {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (r *MockStockTransactionRepository) FindByAccessoryID(ctx context.Context, accessoryID string) ([]*stock.StockTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*stock.StockTransaction
	for _, tx := range r.transactions {
		if tx.AccessoryID() == accessoryID {
			result = append(result, tx)
		}
	}
	return result, nil
}

var _ stock.StockTransactionRepository = (*MockStockTransactionRepository)(nil)
