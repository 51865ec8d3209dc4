package mocks

import (
	"context"
	"sync"

	"maintdesk/domain/shared"
)

// MockUnitOfWork is a mock implementation of UnitOfWork for testing
// It doesn't use real transactions but still collects events from
// registered aggregates so tests can assert on them
type MockUnitOfWork struct {
	mu         sync.Mutex
	aggregates []shared.AggregateRoot

	// Events accumulates every event drained across Execute calls.
	Events []shared.DomainEvent
}

// NewMockUnitOfWork creates a new MockUnitOfWork instance
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		aggregates: make([]shared.AggregateRoot, 0),
	}
}

// Execute runs the business logic without real transaction management
// It still drains events from registered aggregates
func (u *MockUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	u.mu.Lock()
	u.aggregates = make([]shared.AggregateRoot, 0)
	u.mu.Unlock()

	if err := fn(ctx); err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	for _, agg := range u.aggregates {
		u.Events = append(u.Events, agg.PullEvents()...)
	}
	return nil
}

// Register enlists an aggregate root for event collection
func (u *MockUnitOfWork) Register(aggregate shared.AggregateRoot) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.aggregates = append(u.aggregates, aggregate)
}

// EventNames returns the names of all collected events in order.
func (u *MockUnitOfWork) EventNames() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	names := make([]string, len(u.Events))
	for i, e := range u.Events {
		names[i] = e.EventName()
	}
	return names
}

var _ shared.UnitOfWork = (*MockUnitOfWork)(nil)

// MockUnitOfWorkFactory hands out the same MockUnitOfWork so tests can
// inspect events collected across operations.
type MockUnitOfWorkFactory struct {
	UoW *MockUnitOfWork
}

// NewMockUnitOfWorkFactory creates a factory around a fresh mock unit
// of work.
func NewMockUnitOfWorkFactory() *MockUnitOfWorkFactory {
	return &MockUnitOfWorkFactory{UoW: NewMockUnitOfWork()}
}

func (f *MockUnitOfWorkFactory) New() shared.UnitOfWork {
	return f.UoW
}

var _ shared.UnitOfWorkFactory = (*MockUnitOfWorkFactory)(nil)
