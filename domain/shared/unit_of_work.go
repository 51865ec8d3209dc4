package shared

import "context"

// UnitOfWork manages the transaction boundary of one engine operation:
// read current state, validate, write new state plus audit rows, collect
// aggregate events into the outbox, commit or roll back as a whole.
type UnitOfWork interface {
	// Execute runs fn inside a transaction. The transaction handle is
	// carried in ctx so repositories join it transparently. Retryable
	// conflicts (optimistic lock, deadlock) are retried a bounded number
	// of times before surfacing.
	Execute(ctx context.Context, fn func(ctx context.Context) error) error

	// Register enlists an aggregate so its events are drained into the
	// outbox before commit.
	Register(aggregate AggregateRoot)
}

// UnitOfWorkFactory builds a fresh UnitOfWork per operation. Units of
// work accumulate registered aggregates and must not be shared across
// concurrent operations.
type UnitOfWorkFactory interface {
	New() UnitOfWork
}

// OutboxRepository persists domain events transactionally.
type OutboxRepository interface {
	SaveEvent(ctx context.Context, event DomainEvent) error
}
