package shared

// AggregateRoot is the entry point of an aggregate. It owns a global
// identity, guards the aggregate's invariants and records the domain
// events raised by state changes.
type AggregateRoot interface {
	// ID returns the aggregate's globally unique identity.
	ID() string

	// Version returns the optimistic lock version.
	Version() int

	// PullEvents returns and clears the recorded domain events. The unit
	// of work calls this inside the transaction to fill the outbox.
	PullEvents() []DomainEvent
}

// Entity has identity; equality is by id, not by attribute values.
type Entity interface {
	ID() string
}
