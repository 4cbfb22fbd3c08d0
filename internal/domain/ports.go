package domain

import "context"

// Repository defines the persistence contract shared by every record type.
type Repository[T any] interface {
	Create(ctx context.Context, record T) error
	GetByID(ctx context.Context, id string) (T, error)
	List(ctx context.Context, filter ListFilter) ([]T, error)
	Update(ctx context.Context, record T) error
	Delete(ctx context.Context, id string) error
}

// ListFilter holds optional criteria for listing records.
type ListFilter struct {
	Status *Status
	// NounModifierID restricts child records (attributes, attribute values,
	// manufacturers) to one noun-modifier. Ignored for other record types.
	NounModifierID string
	Limit          int
	Offset         int
}

// IdentifierStore is the durable source of truth for the last identifier
// assigned in each class.
type IdentifierStore interface {
	// LastIdentifiers returns every stored candidate for the class's last
	// assigned identifier, unparsed. An empty result means nothing was
	// ever assigned.
	LastIdentifiers(ctx context.Context, class Class) ([]string, error)
	// SaveLastIdentifier records id as the last assigned identifier of its class.
	SaveLastIdentifier(ctx context.Context, id Identifier) error
}

// Transactor runs fn inside a single storage transaction. Stores that take
// part in the transaction pick it up from the context passed to fn.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher defines the contract for emitting record changes.
type EventPublisher interface {
	Publish(ctx context.Context, change Change) error
}

// TransitionValidator checks lifecycle events against the allowed transitions.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}
