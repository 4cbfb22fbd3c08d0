package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/catalogue/internal/domain"
)

// IdentifierGenerator assigns the next sequential identifier of a class.
type IdentifierGenerator struct {
	store domain.IdentifierStore
}

// NewIdentifierGenerator creates a generator reading from and writing to store.
func NewIdentifierGenerator(store domain.IdentifierStore) *IdentifierGenerator {
	return &IdentifierGenerator{store: store}
}

// NextIdentifier computes the identifier the next record of class would get.
// It does not write: two calls with no insert in between return the same value.
func (g *IdentifierGenerator) NextIdentifier(ctx context.Context, class domain.Class) (domain.Identifier, error) {
	stored, err := g.store.LastIdentifiers(ctx, class)
	if err != nil {
		return domain.Identifier{}, fmt.Errorf("reading last %s identifier: %w", class, err)
	}
	return class.Next(stored...)
}

// Mint computes the next identifier of class and records it as the last one
// assigned. Callers run Mint in the transaction that inserts the record, so a
// rolled back insert also rolls back the counter.
func (g *IdentifierGenerator) Mint(ctx context.Context, class domain.Class) (domain.Identifier, error) {
	id, err := g.NextIdentifier(ctx, class)
	if err != nil {
		return domain.Identifier{}, err
	}
	if err := g.store.SaveLastIdentifier(ctx, id); err != nil {
		return domain.Identifier{}, fmt.Errorf("saving last %s identifier: %w", class, err)
	}
	return id, nil
}
