package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neomorfeo/catalogue/internal/domain"
)

// rules holds the per-entity checks a collection runs before writing.
type rules[T any] struct {
	// normalize trims input and rejects missing fields. No storage access.
	normalize func(rec *T) error
	// resolve checks references and fills derived fields. It runs inside the
	// write transaction.
	resolve func(ctx context.Context, rec *T) error
}

// Collection orchestrates the lifecycle of one kind of master record.
type Collection[T any, P domain.Record[T]] struct {
	class     domain.Class
	repo      domain.Repository[T]
	ids       *IdentifierGenerator
	tx        domain.Transactor
	publisher domain.EventPublisher
	validator domain.TransitionValidator
	rules     rules[T]
	attempts  int
}

// Class returns the identifier class of the records in the collection.
func (c *Collection[T, P]) Class() domain.Class { return c.class }

// Create mints an identifier for rec, persists it and publishes a creation
// change. Minting and inserting share one transaction; if the insert hits an
// identifier another writer already took, the whole transaction is retried.
func (c *Collection[T, P]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := c.normalize(&rec); err != nil {
		return zero, err
	}

	for attempt := 1; ; attempt++ {
		err := c.tx.InTx(ctx, func(ctx context.Context) error {
			if err := c.resolve(ctx, &rec); err != nil {
				return err
			}

			id, err := c.ids.Mint(ctx, c.class)
			if err != nil {
				return err
			}
			P(&rec).Meta().ID = id.String()

			return c.repo.Create(ctx, rec)
		})
		if err == nil {
			break
		}

		var dup *domain.DuplicateIdentifierError
		if errors.As(err, &dup) && attempt < c.attempts {
			slog.WarnContext(ctx, "identifier already taken, retrying",
				"class", c.class.Name, "id", dup.ID, "attempt", attempt)
			continue
		}
		return zero, fmt.Errorf("creating %s: %w", c.class, err)
	}

	c.publish(ctx, domain.ChangeCreated, "", P(&rec).Meta())
	return rec, nil
}

// GetByID returns a record by its identifier.
func (c *Collection[T, P]) GetByID(ctx context.Context, id string) (T, error) {
	return c.repo.GetByID(ctx, id)
}

// List returns records matching the given filter.
func (c *Collection[T, P]) List(ctx context.Context, filter domain.ListFilter) ([]T, error) {
	return c.repo.List(ctx, filter)
}

// Update applies patch to the stored record and persists the result.
// The identifier and lifecycle status cannot be changed through patch.
func (c *Collection[T, P]) Update(ctx context.Context, id string, patch func(rec *T) error) (T, error) {
	var rec T
	err := c.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		rec, err = c.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		meta := *P(&rec).Meta()
		if err := patch(&rec); err != nil {
			return err
		}
		if err := c.normalize(&rec); err != nil {
			return err
		}
		if err := c.resolve(ctx, &rec); err != nil {
			return err
		}

		meta.UpdatedAt = time.Now().UTC()
		*P(&rec).Meta() = meta

		if err := c.repo.Update(ctx, rec); err != nil {
			return fmt.Errorf("updating %s: %w", c.class, err)
		}
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	c.publish(ctx, domain.ChangeUpdated, "", P(&rec).Meta())
	return rec, nil
}

// Delete removes a record. Records still referenced by others are kept.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	var rec T
	err := c.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		rec, err = c.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return c.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	c.publish(ctx, domain.ChangeDeleted, "", P(&rec).Meta())
	return nil
}

// Transition applies a lifecycle event to a record, changing its status.
func (c *Collection[T, P]) Transition(ctx context.Context, id string, event domain.Event) (T, error) {
	var rec T
	err := c.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		rec, err = c.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		meta := P(&rec).Meta()
		status, err := c.validator.Apply(ctx, meta.Status, event)
		if err != nil {
			return err
		}
		meta.Status = status
		meta.UpdatedAt = time.Now().UTC()

		if err := c.repo.Update(ctx, rec); err != nil {
			return fmt.Errorf("updating %s: %w", c.class, err)
		}
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	c.publish(ctx, domain.ChangeTransitioned, event, P(&rec).Meta())
	return rec, nil
}

func (c *Collection[T, P]) normalize(rec *T) error {
	if c.rules.normalize == nil {
		return nil
	}
	return c.rules.normalize(rec)
}

func (c *Collection[T, P]) resolve(ctx context.Context, rec *T) error {
	if c.rules.resolve == nil {
		return nil
	}
	return c.rules.resolve(ctx, rec)
}

// publish emits a change for a committed write. The write stands even if
// publishing fails, so the failure is logged rather than returned.
func (c *Collection[T, P]) publish(ctx context.Context, kind domain.ChangeKind, event domain.Event, meta *domain.Master) {
	change := domain.Change{
		Kind:     kind,
		Class:    c.class,
		RecordID: meta.ID,
		Status:   meta.Status,
		Event:    event,
	}
	if err := c.publisher.Publish(ctx, change); err != nil {
		slog.ErrorContext(ctx, "publishing change",
			"kind", kind, "class", c.class.Name, "id", meta.ID, "error", err)
	}
}
