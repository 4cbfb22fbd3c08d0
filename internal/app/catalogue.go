package app

import (
	"context"
	"errors"
	"strings"

	"github.com/neomorfeo/catalogue/internal/domain"
)

// DefaultMintAttempts allows one retry after an identifier collision.
const DefaultMintAttempts = 2

// Repositories groups the storage of every record type.
type Repositories struct {
	Nouns           domain.Repository[domain.Noun]
	Modifiers       domain.Repository[domain.Modifier]
	NounModifiers   domain.Repository[domain.NounModifier]
	Attributes      domain.Repository[domain.Attribute]
	AttributeValues domain.Repository[domain.AttributeValue]
	Manufacturers   domain.Repository[domain.Manufacturer]
}

// Option configures a Catalogue.
type Option func(*options)

type options struct {
	mintAttempts int
}

// WithMintAttempts bounds how often a create mints an identifier before
// giving up on collisions. Values below one are ignored.
func WithMintAttempts(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.mintAttempts = n
		}
	}
}

// Catalogue is the application service over all master records.
type Catalogue struct {
	Identifiers     *IdentifierGenerator
	Nouns           *Collection[domain.Noun, *domain.Noun]
	Modifiers       *Collection[domain.Modifier, *domain.Modifier]
	NounModifiers   *Collection[domain.NounModifier, *domain.NounModifier]
	Attributes      *Collection[domain.Attribute, *domain.Attribute]
	AttributeValues *Collection[domain.AttributeValue, *domain.AttributeValue]
	Manufacturers   *Collection[domain.Manufacturer, *domain.Manufacturer]
}

// NewCatalogue creates the service with the given adapters.
func NewCatalogue(
	repos Repositories,
	ids domain.IdentifierStore,
	tx domain.Transactor,
	publisher domain.EventPublisher,
	validator domain.TransitionValidator,
	opts ...Option,
) *Catalogue {
	o := options{mintAttempts: DefaultMintAttempts}
	for _, opt := range opts {
		opt(&o)
	}

	gen := NewIdentifierGenerator(ids)
	base := collectionBase{ids: gen, tx: tx, publisher: publisher, validator: validator, attempts: o.mintAttempts}

	return &Catalogue{
		Identifiers: gen,
		Nouns: newCollection(base, domain.ClassNoun, repos.Nouns, rules[domain.Noun]{
			normalize: func(r *domain.Noun) error {
				trim(&r.Description)
				return required(field{"name", &r.Name}, field{"abbreviation", &r.Abbreviation})
			},
		}),
		Modifiers: newCollection(base, domain.ClassModifier, repos.Modifiers, rules[domain.Modifier]{
			normalize: func(r *domain.Modifier) error {
				trim(&r.Description)
				return required(field{"name", &r.Name}, field{"abbreviation", &r.Abbreviation})
			},
		}),
		NounModifiers: newCollection(base, domain.ClassNounModifier, repos.NounModifiers, rules[domain.NounModifier]{
			normalize: func(r *domain.NounModifier) error {
				trim(&r.Abbreviation, &r.Description)
				return required(field{"noun_id", &r.NounID}, field{"modifier_id", &r.ModifierID})
			},
			resolve: func(ctx context.Context, r *domain.NounModifier) error {
				noun, err := reference(ctx, repos.Nouns, r.NounID)
				if err != nil {
					return err
				}
				modifier, err := reference(ctx, repos.Modifiers, r.ModifierID)
				if err != nil {
					return err
				}
				r.Name = domain.NounModifierName(noun.Name, modifier.Name)
				return nil
			},
		}),
		Attributes: newCollection(base, domain.ClassAttribute, repos.Attributes, rules[domain.Attribute]{
			normalize: func(r *domain.Attribute) error {
				trim(&r.Abbreviation, &r.Description)
				return required(field{"noun_modifier_id", &r.NounModifierID}, field{"name", &r.Name})
			},
			resolve: func(ctx context.Context, r *domain.Attribute) error {
				_, err := reference(ctx, repos.NounModifiers, r.NounModifierID)
				return err
			},
		}),
		AttributeValues: newCollection(base, domain.ClassAttributeValue, repos.AttributeValues, rules[domain.AttributeValue]{
			normalize: func(r *domain.AttributeValue) error {
				trim(&r.Abbreviation, &r.Description, &r.Remarks)
				return required(field{"noun_modifier_id", &r.NounModifierID}, field{"value", &r.Value})
			},
			resolve: func(ctx context.Context, r *domain.AttributeValue) error {
				_, err := reference(ctx, repos.NounModifiers, r.NounModifierID)
				return err
			},
		}),
		Manufacturers: newCollection(base, domain.ClassManufacturer, repos.Manufacturers, rules[domain.Manufacturer]{
			normalize: func(r *domain.Manufacturer) error {
				trim(&r.NounModifierID, &r.Description, &r.Remarks)
				return required(field{"name", &r.Name})
			},
			resolve: func(ctx context.Context, r *domain.Manufacturer) error {
				if r.NounModifierID == "" {
					return nil
				}
				_, err := reference(ctx, repos.NounModifiers, r.NounModifierID)
				return err
			},
		}),
	}
}

type collectionBase struct {
	ids       *IdentifierGenerator
	tx        domain.Transactor
	publisher domain.EventPublisher
	validator domain.TransitionValidator
	attempts  int
}

func newCollection[T any, P domain.Record[T]](b collectionBase, class domain.Class, repo domain.Repository[T], r rules[T]) *Collection[T, P] {
	return &Collection[T, P]{
		class:     class,
		repo:      repo,
		ids:       b.ids,
		tx:        b.tx,
		publisher: b.publisher,
		validator: b.validator,
		rules:     r,
		attempts:  b.attempts,
	}
}

type field struct {
	name  string
	value *string
}

func trim(values ...*string) {
	for _, v := range values {
		*v = strings.TrimSpace(*v)
	}
}

// required trims every field and rejects the first one left empty.
func required(fields ...field) error {
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return &domain.ValidationError{Field: f.name, Reason: "must not be blank"}
		}
	}
	return nil
}

// reference loads the record id points at, reporting a missing one as a
// ReferenceError.
func reference[T any](ctx context.Context, repo domain.Repository[T], id string) (T, error) {
	rec, err := repo.GetByID(ctx, id)
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return rec, &domain.ReferenceError{Class: nf.Class, ID: id}
	}
	return rec, err
}
