package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/catalogue/internal/domain"
)

var _ domain.IdentifierStore = (*TracingIdentifierStore)(nil)

// TracingIdentifierStore traces identifier reads and writes and counts
// identifiers recorded per class in catalogue.identifiers.minted. Minted
// identifiers whose transaction rolls back are counted too; they are the
// gaps in the sequence.
type TracingIdentifierStore struct {
	next   domain.IdentifierStore
	tracer trace.Tracer
	minted metric.Int64Counter
}

// NewTracingIdentifierStore creates a decorator around next using the
// global tracer and meter providers.
func NewTracingIdentifierStore(next domain.IdentifierStore) (*TracingIdentifierStore, error) {
	minted, err := otel.Meter(instrumentationName).Int64Counter("catalogue.identifiers.minted",
		metric.WithDescription("Identifiers recorded as the last assigned of their class."),
		metric.WithUnit("{identifier}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating minted counter: %w", err)
	}

	return &TracingIdentifierStore{
		next:   next,
		tracer: otel.Tracer(instrumentationName),
		minted: minted,
	}, nil
}

func (s *TracingIdentifierStore) LastIdentifiers(ctx context.Context, class domain.Class) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "IdentifierStore.LastIdentifiers",
		trace.WithAttributes(attribute.String("identifier.class", class.Name)),
	)
	defer span.End()

	stored, err := s.next.LastIdentifiers(ctx, class)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.StringSlice("identifier.candidates", stored))
	}
	return stored, err
}

func (s *TracingIdentifierStore) SaveLastIdentifier(ctx context.Context, id domain.Identifier) error {
	classAttr := attribute.String("identifier.class", id.Class.Name)
	ctx, span := s.tracer.Start(ctx, "IdentifierStore.SaveLastIdentifier",
		trace.WithAttributes(classAttr, attribute.String("identifier.value", id.String())),
	)
	defer span.End()

	err := s.next.SaveLastIdentifier(ctx, id)
	if err != nil {
		recordError(span, err)
		return err
	}
	s.minted.Add(ctx, 1, metric.WithAttributes(classAttr))
	return nil
}
