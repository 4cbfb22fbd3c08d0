package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/catalogue/internal/domain"
)

const instrumentationName = "github.com/neomorfeo/catalogue/internal/adapter/otel"

// TracingRepository wraps a domain.Repository with OpenTelemetry tracing.
// Spans are named after the record class, e.g. "manufacturer.Create".
type TracingRepository[T any, P domain.Record[T]] struct {
	next   domain.Repository[T]
	class  domain.Class
	tracer trace.Tracer
}

// NewTracingRepository creates a tracing decorator around the repository of class.
func NewTracingRepository[T any, P domain.Record[T]](class domain.Class, next domain.Repository[T]) *TracingRepository[T, P] {
	return &TracingRepository[T, P]{
		next:   next,
		class:  class,
		tracer: otel.Tracer(instrumentationName),
	}
}

func (r *TracingRepository[T, P]) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("record.class", r.class.Name))
	return r.tracer.Start(ctx, r.class.Name+"."+op, trace.WithAttributes(attrs...))
}

func (r *TracingRepository[T, P]) Create(ctx context.Context, rec T) error {
	ctx, span := r.start(ctx, "Create", attribute.String("record.id", P(&rec).Meta().ID))
	defer span.End()

	err := r.next.Create(ctx, rec)
	recordError(span, err)
	return err
}

func (r *TracingRepository[T, P]) GetByID(ctx context.Context, id string) (T, error) {
	ctx, span := r.start(ctx, "GetByID", attribute.String("record.id", id))
	defer span.End()

	rec, err := r.next.GetByID(ctx, id)
	recordError(span, err)
	return rec, err
}

func (r *TracingRepository[T, P]) List(ctx context.Context, filter domain.ListFilter) ([]T, error) {
	ctx, span := r.start(ctx, "List",
		attribute.Int("filter.limit", filter.Limit),
		attribute.Int("filter.offset", filter.Offset),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}
	if filter.NounModifierID != "" {
		span.SetAttributes(attribute.String("filter.noun_modifier_id", filter.NounModifierID))
	}

	recs, err := r.next.List(ctx, filter)
	if err != nil {
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.Int("result.count", len(recs)))
	}
	return recs, err
}

func (r *TracingRepository[T, P]) Update(ctx context.Context, rec T) error {
	meta := P(&rec).Meta()
	ctx, span := r.start(ctx, "Update",
		attribute.String("record.id", meta.ID),
		attribute.String("record.status", string(meta.Status)),
	)
	defer span.End()

	err := r.next.Update(ctx, rec)
	recordError(span, err)
	return err
}

func (r *TracingRepository[T, P]) Delete(ctx context.Context, id string) error {
	ctx, span := r.start(ctx, "Delete", attribute.String("record.id", id))
	defer span.End()

	err := r.next.Delete(ctx, id)
	recordError(span, err)
	return err
}

func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
