package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/catalogue/internal/domain"
)

// TracingPublisher wraps a domain.EventPublisher with OpenTelemetry tracing.
type TracingPublisher struct {
	next   domain.EventPublisher
	tracer trace.Tracer
}

var _ domain.EventPublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.EventPublisher) *TracingPublisher {
	return &TracingPublisher{
		next:   next,
		tracer: otel.Tracer(instrumentationName),
	}
}

func (p *TracingPublisher) Publish(ctx context.Context, change domain.Change) error {
	attrs := []attribute.KeyValue{
		attribute.String("change.kind", string(change.Kind)),
		attribute.String("record.class", change.Class.Name),
		attribute.String("record.id", change.RecordID),
	}
	if change.Event != "" {
		attrs = append(attrs, attribute.String("change.event", string(change.Event)))
	}

	ctx, span := p.tracer.Start(ctx, "EventPublisher.Publish", trace.WithAttributes(attrs...))
	defer span.End()

	err := p.next.Publish(ctx, change)
	recordError(span, err)
	return err
}
