package otel_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	adapter "github.com/neomorfeo/catalogue/internal/adapter/otel"
	"github.com/neomorfeo/catalogue/internal/domain"
)

func setupTestMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader
}

// mintedByClass collects catalogue.identifiers.minted keyed by class.
func mintedByClass(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "catalogue.identifiers.minted" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("minted data = %T, want metricdata.Sum[int64]", m.Data)
			}
			for _, dp := range sum.DataPoints {
				class, _ := dp.Attributes.Value(attribute.Key("identifier.class"))
				out[class.AsString()] += dp.Value
			}
		}
	}
	return out
}

func TestTracingIdentifierStore_CountsMinted(t *testing.T) {
	reader := setupTestMeter(t)
	exporter := setupTestTracer(t)
	store, err := adapter.NewTracingIdentifierStore(newTestStore(t))
	if err != nil {
		t.Fatalf("NewTracingIdentifierStore: %v", err)
	}
	ctx := context.Background()

	for seq := uint64(1); seq <= 3; seq++ {
		if err := store.SaveLastIdentifier(ctx, domain.Identifier{Class: domain.ClassManufacturer, Seq: seq}); err != nil {
			t.Fatalf("SaveLastIdentifier: %v", err)
		}
	}
	if err := store.SaveLastIdentifier(ctx, domain.ClassNoun.SeedIdentifier()); err != nil {
		t.Fatalf("SaveLastIdentifier: %v", err)
	}

	got := mintedByClass(t, reader)
	if got["manufacturer"] != 3 {
		t.Errorf("manufacturer minted = %d, want 3", got["manufacturer"])
	}
	if got["noun"] != 1 {
		t.Errorf("noun minted = %d, want 1", got["noun"])
	}

	spans := exporter.GetSpans()
	if len(spans) != 4 {
		t.Fatalf("got %d spans, want 4", len(spans))
	}
	assertAttribute(t, spans[0], "identifier.value", "MFR_0001")
}

func TestTracingIdentifierStore_LastIdentifiers(t *testing.T) {
	setupTestMeter(t)
	exporter := setupTestTracer(t)
	store, err := adapter.NewTracingIdentifierStore(newTestStore(t))
	if err != nil {
		t.Fatalf("NewTracingIdentifierStore: %v", err)
	}
	ctx := context.Background()

	_ = store.SaveLastIdentifier(ctx, domain.Identifier{Class: domain.ClassAttribute, Seq: 7})
	exporter.Reset()

	got, err := store.LastIdentifiers(ctx, domain.ClassAttribute)
	if err != nil {
		t.Fatalf("LastIdentifiers: %v", err)
	}
	if len(got) != 1 || got[0] != "ATR_0007" {
		t.Errorf("got %v, want [ATR_0007]", got)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "IdentifierStore.LastIdentifiers" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "IdentifierStore.LastIdentifiers")
	}
	assertAttribute(t, spans[0], "identifier.class", "attribute")
}
