package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}

	bad := DefaultConfig()
	bad.Logging.Level = "verbose"
	if err := bad.Validate(); err == nil {
		t.Error("Expected invalid log level to fail validation")
	}

	bad = DefaultConfig()
	bad.Tracing.Enabled = true
	bad.Tracing.Exporter = "jaeger"
	if err := bad.Validate(); err == nil {
		t.Error("Expected unsupported exporter to fail validation")
	}

	bad = DefaultConfig()
	bad.Tracing.SamplingRate = 1.5
	if err := bad.Validate(); err == nil {
		t.Error("Expected out-of-range sampling rate to fail validation")
	}
}

func TestEventPublisherDelivery(t *testing.T) {
	ep, err := NewEventPublisher(EventsConfig{
		Enabled:      true,
		BufferSize:   10,
		MaxBatchSize: 10,
		EnableAsync:  false,
	})
	if err != nil {
		t.Fatalf("NewEventPublisher failed: %v", err)
	}

	var got []Event
	ep.Subscribe(func(e Event) { got = append(got, e) }, nil)

	if err := ep.PublishBuildStarted("b-1", "solid"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := ep.PublishEngineSwitched("b-1", "workplane", "solid", "Revolve", 2); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("Expected 2 events delivered, got %d", len(got))
	}
	if got[0].Type != EventTypeBuildStarted || got[0].BuildID != "b-1" {
		t.Errorf("Unexpected first event: %+v", got[0])
	}
	if got[1].Type != EventTypeEngineSwitched || got[1].Level != EventLevelWarning {
		t.Errorf("Unexpected switch event: %+v", got[1])
	}
	if got[0].ID == "" || got[0].Timestamp.IsZero() {
		t.Error("Expected event ID and timestamp to be filled in")
	}
}

func TestEventFilters(t *testing.T) {
	ep, err := NewEventPublisher(EventsConfig{Enabled: true, BufferSize: 10, EnableAsync: false})
	if err != nil {
		t.Fatalf("NewEventPublisher failed: %v", err)
	}

	var errorsOnly []Event
	ep.Subscribe(func(e Event) { errorsOnly = append(errorsOnly, e) }, FilterByLevel(EventLevelError))

	_ = ep.PublishBuildStarted("b-2", "solid")
	_ = ep.PublishBuildFailed("b-2", "extrude with no sketch", 1)

	if len(errorsOnly) != 1 {
		t.Fatalf("Expected 1 error event through filter, got %d", len(errorsOnly))
	}
	if errorsOnly[0].Type != EventTypeBuildFailed {
		t.Errorf("Expected build failed event, got %s", errorsOnly[0].Type)
	}
}

func TestNoopMetricsAreSafe(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	// None of these may panic on a disabled collector.
	m.RecordBuildStarted("solid")
	m.RecordBuildCompleted("success", time.Second)
	m.RecordOperation("Extrude", "success", "solid", time.Millisecond)
	m.RecordEngineFallback("workplane", "solid", "Revolve")
	m.RecordExport("stl", time.Millisecond)
	m.RecordError("kernel")
}

func TestNewNop(t *testing.T) {
	tel := NewNop()
	ctx := tel.WithContext(context.Background())
	if FromTelemetryContext(ctx) != tel {
		t.Error("Expected telemetry to round-trip through context")
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
