package otel

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"cartflow/pkg/logger"
)

func TestAddSpanUsesInjectedTracer(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())

	ctx := InjectTracing(context.Background(), tp.Tracer("test"))
	ctx, span := AddSpan(ctx, "cart.increment")
	if GetTraceID(ctx) == "" {
		t.Fatal("expected trace id inside span")
	}
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 || ended[0].Name() != "cart.increment" {
		t.Fatalf("unexpected spans: %v", ended)
	}
}

func TestGetTraceIDWithoutSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Fatalf("expected empty trace id, got %q", id)
	}
}

func TestInitTracingDisabled(t *testing.T) {
	tp, shutdown, err := InitTracing(logger.NewNop(), Config{ServiceName: "cartflow"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if tp == nil {
		t.Fatal("expected provider")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
