// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package observability

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNoopTracer_RootSpanMintsTraceID(t *testing.T) {
	tracer := NewNoopTracer()

	_, span := tracer.StartSpan(context.Background(), "chat_session", map[string]string{"user_id": "u1"})
	defer span.End()

	if span.TraceID() == "" {
		t.Fatal("root span has empty trace id")
	}

	// Two roots get distinct trace ids.
	_, other := tracer.StartSpan(context.Background(), "chat_session", nil)
	defer other.End()
	if other.TraceID() == span.TraceID() {
		t.Error("distinct root spans share a trace id")
	}
}

func TestNoopTracer_ChildInheritsTraceID(t *testing.T) {
	tracer := NewNoopTracer()

	ctx, root := tracer.StartSpan(context.Background(), "chat_session", nil)
	defer root.End()

	_, child := tracer.StartSpan(ctx, "toolloop", nil)
	defer child.End()

	if child.TraceID() != root.TraceID() {
		t.Errorf("child trace id = %s, want %s", child.TraceID(), root.TraceID())
	}
}

func TestNoopTracer_EndIsIdempotent(t *testing.T) {
	tracer := NewNoopTracer()
	_, span := tracer.StartSpan(context.Background(), "chat_session", nil)

	span.End()
	span.End() // must not panic or change anything
	if span.TraceID() == "" {
		t.Error("trace id lost after End")
	}
}

func TestOTelTracer_ChildSharesTrace(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	tracer := NewOTelTracer(tp.Tracer("test"))

	ctx, root := tracer.StartSpan(context.Background(), "chat_session", map[string]string{"channel": "web"})
	_, child := tracer.StartSpan(ctx, "toolloop", nil)

	if child.TraceID() != root.TraceID() {
		t.Errorf("child trace id = %s, want %s", child.TraceID(), root.TraceID())
	}

	child.End()
	root.End()
	root.End() // idempotent

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("exported spans = %d, want 2", len(spans))
	}
	if spans[0].Name != "toolloop" || spans[1].Name != "chat_session" {
		t.Errorf("span names = %s, %s", spans[0].Name, spans[1].Name)
	}
	if spans[1].Parent.IsValid() {
		t.Error("root span should have no parent")
	}
	if spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("child span parent does not match root span")
	}
}

func TestSetup_NoneAndUnknown(t *testing.T) {
	tracer, shutdown, err := Setup(context.Background(), ExporterNone, "")
	if err != nil {
		t.Fatalf("Setup(none) failed: %v", err)
	}
	if _, ok := tracer.(*NoopTracer); !ok {
		t.Errorf("Setup(none) tracer = %T, want *NoopTracer", tracer)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown returned error: %v", err)
	}

	if _, _, err := Setup(context.Background(), "bogus", ""); err == nil {
		t.Error("Setup(bogus) should fail")
	}

	if _, _, err := Setup(context.Background(), ExporterOTLP, ""); err == nil {
		t.Error("Setup(otlp) without endpoint should fail")
	}
}
