// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides the tracing correlator used by the
// concierge: one root span per inbound request, derivable child spans, and
// a trace identifier surfaced to the caller for correlating replies with
// logged interactions.
//
// Two implementations exist behind one capability interface: an
// OpenTelemetry-backed tracer and a noop tracer that only mints correlation
// identifiers. Which one is active is a startup configuration decision; the
// concierge core never branches on it.
//
// Thread Safety: All implementations are safe for concurrent use.
package observability

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Span is one unit of traced work.
//
// Description:
//
//	End releases the span and is idempotent; ending a span never blocks
//	and never affects caller-visible data. TraceID is stable for the
//	lifetime of the request and shared by all child spans.
type Span interface {
	// TraceID returns the correlation identifier for the whole trace.
	TraceID() string

	// End completes the span. Safe to call more than once.
	End()
}

// Tracer is the tracing capability consumed by the concierge.
//
// Description:
//
//	StartSpan opens a span and returns a derived context. Starting a span
//	from a context returned by a previous StartSpan produces a child span
//	within the same trace; starting from a fresh context produces a root
//	span with a new trace identifier.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, Span)
}

// =============================================================================
// OpenTelemetry Implementation
// =============================================================================

// OTelTracer implements Tracer over an OpenTelemetry tracer.
type OTelTracer struct {
	tracer oteltrace.Tracer
}

// NewOTelTracer wraps an OpenTelemetry tracer. The caller is responsible for
// having installed a TracerProvider (see Setup).
func NewOTelTracer(tracer oteltrace.Tracer) *OTelTracer {
	return &OTelTracer{tracer: tracer}
}

// StartSpan opens an OTel span with string attributes.
func (t *OTelTracer) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, Span) {
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, attribute.String(k, v))
	}
	ctx, span := t.tracer.Start(ctx, name, oteltrace.WithAttributes(kvs...))
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span oteltrace.Span
}

func (s *otelSpan) TraceID() string {
	return s.span.SpanContext().TraceID().String()
}

// End is idempotent: the OTel SDK ignores calls after the first.
func (s *otelSpan) End() {
	s.span.End()
}

// =============================================================================
// Noop Implementation
// =============================================================================

type noopTraceKey struct{}

// NoopTracer implements Tracer without a tracing backend.
//
// Description:
//
//	Mints a fresh UUID trace identifier per root span so callers still get
//	a usable correlation id; child spans inherit the root's identifier
//	through the context. Nothing is exported anywhere.
type NoopTracer struct{}

// NewNoopTracer creates a NoopTracer.
func NewNoopTracer() *NoopTracer { return &NoopTracer{} }

// StartSpan returns a span that only carries a correlation identifier.
func (t *NoopTracer) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, Span) {
	_ = name
	_ = attrs

	traceID, ok := ctx.Value(noopTraceKey{}).(string)
	if !ok {
		traceID = uuid.NewString()
		ctx = context.WithValue(ctx, noopTraceKey{}, traceID)
	}
	return ctx, &noopSpan{traceID: traceID}
}

type noopSpan struct {
	traceID string
}

func (s *noopSpan) TraceID() string { return s.traceID }
func (s *noopSpan) End()            {}
