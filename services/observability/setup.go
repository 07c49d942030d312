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
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Tracing exporter modes.
const (
	// ExporterOTLP ships spans to an OTLP/gRPC collector endpoint.
	ExporterOTLP = "otlp"

	// ExporterStdout prints spans to stdout. Debugging only.
	ExporterStdout = "stdout"

	// ExporterNone disables the tracing backend; the noop tracer still
	// mints correlation identifiers.
	ExporterNone = "none"
)

// tracerName is the instrumentation scope for concierge spans.
const tracerName = "nestwell.concierge"

// Setup configures tracing for the process and returns the active Tracer.
//
// Description:
//
//	Selects the tracer variant from configuration, once, at startup:
//
//	  - "otlp":   OTel SDK with an OTLP/gRPC exporter to endpoint.
//	  - "stdout": OTel SDK printing spans to stdout.
//	  - "none":   no backend; UUID correlation ids only.
//
//	The returned shutdown function flushes pending spans and must be
//	called on every exit path. It is a no-op for the noop variant.
//
// Inputs:
//   - ctx: Context for exporter construction.
//   - exporter: One of ExporterOTLP, ExporterStdout, ExporterNone.
//   - endpoint: Collector endpoint, required for ExporterOTLP.
//
// Outputs:
//   - Tracer: The active tracer variant.
//   - func(context.Context) error: Shutdown hook. Never nil.
//   - error: Non-nil if the requested exporter cannot be constructed.
func Setup(ctx context.Context, exporter, endpoint string) (Tracer, func(context.Context) error, error) {
	noShutdown := func(context.Context) error { return nil }

	var exp sdktrace.SpanExporter
	var err error

	switch exporter {
	case ExporterOTLP:
		if endpoint == "" {
			return nil, noShutdown, fmt.Errorf("observability: otlp exporter requires an endpoint")
		}
		exp, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, noShutdown, fmt.Errorf("observability: creating otlp exporter: %w", err)
		}
	case ExporterStdout:
		exp, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, noShutdown, fmt.Errorf("observability: creating stdout exporter: %w", err)
		}
	case ExporterNone, "":
		slog.Info("tracing backend disabled, using correlation ids only")
		return NewNoopTracer(), noShutdown, nil
	default:
		return nil, noShutdown, fmt.Errorf("observability: unknown exporter %q", exporter)
	}

	res, err := resource.Merge(resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceName("nestwell-concierge"),
		),
	)
	if err != nil {
		return nil, noShutdown, fmt.Errorf("observability: building resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.Info("tracing configured", slog.String("exporter", exporter))
	return NewOTelTracer(tp.Tracer(tracerName)), tp.Shutdown, nil
}
