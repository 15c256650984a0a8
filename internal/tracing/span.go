package tracing

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const attrPrefix = "crankbench."

// StartBenchmarkSpan starts the span covering one (library, scenario, rep)
// execution.
func StartBenchmarkSpan(ctx context.Context, tracer trace.Tracer, library, scenario string, rep int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "benchmark "+scenario,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(attrPrefix+"library", library),
			attribute.String(attrPrefix+"scenario", scenario),
			attribute.Int(attrPrefix+"rep", rep),
		),
	)
}

// MetricAttributes converts scenario metrics into span attributes, sorted by key.
func MetricAttributes(metrics map[string]float64) []attribute.KeyValue {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, attribute.Float64(attrPrefix+"metric."+k, metrics[k]))
	}
	return attrs
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
