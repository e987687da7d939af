package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "export-repository"

// StartExportSpan opens a span around one export run.
func StartExportSpan(ctx context.Context, sink, name string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "WriteExport")
	span.SetAttributes(
		attribute.String("export.sink", sink),
		attribute.String("export.name", name),
	)
	return ctx, span
}

// EndExportSpan records the outcome of an export run and ends the span.
func EndExportSpan(span trace.Span, count int, err error) {
	span.SetAttributes(attribute.Int("export.records", count))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
