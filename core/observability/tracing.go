package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ctxutil "github.com/hyperterse/druidfamiliar/core/shared/context"
)

// TracerName identifies spans created by this module
const TracerName = "github.com/hyperterse/druidfamiliar"

// StartQuerySpan starts the span covering one query round-trip
func StartQuerySpan(ctx context.Context, method, url string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrURLFull, url),
	}
	if queryID := ctxutil.GetQueryID(ctx); queryID != "" {
		attrs = append(attrs, attribute.String(AttrQueryID, queryID))
	}
	return otel.Tracer(TracerName).Start(ctx, "druid.query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// EndQuerySpan records err on span, if any, and ends it
func EndQuerySpan(span trace.Span, err error) {
	if err != nil {
		span.SetAttributes(attribute.String(AttrErrorType, Outcome(err)))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// RecordStatus attaches the broker response status to span
func RecordStatus(span trace.Span, statusCode int) {
	span.SetAttributes(attribute.Int(AttrHTTPStatusCode, statusCode))
}
