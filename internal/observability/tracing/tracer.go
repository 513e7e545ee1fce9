package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "feedsift"

// GetTracer returns the tracer for creating spans. It is resolved from the
// global provider on every call so that a provider installed after package
// init (tests, main) is honoured.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "operation-name")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// StartGroupSpan starts the root span of a group run.
func StartGroupSpan(ctx context.Context, group, runID string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "pipeline.group",
		trace.WithAttributes(
			attribute.String("pipeline.group", group),
			attribute.String("pipeline.run_id", runID),
		))
}

// StartFeedSpan starts a span for one feed.
func StartFeedSpan(ctx context.Context, source, url string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "pipeline.feed",
		trace.WithAttributes(
			attribute.String("feed.source", source),
			attribute.String("feed.url", url),
		))
}

// StartItemSpan starts a span for one feed item.
func StartItemSpan(ctx context.Context, title string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "pipeline.item",
		trace.WithAttributes(attribute.String("item.title", title)))
}

// RecordError marks span as failed.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
