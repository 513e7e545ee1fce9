// Package tracing provides OpenTelemetry tracing integration.
//
// A group run produces one "pipeline.group" span with a "pipeline.feed"
// child per feed and a "pipeline.item" grandchild per item. The worker's
// HTTP endpoints are wrapped with Middleware.
//
// InitFromEnv installs a provider that logs finished spans at debug level
// when TRACING_ENABLED is set. Tests install their own recorder instead.
//
//	ctx, span := tracing.StartFeedSpan(ctx, src.Name, src.URL)
//	defer span.End()
package tracing
