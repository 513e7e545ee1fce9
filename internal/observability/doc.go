// Package observability groups the worker's and the CLI's telemetry:
// logging (slog handlers carrying run ids), metrics (the promauto registry
// behind /metrics) and tracing (group, feed and item spans).
//
// Process setup is two lines:
//
//	slog.SetDefault(logging.NewLogger())
//	shutdown, err := tracing.InitFromEnv(ctx, "feedsift-worker")
package observability
