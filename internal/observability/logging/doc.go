// Package logging provides structured logging utilities with context propagation.
//
// Key features:
//   - JSON (worker) and text (CLI) output formats
//   - Run ID propagation through context
//   - Configurable log levels via LOG_LEVEL
//
// Example usage:
//
//	import "feedsift/internal/observability/logging"
//
//	func main() {
//	    slog.SetDefault(logging.NewLogger())
//	}
//
//	func runGroup(ctx context.Context) {
//	    ctx = logging.WithRunID(ctx, logging.NewRunID())
//	    logging.FromContext(ctx).Info("group run started")
//	}
package logging
