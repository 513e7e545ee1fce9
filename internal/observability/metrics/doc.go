// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all pipeline metrics including:
//   - Feed fetch results and per-feed processing time
//   - Item outcomes per processing group (seen, saved, skipped, errored)
//   - Detail-page extraction results and content source tags
//   - Classifier decisions, summarizer outcomes and oracle latency
//   - Collection store writes and latency
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the worker's /metrics endpoint.
//
// Example usage:
//
//	import "feedsift/internal/observability/metrics"
//
//	func processFeed(src entity.FeedSource) {
//	    start := time.Now()
//	    // ... process items ...
//	    metrics.RecordFeedProcessed(src.Name, time.Since(start))
//	}
package metrics
