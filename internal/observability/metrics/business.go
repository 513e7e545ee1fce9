package metrics

import (
	"time"
)

// RecordFeedFetch records the result of one feed fetch.
func RecordFeedFetch(result string) {
	FeedFetchTotal.WithLabelValues(result).Inc()
}

// RecordFeedProcessed records how long one feed took.
func RecordFeedProcessed(source string, duration time.Duration) {
	FeedProcessDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordItem records one item outcome: seen, saved, skipped or errored.
func RecordItem(group, outcome string) {
	ItemsTotal.WithLabelValues(group, outcome).Inc()
}

// RecordGroupRun records the duration of a group run.
func RecordGroupRun(group string, duration time.Duration) {
	GroupRunDuration.WithLabelValues(group).Observe(duration.Seconds())
}

// RecordContentResolved records the source tag of a resolved body.
func RecordContentResolved(source string) {
	ContentResolvedTotal.WithLabelValues(source).Inc()
}

// RecordDetailPage records a detail-page extraction and its duration.
//
//	start := time.Now()
//	text := extractor.Extract(ctx, url, cfg)
//	RecordDetailPage("selector", time.Since(start))
func RecordDetailPage(result string, duration time.Duration) {
	DetailPageTotal.WithLabelValues(result).Inc()
	DetailPageDuration.Observe(duration.Seconds())
}

// RecordClassification records a classifier decision.
func RecordClassification(keep bool, category string) {
	decision := "discard"
	if keep {
		decision = "keep"
	}
	ClassificationsTotal.WithLabelValues(decision, category).Inc()
}

// RecordSummarization records whether the summarizer produced a summary or
// passed the input through.
func RecordSummarization(success bool) {
	status := "success"
	if !success {
		status = "passthrough"
	}
	SummarizationsTotal.WithLabelValues(status).Inc()
}

// RecordSummary records a produced summary against its rune budget.
func RecordSummary(runes, limit int, took time.Duration) {
	SummaryLength.Observe(float64(runes))
	SummaryDuration.Observe(took.Seconds())
	if runes > limit {
		SummaryOverLimitTotal.Inc()
	}
}

// RecordOracleRequest records one oracle round trip.
func RecordOracleRequest(oracle, provider string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	OracleRequestDuration.WithLabelValues(oracle, provider, status).Observe(duration.Seconds())
}

// RecordRecordWritten records one record write.
func RecordRecordWritten(store, status string) {
	RecordsWrittenTotal.WithLabelValues(store, status).Inc()
}

// RecordStoreOperation records the duration of a store operation
// (e.g. "exists", "write").
func RecordStoreOperation(store, operation string, duration time.Duration) {
	StoreOperationDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
}

// RecordCircuitState records a breaker transition. state follows gobreaker's
// ordering: 0 closed, 1 half-open, 2 open.
func RecordCircuitState(circuit string, state int) {
	CircuitBreakerState.WithLabelValues(circuit).Set(float64(state))
}

// RecordCircuitRejected records a call refused by a breaker.
func RecordCircuitRejected(circuit string) {
	CircuitBreakerRejectedTotal.WithLabelValues(circuit).Inc()
}
