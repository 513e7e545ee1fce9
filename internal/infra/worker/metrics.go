package worker

import (
	"time"

	pkgconfig "feedsift/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics reports config loads under the "worker" component and adds
// scheduling metrics. Create it once per process; the metrics live on the default
// registry.
type WorkerMetrics struct {
	*pkgconfig.ConfigMetrics

	// GroupRunsTotal counts scheduled runs by group and status
	// (success, timeout, canceled, failure).
	GroupRunsTotal *prometheus.CounterVec

	// GroupRunDurationSeconds observes scheduled run durations by group.
	GroupRunDurationSeconds *prometheus.HistogramVec

	// GroupLastSuccessTimestamp is the Unix time of the last successful run.
	GroupLastSuccessTimestamp *prometheus.GaugeVec

	// SourcesReloadsTotal counts sources file reloads by status (success, failure).
	SourcesReloadsTotal *prometheus.CounterVec

	// ScheduledGroups is the number of groups with an active cron entry.
	ScheduledGroups prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: pkgconfig.NewConfigMetrics("worker"),

		GroupRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_group_runs_total",
			Help: "Total number of scheduled group runs by status",
		}, []string{"group", "status"}),

		GroupRunDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_group_run_duration_seconds",
			Help:    "Duration of scheduled group runs in seconds",
			Buckets: []float64{1, 5, 30, 60, 120, 300, 600, 1800},
		}, []string{"group"}),

		GroupLastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_group_last_success_timestamp",
			Help: "Unix timestamp of the last successful group run",
		}, []string{"group"}),

		SourcesReloadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_sources_reloads_total",
			Help: "Total number of sources file reloads by status",
		}, []string{"status"}),

		ScheduledGroups: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_scheduled_groups",
			Help: "Number of groups with an active cron entry",
		}),
	}
}

// RecordGroupRun records one finished run.
func (m *WorkerMetrics) RecordGroupRun(group, status string, d time.Duration) {
	m.GroupRunsTotal.WithLabelValues(group, status).Inc()
	m.GroupRunDurationSeconds.WithLabelValues(group).Observe(d.Seconds())
	if status == "success" {
		m.GroupLastSuccessTimestamp.WithLabelValues(group).SetToCurrentTime()
	}
}

// RecordReload records a sources file reload attempt.
func (m *WorkerMetrics) RecordReload(err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.SourcesReloadsTotal.WithLabelValues(status).Inc()
}
