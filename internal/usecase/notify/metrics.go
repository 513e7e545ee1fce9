package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"feedsift/internal/infra/notifier"
)

// Drop reasons for notify_dropped_total.
const (
	dropPoolFull    = "pool_full"
	dropShutdown    = "shutdown"
	dropCircuitOpen = "circuit_open"
)

var (
	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_deliveries_total",
		Help: "Notification sends by channel and outcome (sent, failed, rate_limited).",
	}, []string{"channel", "outcome"})

	deliverySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notify_delivery_duration_seconds",
		Help:    "Time spent in a channel's Send.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"channel"})

	droppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_dropped_total",
		Help: "Notifications never handed to a channel, by reason.",
	}, []string{"channel", "reason"})

	channelTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_channel_disabled_total",
		Help: "Times a channel was disabled after consecutive failures.",
	}, []string{"channel"})

	inFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notify_in_flight",
		Help: "Deliveries started and not yet finished, including those waiting for a worker slot.",
	})

	channelsEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notify_channels_enabled",
		Help: "Channels configured as enabled.",
	})
)

func observeDelivery(channel string, err error, took time.Duration) {
	outcome := "sent"
	switch {
	case notifier.IsRateLimited(err):
		outcome = "rate_limited"
	case err != nil:
		outcome = "failed"
	}
	deliveriesTotal.WithLabelValues(channel, outcome).Inc()
	deliverySeconds.WithLabelValues(channel).Observe(took.Seconds())
}

func observeDrop(channel, reason string) {
	droppedTotal.WithLabelValues(channel, reason).Inc()
}
