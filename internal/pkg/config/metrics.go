package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	configLoadedAt = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "config_loaded_timestamp_seconds",
		Help: "Unix time of the last configuration load.",
	}, []string{"component"})

	configInvalidTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "config_invalid_values_total",
		Help: "Configuration values rejected by validation.",
	}, []string{"component", "field"})

	configFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "config_fallbacks_total",
		Help: "Configuration fields that fell back to their default.",
	}, []string{"component", "field"})

	configDegraded = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "config_fallback_active",
		Help: "1 while the loaded configuration contains at least one fallback.",
	}, []string{"component"})
)

// ConfigMetrics reports a Loader's outcome under one component label.
// Any number of values may share a label; they write the same series.
type ConfigMetrics struct {
	component string
}

// NewConfigMetrics returns the metrics view for component.
func NewConfigMetrics(component string) *ConfigMetrics {
	return &ConfigMetrics{component: component}
}

// Component returns the component label.
func (m *ConfigMetrics) Component() string { return m.component }

// FallbackCounter is the fallback series for field.
func (m *ConfigMetrics) FallbackCounter(field string) prometheus.Counter {
	return configFallbacksTotal.WithLabelValues(m.component, field)
}

// FallbackGauge is the fallback_active series.
func (m *ConfigMetrics) FallbackGauge() prometheus.Gauge {
	return configDegraded.WithLabelValues(m.component)
}

func (m *ConfigMetrics) rejected(field string) {
	configInvalidTotal.WithLabelValues(m.component, field).Inc()
	m.FallbackCounter(field).Inc()
}

func (m *ConfigMetrics) loaded(fallback bool) {
	v := 0.0
	if fallback {
		v = 1
	}
	m.FallbackGauge().Set(v)
	configLoadedAt.WithLabelValues(m.component).SetToCurrentTime()
}
