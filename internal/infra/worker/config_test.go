package worker

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMetrics is shared because the metrics live on the default registry.
var testMetrics = NewWorkerMetrics()

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 6*time.Minute, cfg.GroupTimeout)
	assert.Equal(t, 9091, cfg.HealthPort)
	assert.Equal(t, 9090, cfg.MetricsPort)
}

func TestWorkerConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WorkerConfig)
	}{
		{"bad timezone", func(c *WorkerConfig) { c.Timezone = "Mars/Olympus" }},
		{"short timeout", func(c *WorkerConfig) { c.GroupTimeout = time.Second }},
		{"privileged port", func(c *WorkerConfig) { c.HealthPort = 80 }},
		{"port collision", func(c *WorkerConfig) { c.MetricsPort = c.HealthPort }},
		{"shutdown timeout", func(c *WorkerConfig) { c.ShutdownTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("WORKER_TIMEZONE", "Asia/Tokyo")
	t.Setenv("WORKER_GROUP_TIMEOUT", "10m")
	t.Setenv("WORKER_HEALTH_PORT", "8081")
	t.Setenv("WORKER_RUN_ON_START", "true")

	cfg := LoadConfigFromEnv(discardLogger(), testMetrics)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, 10*time.Minute, cfg.GroupTimeout)
	assert.Equal(t, 8081, cfg.HealthPort)
	assert.True(t, cfg.RunOnStart)
	assert.Equal(t, float64(0), testutil.ToFloat64(testMetrics.FallbackGauge()))
}

func TestLoadConfigFromEnv_FallsBackPerField(t *testing.T) {
	before := testutil.ToFloat64(testMetrics.FallbackCounter("group_timeout"))
	t.Setenv("WORKER_GROUP_TIMEOUT", "forever")
	t.Setenv("WORKER_METRICS_PORT", "9300")

	cfg := LoadConfigFromEnv(discardLogger(), testMetrics)
	assert.Equal(t, DefaultConfig().GroupTimeout, cfg.GroupTimeout)
	assert.Equal(t, 9300, cfg.MetricsPort, "valid fields survive a sibling fallback")
	assert.Equal(t, before+1, testutil.ToFloat64(testMetrics.FallbackCounter("group_timeout")))
	assert.Equal(t, float64(1), testutil.ToFloat64(testMetrics.FallbackGauge()))
}

func TestLoadConfigFromEnv_PortCollisionUsesDefaults(t *testing.T) {
	t.Setenv("WORKER_HEALTH_PORT", "9500")
	t.Setenv("WORKER_METRICS_PORT", "9500")

	cfg := LoadConfigFromEnv(discardLogger(), nil)
	assert.Equal(t, DefaultConfig(), *cfg)
}
