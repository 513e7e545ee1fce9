// Package worker hosts the long-running scheduler: cron entries per
// processing group, hot reload of the sources file, and the health and
// metrics endpoints.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	pkgconfig "feedsift/internal/pkg/config"
)

// WorkerConfig holds the worker's operational settings.
//
// Loading is fail-open: an invalid environment value falls back to its
// default with a warning and a metric, so a typo never stops the worker.
type WorkerConfig struct {
	// Timezone is the IANA zone cron schedules are evaluated in.
	// Default: "UTC"
	Timezone string

	// GroupTimeout bounds one scheduled group run.
	// Range: 1m-4h. Default: 6m
	GroupTimeout time.Duration

	// HealthPort serves /health and /health/ready.
	// Range: 1024-65535. Default: 9091
	HealthPort int

	// MetricsPort serves /metrics and /health/channels.
	// Range: 1024-65535. Default: 9090
	MetricsPort int

	// ShutdownTimeout bounds draining of running groups and notifications.
	// Range: 1s-5m. Default: 30s
	ShutdownTimeout time.Duration

	// RunOnStart runs every scheduled group once at startup.
	// Default: false
	RunOnStart bool
}

// DefaultConfig returns a WorkerConfig with default values.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		Timezone:        "UTC",
		GroupTimeout:    6 * time.Minute,
		HealthPort:      9091,
		MetricsPort:     9090,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Validate checks every field and reports all failures together.
func (c *WorkerConfig) Validate() error {
	var errs []error
	if err := pkgconfig.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := pkgconfig.ValidateDuration(c.GroupTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("group timeout: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health port and metrics port must differ (both %d)", c.HealthPort))
	}
	if err := pkgconfig.ValidateDuration(c.ShutdownTimeout, time.Second, 5*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("shutdown timeout: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// LoadConfigFromEnv reads WORKER_* variables over the defaults.
//
//   - WORKER_TIMEZONE
//   - WORKER_GROUP_TIMEOUT
//   - WORKER_HEALTH_PORT
//   - WORKER_METRICS_PORT
//   - WORKER_SHUTDOWN_TIMEOUT
//   - WORKER_RUN_ON_START
//
// Invalid values fall back individually. If the result still fails
// Validate (the two ports collide) the whole configuration falls back to
// DefaultConfig.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	def := DefaultConfig()

	var cm *pkgconfig.ConfigMetrics
	if metrics != nil {
		cm = metrics.ConfigMetrics
	}
	l := pkgconfig.NewLoader(logger, cm)

	cfg := WorkerConfig{
		Timezone:        l.String("timezone", "WORKER_TIMEZONE", def.Timezone, pkgconfig.ValidateTimezone),
		GroupTimeout:    l.Duration("group_timeout", "WORKER_GROUP_TIMEOUT", def.GroupTimeout, pkgconfig.DurationRange(time.Minute, 4*time.Hour)),
		HealthPort:      l.Int("health_port", "WORKER_HEALTH_PORT", def.HealthPort, pkgconfig.IntRange(1024, 65535)),
		MetricsPort:     l.Int("metrics_port", "WORKER_METRICS_PORT", def.MetricsPort, pkgconfig.IntRange(1024, 65535)),
		ShutdownTimeout: l.Duration("shutdown_timeout", "WORKER_SHUTDOWN_TIMEOUT", def.ShutdownTimeout, pkgconfig.DurationRange(time.Second, 5*time.Minute)),
		RunOnStart:      l.Bool("run_on_start", "WORKER_RUN_ON_START", def.RunOnStart),
	}

	if err := cfg.Validate(); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("worker configuration invalid, using defaults", slog.Any("error", err))
		cfg = def
	}
	l.Finish()
	return &cfg
}
