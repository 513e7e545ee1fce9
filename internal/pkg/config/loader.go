package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// LoadResult is the outcome of loading one configuration value.
//
// Loading never fails: an unparsable or invalid value falls back to the
// default and records a warning, so a bad environment variable degrades a
// single setting instead of stopping the process.
type LoadResult[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

// LoadEnv reads envKey, parses it and validates it.
//
//  1. unset or empty: default, no warning
//  2. parse error: default, warning
//  3. validator error: default, warning
//  4. otherwise: the parsed value
//
// validator may be nil.
func LoadEnv[T any](envKey string, defaultValue T, parse func(string) (T, error), validator func(T) error) LoadResult[T] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return LoadResult[T]{Value: defaultValue}
	}

	fallback := func(err error) LoadResult[T] {
		return LoadResult[T]{
			Value: defaultValue,
			Warnings: []string{fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%v'",
				envKey, raw, err, defaultValue,
			)},
			FallbackApplied: true,
		}
	}

	parsed, err := parse(raw)
	if err != nil {
		return fallback(err)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(err)
		}
	}
	return LoadResult[T]{Value: parsed}
}

// ParseString is the identity parser for LoadEnv.
func ParseString(s string) (string, error) { return s, nil }

// ParseInt parses a base-10 integer for LoadEnv.
func ParseInt(s string) (int, error) { return strconv.Atoi(s) }

// ParseDuration parses a Go duration string for LoadEnv.
func ParseDuration(s string) (time.Duration, error) { return time.ParseDuration(s) }

// ParseBool parses a boolean for LoadEnv.
func ParseBool(s string) (bool, error) { return strconv.ParseBool(s) }

// Loader applies LoadEnv across many fields of one component and keeps the
// fallback bookkeeping (warnings, metrics) in a single place.
type Loader struct {
	logger   *slog.Logger
	metrics  *ConfigMetrics
	fallback bool
}

// NewLoader creates a Loader. metrics may be nil.
func NewLoader(logger *slog.Logger, metrics *ConfigMetrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, metrics: metrics}
}

// note records a fallback for field and logs each warning.
func (l *Loader) note(field string, applied bool, warnings []string) {
	if !applied {
		return
	}
	l.fallback = true
	if l.metrics != nil {
		l.metrics.rejected(field)
	}
	for _, w := range warnings {
		l.logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", w))
	}
}

// String loads a validated string.
func (l *Loader) String(field, envKey, def string, validator func(string) error) string {
	r := LoadEnv(envKey, def, ParseString, validator)
	l.note(field, r.FallbackApplied, r.Warnings)
	return r.Value
}

// Int loads a validated integer.
func (l *Loader) Int(field, envKey string, def int, validator func(int) error) int {
	r := LoadEnv(envKey, def, ParseInt, validator)
	l.note(field, r.FallbackApplied, r.Warnings)
	return r.Value
}

// Duration loads a validated duration.
func (l *Loader) Duration(field, envKey string, def time.Duration, validator func(time.Duration) error) time.Duration {
	r := LoadEnv(envKey, def, ParseDuration, validator)
	l.note(field, r.FallbackApplied, r.Warnings)
	return r.Value
}

// Bool loads a boolean.
func (l *Loader) Bool(field, envKey string, def bool) bool {
	r := LoadEnv(envKey, def, ParseBool, nil)
	l.note(field, r.FallbackApplied, r.Warnings)
	return r.Value
}

// FallbackApplied reports whether any field fell back to its default.
func (l *Loader) FallbackApplied() bool {
	return l.fallback
}

// Finish publishes the load timestamp and the fallback gauge.
func (l *Loader) Finish() {
	if l.metrics == nil {
		return
	}
	l.metrics.loaded(l.fallback)
}
