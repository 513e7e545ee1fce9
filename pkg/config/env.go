// Package config provides lenient environment variable accessors.
//
// A variable that is unset or blank yields the supplied default. A value
// that does not parse also yields the default, with a WARN naming the key.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the raw value of key, or def when it is blank.
func GetEnvString(key, def string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// GetEnvInt returns key as a decimal integer.
//
//	limit := GetEnvInt("PIPELINE_ITEM_LIMIT", 10)
func GetEnvInt(key string, def int) int {
	return parseEnv(key, def, strconv.Atoi)
}

// GetEnvBool accepts the spellings of strconv.ParseBool.
func GetEnvBool(key string, def bool) bool {
	return parseEnv(key, def, strconv.ParseBool)
}

// GetEnvDuration returns key in time.ParseDuration syntax.
//
//	timeout := GetEnvDuration("DETAIL_PAGE_TIMEOUT", 15*time.Second)
func GetEnvDuration(key string, def time.Duration) time.Duration {
	return parseEnv(key, def, time.ParseDuration)
}

// GetEnvStringList splits key on commas and drops blank elements. A list
// with no elements left yields def.
//
//	// PIPELINE_FOOTER_MARKERS="photo:, sponsored"
//	markers := GetEnvStringList("PIPELINE_FOOTER_MARKERS", nil) // ["photo:", "sponsored"]
func GetEnvStringList(key string, def []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func parseEnv[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		slog.Warn("ignoring malformed environment variable",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Any("default", def),
			slog.Any("error", err))
		return def
	}
	return v
}
