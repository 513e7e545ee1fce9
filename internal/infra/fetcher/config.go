package fetcher

import (
	"fmt"
	"time"

	"feedsift/pkg/config"
)

// DetailPageConfig holds transport and extraction settings shared by every
// source. Per-source selectors and timeouts live in entity.DetailPageConfig.
type DetailPageConfig struct {
	// Timeout is the default request timeout when a source sets none.
	// Default: 15s
	Timeout time.Duration

	// MinFragmentLength is the number of characters a selector match must
	// exceed to be accepted as the article body. Shorter matches are usually
	// bylines or teaser containers.
	// Default: 100
	MinFragmentLength int

	// MaxBodySize caps the downloaded page in bytes.
	// Default: 10MB
	MaxBodySize int64

	// MaxRedirects is the number of redirects followed before giving up.
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs refuses pages that resolve to loopback, private or
	// link-local addresses.
	// Default: true
	DenyPrivateIPs bool

	// UserAgent identifies the crawler.
	UserAgent string
}

// DefaultConfig returns the default detail-page settings.
func DefaultConfig() DetailPageConfig {
	return DetailPageConfig{
		Timeout:           15 * time.Second,
		MinFragmentLength: 100,
		MaxBodySize:       10 * 1024 * 1024, // 10MB
		MaxRedirects:      5,
		DenyPrivateIPs:    true,
		UserAgent:         "FeedSiftBot/1.0",
	}
}

// Validate checks configuration correctness.
func (c *DetailPageConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	if c.MinFragmentLength < 0 {
		return fmt.Errorf("min fragment length must be non-negative, got %d", c.MinFragmentLength)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	return nil
}

// LoadConfigFromEnv reads DETAIL_PAGE_* variables over the defaults.
// On validation failure the defaults are returned together with the error.
func LoadConfigFromEnv() (DetailPageConfig, error) {
	def := DefaultConfig()
	cfg := DetailPageConfig{
		Timeout:           config.GetEnvDuration("DETAIL_PAGE_TIMEOUT", def.Timeout),
		MinFragmentLength: config.GetEnvInt("DETAIL_PAGE_MIN_FRAGMENT", def.MinFragmentLength),
		MaxBodySize:       int64(config.GetEnvInt("DETAIL_PAGE_MAX_BODY_SIZE", int(def.MaxBodySize))),
		MaxRedirects:      config.GetEnvInt("DETAIL_PAGE_MAX_REDIRECTS", def.MaxRedirects),
		DenyPrivateIPs:    config.GetEnvBool("DETAIL_PAGE_DENY_PRIVATE_IPS", def.DenyPrivateIPs),
		UserAgent:         config.GetEnvString("DETAIL_PAGE_USER_AGENT", def.UserAgent),
	}

	if err := cfg.Validate(); err != nil {
		return def, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
